// Package llm adapts an OpenAI-compatible chat-completions endpoint to the
// gateway's generation and summarization contracts.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lumina/internal/config"
	"lumina/internal/domain"
)

var (
	_ domain.SQLGenerator = (*Client)(nil)
	_ domain.Summarizer   = (*Client)(nil)
)

// Client calls a chat-completions endpoint over HTTP.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpc       *http.Client
}

// NewClient creates a Client from config. The per-call timeout is enforced by
// the HTTP client; callers may tighten it further through ctx.
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpc:       &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const generateSystemPrompt = `You write a single read-only SQL SELECT statement answering the user's question.
Rules:
- Use only the tables and columns listed in the provided schema.
- Output exactly one SELECT (or WITH ... SELECT) statement inside a fenced code block.
- Never write INSERT, UPDATE, DELETE, or any DDL.
- Prefer explicit column lists over SELECT * where reasonable.`

// GenerateSQL asks the model for a statement over the exposed schema. The
// returned text may wrap the statement in a fenced code block; extraction and
// vetting happen downstream.
func (c *Client) GenerateSQL(ctx context.Context, req domain.GenerateRequest) (string, error) {
	user := fmt.Sprintf("Schema:\n%s\n\nUser role: %s\nQuestion: %s",
		req.SchemaText, req.Role, req.Question)
	return c.complete(ctx, []chatMessage{
		{Role: "system", Content: generateSystemPrompt},
		{Role: "user", Content: user},
	})
}

const summarizeSystemPrompt = `You summarize SQL query results as a short, direct answer to the user's question.
Do not mention SQL, tables, or columns. If the result is empty, say no matching data was found.`

// Summarize turns result rows into a conversational answer.
func (c *Client) Summarize(ctx context.Context, question string, result *domain.Result) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nColumns: %s\nRows (%d",
		question, strings.Join(result.Columns, ", "), result.RowCount)
	if result.Truncated {
		b.WriteString(", truncated")
	}
	b.WriteString("):\n")
	for _, row := range result.Rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = fmt.Sprint(v)
		}
		b.WriteString(strings.Join(parts, " | "))
		b.WriteByte('\n')
	}

	return c.complete(ctx, []chatMessage{
		{Role: "system", Content: summarizeSystemPrompt},
		{Role: "user", Content: b.String()},
	})
}

func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("generation service is not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read chat completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("chat completion: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
