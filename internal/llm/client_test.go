package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina/internal/config"
	"lumina/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.LLMConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	})
}

func TestClient_GenerateSQL(t *testing.T) {
	var captured chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "```sql\nSELECT 1\n```"}},
			},
		})
	})

	out, err := c.GenerateSQL(context.Background(), domain.GenerateRequest{
		SchemaText: "Employees.Email (TEXT)",
		Question:   "how many employees",
		Email:      "alice@co.com",
		Role:       "developer",
	})
	require.NoError(t, err)
	assert.Equal(t, "```sql\nSELECT 1\n```", out)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[1].Content, "Employees.Email (TEXT)")
	assert.Contains(t, captured.Messages[1].Content, "how many employees")
}

func TestClient_Summarize_IncludesRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Messages[1].Content, "alice@co.com | 2024-01-02")

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Alice attended once."}},
			},
		})
	})

	out, err := c.Summarize(context.Background(), "when did alice attend", &domain.Result{
		Columns:  []string{"EmployeeEmail", "Date"},
		Rows:     [][]interface{}{{"alice@co.com", "2024-01-02"}},
		RowCount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice attended once.", out)
}

func TestClient_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream busy", http.StatusBadGateway)
	})

	_, err := c.GenerateSQL(context.Background(), domain.GenerateRequest{Question: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Unconfigured(t *testing.T) {
	c := NewClient(config.LLMConfig{})
	_, err := c.GenerateSQL(context.Background(), domain.GenerateRequest{Question: "x"})
	require.Error(t, err)
}
