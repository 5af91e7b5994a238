package sqlguard

import (
	"regexp"
	"strings"
)

var selectTokenRe = regexp.MustCompile(`(?i)\bselect\b|\bwith\b`)

// ExtractStatement pulls a single candidate statement from generation-service
// output. It scans fenced code blocks for one containing a SELECT/WITH token,
// strips language-tag lines such as a leading bare "sql", and trims. When no
// fenced block qualifies the raw trimmed text is returned; the safety gate
// will then reject anything that is not a statement.
func ExtractStatement(text string) string {
	if strings.Contains(text, "```") {
		for _, part := range strings.Split(text, "```") {
			if !selectTokenRe.MatchString(part) {
				continue
			}
			var lines []string
			for _, ln := range strings.Split(part, "\n") {
				if strings.HasPrefix(strings.ToLower(strings.TrimSpace(ln)), "sql") {
					continue
				}
				lines = append(lines, ln)
			}
			return strings.TrimSpace(strings.Join(lines, "\n"))
		}
	}
	return strings.TrimSpace(text)
}
