package content

import (
	"strings"
)

const (
	maxExcerpts     = 8
	maxExcerptRunes = 1200
)

// formatExcerpts renders grounding chunks for a prompt, one bullet per chunk.
func formatExcerpts(chunks []string) string {
	var b strings.Builder
	n := 0
	for _, c := range chunks {
		c = strings.Join(strings.Fields(c), " ")
		if c == "" {
			continue
		}
		if r := []rune(c); len(r) > maxExcerptRunes {
			c = string(r[:maxExcerptRunes]) + "..."
		}
		b.WriteString("- ")
		b.WriteString(c)
		b.WriteString("\n")
		n++
		if n == maxExcerpts {
			break
		}
	}
	if n == 0 {
		return "(none)"
	}
	return strings.TrimRight(b.String(), "\n")
}
