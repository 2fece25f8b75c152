package openai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var thinkTagPattern = regexp.MustCompile(`(?s)^[\s]*<think>.*?</think>[\s]*`)

// ExtractJSON pulls the first balanced JSON object or array out of a model
// response that may carry think tags or markdown fences.
func ExtractJSON(response string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")

	objStart := strings.IndexByte(cleaned, '{')
	arrStart := strings.IndexByte(cleaned, '[')

	if objStart >= 0 && (arrStart < 0 || objStart < arrStart) {
		if s, ok := extractBalanced(cleaned, '{', '}'); ok && json.Valid([]byte(s)) {
			return s, nil
		}
	}
	if arrStart >= 0 {
		if s, ok := extractBalanced(cleaned, '[', ']'); ok && json.Valid([]byte(s)) {
			return s, nil
		}
	}
	trimmed := strings.TrimSpace(cleaned)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}
	return "", fmt.Errorf("no valid JSON found in response")
}

func extractBalanced(s string, openCh, closeCh byte) (string, bool) {
	start := strings.IndexByte(s, openCh)
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
