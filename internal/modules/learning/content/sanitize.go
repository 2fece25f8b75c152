package content

import (
	"regexp"
	"strings"
)

type scrubRule struct {
	Label       string
	Re          *regexp.Regexp
	Replacement string
}

var wsRE = regexp.MustCompile(`[ \t]{2,}`)

// Chat-style filler the model sometimes adds to study material.
var metaScrubRules = []scrubRule{
	{Label: "here's the plan", Re: regexp.MustCompile(`(?i)here's the plan:?`), Replacement: "Overview:"},
	{Label: "here is the plan", Re: regexp.MustCompile(`(?i)here is the plan:?`), Replacement: "Overview:"},
	{Label: "i can tailor this", Re: regexp.MustCompile(`(?i)i can tailor this[^.\n]*\.?`), Replacement: ""},
	{Label: "before we dive in", Re: regexp.MustCompile(`(?i)before we dive in,?`), Replacement: ""},
	{Label: "let me know if you want", Re: regexp.MustCompile(`(?i)let me know if you (want|would like)[^.\n]*\.?`), Replacement: ""},
	{Label: "if you want to go deeper", Re: regexp.MustCompile(`(?i)if you(?:'d like| want) to go deeper[^.\n]*\.?`), Replacement: ""},
	{Label: "great question", Re: regexp.MustCompile(`(?i)great question[!.]?`), Replacement: ""},
}

// scrubMetaText removes conversational filler and reports which rules fired.
func scrubMetaText(s string) (string, []string) {
	if strings.TrimSpace(s) == "" {
		return strings.TrimSpace(s), nil
	}
	orig := s
	var hit []string
	for _, r := range metaScrubRules {
		if r.Re.MatchString(s) {
			s = r.Re.ReplaceAllString(s, r.Replacement)
			hit = append(hit, r.Label)
		}
	}
	if s != orig {
		s = wsRE.ReplaceAllString(s, " ")
		s = strings.ReplaceAll(s, " \n", "\n")
		s = strings.ReplaceAll(s, "\n ", "\n")
	}
	return strings.TrimSpace(s), hit
}

// cleanList trims items, drops empties and case-insensitive repeats, and caps
// the result at max items when max > 0.
func cleanList(in []string, max int) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		s, _ = scrubMetaText(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

var slugRE = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(slugRE.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
