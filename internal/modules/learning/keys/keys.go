package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

const (
	structureKeyVersion = 1
	sectionKeyVersion   = 1
)

// Normalize trims, lowercases and collapses inner whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// StructureKey identifies a topic structure. Keyword order and duplicates do
// not matter; empty keywords are ignored.
func StructureKey(topic string, keywords []string) string {
	return hashTuple("topic_structure", structureKeyVersion, Normalize(topic), normalizeSet(keywords))
}

// SectionKey identifies one section of a topic. The argument order is
// (topic, section id, section title) and is part of the key.
func SectionKey(topic, sectionID, sectionTitle string) string {
	return hashTuple("section_content", sectionKeyVersion, Normalize(topic), Normalize(sectionID), Normalize(sectionTitle))
}

// Fingerprint returns the first n runes of the normalized text. Two chunks
// with the same fingerprint are treated as the same chunk.
func Fingerprint(text string, n int) string {
	norm := Normalize(text)
	if n <= 0 {
		return norm
	}
	r := []rune(norm)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

func normalizeSet(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		k := Normalize(s)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func hashTuple(parts ...any) string {
	b, _ := json.Marshal(parts)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
