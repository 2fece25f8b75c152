package content

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/platform/openai"
)

type fakeLLM struct {
	raw        string
	err        error
	user       string
	schemaName string
}

func (f *fakeLLM) Embed(context.Context, []string) ([][]float32, error) { return nil, nil }

func (f *fakeLLM) GenerateJSON(_ context.Context, _ string, user string, schemaName string, _ *jsonschema.Definition) (json.RawMessage, error) {
	f.user = user
	f.schemaName = schemaName
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.raw), nil
}

func TestExplanation_ScrubsAndGrounds(t *testing.T) {
	llm := &fakeLLM{raw: `{"markdown":"Great question! Ridge adds an L2 penalty. Let me know if you want more examples.","key_points":["L2 penalty"," l2 penalty ","","Shrinks coefficients"]}`}
	g := NewGenerator(logger.Nop(), llm)

	out, err := g.Explanation(context.Background(), ExplanationRequest{
		Topic:       "Ridge Regression",
		ContentType: "concept",
		Difficulty:  "beginner",
		Excerpts:    []string{"Ridge regression shrinks   coefficients toward zero."},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ridge adds an L2 penalty.", out.Markdown)
	assert.Equal(t, []string{"L2 penalty", "Shrinks coefficients"}, out.KeyPoints)
	assert.False(t, out.Placeholder)
	assert.Equal(t, "explanation", llm.schemaName)
	assert.Contains(t, llm.user, "- Ridge regression shrinks coefficients toward zero.")
	assert.Contains(t, llm.user, "DIFFICULTY: beginner")
}

func TestExplanation_EmptyMarkdownIsMalformed(t *testing.T) {
	g := NewGenerator(logger.Nop(), &fakeLLM{raw: `{"markdown":"  ","key_points":[]}`})
	_, err := g.Explanation(context.Background(), ExplanationRequest{Topic: "x"})
	assert.Equal(t, openai.KindMalformed, openai.KindOf(err))

	g = NewGenerator(logger.Nop(), &fakeLLM{raw: `not json`})
	_, err = g.Explanation(context.Background(), ExplanationRequest{Topic: "x"})
	assert.Equal(t, openai.KindMalformed, openai.KindOf(err))
}

func TestTopicStructure_CleansSections(t *testing.T) {
	llm := &fakeLLM{raw: `{"topic":"ignored","overview":"Study plan.","sections":[
		{"id":"","title":"Ito's Lemma","summary":"chain rule"},
		{"id":"Ito's Lemma","title":"Duplicate","summary":""},
		{"id":"sde","title":"","summary":"no title"},
		{"id":"Girsanov Theorem","title":"Girsanov","summary":"measure change"}
	]}`}
	out, err := NewGenerator(logger.Nop(), llm).TopicStructure(context.Background(), StructureRequest{Topic: " Stochastic Calculus ", Keywords: []string{"ito", "sde"}})
	require.NoError(t, err)
	assert.Equal(t, "Stochastic Calculus", out.Topic)
	require.Len(t, out.Sections, 2)
	assert.Equal(t, "ito-s-lemma", out.Sections[0].ID)
	assert.Equal(t, "girsanov-theorem", out.Sections[1].ID)
	assert.Contains(t, llm.user, "KEYWORDS: ito, sde")
	assert.Contains(t, llm.user, "(none)")

	_, err = NewGenerator(logger.Nop(), &fakeLLM{raw: `{"topic":"t","overview":"o","sections":[]}`}).
		TopicStructure(context.Background(), StructureRequest{Topic: "t"})
	assert.Equal(t, openai.KindMalformed, openai.KindOf(err))
}

func TestSectionContent_KeepsRequestedIdentity(t *testing.T) {
	llm := &fakeLLM{raw: `{"section_id":"other","title":"Other","markdown":"Body","key_points":["a"]}`}
	out, err := NewGenerator(logger.Nop(), llm).SectionContent(context.Background(), SectionRequest{Topic: "Options", SectionID: "greeks", SectionTitle: "The Greeks"})
	require.NoError(t, err)
	assert.Equal(t, "greeks", out.SectionID)
	assert.Equal(t, "The Greeks", out.Title)
	assert.Equal(t, "Body", out.Markdown)
}

func TestGenerator_PropagatesClientErrors(t *testing.T) {
	cause := &openai.Error{Kind: openai.KindUnavailable, Message: "down"}
	_, err := NewGenerator(logger.Nop(), &fakeLLM{err: cause}).SectionContent(context.Background(), SectionRequest{Topic: "t", SectionTitle: "s"})
	assert.Equal(t, openai.KindUnavailable, openai.KindOf(err))
}

func TestPlaceholders(t *testing.T) {
	e := PlaceholderExplanation("Copulas", "", "")
	assert.True(t, e.Placeholder)
	assert.Contains(t, e.Markdown, "concept explanation at intermediate level")
	assert.Equal(t, e, PlaceholderExplanation("Copulas", "", ""))

	s := PlaceholderStructure(" Copulas ")
	assert.True(t, s.Placeholder)
	assert.Equal(t, "Copulas", s.Topic)
	assert.Len(t, s.Sections, 3)

	sc := PlaceholderSection("Copulas", "s1", "")
	assert.True(t, sc.Placeholder)
	assert.Equal(t, "Section", sc.Title)
}

func TestFormatExcerpts_Caps(t *testing.T) {
	var chunks []string
	for i := 0; i < 12; i++ {
		chunks = append(chunks, strings.Repeat("x", maxExcerptRunes+10))
	}
	out := formatExcerpts(chunks)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, maxExcerpts)
	assert.True(t, strings.HasSuffix(lines[0], "..."))
}
