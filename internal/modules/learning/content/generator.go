package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/quantpath-backend/internal/modules/learning/prompts"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/platform/openai"
)

const (
	maxKeyPoints = 7
	maxSections  = 8
)

// Generator produces study content with the LLM. Output that fails
// validation is returned as an openai.KindMalformed error so callers can
// fall back to a placeholder without caching it.
type Generator interface {
	Explanation(ctx context.Context, req ExplanationRequest) (Explanation, error)
	TopicStructure(ctx context.Context, req StructureRequest) (TopicStructure, error)
	SectionContent(ctx context.Context, req SectionRequest) (SectionContent, error)
}

type generator struct {
	log *logger.Logger
	ai  openai.Client
}

func NewGenerator(log *logger.Logger, ai openai.Client) Generator {
	return &generator{log: log.With("service", "ContentGenerator"), ai: ai}
}

func (g *generator) Explanation(ctx context.Context, req ExplanationRequest) (Explanation, error) {
	var out Explanation
	err := g.generate(ctx, prompts.PromptExplanation, prompts.Input{
		TopicName:    req.Topic,
		TopicSummary: req.Summary,
		ContentType:  req.ContentType,
		Difficulty:   req.Difficulty,
		Excerpts:     formatExcerpts(req.Excerpts),
	}, &out)
	if err != nil {
		return Explanation{}, err
	}
	var hits []string
	out.Markdown, hits = scrubMetaText(out.Markdown)
	out.KeyPoints = cleanList(out.KeyPoints, maxKeyPoints)
	out.Placeholder = false
	if out.Markdown == "" {
		return Explanation{}, malformed("explanation has no markdown")
	}
	g.logScrub("explanation", req.Topic, hits)
	return out, nil
}

func (g *generator) TopicStructure(ctx context.Context, req StructureRequest) (TopicStructure, error) {
	var out TopicStructure
	err := g.generate(ctx, prompts.PromptTopicStructure, prompts.Input{
		TopicName:   req.Topic,
		KeywordsCSV: strings.Join(req.Keywords, ", "),
		Excerpts:    formatExcerpts(req.Excerpts),
	}, &out)
	if err != nil {
		return TopicStructure{}, err
	}
	out.Topic = strings.TrimSpace(req.Topic)
	out.Overview, _ = scrubMetaText(out.Overview)
	out.Sections = cleanSections(out.Sections)
	out.Placeholder = false
	if len(out.Sections) == 0 {
		return TopicStructure{}, malformed("topic structure has no sections")
	}
	return out, nil
}

func (g *generator) SectionContent(ctx context.Context, req SectionRequest) (SectionContent, error) {
	var out SectionContent
	err := g.generate(ctx, prompts.PromptSectionContent, prompts.Input{
		TopicName:    req.Topic,
		SectionID:    req.SectionID,
		SectionTitle: req.SectionTitle,
		Excerpts:     formatExcerpts(req.Excerpts),
	}, &out)
	if err != nil {
		return SectionContent{}, err
	}
	var hits []string
	out.Markdown, hits = scrubMetaText(out.Markdown)
	out.KeyPoints = cleanList(out.KeyPoints, maxKeyPoints)
	// The request owns the section identity.
	out.SectionID = strings.TrimSpace(req.SectionID)
	out.Title = strings.TrimSpace(req.SectionTitle)
	out.Placeholder = false
	if out.Markdown == "" {
		return SectionContent{}, malformed("section content has no markdown")
	}
	g.logScrub("section_content", req.Topic, hits)
	return out, nil
}

func (g *generator) generate(ctx context.Context, name prompts.PromptName, in prompts.Input, dst any) error {
	p, err := prompts.Build(name, in)
	if err != nil {
		return err
	}
	raw, err := g.ai.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: %w", name, &openai.Error{Kind: openai.KindMalformed, Message: err.Error(), Cause: err})
	}
	return nil
}

func (g *generator) logScrub(kind, topic string, hits []string) {
	if len(hits) > 0 {
		g.log.Debug("scrubbed generated text", "kind", kind, "topic", topic, "rules", hits)
	}
}

func cleanSections(in []Section) []Section {
	out := make([]Section, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		s.Title, _ = scrubMetaText(s.Title)
		s.Summary, _ = scrubMetaText(s.Summary)
		if s.Title == "" {
			continue
		}
		s.ID = slugify(s.ID)
		if s.ID == "" {
			s.ID = slugify(s.Title)
		}
		if s.ID == "" || seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
		if len(out) == maxSections {
			break
		}
	}
	return out
}

func malformed(msg string) error {
	return &openai.Error{Kind: openai.KindMalformed, Message: msg}
}
