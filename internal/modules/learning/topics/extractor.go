package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/prompts"
	"github.com/yungbote/quantpath-backend/internal/pkg/errors"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/platform/openai"
)

const (
	MaxKeywords = 5
	MaxTopics   = 25
)

// Extraction is the role context and topic list read from a job description.
type Extraction struct {
	Role   learning.RoleContext `json:"role"`
	Topics []learning.Topic     `json:"topics"`
}

type Extractor interface {
	Extract(ctx context.Context, jobDescription string) (*Extraction, error)
}

type extractor struct {
	log *logger.Logger
	ai  openai.Client
}

func New(log *logger.Logger, ai openai.Client) Extractor {
	return &extractor{log: log.With("service", "TopicExtractor"), ai: ai}
}

type rawExtraction struct {
	RoleType    string     `json:"role_type"`
	Seniority   string     `json:"seniority"`
	DomainFocus string     `json:"domain_focus"`
	Topics      []rawTopic `json:"topics"`
}

type rawTopic struct {
	Name     string   `json:"name"`
	Priority string   `json:"priority"`
	Tier     string   `json:"tier"`
	Keywords []string `json:"keywords"`
}

func (e *extractor) Extract(ctx context.Context, jobDescription string) (*Extraction, error) {
	jd := strings.TrimSpace(jobDescription)
	if jd == "" {
		return nil, fmt.Errorf("%w: job description is required", errors.ErrInvalidArgument)
	}
	p, err := prompts.Build(prompts.PromptTopicExtraction, prompts.Input{JobDescription: jd})
	if err != nil {
		return nil, err
	}
	raw, err := e.ai.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		return nil, fmt.Errorf("extract topics: %w", err)
	}
	var parsed rawExtraction
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("extract topics: %w", &openai.Error{Kind: openai.KindMalformed, Message: err.Error(), Cause: err})
	}
	out := normalize(parsed)
	if len(out.Topics) == 0 {
		return nil, fmt.Errorf("extract topics: %w", &openai.Error{Kind: openai.KindMalformed, Message: "no topics in response"})
	}
	e.log.Debug("extracted topics", "count", len(out.Topics), "role_type", out.Role.RoleType)
	return out, nil
}

// normalize trims names, drops case-insensitive duplicates, defaults unknown
// priority and tier values and caps keywords.
func normalize(in rawExtraction) *Extraction {
	out := &Extraction{
		Role: learning.RoleContext{
			RoleType:    strings.TrimSpace(in.RoleType),
			Seniority:   strings.ToLower(strings.TrimSpace(in.Seniority)),
			DomainFocus: strings.TrimSpace(in.DomainFocus),
		},
		Topics: make([]learning.Topic, 0, len(in.Topics)),
	}
	seen := map[string]bool{}
	for _, t := range in.Topics {
		name := strings.Join(strings.Fields(t.Name), " ")
		key := learning.NormalizeName(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out.Topics = append(out.Topics, learning.Topic{
			Name:     name,
			Priority: learning.ParsePriority(t.Priority),
			Tier:     learning.ParseTier(t.Tier),
			Keywords: keywords(t.Keywords, key),
		})
		if len(out.Topics) == MaxTopics {
			break
		}
	}
	return out
}

func keywords(in []string, topicKey string) []string {
	out := make([]string, 0, MaxKeywords)
	seen := map[string]bool{topicKey: true}
	for _, k := range in {
		k = strings.Join(strings.Fields(k), " ")
		key := learning.NormalizeName(k)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}
