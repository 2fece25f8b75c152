package pathbuild

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/prompts"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/platform/openai"
)

// Draft is the unvalidated stage proposal.
type Draft struct {
	Stages       []DraftStage              `json:"stages"`
	Dependencies []learning.DependencyEdge `json:"dependencies"`
}

type DraftStage struct {
	StageNumber int      `json:"stage_number"`
	StageName   string   `json:"stage_name"`
	Topics      []string `json:"topics"`
}

// Drafter proposes stages and dependencies for topics already ordered by
// priority.
type Drafter interface {
	Draft(ctx context.Context, topics []learning.TopicNode, role learning.RoleContext) (*Draft, error)
}

type llmDrafter struct {
	log *logger.Logger
	ai  openai.Client
}

func NewLLMDrafter(log *logger.Logger, ai openai.Client) Drafter {
	return &llmDrafter{log: log.With("service", "PathDrafter"), ai: ai}
}

type draftTopic struct {
	Name     string   `json:"name"`
	Priority string   `json:"priority"`
	Tier     string   `json:"tier"`
	Covered  bool     `json:"covered"`
	Keywords []string `json:"keywords,omitempty"`
}

func (d *llmDrafter) Draft(ctx context.Context, topics []learning.TopicNode, role learning.RoleContext) (*Draft, error) {
	in := make([]draftTopic, 0, len(topics))
	for _, t := range topics {
		in = append(in, draftTopic{
			Name:     t.Name,
			Priority: string(t.Priority),
			Tier:     string(t.Tier),
			Covered:  t.Covered,
			Keywords: t.Keywords,
		})
	}
	topicsJSON, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	p, err := prompts.Build(prompts.PromptPathDraft, prompts.Input{
		RoleType:    role.RoleType,
		Seniority:   role.Seniority,
		DomainFocus: role.DomainFocus,
		TopicsJSON:  string(topicsJSON),
	})
	if err != nil {
		return nil, err
	}
	raw, err := d.ai.GenerateJSON(ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		return nil, err
	}
	var out Draft
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &openai.Error{Kind: openai.KindMalformed, Message: fmt.Sprintf("decode path draft: %v", err), Cause: err}
	}
	return &out, nil
}
