package pathbuild

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/observability"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/platform/openai"
)

const FallbackStageName = "Core Topics"

type Result struct {
	Stages       []learning.Stage          `json:"stages"`
	Dependencies []learning.DependencyEdge `json:"dependencies"`
	Report       ValidationReport          `json:"report"`
	Fallback     bool                      `json:"fallback"`
}

// Builder turns a flat topic list into ordered stages with forward-only
// prerequisite edges. Build never fails; a bad draft degrades to a single
// stage.
type Builder interface {
	Build(ctx context.Context, topics []learning.TopicNode, role learning.RoleContext) Result
}

type builder struct {
	log     *logger.Logger
	drafter Drafter
}

func New(log *logger.Logger, drafter Drafter) Builder {
	return &builder{log: log.With("service", "PathBuilder"), drafter: drafter}
}

func (b *builder) Build(ctx context.Context, topics []learning.TopicNode, role learning.RoleContext) Result {
	ctx, span := observability.StartSpan(ctx, "pathbuild.build", attribute.Int("topics", len(topics)))
	defer span.End()

	ordered := orderByPriority(topics)
	if len(ordered) == 0 {
		return Result{Stages: []learning.Stage{}, Dependencies: []learning.DependencyEdge{}, Report: newReport()}
	}

	res := b.build(ctx, topics, ordered, role)
	for reason, n := range res.Report.DroppedEdges {
		observability.Current().AddDroppedEdges(reason, n)
	}
	observability.Current().IncPathGenerated(res.Fallback)
	span.SetAttributes(
		attribute.Int("stages", len(res.Stages)),
		attribute.Int("dependencies", len(res.Dependencies)),
		attribute.Bool("fallback", res.Fallback),
	)
	return res
}

func (b *builder) build(ctx context.Context, input, ordered []learning.TopicNode, role learning.RoleContext) Result {
	report := newReport()

	if b.drafter == nil {
		return b.fallback(input, report, "no drafter configured")
	}
	draft, err := b.drafter.Draft(ctx, ordered, role)
	if err != nil {
		b.log.Warn("path draft failed; using single stage", "error", err, "kind", openai.KindOf(err))
		return b.fallback(input, report, "draft_error")
	}
	if draft == nil || len(draft.Stages) == 0 {
		return b.fallback(input, report, "empty_draft")
	}
	report.DraftStages = len(draft.Stages)
	report.DraftEdges = len(draft.Dependencies)

	stages := repairStages(draft.Stages, ordered, &report)
	if len(stages) == 0 {
		return b.fallback(input, report, "no_known_topics")
	}
	edges := validateEdges(draft.Dependencies, stages, &report)
	if dropped := report.TotalDropped(); dropped > 0 {
		b.log.Debug("dropped drafted dependencies", "dropped", dropped, "by_reason", report.DroppedEdges)
	}
	return Result{Stages: stages, Dependencies: edges, Report: report}
}

// fallback places every distinct input topic in one stage, in input order.
func (b *builder) fallback(input []learning.TopicNode, report ValidationReport, reason string) Result {
	b.log.Info("using single-stage fallback path", "reason", reason)
	observability.Current().IncLLMFallback("path_draft")

	seen := map[string]bool{}
	nodes := make([]learning.TopicNode, 0, len(input))
	for _, t := range input {
		key := learning.NormalizeName(t.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		t.Name = strings.TrimSpace(t.Name)
		nodes = append(nodes, t)
	}
	return Result{
		Stages:       []learning.Stage{{StageNumber: 1, StageName: FallbackStageName, Topics: nodes}},
		Dependencies: []learning.DependencyEdge{},
		Report:       report,
		Fallback:     true,
	}
}

// Annotate joins coverage results onto topics by normalized name. Topics
// without a result stay uncovered with zero confidence.
func Annotate(topics []learning.Topic, coverage []learning.CoverageResult) []learning.TopicNode {
	byName := make(map[string]learning.CoverageResult, len(coverage))
	for _, c := range coverage {
		key := learning.NormalizeName(c.Topic)
		if _, ok := byName[key]; !ok {
			byName[key] = c
		}
	}
	out := make([]learning.TopicNode, 0, len(topics))
	for _, t := range topics {
		node := learning.TopicNode{Topic: t}
		if c, ok := byName[learning.NormalizeName(t.Name)]; ok {
			node.Covered = c.Covered
			node.Confidence = c.Confidence
		}
		out = append(out, node)
	}
	return out
}
