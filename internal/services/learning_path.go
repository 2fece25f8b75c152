package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/quantpath-backend/internal/data/repos"
	types "github.com/yungbote/quantpath-backend/internal/domain"
	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/coverage"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/pathbuild"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/topics"
	"github.com/yungbote/quantpath-backend/internal/observability"
	apperrors "github.com/yungbote/quantpath-backend/internal/pkg/errors"
	"github.com/yungbote/quantpath-backend/internal/platform/dbctx"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/realtime"
	"github.com/yungbote/quantpath-backend/internal/realtime/bus"
)

// PathMirror copies a persisted path into a secondary store. Failures are
// logged and never fail generation.
type PathMirror func(ctx context.Context, view *learning.PathView, nodeIDs map[string]uuid.UUID) error

type LearningPathService interface {
	// Generate fails without persisting anything when topic extraction
	// fails; the extractor's typed LLM error is returned unwrapped.
	Generate(ctx context.Context, userID uuid.UUID, jobDescription string) (*GeneratedPath, error)
	Current(ctx context.Context, userID uuid.UUID) (*learning.PathView, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*learning.PathView, error)
	CheckCoverage(ctx context.Context, topic string, keywords []string, threshold float64) learning.CoverageResult
}

// GeneratedPath is a stored path plus the per-run details that are not
// persisted on the row.
type GeneratedPath struct {
	Path     *learning.PathView         `json:"path"`
	Coverage []learning.CoverageResult  `json:"coverage"`
	Report   pathbuild.ValidationReport `json:"validation"`
	Fallback bool                       `json:"fallback"`
	NodeIDs  map[string]uuid.UUID       `json:"node_ids"`
}

type learningPathService struct {
	db         *gorm.DB
	log        *logger.Logger
	nodes      repos.LearningNodeRepo
	paths      repos.LearningPathRepo
	extractor  topics.Extractor
	classifier coverage.Classifier
	builder    pathbuild.Builder
	events     bus.Bus
	mirror     PathMirror
}

func NewLearningPathService(
	db *gorm.DB,
	baseLog *logger.Logger,
	nodes repos.LearningNodeRepo,
	paths repos.LearningPathRepo,
	extractor topics.Extractor,
	classifier coverage.Classifier,
	builder pathbuild.Builder,
	events bus.Bus,
	mirror PathMirror,
) LearningPathService {
	if events == nil {
		events = bus.NewNopBus()
	}
	return &learningPathService{
		db:         db,
		log:        baseLog.With("service", "LearningPathService"),
		nodes:      nodes,
		paths:      paths,
		extractor:  extractor,
		classifier: classifier,
		builder:    builder,
		events:     events,
		mirror:     mirror,
	}
}

func (s *learningPathService) Generate(ctx context.Context, userID uuid.UUID, jobDescription string) (*GeneratedPath, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", apperrors.ErrInvalidArgument)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("%w: job description is required", apperrors.ErrInvalidArgument)
	}
	ctx, span := observability.StartSpan(ctx, "learning_path.generate", attribute.String("user_id", userID.String()))
	defer span.End()

	extraction, err := s.extractor.Extract(ctx, jobDescription)
	if err != nil {
		return nil, err
	}

	results := s.classifier.CheckAll(ctx, extraction.Topics, 0)
	built := s.builder.Build(ctx, pathbuild.Annotate(extraction.Topics, results), extraction.Role)

	covered, uncovered := splitCoverage(results)
	row := &types.LearningPath{
		ID:                 uuid.New(),
		UserID:             userID,
		JobDescription:     strings.TrimSpace(jobDescription),
		RoleType:           extraction.Role.RoleType,
		Seniority:          extraction.Role.Seniority,
		DomainFocus:        extraction.Role.DomainFocus,
		CoveragePercentage: coveragePercentage(len(covered), len(results)),
		CreatedAt:          time.Now().UTC(),
	}
	if row.Stages, err = marshalJSON(built.Stages); err != nil {
		return nil, err
	}
	if row.Dependencies, err = marshalJSON(built.Dependencies); err != nil {
		return nil, err
	}
	if row.CoveredTopics, err = marshalJSON(covered); err != nil {
		return nil, err
	}
	if row.UncoveredTopics, err = marshalJSON(uncovered); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(extraction.Topics))
	for _, t := range extraction.Topics {
		names = append(names, t.Name)
	}
	nodeIDs := map[string]uuid.UUID{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		rows, err := s.nodes.EnsureByNames(dbc, names)
		if err != nil {
			return err
		}
		for _, n := range rows {
			nodeIDs[n.NormalizedName] = n.ID
		}
		for _, r := range results {
			id, ok := nodeIDs[learning.NormalizeName(r.Topic)]
			if !ok {
				continue
			}
			if err := s.nodes.RecordCoverage(dbc, id, r); err != nil {
				return fmt.Errorf("record coverage for %q: %w", r.Topic, err)
			}
		}
		return s.paths.Create(dbc, row)
	})
	if err != nil {
		return nil, fmt.Errorf("persist learning path: %w", err)
	}

	view, err := row.View()
	if err != nil {
		return nil, fmt.Errorf("decode learning path: %w", err)
	}

	if s.mirror != nil {
		if err := s.mirror(ctx, view, nodeIDs); err != nil {
			s.log.Warn("learning path graph sync failed", "path_id", view.ID, "error", err)
		}
	}
	evt := realtime.Event{
		Type:   realtime.EventLearningPathGenerated,
		UserID: userID,
		PathID: view.ID,
		At:     view.CreatedAt,
		Data: map[string]any{
			"coverage_percentage": view.CoveragePercentage,
			"stages":              len(view.Stages),
			"fallback":            built.Fallback,
		},
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("publish learning path event failed", "path_id", view.ID, "error", err)
	}

	s.log.Info("learning path generated",
		"user_id", userID,
		"path_id", view.ID,
		"topics", len(results),
		"covered", len(covered),
		"fallback", built.Fallback,
		"dropped_edges", built.Report.TotalDropped(),
	)
	return &GeneratedPath{
		Path:     view,
		Coverage: results,
		Report:   built.Report,
		Fallback: built.Fallback,
		NodeIDs:  nodeIDs,
	}, nil
}

func (s *learningPathService) Current(ctx context.Context, userID uuid.UUID) (*learning.PathView, error) {
	row, err := s.paths.GetLatestByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load current path: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("%w: no learning path for user", apperrors.ErrNotFound)
	}
	return row.View()
}

func (s *learningPathService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*learning.PathView, error) {
	rows, err := s.paths.ListByUser(dbctx.Context{Ctx: ctx}, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	out := make([]*learning.PathView, 0, len(rows))
	for _, r := range rows {
		v, err := r.View()
		if err != nil {
			return nil, fmt.Errorf("decode path %s: %w", r.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *learningPathService) CheckCoverage(ctx context.Context, topic string, keywords []string, threshold float64) learning.CoverageResult {
	return s.classifier.Check(ctx, topic, keywords, threshold)
}

func splitCoverage(results []learning.CoverageResult) (covered, uncovered []string) {
	covered, uncovered = []string{}, []string{}
	for _, r := range results {
		if r.Covered {
			covered = append(covered, r.Topic)
		} else {
			uncovered = append(uncovered, r.Topic)
		}
	}
	return covered, uncovered
}

// coveragePercentage rounds to one decimal place.
func coveragePercentage(covered, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(covered)/float64(total)*1000) / 10
}

// IsUserError reports errors caused by the request rather than the system.
func IsUserError(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidArgument) || errors.Is(err, apperrors.ErrNotFound)
}
