package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quantpath-backend/internal/data/repos"
	types "github.com/yungbote/quantpath-backend/internal/domain"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/content"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/coverage"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/gencache"
	"github.com/yungbote/quantpath-backend/internal/observability"
	apperrors "github.com/yungbote/quantpath-backend/internal/pkg/errors"
	"github.com/yungbote/quantpath-backend/internal/platform/dbctx"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/realtime"
	"github.com/yungbote/quantpath-backend/internal/realtime/bus"
)

const (
	DefaultContentType = "concept"
	DefaultDifficulty  = "intermediate"
)

var (
	validContentTypes = map[string]struct{}{
		"concept":   {},
		"intuition": {},
		"example":   {},
		"math":      {},
		"code":      {},
	}
	validDifficulties = map[string]struct{}{
		"beginner":     {},
		"intermediate": {},
		"advanced":     {},
	}
)

// ContentResult is a generated or cached payload. Placeholder results are
// never cached.
type ContentResult[P any] struct {
	Payload     P    `json:"payload"`
	Cached      bool `json:"cached"`
	AccessCount int  `json:"access_count"`
	Placeholder bool `json:"placeholder"`
}

type LearningContentService interface {
	Explanation(ctx context.Context, nodeID uuid.UUID, contentType, difficulty string) (*ContentResult[content.Explanation], error)
	TopicStructure(ctx context.Context, topic string, keywords []string) (*ContentResult[content.TopicStructure], error)
	SectionContent(ctx context.Context, topic, sectionID, sectionTitle string) (*ContentResult[content.SectionContent], error)

	// InvalidateNode bumps the node's content version and returns it.
	InvalidateNode(ctx context.Context, nodeID uuid.UUID) (int, error)
	InvalidateTopicStructure(ctx context.Context, topic string, keywords []string) (int64, error)
	InvalidateSection(ctx context.Context, topic, sectionID, sectionTitle string) (int64, error)
	PurgeInvalid(ctx context.Context) (map[string]int64, error)
}

type learningContentService struct {
	db          *gorm.DB
	log         *logger.Logger
	nodes       repos.LearningNodeRepo
	generator   content.Generator
	classifier  coverage.Classifier
	events      bus.Bus
	explanation *gencache.Cache[types.ExplanationCacheKey, content.Explanation]
	structure   *gencache.Cache[gencache.StructureKey, content.TopicStructure]
	section     *gencache.Cache[gencache.SectionKey, content.SectionContent]
}

func NewLearningContentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	nodes repos.LearningNodeRepo,
	explanationRepo repos.ExplanationCacheRepo,
	structureRepo repos.TopicStructureCacheRepo,
	sectionRepo repos.SectionContentCacheRepo,
	generator content.Generator,
	classifier coverage.Classifier,
	events bus.Bus,
) LearningContentService {
	if events == nil {
		events = bus.NewNopBus()
	}
	return &learningContentService{
		db:          db,
		log:         baseLog.With("service", "LearningContentService"),
		nodes:       nodes,
		generator:   generator,
		classifier:  classifier,
		events:      events,
		explanation: gencache.NewExplanationCache[content.Explanation](db, explanationRepo, baseLog),
		structure:   gencache.NewTopicStructureCache[content.TopicStructure](db, structureRepo, baseLog),
		section:     gencache.NewSectionContentCache[content.SectionContent](db, sectionRepo, baseLog),
	}
}

func (s *learningContentService) Explanation(ctx context.Context, nodeID uuid.UUID, contentType, difficulty string) (*ContentResult[content.Explanation], error) {
	contentType, err := pick(contentType, DefaultContentType, validContentTypes, "content_type")
	if err != nil {
		return nil, err
	}
	difficulty, err = pick(difficulty, DefaultDifficulty, validDifficulties, "difficulty")
	if err != nil {
		return nil, err
	}
	node, err := s.nodes.GetByID(dbctx.Context{Ctx: ctx}, nodeID)
	if err != nil {
		return nil, fmt.Errorf("load learning node: %w", err)
	}
	if node == nil {
		return nil, fmt.Errorf("%w: learning node %s", apperrors.ErrNotFound, nodeID)
	}

	key := types.ExplanationCacheKey{
		NodeID:         node.ID,
		ContentType:    contentType,
		Difficulty:     difficulty,
		ContentVersion: node.ContentVersion,
	}
	return resolve(ctx, s, s.explanation, key,
		func(ctx context.Context) (content.Explanation, error) {
			return s.generator.Explanation(ctx, content.ExplanationRequest{
				Topic:       node.Name,
				Summary:     node.Summary,
				ContentType: contentType,
				Difficulty:  difficulty,
				Excerpts:    s.nodeExcerpts(ctx, node),
			})
		},
		func() content.Explanation { return content.PlaceholderExplanation(node.Name, contentType, difficulty) },
	)
}

func (s *learningContentService) TopicStructure(ctx context.Context, topic string, keywords []string) (*ContentResult[content.TopicStructure], error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", apperrors.ErrInvalidArgument)
	}
	key := gencache.StructureKey{Topic: topic, Keywords: keywords}
	return resolve(ctx, s, s.structure, key,
		func(ctx context.Context) (content.TopicStructure, error) {
			return s.generator.TopicStructure(ctx, content.StructureRequest{
				Topic:    topic,
				Keywords: keywords,
				Excerpts: s.topicExcerpts(ctx, topic, topic, keywords),
			})
		},
		func() content.TopicStructure { return content.PlaceholderStructure(topic) },
	)
}

func (s *learningContentService) SectionContent(ctx context.Context, topic, sectionID, sectionTitle string) (*ContentResult[content.SectionContent], error) {
	topic = strings.TrimSpace(topic)
	sectionTitle = strings.TrimSpace(sectionTitle)
	if topic == "" || sectionTitle == "" {
		return nil, fmt.Errorf("%w: topic and section_title are required", apperrors.ErrInvalidArgument)
	}
	key := gencache.SectionKey{Topic: topic, SectionID: sectionID, SectionTitle: sectionTitle}
	return resolve(ctx, s, s.section, key,
		func(ctx context.Context) (content.SectionContent, error) {
			return s.generator.SectionContent(ctx, content.SectionRequest{
				Topic:        topic,
				SectionID:    sectionID,
				SectionTitle: sectionTitle,
				Excerpts:     s.topicExcerpts(ctx, topic, sectionTitle, []string{topic}),
			})
		},
		func() content.SectionContent { return content.PlaceholderSection(topic, sectionID, sectionTitle) },
	)
}

// resolve serves key from cache or generates it. A generator failure yields
// an uncached placeholder; store failures are returned.
func resolve[K any, P any](
	ctx context.Context,
	s *learningContentService,
	cache *gencache.Cache[K, P],
	key K,
	generate gencache.GenerateFunc[P],
	placeholder func() P,
) (*ContentResult[P], error) {
	var genErr error
	res, err := cache.GetOrGenerate(ctx, key, func(ctx context.Context) (P, error) {
		p, err := generate(ctx)
		genErr = err
		return p, err
	})
	if err != nil {
		if genErr != nil && errors.Is(err, genErr) {
			s.log.Warn("content generation failed; serving placeholder", "cache", cache.Name(), "error", genErr)
			observability.Current().IncLLMFallback(cache.Name())
			return &ContentResult[P]{Payload: placeholder(), Placeholder: true}, nil
		}
		return nil, err
	}
	return &ContentResult[P]{Payload: res.Payload, Cached: res.Cached, AccessCount: res.AccessCount}, nil
}

// nodeExcerpts prefers the chunks recorded when the node's path was
// classified and only runs a live coverage check for unclassified nodes.
func (s *learningContentService) nodeExcerpts(ctx context.Context, node *types.LearningNode) []string {
	if chunks, ok := node.CoverageExcerpts(); ok {
		return chunks
	}
	return s.checkExcerpts(ctx, node.Name, nil)
}

// topicExcerpts looks up the stored coverage of topic and falls back to a live
// check of query. Retrieval problems only mean less context.
func (s *learningContentService) topicExcerpts(ctx context.Context, topic, query string, keywords []string) []string {
	rows, err := s.nodes.GetByNames(dbctx.Context{Ctx: ctx}, []string{topic})
	if err != nil {
		s.log.Warn("load stored coverage failed", "topic", topic, "error", err)
	}
	for _, n := range rows {
		if chunks, ok := n.CoverageExcerpts(); ok {
			return chunks
		}
	}
	return s.checkExcerpts(ctx, query, keywords)
}

func (s *learningContentService) checkExcerpts(ctx context.Context, query string, keywords []string) []string {
	if s.classifier == nil {
		return nil
	}
	res := s.classifier.Check(ctx, query, keywords, 0)
	if !res.Covered {
		return nil
	}
	return res.Chunks()
}

func (s *learningContentService) InvalidateNode(ctx context.Context, nodeID uuid.UUID) (int, error) {
	version, err := s.nodes.BumpContentVersion(dbctx.Context{Ctx: ctx}, nodeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: learning node %s", apperrors.ErrNotFound, nodeID)
		}
		return 0, fmt.Errorf("bump content version: %w", err)
	}
	s.publishInvalidation(ctx, gencache.ExplanationCacheName, map[string]any{
		"node_id":         nodeID.String(),
		"content_version": version,
	})
	return version, nil
}

func (s *learningContentService) InvalidateTopicStructure(ctx context.Context, topic string, keywords []string) (int64, error) {
	if strings.TrimSpace(topic) == "" {
		return 0, fmt.Errorf("%w: topic is required", apperrors.ErrInvalidArgument)
	}
	key := gencache.StructureKey{Topic: topic, Keywords: keywords}
	n, err := s.structure.Invalidate(ctx, key)
	if err != nil {
		return 0, err
	}
	s.publishInvalidation(ctx, gencache.TopicStructureCacheName, map[string]any{"cache_key": key.Hash(), "rows": n})
	return n, nil
}

func (s *learningContentService) InvalidateSection(ctx context.Context, topic, sectionID, sectionTitle string) (int64, error) {
	if strings.TrimSpace(topic) == "" || strings.TrimSpace(sectionTitle) == "" {
		return 0, fmt.Errorf("%w: topic and section_title are required", apperrors.ErrInvalidArgument)
	}
	key := gencache.SectionKey{Topic: topic, SectionID: sectionID, SectionTitle: sectionTitle}
	n, err := s.section.Invalidate(ctx, key)
	if err != nil {
		return 0, err
	}
	s.publishInvalidation(ctx, gencache.SectionContentCacheName, map[string]any{"cache_key": key.Hash(), "rows": n})
	return n, nil
}

func (s *learningContentService) PurgeInvalid(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, p := range []interface {
		Name() string
		Purge(context.Context) (int64, error)
	}{s.explanation, s.structure, s.section} {
		n, err := p.Purge(ctx)
		if err != nil {
			return out, err
		}
		out[p.Name()] = n
	}
	s.log.Info("purged generation cache rows", "deleted", out)
	return out, nil
}

func (s *learningContentService) publishInvalidation(ctx context.Context, cache string, data map[string]any) {
	data["cache"] = cache
	evt := realtime.Event{Type: realtime.EventCacheInvalidated, At: time.Now().UTC(), Data: data}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("publish invalidation event failed", "cache", cache, "error", err)
	}
}

func pick(v, def string, allowed map[string]struct{}, field string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return def, nil
	}
	if _, ok := allowed[v]; !ok {
		return "", fmt.Errorf("%w: unsupported %s %q", apperrors.ErrInvalidArgument, field, v)
	}
	return v, nil
}
