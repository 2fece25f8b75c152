package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/quantpath-backend/internal/data/repos"
	"github.com/yungbote/quantpath-backend/internal/data/repos/testutil"
	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/gencache"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/pathbuild"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/topics"
	apperrors "github.com/yungbote/quantpath-backend/internal/pkg/errors"
	"github.com/yungbote/quantpath-backend/internal/platform/openai"
	"github.com/yungbote/quantpath-backend/internal/realtime"
)

type contentFixture struct {
	db         *gorm.DB
	nodes      repos.LearningNodeRepo
	svc        LearningContentService
	gen        *fakeGenerator
	classifier *fakeClassifier
	events     *recordingBus
}

func newContentFixture(t *testing.T) (*contentFixture, func(name string) uuid.UUID) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &contentFixture{
		gen: &fakeGenerator{},
		classifier: &fakeClassifier{
			scores: map[string]float64{"ridge regression": 0.81},
			chunks: map[string][]string{"ridge regression": {"Ridge adds an L2 penalty."}},
		},
		events: &recordingBus{},
	}
	nodes := repos.NewLearningNodeRepo(db, log)
	f.db, f.nodes = db, nodes
	f.svc = NewLearningContentService(db, log, nodes,
		repos.NewExplanationCacheRepo(db, log),
		repos.NewTopicStructureCacheRepo(db, log),
		repos.NewSectionContentCacheRepo(db, log),
		f.gen, f.classifier, f.events)
	seed := func(name string) uuid.UUID {
		return testutil.SeedNode(t, context.Background(), db, name).ID
	}
	return f, seed
}

func TestTopicStructure_SecondCallIsCached(t *testing.T) {
	ctx := context.Background()
	f, _ := newContentFixture(t)

	first, err := f.svc.TopicStructure(ctx, "Ridge Regression", []string{"shrinkage", "l2"})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, first.AccessCount)
	assert.Equal(t, []string{"Ridge adds an L2 penalty."}, f.gen.lastExcerpt)

	second, err := f.svc.TopicStructure(ctx, "ridge regression", []string{"L2", "shrinkage"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 2, second.AccessCount)
	assert.Equal(t, first.Payload, second.Payload)
	assert.Equal(t, 1, f.gen.calls)
}

func TestContent_ReusesCoverageStoredByPath(t *testing.T) {
	ctx := context.Background()
	f, _ := newContentFixture(t)
	log := testutil.Logger(t)
	extraction := &topics.Extraction{
		Role: learning.RoleContext{RoleType: "quant researcher"},
		Topics: []learning.Topic{
			{Name: "Ridge Regression", Priority: learning.PriorityHigh, Tier: learning.TierExplicit},
			{Name: "Backtesting", Priority: learning.PriorityMedium, Tier: learning.TierExplicit},
		},
	}
	paths := NewLearningPathService(f.db, log, f.nodes, repos.NewLearningPathRepo(f.db, log),
		&fakeExtractor{out: extraction}, f.classifier,
		pathbuild.New(log, &fakeDrafter{err: errors.New("drafter down")}), f.events, nil)

	gen, err := paths.Generate(ctx, uuid.New(), "Junior quant researcher, regression models and backtesting")
	require.NoError(t, err)
	before := f.classifier.callCount()
	require.Equal(t, 2, before)

	_, err = f.svc.TopicStructure(ctx, "Ridge Regression", []string{"l2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ridge adds an L2 penalty."}, f.gen.lastExcerpt)

	_, err = f.svc.Explanation(ctx, gen.NodeIDs["ridge regression"], "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ridge adds an L2 penalty."}, f.gen.lastExcerpt)

	_, err = f.svc.SectionContent(ctx, "Backtesting", "pitfalls", "Look-ahead Bias")
	require.NoError(t, err)
	assert.Empty(t, f.gen.lastExcerpt)
	assert.Equal(t, before, f.classifier.callCount())

	_, err = f.svc.TopicStructure(ctx, "Kalman Filter", nil)
	require.NoError(t, err)
	assert.Equal(t, before+1, f.classifier.callCount())
}

func TestSectionContent_PlaceholderIsNotCached(t *testing.T) {
	ctx := context.Background()
	f, _ := newContentFixture(t)
	f.gen.err = &openai.Error{Kind: openai.KindMalformed, Message: "bad"}

	res, err := f.svc.SectionContent(ctx, "Options", "greeks", "The Greeks")
	require.NoError(t, err)
	assert.True(t, res.Placeholder)
	assert.True(t, res.Payload.Placeholder)
	assert.False(t, res.Cached)
	assert.Equal(t, "The Greeks", res.Payload.Title)

	f.gen.err = nil
	res, err = f.svc.SectionContent(ctx, "Options", "greeks", "The Greeks")
	require.NoError(t, err)
	assert.False(t, res.Placeholder)
	assert.False(t, res.Cached)
	assert.Equal(t, "body", res.Payload.Markdown)

	res, err = f.svc.SectionContent(ctx, "Options", "greeks", "The Greeks")
	require.NoError(t, err)
	assert.True(t, res.Cached)

	_, err = f.svc.SectionContent(ctx, "Options", "greeks", " ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestExplanation_InvalidateNodeRegenerates(t *testing.T) {
	ctx := context.Background()
	f, seed := newContentFixture(t)
	nodeID := seed("Ridge Regression")

	first, err := f.svc.Explanation(ctx, nodeID, "", "")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "Ridge Regression intermediate", first.Payload.Markdown)

	hit, err := f.svc.Explanation(ctx, nodeID, "CONCEPT", "Intermediate")
	require.NoError(t, err)
	assert.True(t, hit.Cached)
	assert.Equal(t, 2, hit.AccessCount)

	version, err := f.svc.InvalidateNode(ctx, nodeID)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	fresh, err := f.svc.Explanation(ctx, nodeID, "concept", "intermediate")
	require.NoError(t, err)
	assert.False(t, fresh.Cached)
	assert.Equal(t, 1, fresh.AccessCount)
	assert.Equal(t, 2, f.gen.calls)

	purged, err := f.svc.PurgeInvalid(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged[gencache.ExplanationCacheName])
	assert.Equal(t, []realtime.EventType{realtime.EventCacheInvalidated}, f.events.types())
}

func TestExplanation_Validation(t *testing.T) {
	ctx := context.Background()
	f, seed := newContentFixture(t)
	nodeID := seed("Copulas")

	_, err := f.svc.Explanation(ctx, nodeID, "poem", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	_, err = f.svc.Explanation(ctx, nodeID, "", "expert")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	_, err = f.svc.Explanation(ctx, uuid.New(), "", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.svc.InvalidateNode(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Uncovered topics generate without excerpts.
	_, err = f.svc.Explanation(ctx, nodeID, "", "")
	require.NoError(t, err)
	assert.Empty(t, f.gen.lastExcerpt)
}

func TestInvalidateTopicStructure(t *testing.T) {
	ctx := context.Background()
	f, _ := newContentFixture(t)

	_, err := f.svc.TopicStructure(ctx, "Time Series", nil)
	require.NoError(t, err)

	n, err := f.svc.InvalidateTopicStructure(ctx, "time series", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	res, err := f.svc.TopicStructure(ctx, "Time Series", nil)
	require.NoError(t, err)
	assert.False(t, res.Cached)

	n, err = f.svc.InvalidateSection(ctx, "Time Series", "x", "Nothing cached")
	require.NoError(t, err)
	assert.Zero(t, n)

	purged, err := f.svc.PurgeInvalid(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged[gencache.TopicStructureCacheName])
	assert.Equal(t, int64(0), purged[gencache.SectionContentCacheName])

	_, err = f.svc.InvalidateTopicStructure(ctx, "", nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}
