package gencache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quantpath-backend/internal/data/repos"
	"github.com/yungbote/quantpath-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quantpath-backend/internal/domain"
	"github.com/yungbote/quantpath-backend/internal/platform/dbctx"
)

type payload struct {
	Text string `json:"text"`
}

func counting(calls *int32, text string) GenerateFunc[payload] {
	return func(context.Context) (payload, error) {
		atomic.AddInt32(calls, 1)
		return payload{Text: text}, nil
	}
}

func TestTopicStructureCache_SecondCallIsCached(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	cache := NewTopicStructureCache[payload](db, repos.NewTopicStructureCacheRepo(db, log), log)

	var calls int32
	first, err := cache.GetOrGenerate(ctx, StructureKey{Topic: "Stochastic Calculus", Keywords: []string{"ito", "brownian motion"}}, counting(&calls, "v1"))
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, first.AccessCount)
	assert.Equal(t, "v1", first.Payload.Text)

	second, err := cache.GetOrGenerate(ctx, StructureKey{Topic: "stochastic  calculus", Keywords: []string{"Brownian Motion", "ito"}}, counting(&calls, "v2"))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 2, second.AccessCount)
	assert.Equal(t, "v1", second.Payload.Text)
	assert.Equal(t, first.EntryID, second.EntryID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestExplanationCache_VersionBumpMakesOldRowUnreachable(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	nodes := repos.NewLearningNodeRepo(db, log)
	rows := repos.NewExplanationCacheRepo(db, log)
	cache := NewExplanationCache[payload](db, rows, log)

	node := testutil.SeedNode(t, ctx, db, "Ridge Regression")
	key := types.ExplanationCacheKey{NodeID: node.ID, ContentType: "concept", Difficulty: "intermediate", ContentVersion: node.ContentVersion}

	var calls int32
	_, err := cache.GetOrGenerate(ctx, key, counting(&calls, "old"))
	require.NoError(t, err)
	hit, err := cache.GetOrGenerate(ctx, key, counting(&calls, "unused"))
	require.NoError(t, err)
	require.True(t, hit.Cached)

	version, err := nodes.BumpContentVersion(dbctx.Context{Ctx: ctx}, node.ID)
	require.NoError(t, err)
	require.Equal(t, 2, version)

	key.ContentVersion = version
	fresh, err := cache.GetOrGenerate(ctx, key, counting(&calls, "new"))
	require.NoError(t, err)
	assert.False(t, fresh.Cached)
	assert.Equal(t, "new", fresh.Payload.Text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	all, err := rows.ListByNode(dbctx.Context{Ctx: ctx}, node.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].ContentVersion)
	assert.Equal(t, 2, all[0].AccessCount)

	_, err = cache.Invalidate(ctx, key)
	assert.ErrorIs(t, err, ErrNotSupported)

	purged, err := cache.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	again, err := cache.GetOrGenerate(ctx, key, counting(&calls, "unused"))
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, "new", again.Payload.Text)
}

func TestSectionContentCache_GeneratorErrorPersistsNothing(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rows := repos.NewSectionContentCacheRepo(db, log)
	cache := NewSectionContentCache[payload](db, rows, log)
	key := SectionKey{Topic: "Options", SectionID: "s1", SectionTitle: "Put-call parity"}

	boom := errors.New("model refused")
	_, err := cache.GetOrGenerate(ctx, key, func(context.Context) (payload, error) { return payload{}, boom })
	require.ErrorIs(t, err, boom)

	listed, err := rows.ListByKey(dbctx.Context{Ctx: ctx}, key.Hash())
	require.NoError(t, err)
	assert.Empty(t, listed)

	var calls int32
	res, err := cache.GetOrGenerate(ctx, key, counting(&calls, "ok"))
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, int32(1), calls)
}

func TestSectionContentCache_InvalidateThenRegenerate(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rows := repos.NewSectionContentCacheRepo(db, log)
	cache := NewSectionContentCache[payload](db, rows, log)
	key := SectionKey{Topic: "Options", SectionID: "s2", SectionTitle: "Greeks"}

	var calls int32
	_, err := cache.GetOrGenerate(ctx, key, counting(&calls, "first"))
	require.NoError(t, err)

	n, err := cache.Invalidate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	res, err := cache.GetOrGenerate(ctx, key, counting(&calls, "second"))
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 1, res.AccessCount)
	assert.Equal(t, "second", res.Payload.Text)

	listed, err := rows.ListByKey(dbctx.Context{Ctx: ctx}, key.Hash())
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	purged, err := cache.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestTopicStructureCache_ConcurrentMissResolvesToOneRow(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rows := repos.NewTopicStructureCacheRepo(db, log)
	cache := NewTopicStructureCache[payload](db, rows, log)
	key := StructureKey{Topic: "Time Series", Keywords: []string{"arima"}}

	// Both callers miss and generate before either inserts.
	var entered sync.WaitGroup
	entered.Add(2)
	gen := func(text string) GenerateFunc[payload] {
		return func(context.Context) (payload, error) {
			entered.Done()
			entered.Wait()
			return payload{Text: text}, nil
		}
	}

	results := make([]Result[payload], 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, text := range []string{"a", "b"} {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			results[i], errs[i] = cache.GetOrGenerate(ctx, key, gen(text))
		}(i, text)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	cachedCount := 0
	for _, r := range results {
		if r.Cached {
			cachedCount++
			assert.Equal(t, 2, r.AccessCount)
		} else {
			assert.Equal(t, 1, r.AccessCount)
		}
	}
	assert.Equal(t, 1, cachedCount)
	assert.Equal(t, results[0].EntryID, results[1].EntryID)
	assert.Equal(t, results[0].Payload, results[1].Payload)

	listed, err := rows.ListByKey(dbctx.Context{Ctx: ctx}, key.Hash())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestCache_LookupDoesNotGenerate(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	cache := NewTopicStructureCache[payload](db, repos.NewTopicStructureCacheRepo(db, log), log)
	key := StructureKey{Topic: "Portfolio Theory"}

	_, ok, err := cache.Lookup(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	var calls int32
	_, err = cache.GetOrGenerate(ctx, key, counting(&calls, "x"))
	require.NoError(t, err)
	res, ok, err := cache.Lookup(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, res.AccessCount)
}
