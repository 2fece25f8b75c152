package learning

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/quantpath-backend/internal/data/repos/testutil"
	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/platform/dbctx"
)

func TestLearningNodeRepo_EnsureByNames(t *testing.T) {
	db := testutil.DB(t)
	repo := NewLearningNodeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	nodes, err := repo.EnsureByNames(dbc, []string{"Stochastic Calculus", "  stochastic   calculus ", "Black-Scholes", ""})
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	again, err := repo.EnsureByNames(dbc, []string{"STOCHASTIC CALCULUS", "Monte Carlo"})
	require.NoError(t, err)
	require.Len(t, again, 2)

	byName := map[string]uuid.UUID{}
	for _, n := range nodes {
		byName[n.NormalizedName] = n.ID
		assert.Equal(t, 1, n.ContentVersion)
	}
	for _, n := range again {
		if n.NormalizedName == "stochastic calculus" {
			assert.Equal(t, byName["stochastic calculus"], n.ID)
		}
	}

	all, err := repo.GetByNames(dbc, []string{"stochastic calculus", "black-scholes", "monte carlo", "missing"})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLearningNodeRepo_BumpContentVersion(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLearningNodeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	n := testutil.SeedNode(t, ctx, db, "Time Series")

	v, err := repo.BumpContentVersion(dbc, n.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	v, err = repo.BumpContentVersion(dbc, n.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	got, err := repo.GetByID(dbc, n.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.ContentVersion)

	_, err = repo.BumpContentVersion(dbc, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	missing, err := repo.GetByID(dbc, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLearningNodeRepo_RecordCoverage(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewLearningNodeRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	covered := testutil.SeedNode(t, ctx, db, "Kalman Filter")
	uncovered := testutil.SeedNode(t, ctx, db, "Market Microstructure")

	got, err := repo.GetByID(dbc, covered.ID)
	require.NoError(t, err)
	_, recorded := got.CoverageExcerpts()
	assert.False(t, recorded)

	require.NoError(t, repo.RecordCoverage(dbc, covered.ID, learning.CoverageResult{
		Topic:      "Kalman Filter",
		Covered:    true,
		Confidence: 0.74,
		Sources: []learning.SourceMatch{
			{SourceName: "Shumway", Confidence: 0.74, ChunkCount: 2, Chunks: []string{"state space", "innovations"}},
			{SourceName: "Tsay", Confidence: 0.61, ChunkCount: 1, Chunks: []string{"filtering"}},
		},
	}))
	require.NoError(t, repo.RecordCoverage(dbc, uncovered.ID, learning.CoverageResult{
		Topic:      "Market Microstructure",
		Confidence: 0.31,
		Sources:    []learning.SourceMatch{},
	}))

	got, err = repo.GetByID(dbc, covered.ID)
	require.NoError(t, err)
	assert.True(t, got.Covered)
	assert.InDelta(t, 0.74, got.CoverageConfidence, 1e-9)
	chunks, recorded := got.CoverageExcerpts()
	assert.True(t, recorded)
	assert.Equal(t, []string{"state space", "innovations", "filtering"}, chunks)

	rows, err := repo.GetByNames(dbc, []string{"market microstructure"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	chunks, recorded = rows[0].CoverageExcerpts()
	assert.True(t, recorded)
	assert.Empty(t, chunks)

	err = repo.RecordCoverage(dbc, uuid.New(), learning.CoverageResult{Topic: "Missing"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
