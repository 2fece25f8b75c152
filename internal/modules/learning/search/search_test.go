package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/platform/pinecone"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type fakeStore struct {
	byNamespace map[string][]pinecone.VectorMatch
	failing     map[string]bool
}

func (f *fakeStore) QueryMatches(_ context.Context, ns string, _ []float32, _ int, _ map[string]any) ([]pinecone.VectorMatch, error) {
	if f.failing[ns] {
		return nil, errors.New("namespace down")
	}
	return f.byNamespace[ns], nil
}

func TestSearch_MergesSortsAndTruncates(t *testing.T) {
	emb := &fakeEmbedder{}
	store := &fakeStore{byNamespace: map[string][]pinecone.VectorMatch{
		"books": {
			{ID: "b1", Score: 0.7, Metadata: map[string]any{"text": "chunk b1", "source": "Hull"}},
			{ID: "b2", Score: 0.4, Metadata: map[string]any{"text": "chunk b2", "title": "Shreve"}},
		},
		"web": {
			{ID: "w1", Score: 0.9, Metadata: map[string]any{"text": "chunk w1"}},
		},
	}}
	s := New(logger.Nop(), emb, store, Config{WebNamespaces: []string{"web"}})

	got, err := s.Search(context.Background(), "ito calculus", 2, []string{"books", "web"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, emb.calls)

	assert.Equal(t, "w1", got[0].ID)
	assert.True(t, got[0].IsWeb)
	assert.Equal(t, "web", got[0].Source)
	assert.Equal(t, "b1", got[1].ID)
	assert.Equal(t, "Hull", got[1].Source)
	assert.False(t, got[1].IsWeb)
}

func TestSearch_PartialAndTotalFailure(t *testing.T) {
	store := &fakeStore{
		byNamespace: map[string][]pinecone.VectorMatch{"books": {{ID: "b1", Score: 0.5, Metadata: map[string]any{"source_type": "web"}}}},
		failing:     map[string]bool{"web": true},
	}
	s := New(logger.Nop(), &fakeEmbedder{}, store, Config{})

	got, err := s.Search(context.Background(), "q", 10, []string{"books", "web"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsWeb)

	_, err = s.Search(context.Background(), "q", 10, []string{"web"})
	require.Error(t, err)
}

func TestSearch_EmptyInputsAndEmbedFailure(t *testing.T) {
	emb := &fakeEmbedder{}
	s := New(logger.Nop(), emb, &fakeStore{}, Config{})

	got, err := s.Search(context.Background(), "  ", 10, []string{"books"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, emb.calls)

	emb.err = errors.New("llm down")
	_, err = s.Search(context.Background(), "q", 10, []string{"books"})
	require.Error(t, err)
}
