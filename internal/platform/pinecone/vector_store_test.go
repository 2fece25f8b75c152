package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

func TestVectorStore_QueryMatchesWithMetadata(t *testing.T) {
	var got QueryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"namespace": got.Namespace,
			"matches": []map[string]any{
				{"id": "c1", "score": 0.81, "metadata": map[string]any{"text": "Ito's lemma", "source": "Shreve"}},
				{"id": "", "score": 0.5},
			},
		})
	}))
	defer srv.Close()

	pc, err := New(logger.Nop(), Config{APIKey: "key"})
	require.NoError(t, err)
	vs, err := NewVectorStore(context.Background(), logger.Nop(), pc, VectorStoreConfig{IndexHost: srv.URL, NamespacePrefix: "qp"})
	require.NoError(t, err)

	matches, err := vs.QueryMatches(context.Background(), "books", []float32{0.1, 0.2}, 50, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0.81, matches[0].Score)
	assert.Equal(t, "Shreve", matches[0].Metadata["source"])

	assert.Equal(t, "qp:books", got.Namespace)
	assert.Equal(t, 50, got.TopK)
	assert.True(t, got.IncludeMetadata)
}

func TestVectorStore_ResolvesHostAndSurfacesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/indexes/corpus":
			_ = json.NewEncoder(w).Encode(map[string]any{"name": "corpus", "host": "http://" + r.Host})
		default:
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	pc, err := New(logger.Nop(), Config{APIKey: "key", BaseURL: srv.URL})
	require.NoError(t, err)
	vs, err := NewVectorStore(context.Background(), logger.Nop(), pc, VectorStoreConfig{IndexName: "corpus"})
	require.NoError(t, err)

	_, err = vs.QueryMatches(context.Background(), "web", []float32{1}, 5, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pinecone http 500")
}

func TestDataPlaneURL(t *testing.T) {
	assert.Equal(t, "https://idx.svc.pinecone.io/query", dataPlaneURL("idx.svc.pinecone.io", "/query"))
	assert.Equal(t, "http://127.0.0.1:9/query", dataPlaneURL("http://127.0.0.1:9/", "/query"))
}
