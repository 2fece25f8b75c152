package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/quantpath-backend/internal/observability"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/platform/pinecone"
)

// Match is one corpus chunk returned for a query.
type Match struct {
	ID        string
	Text      string
	Score     float64
	Namespace string
	Source    string
	IsWeb     bool
	Metadata  map[string]any
}

type Searcher interface {
	// Search embeds query once, queries every namespace and returns the merged
	// matches by descending score, truncated to topK. A failing namespace is
	// skipped; the error is returned only when every namespace failed.
	Search(ctx context.Context, query string, topK int, namespaces []string) ([]Match, error)
}

type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type Config struct {
	// WebNamespaces marks namespaces whose matches are web resources.
	WebNamespaces []string
}

type searcher struct {
	log   *logger.Logger
	emb   Embedder
	store pinecone.VectorStore
	web   map[string]bool
}

func New(log *logger.Logger, emb Embedder, store pinecone.VectorStore, cfg Config) Searcher {
	web := map[string]bool{}
	for _, ns := range cfg.WebNamespaces {
		if ns = strings.TrimSpace(ns); ns != "" {
			web[ns] = true
		}
	}
	return &searcher{
		log:   log.With("service", "EmbeddingSearch"),
		emb:   emb,
		store: store,
		web:   web,
	}
}

func (s *searcher) Search(ctx context.Context, query string, topK int, namespaces []string) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" || topK <= 0 || len(namespaces) == 0 {
		return nil, nil
	}
	vecs, err := s.emb.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("embed query: empty vector")
	}

	var (
		out      []Match
		failures int
		lastErr  error
	)
	for _, ns := range namespaces {
		matches, err := s.store.QueryMatches(ctx, ns, vecs[0], topK, nil)
		if err != nil {
			failures++
			lastErr = err
			observability.Current().IncSearchError(ns)
			s.log.Warn("namespace query failed", "namespace", ns, "error", err)
			continue
		}
		for _, m := range matches {
			out = append(out, s.toMatch(ns, m))
		}
	}
	if failures == len(namespaces) {
		return nil, fmt.Errorf("search all namespaces failed: %w", lastErr)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (s *searcher) toMatch(ns string, m pinecone.VectorMatch) Match {
	source := metaString(m.Metadata, "source")
	if source == "" {
		source = metaString(m.Metadata, "title")
	}
	if source == "" {
		source = ns
	}
	return Match{
		ID:        m.ID,
		Text:      metaString(m.Metadata, "text"),
		Score:     m.Score,
		Namespace: ns,
		Source:    source,
		IsWeb:     s.web[ns] || strings.EqualFold(metaString(m.Metadata, "source_type"), "web"),
		Metadata:  m.Metadata,
	}
}

func metaString(md map[string]any, key string) string {
	if md == nil {
		return ""
	}
	if v, ok := md[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
