package pinecone

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

type VectorStore interface {
	// QueryMatches returns matches with similarity scores (higher is better)
	// and their stored metadata.
	QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]VectorMatch, error)
}

type VectorMatch struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

type VectorStoreConfig struct {
	IndexName string
	// IndexHost skips the describe_index lookup when set.
	IndexHost       string
	NamespacePrefix string
}

type vectorStore struct {
	log       *logger.Logger
	pc        Client
	indexName string
	indexHost string
	nsPrefix  string
}

func NewVectorStore(ctx context.Context, log *logger.Logger, pc Client, cfg VectorStoreConfig) (VectorStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if pc == nil {
		return nil, fmt.Errorf("pinecone client required")
	}
	indexName := strings.TrimSpace(cfg.IndexName)
	host := strings.TrimSpace(cfg.IndexHost)
	if host == "" {
		if indexName == "" {
			return nil, fmt.Errorf("missing PINECONE_INDEX_NAME")
		}
		desc, err := pc.DescribeIndex(ctx, indexName)
		if err != nil {
			return nil, fmt.Errorf("pinecone describe_index failed: %w", err)
		}
		host = strings.TrimSpace(desc.Host)
		log.Warn("PINECONE_INDEX_HOST not set; resolved via describe_index (avoid this in production)",
			"index_name", indexName,
			"index_host", host,
		)
	}

	return &vectorStore{
		log:       log.With("service", "PineconeVectorStore"),
		pc:        pc,
		indexName: indexName,
		indexHost: host,
		nsPrefix:  strings.TrimSpace(cfg.NamespacePrefix),
	}, nil
}

func (s *vectorStore) QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter map[string]any) ([]VectorMatch, error) {
	if s == nil || s.pc == nil {
		return nil, fmt.Errorf("vector store unavailable")
	}
	resp, err := s.pc.Query(ctx, s.indexHost, QueryRequest{
		Namespace:       s.qualifyNamespace(namespace),
		Vector:          q,
		TopK:            topK,
		Filter:          filter,
		IncludeValues:   false,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]VectorMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		out = append(out, VectorMatch{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return out, nil
}

func (s *vectorStore) qualifyNamespace(ns string) string {
	ns = strings.TrimSpace(ns)
	if s.nsPrefix == "" {
		return ns
	}
	if ns == "" {
		return s.nsPrefix
	}
	return s.nsPrefix + ":" + ns
}
