package app

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/quantpath-backend/internal/modules/learning/coverage"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
	"github.com/yungbote/quantpath-backend/internal/platform/neo4jdb"
	"github.com/yungbote/quantpath-backend/internal/platform/openai"
	"github.com/yungbote/quantpath-backend/internal/platform/pinecone"
	"github.com/yungbote/quantpath-backend/internal/realtime/bus"
)

type Clients struct {
	OpenAI    openai.Client
	Vectors   pinecone.VectorStore
	Neo4j     *neo4jdb.Client
	Events    bus.Bus
	Fallbacks *coverage.FallbackTable
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Openai
	ai, err := openai.NewClient(log, openai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		EmbedModel:  cfg.OpenAI.EmbedModel,
		Timeout:     cfg.OpenAI.Timeout,
		Temperature: cfg.OpenAI.Temperature,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Pinecone
	pc, err := pinecone.New(log, pinecone.Config{
		APIKey:     cfg.Pinecone.APIKey,
		APIVersion: cfg.Pinecone.APIVersion,
		BaseURL:    cfg.Pinecone.BaseURL,
		Timeout:    cfg.Pinecone.Timeout,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init pinecone client: %w", err)
	}
	vectors, err := pinecone.NewVectorStore(ctx, log, pc, pinecone.VectorStoreConfig{
		IndexName:       cfg.Pinecone.IndexName,
		IndexHost:       cfg.Pinecone.IndexHost,
		NamespacePrefix: cfg.Pinecone.NamespacePrefix,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init pinecone vector store: %w", err)
	}

	fallbacks, err := loadFallbackTable(cfg.Coverage.FallbackPath)
	if err != nil {
		return Clients{}, err
	}

	// Redis (optional)
	events := bus.NewNopBus()
	if cfg.Redis.Addr != "" {
		events, err = bus.NewRedisBus(log, bus.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
	}

	// Neo4j (optional, nil when NEO4J_URI is unset)
	graph, err := neo4jdb.New(log, neo4jdb.Config{
		URI:         cfg.Neo4j.URI,
		User:        cfg.Neo4j.User,
		Password:    cfg.Neo4j.Password,
		Database:    cfg.Neo4j.Database,
		Timeout:     cfg.Neo4j.Timeout,
		MaxPoolSize: cfg.Neo4j.MaxPoolSize,
	})
	if err != nil {
		_ = events.Close()
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}

	return Clients{
		OpenAI:    ai,
		Vectors:   vectors,
		Neo4j:     graph,
		Events:    events,
		Fallbacks: fallbacks,
	}, nil
}

func loadFallbackTable(path string) (*coverage.FallbackTable, error) {
	if path == "" {
		t, err := coverage.DefaultFallbackTable()
		if err != nil {
			return nil, fmt.Errorf("load default fallback resources: %w", err)
		}
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback resources %s: %w", path, err)
	}
	t, err := coverage.ParseFallbackTable(raw)
	if err != nil {
		return nil, fmt.Errorf("parse fallback resources %s: %w", path, err)
	}
	return t, nil
}

func (c *Clients) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Events != nil {
		_ = c.Events.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
}
