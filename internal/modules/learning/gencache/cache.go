package gencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/quantpath-backend/internal/data/dberr"
	"github.com/yungbote/quantpath-backend/internal/observability"
	"github.com/yungbote/quantpath-backend/internal/platform/dbctx"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeRace  = "race"
	OutcomeError = "error"
)

// ErrNotSupported is returned by Invalidate on caches whose rows are only
// invalidated through a version bump.
var ErrNotSupported = errors.New("operation not supported by this cache")

// Entry is the cache row as seen by the engine.
type Entry struct {
	ID          uuid.UUID
	Payload     datatypes.JSON
	AccessCount int
}

// Store is one cache table. Find only returns valid rows. Insert must fail
// with a unique violation when a valid row for the key already exists.
type Store[K any] interface {
	Find(dbc dbctx.Context, key K) (*Entry, error)
	Insert(dbc dbctx.Context, key K, payload datatypes.JSON) (*Entry, error)
	Increment(dbc dbctx.Context, id uuid.UUID) (int, error)
}

type Invalidator[K any] interface {
	Invalidate(dbc dbctx.Context, key K) (int64, error)
}

type Purger interface {
	Purge(dbc dbctx.Context) (int64, error)
}

type Result[P any] struct {
	Payload     P
	Cached      bool
	AccessCount int
	EntryID     uuid.UUID
}

type GenerateFunc[P any] func(ctx context.Context) (P, error)

// Cache is a get-or-generate front for one Store. It holds no state of its
// own; the store's unique index arbitrates concurrent writers.
type Cache[K any, P any] struct {
	name  string
	db    *gorm.DB
	store Store[K]
	log   *logger.Logger
}

func New[K any, P any](name string, db *gorm.DB, store Store[K], baseLog *logger.Logger) *Cache[K, P] {
	return &Cache[K, P]{
		name:  name,
		db:    db,
		store: store,
		log:   baseLog.With("cache", name),
	}
}

func (c *Cache[K, P]) Name() string { return c.name }

// GetOrGenerate returns the valid cached payload for key, bumping its access
// count, or calls generate and stores the result. Generator errors are
// returned without persisting anything.
func (c *Cache[K, P]) GetOrGenerate(ctx context.Context, key K, generate GenerateFunc[P]) (Result[P], error) {
	ctx, span := observability.StartSpan(ctx, "gencache.get_or_generate", attribute.String("cache", c.name))
	defer span.End()

	res, ok, err := c.lookup(ctx, key)
	if err != nil {
		c.record(OutcomeError)
		return Result[P]{}, err
	}
	if ok {
		c.record(OutcomeHit)
		span.SetAttributes(attribute.Bool("cached", true))
		return res, nil
	}

	payload, err := generate(ctx)
	if err != nil {
		c.record(OutcomeError)
		return Result[P]{}, fmt.Errorf("%s: generate: %w", c.name, err)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		c.record(OutcomeError)
		return Result[P]{}, fmt.Errorf("%s: encode payload: %w", c.name, err)
	}

	var created *Entry
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e, err := c.store.Insert(dbctx.Context{Ctx: ctx, Tx: tx}, key, datatypes.JSON(raw))
		if err != nil {
			return err
		}
		created = e
		return nil
	})
	if err == nil && created != nil {
		c.record(OutcomeMiss)
		span.SetAttributes(attribute.Bool("cached", false))
		return Result[P]{Payload: payload, Cached: false, AccessCount: created.AccessCount, EntryID: created.ID}, nil
	}
	if err != nil && !dberr.IsUniqueViolation(err) {
		c.record(OutcomeError)
		return Result[P]{}, fmt.Errorf("%s: insert: %w", c.name, err)
	}

	// Another writer stored the same key first; serve its row.
	c.log.Debug("cache insert lost race; re-reading winner")
	res, ok, err = c.lookup(ctx, key)
	if err != nil {
		c.record(OutcomeError)
		return Result[P]{}, err
	}
	c.record(OutcomeRace)
	if !ok {
		c.log.Warn("cache row vanished after insert race; serving generated payload")
		return Result[P]{Payload: payload}, nil
	}
	span.SetAttributes(attribute.Bool("cached", true))
	return res, nil
}

// Lookup returns the valid payload for key without generating on a miss.
// A hit counts as an access.
func (c *Cache[K, P]) Lookup(ctx context.Context, key K) (Result[P], bool, error) {
	return c.lookup(ctx, key)
}

func (c *Cache[K, P]) lookup(ctx context.Context, key K) (Result[P], bool, error) {
	dbc := dbctx.Context{Ctx: ctx}
	e, err := c.store.Find(dbc, key)
	if err != nil {
		return Result[P]{}, false, fmt.Errorf("%s: find: %w", c.name, err)
	}
	if e == nil {
		return Result[P]{}, false, nil
	}
	var payload P
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return Result[P]{}, false, fmt.Errorf("%s: decode cached payload %s: %w", c.name, e.ID, err)
	}
	count, err := c.store.Increment(dbc, e.ID)
	if err != nil {
		if dberr.IsNotFound(err) {
			// Purged between find and increment.
			return Result[P]{}, false, nil
		}
		return Result[P]{}, false, fmt.Errorf("%s: increment: %w", c.name, err)
	}
	return Result[P]{Payload: payload, Cached: true, AccessCount: count, EntryID: e.ID}, true, nil
}

// Invalidate marks the valid row for key invalid. Caches whose store has no
// explicit invalidation return ErrNotSupported.
func (c *Cache[K, P]) Invalidate(ctx context.Context, key K) (int64, error) {
	inv, ok := c.store.(Invalidator[K])
	if !ok {
		return 0, ErrNotSupported
	}
	n, err := inv.Invalidate(dbctx.Context{Ctx: ctx}, key)
	if err != nil {
		return 0, fmt.Errorf("%s: invalidate: %w", c.name, err)
	}
	return n, nil
}

// Purge deletes rows that can never be served again.
func (c *Cache[K, P]) Purge(ctx context.Context) (int64, error) {
	p, ok := c.store.(Purger)
	if !ok {
		return 0, nil
	}
	n, err := p.Purge(dbctx.Context{Ctx: ctx})
	if err != nil {
		return 0, fmt.Errorf("%s: purge: %w", c.name, err)
	}
	return n, nil
}

func (c *Cache[K, P]) record(outcome string) {
	observability.Current().IncCacheLookup(c.name, outcome)
}
