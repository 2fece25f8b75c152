package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quantpath-backend/internal/domain"
	"github.com/yungbote/quantpath-backend/internal/platform/dbctx"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

type ExplanationCacheRepo interface {
	FindValid(dbc dbctx.Context, key types.ExplanationCacheKey) (*types.ExplanationCache, error)
	// Create inserts a fresh valid row with access_count=1. Unique violations
	// are returned unchanged so callers can resolve the race.
	Create(dbc dbctx.Context, row *types.ExplanationCache) error
	IncrementAccess(dbc dbctx.Context, id uuid.UUID) (int, error)
	ListByNode(dbc dbctx.Context, nodeID uuid.UUID) ([]*types.ExplanationCache, error)
	// PurgeStale deletes invalid rows and rows left behind by a content
	// version bump.
	PurgeStale(dbc dbctx.Context) (int64, error)
}

type explanationCacheRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExplanationCacheRepo(db *gorm.DB, baseLog *logger.Logger) ExplanationCacheRepo {
	return &explanationCacheRepo{db: db, log: baseLog.With("repo", "ExplanationCacheRepo")}
}

func (r *explanationCacheRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Context())
}

func (r *explanationCacheRepo) FindValid(dbc dbctx.Context, key types.ExplanationCacheKey) (*types.ExplanationCache, error) {
	if key.NodeID == uuid.Nil {
		return nil, nil
	}
	return findValid[types.ExplanationCache](
		r.tx(dbc),
		"node_id = ? AND content_type = ? AND difficulty = ? AND content_version = ?",
		key.NodeID, key.ContentType, key.Difficulty, key.ContentVersion,
	)
}

func (r *explanationCacheRepo) Create(dbc dbctx.Context, row *types.ExplanationCache) error {
	if row == nil {
		return nil
	}
	stampNew(&row.ID, &row.CreatedAt, &row.UpdatedAt, &row.AccessCount, &row.IsValid)
	return r.tx(dbc).Create(row).Error
}

func (r *explanationCacheRepo) IncrementAccess(dbc dbctx.Context, id uuid.UUID) (int, error) {
	return incrementAccess[types.ExplanationCache](r.tx(dbc), id)
}

// ListByNode returns every row for the node, including rows from older
// content versions.
func (r *explanationCacheRepo) ListByNode(dbc dbctx.Context, nodeID uuid.UUID) ([]*types.ExplanationCache, error) {
	var out []*types.ExplanationCache
	if nodeID == uuid.Nil {
		return out, nil
	}
	if err := r.tx(dbc).
		Where("node_id = ?", nodeID).
		Order("content_version ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *explanationCacheRepo) PurgeStale(dbc dbctx.Context) (int64, error) {
	res := r.tx(dbc).
		Where(
			"is_valid = ? OR content_version < (SELECT ln.content_version FROM learning_node ln WHERE ln.id = explanation_cache.node_id)",
			false,
		).
		Delete(&types.ExplanationCache{})
	return res.RowsAffected, res.Error
}
