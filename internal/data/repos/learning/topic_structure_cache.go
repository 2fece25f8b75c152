package learning

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quantpath-backend/internal/domain"
	"github.com/yungbote/quantpath-backend/internal/platform/dbctx"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

type TopicStructureCacheRepo interface {
	FindValid(dbc dbctx.Context, cacheKey string) (*types.TopicStructureCache, error)
	Create(dbc dbctx.Context, row *types.TopicStructureCache) error
	IncrementAccess(dbc dbctx.Context, id uuid.UUID) (int, error)
	Invalidate(dbc dbctx.Context, cacheKey string) (int64, error)
	ListByKey(dbc dbctx.Context, cacheKey string) ([]*types.TopicStructureCache, error)
	PurgeInvalid(dbc dbctx.Context) (int64, error)
}

type topicStructureCacheRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicStructureCacheRepo(db *gorm.DB, baseLog *logger.Logger) TopicStructureCacheRepo {
	return &topicStructureCacheRepo{db: db, log: baseLog.With("repo", "TopicStructureCacheRepo")}
}

func (r *topicStructureCacheRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Context())
}

func (r *topicStructureCacheRepo) FindValid(dbc dbctx.Context, cacheKey string) (*types.TopicStructureCache, error) {
	cacheKey = strings.TrimSpace(cacheKey)
	if cacheKey == "" {
		return nil, nil
	}
	return findValid[types.TopicStructureCache](r.tx(dbc), "cache_key = ?", cacheKey)
}

func (r *topicStructureCacheRepo) Create(dbc dbctx.Context, row *types.TopicStructureCache) error {
	if row == nil {
		return nil
	}
	stampNew(&row.ID, &row.CreatedAt, &row.UpdatedAt, &row.AccessCount, &row.IsValid)
	return r.tx(dbc).Create(row).Error
}

func (r *topicStructureCacheRepo) IncrementAccess(dbc dbctx.Context, id uuid.UUID) (int, error) {
	return incrementAccess[types.TopicStructureCache](r.tx(dbc), id)
}

func (r *topicStructureCacheRepo) Invalidate(dbc dbctx.Context, cacheKey string) (int64, error) {
	return invalidateWhere[types.TopicStructureCache](r.tx(dbc), "cache_key = ?", strings.TrimSpace(cacheKey))
}

// ListByKey includes invalidated rows.
func (r *topicStructureCacheRepo) ListByKey(dbc dbctx.Context, cacheKey string) ([]*types.TopicStructureCache, error) {
	var out []*types.TopicStructureCache
	if err := r.tx(dbc).Where("cache_key = ?", strings.TrimSpace(cacheKey)).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *topicStructureCacheRepo) PurgeInvalid(dbc dbctx.Context) (int64, error) {
	return purgeInvalid[types.TopicStructureCache](r.tx(dbc))
}
