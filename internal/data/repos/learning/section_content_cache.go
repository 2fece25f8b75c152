package learning

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quantpath-backend/internal/domain"
	"github.com/yungbote/quantpath-backend/internal/platform/dbctx"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

type SectionContentCacheRepo interface {
	FindValid(dbc dbctx.Context, cacheKey string) (*types.SectionContentCache, error)
	Create(dbc dbctx.Context, row *types.SectionContentCache) error
	IncrementAccess(dbc dbctx.Context, id uuid.UUID) (int, error)
	Invalidate(dbc dbctx.Context, cacheKey string) (int64, error)
	ListByKey(dbc dbctx.Context, cacheKey string) ([]*types.SectionContentCache, error)
	PurgeInvalid(dbc dbctx.Context) (int64, error)
}

type sectionContentCacheRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionContentCacheRepo(db *gorm.DB, baseLog *logger.Logger) SectionContentCacheRepo {
	return &sectionContentCacheRepo{db: db, log: baseLog.With("repo", "SectionContentCacheRepo")}
}

func (r *sectionContentCacheRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Context())
}

func (r *sectionContentCacheRepo) FindValid(dbc dbctx.Context, cacheKey string) (*types.SectionContentCache, error) {
	cacheKey = strings.TrimSpace(cacheKey)
	if cacheKey == "" {
		return nil, nil
	}
	return findValid[types.SectionContentCache](r.tx(dbc), "cache_key = ?", cacheKey)
}

func (r *sectionContentCacheRepo) Create(dbc dbctx.Context, row *types.SectionContentCache) error {
	if row == nil {
		return nil
	}
	stampNew(&row.ID, &row.CreatedAt, &row.UpdatedAt, &row.AccessCount, &row.IsValid)
	return r.tx(dbc).Create(row).Error
}

func (r *sectionContentCacheRepo) IncrementAccess(dbc dbctx.Context, id uuid.UUID) (int, error) {
	return incrementAccess[types.SectionContentCache](r.tx(dbc), id)
}

func (r *sectionContentCacheRepo) Invalidate(dbc dbctx.Context, cacheKey string) (int64, error) {
	return invalidateWhere[types.SectionContentCache](r.tx(dbc), "cache_key = ?", strings.TrimSpace(cacheKey))
}

// ListByKey includes invalidated rows.
func (r *sectionContentCacheRepo) ListByKey(dbc dbctx.Context, cacheKey string) ([]*types.SectionContentCache, error) {
	var out []*types.SectionContentCache
	if err := r.tx(dbc).Where("cache_key = ?", strings.TrimSpace(cacheKey)).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sectionContentCacheRepo) PurgeInvalid(dbc dbctx.Context) (int64, error) {
	return purgeInvalid[types.SectionContentCache](r.tx(dbc))
}
