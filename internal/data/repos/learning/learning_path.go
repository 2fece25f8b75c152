package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quantpath-backend/internal/domain"
	"github.com/yungbote/quantpath-backend/internal/platform/dbctx"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

const defaultHistoryLimit = 20

type LearningPathRepo interface {
	Create(dbc dbctx.Context, row *types.LearningPath) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error)
	// GetLatestByUser returns nil when the user has no paths.
	GetLatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.LearningPath, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.LearningPath, error)
}

type learningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return &learningPathRepo{db: db, log: baseLog.With("repo", "LearningPathRepo")}
}

func (r *learningPathRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Context())
}

func (r *learningPathRepo) Create(dbc dbctx.Context, row *types.LearningPath) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.tx(dbc).Create(row).Error
}

func (r *learningPathRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningPath, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.LearningPath
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *learningPathRepo) GetLatestByUser(dbc dbctx.Context, userID uuid.UUID) (*types.LearningPath, error) {
	rows, err := r.ListByUser(dbc, userID, 1)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *learningPathRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.LearningPath, error) {
	var out []*types.LearningPath
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if err := r.tx(dbc).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
