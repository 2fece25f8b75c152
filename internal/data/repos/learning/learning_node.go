package learning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/quantpath-backend/internal/domain"
	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/platform/dbctx"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

type LearningNodeRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningNode, error)
	GetByNames(dbc dbctx.Context, names []string) ([]*types.LearningNode, error)

	// EnsureByNames returns one node per distinct normalized name, creating
	// missing nodes at content version 1.
	EnsureByNames(dbc dbctx.Context, names []string) ([]*types.LearningNode, error)

	// BumpContentVersion increments the node's content version and returns the
	// new value.
	BumpContentVersion(dbc dbctx.Context, id uuid.UUID) (int, error)

	// RecordCoverage stores the outcome of a coverage check on the node.
	RecordCoverage(dbc dbctx.Context, id uuid.UUID, res learning.CoverageResult) error
}

type learningNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningNodeRepo(db *gorm.DB, baseLog *logger.Logger) LearningNodeRepo {
	return &learningNodeRepo{db: db, log: baseLog.With("repo", "LearningNodeRepo")}
}

func (r *learningNodeRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Context())
}

func (r *learningNodeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LearningNode, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.LearningNode
	if err := r.tx(dbc).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *learningNodeRepo) GetByNames(dbc dbctx.Context, names []string) ([]*types.LearningNode, error) {
	keys := normalizedNames(names)
	var out []*types.LearningNode
	if len(keys) == 0 {
		return out, nil
	}
	if err := r.tx(dbc).Where("normalized_name IN ?", keys).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *learningNodeRepo) EnsureByNames(dbc dbctx.Context, names []string) ([]*types.LearningNode, error) {
	now := time.Now().UTC()
	seen := map[string]bool{}
	rows := make([]*types.LearningNode, 0, len(names))
	for _, n := range names {
		key := learning.NormalizeName(n)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, &types.LearningNode{
			ID:             uuid.New(),
			Name:           strings.TrimSpace(n),
			NormalizedName: key,
			ContentVersion: 1,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	if len(rows) == 0 {
		return []*types.LearningNode{}, nil
	}
	if err := r.tx(dbc).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "normalized_name"}},
			DoNothing: true,
		}).
		Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("ensure learning nodes: %w", err)
	}
	return r.GetByNames(dbc, names)
}

func (r *learningNodeRepo) BumpContentVersion(dbc dbctx.Context, id uuid.UUID) (int, error) {
	res := r.tx(dbc).
		Model(&types.LearningNode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content_version": gorm.Expr("content_version + 1"),
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var versions []int
	if err := r.tx(dbc).
		Model(&types.LearningNode{}).
		Where("id = ?", id).
		Pluck("content_version", &versions).Error; err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return versions[0], nil
}

func (r *learningNodeRepo) RecordCoverage(dbc dbctx.Context, id uuid.UUID, res learning.CoverageResult) error {
	chunks := res.Chunks()
	if chunks == nil {
		chunks = []string{}
	}
	raw, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("encode coverage chunks: %w", err)
	}
	now := time.Now().UTC()
	out := r.tx(dbc).
		Model(&types.LearningNode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"covered":             res.Covered,
			"coverage_confidence": res.Confidence,
			"coverage_chunks":     datatypes.JSON(raw),
			"coverage_checked_at": now,
			"updated_at":          now,
		})
	if out.Error != nil {
		return out.Error
	}
	if out.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func normalizedNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := map[string]bool{}
	for _, n := range names {
		k := learning.NormalizeName(n)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
