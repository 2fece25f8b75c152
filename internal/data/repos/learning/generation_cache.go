package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shared queries for the generation cache tables. Every table has id,
// payload, access_count, is_valid and updated_at columns.

func findValid[T any](t *gorm.DB, query string, args ...interface{}) (*T, error) {
	var out []*T
	if err := t.Where("is_valid = ?", true).
		Where(query, args...).
		Order("created_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// incrementAccess bumps access_count in a single statement so concurrent
// readers never lose increments, then reads the new value back.
func incrementAccess[T any](t *gorm.DB, id uuid.UUID) (int, error) {
	var model T
	res := t.Model(&model).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_count": gorm.Expr("access_count + 1"),
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var counts []int
	if err := t.Model(&model).Where("id = ?", id).Pluck("access_count", &counts).Error; err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return counts[0], nil
}

func invalidateWhere[T any](t *gorm.DB, query string, args ...interface{}) (int64, error) {
	var model T
	res := t.Model(&model).
		Where("is_valid = ?", true).
		Where(query, args...).
		Updates(map[string]interface{}{
			"is_valid":   false,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func purgeInvalid[T any](t *gorm.DB) (int64, error) {
	var model T
	res := t.Where("is_valid = ?", false).Delete(&model)
	return res.RowsAffected, res.Error
}

func stampNew(id *uuid.UUID, createdAt, updatedAt *time.Time, accessCount *int, isValid *bool) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
	*accessCount = 1
	*isValid = true
}
