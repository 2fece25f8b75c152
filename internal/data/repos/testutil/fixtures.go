package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/quantpath-backend/internal/domain"
	"github.com/yungbote/quantpath-backend/internal/domain/learning"
)

func SeedNode(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.LearningNode {
	tb.Helper()
	now := time.Now().UTC()
	n := &types.LearningNode{
		ID:             uuid.New(),
		Name:           name,
		NormalizedName: learning.NormalizeName(name),
		ContentVersion: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed node: %v", err)
	}
	return n
}

func SeedPath(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, createdAt time.Time, stages []learning.Stage) *types.LearningPath {
	tb.Helper()
	p := &types.LearningPath{
		ID:              uuid.New(),
		UserID:          userID,
		JobDescription:  "quant analyst",
		Stages:          JSON(tb, stages),
		Dependencies:    JSON(tb, []learning.DependencyEdge{}),
		CoveredTopics:   JSON(tb, []string{}),
		UncoveredTopics: JSON(tb, []string{}),
		CreatedAt:       createdAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed path: %v", err)
	}
	return p
}

func JSON(tb testing.TB, v any) datatypes.JSON {
	tb.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		tb.Fatalf("marshal: %v", err)
	}
	return datatypes.JSON(b)
}
