package gencache

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/quantpath-backend/internal/data/repos"
	types "github.com/yungbote/quantpath-backend/internal/domain"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/keys"
	"github.com/yungbote/quantpath-backend/internal/platform/dbctx"
	"github.com/yungbote/quantpath-backend/internal/platform/logger"
)

const (
	ExplanationCacheName    = "explanation"
	TopicStructureCacheName = "topic_structure"
	SectionContentCacheName = "section_content"
)

// StructureKey is the input tuple of the topic structure cache.
type StructureKey struct {
	Topic    string
	Keywords []string
}

func (k StructureKey) Hash() string { return keys.StructureKey(k.Topic, k.Keywords) }

// SectionKey is the input tuple of the section content cache.
type SectionKey struct {
	Topic        string
	SectionID    string
	SectionTitle string
}

func (k SectionKey) Hash() string { return keys.SectionKey(k.Topic, k.SectionID, k.SectionTitle) }

// ---- explanation ----

type explanationStore struct {
	repo repos.ExplanationCacheRepo
}

// NewExplanationCache keys on (node, content type, difficulty, content
// version). Rows are never invalidated explicitly; bumping the node's
// content version makes them unreachable.
func NewExplanationCache[P any](db *gorm.DB, repo repos.ExplanationCacheRepo, baseLog *logger.Logger) *Cache[types.ExplanationCacheKey, P] {
	return New[types.ExplanationCacheKey, P](ExplanationCacheName, db, &explanationStore{repo: repo}, baseLog)
}

func (s *explanationStore) Find(dbc dbctx.Context, key types.ExplanationCacheKey) (*Entry, error) {
	row, err := s.repo.FindValid(dbc, key)
	if err != nil || row == nil {
		return nil, err
	}
	return &Entry{ID: row.ID, Payload: row.Payload, AccessCount: row.AccessCount}, nil
}

func (s *explanationStore) Insert(dbc dbctx.Context, key types.ExplanationCacheKey, payload datatypes.JSON) (*Entry, error) {
	row := &types.ExplanationCache{
		NodeID:         key.NodeID,
		ContentType:    key.ContentType,
		Difficulty:     key.Difficulty,
		ContentVersion: key.ContentVersion,
		Payload:        payload,
	}
	if err := s.repo.Create(dbc, row); err != nil {
		return nil, err
	}
	return &Entry{ID: row.ID, Payload: row.Payload, AccessCount: row.AccessCount}, nil
}

func (s *explanationStore) Increment(dbc dbctx.Context, id uuid.UUID) (int, error) {
	return s.repo.IncrementAccess(dbc, id)
}

func (s *explanationStore) Purge(dbc dbctx.Context) (int64, error) {
	return s.repo.PurgeStale(dbc)
}

// ---- topic structure ----

type structureStore struct {
	repo repos.TopicStructureCacheRepo
}

func NewTopicStructureCache[P any](db *gorm.DB, repo repos.TopicStructureCacheRepo, baseLog *logger.Logger) *Cache[StructureKey, P] {
	return New[StructureKey, P](TopicStructureCacheName, db, &structureStore{repo: repo}, baseLog)
}

func (s *structureStore) Find(dbc dbctx.Context, key StructureKey) (*Entry, error) {
	row, err := s.repo.FindValid(dbc, key.Hash())
	if err != nil || row == nil {
		return nil, err
	}
	return &Entry{ID: row.ID, Payload: row.Payload, AccessCount: row.AccessCount}, nil
}

func (s *structureStore) Insert(dbc dbctx.Context, key StructureKey, payload datatypes.JSON) (*Entry, error) {
	kw := make([]string, 0, len(key.Keywords))
	for _, k := range key.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			kw = append(kw, k)
		}
	}
	kwJSON, _ := json.Marshal(kw)
	row := &types.TopicStructureCache{
		CacheKey:  key.Hash(),
		TopicName: strings.TrimSpace(key.Topic),
		Keywords:  datatypes.JSON(kwJSON),
		Payload:   payload,
	}
	if err := s.repo.Create(dbc, row); err != nil {
		return nil, err
	}
	return &Entry{ID: row.ID, Payload: row.Payload, AccessCount: row.AccessCount}, nil
}

func (s *structureStore) Increment(dbc dbctx.Context, id uuid.UUID) (int, error) {
	return s.repo.IncrementAccess(dbc, id)
}

func (s *structureStore) Invalidate(dbc dbctx.Context, key StructureKey) (int64, error) {
	return s.repo.Invalidate(dbc, key.Hash())
}

func (s *structureStore) Purge(dbc dbctx.Context) (int64, error) {
	return s.repo.PurgeInvalid(dbc)
}

// ---- section content ----

type sectionStore struct {
	repo repos.SectionContentCacheRepo
}

func NewSectionContentCache[P any](db *gorm.DB, repo repos.SectionContentCacheRepo, baseLog *logger.Logger) *Cache[SectionKey, P] {
	return New[SectionKey, P](SectionContentCacheName, db, &sectionStore{repo: repo}, baseLog)
}

func (s *sectionStore) Find(dbc dbctx.Context, key SectionKey) (*Entry, error) {
	row, err := s.repo.FindValid(dbc, key.Hash())
	if err != nil || row == nil {
		return nil, err
	}
	return &Entry{ID: row.ID, Payload: row.Payload, AccessCount: row.AccessCount}, nil
}

func (s *sectionStore) Insert(dbc dbctx.Context, key SectionKey, payload datatypes.JSON) (*Entry, error) {
	row := &types.SectionContentCache{
		CacheKey:     key.Hash(),
		TopicName:    strings.TrimSpace(key.Topic),
		SectionID:    strings.TrimSpace(key.SectionID),
		SectionTitle: strings.TrimSpace(key.SectionTitle),
		Payload:      payload,
	}
	if err := s.repo.Create(dbc, row); err != nil {
		return nil, err
	}
	return &Entry{ID: row.ID, Payload: row.Payload, AccessCount: row.AccessCount}, nil
}

func (s *sectionStore) Increment(dbc dbctx.Context, id uuid.UUID) (int, error) {
	return s.repo.IncrementAccess(dbc, id)
}

func (s *sectionStore) Invalidate(dbc dbctx.Context, key SectionKey) (int64, error) {
	return s.repo.Invalidate(dbc, key.Hash())
}

func (s *sectionStore) Purge(dbc dbctx.Context) (int64, error) {
	return s.repo.PurgeInvalid(dbc)
}
