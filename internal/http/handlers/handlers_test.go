package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quantpath-backend/internal/domain/learning"
	"github.com/yungbote/quantpath-backend/internal/modules/learning/content"
	apperrors "github.com/yungbote/quantpath-backend/internal/pkg/errors"
	"github.com/yungbote/quantpath-backend/internal/platform/openai"
	"github.com/yungbote/quantpath-backend/internal/services"
)

type fakePathService struct {
	generated  *services.GeneratedPath
	genErr     error
	current    *learning.PathView
	currentErr error
	history    []*learning.PathView
	lastLimit  int
	lastTopic  string
	lastThresh float64
}

func (f *fakePathService) Generate(context.Context, uuid.UUID, string) (*services.GeneratedPath, error) {
	return f.generated, f.genErr
}

func (f *fakePathService) Current(context.Context, uuid.UUID) (*learning.PathView, error) {
	return f.current, f.currentErr
}

func (f *fakePathService) History(_ context.Context, _ uuid.UUID, limit int) ([]*learning.PathView, error) {
	f.lastLimit = limit
	return f.history, nil
}

func (f *fakePathService) CheckCoverage(_ context.Context, topic string, _ []string, threshold float64) learning.CoverageResult {
	f.lastTopic = topic
	f.lastThresh = threshold
	return learning.CoverageResult{Topic: topic, Covered: true, Confidence: 0.81, MatchedVia: learning.MatchedViaTopic}
}

type fakeContentService struct {
	explanation *services.ContentResult[content.Explanation]
	err         error
	version     int
	purged      map[string]int64
}

func (f *fakeContentService) Explanation(context.Context, uuid.UUID, string, string) (*services.ContentResult[content.Explanation], error) {
	return f.explanation, f.err
}

func (f *fakeContentService) TopicStructure(context.Context, string, []string) (*services.ContentResult[content.TopicStructure], error) {
	return &services.ContentResult[content.TopicStructure]{}, f.err
}

func (f *fakeContentService) SectionContent(context.Context, string, string, string) (*services.ContentResult[content.SectionContent], error) {
	return &services.ContentResult[content.SectionContent]{}, f.err
}

func (f *fakeContentService) InvalidateNode(context.Context, uuid.UUID) (int, error) {
	return f.version, f.err
}

func (f *fakeContentService) InvalidateTopicStructure(context.Context, string, []string) (int64, error) {
	return 1, f.err
}

func (f *fakeContentService) InvalidateSection(context.Context, string, string, string) (int64, error) {
	return 1, f.err
}

func (f *fakeContentService) PurgeInvalid(context.Context) (map[string]int64, error) {
	return f.purged, f.err
}

func newEngine(paths services.LearningPathService, contents services.LearningContentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ph := NewLearningPathHandler(paths)
	ch := NewLearningContentHandler(contents)
	r.GET("/healthcheck", NewHealthHandler().HealthCheck)
	r.POST("/api/coverage", ph.CheckCoverage)
	r.POST("/api/users/:user_id/paths", ph.GeneratePath)
	r.GET("/api/users/:user_id/paths", ph.ListPaths)
	r.GET("/api/users/:user_id/paths/current", ph.CurrentPath)
	r.GET("/api/nodes/:id/explanation", ch.Explanation)
	r.POST("/api/nodes/:id/invalidate", ch.InvalidateNode)
	r.POST("/api/topics/section", ch.SectionContent)
	r.POST("/api/cache/purge", ch.PurgeCache)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error.Code
}

func TestHealthCheck(t *testing.T) {
	w := do(t, newEngine(&fakePathService{}, &fakeContentService{}), http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestCheckCoverage(t *testing.T) {
	paths := &fakePathService{}
	r := newEngine(paths, &fakeContentService{})

	w := do(t, r, http.MethodPost, "/api/coverage", map[string]any{"topic": "Ridge Regression", "threshold": 0.6})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ridge Regression", paths.lastTopic)
	assert.InDelta(t, 0.6, paths.lastThresh, 1e-9)

	var res learning.CoverageResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Covered)
	assert.Equal(t, learning.MatchedViaTopic, res.MatchedVia)

	w = do(t, r, http.MethodPost, "/api/coverage", map[string]any{"keywords": []string{"x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/coverage", map[string]any{"topic": "x", "threshold": 1.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeneratePath(t *testing.T) {
	userID := uuid.New()
	paths := &fakePathService{generated: &services.GeneratedPath{
		Path: &learning.PathView{UserID: userID, RoleType: "quant researcher"},
	}}
	r := newEngine(paths, &fakeContentService{})

	w := do(t, r, http.MethodPost, "/api/users/"+userID.String()+"/paths", map[string]string{"job_description": "quant role"})
	require.Equal(t, http.StatusCreated, w.Code)
	var out services.GeneratedPath
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "quant researcher", out.Path.RoleType)

	w = do(t, r, http.MethodPost, "/api/users/not-a-uuid/paths", map[string]string{"job_description": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/users/"+userID.String()+"/paths", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeneratePathErrorMapping(t *testing.T) {
	userID := uuid.New().String()
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid", fmt.Errorf("%w: empty", apperrors.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{"rate limited", &openai.Error{Kind: openai.KindRateLimited}, http.StatusTooManyRequests, "llm_rate_limited"},
		{"malformed", &openai.Error{Kind: openai.KindMalformed}, http.StatusBadGateway, "llm_malformed"},
		{"internal", fmt.Errorf("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(&fakePathService{genErr: tc.err}, &fakeContentService{})
			w := do(t, r, http.MethodPost, "/api/users/"+userID+"/paths", map[string]string{"job_description": "x"})
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, errorCode(t, w))
		})
	}
}

func TestCurrentAndListPaths(t *testing.T) {
	userID := uuid.New().String()
	paths := &fakePathService{currentErr: fmt.Errorf("%w: no learning path for user", apperrors.ErrNotFound)}
	r := newEngine(paths, &fakeContentService{})

	w := do(t, r, http.MethodGet, "/api/users/"+userID+"/paths/current", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorCode(t, w))

	paths.history = []*learning.PathView{{RoleType: "a"}, {RoleType: "b"}}
	w = do(t, r, http.MethodGet, "/api/users/"+userID+"/paths?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, paths.lastLimit)
	var body struct {
		Paths []*learning.PathView `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Paths, 2)

	w = do(t, r, http.MethodGet, "/api/users/"+userID+"/paths?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExplanation(t *testing.T) {
	nodeID := uuid.New().String()
	contents := &fakeContentService{explanation: &services.ContentResult[content.Explanation]{
		Payload:     content.Explanation{Markdown: "# Ridge"},
		Cached:      true,
		AccessCount: 2,
	}}
	r := newEngine(&fakePathService{}, contents)

	w := do(t, r, http.MethodGet, "/api/nodes/"+nodeID+"/explanation?content_type=math", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out services.ContentResult[content.Explanation]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Cached)
	assert.Equal(t, 2, out.AccessCount)
	assert.Equal(t, "# Ridge", out.Payload.Markdown)

	contents.err = fmt.Errorf("%w: learning node", apperrors.ErrNotFound)
	w = do(t, r, http.MethodGet, "/api/nodes/"+nodeID+"/explanation", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvalidateAndPurge(t *testing.T) {
	nodeID := uuid.New().String()
	contents := &fakeContentService{version: 3, purged: map[string]int64{"explanation": 2}}
	r := newEngine(&fakePathService{}, contents)

	w := do(t, r, http.MethodPost, "/api/nodes/"+nodeID+"/invalidate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inv struct {
		ContentVersion int `json:"content_version"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, 3, inv.ContentVersion)

	w = do(t, r, http.MethodPost, "/api/cache/purge", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var purged struct {
		Deleted map[string]int64 `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &purged))
	assert.Equal(t, int64(2), purged.Deleted["explanation"])
}

func TestSectionContentRequiresTitle(t *testing.T) {
	r := newEngine(&fakePathService{}, &fakeContentService{})
	w := do(t, r, http.MethodPost, "/api/topics/section", map[string]string{"topic": "Ridge"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", errorCode(t, w))
}
