package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mdmserver/classification"
	"mdmserver/database"
	"mdmserver/engine"
	"mdmserver/internal/domain/material"
	"mdmserver/server/middleware"
	"mdmserver/server/monitoring"
	"mdmserver/server/services"
)

type testAPI struct {
	router  *gin.Engine
	store   *database.MasterDataDB
	engines *services.EngineHolder
}

func newTestAPI(t *testing.T, apiMiddleware ...gin.HandlerFunc) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := database.NewMasterDataDB(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg, err := classification.DefaultCategoryConfig()
	require.NoError(t, err)
	eng, err := engine.New(cfg.Categories, engine.DefaultConfig())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := monitoring.NewMetrics()
	engines := services.NewEngineHolder(eng)
	responder := middleware.NewErrorResponder(logger, metrics)
	base := NewBaseHandler(responder, logger)

	health := monitoring.NewHealthChecker("test")
	health.RegisterComponent("database", true, monitoring.PingCheck("database", store.Ping))

	h := &Handlers{
		Classification: NewClassificationHandler(base, services.NewClassificationService(engines, 2, logger, metrics)),
		Matching:       NewMatchingHandler(base, services.NewMatchingService(engines, store, logger, metrics)),
		Deduplication:  NewDeduplicationHandler(base, services.NewDeduplicationService(engines, store, logger, metrics)),
		Categories:     NewCategoryHandler(base, services.NewCategoryService(engines, store, logger, metrics)),
		Materials:      NewMaterialHandler(base, services.NewMaterialService(store, logger, metrics)),
		Health:         NewHealthHandler(health),
	}

	router := gin.New()
	router.Use(middleware.GinRequestIDMiddleware())
	RegisterSwaggerRoutes(router, "")
	h.RegisterRoutes(router, metrics.Handler(), apiMiddleware...)
	return &testAPI{router: router, store: store, engines: engines}
}

func (a *testAPI) seed(t *testing.T, records ...material.Record) {
	t.Helper()
	_, err := a.store.UpsertMaterials(context.Background(), records, "")
	require.NoError(t, err)
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestClassifyEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/classify", RecordPayload{Name: "疏水器", Spec: "DN25 PN1.6"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[ClassifyResponse](t, w)
	require.NotEmpty(t, resp.Categories)
	assert.Equal(t, "valve.steam_trap", resp.Categories[0].CategoryID)

	// Пустое наименование - не ошибка запроса, а пометка invalid
	w = api.do(t, http.MethodPost, "/api/classify", RecordPayload{Name: "  "})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[ClassifyResponse](t, w)
	assert.True(t, resp.Invalid)
	assert.NotNil(t, resp.Categories)
	assert.Empty(t, resp.Categories)

	w = api.do(t, http.MethodPost, "/api/classify/batch", BatchClassifyRequest{Records: []RecordPayload{
		{ID: "a", Name: "闸阀", Spec: "DN50 PN16"},
		{ID: "b", Name: ""},
		{ID: "c", Name: "深沟球轴承", Spec: "6205"},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	batch := decode[BatchClassifyResponse](t, w)
	require.Equal(t, 3, batch.Total)
	assert.Equal(t, []string{"a", "b", "c"}, []string{batch.Results[0].ID, batch.Results[1].ID, batch.Results[2].ID})
	assert.True(t, batch.Results[1].Invalid)

	w = api.do(t, http.MethodPost, "/api/classify", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errResp := decode[ErrorResponse](t, w)
	assert.Equal(t, "validation", errResp.Error)
	assert.NotEmpty(t, errResp.RequestID)
}

func TestMatchEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t,
		material.Record{ID: "1", Name: "疏水器", Spec: "DN25 PN1.6", Category: "valve"},
		material.Record{ID: "2", Name: "深沟球轴承", Spec: "6205", Category: "bearing"},
	)

	w := api.do(t, http.MethodPost, "/api/match", MatchRequest{Query: RecordPayload{Name: "疏水器", Spec: "DN25 PN1.6"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[MatchResponse](t, w)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "1", resp.Results[0].CandidateID)
	assert.Equal(t, material.MatchExact, resp.Results[0].MatchType)

	bad := 1.2
	w = api.do(t, http.MethodPost, "/api/match", MatchRequest{Query: RecordPayload{Name: "疏水器"}, Threshold: &bad})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/match/thresholds?sample_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[services.ThresholdsReport](t, w)
	assert.Equal(t, 2, report.TotalRecords)

	w = api.do(t, http.MethodGet, "/api/match/thresholds?sample_size=ten", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/match/category?category=bearing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decode[[]material.Record](t, w)
	require.Len(t, records, 1)
	assert.Equal(t, "2", records[0].ID)
}

func TestDeduplicateEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t,
		material.Record{ID: "1", Name: "闸阀", Spec: "DN50 PN16"},
		material.Record{ID: "2", Name: "闸阀", Spec: "dn50 pn16", Unit: "个"},
		material.Record{ID: "3", Name: "深沟球轴承", Spec: "6205"},
	)
	threshold := 0.8

	w := api.do(t, http.MethodPost, "/api/deduplicate", DeduplicateRequest{Threshold: &threshold})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[services.DedupReport](t, w)
	require.NotEmpty(t, report.RunID)
	assert.Len(t, report.Clusters, 2)

	w = api.do(t, http.MethodGet, "/api/deduplicate/runs/"+report.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	run := decode[database.DedupRun](t, w)
	assert.Equal(t, 3, run.RecordsCount)

	w = api.do(t, http.MethodGet, "/api/deduplicate/runs/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Пакет из запроса обрабатывается без обращения к справочнику
	w = api.do(t, http.MethodPost, "/api/deduplicate", DeduplicateRequest{Records: []RecordPayload{
		{ID: "x", Name: "法兰"}, {ID: "x", Name: "法兰"},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/deduplicate/export?format=xlsx&threshold=0.8", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.NotEmpty(t, f.GetSheetList())

	w = api.do(t, http.MethodGet, "/api/deduplicate/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))

	w = api.do(t, http.MethodGet, "/api/deduplicate/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoriesEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	current := decode[classification.CategoryConfig](t, w)
	assert.NotEmpty(t, current.Categories)

	before := api.engines.Load()
	w = api.do(t, http.MethodPut, "/api/categories", `{"categories":[{"id":"a","name":"A","parent_id":"nope","keywords":["阀"]}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Same(t, before, api.engines.Load())

	doc := "version: \"3\"\ncategories:\n  - id: pipe\n    name: 管道\n    keywords: [管, 钢管]\n"
	w = api.do(t, http.MethodPut, "/api/categories", doc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, api.engines.Load().Categories().Len())

	w = api.do(t, http.MethodPost, "/api/classify", RecordPayload{Name: "无缝钢管", Spec: "DN50"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ClassifyResponse](t, w)
	require.NotEmpty(t, resp.Categories)
	assert.Equal(t, "pipe", resp.Categories[0].CategoryID)
}

func TestMaterialsEndpoints(t *testing.T) {
	api := newTestAPI(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "materials.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("物料编码,物料名称,规格型号\nM1,疏水器,DN25\nM2,闸阀,DN50\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/materials/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[services.ImportReport](t, w)
	assert.Equal(t, 2, report.Imported)

	w = api.do(t, http.MethodGet, "/api/materials?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[services.MaterialPage](t, w)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Records, 1)

	w = api.do(t, http.MethodGet, "/api/materials/M2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "闸阀", decode[material.Record](t, w).Name)

	w = api.do(t, http.MethodDelete, "/api/materials/M2", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(t, http.MethodGet, "/api/materials/M2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/materials/import", strings.NewReader("plain"))
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSystemEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[monitoring.HealthCheckResult](t, w)
	assert.Equal(t, monitoring.HealthStatusHealthy, health.Status)

	api.do(t, http.MethodPost, "/api/classify", RecordPayload{Name: "闸阀"})
	w = api.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mdm_classified_records_total")

	w = api.do(t, http.MethodGet, "/swagger/doc.json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/deduplicate/export")
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	responder := middleware.NewErrorResponder(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	api := newTestAPI(t, middleware.GinRateLimitMiddleware(0.001, 1, responder))

	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/categories", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, api.do(t, http.MethodGet, "/api/categories", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/health", nil).Code)
}
