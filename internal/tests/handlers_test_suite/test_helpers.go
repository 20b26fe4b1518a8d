package handlers_test_suite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-catalog/internal/http/ban"
	handler "github.com/rogerio-castellano/inventory-catalog/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-catalog/internal/http/rate_limiter"
	"github.com/rogerio-castellano/inventory-catalog/internal/http/router"
	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"github.com/rogerio-castellano/inventory-catalog/internal/repo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedNow is the clock every test validator runs on.
var fixedNow = time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

type testEnv struct {
	router       http.Handler
	materialRepo *repo.JSONFileMaterialRepository
	path         string
}

type envOption func(*router.Deps)

func withRateLimit(rps float64, burst int, policy ban.Policy) envOption {
	return func(d *router.Deps) {
		d.Limiter = rl.New(rps, burst, time.Minute)
		d.Tracker = ban.NewMemoryTracker(policy)
	}
}

func withCORS(origins ...string) envOption {
	return func(d *router.Deps) {
		d.CORSOrigins = origins
	}
}

func withMaxBodyBytes(n int64) envOption {
	return func(d *router.Deps) {
		d.Server.MaxBodyBytes = n
	}
}

// setupEnv builds the full router over a JSON catalog in a fresh temp dir.
func setupEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "inventory.json")
	materialRepo, err := repo.NewJSONFileMaterialRepository(path, zap.NewNop())
	require.NoError(t, err)

	validator := &models.Validator{Now: func() time.Time { return fixedNow }}
	server := handler.NewServer(materialRepo, repo.NewCatalogMetricsRepository(materialRepo), validator, zap.NewNop())

	deps := router.Deps{
		Server:  server,
		Logger:  zap.NewNop(),
		DocsURL: "/docs",
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testEnv{
		router:       router.NewRouter(deps),
		materialRepo: materialRepo,
		path:         path,
	}
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createMaterial(t *testing.T, p any) handler.MaterialResponse {
	t.Helper()

	body, err := json.Marshal(p)
	require.NoError(t, err)

	w := e.do(http.MethodPost, "/materials", string(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp handler.MaterialResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.Data)
	return resp
}

func cementRequest() map[string]any {
	return map[string]any{
		"name":       "Cement",
		"category":   "Structural",
		"quantity":   10,
		"unit":       "bag",
		"unit_price": 5.5,
		"supplier":   "Acme",
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()

	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

// decodeValidation decodes a 422 envelope and returns its error items.
func decodeValidation(t *testing.T, w *httptest.ResponseRecorder) []handler.ValidationErrorItem {
	t.Helper()

	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	var resp struct {
		handler.ErrorResponse
		Details handler.ValidationDetails `json:"details"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.False(t, resp.Success)
	require.Equal(t, handler.CodeValidation, resp.ErrorCode)
	return resp.Details.Errors
}

func fieldsOf(items []handler.ValidationErrorItem) map[string]string {
	out := make(map[string]string, len(items))
	for _, it := range items {
		out[it.Field] = it.Type
	}
	return out
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}

func materialPath(id int) string {
	return fmt.Sprintf("/materials/%d", id)
}
