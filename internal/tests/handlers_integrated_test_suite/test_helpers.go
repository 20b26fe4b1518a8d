package handlers_integrated_test_suite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-catalog/internal/db"
	handler "github.com/rogerio-castellano/inventory-catalog/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-catalog/internal/http/router"
	"github.com/rogerio-castellano/inventory-catalog/internal/repo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupRouter connects to DATABASE_URL and builds the router over the
// PostgreSQL repositories. The test is skipped when no database is set.
func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set; skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.EnsureSchema(ctx, database))
	clearAllMaterials(t, database)
	t.Cleanup(func() { clearAllMaterials(t, database) })

	server := handler.NewServer(
		repo.NewPostgresMaterialRepository(database),
		repo.NewPostgresMetricsRepository(database),
		nil,
		zap.NewNop(),
	)
	return router.NewRouter(router.Deps{Server: server})
}

func clearAllMaterials(t *testing.T, database *sql.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := database.ExecContext(ctx, "TRUNCATE TABLE materials RESTART IDENTITY")
	if err != nil {
		t.Log(fmt.Errorf("failed to truncate materials table: %w", err))
	}
}

func do(r http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createMaterial(t *testing.T, r http.Handler, p map[string]any) handler.MaterialResponse {
	t.Helper()

	w := do(r, http.MethodPost, "/materials", p)
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
