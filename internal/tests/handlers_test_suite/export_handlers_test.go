package handlers_test_suite

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedExport(t *testing.T, env *testEnv) {
	t.Helper()

	req := cementRequest()
	req["description"] = "Portland, type I"
	req["entry_date"] = "2025-01-15"
	env.createMaterial(t, req)

	sand := cementRequest()
	sand["name"] = "Sand"
	sand["quantity"] = 2.25
	env.createMaterial(t, sand)
}

func TestExportMaterialsHandler(t *testing.T) {
	t.Run("CSV", func(t *testing.T) {
		env := setupEnv(t)
		seedExport(t, env)

		w := env.do(http.MethodGet, "/materials/export?format=csv", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "materials.csv")

		records, err := csv.NewReader(w.Body).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, []string{
			"id", "name", "category", "quantity", "unit", "unit_price", "supplier", "description",
			"minimum_stock", "location", "project", "responsible", "sku", "entry_date", "status",
		}, records[0])
		assert.Equal(t, []string{
			"1", "Cement", "Structural", "10", "bag", "5.5", "Acme", "Portland, type I",
			"", "", "", "", "", "2025-01-15", "activo",
		}, records[1])
		assert.Equal(t, "Sand", records[2][1])
		assert.Equal(t, "2.25", records[2][3])
	})

	t.Run("JSON is the default", func(t *testing.T) {
		env := setupEnv(t)
		seedExport(t, env)

		w := env.do(http.MethodGet, "/materials/export", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "materials.json")

		var materials []models.Material
		require.NoError(t, json.NewDecoder(w.Body).Decode(&materials))
		require.Len(t, materials, 2)
		assert.Equal(t, 1, materials[0].ID)
		assert.Equal(t, 2, materials[1].ID)
	})

	t.Run("Empty catalog exports the header only", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do(http.MethodGet, "/materials/export?format=csv", "")
		require.Equal(t, http.StatusOK, w.Code)

		records, err := csv.NewReader(w.Body).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("Unsupported format", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do(http.MethodGet, "/materials/export?format=xml", "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "HTTP_400", decodeError(t, w).ErrorCode)
	})
}
