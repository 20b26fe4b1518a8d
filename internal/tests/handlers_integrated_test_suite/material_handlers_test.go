package handlers_integrated_test_suite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	handler "github.com/rogerio-castellano/inventory-catalog/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialLifecycle(t *testing.T) {
	r := setupRouter(t)

	req := cementRequest()
	req["description"] = "grey"
	req["entry_date"] = "2025-01-15"
	created := createMaterial(t, r, req)
	id := created.Data.ID
	assert.Equal(t, models.StatusActive, created.Data.Status)

	w := do(r, http.MethodGet, fmt.Sprintf("/materials/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got handler.MaterialResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, *created.Data, *got.Data)

	w = do(r, http.MethodPatch, fmt.Sprintf("/materials/%d", id), map[string]any{
		"quantity":    2,
		"description": nil,
		"status":      "en espera",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated handler.MaterialResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&updated))
	assert.Equal(t, 2.0, updated.Data.Quantity)
	assert.Nil(t, updated.Data.Description)
	assert.Equal(t, models.StatusOnHold, updated.Data.Status)
	require.NotNil(t, updated.Data.EntryDate)
	assert.Equal(t, "2025-01-15", updated.Data.EntryDate.String())

	w = do(r, http.MethodDelete, fmt.Sprintf("/materials/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, fmt.Sprintf("/materials/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	next := createMaterial(t, r, cementRequest())
	assert.Greater(t, next.Data.ID, id)
}

func TestUpdateUnknownMaterial(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPut, "/materials/4242", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardMetrics(t *testing.T) {
	r := setupRouter(t)

	low := cementRequest()
	low["quantity"] = 3
	low["minimum_stock"] = 5
	createMaterial(t, r, low)

	held := cementRequest()
	held["unit_price"] = 0.25
	held["status"] = "en espera"
	createMaterial(t, r, held)

	w := do(r, http.MethodGet, "/materials/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TotalMaterials  int            `json:"total_materials"`
			LowStockCount   int            `json:"low_stock_count"`
			TotalStockValue string         `json:"total_stock_value"`
			ByStatus        map[string]int `json:"by_status"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	assert.Equal(t, 2, resp.Data.TotalMaterials)
	assert.Equal(t, 1, resp.Data.LowStockCount)
	assert.Equal(t, "19", resp.Data.TotalStockValue)
	assert.Equal(t, map[string]int{"activo": 1, "obsoleto": 0, "en espera": 1}, resp.Data.ByStatus)
}
