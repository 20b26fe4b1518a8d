package handlers_test_suite

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	handler "github.com/rogerio-castellano/inventory-catalog/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootAndHealth(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Welcome to the Inventory Management System"}`, w.Body.String())

	w = env.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateMaterialHandler(t *testing.T) {
	t.Run("Valid material gets the next id and defaults", func(t *testing.T) {
		env := setupEnv(t)

		resp := env.createMaterial(t, cementRequest())

		assert.True(t, resp.Success)
		assert.Equal(t, "Material created successfully", resp.Message)
		assert.Equal(t, 1, resp.Data.ID)
		assert.Equal(t, models.StatusActive, resp.Data.Status)
		assert.Nil(t, resp.Data.EntryDate)

		second := env.createMaterial(t, cementRequest())
		assert.Equal(t, 2, second.Data.ID)
	})

	t.Run("Names are trimmed and optional fields kept", func(t *testing.T) {
		env := setupEnv(t)

		req := cementRequest()
		req["name"] = "  Cement  "
		req["sku"] = "CEM-01"
		req["entry_date"] = "2025-03-10"
		req["status"] = "en espera"
		resp := env.createMaterial(t, req)

		assert.Equal(t, "Cement", resp.Data.Name)
		require.NotNil(t, resp.Data.SKU)
		assert.Equal(t, "CEM-01", *resp.Data.SKU)
		require.NotNil(t, resp.Data.EntryDate)
		assert.Equal(t, "2025-03-10", resp.Data.EntryDate.String())
		assert.Equal(t, models.StatusOnHold, resp.Data.Status)
	})

	t.Run("Material is persisted to the catalog file", func(t *testing.T) {
		env := setupEnv(t)
		env.createMaterial(t, cementRequest())

		data, err := os.ReadFile(env.path)
		require.NoError(t, err)

		var snap struct {
			Materials []map[string]any `json:"materials"`
			NextID    int              `json:"next_id"`
		}
		require.NoError(t, json.Unmarshal(data, &snap))
		require.Len(t, snap.Materials, 1)
		assert.Equal(t, "Cement", snap.Materials[0]["name"])
		assert.Equal(t, 2, snap.NextID)
	})

	t.Run("Every violation is reported at once", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do(http.MethodPost, "/materials", `{"name":"   ","quantity":-1,"unit_price":"free","status":"archived","entry_date":"2025-03-11"}`)
		items := decodeValidation(t, w)

		assert.Equal(t, map[string]string{
			"body -> unit_price": models.TypeFloat,
			"body -> name":       models.TypeValue,
			"body -> category":   models.TypeMissing,
			"body -> quantity":   models.TypeNegative,
			"body -> unit":       models.TypeMissing,
			"body -> supplier":   models.TypeMissing,
			"body -> entry_date": models.TypeFutureDate,
			"body -> status":     models.TypeEnum,
		}, fieldsOf(items))

		all, err := env.materialRepo.GetAll()
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		env := setupEnv(t)

		items := decodeValidation(t, env.do(http.MethodPost, "/materials", `{"name":`))
		require.Len(t, items, 1)
		assert.Equal(t, "body", items[0].Field)
		assert.Equal(t, models.TypeJSONInvalid, items[0].Type)
	})

	t.Run("Body over the limit", func(t *testing.T) {
		env := setupEnv(t, withMaxBodyBytes(64))

		req := cementRequest()
		req["description"] = strings.Repeat("x", 200)
		body, _ := json.Marshal(req)

		w := env.do(http.MethodPost, "/materials", string(body))
		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "HTTP_413", decodeError(t, w).ErrorCode)
	})
}

func TestGetMaterialsHandler(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodGet, "/materials", "")
	require.Equal(t, http.StatusOK, w.Code)
	var empty handler.MaterialListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&empty))
	assert.True(t, empty.Success)
	assert.Equal(t, "Found 0 materials", empty.Message)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.Total)

	for _, name := range []string{"Sand", "Gravel"} {
		req := cementRequest()
		req["name"] = name
		env.createMaterial(t, req)
	}

	w = env.do(http.MethodGet, "/materials", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list handler.MaterialListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Equal(t, "Found 2 materials", list.Message)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "Sand", list.Data[0].Name)
	assert.Equal(t, "Gravel", list.Data[1].Name)
}

func TestGetMaterialByIDHandler(t *testing.T) {
	env := setupEnv(t)
	created := env.createMaterial(t, cementRequest())

	t.Run("Existing material", func(t *testing.T) {
		w := env.do(http.MethodGet, materialPath(created.Data.ID), "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp handler.MaterialResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Material found", resp.Message)
		assert.Equal(t, *created.Data, *resp.Data)
	})

	t.Run("Unknown id", func(t *testing.T) {
		w := env.do(http.MethodGet, materialPath(999), "")
		require.Equal(t, http.StatusNotFound, w.Code)

		resp := decodeError(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "HTTP_404", resp.ErrorCode)
		assert.Equal(t, "Material with ID 999 not found", resp.Message)
		assert.Nil(t, resp.Details)
	})

	t.Run("Id that is not an integer", func(t *testing.T) {
		items := decodeValidation(t, env.do(http.MethodGet, "/materials/abc", ""))
		require.Len(t, items, 1)
		assert.Equal(t, "path -> material_id", items[0].Field)
		assert.Equal(t, "int_parsing", items[0].Type)
	})
}

func TestUpdateMaterialHandler(t *testing.T) {
	t.Run("Only supplied fields change", func(t *testing.T) {
		env := setupEnv(t)
		req := cementRequest()
		req["description"] = "grey"
		created := env.createMaterial(t, req)

		w := env.do(http.MethodPut, materialPath(created.Data.ID), `{"quantity":25,"description":null,"status":"OBSOLETO"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp handler.MaterialResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Material with ID 1 updated successfully", resp.Message)
		assert.Equal(t, 25.0, resp.Data.Quantity)
		assert.Nil(t, resp.Data.Description)
		assert.Equal(t, models.StatusObsolete, resp.Data.Status)
		assert.Equal(t, "Cement", resp.Data.Name)
		assert.Equal(t, 5.5, resp.Data.UnitPrice)
	})

	t.Run("PATCH behaves like PUT", func(t *testing.T) {
		env := setupEnv(t)
		created := env.createMaterial(t, cementRequest())

		w := env.do(http.MethodPatch, materialPath(created.Data.ID), `{"location":"Warehouse B"}`)
		require.Equal(t, http.StatusOK, w.Code)

		got, err := env.materialRepo.GetByID(created.Data.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Location)
		assert.Equal(t, "Warehouse B", *got.Location)
	})

	t.Run("Empty body changes nothing", func(t *testing.T) {
		env := setupEnv(t)
		created := env.createMaterial(t, cementRequest())

		w := env.do(http.MethodPut, materialPath(created.Data.ID), `{}`)
		require.Equal(t, http.StatusOK, w.Code)

		got, err := env.materialRepo.GetByID(created.Data.ID)
		require.NoError(t, err)
		assert.Equal(t, *created.Data, got)
	})

	t.Run("Null on a required field", func(t *testing.T) {
		env := setupEnv(t)
		created := env.createMaterial(t, cementRequest())

		items := decodeValidation(t, env.do(http.MethodPut, materialPath(created.Data.ID), `{"name":null,"unit_price":-2}`))
		assert.Equal(t, map[string]string{
			"body -> name":       models.TypeNullNotAllowed,
			"body -> unit_price": models.TypeNegative,
		}, fieldsOf(items))
	})

	t.Run("Unknown id", func(t *testing.T) {
		env := setupEnv(t)

		w := env.do(http.MethodPut, materialPath(42), `{"quantity":1}`)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Material with ID 42 not found", decodeError(t, w).Message)
	})
}

func TestDeleteMaterialHandler(t *testing.T) {
	env := setupEnv(t)
	created := env.createMaterial(t, cementRequest())

	w := env.do(http.MethodDelete, materialPath(created.Data.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Material with ID 1 deleted successfully","data":null}`, w.Body.String())

	w = env.do(http.MethodDelete, materialPath(created.Data.ID), "")
	require.Equal(t, http.StatusNotFound, w.Code)

	next := env.createMaterial(t, cementRequest())
	assert.Equal(t, 2, next.Data.ID, "deleted ids are never reused")
}

func TestCementLifecycle(t *testing.T) {
	env := setupEnv(t)

	created := env.createMaterial(t, cementRequest())
	assert.Equal(t, 1, created.Data.ID)
	assert.Equal(t, models.StatusActive, created.Data.Status)

	w := env.do(http.MethodGet, "/materials", "")
	var list handler.MaterialListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Equal(t, 1, list.Total)

	require.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/materials/1", "").Code)
	require.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/materials/1", "").Code)
	assert.Equal(t, 2, env.materialRepo.NextID())
}

func TestUnknownRoutes(t *testing.T) {
	env := setupEnv(t)

	w := env.do(http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "HTTP_404", resp.ErrorCode)
	assert.False(t, resp.Success)

	w = env.do(http.MethodDelete, "/materials", "")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "HTTP_405", decodeError(t, w).ErrorCode)
}
