package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMaterialPayload_Presence(t *testing.T) {
	p, err := DecodeMaterialPayload([]byte(`{"name":"Cement","description":null,"extra":"ignored"}`))
	require.NoError(t, err)

	assert.True(t, p.Name.HasValue())
	assert.Equal(t, "Cement", p.Name.Value)

	assert.True(t, p.Description.Set)
	assert.True(t, p.Description.Null)

	assert.False(t, p.Quantity.Set)
	assert.False(t, p.Status.Set)
}

func TestDecodeMaterialPayload_EntryDate(t *testing.T) {
	p, err := DecodeMaterialPayload([]byte(`{"entry_date":"2024-02-29"}`))
	require.NoError(t, err)
	require.True(t, p.EntryDate.HasValue())
	assert.Equal(t, NewDate(2024, time.February, 29), p.EntryDate.Value)
}

func TestDecodeMaterialPayload_NotAnObject(t *testing.T) {
	for _, body := range []string{``, `{`, `[]`, `"text"`, `null`, `42`} {
		t.Run(body, func(t *testing.T) {
			_, err := DecodeMaterialPayload([]byte(body))
			verr := requireValidationError(t, err)
			require.Len(t, verr.Errors, 1)
			assert.Equal(t, TypeJSONInvalid, verr.Errors[0].Type)
			assert.Empty(t, verr.Errors[0].Field)
		})
	}
}

func TestDecodeMaterialPayload_TypeErrorsReportedWithRules(t *testing.T) {
	body := `{"name":123,"category":"Steel","quantity":"ten","unit":"kg","unit_price":1,"supplier":"Acme","entry_date":"31/12/2024"}`
	p, err := DecodeMaterialPayload([]byte(body))
	require.NoError(t, err)

	_, err = fixedValidator().ValidateCreate(p)
	verr := requireValidationError(t, err)

	byField := map[string]string{}
	for _, fe := range verr.Errors {
		byField[fe.Field] = fe.Type
	}
	assert.Equal(t, map[string]string{
		"name":       TypeString,
		"quantity":   TypeFloat,
		"entry_date": TypeDate,
	}, byField)
}

func TestMaterialPatch_Apply(t *testing.T) {
	original := Material{
		ID:           7,
		Name:         "Cement",
		Category:     "Structural",
		Quantity:     10,
		Unit:         "bag",
		UnitPrice:    5.5,
		Supplier:     "Acme",
		Description:  Ptr("grey"),
		MinimumStock: Ptr(20.0),
		Status:       StatusActive,
	}

	patch := MaterialPatch{
		Quantity:    Some(25.0),
		Description: Null[string](),
		Location:    Some("Warehouse B"),
		Status:      Some(StatusOnHold),
	}

	updated := patch.Apply(original)

	assert.Equal(t, 7, updated.ID)
	assert.Equal(t, "Cement", updated.Name)
	assert.Equal(t, 25.0, updated.Quantity)
	assert.Nil(t, updated.Description)
	require.NotNil(t, updated.Location)
	assert.Equal(t, "Warehouse B", *updated.Location)
	require.NotNil(t, updated.MinimumStock)
	assert.Equal(t, 20.0, *updated.MinimumStock)
	assert.Equal(t, StatusOnHold, updated.Status)

	// original is untouched
	assert.Equal(t, 10.0, original.Quantity)
	require.NotNil(t, original.Description)
	assert.Equal(t, "grey", *original.Description)
}

func TestMaterial_JSONShape(t *testing.T) {
	m := Material{
		ID:        1,
		Name:      "Cement",
		Category:  "Structural",
		Quantity:  10,
		Unit:      "bag",
		UnitPrice: 5.5,
		Supplier:  "Acme",
		EntryDate: Ptr(NewDate(2025, time.January, 15)),
		Status:    StatusActive,
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Len(t, decoded, 15)
	assert.Equal(t, "2025-01-15", decoded["entry_date"])
	assert.Nil(t, decoded["description"])
	assert.Contains(t, decoded, "sku")
	assert.Equal(t, "activo", decoded["status"])
}

func TestMaterial_LowStock(t *testing.T) {
	m := Material{Quantity: 5}
	assert.False(t, m.LowStock())

	m.MinimumStock = Ptr(5.0)
	assert.False(t, m.LowStock())

	m.MinimumStock = Ptr(6.0)
	assert.True(t, m.LowStock())
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("Activo")
	assert.True(t, ok)
	assert.Equal(t, StatusActive, st)

	_, ok = ParseStatus("archived")
	assert.False(t, ok)
}

func TestPayloadFromStrings(t *testing.T) {
	p := PayloadFromStrings(map[string]string{
		"name":       "Cement",
		"category":   "Structural",
		"quantity":   " 10.5 ",
		"unit":       "bag",
		"unit_price": "abc",
		"supplier":   "Acme",
		"sku":        "",
		"entry_date": "2025-01-15",
		"unknown":    "ignored",
	})

	assert.Equal(t, Some("Cement"), p.Name)
	assert.Equal(t, Some(10.5), p.Quantity)
	assert.False(t, p.SKU.Set)
	assert.Equal(t, Some(NewDate(2025, time.January, 15)), p.EntryDate)

	_, err := fixedValidator().ValidateCreate(p)
	verr := requireValidationError(t, err)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, "unit_price", verr.Errors[0].Field)
	assert.Equal(t, TypeFloat, verr.Errors[0].Type)
}
