package handlers

import (
	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"github.com/rogerio-castellano/inventory-catalog/internal/repo"
)

// MaterialRequest documents the create and update body. On update every
// field is optional and null clears optional fields.
type MaterialRequest struct {
	Name         string   `json:"name" example:"Cement"`
	Category     string   `json:"category" example:"Structural"`
	Quantity     float64  `json:"quantity" example:"10"`
	Unit         string   `json:"unit" example:"bag"`
	UnitPrice    float64  `json:"unit_price" example:"5.5"`
	Supplier     string   `json:"supplier" example:"Acme"`
	Description  *string  `json:"description,omitempty"`
	MinimumStock *float64 `json:"minimum_stock,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Project      *string  `json:"project,omitempty"`
	Responsible  *string  `json:"responsible,omitempty"`
	SKU          *string  `json:"sku,omitempty"`
	EntryDate    *string  `json:"entry_date,omitempty" example:"2025-01-15"`
	Status       *string  `json:"status,omitempty" enums:"activo,obsoleto,en espera"`
}

type MaterialResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    *models.Material `json:"data"`
}

type MaterialListResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    []models.Material `json:"data"`
	Total   int               `json:"total"`
}

type MetricsResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    repo.Metrics `json:"data"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
	Details   any    `json:"details"`
}

type ValidationDetails struct {
	Errors []ValidationErrorItem `json:"errors"`
}

type ValidationErrorItem struct {
	Field   string `json:"field" example:"body -> name"`
	Message string `json:"message"`
	Type    string `json:"type" example:"missing"`
}

type ImportRowError struct {
	Row    int                   `json:"row"`
	Errors []ValidationErrorItem `json:"errors"`
}

type ImportMaterialsResult struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Imported int              `json:"imported"`
	Errors   []ImportRowError `json:"errors"`
}
