package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"go.uber.org/zap"
)

var exportColumns = []string{
	"id", "name", "category", "quantity", "unit", "unit_price", "supplier", "description",
	"minimum_stock", "location", "project", "responsible", "sku", "entry_date", "status",
}

// ExportMaterialsHandler godoc
// @Summary Export the catalog
// @Tags materials
// @Produce text/csv, application/json
// @Param format query string false "Export format (csv or json)" default(json)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /materials/export [get]
func (s *Server) ExportMaterialsHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "csv" && format != "json" {
		WriteHTTPError(w, http.StatusBadRequest, "format must be 'csv' or 'json'")
		return
	}

	materials, err := s.materialRepo.GetAll()
	if err != nil {
		s.writeFailure(w, r, err, 0)
		return
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="materials.json"`)
		if err := json.NewEncoder(w).Encode(materials); err != nil {
			s.logger.Warn("Failed to write export", zap.Error(err))
		}

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="materials.csv"`)

		csvWriter := csv.NewWriter(w)
		_ = csvWriter.Write(exportColumns)
		for _, m := range materials {
			_ = csvWriter.Write(csvRecord(m))
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			s.logger.Warn("Failed to write export", zap.Error(err))
		}
	}
}

func csvRecord(m models.Material) []string {
	return []string{
		strconv.Itoa(m.ID),
		m.Name,
		m.Category,
		formatFloat(m.Quantity),
		m.Unit,
		formatFloat(m.UnitPrice),
		m.Supplier,
		optionalString(m.Description),
		optionalFloat(m.MinimumStock),
		optionalString(m.Location),
		optionalString(m.Project),
		optionalString(m.Responsible),
		optionalString(m.SKU),
		optionalDate(m.EntryDate),
		string(m.Status),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optionalString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func optionalFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return formatFloat(*p)
}

func optionalDate(p *models.Date) string {
	if p == nil {
		return ""
	}
	return p.String()
}
