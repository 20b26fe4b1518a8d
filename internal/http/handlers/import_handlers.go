package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"go.uber.org/zap"
)

type csvRow struct {
	line  int
	cells map[string]string
}

// parseCSV reads a header row followed by data rows. Header names are
// matched case-insensitively; unknown columns are ignored.
func parseCSV(r io.Reader) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.New("invalid CSV header")
	}
	for i, h := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error: %v", err)
		}

		line, _ := reader.FieldPos(0)
		row := csvRow{line: line, cells: make(map[string]string, len(headers))}
		for i, h := range headers {
			if i < len(record) {
				row.cells[h] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ImportMaterialsHandler godoc
// @Summary Import materials via CSV
// @Description Each row is validated like a create request. Valid rows are created, invalid rows are reported.
// @Tags materials
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file with a header row"
// @Success 200 {object} ImportMaterialsResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /materials/import [post]
func (s *Server) ImportMaterialsHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes())

	file, _, err := r.FormFile("file")
	if err != nil {
		WriteHTTPError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	records, err := parseCSV(file)
	if err != nil {
		WriteHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	imported := 0
	rowErrors := []ImportRowError{}

	for _, rec := range records {
		material, err := s.validator.ValidateCreate(models.PayloadFromStrings(rec.cells))
		if err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				rowErrors = append(rowErrors, ImportRowError{Row: rec.line, Errors: validationItems("row", verr)})
				continue
			}
			s.writeFailure(w, r, err, 0)
			return
		}

		created, err := s.materialRepo.Create(material)
		if err != nil {
			s.logger.Error("Import stopped", zap.Int("row", rec.line), zap.Int("imported", imported), zap.Error(err))
			s.writeFailure(w, r, err, 0)
			return
		}
		s.warnLowStock(created)
		imported++
	}

	_ = writeJSON(w, http.StatusOK, ImportMaterialsResult{
		Success:  len(rowErrors) == 0,
		Message:  fmt.Sprintf("Imported %d of %d materials", imported, len(records)),
		Imported: imported,
		Errors:   rowErrors,
	})
}
