package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"github.com/rogerio-castellano/inventory-catalog/internal/repo"
	"go.uber.org/zap"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeInternal   = "INTERNAL_SERVER_ERROR"
)

// HTTPErrorCode returns the error code used for a plain HTTP failure status.
func HTTPErrorCode(status int) string {
	return "HTTP_" + strconv.Itoa(status)
}

// readBody reads the whole request body, refusing anything larger than limit.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return data, nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

// WriteError writes the error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	_ = writeJSON(w, status, ErrorResponse{
		Success:   false,
		Message:   message,
		ErrorCode: code,
		Details:   details,
	})
}

// WriteHTTPError writes the envelope for a plain HTTP failure status.
func WriteHTTPError(w http.ResponseWriter, status int, message string) {
	WriteError(w, status, HTTPErrorCode(status), message, nil)
}

// WriteInternalError writes the generic 500 envelope. No detail of the
// failure reaches the client.
func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, CodeInternal, "Internal server error", nil)
}

func writeValidationError(w http.ResponseWriter, loc string, verr *models.ValidationError) {
	WriteError(w, http.StatusUnprocessableEntity, CodeValidation, "Request validation failed",
		ValidationDetails{Errors: validationItems(loc, verr)})
}

// parseMaterialID reads the {id} path parameter, writing a validation error
// when it is not an integer.
func parseMaterialID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeValidationError(w, "path", &models.ValidationError{Errors: []models.FieldError{{
			Field:   "material_id",
			Message: "Input should be a valid integer, unable to parse string as an integer",
			Type:    "int_parsing",
		}}})
		return 0, false
	}
	return id, true
}

// writeFailure maps an error returned while serving a material request to
// its envelope.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error, id int) {
	var verr *models.ValidationError
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &verr):
		writeValidationError(w, "body", verr)
	case errors.As(err, &maxErr):
		WriteHTTPError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit))
	case errors.Is(err, repo.ErrMaterialNotFound):
		WriteHTTPError(w, http.StatusNotFound, fmt.Sprintf("Material with ID %d not found", id))
	default:
		s.logger.Error("Request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Bool("persistence", errors.Is(err, repo.ErrPersistence)),
			zap.Error(err),
		)
		WriteInternalError(w)
	}
}

// NotFoundHandler answers unknown routes with the error envelope.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteHTTPError(w, http.StatusNotFound, "Not Found")
}

// MethodNotAllowedHandler answers known routes called with the wrong method.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	WriteHTTPError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
