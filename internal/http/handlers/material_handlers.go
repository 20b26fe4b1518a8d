package handlers

import (
	"fmt"
	"net/http"

	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"go.uber.org/zap"
)

// RootHandler godoc
// @Summary Welcome message
// @Tags system
// @Produce json
// @Success 200 {object} MessageResponse
// @Router / [get]
func (s *Server) RootHandler(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, MessageResponse{Message: "Welcome to the Inventory Management System"})
}

// HealthHandler godoc
// @Summary Liveness probe
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateMaterialHandler godoc
// @Summary Create a new material
// @Description Validates the material, assigns the next id and persists the catalog
// @Tags materials
// @Accept json
// @Produce json
// @Param material body MaterialRequest true "Material to add"
// @Success 201 {object} MaterialResponse
// @Failure 413 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse{details=ValidationDetails}
// @Failure 500 {object} ErrorResponse
// @Router /materials [post]
func (s *Server) CreateMaterialHandler(w http.ResponseWriter, r *http.Request) {
	material, err := s.decodeCreate(w, r)
	if err != nil {
		s.writeFailure(w, r, err, 0)
		return
	}

	created, err := s.materialRepo.Create(material)
	if err != nil {
		s.writeFailure(w, r, err, 0)
		return
	}
	s.warnLowStock(created)

	_ = writeJSON(w, http.StatusCreated, MaterialResponse{
		Success: true,
		Message: "Material created successfully",
		Data:    &created,
	})
}

// GetMaterialsHandler godoc
// @Summary List all materials
// @Tags materials
// @Produce json
// @Success 200 {object} MaterialListResponse
// @Failure 500 {object} ErrorResponse
// @Router /materials [get]
func (s *Server) GetMaterialsHandler(w http.ResponseWriter, r *http.Request) {
	materials, err := s.materialRepo.GetAll()
	if err != nil {
		s.writeFailure(w, r, err, 0)
		return
	}

	_ = writeJSON(w, http.StatusOK, MaterialListResponse{
		Success: true,
		Message: fmt.Sprintf("Found %d materials", len(materials)),
		Data:    materials,
		Total:   len(materials),
	})
}

// GetMaterialByIDHandler godoc
// @Summary Get material by ID
// @Tags materials
// @Produce json
// @Param id path int true "Material ID"
// @Success 200 {object} MaterialResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse{details=ValidationDetails}
// @Failure 500 {object} ErrorResponse
// @Router /materials/{id} [get]
func (s *Server) GetMaterialByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMaterialID(w, r)
	if !ok {
		return
	}

	material, err := s.materialRepo.GetByID(id)
	if err != nil {
		s.writeFailure(w, r, err, id)
		return
	}

	_ = writeJSON(w, http.StatusOK, MaterialResponse{
		Success: true,
		Message: "Material found",
		Data:    &material,
	})
}

// UpdateMaterialHandler godoc
// @Summary Update a material
// @Description Applies only the supplied fields. Null clears optional fields.
// @Tags materials
// @Accept json
// @Produce json
// @Param id path int true "Material ID"
// @Param material body MaterialRequest true "Fields to change"
// @Success 200 {object} MaterialResponse
// @Failure 404 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse{details=ValidationDetails}
// @Failure 500 {object} ErrorResponse
// @Router /materials/{id} [put]
// @Router /materials/{id} [patch]
func (s *Server) UpdateMaterialHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMaterialID(w, r)
	if !ok {
		return
	}

	patch, err := s.decodeUpdate(w, r)
	if err != nil {
		s.writeFailure(w, r, err, id)
		return
	}

	updated, err := s.materialRepo.Update(id, patch)
	if err != nil {
		s.writeFailure(w, r, err, id)
		return
	}
	s.warnLowStock(updated)

	_ = writeJSON(w, http.StatusOK, MaterialResponse{
		Success: true,
		Message: fmt.Sprintf("Material with ID %d updated successfully", id),
		Data:    &updated,
	})
}

// DeleteMaterialHandler godoc
// @Summary Delete a material
// @Description Removes the material. Its id is never assigned again.
// @Tags materials
// @Produce json
// @Param id path int true "Material ID"
// @Success 200 {object} MaterialResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse{details=ValidationDetails}
// @Failure 500 {object} ErrorResponse
// @Router /materials/{id} [delete]
func (s *Server) DeleteMaterialHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseMaterialID(w, r)
	if !ok {
		return
	}

	if err := s.materialRepo.Delete(id); err != nil {
		s.writeFailure(w, r, err, id)
		return
	}

	_ = writeJSON(w, http.StatusOK, MaterialResponse{
		Success: true,
		Message: fmt.Sprintf("Material with ID %d deleted successfully", id),
	})
}

func (s *Server) decodeCreate(w http.ResponseWriter, r *http.Request) (models.Material, error) {
	body, err := readBody(w, r, s.maxBodyBytes())
	if err != nil {
		return models.Material{}, err
	}
	payload, err := models.DecodeMaterialPayload(body)
	if err != nil {
		return models.Material{}, err
	}
	return s.validator.ValidateCreate(payload)
}

func (s *Server) decodeUpdate(w http.ResponseWriter, r *http.Request) (models.MaterialPatch, error) {
	body, err := readBody(w, r, s.maxBodyBytes())
	if err != nil {
		return models.MaterialPatch{}, err
	}
	payload, err := models.DecodeMaterialPayload(body)
	if err != nil {
		return models.MaterialPatch{}, err
	}
	return s.validator.ValidateUpdate(payload)
}

func (s *Server) warnLowStock(m models.Material) {
	if !m.LowStock() {
		return
	}
	s.logger.Warn("Material below minimum stock",
		zap.Int("id", m.ID),
		zap.String("name", m.Name),
		zap.Float64("quantity", m.Quantity),
		zap.Float64("minimum_stock", *m.MinimumStock),
	)
}
