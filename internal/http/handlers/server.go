package handlers

import (
	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"github.com/rogerio-castellano/inventory-catalog/internal/repo"
	"go.uber.org/zap"
)

const defaultMaxBodyBytes = 1 << 20

// Server holds the dependencies shared by the HTTP handlers.
type Server struct {
	materialRepo repo.MaterialRepository
	metricsRepo  repo.MetricsRepository
	validator    *models.Validator
	logger       *zap.Logger

	// MaxBodyBytes caps request bodies. Zero means one megabyte.
	MaxBodyBytes int64
}

func NewServer(materialRepo repo.MaterialRepository, metricsRepo repo.MetricsRepository, validator *models.Validator, logger *zap.Logger) *Server {
	if validator == nil {
		validator = models.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		materialRepo: materialRepo,
		metricsRepo:  metricsRepo,
		validator:    validator,
		logger:       logger,
	}
}

func (s *Server) maxBodyBytes() int64 {
	if s.MaxBodyBytes > 0 {
		return s.MaxBodyBytes
	}
	return defaultMaxBodyBytes
}
