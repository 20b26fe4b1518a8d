package repo

import (
	"errors"

	"github.com/rogerio-castellano/inventory-catalog/internal/models"
)

// MaterialRepository defines the interface for material data operations.
type MaterialRepository interface {
	Create(material models.Material) (models.Material, error)
	GetAll() ([]models.Material, error)
	GetByID(id int) (models.Material, error)
	Update(id int, patch models.MaterialPatch) (models.Material, error)
	Delete(id int) error
}

// ErrMaterialNotFound is returned when a material is not found in the repository.
var ErrMaterialNotFound = errors.New("material not found")

// ErrPersistence is returned when the catalog could not be read from or
// written to its backing storage.
var ErrPersistence = errors.New("persistence failure")
