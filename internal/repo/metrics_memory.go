package repo

import (
	"github.com/shopspring/decimal"
)

// CatalogMetricsRepository computes metrics from any MaterialRepository.
type CatalogMetricsRepository struct {
	materialRepo MaterialRepository
}

func NewCatalogMetricsRepository(materialRepo MaterialRepository) *CatalogMetricsRepository {
	return &CatalogMetricsRepository{materialRepo: materialRepo}
}

// GetDashboardMetrics implements MetricsRepository.
func (c *CatalogMetricsRepository) GetDashboardMetrics() (Metrics, error) {
	m := emptyMetrics()

	materials, err := c.materialRepo.GetAll()
	if err != nil {
		return m, err
	}
	m.TotalMaterials = len(materials)

	value := decimal.Zero
	for _, material := range materials {
		if material.LowStock() {
			m.LowStockCount++
		}
		m.ByStatus[material.Status]++
		value = value.Add(decimal.NewFromFloat(material.Quantity).Mul(decimal.NewFromFloat(material.UnitPrice)))
	}
	m.TotalStockValue = value.Round(2)

	return m, nil
}
