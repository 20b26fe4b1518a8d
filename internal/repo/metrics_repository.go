package repo

import (
	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"github.com/shopspring/decimal"
)

// Metrics summarizes the catalog for the dashboard endpoint.
type Metrics struct {
	TotalMaterials  int                   `json:"total_materials"`
	LowStockCount   int                   `json:"low_stock_count"`
	TotalStockValue decimal.Decimal       `json:"total_stock_value" swaggertype:"string" example:"1234.50"`
	ByStatus        map[models.Status]int `json:"by_status"`
}

type MetricsRepository interface {
	GetDashboardMetrics() (Metrics, error)
}

func emptyMetrics() Metrics {
	m := Metrics{
		TotalStockValue: decimal.Zero,
		ByStatus:        make(map[models.Status]int, len(models.Statuses)),
	}
	for _, s := range models.Statuses {
		m.ByStatus[s] = 0
	}
	return m
}
