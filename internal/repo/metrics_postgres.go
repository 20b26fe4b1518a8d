package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"github.com/shopspring/decimal"
)

type PostgresMetricsRepository struct {
	db *sql.DB
}

func NewPostgresMetricsRepository(db *sql.DB) *PostgresMetricsRepository {
	return &PostgresMetricsRepository{db: db}
}

func (r *PostgresMetricsRepository) GetDashboardMetrics() (Metrics, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	m := emptyMetrics()

	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE minimum_stock IS NOT NULL AND quantity < minimum_stock),
		       COALESCE(SUM(quantity::numeric * unit_price::numeric), 0)::text
		FROM materials
	`).Scan(&m.TotalMaterials, &m.LowStockCount, &value)
	if err != nil {
		return m, fmt.Errorf("%w: reading metrics: %w", ErrPersistence, err)
	}

	total, err := decimal.NewFromString(value)
	if err != nil {
		return m, fmt.Errorf("%w: parsing stock value %q: %w", ErrPersistence, value, err)
	}
	m.TotalStockValue = total.Round(2)

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM materials GROUP BY status`)
	if err != nil {
		return m, fmt.Errorf("%w: reading status counts: %w", ErrPersistence, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return m, fmt.Errorf("%w: scanning status count: %w", ErrPersistence, err)
		}
		m.ByStatus[models.Status(status)] = count
	}
	return m, rows.Err()
}
