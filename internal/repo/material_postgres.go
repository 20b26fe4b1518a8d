package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rogerio-castellano/inventory-catalog/internal/models"
)

const materialColumns = `id, name, category, quantity, unit, unit_price, supplier, description,
	minimum_stock, location, project, responsible, sku, entry_date, status`

type PostgresMaterialRepository struct {
	db *sql.DB
}

func NewPostgresMaterialRepository(db *sql.DB) *PostgresMaterialRepository {
	return &PostgresMaterialRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMaterial(s rowScanner) (models.Material, error) {
	var (
		m         models.Material
		entryDate sql.NullTime
		status    string
	)
	err := s.Scan(&m.ID, &m.Name, &m.Category, &m.Quantity, &m.Unit, &m.UnitPrice, &m.Supplier,
		&m.Description, &m.MinimumStock, &m.Location, &m.Project, &m.Responsible, &m.SKU,
		&entryDate, &status)
	if err != nil {
		return models.Material{}, err
	}
	if entryDate.Valid {
		m.EntryDate = models.Ptr(models.DateOf(entryDate.Time))
	}
	m.Status = models.Status(status)
	return m, nil
}

func dateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func materialArgs(m models.Material) []any {
	return []any{m.Name, m.Category, m.Quantity, m.Unit, m.UnitPrice, m.Supplier,
		m.Description, m.MinimumStock, m.Location, m.Project, m.Responsible, m.SKU,
		dateArg(m.EntryDate), string(m.Status)}
}

func (r *PostgresMaterialRepository) Create(m models.Material) (models.Material, error) {
	query := `INSERT INTO materials (name, category, quantity, unit, unit_price, supplier, description,
		minimum_stock, location, project, responsible, sku, entry_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := r.db.QueryRowContext(ctx, query, materialArgs(m)...).Scan(&m.ID); err != nil {
		return models.Material{}, fmt.Errorf("%w: inserting material: %w", ErrPersistence, err)
	}
	return m, nil
}

func (r *PostgresMaterialRepository) GetAll() ([]models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials ORDER BY id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing materials: %w", ErrPersistence, err)
	}
	defer rows.Close()

	materials := []models.Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning material: %w", ErrPersistence, err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing materials: %w", ErrPersistence, err)
	}
	return materials, nil
}

func (r *PostgresMaterialRepository) GetByID(id int) (models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	m, err := scanMaterial(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Material{}, ErrMaterialNotFound
	}
	if err != nil {
		return models.Material{}, fmt.Errorf("%w: reading material %d: %w", ErrPersistence, id, err)
	}
	return m, nil
}

// Update locks the row, merges the patch over it and writes it back in one
// transaction.
func (r *PostgresMaterialRepository) Update(id int, patch models.MaterialPatch) (models.Material, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Material{}, fmt.Errorf("%w: beginning transaction: %w", ErrPersistence, err)
	}
	defer tx.Rollback()

	current, err := scanMaterial(tx.QueryRowContext(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Material{}, ErrMaterialNotFound
	}
	if err != nil {
		return models.Material{}, fmt.Errorf("%w: reading material %d: %w", ErrPersistence, id, err)
	}

	updated := patch.Apply(current)
	updated.ID = id

	query := `UPDATE materials SET name = $1, category = $2, quantity = $3, unit = $4, unit_price = $5,
		supplier = $6, description = $7, minimum_stock = $8, location = $9, project = $10,
		responsible = $11, sku = $12, entry_date = $13, status = $14 WHERE id = $15`
	if _, err := tx.ExecContext(ctx, query, append(materialArgs(updated), id)...); err != nil {
		return models.Material{}, fmt.Errorf("%w: updating material %d: %w", ErrPersistence, id, err)
	}
	if err := tx.Commit(); err != nil {
		return models.Material{}, fmt.Errorf("%w: committing update: %w", ErrPersistence, err)
	}
	return updated, nil
}

func (r *PostgresMaterialRepository) Delete(id int) error {
	query := `DELETE FROM materials WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting material %d: %w", ErrPersistence, id, err)
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrMaterialNotFound
	}
	return nil
}
