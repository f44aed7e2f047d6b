package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"loan-servicing/internal/models"
)

// ImportRepo is a PostgreSQL implementation of the
// repository.ImportRepository interface
type ImportRepo struct {
	db *sql.DB
}

// NewImportRepository creates a new ImportRepo
func NewImportRepository(db *sql.DB) *ImportRepo {
	return &ImportRepo{db: db}
}

// Create records an import batch
func (r *ImportRepo) Create(ctx context.Context, batch *models.ImportBatch) error {
	query := `INSERT INTO import_batches (id, organization_id, kind, file_name, rows_total,
             rows_imported, rows_failed, created_by)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(
		ctx,
		query,
		batch.ID,
		batch.OrganizationID,
		batch.Kind,
		batch.FileName,
		batch.RowsTotal,
		batch.RowsImported,
		batch.RowsFailed,
		batch.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create import batch: %w", err)
	}

	return nil
}

// GetByOrganization gets import batches for an organization, newest first
func (r *ImportRepo) GetByOrganization(ctx context.Context, organizationID int) ([]*models.ImportBatch, error) {
	query := `SELECT id, organization_id, kind, file_name, rows_total, rows_imported, rows_failed,
             created_by, created_at
             FROM import_batches WHERE organization_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get import batches: %w", err)
	}
	defer rows.Close()

	var batches []*models.ImportBatch
	for rows.Next() {
		batch := &models.ImportBatch{}
		err := rows.Scan(
			&batch.ID,
			&batch.OrganizationID,
			&batch.Kind,
			&batch.FileName,
			&batch.RowsTotal,
			&batch.RowsImported,
			&batch.RowsFailed,
			&batch.CreatedBy,
			&batch.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import batch: %w", err)
		}
		batches = append(batches, batch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return batches, nil
}
