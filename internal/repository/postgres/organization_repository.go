package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"loan-servicing/internal/models"
)

// OrganizationRepo is a PostgreSQL implementation of the
// repository.OrganizationRepository interface
type OrganizationRepo struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new OrganizationRepo
func NewOrganizationRepository(db *sql.DB) *OrganizationRepo {
	return &OrganizationRepo{db: db}
}

// Create creates a new organization in the database
func (r *OrganizationRepo) Create(ctx context.Context, org *models.Organization) (int, error) {
	query := `INSERT INTO organizations (name, currency_code) VALUES ($1, $2) RETURNING id`

	var id int
	err := r.db.QueryRowContext(ctx, query, org.Name, org.CurrencyCode).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create organization: %w", err)
	}

	return id, nil
}

// GetByID gets an organization by ID
func (r *OrganizationRepo) GetByID(ctx context.Context, id int) (*models.Organization, error) {
	query := `SELECT id, name, currency_code, created_at, updated_at
             FROM organizations WHERE id = $1`

	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.CurrencyCode,
		&org.CreatedAt,
		&org.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("organization not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// Update updates an organization
func (r *OrganizationRepo) Update(ctx context.Context, org *models.Organization) error {
	query := `UPDATE organizations SET name = $1, currency_code = $2, updated_at = NOW()
             WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, org.Name, org.CurrencyCode, org.ID)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("organization not found")
	}

	return nil
}
