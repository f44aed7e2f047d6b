package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"loan-servicing/internal/models"
)

const borrowerColumns = `id, organization_id, name, email, phone, address_line1, address_line2,
             city, postcode, company_number, notes, created_at, updated_at`

// BorrowerRepo is a PostgreSQL implementation of the
// repository.BorrowerRepository interface
type BorrowerRepo struct {
	db *sql.DB
}

// NewBorrowerRepository creates a new BorrowerRepo
func NewBorrowerRepository(db *sql.DB) *BorrowerRepo {
	return &BorrowerRepo{db: db}
}

func scanBorrower(row interface{ Scan(...interface{}) error }) (*models.Borrower, error) {
	borrower := &models.Borrower{}
	err := row.Scan(
		&borrower.ID,
		&borrower.OrganizationID,
		&borrower.Name,
		&borrower.Email,
		&borrower.Phone,
		&borrower.AddressLine1,
		&borrower.AddressLine2,
		&borrower.City,
		&borrower.Postcode,
		&borrower.CompanyNumber,
		&borrower.Notes,
		&borrower.CreatedAt,
		&borrower.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return borrower, nil
}

// Create creates a new borrower in the database
func (r *BorrowerRepo) Create(ctx context.Context, borrower *models.Borrower) (int, error) {
	query := `INSERT INTO borrowers (organization_id, name, email, phone, address_line1, address_line2,
             city, postcode, company_number, notes)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		borrower.OrganizationID,
		borrower.Name,
		borrower.Email,
		borrower.Phone,
		borrower.AddressLine1,
		borrower.AddressLine2,
		borrower.City,
		borrower.Postcode,
		borrower.CompanyNumber,
		borrower.Notes,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create borrower: %w", err)
	}

	return id, nil
}

// GetByID gets a borrower by ID within an organization
func (r *BorrowerRepo) GetByID(ctx context.Context, organizationID, id int) (*models.Borrower, error) {
	query := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE organization_id = $1 AND id = $2`

	borrower, err := scanBorrower(r.db.QueryRowContext(ctx, query, organizationID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("borrower not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get borrower: %w", err)
	}

	return borrower, nil
}

// GetByOrganization gets all borrowers for an organization
func (r *BorrowerRepo) GetByOrganization(ctx context.Context, organizationID int) ([]*models.Borrower, error) {
	query := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE organization_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get borrowers: %w", err)
	}
	defer rows.Close()

	var borrowers []*models.Borrower
	for rows.Next() {
		borrower, err := scanBorrower(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan borrower: %w", err)
		}
		borrowers = append(borrowers, borrower)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return borrowers, nil
}

// Update updates borrower details
func (r *BorrowerRepo) Update(ctx context.Context, borrower *models.Borrower) error {
	query := `UPDATE borrowers SET name = $1, email = $2, phone = $3, address_line1 = $4,
             address_line2 = $5, city = $6, postcode = $7, company_number = $8, notes = $9,
             updated_at = NOW()
             WHERE organization_id = $10 AND id = $11`

	result, err := r.db.ExecContext(
		ctx,
		query,
		borrower.Name,
		borrower.Email,
		borrower.Phone,
		borrower.AddressLine1,
		borrower.AddressLine2,
		borrower.City,
		borrower.Postcode,
		borrower.CompanyNumber,
		borrower.Notes,
		borrower.OrganizationID,
		borrower.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update borrower: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("borrower not found")
	}

	return nil
}

// Delete removes a borrower within an organization
func (r *BorrowerRepo) Delete(ctx context.Context, organizationID, id int) error {
	query := `DELETE FROM borrowers WHERE organization_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to delete borrower: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("borrower not found")
	}

	return nil
}
