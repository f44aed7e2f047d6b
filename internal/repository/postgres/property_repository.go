package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"loan-servicing/internal/models"
)

const propertyColumns = `id, organization_id, loan_id, address_line1, address_line2, city, postcode,
             property_type, valuation_amount, valuation_date, title_number, charge_rank,
             created_at, updated_at`

// PropertyRepo is a PostgreSQL implementation of the
// repository.PropertyRepository interface
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepository creates a new PropertyRepo
func NewPropertyRepository(db *sql.DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

func scanProperty(row interface{ Scan(...interface{}) error }) (*models.Property, error) {
	property := &models.Property{}
	err := row.Scan(
		&property.ID,
		&property.OrganizationID,
		&property.LoanID,
		&property.AddressLine1,
		&property.AddressLine2,
		&property.City,
		&property.Postcode,
		&property.PropertyType,
		&property.ValuationAmount,
		&property.ValuationDate,
		&property.TitleNumber,
		&property.ChargeRank,
		&property.CreatedAt,
		&property.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return property, nil
}

// Create creates a new property in the database
func (r *PropertyRepo) Create(ctx context.Context, property *models.Property) (int, error) {
	query := `INSERT INTO properties (organization_id, loan_id, address_line1, address_line2, city,
             postcode, property_type, valuation_amount, valuation_date, title_number, charge_rank)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		property.OrganizationID,
		property.LoanID,
		property.AddressLine1,
		property.AddressLine2,
		property.City,
		property.Postcode,
		property.PropertyType,
		property.ValuationAmount,
		property.ValuationDate,
		property.TitleNumber,
		property.ChargeRank,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create property: %w", err)
	}

	return id, nil
}

// GetByID gets a property by ID within an organization
func (r *PropertyRepo) GetByID(ctx context.Context, organizationID, id int) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE organization_id = $1 AND id = $2`

	property, err := scanProperty(r.db.QueryRowContext(ctx, query, organizationID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("property not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return property, nil
}

// GetByOrganization gets all properties for an organization
func (r *PropertyRepo) GetByOrganization(ctx context.Context, organizationID int) ([]*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE organization_id = $1 ORDER BY id`

	return r.queryProperties(ctx, query, organizationID)
}

// GetByLoanID gets the properties securing a loan
func (r *PropertyRepo) GetByLoanID(ctx context.Context, organizationID, loanID int) ([]*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties
             WHERE organization_id = $1 AND loan_id = $2 ORDER BY charge_rank`

	return r.queryProperties(ctx, query, organizationID, loanID)
}

func (r *PropertyRepo) queryProperties(ctx context.Context, query string, args ...interface{}) ([]*models.Property, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get properties: %w", err)
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, property)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return properties, nil
}

// Update updates property details
func (r *PropertyRepo) Update(ctx context.Context, property *models.Property) error {
	query := `UPDATE properties SET loan_id = $1, address_line1 = $2, address_line2 = $3, city = $4,
             postcode = $5, property_type = $6, valuation_amount = $7, valuation_date = $8,
             title_number = $9, charge_rank = $10, updated_at = NOW()
             WHERE organization_id = $11 AND id = $12`

	result, err := r.db.ExecContext(
		ctx,
		query,
		property.LoanID,
		property.AddressLine1,
		property.AddressLine2,
		property.City,
		property.Postcode,
		property.PropertyType,
		property.ValuationAmount,
		property.ValuationDate,
		property.TitleNumber,
		property.ChargeRank,
		property.OrganizationID,
		property.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("property not found")
	}

	return nil
}

// Delete removes a property within an organization
func (r *PropertyRepo) Delete(ctx context.Context, organizationID, id int) error {
	query := `DELETE FROM properties WHERE organization_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("property not found")
	}

	return nil
}
