package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"loan-servicing/internal/models"
)

// AuditRepo is a PostgreSQL implementation of the
// repository.AuditRepository interface. The table is append-only.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepository creates a new AuditRepo
func NewAuditRepository(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Create appends an audit entry
func (r *AuditRepo) Create(ctx context.Context, entry *models.AuditEntry) (int, error) {
	query := `INSERT INTO audit_entries (organization_id, user_id, entity_type, entity_id, action, details)
             VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		entry.OrganizationID,
		entry.UserID,
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		entry.Details,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create audit entry: %w", err)
	}

	return id, nil
}

// GetByOrganization gets the most recent audit entries for an organization
func (r *AuditRepo) GetByOrganization(ctx context.Context, organizationID, limit int) ([]*models.AuditEntry, error) {
	query := `SELECT id, organization_id, user_id, entity_type, entity_id, action, details, created_at
             FROM audit_entries WHERE organization_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`

	return r.queryEntries(ctx, query, organizationID, limit)
}

// GetByEntity gets the audit trail for one entity
func (r *AuditRepo) GetByEntity(ctx context.Context, organizationID int, entityType string, entityID int) ([]*models.AuditEntry, error) {
	query := `SELECT id, organization_id, user_id, entity_type, entity_id, action, details, created_at
             FROM audit_entries WHERE organization_id = $1 AND entity_type = $2 AND entity_id = $3
             ORDER BY created_at DESC, id DESC`

	return r.queryEntries(ctx, query, organizationID, entityType, entityID)
}

func (r *AuditRepo) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		entry := &models.AuditEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.OrganizationID,
			&entry.UserID,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Action,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}
