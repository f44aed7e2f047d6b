package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"loan-servicing/internal/models"
)

// InvitationRepo is a PostgreSQL implementation of the
// repository.InvitationRepository interface
type InvitationRepo struct {
	db *sql.DB
}

// NewInvitationRepository creates a new InvitationRepo
func NewInvitationRepository(db *sql.DB) *InvitationRepo {
	return &InvitationRepo{db: db}
}

// Create creates a new invitation in the database
func (r *InvitationRepo) Create(ctx context.Context, invitation *models.Invitation) (int, error) {
	query := `INSERT INTO invitations (organization_id, email, role, token, invited_by, expires_at)
             VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		invitation.OrganizationID,
		invitation.Email,
		invitation.Role,
		invitation.Token,
		invitation.InvitedBy,
		invitation.ExpiresAt,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create invitation: %w", err)
	}

	return id, nil
}

// GetByToken gets an invitation by its token
func (r *InvitationRepo) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	query := `SELECT id, organization_id, email, role, token, invited_by, expires_at, accepted_at, created_at
             FROM invitations WHERE token = $1`

	invitation := &models.Invitation{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&invitation.ID,
		&invitation.OrganizationID,
		&invitation.Email,
		&invitation.Role,
		&invitation.Token,
		&invitation.InvitedBy,
		&invitation.ExpiresAt,
		&invitation.AcceptedAt,
		&invitation.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invitation not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return invitation, nil
}

// GetByOrganization gets all invitations for an organization
func (r *InvitationRepo) GetByOrganization(ctx context.Context, organizationID int) ([]*models.Invitation, error) {
	query := `SELECT id, organization_id, email, role, token, invited_by, expires_at, accepted_at, created_at
             FROM invitations WHERE organization_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*models.Invitation
	for rows.Next() {
		invitation := &models.Invitation{}
		err := rows.Scan(
			&invitation.ID,
			&invitation.OrganizationID,
			&invitation.Email,
			&invitation.Role,
			&invitation.Token,
			&invitation.InvitedBy,
			&invitation.ExpiresAt,
			&invitation.AcceptedAt,
			&invitation.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, invitation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return invitations, nil
}

// MarkAccepted records the acceptance time of an invitation
func (r *InvitationRepo) MarkAccepted(ctx context.Context, id int) error {
	query := `UPDATE invitations SET accepted_at = NOW() WHERE id = $1 AND accepted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark invitation accepted: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("invitation not found or already accepted")
	}

	return nil
}
