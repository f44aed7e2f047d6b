package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

// AuditSvc is an implementation of the service.AuditService interface
type AuditSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
}

// NewAuditService creates a new AuditSvc
func NewAuditService(deps Dependencies) *AuditSvc {
	return &AuditSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
	}
}

// Record appends an audit entry. Audit failures are logged but never fail
// the operation that triggered them.
func (s *AuditSvc) Record(ctx context.Context, organizationID, userID int, entityType string, entityID int, action models.AuditAction, details string) {
	entry := &models.AuditEntry{
		OrganizationID: organizationID,
		UserID:         userID,
		EntityType:     entityType,
		EntityID:       entityID,
		Action:         action,
		Details:        details,
	}

	if _, err := s.repos.Audit.Create(ctx, entry); err != nil {
		s.logger.Errorf("Failed to record audit entry for %s %d: %v", entityType, entityID, err)
	}
}

// GetByOrganization gets the most recent audit entries for an organization
func (s *AuditSvc) GetByOrganization(ctx context.Context, organizationID, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repos.Audit.GetByOrganization(ctx, organizationID, limit)
}

// GetByEntity gets the audit trail for one entity
func (s *AuditSvc) GetByEntity(ctx context.Context, organizationID int, entityType string, entityID int) ([]*models.AuditEntry, error) {
	return s.repos.Audit.GetByEntity(ctx, organizationID, entityType, entityID)
}
