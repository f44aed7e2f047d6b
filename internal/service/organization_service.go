package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

// OrganizationSvc is an implementation of the service.OrganizationService interface
type OrganizationSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	audit  AuditService
}

// NewOrganizationService creates a new OrganizationSvc
func NewOrganizationService(deps Dependencies, audit AuditService) *OrganizationSvc {
	return &OrganizationSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		audit:  audit,
	}
}

// GetByID gets an organization by ID
func (s *OrganizationSvc) GetByID(ctx context.Context, id int) (*models.Organization, error) {
	org, err := s.repos.Organization.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// Update updates organization settings
func (s *OrganizationSvc) Update(ctx context.Context, org *models.Organization) error {
	if err := s.repos.Organization.Update(ctx, org); err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	s.logger.Infof("Organization updated: %d", org.ID)

	return nil
}
