package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

// PropertySvc is an implementation of the service.PropertyService interface
type PropertySvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	audit  AuditService
}

// NewPropertyService creates a new PropertySvc
func NewPropertyService(deps Dependencies, audit AuditService) *PropertySvc {
	return &PropertySvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		audit:  audit,
	}
}

// Create creates a new property; when a loan is referenced it must belong to
// the same organization
func (s *PropertySvc) Create(ctx context.Context, organizationID, userID int, req *models.PropertyRequest) (int, error) {
	if err := req.ValidatePropertyRequest(); err != nil {
		return 0, fmt.Errorf("invalid property data: %w", err)
	}

	if req.LoanID != nil {
		if _, err := s.repos.Loan.GetByID(ctx, organizationID, *req.LoanID); err != nil {
			return 0, fmt.Errorf("failed to get loan: %w", err)
		}
	}

	id, err := s.repos.Property.Create(ctx, req.ToProperty(organizationID))
	if err != nil {
		return 0, fmt.Errorf("failed to create property: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "property", id, models.AuditActionCreate, req.AddressLine1)
	s.logger.Infof("Property created: %d", id)

	return id, nil
}

// GetByID gets a property by ID
func (s *PropertySvc) GetByID(ctx context.Context, organizationID, id int) (*models.Property, error) {
	return s.repos.Property.GetByID(ctx, organizationID, id)
}

// GetByOrganization gets all properties for an organization
func (s *PropertySvc) GetByOrganization(ctx context.Context, organizationID int) ([]*models.Property, error) {
	return s.repos.Property.GetByOrganization(ctx, organizationID)
}

// GetByLoanID gets the properties securing a loan
func (s *PropertySvc) GetByLoanID(ctx context.Context, organizationID, loanID int) ([]*models.Property, error) {
	return s.repos.Property.GetByLoanID(ctx, organizationID, loanID)
}

// Update updates property details
func (s *PropertySvc) Update(ctx context.Context, organizationID, userID, id int, req *models.PropertyRequest) error {
	if err := req.ValidatePropertyRequest(); err != nil {
		return fmt.Errorf("invalid property data: %w", err)
	}

	if req.LoanID != nil {
		if _, err := s.repos.Loan.GetByID(ctx, organizationID, *req.LoanID); err != nil {
			return fmt.Errorf("failed to get loan: %w", err)
		}
	}

	property := req.ToProperty(organizationID)
	property.ID = id

	if err := s.repos.Property.Update(ctx, property); err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "property", id, models.AuditActionUpdate, req.AddressLine1)

	return nil
}

// Delete removes a property
func (s *PropertySvc) Delete(ctx context.Context, organizationID, userID, id int) error {
	if err := s.repos.Property.Delete(ctx, organizationID, id); err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "property", id, models.AuditActionDelete, "")

	return nil
}
