package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

// BorrowerSvc is an implementation of the service.BorrowerService interface
type BorrowerSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	audit  AuditService
}

// NewBorrowerService creates a new BorrowerSvc
func NewBorrowerService(deps Dependencies, audit AuditService) *BorrowerSvc {
	return &BorrowerSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		audit:  audit,
	}
}

// Create creates a new borrower
func (s *BorrowerSvc) Create(ctx context.Context, organizationID, userID int, req *models.BorrowerRequest) (int, error) {
	if err := req.ValidateBorrowerRequest(); err != nil {
		return 0, fmt.Errorf("invalid borrower data: %w", err)
	}

	id, err := s.repos.Borrower.Create(ctx, req.ToBorrower(organizationID))
	if err != nil {
		return 0, fmt.Errorf("failed to create borrower: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "borrower", id, models.AuditActionCreate, req.Name)
	s.logger.Infof("Borrower created: %d", id)

	return id, nil
}

// GetByID gets a borrower by ID
func (s *BorrowerSvc) GetByID(ctx context.Context, organizationID, id int) (*models.Borrower, error) {
	return s.repos.Borrower.GetByID(ctx, organizationID, id)
}

// GetByOrganization gets all borrowers for an organization
func (s *BorrowerSvc) GetByOrganization(ctx context.Context, organizationID int) ([]*models.Borrower, error) {
	return s.repos.Borrower.GetByOrganization(ctx, organizationID)
}

// Update updates borrower details
func (s *BorrowerSvc) Update(ctx context.Context, organizationID, userID, id int, req *models.BorrowerRequest) error {
	if err := req.ValidateBorrowerRequest(); err != nil {
		return fmt.Errorf("invalid borrower data: %w", err)
	}

	borrower := req.ToBorrower(organizationID)
	borrower.ID = id

	if err := s.repos.Borrower.Update(ctx, borrower); err != nil {
		return fmt.Errorf("failed to update borrower: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "borrower", id, models.AuditActionUpdate, req.Name)

	return nil
}

// Delete removes a borrower; borrowers with loans cannot be removed
func (s *BorrowerSvc) Delete(ctx context.Context, organizationID, userID, id int) error {
	loans, err := s.repos.Loan.GetByBorrower(ctx, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to check borrower loans: %w", err)
	}
	if len(loans) > 0 {
		return errors.New("borrower has loans and cannot be deleted")
	}

	if err := s.repos.Borrower.Delete(ctx, organizationID, id); err != nil {
		return fmt.Errorf("failed to delete borrower: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "borrower", id, models.AuditActionDelete, "")

	return nil
}
