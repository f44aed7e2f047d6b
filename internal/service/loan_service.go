package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"loan-servicing/internal/loanmath"
	"loan-servicing/internal/metrics"
	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

// LoanSvc is an implementation of the service.LoanService interface
type LoanSvc struct {
	repos   *repository.Repository
	logger  *logrus.Logger
	audit   AuditService
	email   EmailService
	metrics *metrics.Metrics
}

// NewLoanService creates a new LoanSvc. The email service may be nil, in
// which case the overdue sweep sends no reminders.
func NewLoanService(deps Dependencies, audit AuditService, email EmailService) *LoanSvc {
	return &LoanSvc{
		repos:   deps.Repos,
		logger:  deps.Logger,
		audit:   audit,
		email:   email,
		metrics: deps.Metrics,
	}
}

// Create creates a new loan and generates its repayment schedule
func (s *LoanSvc) Create(ctx context.Context, organizationID, userID int, req *models.LoanRequest) (int, error) {
	if err := req.ValidateLoanRequest(); err != nil {
		return 0, fmt.Errorf("invalid loan data: %w", err)
	}

	if _, err := s.repos.Borrower.GetByID(ctx, organizationID, req.BorrowerID); err != nil {
		return 0, fmt.Errorf("failed to get borrower: %w", err)
	}

	loan := req.ToLoan(organizationID)

	// Reject terms the schedule generator cannot handle before anything is
	// persisted.
	rows, err := loanmath.GenerateSchedule(loan.Terms(), nil)
	if err != nil {
		return 0, fmt.Errorf("invalid loan terms: %w", err)
	}

	id, err := s.repos.Loan.Create(ctx, loan)
	if err != nil {
		return 0, fmt.Errorf("failed to create loan: %w", err)
	}

	if err := s.persistSchedule(ctx, organizationID, id, rows); err != nil {
		return 0, err
	}

	s.audit.Record(ctx, organizationID, userID, "loan", id, models.AuditActionCreate, req.Reference)
	s.logger.Infof("Loan created: %d with %d schedule rows", id, len(rows))

	return id, nil
}

// GetByID gets a loan by ID
func (s *LoanSvc) GetByID(ctx context.Context, organizationID, id int) (*models.Loan, error) {
	return s.repos.Loan.GetByID(ctx, organizationID, id)
}

// GetDetail gets a loan together with its live accrual figures and schedule
// summary
func (s *LoanSvc) GetDetail(ctx context.Context, organizationID, id int) (*LoanDetail, error) {
	loan, err := s.repos.Loan.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	entries, err := s.repos.Schedule.GetByLoanID(ctx, organizationID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	now := time.Now()
	summary := models.CalculateScheduleSummary(entries, now)

	properties, err := s.repos.Property.GetByLoanID(ctx, organizationID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get security: %w", err)
	}
	security := make([]*SecuredProperty, 0, len(properties))
	for _, property := range properties {
		security = append(security, &SecuredProperty{
			Property:    property,
			LoanToValue: property.LoanToValue(loan.Principal),
		})
	}

	return &LoanDetail{
		Loan:                loan,
		AccruedInterest:     loan.AccruedInterest(now),
		InterestOutstanding: loan.LiveInterestOutstanding(summary.InterestPaid, now),
		EffectiveRate:       loan.EffectiveRate(now),
		Summary:             summary,
		Security:            security,
	}, nil
}

// GetByOrganization gets all loans for an organization
func (s *LoanSvc) GetByOrganization(ctx context.Context, organizationID int) ([]*models.Loan, error) {
	return s.repos.Loan.GetByOrganization(ctx, organizationID)
}

// GetByBorrower gets all loans for a borrower
func (s *LoanSvc) GetByBorrower(ctx context.Context, organizationID, borrowerID int) ([]*models.Loan, error) {
	return s.repos.Loan.GetByBorrower(ctx, organizationID, borrowerID)
}

// Update updates loan terms and regenerates the schedule. Paid amounts on
// the old schedule are discarded; payments remain on record and can be
// replayed against the new schedule.
func (s *LoanSvc) Update(ctx context.Context, organizationID, userID, id int, req *models.LoanRequest) error {
	if err := req.ValidateLoanRequest(); err != nil {
		return fmt.Errorf("invalid loan data: %w", err)
	}

	existing, err := s.repos.Loan.GetByID(ctx, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to get loan: %w", err)
	}

	loan := req.ToLoan(organizationID)
	loan.ID = id
	loan.CreditBalance = existing.CreditBalance

	rows, err := loanmath.GenerateSchedule(loan.Terms(), nil)
	if err != nil {
		return fmt.Errorf("invalid loan terms: %w", err)
	}

	if err := s.repos.Loan.Update(ctx, loan); err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}

	if err := s.repos.Schedule.DeleteByLoanID(ctx, organizationID, id); err != nil {
		return fmt.Errorf("failed to delete old schedule: %w", err)
	}

	if err := s.persistSchedule(ctx, organizationID, id, rows); err != nil {
		return err
	}

	s.audit.Record(ctx, organizationID, userID, "loan", id, models.AuditActionUpdate, req.Reference)
	s.logger.Infof("Loan updated: %d, schedule regenerated with %d rows", id, len(rows))

	return nil
}

// UpdateStatus updates only the loan status
func (s *LoanSvc) UpdateStatus(ctx context.Context, organizationID, userID, id int, status models.LoanStatus) error {
	switch status {
	case models.LoanStatusPending, models.LoanStatusActive, models.LoanStatusOverdue,
		models.LoanStatusRedeemed, models.LoanStatusDefaulted:
	default:
		return fmt.Errorf("invalid loan status: %s", status)
	}

	if err := s.repos.Loan.UpdateStatus(ctx, organizationID, id, status); err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "loan", id, models.AuditActionUpdate, string(status))

	return nil
}

// Delete removes a loan and its schedule
func (s *LoanSvc) Delete(ctx context.Context, organizationID, userID, id int) error {
	if err := s.repos.Schedule.DeleteByLoanID(ctx, organizationID, id); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	if err := s.repos.Loan.Delete(ctx, organizationID, id); err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "loan", id, models.AuditActionDelete, "")

	return nil
}

// GetSchedule gets the repayment schedule for a loan together with its
// summary
func (s *LoanSvc) GetSchedule(ctx context.Context, organizationID, loanID int) ([]*models.ScheduleEntry, *models.ScheduleSummary, error) {
	if _, err := s.repos.Loan.GetByID(ctx, organizationID, loanID); err != nil {
		return nil, nil, fmt.Errorf("failed to get loan: %w", err)
	}

	entries, err := s.repos.Schedule.GetByLoanID(ctx, organizationID, loanID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	return entries, models.CalculateScheduleSummary(entries, time.Now()), nil
}

// RegenerateSchedule rebuilds a loan's schedule from its current terms
func (s *LoanSvc) RegenerateSchedule(ctx context.Context, organizationID, userID, loanID int) error {
	loan, err := s.repos.Loan.GetByID(ctx, organizationID, loanID)
	if err != nil {
		return fmt.Errorf("failed to get loan: %w", err)
	}

	rows, err := loanmath.GenerateSchedule(loan.Terms(), nil)
	if err != nil {
		return fmt.Errorf("invalid loan terms: %w", err)
	}

	if err := s.repos.Schedule.DeleteByLoanID(ctx, organizationID, loanID); err != nil {
		return fmt.Errorf("failed to delete old schedule: %w", err)
	}

	if err := s.persistSchedule(ctx, organizationID, loanID, rows); err != nil {
		return err
	}

	s.audit.Record(ctx, organizationID, userID, "loan", loanID, models.AuditActionUpdate, "schedule regenerated")

	return nil
}

// SweepOverdue flags schedule rows past their due date and moves loans with
// overdue rows to the OVERDUE status. The scheduler runs it across all
// organizations. Loans that stopped accruing (redeemed, defaulted) are not in
// the active set and are left alone.
func (s *LoanSvc) SweepOverdue(ctx context.Context) error {
	now := time.Now()

	active, err := s.repos.Loan.GetActiveLoans(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active loans: %w", err)
	}
	loanByID := make(map[int]*models.Loan, len(active))
	for _, loan := range active {
		loanByID[loan.ID] = loan
	}

	entries, err := s.repos.Schedule.GetDueBefore(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to get due schedule entries: %w", err)
	}

	overdueLoans := make(map[int]struct{})
	newlyFlagged := make(map[int]*models.ScheduleEntry)
	flagged := 0

	for _, entry := range entries {
		if _, ok := loanByID[entry.LoanID]; !ok {
			continue
		}
		overdueLoans[entry.LoanID] = struct{}{}
		if !entry.MarkOverdue(now) {
			continue
		}
		if err := s.repos.Schedule.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to flag schedule entry %d: %w", entry.ID, err)
		}
		if _, ok := newlyFlagged[entry.LoanID]; !ok {
			newlyFlagged[entry.LoanID] = entry
		}
		flagged++
	}

	moved := 0
	for loanID := range overdueLoans {
		loan := loanByID[loanID]
		if loan.Status == models.LoanStatusActive {
			if err := s.repos.Loan.UpdateStatus(ctx, loan.OrganizationID, loanID, models.LoanStatusOverdue); err != nil {
				return fmt.Errorf("failed to mark loan %d overdue: %w", loanID, err)
			}
			moved++
		}
		if entry, ok := newlyFlagged[loanID]; ok {
			s.sendOverdueReminder(ctx, loan, entry)
		}
	}

	s.logger.Infof("Overdue sweep: %d rows flagged, %d loans marked overdue", flagged, moved)

	return nil
}

// sendOverdueReminder emails the borrower about a newly overdue installment.
// Failures are logged; the sweep itself never fails on email.
func (s *LoanSvc) sendOverdueReminder(ctx context.Context, loan *models.Loan, entry *models.ScheduleEntry) {
	if s.email == nil {
		return
	}

	borrower, err := s.repos.Borrower.GetByID(ctx, loan.OrganizationID, loan.BorrowerID)
	if err != nil {
		s.logger.Errorf("Overdue sweep: failed to get borrower for loan %d: %v", loan.ID, err)
		return
	}

	if err := s.email.SendPaymentReminder(ctx, loan, borrower, entry); err != nil {
		s.logger.Errorf("Overdue sweep: failed to send reminder for loan %d: %v", loan.ID, err)
	}
}

func (s *LoanSvc) persistSchedule(ctx context.Context, organizationID, loanID int, rows []loanmath.ScheduleRow) error {
	entries := make([]*models.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.NewScheduleEntry(organizationID, loanID, row))
	}

	if err := s.repos.Schedule.CreateBatch(ctx, entries); err != nil {
		return fmt.Errorf("failed to persist schedule: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SchedulesGenerated.Inc()
	}

	return nil
}
