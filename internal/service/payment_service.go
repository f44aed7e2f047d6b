package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"loan-servicing/internal/loanmath"
	"loan-servicing/internal/metrics"
	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

// PaymentSvc is an implementation of the service.PaymentService interface
type PaymentSvc struct {
	repos   *repository.Repository
	logger  *logrus.Logger
	audit   AuditService
	metrics *metrics.Metrics
}

// NewPaymentService creates a new PaymentSvc
func NewPaymentService(deps Dependencies, audit AuditService) *PaymentSvc {
	return &PaymentSvc{
		repos:   deps.Repos,
		logger:  deps.Logger,
		audit:   audit,
		metrics: deps.Metrics,
	}
}

// Apply records a payment against a loan and allocates it across the
// repayment schedule. The loan row is locked for the duration of the
// transaction so concurrent payments against the same loan serialize instead
// of allocating against the same schedule snapshot. The payment, the schedule
// updates and the credit balance change are committed together.
func (s *PaymentSvc) Apply(ctx context.Context, organizationID, userID, loanID int, req *models.PaymentRequest) (*models.Payment, error) {
	if err := req.ValidatePaymentRequest(); err != nil {
		return nil, fmt.Errorf("invalid payment data: %w", err)
	}

	tx, err := s.repos.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.repos.RollbackTx(tx)
	}()

	loan, err := s.repos.Loan.GetForUpdateTx(ctx, tx, organizationID, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	if loan.Status == models.LoanStatusRedeemed {
		return nil, errors.New("loan is already redeemed")
	}

	entries, err := s.repos.Schedule.GetByLoanIDTx(ctx, tx, organizationID, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("loan has no repayment schedule")
	}

	entryByInstallment := make(map[int]*models.ScheduleEntry, len(entries))
	rows := make([]*loanmath.ScheduleRow, 0, len(entries))
	for _, entry := range entries {
		if entry.IsExtensionPeriod {
			continue
		}
		row := entry.ToRow()
		rows = append(rows, &row)
		entryByInstallment[entry.InstallmentNumber] = entry
	}

	var result loanmath.WaterfallResult
	if req.ManualSplit {
		result = loanmath.ApplyManualPayment(req.InterestAmount, req.PrincipalAmount, rows, loan.CreditBalance, req.OverpaymentOption)
	} else {
		result = loanmath.ApplyPaymentWaterfall(req.Amount, rows, loan.CreditBalance, req.OverpaymentOption)
	}

	payment := &models.Payment{
		OrganizationID:     organizationID,
		LoanID:             loanID,
		Reference:          uuid.NewString(),
		Amount:             req.Total(),
		PaymentDate:        req.PaymentDate,
		Method:             req.Method,
		ManualSplit:        req.ManualSplit,
		InterestAmount:     req.InterestAmount,
		PrincipalAmount:    req.PrincipalAmount,
		OverpaymentOption:  req.OverpaymentOption,
		CreditAmount:       result.CreditAmount,
		PrincipalReduction: result.PrincipalReduction,
		Notes:              req.Notes,
	}

	id, err := s.repos.Payment.CreateTx(ctx, tx, payment)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	payment.ID = id

	for _, update := range result.Updates {
		entry, ok := entryByInstallment[update.InstallmentNumber]
		if !ok {
			return nil, fmt.Errorf("allocation refers to unknown installment %d", update.InstallmentNumber)
		}
		entry.ApplyUpdate(update)
		if err := s.repos.Schedule.UpdatePaidTx(ctx, tx, entry); err != nil {
			return nil, fmt.Errorf("failed to update schedule entry: %w", err)
		}
	}

	// The credit balance is fully consumed by the allocation and replaced by
	// whatever the waterfall handed back.
	if result.CreditAmount != loan.CreditBalance {
		if err := s.repos.Loan.UpdateCreditBalanceTx(ctx, tx, organizationID, loanID, result.CreditAmount); err != nil {
			return nil, fmt.Errorf("failed to update credit balance: %w", err)
		}
	}

	if err := s.repos.CommitTx(tx); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PaymentsApplied.Inc()
	}

	s.audit.Record(ctx, organizationID, userID, "payment", id, models.AuditActionCreate,
		fmt.Sprintf("%.2f against loan %d", payment.Amount, loanID))
	s.logger.Infof("Payment %d applied to loan %d: %d rows touched, credit %.2f, principal reduction %.2f",
		id, loanID, len(result.Updates), result.CreditAmount, result.PrincipalReduction)

	s.settleIfRepaid(ctx, organizationID, userID, loanID)

	return payment, nil
}

// settleIfRepaid moves a loan to REDEEMED once every schedule row is paid
func (s *PaymentSvc) settleIfRepaid(ctx context.Context, organizationID, userID, loanID int) {
	entries, err := s.repos.Schedule.GetByLoanID(ctx, organizationID, loanID)
	if err != nil {
		s.logger.Errorf("Failed to check schedule for loan %d: %v", loanID, err)
		return
	}

	for _, entry := range entries {
		if entry.IsExtensionPeriod {
			continue
		}
		if entry.Status != loanmath.RowStatusPaid {
			return
		}
	}

	if err := s.repos.Loan.UpdateStatus(ctx, organizationID, loanID, models.LoanStatusRedeemed); err != nil {
		s.logger.Errorf("Failed to mark loan %d redeemed: %v", loanID, err)
		return
	}

	s.audit.Record(ctx, organizationID, userID, "loan", loanID, models.AuditActionUpdate, string(models.LoanStatusRedeemed))
	s.logger.Infof("Loan %d fully repaid and redeemed", loanID)
}

// GetByID gets a payment by ID
func (s *PaymentSvc) GetByID(ctx context.Context, organizationID, id int) (*models.Payment, error) {
	return s.repos.Payment.GetByID(ctx, organizationID, id)
}

// GetByLoanID gets all payments for a loan
func (s *PaymentSvc) GetByLoanID(ctx context.Context, organizationID, loanID int) ([]*models.Payment, error) {
	return s.repos.Payment.GetByLoanID(ctx, organizationID, loanID)
}

// GetByOrganization gets all payments for an organization
func (s *PaymentSvc) GetByOrganization(ctx context.Context, organizationID int) ([]*models.Payment, error) {
	return s.repos.Payment.GetByOrganization(ctx, organizationID)
}
