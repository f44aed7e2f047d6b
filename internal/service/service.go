package service

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"loan-servicing/configs"
	"loan-servicing/internal/metrics"
	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

// UserService defines methods for user and invitation management
type UserService interface {
	Register(ctx context.Context, user *models.UserRegistration) (int, error)
	Login(ctx context.Context, login *models.UserLogin) (*models.TokenResponse, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.User, error)
	Deactivate(ctx context.Context, organizationID, id int) error
	Invite(ctx context.Context, organizationID, invitedBy int, req *models.InvitationRequest) (*models.Invitation, error)
	AcceptInvitation(ctx context.Context, accept *models.InvitationAccept) (int, error)
}

// OrganizationService defines methods for organization settings
type OrganizationService interface {
	GetByID(ctx context.Context, id int) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
}

// BorrowerService defines methods for borrower management
type BorrowerService interface {
	Create(ctx context.Context, organizationID, userID int, req *models.BorrowerRequest) (int, error)
	GetByID(ctx context.Context, organizationID, id int) (*models.Borrower, error)
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.Borrower, error)
	Update(ctx context.Context, organizationID, userID, id int, req *models.BorrowerRequest) error
	Delete(ctx context.Context, organizationID, userID, id int) error
}

// PropertyService defines methods for security property management
type PropertyService interface {
	Create(ctx context.Context, organizationID, userID int, req *models.PropertyRequest) (int, error)
	GetByID(ctx context.Context, organizationID, id int) (*models.Property, error)
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.Property, error)
	GetByLoanID(ctx context.Context, organizationID, loanID int) ([]*models.Property, error)
	Update(ctx context.Context, organizationID, userID, id int, req *models.PropertyRequest) error
	Delete(ctx context.Context, organizationID, userID, id int) error
}

// SecuredProperty is a security property with its loan-to-value against the
// loan it secures
type SecuredProperty struct {
	*models.Property
	LoanToValue float64 `json:"loan_to_value"`
}

// LoanDetail is a loan with its live accrual figures
type LoanDetail struct {
	Loan                *models.Loan            `json:"loan"`
	AccruedInterest     float64                 `json:"accrued_interest"`
	InterestOutstanding float64                 `json:"interest_outstanding"`
	EffectiveRate       float64                 `json:"effective_rate"`
	Summary             *models.ScheduleSummary `json:"summary,omitempty"`
	Security            []*SecuredProperty      `json:"security,omitempty"`
}

// LoanService defines methods for loan management and schedule generation
type LoanService interface {
	Create(ctx context.Context, organizationID, userID int, req *models.LoanRequest) (int, error)
	GetByID(ctx context.Context, organizationID, id int) (*models.Loan, error)
	GetDetail(ctx context.Context, organizationID, id int) (*LoanDetail, error)
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.Loan, error)
	GetByBorrower(ctx context.Context, organizationID, borrowerID int) ([]*models.Loan, error)
	Update(ctx context.Context, organizationID, userID, id int, req *models.LoanRequest) error
	UpdateStatus(ctx context.Context, organizationID, userID, id int, status models.LoanStatus) error
	Delete(ctx context.Context, organizationID, userID, id int) error
	GetSchedule(ctx context.Context, organizationID, loanID int) ([]*models.ScheduleEntry, *models.ScheduleSummary, error)
	RegenerateSchedule(ctx context.Context, organizationID, userID, loanID int) error
	SweepOverdue(ctx context.Context) error
}

// PaymentService defines methods for recording payments and allocating them
// across the repayment schedule
type PaymentService interface {
	Apply(ctx context.Context, organizationID, userID, loanID int, req *models.PaymentRequest) (*models.Payment, error)
	GetByID(ctx context.Context, organizationID, id int) (*models.Payment, error)
	GetByLoanID(ctx context.Context, organizationID, loanID int) ([]*models.Payment, error)
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.Payment, error)
}

// ImportService defines methods for CSV imports
type ImportService interface {
	ImportBorrowers(ctx context.Context, organizationID, userID int, fileName string, r io.Reader) (*models.ImportResult, error)
	ImportLoans(ctx context.Context, organizationID, userID int, fileName string, r io.Reader) (*models.ImportResult, error)
	ImportPayments(ctx context.Context, organizationID, userID int, fileName string, r io.Reader) (*models.ImportResult, error)
	GetBatches(ctx context.Context, organizationID int) ([]*models.ImportBatch, error)
}

// ReconciliationService defines methods for bank statement reconciliation
type ReconciliationService interface {
	ImportStatement(ctx context.Context, organizationID, userID int, r io.Reader) (int, error)
	GetUnmatched(ctx context.Context, organizationID int) ([]*models.BankTransaction, error)
	SuggestMatches(ctx context.Context, organizationID int) ([]*models.MatchSuggestion, error)
	ConfirmMatch(ctx context.Context, organizationID, userID int, confirmation *models.MatchConfirmation) error
	Ignore(ctx context.Context, organizationID, userID, bankTransactionID int) error
}

// AuditService defines methods for reading the audit log
type AuditService interface {
	Record(ctx context.Context, organizationID, userID int, entityType string, entityID int, action models.AuditAction, details string)
	GetByOrganization(ctx context.Context, organizationID, limit int) ([]*models.AuditEntry, error)
	GetByEntity(ctx context.Context, organizationID int, entityType string, entityID int) ([]*models.AuditEntry, error)
}

// EmailService defines methods for outbound email
type EmailService interface {
	SendInvitation(ctx context.Context, invitation *models.Invitation, organizationName string) error
	SendPaymentReminder(ctx context.Context, loan *models.Loan, borrower *models.Borrower, entry *models.ScheduleEntry) error
}

// Dependencies contains dependencies for services
type Dependencies struct {
	Repos   *repository.Repository
	Logger  *logrus.Logger
	Config  *configs.Config
	Metrics *metrics.Metrics
}

// Service is a composition of all services
type Service struct {
	User           UserService
	Organization   OrganizationService
	Borrower       BorrowerService
	Property       PropertyService
	Loan           LoanService
	Payment        PaymentService
	Import         ImportService
	Reconciliation ReconciliationService
	Audit          AuditService
	Email          EmailService
}

// NewService creates a new service with all sub-services
func NewService(deps Dependencies) *Service {
	audit := NewAuditService(deps)
	email := NewEmailService(deps)
	loan := NewLoanService(deps, audit, email)

	return &Service{
		User:           NewUserService(deps, audit, email),
		Organization:   NewOrganizationService(deps, audit),
		Borrower:       NewBorrowerService(deps, audit),
		Property:       NewPropertyService(deps, audit),
		Loan:           loan,
		Payment:        NewPaymentService(deps, audit),
		Import:         NewImportService(deps, audit),
		Reconciliation: NewReconciliationService(deps, audit),
		Audit:          audit,
		Email:          email,
	}
}

// invitationTTL is how long an invitation remains acceptable
const invitationTTL = 7 * 24 * time.Hour
