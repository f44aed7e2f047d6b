package repository

import (
	"context"
	"database/sql"
	"time"

	"loan-servicing/internal/models"
	"loan-servicing/internal/repository/postgres"
)

// Every read and write below is organization-scoped: the organization ID is
// an explicit argument, never ambient state, so a query can not silently run
// unscoped.

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(tx *sql.Tx) error
	RollbackTx(tx *sql.Tx) error
}

// OrganizationRepository defines methods for organization repository
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) (int, error)
	GetByID(ctx context.Context, id int) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
}

// UserRepository defines methods for user repository
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (int, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, organizationID, id int) error
}

// InvitationRepository defines methods for invitation repository
type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.Invitation) (int, error)
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.Invitation, error)
	MarkAccepted(ctx context.Context, id int) error
}

// BorrowerRepository defines methods for borrower repository
type BorrowerRepository interface {
	Create(ctx context.Context, borrower *models.Borrower) (int, error)
	GetByID(ctx context.Context, organizationID, id int) (*models.Borrower, error)
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.Borrower, error)
	Update(ctx context.Context, borrower *models.Borrower) error
	Delete(ctx context.Context, organizationID, id int) error
}

// PropertyRepository defines methods for property repository
type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) (int, error)
	GetByID(ctx context.Context, organizationID, id int) (*models.Property, error)
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.Property, error)
	GetByLoanID(ctx context.Context, organizationID, loanID int) ([]*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, organizationID, id int) error
}

// LoanRepository defines methods for loan repository
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) (int, error)
	GetByID(ctx context.Context, organizationID, id int) (*models.Loan, error)
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.Loan, error)
	GetByBorrower(ctx context.Context, organizationID, borrowerID int) ([]*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	UpdateStatus(ctx context.Context, organizationID, id int, status models.LoanStatus) error
	Delete(ctx context.Context, organizationID, id int) error

	// GetActiveLoans spans all organizations; only the sweep scheduler uses it.
	GetActiveLoans(ctx context.Context) ([]*models.Loan, error)

	// Transaction-specific methods
	GetForUpdateTx(ctx context.Context, tx *sql.Tx, organizationID, id int) (*models.Loan, error)
	UpdateCreditBalanceTx(ctx context.Context, tx *sql.Tx, organizationID, id int, creditBalance float64) error
}

// ScheduleRepository defines methods for repayment schedule repository
type ScheduleRepository interface {
	CreateBatch(ctx context.Context, entries []*models.ScheduleEntry) error
	GetByLoanID(ctx context.Context, organizationID, loanID int) ([]*models.ScheduleEntry, error)
	GetDueBefore(ctx context.Context, date time.Time) ([]*models.ScheduleEntry, error)
	Update(ctx context.Context, entry *models.ScheduleEntry) error
	DeleteByLoanID(ctx context.Context, organizationID, loanID int) error

	// Transaction-specific methods
	GetByLoanIDTx(ctx context.Context, tx *sql.Tx, organizationID, loanID int) ([]*models.ScheduleEntry, error)
	UpdatePaidTx(ctx context.Context, tx *sql.Tx, entry *models.ScheduleEntry) error
}

// PaymentRepository defines methods for payment repository
type PaymentRepository interface {
	GetByID(ctx context.Context, organizationID, id int) (*models.Payment, error)
	GetByLoanID(ctx context.Context, organizationID, loanID int) ([]*models.Payment, error)
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.Payment, error)
	GetByAmountAround(ctx context.Context, organizationID int, amount float64, from, to time.Time) ([]*models.Payment, error)

	// Transaction-specific methods
	CreateTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) (int, error)
}

// AuditRepository defines methods for the append-only audit log
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) (int, error)
	GetByOrganization(ctx context.Context, organizationID, limit int) ([]*models.AuditEntry, error)
	GetByEntity(ctx context.Context, organizationID int, entityType string, entityID int) ([]*models.AuditEntry, error)
}

// BankTransactionRepository defines methods for bank statement lines
type BankTransactionRepository interface {
	CreateBatch(ctx context.Context, lines []*models.BankTransaction) error
	GetByID(ctx context.Context, organizationID, id int) (*models.BankTransaction, error)
	GetByStatus(ctx context.Context, organizationID int, status models.BankTransactionStatus) ([]*models.BankTransaction, error)
	Update(ctx context.Context, line *models.BankTransaction) error
}

// ImportRepository defines methods for import batch bookkeeping
type ImportRepository interface {
	Create(ctx context.Context, batch *models.ImportBatch) error
	GetByOrganization(ctx context.Context, organizationID int) ([]*models.ImportBatch, error)
}

// Repository is a composition of all repositories
type Repository struct {
	DB              *sql.DB
	Organization    OrganizationRepository
	User            UserRepository
	Invitation      InvitationRepository
	Borrower        BorrowerRepository
	Property        PropertyRepository
	Loan            LoanRepository
	Schedule        ScheduleRepository
	Payment         PaymentRepository
	Audit           AuditRepository
	BankTransaction BankTransactionRepository
	Import          ImportRepository
}

// NewRepository creates a new repository with all sub-repositories
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		DB:              db,
		Organization:    postgres.NewOrganizationRepository(db),
		User:            postgres.NewUserRepository(db),
		Invitation:      postgres.NewInvitationRepository(db),
		Borrower:        postgres.NewBorrowerRepository(db),
		Property:        postgres.NewPropertyRepository(db),
		Loan:            postgres.NewLoanRepository(db),
		Schedule:        postgres.NewScheduleRepository(db),
		Payment:         postgres.NewPaymentRepository(db),
		Audit:           postgres.NewAuditRepository(db),
		BankTransaction: postgres.NewBankTransactionRepository(db),
		Import:          postgres.NewImportRepository(db),
	}
}

// BeginTx begins a new transaction
func (r *Repository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.DB.BeginTx(ctx, nil)
}

// CommitTx commits a transaction
func (r *Repository) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// RollbackTx rolls back a transaction
func (r *Repository) RollbackTx(tx *sql.Tx) error {
	return tx.Rollback()
}
