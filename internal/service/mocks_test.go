package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

// The fakes embed the repository interfaces so only the methods a test
// exercises need implementations; calling anything else panics.

type fakeBorrowerRepo struct {
	repository.BorrowerRepository
	borrowers map[int]*models.Borrower
	nextID    int
}

func newFakeBorrowerRepo() *fakeBorrowerRepo {
	return &fakeBorrowerRepo{borrowers: make(map[int]*models.Borrower), nextID: 1}
}

func (f *fakeBorrowerRepo) Create(ctx context.Context, borrower *models.Borrower) (int, error) {
	id := f.nextID
	f.nextID++
	borrower.ID = id
	f.borrowers[id] = borrower
	return id, nil
}

func (f *fakeBorrowerRepo) GetByID(ctx context.Context, organizationID, id int) (*models.Borrower, error) {
	borrower, ok := f.borrowers[id]
	if !ok || borrower.OrganizationID != organizationID {
		return nil, fmt.Errorf("borrower not found")
	}
	return borrower, nil
}

type fakeLoanRepo struct {
	repository.LoanRepository
	loans    map[int]*models.Loan
	statuses map[int]models.LoanStatus
	nextID   int
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{
		loans:    make(map[int]*models.Loan),
		statuses: make(map[int]models.LoanStatus),
		nextID:   1,
	}
}

func (f *fakeLoanRepo) Create(ctx context.Context, loan *models.Loan) (int, error) {
	id := f.nextID
	f.nextID++
	loan.ID = id
	f.loans[id] = loan
	return id, nil
}

func (f *fakeLoanRepo) GetByID(ctx context.Context, organizationID, id int) (*models.Loan, error) {
	loan, ok := f.loans[id]
	if !ok || loan.OrganizationID != organizationID {
		return nil, fmt.Errorf("loan not found")
	}
	return loan, nil
}

func (f *fakeLoanRepo) Update(ctx context.Context, loan *models.Loan) error {
	existing, ok := f.loans[loan.ID]
	if !ok || existing.OrganizationID != loan.OrganizationID {
		return fmt.Errorf("loan not found")
	}
	f.loans[loan.ID] = loan
	return nil
}

func (f *fakeLoanRepo) GetActiveLoans(ctx context.Context) ([]*models.Loan, error) {
	var out []*models.Loan
	for _, loan := range f.loans {
		if loan.Status == models.LoanStatusActive || loan.Status == models.LoanStatusOverdue {
			out = append(out, loan)
		}
	}
	return out, nil
}

func (f *fakeLoanRepo) UpdateStatus(ctx context.Context, organizationID, id int, status models.LoanStatus) error {
	loan, ok := f.loans[id]
	if !ok || loan.OrganizationID != organizationID {
		return fmt.Errorf("loan not found")
	}
	loan.Status = status
	f.statuses[id] = status
	return nil
}

type fakeScheduleRepo struct {
	repository.ScheduleRepository
	entries []*models.ScheduleEntry
	updated []*models.ScheduleEntry
}

func (f *fakeScheduleRepo) CreateBatch(ctx context.Context, entries []*models.ScheduleEntry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeScheduleRepo) GetByLoanID(ctx context.Context, organizationID, loanID int) ([]*models.ScheduleEntry, error) {
	var out []*models.ScheduleEntry
	for _, e := range f.entries {
		if e.OrganizationID == organizationID && e.LoanID == loanID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) GetDueBefore(ctx context.Context, date time.Time) ([]*models.ScheduleEntry, error) {
	var out []*models.ScheduleEntry
	for _, e := range f.entries {
		if e.DueDate.Before(date) && !e.IsExtensionPeriod {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	f.updated = append(f.updated, entry)
	return nil
}

func (f *fakeScheduleRepo) DeleteByLoanID(ctx context.Context, organizationID, loanID int) error {
	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.OrganizationID != organizationID || e.LoanID != loanID {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	return nil
}

type fakePaymentRepo struct {
	repository.PaymentRepository
	payments []*models.Payment
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, organizationID, id int) (*models.Payment, error) {
	for _, p := range f.payments {
		if p.OrganizationID == organizationID && p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("payment not found")
}

func (f *fakePaymentRepo) GetByAmountAround(ctx context.Context, organizationID int, amount float64, from, to time.Time) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range f.payments {
		if p.OrganizationID != organizationID || p.Amount != amount {
			continue
		}
		if p.PaymentDate.Before(from) || p.PaymentDate.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeAuditRepo struct {
	repository.AuditRepository
	entries []*models.AuditEntry
}

func (f *fakeAuditRepo) Create(ctx context.Context, entry *models.AuditEntry) (int, error) {
	f.entries = append(f.entries, entry)
	return len(f.entries), nil
}

type fakeImportRepo struct {
	repository.ImportRepository
	batches []*models.ImportBatch
}

func (f *fakeImportRepo) Create(ctx context.Context, batch *models.ImportBatch) error {
	f.batches = append(f.batches, batch)
	return nil
}

type fakeBankTransactionRepo struct {
	repository.BankTransactionRepository
	lines  []*models.BankTransaction
	nextID int
}

func (f *fakeBankTransactionRepo) CreateBatch(ctx context.Context, lines []*models.BankTransaction) error {
	for _, line := range lines {
		f.nextID++
		line.ID = f.nextID
		f.lines = append(f.lines, line)
	}
	return nil
}

func (f *fakeBankTransactionRepo) GetByID(ctx context.Context, organizationID, id int) (*models.BankTransaction, error) {
	for _, line := range f.lines {
		if line.OrganizationID == organizationID && line.ID == id {
			return line, nil
		}
	}
	return nil, fmt.Errorf("bank transaction not found")
}

func (f *fakeBankTransactionRepo) GetByStatus(ctx context.Context, organizationID int, status models.BankTransactionStatus) ([]*models.BankTransaction, error) {
	var out []*models.BankTransaction
	for _, line := range f.lines {
		if line.OrganizationID == organizationID && line.Status == status {
			out = append(out, line)
		}
	}
	return out, nil
}

func (f *fakeBankTransactionRepo) Update(ctx context.Context, line *models.BankTransaction) error {
	for i, existing := range f.lines {
		if existing.ID == line.ID {
			f.lines[i] = line
			return nil
		}
	}
	return fmt.Errorf("bank transaction not found")
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
