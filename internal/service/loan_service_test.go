package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-servicing/internal/loanmath"
	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

func newLoanFixture() (*LoanSvc, *fakeLoanRepo, *fakeScheduleRepo, *fakeBorrowerRepo) {
	loans := newFakeLoanRepo()
	schedules := &fakeScheduleRepo{}
	borrowers := newFakeBorrowerRepo()
	audits := &fakeAuditRepo{}

	repos := &repository.Repository{
		Loan:     loans,
		Schedule: schedules,
		Borrower: borrowers,
		Audit:    audits,
	}
	deps := Dependencies{Repos: repos, Logger: testLogger()}

	return NewLoanService(deps, NewAuditService(deps), nil), loans, schedules, borrowers
}

func TestLoanCreatePersistsSchedule(t *testing.T) {
	svc, loans, schedules, borrowers := newLoanFixture()
	ctx := context.Background()

	_, err := borrowers.Create(ctx, &models.Borrower{OrganizationID: 1, Name: "Acme Ltd"})
	require.NoError(t, err)

	req := &models.LoanRequest{
		BorrowerID:        1,
		Reference:         "L-0001",
		Principal:         100000,
		AnnualRatePercent: 12,
		DurationPeriods:   12,
		InterestType:      loanmath.InterestTypeReducing,
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	id, err := svc.Create(ctx, 1, 7, req)
	require.NoError(t, err)

	loan := loans.loans[id]
	require.NotNil(t, loan)
	assert.Equal(t, models.LoanStatusActive, loan.Status)
	assert.Equal(t, "GBP", loan.CurrencyCode)

	require.Len(t, schedules.entries, 12)

	var principal float64
	for i, entry := range schedules.entries {
		assert.Equal(t, 1, entry.OrganizationID)
		assert.Equal(t, id, entry.LoanID)
		assert.Equal(t, i+1, entry.InstallmentNumber)
		principal += entry.PrincipalAmount
	}
	assert.InDelta(t, 100000, principal, 0.01)
}

func TestLoanCreateRejectsUnknownBorrower(t *testing.T) {
	svc, _, schedules, _ := newLoanFixture()

	req := &models.LoanRequest{
		BorrowerID:        99,
		Principal:         1000,
		AnnualRatePercent: 10,
		DurationPeriods:   6,
		InterestType:      loanmath.InterestTypeFlat,
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := svc.Create(context.Background(), 1, 7, req)
	assert.Error(t, err)
	assert.Empty(t, schedules.entries)
}

func TestLoanCreateRejectsInvalidTerms(t *testing.T) {
	svc, _, _, borrowers := newLoanFixture()
	ctx := context.Background()

	_, err := borrowers.Create(ctx, &models.Borrower{OrganizationID: 1, Name: "Acme Ltd"})
	require.NoError(t, err)

	req := &models.LoanRequest{
		BorrowerID:        1,
		Principal:         -5,
		AnnualRatePercent: 10,
		DurationPeriods:   6,
		InterestType:      loanmath.InterestTypeFlat,
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err = svc.Create(ctx, 1, 7, req)
	assert.Error(t, err)
}

func TestLoanUpdateRegeneratesSchedule(t *testing.T) {
	svc, _, schedules, borrowers := newLoanFixture()
	ctx := context.Background()

	_, err := borrowers.Create(ctx, &models.Borrower{OrganizationID: 1, Name: "Acme Ltd"})
	require.NoError(t, err)

	req := &models.LoanRequest{
		BorrowerID:        1,
		Principal:         60000,
		AnnualRatePercent: 10,
		DurationPeriods:   6,
		InterestType:      loanmath.InterestTypeFlat,
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	id, err := svc.Create(ctx, 1, 7, req)
	require.NoError(t, err)
	require.Len(t, schedules.entries, 6)

	req.DurationPeriods = 12
	require.NoError(t, svc.Update(ctx, 1, 7, id, req))

	assert.Len(t, schedules.entries, 12)
}

func TestLoanUpdatePersistsNewTerms(t *testing.T) {
	svc, loans, _, borrowers := newLoanFixture()
	ctx := context.Background()

	_, err := borrowers.Create(ctx, &models.Borrower{OrganizationID: 1, Name: "Acme Ltd"})
	require.NoError(t, err)

	req := &models.LoanRequest{
		BorrowerID:        1,
		Principal:         60000,
		AnnualRatePercent: 10,
		DurationPeriods:   6,
		InterestType:      loanmath.InterestTypeFlat,
		StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	id, err := svc.Create(ctx, 1, 7, req)
	require.NoError(t, err)
	loans.loans[id].CreditBalance = 250

	req.Principal = 80000
	req.AnnualRatePercent = 11
	require.NoError(t, svc.Update(ctx, 1, 7, id, req))

	updated := loans.loans[id]
	assert.InDelta(t, 80000, updated.Principal, 0.001)
	assert.InDelta(t, 11, updated.AnnualRatePercent, 0.001)
	// The credit balance survives a terms change untouched.
	assert.InDelta(t, 250, updated.CreditBalance, 0.001)
}

func TestSweepOverdueFlagsRowsAndMarksLoans(t *testing.T) {
	svc, loans, schedules, _ := newLoanFixture()
	ctx := context.Background()

	loanID, err := loans.Create(ctx, &models.Loan{
		OrganizationID: 1,
		Status:         models.LoanStatusActive,
	})
	require.NoError(t, err)

	past := time.Now().AddDate(0, 0, -10)
	future := time.Now().AddDate(0, 0, 10)

	schedules.entries = []*models.ScheduleEntry{
		{OrganizationID: 1, LoanID: loanID, InstallmentNumber: 1, DueDate: past, Status: loanmath.RowStatusPending},
		{OrganizationID: 1, LoanID: loanID, InstallmentNumber: 2, DueDate: future, Status: loanmath.RowStatusPending},
	}

	require.NoError(t, svc.SweepOverdue(ctx))

	assert.True(t, schedules.entries[0].IsOverdue)
	assert.False(t, schedules.entries[1].IsOverdue)
	assert.Equal(t, models.LoanStatusOverdue, loans.loans[loanID].Status)

	// A second sweep is a no-op for already flagged rows.
	flagged := len(schedules.updated)
	require.NoError(t, svc.SweepOverdue(ctx))
	assert.Equal(t, flagged, len(schedules.updated))
}

func TestSweepOverdueLeavesRedeemedLoansAlone(t *testing.T) {
	svc, loans, schedules, _ := newLoanFixture()
	ctx := context.Background()

	loanID, err := loans.Create(ctx, &models.Loan{
		OrganizationID: 1,
		Status:         models.LoanStatusRedeemed,
	})
	require.NoError(t, err)

	schedules.entries = []*models.ScheduleEntry{
		{OrganizationID: 1, LoanID: loanID, InstallmentNumber: 1, DueDate: time.Now().AddDate(0, 0, -5), Status: loanmath.RowStatusPending},
	}

	require.NoError(t, svc.SweepOverdue(ctx))

	// A redeemed loan is outside the active set, so neither the loan nor its
	// rows are touched.
	assert.Equal(t, models.LoanStatusRedeemed, loans.loans[loanID].Status)
	assert.False(t, schedules.entries[0].IsOverdue)
	assert.Empty(t, schedules.updated)
}
