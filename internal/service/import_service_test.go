package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

type importFixture struct {
	svc       *ImportSvc
	borrowers *fakeBorrowerRepo
	loans     *fakeLoanRepo
	schedules *fakeScheduleRepo
	imports   *fakeImportRepo
}

func newImportFixture() *importFixture {
	f := &importFixture{
		borrowers: newFakeBorrowerRepo(),
		loans:     newFakeLoanRepo(),
		schedules: &fakeScheduleRepo{},
		imports:   &fakeImportRepo{},
	}

	repos := &repository.Repository{
		Borrower: f.borrowers,
		Loan:     f.loans,
		Schedule: f.schedules,
		Import:   f.imports,
		Audit:    &fakeAuditRepo{},
	}
	deps := Dependencies{Repos: repos, Logger: testLogger()}

	f.svc = NewImportService(deps, NewAuditService(deps))
	return f
}

func TestImportBorrowersCSV(t *testing.T) {
	f := newImportFixture()

	csv := strings.Join([]string{
		"name,email,phone,city",
		"Acme Ltd,ops@acme.example,+44 20 1234 5678,London",
		"Bramble Homes,,,Leeds",
		"X,bad,,", // name too short
	}, "\n")

	result, err := f.svc.ImportBorrowers(context.Background(), 1, 7, "borrowers.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Batch.RowsTotal)
	assert.Equal(t, 2, result.Batch.RowsImported)
	assert.Equal(t, 1, result.Batch.RowsFailed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 4, result.Errors[0].Line)

	assert.Len(t, f.borrowers.borrowers, 2)
	require.Len(t, f.imports.batches, 1)
	assert.Equal(t, models.ImportKindBorrowers, f.imports.batches[0].Kind)
	assert.NotEmpty(t, f.imports.batches[0].ID)
}

func TestImportBorrowersRequiresNameColumn(t *testing.T) {
	f := newImportFixture()

	csv := "email,phone\nops@acme.example,123\n"

	_, err := f.svc.ImportBorrowers(context.Background(), 1, 7, "borrowers.csv", strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
	assert.Empty(t, f.imports.batches)
}

func TestImportLoansCSV(t *testing.T) {
	f := newImportFixture()
	_, err := f.borrowers.Create(context.Background(), &models.Borrower{OrganizationID: 1, Name: "Acme Ltd"})
	require.NoError(t, err)

	csv := strings.Join([]string{
		"borrower_id,reference,principal,annual_rate_percent,duration_periods,interest_type,start_date",
		"1,L-100,100000,12,12,REDUCING,2026-01-01",
		"1,L-101,50000,9.5,6,FLAT,2026-02-01",
		"99,L-102,50000,9.5,6,FLAT,2026-02-01", // unknown borrower
		"1,L-103,botched,9.5,6,FLAT,2026-02-01",
	}, "\n")

	result, err := f.svc.ImportLoans(context.Background(), 1, 7, "loans.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Batch.RowsTotal)
	assert.Equal(t, 2, result.Batch.RowsImported)
	assert.Equal(t, 2, result.Batch.RowsFailed)
	assert.Equal(t, models.ImportKindLoans, result.Batch.Kind)

	assert.Len(t, f.loans.loans, 2)
	// Both imported loans got their schedules generated: 12 + 6 rows.
	assert.Len(t, f.schedules.entries, 18)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"100.50", 100.50, false},
		{" 2500 ", 2500, false},
		{"0.01", 0.01, false},
		{"100.505", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseAmount(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestColumnIndexIsCaseInsensitive(t *testing.T) {
	col, err := columnIndex([]string{"Name", " EMAIL "}, "name", "email")
	require.NoError(t, err)
	assert.Equal(t, 0, col["name"])
	assert.Equal(t, 1, col["email"])
}
