package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

const sampleStatement = `<?xml version="1.0" encoding="UTF-8"?>
<Document xmlns="urn:iso:std:iso:20022:tech:xsd:camt.053.001.02">
  <BkToCstmrStmt>
    <Stmt>
      <Id>STMT-2026-042</Id>
      <Ntry>
        <Amt Ccy="GBP">1250.00</Amt>
        <CdtDbtInd>CRDT</CdtDbtInd>
        <BookgDt><Dt>2026-03-10</Dt></BookgDt>
        <NtryDtls>
          <TxDtls>
            <RltdPties><Dbtr><Nm>Acme Ltd</Nm></Dbtr></RltdPties>
            <RmtInf><Ustrd>LOAN 17 MARCH</Ustrd></RmtInf>
          </TxDtls>
        </NtryDtls>
      </Ntry>
      <Ntry>
        <Amt Ccy="GBP">35.00</Amt>
        <CdtDbtInd>DBIT</CdtDbtInd>
        <BookgDt><Dt>2026-03-11</Dt></BookgDt>
      </Ntry>
    </Stmt>
  </BkToCstmrStmt>
</Document>`

func newReconciliationFixture() (*ReconciliationSvc, *fakeBankTransactionRepo, *fakePaymentRepo) {
	bank := &fakeBankTransactionRepo{}
	payments := &fakePaymentRepo{}

	repos := &repository.Repository{
		BankTransaction: bank,
		Payment:         payments,
		Audit:           &fakeAuditRepo{},
	}
	deps := Dependencies{Repos: repos, Logger: testLogger()}

	return NewReconciliationService(deps, NewAuditService(deps)), bank, payments
}

func TestImportStatementParsesCamt053(t *testing.T) {
	svc, bank, _ := newReconciliationFixture()

	count, err := svc.ImportStatement(context.Background(), 1, 7, strings.NewReader(sampleStatement))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, bank.lines, 2)

	credit := bank.lines[0]
	assert.Equal(t, "STMT-2026-042", credit.StatementID)
	assert.Equal(t, 1250.00, credit.Amount)
	assert.Equal(t, "GBP", credit.CurrencyCode)
	assert.True(t, credit.IsCredit)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), credit.BookingDate)
	assert.Equal(t, "Acme Ltd", credit.CounterpartyName)
	assert.Equal(t, "LOAN 17 MARCH", credit.NarrativeRef)
	assert.Equal(t, models.BankTransactionUnmatched, credit.Status)

	debit := bank.lines[1]
	assert.False(t, debit.IsCredit)
	assert.Empty(t, debit.CounterpartyName)
}

func TestImportStatementRejectsEmptyDocument(t *testing.T) {
	svc, _, _ := newReconciliationFixture()

	_, err := svc.ImportStatement(context.Background(), 1, 7, strings.NewReader("<Document></Document>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no statement")
}

func TestSuggestMatches(t *testing.T) {
	svc, bank, payments := newReconciliationFixture()

	bookingDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, bank.CreateBatch(context.Background(), []*models.BankTransaction{
		{OrganizationID: 1, Amount: 1250.00, IsCredit: true, BookingDate: bookingDate, Status: models.BankTransactionUnmatched},
		{OrganizationID: 1, Amount: 35.00, IsCredit: false, BookingDate: bookingDate, Status: models.BankTransactionUnmatched},
	}))

	payments.payments = []*models.Payment{
		{ID: 11, OrganizationID: 1, LoanID: 17, Amount: 1250.00, PaymentDate: bookingDate.AddDate(0, 0, -2)},
		{ID: 12, OrganizationID: 1, LoanID: 18, Amount: 1250.00, PaymentDate: bookingDate.AddDate(0, 0, 30)},
	}

	suggestions, err := svc.SuggestMatches(context.Background(), 1)
	require.NoError(t, err)

	// The debit line and the out-of-window payment produce nothing.
	require.Len(t, suggestions, 1)
	assert.Equal(t, 11, suggestions[0].Payment.ID)
	assert.Equal(t, 2, suggestions[0].DaysApart)
}

func TestConfirmMatch(t *testing.T) {
	svc, bank, payments := newReconciliationFixture()

	bookingDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, bank.CreateBatch(context.Background(), []*models.BankTransaction{
		{OrganizationID: 1, Amount: 1250.00, IsCredit: true, BookingDate: bookingDate, Status: models.BankTransactionUnmatched},
	}))
	payments.payments = []*models.Payment{
		{ID: 11, OrganizationID: 1, LoanID: 17, Amount: 1250.00, PaymentDate: bookingDate},
	}

	confirmation := &models.MatchConfirmation{BankTransactionID: bank.lines[0].ID, PaymentID: 11}
	require.NoError(t, svc.ConfirmMatch(context.Background(), 1, 7, confirmation))

	line := bank.lines[0]
	assert.Equal(t, models.BankTransactionMatched, line.Status)
	require.NotNil(t, line.MatchedPaymentID)
	assert.Equal(t, 11, *line.MatchedPaymentID)

	err := svc.ConfirmMatch(context.Background(), 1, 7, confirmation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already matched")
}

func TestIgnoreClearsMatch(t *testing.T) {
	svc, bank, _ := newReconciliationFixture()

	paymentID := 11
	require.NoError(t, bank.CreateBatch(context.Background(), []*models.BankTransaction{
		{OrganizationID: 1, Amount: 35.00, BookingDate: time.Now(), Status: models.BankTransactionUnmatched, MatchedPaymentID: &paymentID},
	}))

	require.NoError(t, svc.Ignore(context.Background(), 1, 7, bank.lines[0].ID))
	assert.Equal(t, models.BankTransactionIgnored, bank.lines[0].Status)
	assert.Nil(t, bank.lines[0].MatchedPaymentID)
}
