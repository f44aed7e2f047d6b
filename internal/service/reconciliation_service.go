package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

// matchWindowDays is how far apart a statement line and a payment may be
// dated and still be suggested as the same money.
const matchWindowDays = 5

// ReconciliationSvc is an implementation of the
// service.ReconciliationService interface. Statements are expected in the
// ISO 20022 camt.053 format.
type ReconciliationSvc struct {
	repos  *repository.Repository
	logger *logrus.Logger
	audit  AuditService
}

// NewReconciliationService creates a new ReconciliationSvc
func NewReconciliationService(deps Dependencies, audit AuditService) *ReconciliationSvc {
	return &ReconciliationSvc{
		repos:  deps.Repos,
		logger: deps.Logger,
		audit:  audit,
	}
}

// ImportStatement parses a camt.053 bank statement and stores its entries as
// unmatched transactions. Returns the number of lines imported.
func (s *ReconciliationSvc) ImportStatement(ctx context.Context, organizationID, userID int, r io.Reader) (int, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return 0, fmt.Errorf("failed to parse statement XML: %w", err)
	}

	stmt := doc.FindElement("//BkToCstmrStmt/Stmt")
	if stmt == nil {
		return 0, errors.New("no statement found in document")
	}

	statementID := ""
	if idElem := stmt.FindElement("Id"); idElem != nil {
		statementID = idElem.Text()
	}

	var lines []*models.BankTransaction
	for i, entry := range stmt.FindElements("Ntry") {
		line, err := parseStatementEntry(entry, organizationID, statementID)
		if err != nil {
			return 0, fmt.Errorf("failed to parse statement entry %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return 0, errors.New("statement contains no entries")
	}

	if err := s.repos.BankTransaction.CreateBatch(ctx, lines); err != nil {
		return 0, fmt.Errorf("failed to store statement lines: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "bank_statement", 0, models.AuditActionImport,
		fmt.Sprintf("%s: %d lines", statementID, len(lines)))
	s.logger.Infof("Statement %s imported: %d lines", statementID, len(lines))

	return len(lines), nil
}

// parseStatementEntry reads one Ntry element into a bank transaction
func parseStatementEntry(entry *etree.Element, organizationID int, statementID string) (*models.BankTransaction, error) {
	amtElem := entry.FindElement("Amt")
	if amtElem == nil {
		return nil, errors.New("entry has no amount")
	}

	amount, err := decimal.NewFromString(amtElem.Text())
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amtElem.Text(), err)
	}

	cdtDbt := entry.FindElement("CdtDbtInd")
	if cdtDbt == nil {
		return nil, errors.New("entry has no credit/debit indicator")
	}

	bookgDt := entry.FindElement("BookgDt/Dt")
	if bookgDt == nil {
		return nil, errors.New("entry has no booking date")
	}
	bookingDate, err := time.Parse("2006-01-02", bookgDt.Text())
	if err != nil {
		return nil, fmt.Errorf("invalid booking date %q: %w", bookgDt.Text(), err)
	}

	line := &models.BankTransaction{
		OrganizationID: organizationID,
		StatementID:    statementID,
		BookingDate:    bookingDate,
		IsCredit:       cdtDbt.Text() == "CRDT",
		Status:         models.BankTransactionUnmatched,
	}
	line.Amount, _ = amount.Float64()

	if ccy := amtElem.SelectAttrValue("Ccy", ""); ccy != "" {
		line.CurrencyCode = ccy
	}
	if name := entry.FindElement("NtryDtls/TxDtls/RltdPties/Dbtr/Nm"); name != nil {
		line.CounterpartyName = name.Text()
	}
	if ref := entry.FindElement("NtryDtls/TxDtls/RmtInf/Ustrd"); ref != nil {
		line.NarrativeRef = ref.Text()
	}

	return line, nil
}

// GetUnmatched gets statement lines awaiting reconciliation
func (s *ReconciliationSvc) GetUnmatched(ctx context.Context, organizationID int) ([]*models.BankTransaction, error) {
	return s.repos.BankTransaction.GetByStatus(ctx, organizationID, models.BankTransactionUnmatched)
}

// SuggestMatches pairs unmatched credit lines with recorded payments of the
// same amount dated within the match window. Amounts are compared exactly.
func (s *ReconciliationSvc) SuggestMatches(ctx context.Context, organizationID int) ([]*models.MatchSuggestion, error) {
	lines, err := s.repos.BankTransaction.GetByStatus(ctx, organizationID, models.BankTransactionUnmatched)
	if err != nil {
		return nil, fmt.Errorf("failed to get unmatched lines: %w", err)
	}

	var suggestions []*models.MatchSuggestion
	for _, line := range lines {
		if !line.IsCredit {
			continue
		}

		from := line.BookingDate.AddDate(0, 0, -matchWindowDays)
		to := line.BookingDate.AddDate(0, 0, matchWindowDays)

		payments, err := s.repos.Payment.GetByAmountAround(ctx, organizationID, line.Amount, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to find candidate payments: %w", err)
		}

		lineAmount := decimal.NewFromFloat(line.Amount)
		for _, payment := range payments {
			if !decimal.NewFromFloat(payment.Amount).Equal(lineAmount) {
				continue
			}
			daysApart := int(line.BookingDate.Sub(payment.PaymentDate).Hours() / 24)
			if daysApart < 0 {
				daysApart = -daysApart
			}
			suggestions = append(suggestions, &models.MatchSuggestion{
				BankTransaction: line,
				Payment:         payment,
				DaysApart:       daysApart,
			})
		}
	}

	return suggestions, nil
}

// ConfirmMatch records an operator-confirmed match between a statement line
// and a payment
func (s *ReconciliationSvc) ConfirmMatch(ctx context.Context, organizationID, userID int, confirmation *models.MatchConfirmation) error {
	line, err := s.repos.BankTransaction.GetByID(ctx, organizationID, confirmation.BankTransactionID)
	if err != nil {
		return fmt.Errorf("failed to get bank transaction: %w", err)
	}

	if line.Status == models.BankTransactionMatched {
		return errors.New("bank transaction is already matched")
	}

	payment, err := s.repos.Payment.GetByID(ctx, organizationID, confirmation.PaymentID)
	if err != nil {
		return fmt.Errorf("failed to get payment: %w", err)
	}

	line.Status = models.BankTransactionMatched
	line.MatchedPaymentID = &payment.ID

	if err := s.repos.BankTransaction.Update(ctx, line); err != nil {
		return fmt.Errorf("failed to update bank transaction: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "bank_transaction", line.ID, models.AuditActionUpdate,
		fmt.Sprintf("matched to payment %d", payment.ID))

	return nil
}

// Ignore marks a statement line as irrelevant to loan servicing
func (s *ReconciliationSvc) Ignore(ctx context.Context, organizationID, userID, bankTransactionID int) error {
	line, err := s.repos.BankTransaction.GetByID(ctx, organizationID, bankTransactionID)
	if err != nil {
		return fmt.Errorf("failed to get bank transaction: %w", err)
	}

	line.Status = models.BankTransactionIgnored
	line.MatchedPaymentID = nil

	if err := s.repos.BankTransaction.Update(ctx, line); err != nil {
		return fmt.Errorf("failed to update bank transaction: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "bank_transaction", line.ID, models.AuditActionUpdate, "ignored")

	return nil
}
