package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"loan-servicing/internal/loanmath"
	"loan-servicing/internal/models"
	"loan-servicing/internal/repository"
)

// ImportSvc is an implementation of the service.ImportService interface
type ImportSvc struct {
	repos    *repository.Repository
	logger   *logrus.Logger
	audit    AuditService
	loans    LoanService
	payments PaymentService
}

// NewImportService creates a new ImportSvc
func NewImportService(deps Dependencies, audit AuditService) *ImportSvc {
	return &ImportSvc{
		repos:    deps.Repos,
		logger:   deps.Logger,
		audit:    audit,
		loans:    NewLoanService(deps, audit, nil),
		payments: NewPaymentService(deps, audit),
	}
}

// ImportBorrowers imports borrowers from a CSV file with a header row of
// name, email, phone, address_line1, address_line2, city, postcode,
// company_number, notes. Rows that fail validation are reported and skipped.
func (s *ImportSvc) ImportBorrowers(ctx context.Context, organizationID, userID int, fileName string, r io.Reader) (*models.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col, err := columnIndex(header, "name")
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{
		Batch: &models.ImportBatch{
			ID:             uuid.NewString(),
			OrganizationID: organizationID,
			Kind:           models.ImportKindBorrowers,
			FileName:       fileName,
			CreatedBy:      userID,
		},
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Batch.RowsTotal++
			result.Batch.RowsFailed++
			result.Errors = append(result.Errors, models.ImportRowError{Line: line, Message: err.Error()})
			continue
		}

		result.Batch.RowsTotal++

		req := &models.BorrowerRequest{
			Name:          field(record, col, "name"),
			Email:         field(record, col, "email"),
			Phone:         field(record, col, "phone"),
			AddressLine1:  field(record, col, "address_line1"),
			AddressLine2:  field(record, col, "address_line2"),
			City:          field(record, col, "city"),
			Postcode:      field(record, col, "postcode"),
			CompanyNumber: field(record, col, "company_number"),
			Notes:         field(record, col, "notes"),
		}

		if err := req.ValidateBorrowerRequest(); err != nil {
			result.Batch.RowsFailed++
			result.Errors = append(result.Errors, models.ImportRowError{Line: line, Message: err.Error()})
			continue
		}

		if _, err := s.repos.Borrower.Create(ctx, req.ToBorrower(organizationID)); err != nil {
			result.Batch.RowsFailed++
			result.Errors = append(result.Errors, models.ImportRowError{Line: line, Message: err.Error()})
			continue
		}

		result.Batch.RowsImported++
	}

	return s.finishBatch(ctx, organizationID, userID, result)
}

// ImportLoans imports loans from a CSV file with a header row of borrower_id,
// principal, annual_rate_percent, duration_periods, interest_type, start_date,
// plus optional reference, period, interest_only_periods, interest_alignment,
// currency_code. Every imported loan gets its repayment schedule generated.
func (s *ImportSvc) ImportLoans(ctx context.Context, organizationID, userID int, fileName string, r io.Reader) (*models.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col, err := columnIndex(header, "borrower_id", "principal", "annual_rate_percent", "duration_periods", "interest_type", "start_date")
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{
		Batch: &models.ImportBatch{
			ID:             uuid.NewString(),
			OrganizationID: organizationID,
			Kind:           models.ImportKindLoans,
			FileName:       fileName,
			CreatedBy:      userID,
		},
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Batch.RowsTotal++
			result.Batch.RowsFailed++
			result.Errors = append(result.Errors, models.ImportRowError{Line: line, Message: err.Error()})
			continue
		}

		result.Batch.RowsTotal++

		rowErr := s.importLoanRow(ctx, organizationID, userID, record, col)
		if rowErr != nil {
			result.Batch.RowsFailed++
			result.Errors = append(result.Errors, models.ImportRowError{Line: line, Message: rowErr.Error()})
			continue
		}

		result.Batch.RowsImported++
	}

	return s.finishBatch(ctx, organizationID, userID, result)
}

func (s *ImportSvc) importLoanRow(ctx context.Context, organizationID, userID int, record []string, col map[string]int) error {
	borrowerID, err := strconv.Atoi(field(record, col, "borrower_id"))
	if err != nil {
		return fmt.Errorf("invalid borrower_id: %w", err)
	}

	principal, err := parseAmount(field(record, col, "principal"))
	if err != nil {
		return err
	}

	rate, err := strconv.ParseFloat(field(record, col, "annual_rate_percent"), 64)
	if err != nil {
		return fmt.Errorf("invalid annual_rate_percent: %w", err)
	}

	duration, err := strconv.Atoi(field(record, col, "duration_periods"))
	if err != nil {
		return fmt.Errorf("invalid duration_periods: %w", err)
	}

	startDate, err := time.Parse("2006-01-02", field(record, col, "start_date"))
	if err != nil {
		return fmt.Errorf("invalid start_date: %w", err)
	}

	req := &models.LoanRequest{
		BorrowerID:        borrowerID,
		Reference:         field(record, col, "reference"),
		Principal:         principal,
		AnnualRatePercent: rate,
		DurationPeriods:   duration,
		InterestType:      loanmath.InterestType(strings.ToUpper(field(record, col, "interest_type"))),
		Period:            loanmath.PeriodUnit(strings.ToUpper(field(record, col, "period"))),
		StartDate:         startDate,
		CurrencyCode:      strings.ToUpper(field(record, col, "currency_code")),
	}
	if raw := field(record, col, "interest_only_periods"); raw != "" {
		req.InterestOnlyPeriods, err = strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid interest_only_periods: %w", err)
		}
	}
	if raw := field(record, col, "interest_alignment"); raw != "" {
		req.InterestAlignment = loanmath.InterestAlignment(strings.ToUpper(raw))
	}

	if _, err := s.loans.Create(ctx, organizationID, userID, req); err != nil {
		return err
	}

	return nil
}

// ImportPayments imports historical payments from a CSV file with a header
// row of loan_id, amount, payment_date, method, notes. Amounts are parsed as
// exact decimals and rejected when they carry more than two decimal places.
// Each imported payment goes through the normal waterfall allocation.
func (s *ImportSvc) ImportPayments(ctx context.Context, organizationID, userID int, fileName string, r io.Reader) (*models.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col, err := columnIndex(header, "loan_id", "amount", "payment_date")
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{
		Batch: &models.ImportBatch{
			ID:             uuid.NewString(),
			OrganizationID: organizationID,
			Kind:           models.ImportKindPayments,
			FileName:       fileName,
			CreatedBy:      userID,
		},
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Batch.RowsTotal++
			result.Batch.RowsFailed++
			result.Errors = append(result.Errors, models.ImportRowError{Line: line, Message: err.Error()})
			continue
		}

		result.Batch.RowsTotal++

		rowErr := s.importPaymentRow(ctx, organizationID, userID, record, col)
		if rowErr != nil {
			result.Batch.RowsFailed++
			result.Errors = append(result.Errors, models.ImportRowError{Line: line, Message: rowErr.Error()})
			continue
		}

		result.Batch.RowsImported++
	}

	return s.finishBatch(ctx, organizationID, userID, result)
}

func (s *ImportSvc) importPaymentRow(ctx context.Context, organizationID, userID int, record []string, col map[string]int) error {
	loanID, err := strconv.Atoi(field(record, col, "loan_id"))
	if err != nil {
		return fmt.Errorf("invalid loan_id: %w", err)
	}

	amount, err := parseAmount(field(record, col, "amount"))
	if err != nil {
		return err
	}

	paymentDate, err := time.Parse("2006-01-02", field(record, col, "payment_date"))
	if err != nil {
		return fmt.Errorf("invalid payment_date: %w", err)
	}

	method := models.PaymentMethod(strings.ToUpper(field(record, col, "method")))

	req := &models.PaymentRequest{
		Amount:      amount,
		PaymentDate: paymentDate,
		Method:      method,
		Notes:       field(record, col, "notes"),
	}
	if err := req.ValidatePaymentRequest(); err != nil {
		return err
	}

	if _, err := s.payments.Apply(ctx, organizationID, userID, loanID, req); err != nil {
		return err
	}

	return nil
}

// GetBatches gets import batches for an organization
func (s *ImportSvc) GetBatches(ctx context.Context, organizationID int) ([]*models.ImportBatch, error) {
	return s.repos.Import.GetByOrganization(ctx, organizationID)
}

func (s *ImportSvc) finishBatch(ctx context.Context, organizationID, userID int, result *models.ImportResult) (*models.ImportResult, error) {
	if err := s.repos.Import.Create(ctx, result.Batch); err != nil {
		return nil, fmt.Errorf("failed to record import batch: %w", err)
	}

	s.audit.Record(ctx, organizationID, userID, "import", 0, models.AuditActionImport,
		fmt.Sprintf("%s %s: %d of %d rows", result.Batch.Kind, result.Batch.FileName,
			result.Batch.RowsImported, result.Batch.RowsTotal))
	s.logger.Infof("Import %s finished: %d imported, %d failed",
		result.Batch.ID, result.Batch.RowsImported, result.Batch.RowsFailed)

	return result, nil
}

// parseAmount parses a monetary amount exactly, rejecting values with more
// than two decimal places rather than silently rounding them.
func parseAmount(raw string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", raw)
	}
	f, _ := d.Float64()
	return f, nil
}

// columnIndex maps header names to their positions and verifies the required
// columns are present
func columnIndex(header []string, required ...string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return col, nil
}

// field returns the record value for a named column, or empty when the
// column is absent
func field(record []string, col map[string]int, name string) string {
	idx, ok := col[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
