package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"loan-servicing/internal/models"
)

const loanColumns = `id, organization_id, borrower_id, reference, principal, annual_rate_percent,
             duration_periods, interest_type, period, start_date, interest_only_periods,
             interest_alignment, interest_paid_in_advance, extend_for_full_period,
             has_penalty_rate, penalty_rate_percent, penalty_rate_effective_from,
             status, credit_balance, currency_code, created_at, updated_at`

// LoanRepo is a PostgreSQL implementation of the
// repository.LoanRepository interface
type LoanRepo struct {
	db *sql.DB
}

// NewLoanRepository creates a new LoanRepo
func NewLoanRepository(db *sql.DB) *LoanRepo {
	return &LoanRepo{db: db}
}

func scanLoan(row interface{ Scan(...interface{}) error }) (*models.Loan, error) {
	loan := &models.Loan{}
	err := row.Scan(
		&loan.ID,
		&loan.OrganizationID,
		&loan.BorrowerID,
		&loan.Reference,
		&loan.Principal,
		&loan.AnnualRatePercent,
		&loan.DurationPeriods,
		&loan.InterestType,
		&loan.Period,
		&loan.StartDate,
		&loan.InterestOnlyPeriods,
		&loan.InterestAlignment,
		&loan.InterestPaidInAdvance,
		&loan.ExtendForFullPeriod,
		&loan.HasPenaltyRate,
		&loan.PenaltyRatePercent,
		&loan.PenaltyRateEffectiveFrom,
		&loan.Status,
		&loan.CreditBalance,
		&loan.CurrencyCode,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Create creates a new loan in the database
func (r *LoanRepo) Create(ctx context.Context, loan *models.Loan) (int, error) {
	query := `INSERT INTO loans (organization_id, borrower_id, reference, principal,
             annual_rate_percent, duration_periods, interest_type, period, start_date,
             interest_only_periods, interest_alignment, interest_paid_in_advance,
             extend_for_full_period, has_penalty_rate, penalty_rate_percent,
             penalty_rate_effective_from, status, credit_balance, currency_code)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
             RETURNING id`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		loan.OrganizationID,
		loan.BorrowerID,
		loan.Reference,
		loan.Principal,
		loan.AnnualRatePercent,
		loan.DurationPeriods,
		loan.InterestType,
		loan.Period,
		loan.StartDate,
		loan.InterestOnlyPeriods,
		loan.InterestAlignment,
		loan.InterestPaidInAdvance,
		loan.ExtendForFullPeriod,
		loan.HasPenaltyRate,
		loan.PenaltyRatePercent,
		loan.PenaltyRateEffectiveFrom,
		loan.Status,
		loan.CreditBalance,
		loan.CurrencyCode,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create loan: %w", err)
	}

	return id, nil
}

// GetByID gets a loan by ID within an organization
func (r *LoanRepo) GetByID(ctx context.Context, organizationID, id int) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE organization_id = $1 AND id = $2`

	loan, err := scanLoan(r.db.QueryRowContext(ctx, query, organizationID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loan not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return loan, nil
}

// GetForUpdateTx gets a loan by ID and locks its row for the duration of the
// transaction. Payment allocation serializes on this lock so two concurrent
// payments cannot allocate against the same schedule snapshot.
func (r *LoanRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, organizationID, id int) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE organization_id = $1 AND id = $2 FOR UPDATE`

	loan, err := scanLoan(tx.QueryRowContext(ctx, query, organizationID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("loan not found: %w", err)
		}
		return nil, fmt.Errorf("failed to lock loan: %w", err)
	}

	return loan, nil
}

// GetByOrganization gets all loans for an organization
func (r *LoanRepo) GetByOrganization(ctx context.Context, organizationID int) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE organization_id = $1 ORDER BY start_date DESC, id DESC`

	return r.queryLoans(ctx, query, organizationID)
}

// GetByBorrower gets all loans for a borrower within an organization
func (r *LoanRepo) GetByBorrower(ctx context.Context, organizationID, borrowerID int) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
             WHERE organization_id = $1 AND borrower_id = $2 ORDER BY start_date DESC, id DESC`

	return r.queryLoans(ctx, query, organizationID, borrowerID)
}

// GetActiveLoans gets accruing loans across all organizations for the
// overdue sweep
func (r *LoanRepo) GetActiveLoans(ctx context.Context) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status IN ($1, $2) ORDER BY id`

	return r.queryLoans(ctx, query, models.LoanStatusActive, models.LoanStatusOverdue)
}

func (r *LoanRepo) queryLoans(ctx context.Context, query string, args ...interface{}) ([]*models.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return loans, nil
}

// Update updates loan terms and status
func (r *LoanRepo) Update(ctx context.Context, loan *models.Loan) error {
	query := `UPDATE loans SET borrower_id = $1, reference = $2, principal = $3,
             annual_rate_percent = $4, duration_periods = $5, interest_type = $6, period = $7,
             start_date = $8, interest_only_periods = $9, interest_alignment = $10,
             interest_paid_in_advance = $11, extend_for_full_period = $12, has_penalty_rate = $13,
             penalty_rate_percent = $14, penalty_rate_effective_from = $15, status = $16,
             currency_code = $17, updated_at = NOW()
             WHERE organization_id = $18 AND id = $19`

	result, err := r.db.ExecContext(
		ctx,
		query,
		loan.BorrowerID,
		loan.Reference,
		loan.Principal,
		loan.AnnualRatePercent,
		loan.DurationPeriods,
		loan.InterestType,
		loan.Period,
		loan.StartDate,
		loan.InterestOnlyPeriods,
		loan.InterestAlignment,
		loan.InterestPaidInAdvance,
		loan.ExtendForFullPeriod,
		loan.HasPenaltyRate,
		loan.PenaltyRatePercent,
		loan.PenaltyRateEffectiveFrom,
		loan.Status,
		loan.CurrencyCode,
		loan.OrganizationID,
		loan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("loan not found")
	}

	return nil
}

// UpdateStatus updates only the loan status
func (r *LoanRepo) UpdateStatus(ctx context.Context, organizationID, id int, status models.LoanStatus) error {
	query := `UPDATE loans SET status = $1, updated_at = NOW() WHERE organization_id = $2 AND id = $3`

	result, err := r.db.ExecContext(ctx, query, status, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to update loan status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("loan not found")
	}

	return nil
}

// Delete removes a loan within an organization
func (r *LoanRepo) Delete(ctx context.Context, organizationID, id int) error {
	query := `DELETE FROM loans WHERE organization_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("loan not found")
	}

	return nil
}

// UpdateCreditBalanceTx updates the loan credit balance within a transaction
func (r *LoanRepo) UpdateCreditBalanceTx(ctx context.Context, tx *sql.Tx, organizationID, id int, creditBalance float64) error {
	query := `UPDATE loans SET credit_balance = $1, updated_at = NOW() WHERE organization_id = $2 AND id = $3`

	result, err := tx.ExecContext(ctx, query, creditBalance, organizationID, id)
	if err != nil {
		return fmt.Errorf("failed to update credit balance: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("loan not found")
	}

	return nil
}
