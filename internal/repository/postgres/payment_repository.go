package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"loan-servicing/internal/models"
)

const paymentColumns = `id, organization_id, loan_id, reference, amount, payment_date, method,
             manual_split, interest_amount, principal_amount, overpayment_option,
             credit_amount, principal_reduction, notes, created_at`

// PaymentRepo is a PostgreSQL implementation of the
// repository.PaymentRepository interface
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepository creates a new PaymentRepo
func NewPaymentRepository(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

func scanPayment(row interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	payment := &models.Payment{}
	err := row.Scan(
		&payment.ID,
		&payment.OrganizationID,
		&payment.LoanID,
		&payment.Reference,
		&payment.Amount,
		&payment.PaymentDate,
		&payment.Method,
		&payment.ManualSplit,
		&payment.InterestAmount,
		&payment.PrincipalAmount,
		&payment.OverpaymentOption,
		&payment.CreditAmount,
		&payment.PrincipalReduction,
		&payment.Notes,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// GetByID gets a payment by ID within an organization
func (r *PaymentRepo) GetByID(ctx context.Context, organizationID, id int) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE organization_id = $1 AND id = $2`

	payment, err := scanPayment(r.db.QueryRowContext(ctx, query, organizationID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// GetByLoanID gets all payments for a loan, newest first
func (r *PaymentRepo) GetByLoanID(ctx context.Context, organizationID, loanID int) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
             WHERE organization_id = $1 AND loan_id = $2 ORDER BY payment_date DESC, id DESC`

	return r.queryPayments(ctx, query, organizationID, loanID)
}

// GetByOrganization gets all payments for an organization, newest first
func (r *PaymentRepo) GetByOrganization(ctx context.Context, organizationID int) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
             WHERE organization_id = $1 ORDER BY payment_date DESC, id DESC`

	return r.queryPayments(ctx, query, organizationID)
}

// GetByAmountAround gets payments of an exact amount dated within a window;
// bank reconciliation uses it to suggest matches.
func (r *PaymentRepo) GetByAmountAround(ctx context.Context, organizationID int, amount float64, from, to time.Time) ([]*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
             WHERE organization_id = $1 AND amount = $2 AND payment_date BETWEEN $3 AND $4
             ORDER BY payment_date`

	return r.queryPayments(ctx, query, organizationID, amount, from, to)
}

func (r *PaymentRepo) queryPayments(ctx context.Context, query string, args ...interface{}) ([]*models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return payments, nil
}

// CreateTx creates a payment within a transaction, alongside the schedule
// updates it produced
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, payment *models.Payment) (int, error) {
	query := `INSERT INTO payments (organization_id, loan_id, reference, amount, payment_date,
             method, manual_split, interest_amount, principal_amount, overpayment_option,
             credit_amount, principal_reduction, notes)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`

	var id int
	err := tx.QueryRowContext(
		ctx,
		query,
		payment.OrganizationID,
		payment.LoanID,
		payment.Reference,
		payment.Amount,
		payment.PaymentDate,
		payment.Method,
		payment.ManualSplit,
		payment.InterestAmount,
		payment.PrincipalAmount,
		payment.OverpaymentOption,
		payment.CreditAmount,
		payment.PrincipalReduction,
		payment.Notes,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create payment: %w", err)
	}

	return id, nil
}
