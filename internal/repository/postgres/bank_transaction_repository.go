package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"loan-servicing/internal/models"
)

const bankTransactionColumns = `id, organization_id, statement_id, booking_date, amount,
             currency_code, is_credit, counterparty_name, narrative_ref, status,
             matched_payment_id, created_at, updated_at`

// BankTransactionRepo is a PostgreSQL implementation of the
// repository.BankTransactionRepository interface
type BankTransactionRepo struct {
	db *sql.DB
}

// NewBankTransactionRepository creates a new BankTransactionRepo
func NewBankTransactionRepository(db *sql.DB) *BankTransactionRepo {
	return &BankTransactionRepo{db: db}
}

func scanBankTransaction(row interface{ Scan(...interface{}) error }) (*models.BankTransaction, error) {
	line := &models.BankTransaction{}
	err := row.Scan(
		&line.ID,
		&line.OrganizationID,
		&line.StatementID,
		&line.BookingDate,
		&line.Amount,
		&line.CurrencyCode,
		&line.IsCredit,
		&line.CounterpartyName,
		&line.NarrativeRef,
		&line.Status,
		&line.MatchedPaymentID,
		&line.CreatedAt,
		&line.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return line, nil
}

// CreateBatch inserts all lines of a parsed statement in a single statement
func (r *BankTransactionRepo) CreateBatch(ctx context.Context, lines []*models.BankTransaction) error {
	if len(lines) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(lines))
	valueArgs := make([]interface{}, 0, len(lines)*9)

	for i, line := range lines {
		base := i * 9
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		valueArgs = append(valueArgs,
			line.OrganizationID,
			line.StatementID,
			line.BookingDate,
			line.Amount,
			line.CurrencyCode,
			line.IsCredit,
			line.CounterpartyName,
			line.NarrativeRef,
			line.Status,
		)
	}

	query := fmt.Sprintf(`INSERT INTO bank_transactions (organization_id, statement_id, booking_date,
             amount, currency_code, is_credit, counterparty_name, narrative_ref, status)
             VALUES %s`, strings.Join(valueStrings, ", "))

	_, err := r.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		return fmt.Errorf("failed to create bank transactions: %w", err)
	}

	return nil
}

// GetByID gets a statement line by ID within an organization
func (r *BankTransactionRepo) GetByID(ctx context.Context, organizationID, id int) (*models.BankTransaction, error) {
	query := `SELECT ` + bankTransactionColumns + ` FROM bank_transactions
             WHERE organization_id = $1 AND id = $2`

	line, err := scanBankTransaction(r.db.QueryRowContext(ctx, query, organizationID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bank transaction not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get bank transaction: %w", err)
	}

	return line, nil
}

// GetByStatus gets statement lines in a given reconciliation state
func (r *BankTransactionRepo) GetByStatus(ctx context.Context, organizationID int, status models.BankTransactionStatus) ([]*models.BankTransaction, error) {
	query := `SELECT ` + bankTransactionColumns + ` FROM bank_transactions
             WHERE organization_id = $1 AND status = $2 ORDER BY booking_date, id`

	rows, err := r.db.QueryContext(ctx, query, organizationID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get bank transactions: %w", err)
	}
	defer rows.Close()

	var lines []*models.BankTransaction
	for rows.Next() {
		line, err := scanBankTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank transaction: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}

// Update updates a statement line's reconciliation state
func (r *BankTransactionRepo) Update(ctx context.Context, line *models.BankTransaction) error {
	query := `UPDATE bank_transactions SET status = $1, matched_payment_id = $2, updated_at = NOW()
             WHERE organization_id = $3 AND id = $4`

	result, err := r.db.ExecContext(
		ctx,
		query,
		line.Status,
		line.MatchedPaymentID,
		line.OrganizationID,
		line.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bank transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("bank transaction not found")
	}

	return nil
}
