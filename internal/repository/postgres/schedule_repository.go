package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"loan-servicing/internal/loanmath"
	"loan-servicing/internal/models"
)

const scheduleColumns = `id, organization_id, loan_id, installment_number, due_date,
             principal_amount, interest_amount, total_due, running_balance,
             principal_paid, interest_paid, status, is_extension_period, is_overdue,
             created_at, updated_at`

// ScheduleRepo is a PostgreSQL implementation of the
// repository.ScheduleRepository interface
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepository creates a new ScheduleRepo
func NewScheduleRepository(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

func scanScheduleEntry(row interface{ Scan(...interface{}) error }) (*models.ScheduleEntry, error) {
	entry := &models.ScheduleEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.OrganizationID,
		&entry.LoanID,
		&entry.InstallmentNumber,
		&entry.DueDate,
		&entry.PrincipalAmount,
		&entry.InterestAmount,
		&entry.TotalDue,
		&entry.RunningBalance,
		&entry.PrincipalPaid,
		&entry.InterestPaid,
		&entry.Status,
		&entry.IsExtensionPeriod,
		&entry.IsOverdue,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CreateBatch inserts a full schedule in a single statement
func (r *ScheduleRepo) CreateBatch(ctx context.Context, entries []*models.ScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(entries))
	valueArgs := make([]interface{}, 0, len(entries)*13)

	for i, entry := range entries {
		base := i * 13
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13,
		))
		valueArgs = append(valueArgs,
			entry.OrganizationID,
			entry.LoanID,
			entry.InstallmentNumber,
			entry.DueDate,
			entry.PrincipalAmount,
			entry.InterestAmount,
			entry.TotalDue,
			entry.RunningBalance,
			entry.PrincipalPaid,
			entry.InterestPaid,
			entry.Status,
			entry.IsExtensionPeriod,
			entry.IsOverdue,
		)
	}

	query := fmt.Sprintf(`INSERT INTO schedule_entries (organization_id, loan_id, installment_number,
             due_date, principal_amount, interest_amount, total_due, running_balance,
             principal_paid, interest_paid, status, is_extension_period, is_overdue)
             VALUES %s`, strings.Join(valueStrings, ", "))

	_, err := r.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		return fmt.Errorf("failed to create schedule entries: %w", err)
	}

	return nil
}

// GetByLoanID gets the schedule for a loan ordered by installment number
func (r *ScheduleRepo) GetByLoanID(ctx context.Context, organizationID, loanID int) ([]*models.ScheduleEntry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule_entries
             WHERE organization_id = $1 AND loan_id = $2 ORDER BY installment_number`

	return r.queryEntries(ctx, query, organizationID, loanID)
}

// GetDueBefore gets unpaid non-extension rows due strictly before the given
// date, across all organizations; the overdue sweep uses it.
func (r *ScheduleRepo) GetDueBefore(ctx context.Context, date time.Time) ([]*models.ScheduleEntry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule_entries
             WHERE due_date < $1 AND status != $2 AND is_extension_period = FALSE
             ORDER BY organization_id, loan_id, installment_number`

	return r.queryEntries(ctx, query, date, loanmath.RowStatusPaid)
}

func (r *ScheduleRepo) queryEntries(ctx context.Context, query string, args ...interface{}) ([]*models.ScheduleEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule entries: %w", err)
	}

	return collectEntries(rows)
}

// GetByLoanIDTx reads a loan's schedule within a transaction, after the loan
// row has been locked
func (r *ScheduleRepo) GetByLoanIDTx(ctx context.Context, tx *sql.Tx, organizationID, loanID int) ([]*models.ScheduleEntry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule_entries
             WHERE organization_id = $1 AND loan_id = $2 ORDER BY installment_number`

	rows, err := tx.QueryContext(ctx, query, organizationID, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule entries: %w", err)
	}

	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]*models.ScheduleEntry, error) {
	defer rows.Close()

	var entries []*models.ScheduleEntry
	for rows.Next() {
		entry, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}

// Update updates a schedule entry's paid amounts and flags
func (r *ScheduleRepo) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	query := `UPDATE schedule_entries SET principal_paid = $1, interest_paid = $2, status = $3,
             is_overdue = $4, updated_at = NOW()
             WHERE organization_id = $5 AND id = $6`

	result, err := r.db.ExecContext(
		ctx,
		query,
		entry.PrincipalPaid,
		entry.InterestPaid,
		entry.Status,
		entry.IsOverdue,
		entry.OrganizationID,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("schedule entry not found")
	}

	return nil
}

// DeleteByLoanID removes the schedule for a loan ahead of regeneration
func (r *ScheduleRepo) DeleteByLoanID(ctx context.Context, organizationID, loanID int) error {
	query := `DELETE FROM schedule_entries WHERE organization_id = $1 AND loan_id = $2`

	_, err := r.db.ExecContext(ctx, query, organizationID, loanID)
	if err != nil {
		return fmt.Errorf("failed to delete schedule entries: %w", err)
	}

	return nil
}

// UpdatePaidTx updates a schedule entry's paid amounts within a transaction
func (r *ScheduleRepo) UpdatePaidTx(ctx context.Context, tx *sql.Tx, entry *models.ScheduleEntry) error {
	query := `UPDATE schedule_entries SET principal_paid = $1, interest_paid = $2, status = $3,
             updated_at = NOW()
             WHERE organization_id = $4 AND loan_id = $5 AND installment_number = $6`

	result, err := tx.ExecContext(
		ctx,
		query,
		entry.PrincipalPaid,
		entry.InterestPaid,
		entry.Status,
		entry.OrganizationID,
		entry.LoanID,
		entry.InstallmentNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("schedule entry not found")
	}

	return nil
}
