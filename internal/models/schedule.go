package models

import (
	"time"

	"loan-servicing/internal/loanmath"
)

// ScheduleEntry is a persisted repayment schedule row. The calculation fields
// mirror loanmath.ScheduleRow; the paid amounts and status are written only
// when a payment waterfall is applied, or reset wholesale when the schedule is
// regenerated.
type ScheduleEntry struct {
	ID                int                `json:"id" db:"id"`
	OrganizationID    int                `json:"organization_id" db:"organization_id"`
	LoanID            int                `json:"loan_id" db:"loan_id"`
	InstallmentNumber int                `json:"installment_number" db:"installment_number"`
	DueDate           time.Time          `json:"due_date" db:"due_date"`
	PrincipalAmount   float64            `json:"principal_amount" db:"principal_amount"`
	InterestAmount    float64            `json:"interest_amount" db:"interest_amount"`
	TotalDue          float64            `json:"total_due" db:"total_due"`
	RunningBalance    float64            `json:"running_balance" db:"running_balance"`
	PrincipalPaid     float64            `json:"principal_paid" db:"principal_paid"`
	InterestPaid      float64            `json:"interest_paid" db:"interest_paid"`
	Status            loanmath.RowStatus `json:"status" db:"status"`
	IsExtensionPeriod bool               `json:"is_extension_period" db:"is_extension_period"`
	IsOverdue         bool               `json:"is_overdue" db:"is_overdue"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
}

// NewScheduleEntry materializes a generated row for persistence.
func NewScheduleEntry(organizationID, loanID int, row loanmath.ScheduleRow) *ScheduleEntry {
	return &ScheduleEntry{
		OrganizationID:    organizationID,
		LoanID:            loanID,
		InstallmentNumber: row.InstallmentNumber,
		DueDate:           row.DueDate,
		PrincipalAmount:   row.PrincipalAmount,
		InterestAmount:    row.InterestAmount,
		TotalDue:          row.TotalDue,
		RunningBalance:    row.RunningBalance,
		PrincipalPaid:     row.PrincipalPaid,
		InterestPaid:      row.InterestPaid,
		Status:            row.Status,
		IsExtensionPeriod: row.IsExtensionPeriod,
	}
}

// ToRow converts the persisted entry back to a calculation row for the
// waterfall allocator.
func (e *ScheduleEntry) ToRow() loanmath.ScheduleRow {
	return loanmath.ScheduleRow{
		InstallmentNumber: e.InstallmentNumber,
		DueDate:           e.DueDate,
		PrincipalAmount:   e.PrincipalAmount,
		InterestAmount:    e.InterestAmount,
		TotalDue:          e.TotalDue,
		RunningBalance:    e.RunningBalance,
		PrincipalPaid:     e.PrincipalPaid,
		InterestPaid:      e.InterestPaid,
		Status:            e.Status,
		IsExtensionPeriod: e.IsExtensionPeriod,
	}
}

// ApplyUpdate copies an allocator update onto the entry.
func (e *ScheduleEntry) ApplyUpdate(u loanmath.RowUpdate) {
	e.PrincipalPaid = u.PrincipalPaid
	e.InterestPaid = u.InterestPaid
	e.Status = u.Status
}

// ScheduleSummary represents summary statistics for a repayment schedule
type ScheduleSummary struct {
	TotalInstallments     int     `json:"total_installments"`
	TotalPrincipal        float64 `json:"total_principal"`
	TotalInterest         float64 `json:"total_interest"`
	TotalDue              float64 `json:"total_due"`
	PaidInstallments      int     `json:"paid_installments"`
	PrincipalPaid         float64 `json:"principal_paid"`
	InterestPaid          float64 `json:"interest_paid"`
	RemainingInstallments int     `json:"remaining_installments"`
	RemainingPrincipal    float64 `json:"remaining_principal"`
	RemainingInterest     float64 `json:"remaining_interest"`
	RemainingDue          float64 `json:"remaining_due"`
	OverdueInstallments   int     `json:"overdue_installments"`
	OverdueAmount         float64 `json:"overdue_amount"`
}

// CalculateScheduleSummary calculates summary statistics for a schedule.
// Extension-period rows are advisory projections and are not counted.
func CalculateScheduleSummary(entries []*ScheduleEntry, asOf time.Time) *ScheduleSummary {
	summary := &ScheduleSummary{}

	for _, entry := range entries {
		if entry.IsExtensionPeriod {
			continue
		}
		summary.TotalInstallments++
		summary.TotalPrincipal += entry.PrincipalAmount
		summary.TotalInterest += entry.InterestAmount
		summary.TotalDue += entry.TotalDue
		summary.PrincipalPaid += entry.PrincipalPaid
		summary.InterestPaid += entry.InterestPaid

		switch entry.Status {
		case loanmath.RowStatusPaid:
			summary.PaidInstallments++
		default:
			summary.RemainingInstallments++
			remaining := entry.TotalDue - entry.PrincipalPaid - entry.InterestPaid
			summary.RemainingPrincipal += entry.PrincipalAmount - entry.PrincipalPaid
			summary.RemainingInterest += entry.InterestAmount - entry.InterestPaid
			summary.RemainingDue += remaining
			if entry.DueDate.Before(asOf) {
				summary.OverdueInstallments++
				summary.OverdueAmount += remaining
			}
		}
	}
	return summary
}

// MarkOverdue flags the entry when its due date has passed without full
// payment; returns true when the flag changed.
func (e *ScheduleEntry) MarkOverdue(asOf time.Time) bool {
	if e.Status == loanmath.RowStatusPaid || e.IsExtensionPeriod {
		return false
	}
	if !e.DueDate.Before(asOf) || e.IsOverdue {
		return false
	}
	e.IsOverdue = true
	return true
}
