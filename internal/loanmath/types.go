// Package loanmath implements the repayment-schedule generation, interest
// accrual and payment-waterfall allocation used by the loan services. All
// functions are pure: they operate on in-memory values, perform no I/O and
// leave persistence to the caller.
package loanmath

import (
	"fmt"
	"math"
	"time"
)

// InterestType defines how interest is calculated over the life of a loan
type InterestType string

const (
	InterestTypeFlat         InterestType = "FLAT"
	InterestTypeReducing     InterestType = "REDUCING"
	InterestTypeInterestOnly InterestType = "INTEREST_ONLY"
	InterestTypeRolledUp     InterestType = "ROLLED_UP"
)

// PeriodUnit defines the billing interval of a loan
type PeriodUnit string

const (
	PeriodMonthly PeriodUnit = "MONTHLY"
	PeriodWeekly  PeriodUnit = "WEEKLY"
)

// InterestAlignment defines the due-date convention for installments
type InterestAlignment string

const (
	// AlignmentPeriodBased places each installment at the end (or start, for
	// interest-in-advance loans) of a uniform period counted from the start date.
	AlignmentPeriodBased InterestAlignment = "PERIOD_BASED"
	// AlignmentMonthlyFirst bills an initial stub from the start date to the
	// end of that month, then one installment on the 1st of each month.
	AlignmentMonthlyFirst InterestAlignment = "MONTHLY_FIRST"
)

// RowStatus defines the payment state of a schedule row
type RowStatus string

const (
	RowStatusPending RowStatus = "PENDING"
	RowStatusPartial RowStatus = "PARTIAL"
	RowStatusPaid    RowStatus = "PAID"
)

// OverpaymentOption defines what happens to a payment in excess of all amounts due
type OverpaymentOption string

const (
	OverpaymentCredit          OverpaymentOption = "credit"
	OverpaymentReducePrincipal OverpaymentOption = "reduce_principal"
)

// Tolerance used when comparing rounded currency amounts
const centTolerance = 0.01

// LoanTerms is the immutable input to schedule generation and accrual.
type LoanTerms struct {
	Principal             float64
	AnnualRatePercent     float64
	DurationPeriods       int
	InterestType          InterestType
	Period                PeriodUnit
	StartDate             time.Time
	InterestOnlyPeriods   int // 0 means the full duration is interest-only
	InterestAlignment     InterestAlignment
	InterestPaidInAdvance bool
	// ExtendForFullPeriod keeps the final monthly-first installment on the 1st
	// instead of truncating it to the exact loan end date.
	ExtendForFullPeriod bool

	HasPenaltyRate           bool
	PenaltyRatePercent       float64
	PenaltyRateEffectiveFrom time.Time
}

// PrincipalReduction records principal already applied to a loan (a repayment
// or partial disbursement) that should reduce forward-looking interest.
type PrincipalReduction struct {
	Date   time.Time
	Amount float64
}

// ScheduleRow is one installment of a repayment schedule. Rows are created by
// GenerateSchedule and afterwards mutated only by the waterfall allocator,
// which owns PrincipalPaid, InterestPaid and Status.
type ScheduleRow struct {
	InstallmentNumber int
	DueDate           time.Time
	PrincipalAmount   float64
	InterestAmount    float64
	TotalDue          float64
	RunningBalance    float64
	PrincipalPaid     float64
	InterestPaid      float64
	Status            RowStatus
	// IsExtensionPeriod marks the advisory interest-only continuation rows
	// emitted after a rolled-up term; they are projections, not contractual
	// installments.
	IsExtensionPeriod bool
}

// InterestDue returns the unpaid interest on the row, clamped at zero.
func (r *ScheduleRow) InterestDue() float64 {
	return math.Max(0, round2(r.InterestAmount-r.InterestPaid))
}

// PrincipalDue returns the unpaid principal on the row, clamped at zero.
func (r *ScheduleRow) PrincipalDue() float64 {
	return math.Max(0, round2(r.PrincipalAmount-r.PrincipalPaid))
}

// RecalculateStatus derives the row status from the paid totals.
func (r *ScheduleRow) RecalculateStatus() {
	paid := r.PrincipalPaid + r.InterestPaid
	switch {
	case paid >= r.TotalDue-centTolerance:
		r.Status = RowStatusPaid
	case paid > 0:
		r.Status = RowStatusPartial
	default:
		r.Status = RowStatusPending
	}
}

// InvalidTermsError reports loan terms that cannot produce a schedule.
type InvalidTermsError struct {
	Field  string
	Reason string
}

func (e *InvalidTermsError) Error() string {
	return fmt.Sprintf("invalid loan terms: %s %s", e.Field, e.Reason)
}

// Validate checks the terms a schedule or accrual calculation depends on.
func (t LoanTerms) Validate() error {
	if t.Principal < 0 {
		return &InvalidTermsError{Field: "principal", Reason: "cannot be negative"}
	}
	if t.DurationPeriods <= 0 {
		return &InvalidTermsError{Field: "duration", Reason: "must be positive"}
	}
	switch t.Period {
	case PeriodMonthly, PeriodWeekly:
	default:
		return &InvalidTermsError{Field: "period", Reason: fmt.Sprintf("unsupported value %q", t.Period)}
	}
	switch t.InterestType {
	case InterestTypeFlat, InterestTypeReducing, InterestTypeInterestOnly, InterestTypeRolledUp:
	default:
		return &InvalidTermsError{Field: "interest type", Reason: fmt.Sprintf("unsupported value %q", t.InterestType)}
	}
	return nil
}

// periodsPerYear returns the number of billing periods in a year.
func (t LoanTerms) periodsPerYear() float64 {
	if t.Period == PeriodWeekly {
		return 52
	}
	return 12
}

// periodRate returns the per-period interest rate as a decimal fraction.
func (t LoanTerms) periodRate() float64 {
	return t.AnnualRatePercent / 100 / t.periodsPerYear()
}

// periodEnd returns the end date of the n-th period (1-based).
func (t LoanTerms) periodEnd(n int) time.Time {
	if t.Period == PeriodWeekly {
		return t.StartDate.AddDate(0, 0, 7*n)
	}
	return t.StartDate.AddDate(0, n, 0)
}

// EndDate returns the contractual end of the loan term.
func (t LoanTerms) EndDate() time.Time {
	return t.periodEnd(t.DurationPeriods)
}

// effectiveInterestOnlyPeriods resolves the zero-means-full-term convention.
func (t LoanTerms) effectiveInterestOnlyPeriods() int {
	if t.InterestOnlyPeriods > 0 && t.InterestOnlyPeriods < t.DurationPeriods {
		return t.InterestOnlyPeriods
	}
	return t.DurationPeriods
}

// round2 rounds a currency amount to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AnnuityPayment returns the constant per-period payment that amortizes
// principal over n periods at the given per-period rate. A zero rate or
// degenerate term falls back to straight-line principal with no interest.
func AnnuityPayment(principal, rate float64, periods int) float64 {
	if periods <= 0 {
		return principal
	}
	factor := math.Pow(1+rate, float64(periods))
	if factor-1 == 0 {
		return principal / float64(periods)
	}
	return principal * rate * factor / (factor - 1)
}

// truncateToDay strips the time-of-day component.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween returns whole days from a to b, never negative.
func daysBetween(a, b time.Time) float64 {
	d := truncateToDay(b).Sub(truncateToDay(a)).Hours() / 24
	return math.Max(0, d)
}

// firstOfNextMonth returns midnight on the 1st of the month after t.
func firstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
}
