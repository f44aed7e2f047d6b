package models

import (
	"errors"
	"time"

	"loan-servicing/internal/loanmath"
)

// LoanStatus defines the lifecycle status of a loan
type LoanStatus string

const (
	// LoanStatusPending means the loan has been set up but not yet disbursed;
	// no interest accrues while pending.
	LoanStatusPending   LoanStatus = "PENDING"
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusOverdue   LoanStatus = "OVERDUE"
	LoanStatusRedeemed  LoanStatus = "REDEEMED"
	LoanStatusDefaulted LoanStatus = "DEFAULTED"
)

// Loan represents a loan serviced on behalf of an organization
type Loan struct {
	ID             int    `json:"id" db:"id"`
	OrganizationID int    `json:"organization_id" db:"organization_id"`
	BorrowerID     int    `json:"borrower_id" db:"borrower_id"`
	Reference      string `json:"reference" db:"reference"`

	Principal             float64                     `json:"principal" db:"principal"`
	AnnualRatePercent     float64                     `json:"annual_rate_percent" db:"annual_rate_percent"`
	DurationPeriods       int                         `json:"duration_periods" db:"duration_periods"`
	InterestType          loanmath.InterestType       `json:"interest_type" db:"interest_type"`
	Period                loanmath.PeriodUnit         `json:"period" db:"period"`
	StartDate             time.Time                   `json:"start_date" db:"start_date"`
	InterestOnlyPeriods   int                         `json:"interest_only_periods" db:"interest_only_periods"`
	InterestAlignment     loanmath.InterestAlignment  `json:"interest_alignment" db:"interest_alignment"`
	InterestPaidInAdvance bool                        `json:"interest_paid_in_advance" db:"interest_paid_in_advance"`
	ExtendForFullPeriod   bool                        `json:"extend_for_full_period" db:"extend_for_full_period"`

	HasPenaltyRate           bool       `json:"has_penalty_rate" db:"has_penalty_rate"`
	PenaltyRatePercent       float64    `json:"penalty_rate_percent,omitempty" db:"penalty_rate_percent"`
	PenaltyRateEffectiveFrom *time.Time `json:"penalty_rate_effective_from,omitempty" db:"penalty_rate_effective_from"`

	Status LoanStatus `json:"status" db:"status"`
	// CreditBalance is unallocated payment money carried forward for future
	// installments; only the payment waterfall moves it.
	CreditBalance float64   `json:"credit_balance" db:"credit_balance"`
	CurrencyCode  string    `json:"currency_code" db:"currency_code"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// LoanRequest represents loan create/update data
type LoanRequest struct {
	BorrowerID            int                        `json:"borrower_id" binding:"required"`
	Reference             string                     `json:"reference,omitempty"`
	Principal             float64                    `json:"principal" binding:"required"`
	AnnualRatePercent     float64                    `json:"annual_rate_percent" binding:"required"`
	DurationPeriods       int                        `json:"duration_periods" binding:"required"`
	InterestType          loanmath.InterestType      `json:"interest_type" binding:"required"`
	Period                loanmath.PeriodUnit        `json:"period,omitempty"`
	StartDate             time.Time                  `json:"start_date" binding:"required"`
	InterestOnlyPeriods   int                        `json:"interest_only_periods,omitempty"`
	InterestAlignment     loanmath.InterestAlignment `json:"interest_alignment,omitempty"`
	InterestPaidInAdvance bool                       `json:"interest_paid_in_advance,omitempty"`
	ExtendForFullPeriod   bool                       `json:"extend_for_full_period,omitempty"`

	HasPenaltyRate           bool       `json:"has_penalty_rate,omitempty"`
	PenaltyRatePercent       float64    `json:"penalty_rate_percent,omitempty"`
	PenaltyRateEffectiveFrom *time.Time `json:"penalty_rate_effective_from,omitempty"`

	Status       LoanStatus `json:"status,omitempty"`
	CurrencyCode string     `json:"currency_code,omitempty"`
}

// ValidateLoanRequest validates loan data beyond what the schedule generator
// itself rejects
func (l *LoanRequest) ValidateLoanRequest() error {
	if l.Principal <= 0 {
		return errors.New("principal must be positive")
	}
	if l.AnnualRatePercent < 0 {
		return errors.New("interest rate cannot be negative")
	}
	if l.DurationPeriods < 1 || l.DurationPeriods > 600 {
		return errors.New("duration must be between 1 and 600 periods")
	}
	if l.InterestOnlyPeriods < 0 || l.InterestOnlyPeriods > l.DurationPeriods {
		return errors.New("interest-only periods cannot exceed the loan duration")
	}
	if l.HasPenaltyRate {
		if l.PenaltyRatePercent < 0 {
			return errors.New("penalty rate cannot be negative")
		}
		if l.PenaltyRateEffectiveFrom == nil {
			return errors.New("penalty rate effective date is required when a penalty rate is set")
		}
	}
	if l.Period == "" {
		l.Period = loanmath.PeriodMonthly
	}
	if l.InterestAlignment == "" {
		l.InterestAlignment = loanmath.AlignmentPeriodBased
	}
	if l.Status == "" {
		l.Status = LoanStatusActive
	}
	return nil
}

// ToLoan converts LoanRequest to Loan
func (l *LoanRequest) ToLoan(organizationID int) *Loan {
	currency := l.CurrencyCode
	if currency == "" {
		currency = "GBP"
	}
	return &Loan{
		OrganizationID:           organizationID,
		BorrowerID:               l.BorrowerID,
		Reference:                l.Reference,
		Principal:                l.Principal,
		AnnualRatePercent:        l.AnnualRatePercent,
		DurationPeriods:          l.DurationPeriods,
		InterestType:             l.InterestType,
		Period:                   l.Period,
		StartDate:                l.StartDate,
		InterestOnlyPeriods:      l.InterestOnlyPeriods,
		InterestAlignment:        l.InterestAlignment,
		InterestPaidInAdvance:    l.InterestPaidInAdvance,
		ExtendForFullPeriod:      l.ExtendForFullPeriod,
		HasPenaltyRate:           l.HasPenaltyRate,
		PenaltyRatePercent:       l.PenaltyRatePercent,
		PenaltyRateEffectiveFrom: l.PenaltyRateEffectiveFrom,
		Status:                   l.Status,
		CurrencyCode:             currency,
	}
}

// Terms assembles the immutable calculation input from the loan record.
func (l *Loan) Terms() loanmath.LoanTerms {
	terms := loanmath.LoanTerms{
		Principal:             l.Principal,
		AnnualRatePercent:     l.AnnualRatePercent,
		DurationPeriods:       l.DurationPeriods,
		InterestType:          l.InterestType,
		Period:                l.Period,
		StartDate:             l.StartDate,
		InterestOnlyPeriods:   l.InterestOnlyPeriods,
		InterestAlignment:     l.InterestAlignment,
		InterestPaidInAdvance: l.InterestPaidInAdvance,
		ExtendForFullPeriod:   l.ExtendForFullPeriod,
		HasPenaltyRate:        l.HasPenaltyRate,
		PenaltyRatePercent:    l.PenaltyRatePercent,
	}
	if l.PenaltyRateEffectiveFrom != nil {
		terms.PenaltyRateEffectiveFrom = *l.PenaltyRateEffectiveFrom
	}
	return terms
}

// AccruedInterest returns interest accrued to asOf. Pending loans have not
// been disbursed, so nothing accrues.
func (l *Loan) AccruedInterest(asOf time.Time) float64 {
	if l.Status == LoanStatusPending {
		return 0
	}
	return loanmath.AccruedInterest(l.Terms(), asOf)
}

// LiveInterestOutstanding returns accrued interest net of interest actually
// paid; negative when overpaid.
func (l *Loan) LiveInterestOutstanding(interestPaid float64, asOf time.Time) float64 {
	if l.Status == LoanStatusPending {
		return 0
	}
	return loanmath.LiveInterestOutstanding(l.Terms(), interestPaid, asOf)
}

// EffectiveRate returns the annual rate in force on the given date.
func (l *Loan) EffectiveRate(date time.Time) float64 {
	return loanmath.EffectiveRate(l.Terms(), date)
}
