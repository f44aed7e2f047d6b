package models

import (
	"errors"
	"time"

	"loan-servicing/internal/loanmath"
)

// PaymentMethod defines how a payment was received
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// Payment represents a payment received against a loan, together with the
// aggregate outcome of its waterfall allocation.
type Payment struct {
	ID             int           `json:"id" db:"id"`
	OrganizationID int           `json:"organization_id" db:"organization_id"`
	LoanID         int           `json:"loan_id" db:"loan_id"`
	Reference      string        `json:"reference" db:"reference"`
	Amount         float64       `json:"amount" db:"amount"`
	PaymentDate    time.Time     `json:"payment_date" db:"payment_date"`
	Method         PaymentMethod `json:"method" db:"method"`

	// ManualSplit records an operator-specified interest/principal split in
	// place of the automatic waterfall.
	ManualSplit     bool    `json:"manual_split" db:"manual_split"`
	InterestAmount  float64 `json:"interest_amount,omitempty" db:"interest_amount"`
	PrincipalAmount float64 `json:"principal_amount,omitempty" db:"principal_amount"`

	OverpaymentOption  loanmath.OverpaymentOption `json:"overpayment_option" db:"overpayment_option"`
	CreditAmount       float64                    `json:"credit_amount" db:"credit_amount"`
	PrincipalReduction float64                    `json:"principal_reduction" db:"principal_reduction"`

	Notes     string    `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PaymentRequest represents a payment submission
type PaymentRequest struct {
	Amount            float64                    `json:"amount,omitempty"`
	PaymentDate       time.Time                  `json:"payment_date" binding:"required"`
	Method            PaymentMethod              `json:"method,omitempty"`
	ManualSplit       bool                       `json:"manual_split,omitempty"`
	InterestAmount    float64                    `json:"interest_amount,omitempty"`
	PrincipalAmount   float64                    `json:"principal_amount,omitempty"`
	OverpaymentOption loanmath.OverpaymentOption `json:"overpayment_option,omitempty"`
	Notes             string                     `json:"notes,omitempty"`
}

// ValidatePaymentRequest validates payment data
func (p *PaymentRequest) ValidatePaymentRequest() error {
	if p.ManualSplit {
		if p.InterestAmount < 0 || p.PrincipalAmount < 0 {
			return errors.New("manual split amounts cannot be negative")
		}
		if p.InterestAmount+p.PrincipalAmount <= 0 {
			return errors.New("manual split must allocate a positive amount")
		}
	} else if p.Amount <= 0 {
		return errors.New("payment amount must be positive")
	}

	switch p.OverpaymentOption {
	case "":
		p.OverpaymentOption = loanmath.OverpaymentCredit
	case loanmath.OverpaymentCredit, loanmath.OverpaymentReducePrincipal:
	default:
		return errors.New("invalid overpayment option")
	}

	if p.Method == "" {
		p.Method = PaymentMethodBankTransfer
	}
	return nil
}

// Total returns the full amount received, regardless of split mode.
func (p *PaymentRequest) Total() float64 {
	if p.ManualSplit {
		return p.InterestAmount + p.PrincipalAmount
	}
	return p.Amount
}
