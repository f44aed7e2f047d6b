package models

import "time"

// BankTransactionStatus defines the reconciliation state of a statement line
type BankTransactionStatus string

const (
	BankTransactionUnmatched BankTransactionStatus = "UNMATCHED"
	BankTransactionSuggested BankTransactionStatus = "SUGGESTED"
	BankTransactionMatched   BankTransactionStatus = "MATCHED"
	BankTransactionIgnored   BankTransactionStatus = "IGNORED"
)

// BankTransaction is one credit or debit line parsed from an uploaded bank
// statement, held for reconciliation against recorded payments.
type BankTransaction struct {
	ID             int                   `json:"id" db:"id"`
	OrganizationID int                   `json:"organization_id" db:"organization_id"`
	StatementID    string                `json:"statement_id" db:"statement_id"`
	BookingDate    time.Time             `json:"booking_date" db:"booking_date"`
	Amount         float64               `json:"amount" db:"amount"`
	CurrencyCode   string                `json:"currency_code" db:"currency_code"`
	IsCredit       bool                  `json:"is_credit" db:"is_credit"`
	CounterpartyName string              `json:"counterparty_name,omitempty" db:"counterparty_name"`
	NarrativeRef   string                `json:"narrative_ref,omitempty" db:"narrative_ref"`
	Status         BankTransactionStatus `json:"status" db:"status"`
	MatchedPaymentID *int                `json:"matched_payment_id,omitempty" db:"matched_payment_id"`
	CreatedAt      time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at" db:"updated_at"`
}

// MatchSuggestion pairs a statement line with a recorded payment that looks
// like the same money.
type MatchSuggestion struct {
	BankTransaction *BankTransaction `json:"bank_transaction"`
	Payment         *Payment         `json:"payment"`
	DaysApart       int              `json:"days_apart"`
}

// MatchConfirmation represents an operator confirming a suggested match
type MatchConfirmation struct {
	BankTransactionID int `json:"bank_transaction_id" binding:"required"`
	PaymentID         int `json:"payment_id" binding:"required"`
}
