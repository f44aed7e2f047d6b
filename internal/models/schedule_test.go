package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-servicing/internal/loanmath"
)

func TestCalculateScheduleSummary(t *testing.T) {
	asOf := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	entries := []*ScheduleEntry{
		{
			InstallmentNumber: 1,
			DueDate:           time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			PrincipalAmount:   1000, InterestAmount: 100, TotalDue: 1100,
			PrincipalPaid: 1000, InterestPaid: 100,
			Status: loanmath.RowStatusPaid,
		},
		{
			InstallmentNumber: 2,
			DueDate:           time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			PrincipalAmount:   1000, InterestAmount: 90, TotalDue: 1090,
			PrincipalPaid: 0, InterestPaid: 40,
			Status: loanmath.RowStatusPartial,
		},
		{
			InstallmentNumber: 3,
			DueDate:           time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			PrincipalAmount:   1000, InterestAmount: 80, TotalDue: 1080,
			Status: loanmath.RowStatusPending,
		},
		{
			InstallmentNumber: 4,
			DueDate:           time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			InterestAmount:    80, TotalDue: 80,
			Status:            loanmath.RowStatusPending,
			IsExtensionPeriod: true,
		},
	}

	summary := CalculateScheduleSummary(entries, asOf)

	// The extension row is a projection and stays out of every total.
	assert.Equal(t, 3, summary.TotalInstallments)
	assert.InDelta(t, 3000, summary.TotalPrincipal, 0.001)
	assert.InDelta(t, 270, summary.TotalInterest, 0.001)
	assert.InDelta(t, 3270, summary.TotalDue, 0.001)

	assert.Equal(t, 1, summary.PaidInstallments)
	assert.InDelta(t, 1000, summary.PrincipalPaid, 0.001)
	assert.InDelta(t, 140, summary.InterestPaid, 0.001)

	assert.Equal(t, 2, summary.RemainingInstallments)
	assert.InDelta(t, 2000, summary.RemainingPrincipal, 0.001)
	assert.InDelta(t, 130, summary.RemainingInterest, 0.001)
	assert.InDelta(t, 2130, summary.RemainingDue, 0.001)

	assert.Equal(t, 1, summary.OverdueInstallments)
	assert.InDelta(t, 1050, summary.OverdueAmount, 0.001)
}

func TestMarkOverdue(t *testing.T) {
	asOf := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	past := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	entry := &ScheduleEntry{DueDate: past, Status: loanmath.RowStatusPending}
	assert.True(t, entry.MarkOverdue(asOf))
	assert.True(t, entry.IsOverdue)

	// Already flagged, nothing changes.
	assert.False(t, entry.MarkOverdue(asOf))

	assert.False(t, (&ScheduleEntry{DueDate: future, Status: loanmath.RowStatusPending}).MarkOverdue(asOf))
	assert.False(t, (&ScheduleEntry{DueDate: past, Status: loanmath.RowStatusPaid}).MarkOverdue(asOf))
	assert.False(t, (&ScheduleEntry{DueDate: past, Status: loanmath.RowStatusPending, IsExtensionPeriod: true}).MarkOverdue(asOf))
}

func TestValidatePaymentRequestDefaults(t *testing.T) {
	req := &PaymentRequest{Amount: 500, PaymentDate: time.Now()}
	require.NoError(t, req.ValidatePaymentRequest())
	assert.Equal(t, loanmath.OverpaymentCredit, req.OverpaymentOption)
	assert.Equal(t, PaymentMethodBankTransfer, req.Method)

	assert.Error(t, (&PaymentRequest{Amount: 0}).ValidatePaymentRequest())
	assert.Error(t, (&PaymentRequest{Amount: 500, OverpaymentOption: "SOMETHING"}).ValidatePaymentRequest())
}

func TestValidatePaymentRequestManualSplit(t *testing.T) {
	req := &PaymentRequest{ManualSplit: true, InterestAmount: 300, PrincipalAmount: 200, PaymentDate: time.Now()}
	require.NoError(t, req.ValidatePaymentRequest())
	assert.InDelta(t, 500, req.Total(), 0.001)

	assert.Error(t, (&PaymentRequest{ManualSplit: true, InterestAmount: -1, PrincipalAmount: 10}).ValidatePaymentRequest())
	assert.Error(t, (&PaymentRequest{ManualSplit: true}).ValidatePaymentRequest())
}
