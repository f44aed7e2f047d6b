package loanmath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRows builds a three-installment schedule: 1000 principal + 100 interest
// per row, due monthly from February 2024.
func testRows(t *testing.T) []*ScheduleRow {
	t.Helper()
	rows := make([]*ScheduleRow, 3)
	for i := range rows {
		rows[i] = &ScheduleRow{
			InstallmentNumber: i + 1,
			DueDate:           date(2024, time.February, 1).AddDate(0, i, 0),
			PrincipalAmount:   1000,
			InterestAmount:    100,
			TotalDue:          1100,
			RunningBalance:    float64(2000 - i*1000),
			Status:            RowStatusPending,
		}
	}
	return rows
}

func appliedTotal(result WaterfallResult) float64 {
	var total float64
	for _, u := range result.Updates {
		total += u.InterestApplied + u.PrincipalApplied
	}
	return total
}

func TestWaterfallInterestBeforePrincipalOldestFirst(t *testing.T) {
	rows := testRows(t)

	result := ApplyPaymentWaterfall(150, rows, 0, OverpaymentCredit)

	require.Len(t, result.Updates, 1)
	u := result.Updates[0]
	assert.Equal(t, 1, u.InstallmentNumber)
	assert.InDelta(t, 100, u.InterestApplied, 0.001)
	assert.InDelta(t, 50, u.PrincipalApplied, 0.001)
	assert.Equal(t, RowStatusPartial, u.Status)

	assert.InDelta(t, 100, rows[0].InterestPaid, 0.001)
	assert.InDelta(t, 50, rows[0].PrincipalPaid, 0.001)
	assert.Equal(t, RowStatusPartial, rows[0].Status)
	assert.Equal(t, RowStatusPending, rows[1].Status)
	assert.Zero(t, result.CreditAmount)
	assert.Zero(t, result.RemainingPayment)
}

func TestWaterfallSpansRows(t *testing.T) {
	rows := testRows(t)

	result := ApplyPaymentWaterfall(1700, rows, 0, OverpaymentCredit)

	require.Len(t, result.Updates, 2)
	assert.Equal(t, RowStatusPaid, rows[0].Status)
	assert.InDelta(t, 100, rows[1].InterestPaid, 0.001)
	assert.InDelta(t, 500, rows[1].PrincipalPaid, 0.001)
	assert.Equal(t, RowStatusPartial, rows[1].Status)
	assert.Equal(t, RowStatusPending, rows[2].Status)
}

func TestWaterfallConservation(t *testing.T) {
	payments := []float64{0.01, 99.99, 1100, 1650.5, 3300, 5000}
	for _, payment := range payments {
		rows := testRows(t)
		result := ApplyPaymentWaterfall(payment, rows, 0, OverpaymentCredit)
		assert.InDelta(t, payment, appliedTotal(result)+result.CreditAmount, 0.01,
			"payment %v must be conserved", payment)
	}
}

func TestWaterfallZeroPaymentIsNoOp(t *testing.T) {
	rows := testRows(t)

	for _, option := range []OverpaymentOption{OverpaymentCredit, OverpaymentReducePrincipal} {
		result := ApplyPaymentWaterfall(0, rows, 0, option)
		assert.Empty(t, result.Updates)
		assert.Zero(t, result.RemainingPayment)
		assert.Zero(t, result.CreditAmount)
		assert.Zero(t, result.PrincipalReduction)
		assert.Equal(t, RowStatusPending, rows[0].Status)
	}
}

func TestWaterfallExistingCreditJoinsPool(t *testing.T) {
	rows := testRows(t)

	result := ApplyPaymentWaterfall(1000, rows, 100, OverpaymentCredit)

	assert.Equal(t, RowStatusPaid, rows[0].Status)
	assert.InDelta(t, 1100, appliedTotal(result), 0.01)
}

func TestWaterfallOverpaymentCredit(t *testing.T) {
	rows := testRows(t)

	result := ApplyPaymentWaterfall(5000, rows, 0, OverpaymentCredit)

	for _, row := range rows {
		assert.Equal(t, RowStatusPaid, row.Status)
	}
	assert.InDelta(t, 1700, result.CreditAmount, 0.01)
	assert.Zero(t, result.PrincipalReduction)
}

func TestWaterfallOverpaymentReducePrincipal(t *testing.T) {
	rows := testRows(t)

	result := ApplyPaymentWaterfall(5000, rows, 0, OverpaymentReducePrincipal)

	for _, row := range rows {
		assert.Equal(t, RowStatusPaid, row.Status)
	}
	assert.InDelta(t, 1700, result.PrincipalReduction, 0.01)
	assert.Zero(t, result.CreditAmount)
}

func TestWaterfallSkipsPaidRowsAndSortsByDueDate(t *testing.T) {
	rows := testRows(t)
	rows[0].PrincipalPaid = 1000
	rows[0].InterestPaid = 100
	rows[0].Status = RowStatusPaid

	// Hand the rows over out of order; allocation must still hit the oldest
	// unpaid row first.
	shuffled := []*ScheduleRow{rows[2], rows[0], rows[1]}
	result := ApplyPaymentWaterfall(100, shuffled, 0, OverpaymentCredit)

	require.Len(t, result.Updates, 1)
	assert.Equal(t, 2, result.Updates[0].InstallmentNumber)
	assert.InDelta(t, 100, rows[1].InterestPaid, 0.001)
}

func TestWaterfallPartialRowResumes(t *testing.T) {
	rows := testRows(t)

	first := ApplyPaymentWaterfall(60, rows, 0, OverpaymentCredit)
	require.Len(t, first.Updates, 1)
	assert.InDelta(t, 60, rows[0].InterestPaid, 0.001)

	second := ApplyPaymentWaterfall(60, rows, 0, OverpaymentCredit)
	require.Len(t, second.Updates, 1)
	// The second payment finishes the interest then starts on principal.
	assert.InDelta(t, 40, second.Updates[0].InterestApplied, 0.001)
	assert.InDelta(t, 20, second.Updates[0].PrincipalApplied, 0.001)
	assert.InDelta(t, 100, rows[0].InterestPaid, 0.001)
	assert.InDelta(t, 20, rows[0].PrincipalPaid, 0.001)
}

func TestManualPaymentSplitsPools(t *testing.T) {
	rows := testRows(t)

	result := ApplyManualPayment(150, 1200, rows, 0, OverpaymentCredit)

	// Interest pool: 100 to row 1, 50 to row 2. Principal pool: 1000 to row 1,
	// 200 to row 2. Updates are merged per row.
	require.Len(t, result.Updates, 2)
	assert.Equal(t, 1, result.Updates[0].InstallmentNumber)
	assert.InDelta(t, 100, result.Updates[0].InterestApplied, 0.001)
	assert.InDelta(t, 1000, result.Updates[0].PrincipalApplied, 0.001)
	assert.Equal(t, RowStatusPaid, result.Updates[0].Status)

	assert.Equal(t, 2, result.Updates[1].InstallmentNumber)
	assert.InDelta(t, 50, result.Updates[1].InterestApplied, 0.001)
	assert.InDelta(t, 200, result.Updates[1].PrincipalApplied, 0.001)
	assert.Equal(t, RowStatusPartial, result.Updates[1].Status)
}

func TestManualPaymentOverpayment(t *testing.T) {
	t.Run("principal overflow follows option", func(t *testing.T) {
		rows := testRows(t)
		result := ApplyManualPayment(300, 4000, rows, 0, OverpaymentReducePrincipal)
		assert.InDelta(t, 1000, result.PrincipalReduction, 0.01)
		assert.Zero(t, result.CreditAmount)

		rows = testRows(t)
		result = ApplyManualPayment(300, 4000, rows, 0, OverpaymentCredit)
		assert.InDelta(t, 1000, result.CreditAmount, 0.01)
		assert.Zero(t, result.PrincipalReduction)
	})

	t.Run("interest overflow is always credited", func(t *testing.T) {
		rows := testRows(t)
		result := ApplyManualPayment(500, 0, rows, 0, OverpaymentReducePrincipal)
		assert.InDelta(t, 200, result.CreditAmount, 0.01)
		assert.Zero(t, result.PrincipalReduction)
	})
}

func TestManualPaymentUsesExistingCreditForPrincipal(t *testing.T) {
	rows := testRows(t)

	ApplyManualPayment(0, 900, rows, 100, OverpaymentCredit)

	assert.InDelta(t, 1000, rows[0].PrincipalPaid, 0.001)
}

func TestWaterfallRoundsToCents(t *testing.T) {
	rows := testRows(t)

	result := ApplyPaymentWaterfall(33.333, rows, 0, OverpaymentCredit)

	require.Len(t, result.Updates, 1)
	assert.InDelta(t, 33.33, result.Updates[0].InterestApplied, 0.001)
	assert.InDelta(t, 33.33, rows[0].InterestPaid, 0.001)
}
