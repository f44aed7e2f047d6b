package loanmath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func baseTerms(interestType InterestType) LoanTerms {
	return LoanTerms{
		Principal:         100000,
		AnnualRatePercent: 12,
		DurationPeriods:   12,
		InterestType:      interestType,
		Period:            PeriodMonthly,
		StartDate:         date(2024, time.January, 1),
		InterestAlignment: AlignmentPeriodBased,
	}
}

// assertRowInvariants checks the structural invariants every schedule must
// satisfy: sequential installment numbers, non-decreasing due dates and
// total due equal to principal plus interest.
func assertRowInvariants(t *testing.T, rows []ScheduleRow) {
	t.Helper()
	for i, row := range rows {
		assert.Equal(t, i+1, row.InstallmentNumber)
		if i > 0 {
			assert.False(t, row.DueDate.Before(rows[i-1].DueDate), "due dates must not decrease")
		}
		assert.InDelta(t, row.PrincipalAmount+row.InterestAmount, row.TotalDue, 0.01)
		assert.GreaterOrEqual(t, row.RunningBalance, 0.0)
		assert.Equal(t, RowStatusPending, row.Status)
	}
}

func sumPrincipal(rows []ScheduleRow) float64 {
	var total float64
	for _, row := range rows {
		if !row.IsExtensionPeriod {
			total += row.PrincipalAmount
		}
	}
	return total
}

func TestGenerateScheduleReducing(t *testing.T) {
	rows, err := GenerateSchedule(baseTerms(InterestTypeReducing), nil)
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assertRowInvariants(t, rows)

	// 100000 at 12% over 12 months: first interest is 1000.00 and the annuity
	// payment works out to 8884.88.
	assert.InDelta(t, 1000.00, rows[0].InterestAmount, 0.01)
	assert.InDelta(t, 8884.88, rows[0].TotalDue, 0.01)

	assert.InDelta(t, 0, rows[11].RunningBalance, 0.01)
	assert.InDelta(t, 100000, sumPrincipal(rows), 0.01)
	assert.Equal(t, date(2024, time.February, 1), rows[0].DueDate)
	assert.Equal(t, date(2025, time.January, 1), rows[11].DueDate)
}

func TestGenerateScheduleFlat(t *testing.T) {
	terms := baseTerms(InterestTypeFlat)
	terms.Principal = 12000
	terms.AnnualRatePercent = 10

	rows, err := GenerateSchedule(terms, nil)
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assertRowInvariants(t, rows)

	for _, row := range rows {
		assert.InDelta(t, 100.00, row.InterestAmount, 0.001)
		assert.InDelta(t, 1000.00, row.PrincipalAmount, 0.001)
		assert.InDelta(t, 1100.00, row.TotalDue, 0.001)
	}
	assert.InDelta(t, 0, rows[11].RunningBalance, 0.01)
	assert.InDelta(t, 12000, sumPrincipal(rows), 0.01)
}

func TestGenerateScheduleInterestOnlyBalloon(t *testing.T) {
	terms := baseTerms(InterestTypeInterestOnly)
	terms.Principal = 10000

	rows, err := GenerateSchedule(terms, nil)
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assertRowInvariants(t, rows)

	for _, row := range rows[:11] {
		assert.InDelta(t, 100.00, row.InterestAmount, 0.001)
		assert.Zero(t, row.PrincipalAmount)
		assert.InDelta(t, 10000, row.RunningBalance, 0.01)
	}

	// The whole term is interest-only, so the balance balloons on the final row.
	last := rows[11]
	assert.InDelta(t, 10000, last.PrincipalAmount, 0.01)
	assert.InDelta(t, 10100, last.TotalDue, 0.01)
	assert.Zero(t, last.RunningBalance)
}

func TestGenerateScheduleInterestOnlyWithAmortizingTail(t *testing.T) {
	terms := baseTerms(InterestTypeInterestOnly)
	terms.Principal = 10000
	terms.InterestOnlyPeriods = 6

	rows, err := GenerateSchedule(terms, nil)
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assertRowInvariants(t, rows)

	for _, row := range rows[:6] {
		assert.Zero(t, row.PrincipalAmount)
		assert.InDelta(t, 100.00, row.InterestAmount, 0.001)
	}
	for _, row := range rows[6:] {
		assert.Greater(t, row.PrincipalAmount, 0.0)
	}
	assert.InDelta(t, 0, rows[11].RunningBalance, 0.01)
	assert.InDelta(t, 10000, sumPrincipal(rows), 0.01)
}

func TestGenerateScheduleRolledUp(t *testing.T) {
	terms := baseTerms(InterestTypeRolledUp)
	terms.Principal = 10000

	rows, err := GenerateSchedule(terms, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1+rolledUpExtensionMonths)

	head := rows[0]
	assert.Equal(t, terms.EndDate(), head.DueDate)
	assert.InDelta(t, 10000, head.PrincipalAmount, 0.01)
	// 12 periods of simple interest at 1% per month on the (unreduced) balance.
	assert.InDelta(t, 1200, head.InterestAmount, 0.01)
	// Principal is not repaid at rollover; the balance stays outstanding.
	assert.InDelta(t, 10000, head.RunningBalance, 0.01)

	for i, row := range rows[1:] {
		assert.True(t, row.IsExtensionPeriod)
		assert.Zero(t, row.PrincipalAmount)
		assert.InDelta(t, 100.00, row.InterestAmount, 0.01)
		assert.InDelta(t, 10000, row.RunningBalance, 0.01)
		assert.Equal(t, terms.EndDate().AddDate(0, i+1, 0), row.DueDate)
	}
}

func TestGenerateScheduleReducingWithPrincipalReductions(t *testing.T) {
	terms := baseTerms(InterestTypeReducing)

	baseline, err := GenerateSchedule(terms, nil)
	require.NoError(t, err)

	reduced, err := GenerateSchedule(terms, []PrincipalReduction{
		{Date: date(2024, time.March, 15), Amount: 20000},
	})
	require.NoError(t, err)
	require.Len(t, reduced, 12)
	assertRowInvariants(t, reduced)

	// Rows before the reduction date are unchanged; later interest shrinks.
	assert.InDelta(t, baseline[0].InterestAmount, reduced[0].InterestAmount, 0.001)
	assert.InDelta(t, baseline[1].InterestAmount, reduced[1].InterestAmount, 0.001)
	assert.Less(t, reduced[3].InterestAmount, baseline[3].InterestAmount)
	assert.InDelta(t, 0, reduced[11].RunningBalance, 0.01)
	// The schedule amortizes only what the reductions did not already repay.
	assert.InDelta(t, 80000, sumPrincipal(reduced), 0.01)
}

func TestGenerateScheduleAdvanceInterestDueDates(t *testing.T) {
	terms := baseTerms(InterestTypeReducing)
	terms.InterestPaidInAdvance = true

	rows, err := GenerateSchedule(terms, nil)
	require.NoError(t, err)
	require.Len(t, rows, 12)

	// In-advance installments fall at the start of their period.
	assert.Equal(t, terms.StartDate, rows[0].DueDate)
	assert.Equal(t, date(2024, time.December, 1), rows[11].DueDate)
	assert.InDelta(t, 0, rows[11].RunningBalance, 0.01)
}

func TestGenerateScheduleMonthlyFirst(t *testing.T) {
	terms := baseTerms(InterestTypeReducing)
	terms.Principal = 10000
	terms.StartDate = date(2024, time.January, 15)
	terms.DurationPeriods = 3
	terms.InterestAlignment = AlignmentMonthlyFirst

	rows, err := GenerateSchedule(terms, nil)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assertRowInvariants(t, rows)

	// Stub row on the literal start date: 17 days at 12%/365 on 10000.
	stub := rows[0]
	assert.Equal(t, terms.StartDate, stub.DueDate)
	assert.Zero(t, stub.PrincipalAmount)
	assert.InDelta(t, 10000*0.12/365*17, stub.InterestAmount, 0.01)

	assert.Equal(t, date(2024, time.February, 1), rows[1].DueDate)
	assert.Equal(t, date(2024, time.March, 1), rows[2].DueDate)

	// Final installment truncated to the exact loan end date.
	last := rows[3]
	assert.Equal(t, date(2024, time.April, 15), last.DueDate)
	assert.Zero(t, last.RunningBalance)
	assert.InDelta(t, 10000, sumPrincipal(rows), 0.01)
}

func TestGenerateScheduleMonthlyFirstExtendForFullPeriod(t *testing.T) {
	terms := baseTerms(InterestTypeFlat)
	terms.StartDate = date(2024, time.January, 15)
	terms.DurationPeriods = 3
	terms.InterestAlignment = AlignmentMonthlyFirst
	terms.ExtendForFullPeriod = true

	rows, err := GenerateSchedule(terms, nil)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// The final installment stays on the 1st instead of the loan end date.
	assert.Equal(t, date(2024, time.April, 1), rows[3].DueDate)
	assert.Zero(t, rows[3].RunningBalance)
}

func TestGenerateScheduleZeroRate(t *testing.T) {
	terms := baseTerms(InterestTypeReducing)
	terms.AnnualRatePercent = 0

	rows, err := GenerateSchedule(terms, nil)
	require.NoError(t, err)
	require.Len(t, rows, 12)

	// Zero rate must not divide by zero: straight-line principal, no interest.
	for _, row := range rows {
		assert.Zero(t, row.InterestAmount)
	}
	assert.InDelta(t, 100000.0/12, rows[0].PrincipalAmount, 0.01)
	assert.InDelta(t, 0, rows[11].RunningBalance, 0.01)
}

func TestGenerateScheduleWeekly(t *testing.T) {
	terms := baseTerms(InterestTypeFlat)
	terms.Period = PeriodWeekly
	terms.DurationPeriods = 10

	rows, err := GenerateSchedule(terms, nil)
	require.NoError(t, err)
	require.Len(t, rows, 10)
	assert.Equal(t, terms.StartDate.AddDate(0, 0, 7), rows[0].DueDate)
	assert.Equal(t, terms.StartDate.AddDate(0, 0, 70), rows[9].DueDate)
}

func TestGenerateScheduleInvalidTerms(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LoanTerms)
	}{
		{"negative principal", func(t *LoanTerms) { t.Principal = -1 }},
		{"zero duration", func(t *LoanTerms) { t.DurationPeriods = 0 }},
		{"unknown interest type", func(t *LoanTerms) { t.InterestType = "BESPOKE" }},
		{"unknown period", func(t *LoanTerms) { t.Period = "DAILY" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			terms := baseTerms(InterestTypeReducing)
			tc.mutate(&terms)

			_, err := GenerateSchedule(terms, nil)
			require.Error(t, err)
			var termsErr *InvalidTermsError
			assert.ErrorAs(t, err, &termsErr)
		})
	}
}

func TestGenerateScheduleDeterministic(t *testing.T) {
	terms := baseTerms(InterestTypeReducing)
	reductions := []PrincipalReduction{{Date: date(2024, time.June, 1), Amount: 5000}}

	first, err := GenerateSchedule(terms, reductions)
	require.NoError(t, err)
	second, err := GenerateSchedule(terms, reductions)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
