package loanmath

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveRate(t *testing.T) {
	terms := baseTerms(InterestTypeInterestOnly)
	terms.AnnualRatePercent = 10
	terms.HasPenaltyRate = true
	terms.PenaltyRatePercent = 15
	terms.PenaltyRateEffectiveFrom = date(2024, time.July, 1)

	assert.Equal(t, 10.0, EffectiveRate(terms, date(2024, time.June, 30)))
	assert.Equal(t, 15.0, EffectiveRate(terms, date(2024, time.July, 1)))
	// The effective-from comparison truncates to midnight.
	assert.Equal(t, 15.0, EffectiveRate(terms, time.Date(2024, time.July, 1, 9, 30, 0, 0, time.UTC)))

	terms.HasPenaltyRate = false
	assert.Equal(t, 10.0, EffectiveRate(terms, date(2024, time.August, 1)))
}

func TestAccruedInterestPenaltySplit(t *testing.T) {
	terms := baseTerms(InterestTypeInterestOnly)
	terms.Principal = 10000
	terms.AnnualRatePercent = 10
	terms.HasPenaltyRate = true
	terms.PenaltyRatePercent = 15
	terms.PenaltyRateEffectiveFrom = date(2024, time.July, 1)

	// 182 days at the contract rate, 183 days at the penalty rate.
	expected := 10000*0.10/365*182 + 10000*0.15/365*183
	got := AccruedInterest(terms, date(2024, time.December, 31))
	assert.InDelta(t, expected, got, 0.01)
}

func TestAccruedInterestFlatSimpleDaily(t *testing.T) {
	terms := baseTerms(InterestTypeFlat)
	terms.Principal = 10000
	terms.AnnualRatePercent = 10

	got := AccruedInterest(terms, date(2024, time.January, 31))
	assert.InDelta(t, 10000*0.10/365*30, got, 0.01)
}

func TestAccruedInterestRolledUpCompoundsDaily(t *testing.T) {
	terms := baseTerms(InterestTypeRolledUp)
	terms.Principal = 10000
	terms.AnnualRatePercent = 12

	got := AccruedInterest(terms, date(2024, time.July, 1))
	expected := 10000 * (math.Pow(1+0.12/365, 182) - 1)
	assert.InDelta(t, expected, got, 0.01)
	// Compounding beats simple accrual over the same window.
	assert.Greater(t, got, 10000*0.12/365*182-0.01)
}

func TestAccruedInterestReducingTracksAmortization(t *testing.T) {
	terms := baseTerms(InterestTypeReducing)

	// After six whole periods the accrual must match the schedule's interest
	// for those periods, since both walk the same declining balance.
	rows, err := GenerateSchedule(terms, nil)
	assert.NoError(t, err)

	var scheduled float64
	for _, row := range rows[:6] {
		scheduled += row.InterestAmount
	}
	got := AccruedInterest(terms, date(2024, time.July, 1))
	assert.InDelta(t, scheduled, got, 1.0)
}

func TestAccruedInterestUnknownTypeStraightLine(t *testing.T) {
	terms := baseTerms("LEGACY")
	terms.Principal = 12000
	terms.AnnualRatePercent = 10

	// Unknown types fall back to a straight-line share of total interest and
	// never exceed it, even long after the end of the term.
	halfway := AccruedInterest(terms, terms.StartDate.AddDate(0, 6, 0))
	assert.Greater(t, halfway, 0.0)
	assert.Less(t, halfway, 1200.0)

	longAfter := AccruedInterest(terms, terms.StartDate.AddDate(5, 0, 0))
	assert.InDelta(t, 1200.0, longAfter, 0.01)
}

func TestAccruedInterestBeforeStart(t *testing.T) {
	terms := baseTerms(InterestTypeFlat)
	assert.Zero(t, AccruedInterest(terms, terms.StartDate))
	assert.Zero(t, AccruedInterest(terms, terms.StartDate.AddDate(0, 0, -10)))
}

func TestLiveInterestOutstanding(t *testing.T) {
	terms := baseTerms(InterestTypeInterestOnly)
	terms.Principal = 10000
	terms.AnnualRatePercent = 10
	asOf := date(2024, time.July, 1)

	accrued := AccruedInterest(terms, asOf)
	assert.InDelta(t, accrued-100, LiveInterestOutstanding(terms, 100, asOf), 0.001)
	// Overpaying interest goes negative rather than clamping.
	assert.Less(t, LiveInterestOutstanding(terms, accrued+50, asOf), 0.0)
}
