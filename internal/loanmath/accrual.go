package loanmath

import (
	"math"
	"time"
)

// EffectiveRate returns the annual rate (percent) in force on the given date:
// the penalty rate once its effective date (truncated to midnight) has been
// reached, otherwise the contract rate.
func EffectiveRate(terms LoanTerms, date time.Time) float64 {
	if terms.HasPenaltyRate && !truncateToDay(date).Before(truncateToDay(terms.PenaltyRateEffectiveFrom)) {
		return terms.PenaltyRatePercent
	}
	return terms.AnnualRatePercent
}

// AccruedInterest computes the interest accrued from the loan start date to
// asOf, independently of the materialized schedule. When a penalty rate is in
// force the elapsed window is split at its effective date and each segment
// accrues at its own rate. An unknown interest type falls back to a
// straight-line share of the total contractual interest rather than failing.
func AccruedInterest(terms LoanTerms, asOf time.Time) float64 {
	if !asOf.After(terms.StartDate) || terms.Principal <= 0 {
		return 0
	}

	split := terms.StartDate
	splitApplies := false
	if terms.HasPenaltyRate {
		eff := truncateToDay(terms.PenaltyRateEffectiveFrom)
		if eff.After(terms.StartDate) && !eff.After(asOf) {
			split = eff
			splitApplies = true
		}
	}

	if !splitApplies {
		return round2(accrueAtRate(terms, EffectiveRate(terms, asOf), terms.StartDate, asOf, terms.Principal))
	}

	before := accrueAtRate(terms, terms.AnnualRatePercent, terms.StartDate, split, terms.Principal)

	// The second segment continues from the balance the first segment left
	// behind; only the rolled-up product compounds, the others accrue on
	// principal throughout.
	carried := terms.Principal
	if terms.InterestType == InterestTypeRolledUp {
		carried = terms.Principal + before
	}
	after := accrueAtRate(terms, terms.PenaltyRatePercent, split, asOf, carried)

	return round2(before + after)
}

// LiveInterestOutstanding returns accrued interest net of interest actually
// paid. The result is negative when the loan is overpaid.
func LiveInterestOutstanding(terms LoanTerms, interestPaid float64, asOf time.Time) float64 {
	return round2(AccruedInterest(terms, asOf) - interestPaid)
}

// accrueAtRate accrues interest on balance between from and to at the given
// annual percentage rate, using the per-type day-count convention.
func accrueAtRate(terms LoanTerms, annualRatePercent float64, from, to time.Time, balance float64) float64 {
	days := daysBetween(from, to)
	if days <= 0 {
		return 0
	}
	dailyRate := annualRatePercent / 100 / 365

	switch terms.InterestType {
	case InterestTypeFlat, InterestTypeInterestOnly:
		return balance * dailyRate * days

	case InterestTypeRolledUp:
		// Rolled-up interest compounds daily onto the balance.
		return balance * (math.Pow(1+dailyRate, days) - 1)

	case InterestTypeReducing:
		return accrueReducing(terms, annualRatePercent, from, to, balance)

	default:
		// Unknown type: a straight-line share of the contractual total,
		// capped so accrual never exceeds it.
		total := terms.Principal * terms.AnnualRatePercent / 100 *
			(float64(terms.DurationPeriods) / terms.periodsPerYear())
		totalDays := daysBetween(terms.StartDate, terms.EndDate())
		if totalDays <= 0 {
			return 0
		}
		return math.Min(total, total/totalDays*daysBetween(terms.StartDate, to))
	}
}

// accrueReducing simulates the amortizing balance period by period, accruing
// each completed period's interest on its opening balance and the trailing
// partial period pro rata by day.
func accrueReducing(terms LoanTerms, annualRatePercent float64, from, to time.Time, balance float64) float64 {
	periodRate := annualRatePercent / 100 / terms.periodsPerYear()
	payment := AnnuityPayment(balance, terms.periodRate(), terms.DurationPeriods)

	var accrued float64
	periodStart := from
	for {
		periodEnd := nextPeriod(terms, periodStart)
		if periodEnd.After(to) {
			break
		}
		interest := balance * periodRate
		accrued += interest
		balance = math.Max(0, balance-(payment-interest))
		periodStart = periodEnd
		if balance == 0 {
			return accrued
		}
	}

	// Partial trailing period at a daily rate on the current balance.
	accrued += balance * (annualRatePercent / 100 / 365) * daysBetween(periodStart, to)
	return accrued
}

// nextPeriod advances one billing period from t.
func nextPeriod(terms LoanTerms, t time.Time) time.Time {
	if terms.Period == PeriodWeekly {
		return t.AddDate(0, 0, 7)
	}
	return t.AddDate(0, 1, 0)
}
