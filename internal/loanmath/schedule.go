package loanmath

import (
	"math"
	"sort"
	"time"
)

// rolledUpExtensionMonths is the number of advisory interest-only continuation
// rows projected after a rolled-up term.
const rolledUpExtensionMonths = 12

// GenerateSchedule produces the full repayment schedule for the given terms.
// appliedReductions holds principal already applied to the loan (extra
// repayments, staged disbursements) so that forward-looking interest is
// computed on the genuinely outstanding balance.
//
// The routing between due-date conventions is:
//
//  1. MonthlyFirst alignment on a monthly loan uses the calendar-month
//     sub-algorithm (stub period, then installments on the 1st).
//  2. Interest-in-advance loans (except rolled-up) bill each installment at
//     the start of its period. This path does not net appliedReductions; the
//     behaviour is inherited from the servicing rules and is intentional.
//  3. Everything else uses uniform periods counted from the start date.
func GenerateSchedule(terms LoanTerms, appliedReductions []PrincipalReduction) ([]ScheduleRow, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	reductions := make([]PrincipalReduction, len(appliedReductions))
	copy(reductions, appliedReductions)
	sort.SliceStable(reductions, func(i, j int) bool {
		return reductions[i].Date.Before(reductions[j].Date)
	})

	if terms.InterestAlignment == AlignmentMonthlyFirst && terms.Period == PeriodMonthly {
		return generateMonthlyFirst(terms, reductions), nil
	}
	if terms.InterestPaidInAdvance && terms.InterestType != InterestTypeRolledUp {
		return generateAdvanceInterest(terms), nil
	}
	return generatePeriodBased(terms, reductions), nil
}

// reductionLedger walks an ordered list of principal reductions, handing out
// the amounts that fall before each successive cutoff date.
type reductionLedger struct {
	reductions []PrincipalReduction
	idx        int
}

// appliedBefore returns the total of reductions dated strictly before cutoff
// that have not been handed out by a previous call.
func (l *reductionLedger) appliedBefore(cutoff time.Time) float64 {
	var total float64
	for l.idx < len(l.reductions) && l.reductions[l.idx].Date.Before(cutoff) {
		total += l.reductions[l.idx].Amount
		l.idx++
	}
	return total
}

func generatePeriodBased(terms LoanTerms, reductions []PrincipalReduction) []ScheduleRow {
	switch terms.InterestType {
	case InterestTypeFlat:
		return generateFlat(terms, false)
	case InterestTypeReducing:
		return generateReducing(terms, reductions, false)
	case InterestTypeInterestOnly:
		return generateInterestOnly(terms, reductions, false)
	case InterestTypeRolledUp:
		return generateRolledUp(terms, reductions)
	}
	return nil
}

func generateAdvanceInterest(terms LoanTerms) []ScheduleRow {
	switch terms.InterestType {
	case InterestTypeFlat:
		return generateFlat(terms, true)
	case InterestTypeReducing:
		return generateReducing(terms, nil, true)
	case InterestTypeInterestOnly:
		return generateInterestOnly(terms, nil, true)
	}
	return nil
}

// dueDate returns the due date of installment i, shifted one period earlier
// for interest-in-advance loans.
func dueDate(terms LoanTerms, i int, inAdvance bool) time.Time {
	if inAdvance {
		return terms.periodEnd(i - 1)
	}
	return terms.periodEnd(i)
}

// generateFlat spreads interest on the original principal evenly across the
// term. Every installment is identical apart from the final one, whose
// principal clears any residual left by per-period rounding.
func generateFlat(terms LoanTerms, inAdvance bool) []ScheduleRow {
	n := terms.DurationPeriods
	totalInterest := terms.Principal * terms.AnnualRatePercent / 100 * (float64(n) / terms.periodsPerYear())
	interestPer := round2(totalInterest / float64(n))
	principalPer := round2(terms.Principal / float64(n))

	rows := make([]ScheduleRow, 0, n)
	balance := terms.Principal
	for i := 1; i <= n; i++ {
		principal := principalPer
		if i == n {
			principal = round2(balance)
		}
		balance = math.Max(0, round2(balance-principal))
		rows = append(rows, ScheduleRow{
			InstallmentNumber: i,
			DueDate:           dueDate(terms, i, inAdvance),
			PrincipalAmount:   principal,
			InterestAmount:    interestPer,
			TotalDue:          round2(principal + interestPer),
			RunningBalance:    balance,
			Status:            RowStatusPending,
		})
	}
	return rows
}

// generateReducing re-derives the annuity payment at every period from the
// then-outstanding balance and the remaining term. Recomputing per period,
// rather than running the annuity once up front, is what lets mid-term extra
// principal correctly shrink future interest.
func generateReducing(terms LoanTerms, reductions []PrincipalReduction, inAdvance bool) []ScheduleRow {
	n := terms.DurationPeriods
	rate := terms.periodRate()
	ledger := &reductionLedger{reductions: reductions}

	rows := make([]ScheduleRow, 0, n)
	balance := terms.Principal
	for i := 1; i <= n; i++ {
		due := dueDate(terms, i, inAdvance)
		balance = math.Max(0, balance-ledger.appliedBefore(due))

		payment := AnnuityPayment(balance, rate, n-i+1)
		interest := round2(balance * rate)
		principal := round2(payment - interest)
		if i == n || principal > balance {
			principal = round2(balance)
		}
		balance = math.Max(0, round2(balance-principal))

		rows = append(rows, ScheduleRow{
			InstallmentNumber: i,
			DueDate:           due,
			PrincipalAmount:   principal,
			InterestAmount:    interest,
			TotalDue:          round2(principal + interest),
			RunningBalance:    balance,
			Status:            RowStatusPending,
		})
	}
	return rows
}

// generateInterestOnly bills interest-only installments for the configured
// number of periods, then either amortizes the remaining term or balloons the
// outstanding balance onto the final row.
func generateInterestOnly(terms LoanTerms, reductions []PrincipalReduction, inAdvance bool) []ScheduleRow {
	n := terms.DurationPeriods
	rate := terms.periodRate()
	eff := terms.effectiveInterestOnlyPeriods()
	ledger := &reductionLedger{reductions: reductions}

	rows := make([]ScheduleRow, 0, n)
	balance := terms.Principal
	for i := 1; i <= eff; i++ {
		due := dueDate(terms, i, inAdvance)
		balance = math.Max(0, balance-ledger.appliedBefore(due))
		interest := round2(balance * rate)

		row := ScheduleRow{
			InstallmentNumber: i,
			DueDate:           due,
			InterestAmount:    interest,
			TotalDue:          interest,
			RunningBalance:    round2(balance),
			Status:            RowStatusPending,
		}

		if eff == n && i == n {
			// Entire term is interest-only: the principal balloons on the
			// final installment.
			row.PrincipalAmount = round2(balance)
			row.TotalDue = round2(row.PrincipalAmount + interest)
			row.RunningBalance = 0
		}
		rows = append(rows, row)
	}

	if eff < n {
		remaining := n - eff
		for j := 1; j <= remaining; j++ {
			i := eff + j
			due := dueDate(terms, i, inAdvance)
			balance = math.Max(0, balance-ledger.appliedBefore(due))

			payment := AnnuityPayment(balance, rate, remaining-j+1)
			interest := round2(balance * rate)
			principal := round2(payment - interest)
			if j == remaining || principal > balance {
				principal = round2(balance)
			}
			balance = math.Max(0, round2(balance-principal))

			rows = append(rows, ScheduleRow{
				InstallmentNumber: i,
				DueDate:           due,
				PrincipalAmount:   principal,
				InterestAmount:    interest,
				TotalDue:          round2(principal + interest),
				RunningBalance:    balance,
				Status:            RowStatusPending,
			})
		}
	}
	return rows
}

// generateRolledUp accumulates interest over the term without periodic cash
// rows and bills it, together with the outstanding principal, in a single
// installment at the end of the term. Principal is not repaid at rollover, so
// the row keeps the balance outstanding. Twelve monthly interest-only
// continuation rows project ongoing servicing past the term.
func generateRolledUp(terms LoanTerms, reductions []PrincipalReduction) []ScheduleRow {
	n := terms.DurationPeriods
	rate := terms.periodRate()
	ledger := &reductionLedger{reductions: reductions}

	balance := terms.Principal
	var totalInterest float64
	for i := 1; i <= n; i++ {
		balance = math.Max(0, balance-ledger.appliedBefore(terms.periodEnd(i)))
		totalInterest += balance * rate
	}

	endDate := terms.EndDate()
	balance = round2(balance)
	rows := []ScheduleRow{{
		InstallmentNumber: 1,
		DueDate:           endDate,
		PrincipalAmount:   balance,
		InterestAmount:    round2(totalInterest),
		TotalDue:          round2(balance + totalInterest),
		RunningBalance:    balance,
		Status:            RowStatusPending,
	}}

	for m := 1; m <= rolledUpExtensionMonths; m++ {
		due := endDate.AddDate(0, m, 0)
		monthlyRate := EffectiveRate(terms, due) / 100 / 12
		interest := round2(balance * monthlyRate)
		rows = append(rows, ScheduleRow{
			InstallmentNumber: m + 1,
			DueDate:           due,
			InterestAmount:    interest,
			TotalDue:          interest,
			RunningBalance:    balance,
			Status:            RowStatusPending,
			IsExtensionPeriod: true,
		})
	}
	return rows
}

// generateMonthlyFirst emits a stub row on the start date covering the partial
// month at a daily rate, then one installment on the 1st of each month. The
// final installment is truncated to the exact loan end date unless the terms
// ask for a full final period.
func generateMonthlyFirst(terms LoanTerms, reductions []PrincipalReduction) []ScheduleRow {
	n := terms.DurationPeriods
	dailyRate := terms.AnnualRatePercent / 100 / 365
	monthlyRate := terms.AnnualRatePercent / 100 / 12
	loanEnd := terms.StartDate.AddDate(0, n, 0)
	firstOfMonth := firstOfNextMonth(terms.StartDate)
	ledger := &reductionLedger{reductions: reductions}

	balance := terms.Principal
	stubInterest := round2(balance * dailyRate * daysBetween(terms.StartDate, firstOfMonth))
	rows := []ScheduleRow{{
		InstallmentNumber: 1,
		DueDate:           terms.StartDate,
		InterestAmount:    stubInterest,
		TotalDue:          stubInterest,
		RunningBalance:    round2(balance),
		Status:            RowStatusPending,
	}}

	monthDue := func(k int) time.Time { return firstOfMonth.AddDate(0, k-1, 0) }

	// truncate recomputes the final installment against the exact loan end
	// date: interest for the days between the installment's 1st-of-month slot
	// and the loan end, and the whole outstanding balance as principal.
	truncate := func(row *ScheduleRow, from time.Time, outstanding float64) {
		row.DueDate = loanEnd
		row.InterestAmount = round2(outstanding * dailyRate * daysBetween(from, loanEnd))
		row.PrincipalAmount = round2(outstanding)
		row.TotalDue = round2(row.PrincipalAmount + row.InterestAmount)
		row.RunningBalance = 0
	}

	switch terms.InterestType {
	case InterestTypeInterestOnly:
		eff := terms.effectiveInterestOnlyPeriods()
		for k := 1; k <= eff; k++ {
			due := monthDue(k)
			balance = math.Max(0, balance-ledger.appliedBefore(due))
			interest := round2(balance * monthlyRate)
			row := ScheduleRow{
				InstallmentNumber: k + 1,
				DueDate:           due,
				InterestAmount:    interest,
				TotalDue:          interest,
				RunningBalance:    round2(balance),
				Status:            RowStatusPending,
			}
			if eff == n && k == n {
				if terms.ExtendForFullPeriod {
					row.PrincipalAmount = round2(balance)
					row.TotalDue = round2(row.PrincipalAmount + interest)
					row.RunningBalance = 0
				} else {
					truncate(&row, monthDue(k), balance)
				}
			}
			rows = append(rows, row)
		}
		if eff < n {
			remaining := n - eff
			for j := 1; j <= remaining; j++ {
				k := eff + j
				due := monthDue(k)
				balance = math.Max(0, balance-ledger.appliedBefore(due))

				payment := AnnuityPayment(balance, monthlyRate, remaining-j+1)
				interest := round2(balance * monthlyRate)
				principal := round2(payment - interest)
				if j == remaining || principal > balance {
					principal = round2(balance)
				}

				row := ScheduleRow{
					InstallmentNumber: k + 1,
					DueDate:           due,
					PrincipalAmount:   principal,
					InterestAmount:    interest,
					TotalDue:          round2(principal + interest),
					RunningBalance:    math.Max(0, round2(balance-principal)),
					Status:            RowStatusPending,
				}
				if j == remaining && !terms.ExtendForFullPeriod {
					truncate(&row, monthDue(k), balance)
				}
				balance = row.RunningBalance
				rows = append(rows, row)
			}
		}

	default: // Flat and Reducing share the truncated monthly walk
		principalPer := round2(terms.Principal / float64(n))
		for k := 1; k <= n; k++ {
			due := monthDue(k)
			balance = math.Max(0, balance-ledger.appliedBefore(due))

			var interest, principal float64
			if terms.InterestType == InterestTypeFlat {
				interest = round2(terms.Principal * monthlyRate)
				principal = principalPer
			} else {
				payment := AnnuityPayment(balance, monthlyRate, n-k+1)
				interest = round2(balance * monthlyRate)
				principal = round2(payment - interest)
			}
			if k == n || principal > balance {
				principal = round2(balance)
			}

			row := ScheduleRow{
				InstallmentNumber: k + 1,
				DueDate:           due,
				PrincipalAmount:   principal,
				InterestAmount:    interest,
				TotalDue:          round2(principal + interest),
				RunningBalance:    math.Max(0, round2(balance-principal)),
				Status:            RowStatusPending,
			}
			if k == n && !terms.ExtendForFullPeriod {
				truncate(&row, monthDue(k), balance)
			}
			balance = row.RunningBalance
			rows = append(rows, row)
		}
	}
	return rows
}
