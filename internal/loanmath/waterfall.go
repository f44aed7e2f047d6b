package loanmath

import (
	"math"
	"sort"
)

// RowUpdate records the allocation applied to a single schedule row. Rows that
// received nothing are never emitted.
type RowUpdate struct {
	InstallmentNumber int
	InterestApplied   float64
	PrincipalApplied  float64
	PrincipalPaid     float64
	InterestPaid      float64
	Status            RowStatus
}

// WaterfallResult aggregates a payment allocation across the schedule.
type WaterfallResult struct {
	Updates            []RowUpdate
	RemainingPayment   float64
	PrincipalReduction float64
	CreditAmount       float64
}

// allocation accumulates per-row applied amounts keyed by installment number
// while preserving first-touch order.
type allocation struct {
	rows    []*ScheduleRow
	order   []int
	applied map[int]*RowUpdate
}

func newAllocation(rows []*ScheduleRow) *allocation {
	return &allocation{rows: rows, applied: make(map[int]*RowUpdate)}
}

func (a *allocation) add(row *ScheduleRow, interest, principal float64) {
	u, ok := a.applied[row.InstallmentNumber]
	if !ok {
		u = &RowUpdate{InstallmentNumber: row.InstallmentNumber}
		a.applied[row.InstallmentNumber] = u
		a.order = append(a.order, row.InstallmentNumber)
	}
	u.InterestApplied = round2(u.InterestApplied + interest)
	u.PrincipalApplied = round2(u.PrincipalApplied + principal)

	row.InterestPaid = round2(row.InterestPaid + interest)
	row.PrincipalPaid = round2(row.PrincipalPaid + principal)
	row.RecalculateStatus()

	u.InterestPaid = row.InterestPaid
	u.PrincipalPaid = row.PrincipalPaid
	u.Status = row.Status
}

func (a *allocation) updates() []RowUpdate {
	updates := make([]RowUpdate, 0, len(a.order))
	for _, n := range a.order {
		updates = append(updates, *a.applied[n])
	}
	return updates
}

// sortedByDueDate returns the rows oldest due date first. Ties keep the input
// order so repeated runs over the same snapshot allocate identically.
func sortedByDueDate(rows []*ScheduleRow) []*ScheduleRow {
	sorted := make([]*ScheduleRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DueDate.Before(sorted[j].DueDate)
	})
	return sorted
}

// ApplyPaymentWaterfall allocates a payment (plus any existing credit balance)
// across schedule rows, oldest due date first, interest before principal on
// each row. Whatever survives a full sweep is handled per the overpayment
// option: swept again into remaining principal and reported as a principal
// reduction, or held as credit. The rows are mutated in place; the returned
// updates list the rows that actually received money.
//
// A zero payment with zero credit is a no-op: no updates, nothing remaining.
func ApplyPaymentWaterfall(payment float64, rows []*ScheduleRow, existingCredit float64, option OverpaymentOption) WaterfallResult {
	sorted := sortedByDueDate(rows)
	alloc := newAllocation(rows)
	pool := round2(payment + existingCredit)

	for _, row := range sorted {
		if pool <= 0 {
			break
		}
		if row.Status == RowStatusPaid {
			continue
		}
		interest := math.Min(pool, row.InterestDue())
		pool = round2(pool - interest)
		principal := math.Min(pool, row.PrincipalDue())
		pool = round2(pool - principal)
		if interest > 0 || principal > 0 {
			alloc.add(row, interest, principal)
		}
	}

	result := WaterfallResult{}
	if pool > 0 {
		if option == OverpaymentReducePrincipal {
			// Sweep again: anything still owed as principal (rows paid within
			// tolerance can carry a residual) absorbs the pool first, then the
			// rest is reported as PrincipalReduction on the payment record.
			for _, row := range sorted {
				if pool <= 0 {
					break
				}
				principal := math.Min(pool, row.PrincipalDue())
				if principal <= 0 {
					continue
				}
				pool = round2(pool - principal)
				alloc.add(row, 0, principal)
				result.PrincipalReduction = round2(result.PrincipalReduction + principal)
			}
			result.PrincipalReduction = round2(result.PrincipalReduction + pool)
		} else {
			result.CreditAmount = pool
		}
		pool = 0
	}

	result.Updates = alloc.updates()
	result.RemainingPayment = pool
	return result
}

// ApplyManualPayment allocates an explicitly split payment: the interest
// amount sweeps unpaid interest oldest first, then the principal amount plus
// any existing credit sweeps unpaid principal. Updates touching both pools are
// merged per row. Leftover principal follows the overpayment option; leftover
// interest is always held as credit.
func ApplyManualPayment(interestAmount, principalAmount float64, rows []*ScheduleRow, existingCredit float64, option OverpaymentOption) WaterfallResult {
	sorted := sortedByDueDate(rows)
	alloc := newAllocation(rows)

	interestPool := round2(interestAmount)
	for _, row := range sorted {
		if interestPool <= 0 {
			break
		}
		interest := math.Min(interestPool, row.InterestDue())
		if interest <= 0 {
			continue
		}
		interestPool = round2(interestPool - interest)
		alloc.add(row, interest, 0)
	}

	principalPool := round2(principalAmount + existingCredit)
	for _, row := range sorted {
		if principalPool <= 0 {
			break
		}
		principal := math.Min(principalPool, row.PrincipalDue())
		if principal <= 0 {
			continue
		}
		principalPool = round2(principalPool - principal)
		alloc.add(row, 0, principal)
	}

	result := WaterfallResult{Updates: alloc.updates()}
	if principalPool > 0 {
		if option == OverpaymentReducePrincipal {
			result.PrincipalReduction = principalPool
		} else {
			result.CreditAmount = principalPool
		}
	}
	if interestPool > 0 {
		result.CreditAmount = round2(result.CreditAmount + interestPool)
	}
	return result
}
