/*
accrual.go - Leave entitlement calculation

PURPOSE:
  Computes an employee's annual-leave entitlement at a reference date:
  prorated legal days, manual adjustment, confirmed carry-over, the final
  balance, and the accrual period the figures apply to. Pure and
  deterministic - same inputs, same result, no I/O.

THE ACCRUAL MODEL:
  First year:
    Before the first anniversary of the entry date, leave accrues one day
    per whole month of service. No annual grant yet.

  From the first anniversary:
    A standard 15-day annual grant, growing by one day for every two full
    years of further tenure, clamped to 25 days.

  Renewal anchor:
    Clinics often align everyone to a common renewal date. When an employee
    has one, the annual cycle runs renewal-to-renewal instead of
    anniversary-to-anniversary. If the first anniversary lands inside the
    current cycle, the cycle is split: monthly accrual up to the
    anniversary plus a day-exact prorated share of the 15-day grant for the
    remainder. The fractional remainder is not granted now - it is reported
    as pending carry-over with a note naming the cycle's end date.

  Work-day proration:
    Part-time staff receive entitlement x workDays/5. The integer floor is
    the "legal" figure; the fraction again lands in the pending carry-over
    note, now citing the next renewal date.

DEGENERATE INPUTS:
  An employee without an entry date yields the zero AccrualResult. Callers
  check for that shape; nothing here returns an error.

SEE ALSO:
  - period.go: PeriodFor, the single source of cycle boundaries
  - types.go: AccrualResult field meanings
*/
package roster

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// annualGrantDays is the standard grant from the first anniversary on.
	annualGrantDays = 15

	// maxEntitlementDays caps tenure growth before work-day proration.
	maxEntitlementDays = 25

	// standardWorkWeek is the full-time work-days-per-week baseline.
	standardWorkWeek = 5
)

// Calculate returns the employee's entitlement at the reference date.
// A zero ref defaults to today. An employee without an entry date yields
// the zero result.
func Calculate(emp Employee, ref Date) AccrualResult {
	if emp.EntryDate == nil {
		return AccrualResult{}
	}
	if ref.IsZero() {
		ref = Today()
	}

	entry := *emp.EntryDate
	anniversary := entry.AddYears(1)
	period, _ := PeriodFor(emp, ref)

	var entitlement decimal.Decimal
	var pending decimal.Decimal
	note := ""

	switch {
	case ref.Before(anniversary):
		// Monthly accrual only; the annual grant starts at the anniversary.
		entitlement = decimal.NewFromInt(int64(WholeMonthsBetween(entry, ref)))

	case emp.RenewalDate != nil && period.Contains(anniversary):
		// The anniversary splits the current renewal cycle: whole months
		// up to it, then a day-exact share of the annual grant for the
		// rest of the cycle.
		months := WholeMonthsBetween(period.Start, anniversary)
		cycleDays := DaysBetween(period.Start, period.NextStart())
		remainDays := DaysBetween(anniversary, period.NextStart())

		share := decimal.NewFromInt(annualGrantDays).
			Mul(decimal.NewFromInt(int64(remainDays))).
			Div(decimal.NewFromInt(int64(cycleDays)))
		whole := share.Floor()

		entitlement = decimal.NewFromInt(int64(months)).Add(whole)
		if frac := share.Sub(whole); frac.IsPositive() {
			pending = frac
			note = carryOverNote(frac, period.End)
		}

	case emp.RenewalDate != nil:
		// Anniversary predates the cycle: full grant plus one extra day
		// per two further years of tenure.
		years := WholeYearsBetween(anniversary, period.Start)
		entitlement = decimal.NewFromInt(int64(annualGrantDays + years/2))

	default:
		// No renewal anchor: the same tenure rule runs directly against
		// the anniversary.
		years := WholeYearsBetween(anniversary, ref)
		entitlement = decimal.NewFromInt(int64(annualGrantDays + years/2))
	}

	// Clamp before proration.
	if entitlement.IsNegative() {
		entitlement = decimal.Zero
	}
	if limit := decimal.NewFromInt(maxEntitlementDays); entitlement.GreaterThan(limit) {
		entitlement = limit
	}

	// Re-prorate for part-time work patterns. The fraction replaces any
	// month-split figure in the pending carry-over note.
	workDays := emp.WorkDays
	if workDays == 0 {
		workDays = standardWorkWeek
	}
	prorated := entitlement.
		Mul(decimal.NewFromInt(int64(workDays))).
		Div(decimal.NewFromInt(standardWorkWeek))
	legal := prorated.Floor()
	if frac := prorated.Sub(legal); frac.IsPositive() {
		pending = frac
		note = carryOverNote(frac, period.NextStart())
	}

	legalDays := int(legal.IntPart())
	carried, _ := pending.Round(2).Float64()

	return AccrualResult{
		Legal:          legalDays,
		Adjustment:     emp.Adjustment,
		CarriedOverCnt: emp.CarriedOverCnt,
		Final:          float64(legalDays) + emp.Adjustment + emp.CarriedOverCnt,
		CarriedOver:    carried,
		Note:           note,
		PeriodStart:    period.Start.String(),
		PeriodEnd:      period.End.String(),
	}
}

func carryOverNote(frac decimal.Decimal, at Date) string {
	return fmt.Sprintf("%s day(s) carry over at %s", frac.Round(2).String(), at.String())
}
