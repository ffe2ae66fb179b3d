package roster

// =============================================================================
// ACCRUAL PERIOD - The annual cycle leave is granted and consumed against
// =============================================================================

// Period is an inclusive date range [Start, End] covering one accrual cycle.
// The start is the renewal (or anniversary) date; the end is the day before
// the next renewal.
type Period struct {
	Start Date
	End   Date
}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// NextStart returns the first day of the following period, i.e. the next
// renewal date.
func (p Period) NextStart() Date { return p.End.AddDays(1) }

// PeriodFor resolves the accrual period containing the reference date.
//
// The cycle is anchored on the employee's renewal date when one is set,
// otherwise on the entry-date anniversary. This is the single source of
// period boundaries: the accrual calculator uses it for entitlement and
// callers use it to decide which leave-usage dates count toward the
// current cycle.
//
// Returns false when the employee has no entry date.
func PeriodFor(emp Employee, ref Date) (Period, bool) {
	if emp.EntryDate == nil {
		return Period{}, false
	}

	anchor := *emp.EntryDate
	if emp.RenewalDate != nil {
		anchor = *emp.RenewalDate
	}

	// Project the anchor's month/day into the reference year; if the
	// reference date is earlier, the cycle started the year before.
	start := anchor.WithYear(ref.Year())
	if ref.Before(start) {
		start = anchor.WithYear(ref.Year() - 1)
	}

	return Period{Start: start, End: start.AddYears(1).AddDays(-1)}, true
}

// UsedInPeriod counts approved leave dates that fall inside the employee's
// current accrual period. Pending and rejected requests never count.
func UsedInPeriod(emp Employee, requests []LeaveRequest, ref Date) int {
	period, ok := PeriodFor(emp, ref)
	if !ok {
		return 0
	}

	used := 0
	for _, req := range requests {
		if req.EmployeeID != emp.ID || req.Status != LeaveApproved {
			continue
		}
		for _, d := range req.Dates {
			if period.Contains(d) {
				used++
			}
		}
	}
	return used
}
