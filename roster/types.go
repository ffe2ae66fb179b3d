/*
Package roster provides the scheduling and leave-management core for the
clinic off-schedule manager.

PURPOSE:
  This package contains the two pure computational components of the system:
  the leave accrual calculator (accrual.go) and the month auto-scheduler
  (scheduler.go), plus the types they share. Everything here is synchronous,
  deterministic (given an ordering function), and free of I/O - the HTTP and
  storage layers call in with plain values and persist whatever comes back.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: roster record with entry date, renewal anchor, and work pattern
  - LeaveRequest: a dated, status-tracked time-off request
  - ScheduleEntry: one grid cell of the daily 24-slot schedule
  - AccrualResult: the computed leave entitlement breakdown
  - CompanyHoliday: a clinic-wide non-working date

DESIGN PRINCIPLES:
  1. Degenerate over loud: missing inputs yield zero-value results, not errors
  2. Precision: fractional leave math uses decimal.Decimal, never float math
  3. Ephemeral output: schedule entries are proposals until the caller saves

SEE ALSO:
  - period.go: accrual-period resolution shared by balance and usage filtering
  - accrual.go: entitlement calculation
  - scheduler.go: staff-to-doctor assignment heuristic
*/
package roster

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// Employee is a clinic staff record as the core components consume it.
// Adjustment and CarriedOverCnt are settlement fields written by admin
// operations and read back by the accrual calculator.
type Employee struct {
	ID             int64
	Name           string
	EntryDate      *Date // nil = accrual cannot be computed
	RenewalDate    *Date // optional anchor; month/day define the annual cycle
	WorkDays       int   // contracted work days per week, 1-7, default 5
	Adjustment     float64
	CarriedOverCnt float64 // confirmed carry-over, persisted by settlement
	Department     string
	Position       string
	FixedHolidays  []time.Weekday // personal fixed weekly days off
	Retired        bool
}

// HasFixedHoliday reports whether the weekday is one of the employee's
// personal fixed days off.
func (e Employee) HasFixedHoliday(wd time.Weekday) bool {
	for _, h := range e.FixedHolidays {
		if h == wd {
			return true
		}
	}
	return false
}

// IsClinical reports whether the employee belongs to a clinical category,
// i.e. the department or position name contains the marker.
func (e Employee) IsClinical(marker string) bool {
	if marker == "" {
		return true
	}
	return strings.Contains(e.Department, marker) || strings.Contains(e.Position, marker)
}

// =============================================================================
// LEAVE REQUEST
// =============================================================================

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// LeaveRequest is a time-off request over an ordered set of dates.
// The dates need not be contiguous. Approved requests are immutable
// except for administrative deletion.
type LeaveRequest struct {
	ID         int64
	EmployeeID int64
	Dates      []Date
	Status     LeaveStatus
	Reason     string
	CreatedAt  time.Time
}

// Covers reports whether the request includes the given date.
func (lr LeaveRequest) Covers(d Date) bool {
	for _, ld := range lr.Dates {
		if ld.Equal(d) {
			return true
		}
	}
	return false
}

// =============================================================================
// SCHEDULE ENTRY
// =============================================================================

type EntryStatus string

const (
	EntryWorking EntryStatus = "working"
	EntryOff     EntryStatus = "off"
)

// GridSlots is the number of on-screen slots per day.
const GridSlots = 24

// SpacerID values occupy the reserved negative employee-ID range and mark
// deliberately blank grid slots.
const spacerIDMax int64 = -1

// IsSpacerID reports whether an employee identifier denotes a spacer slot
// rather than a real employee.
func IsSpacerID(employeeID int64) bool { return employeeID <= spacerIDMax }

// ScheduleEntry is one cell of a day's 24-slot grid.
// Invariant: at most one "working" entry per (date, employee) pair.
type ScheduleEntry struct {
	ID         string // numeric once persisted, "tmp-..." until then
	Date       Date
	EmployeeID int64 // negative = spacer
	Status     EntryStatus
	GridPos    int // 0-23
	SortOrder  int
}

// NewTempEntryID returns an identifier for a not-yet-persisted entry,
// distinguishable from the numeric identifiers the store assigns.
func NewTempEntryID() string { return "tmp-" + uuid.NewString() }

// IsTempEntryID reports whether the identifier belongs to an unsaved entry.
func IsTempEntryID(id string) bool { return strings.HasPrefix(id, "tmp-") }

// FormatEntryID renders a persisted numeric identifier.
func FormatEntryID(id int64) string { return strconv.FormatInt(id, 10) }

// =============================================================================
// COMPANY HOLIDAY
// =============================================================================

// CompanyHoliday is a clinic-wide non-working date, independent of any
// individual employee's schedule.
type CompanyHoliday struct {
	ID   int64
	Date Date
	Name string
}

// HolidaySet indexes holidays by ISO date for O(1) lookup during scheduling.
type HolidaySet map[string]bool

func NewHolidaySet(holidays []CompanyHoliday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set[h.Date.String()] = true
	}
	return set
}

func (hs HolidaySet) Contains(d Date) bool { return hs[d.String()] }

// =============================================================================
// ACCRUAL RESULT
// =============================================================================

// AccrualResult is the computed leave entitlement for one employee at one
// reference date. It is recomputed on every read and never persisted.
//
// Legal is the work-day-prorated entitlement floor; Final adds the manual
// adjustment and the confirmed carry-over. CarriedOver is the estimated
// pending fractional carry-over explained by Note - informational only,
// distinct from the persisted confirmed figure.
type AccrualResult struct {
	Legal          int
	Adjustment     float64
	CarriedOverCnt float64
	Final          float64
	CarriedOver    float64
	Note           string
	PeriodStart    string
	PeriodEnd      string
}
