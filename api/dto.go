/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the roster domain model from the external API contract: dates travel as
  ISO strings, weekdays as integers, and schedule entries keep their string
  identifiers so the frontend can tell persisted rows (numeric) from
  unsaved ones ("tmp-...").

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - roster/types.go: The domain shapes these mirror
*/
package api

import (
	"time"

	"github.com/SunQthecodemaker/off-schedule-manager-sub000/roster"
)

// =============================================================================
// EMPLOYEE
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	EntryDate      *string `json:"entry_date,omitempty"`
	RenewalDate    *string `json:"renewal_date,omitempty"`
	WorkDays       int     `json:"work_days"`
	Adjustment     float64 `json:"adjustment"`
	CarriedOverCnt float64 `json:"carried_over_cnt"`
	Department     string  `json:"department"`
	Position       string  `json:"position"`
	FixedHolidays  []int   `json:"fixed_holidays"`
	Retired        bool    `json:"retired"`
}

// SaveEmployeeRequest creates or updates an employee.
type SaveEmployeeRequest struct {
	Name           string  `json:"name"`
	EntryDate      *string `json:"entry_date"`
	RenewalDate    *string `json:"renewal_date"`
	WorkDays       int     `json:"work_days"`
	Adjustment     float64 `json:"adjustment"`
	CarriedOverCnt float64 `json:"carried_over_cnt"`
	Department     string  `json:"department"`
	Position       string  `json:"position"`
	FixedHolidays  []int   `json:"fixed_holidays"`
	Retired        bool    `json:"retired"`
}

// SettlementRequest writes the settlement fields of one employee.
type SettlementRequest struct {
	EmployeeID  int64   `json:"employee_id"`
	Adjustment  float64 `json:"adjustment"`
	CarriedOver float64 `json:"carried_over"`
}

// =============================================================================
// BALANCE
// =============================================================================

// AccrualDTO mirrors roster.AccrualResult.
type AccrualDTO struct {
	Legal          int     `json:"legal"`
	Adjustment     float64 `json:"adjustment"`
	CarriedOverCnt float64 `json:"carried_over_cnt"`
	Final          float64 `json:"final"`
	CarriedOver    float64 `json:"carried_over"`
	Note           string  `json:"note,omitempty"`
	PeriodStart    string  `json:"period_start,omitempty"`
	PeriodEnd      string  `json:"period_end,omitempty"`
}

// BalanceDTO is the accrual result plus usage within the current period.
type BalanceDTO struct {
	EmployeeID int64      `json:"employee_id"`
	AsOf       string     `json:"as_of"`
	Accrual    AccrualDTO `json:"accrual"`
	Used       int        `json:"used"`
	Remaining  float64    `json:"remaining"`
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// LeaveRequestDTO represents a leave request in API responses.
type LeaveRequestDTO struct {
	ID         int64    `json:"id"`
	EmployeeID int64    `json:"employee_id"`
	Dates      []string `json:"dates"`
	Status     string   `json:"status"`
	Reason     string   `json:"reason,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

// SubmitLeaveRequest submits a new leave request (pending).
type SubmitLeaveRequest struct {
	EmployeeID int64    `json:"employee_id"`
	Dates      []string `json:"dates"`
	Reason     string   `json:"reason"`
}

// =============================================================================
// SCHEDULE
// =============================================================================

// ScheduleEntryDTO is one grid cell. Spacer is derived from the reserved
// negative employee-ID range.
type ScheduleEntryDTO struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	EmployeeID int64  `json:"employee_id"`
	Status     string `json:"status"`
	GridPos    int    `json:"grid_pos"`
	SortOrder  int    `json:"sort_order"`
	Spacer     bool   `json:"spacer"`
}

// ReplaceScheduleRequest replaces one month's entries wholesale.
type ReplaceScheduleRequest struct {
	Entries []ScheduleEntryDTO `json:"entries"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

type HolidayDTO struct {
	ID   int64  `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toEmployeeDTO(e roster.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:             e.ID,
		Name:           e.Name,
		EntryDate:      dateStrPtr(e.EntryDate),
		RenewalDate:    dateStrPtr(e.RenewalDate),
		WorkDays:       e.WorkDays,
		Adjustment:     e.Adjustment,
		CarriedOverCnt: e.CarriedOverCnt,
		Department:     e.Department,
		Position:       e.Position,
		FixedHolidays:  weekdaysToInts(e.FixedHolidays),
		Retired:        e.Retired,
	}
}

func (r SaveEmployeeRequest) toEmployee(id int64) (roster.Employee, error) {
	entry, err := parseDatePtr(r.EntryDate)
	if err != nil {
		return roster.Employee{}, err
	}
	renewal, err := parseDatePtr(r.RenewalDate)
	if err != nil {
		return roster.Employee{}, err
	}

	workDays := r.WorkDays
	if workDays == 0 {
		workDays = 5
	}

	return roster.Employee{
		ID:             id,
		Name:           r.Name,
		EntryDate:      entry,
		RenewalDate:    renewal,
		WorkDays:       workDays,
		Adjustment:     r.Adjustment,
		CarriedOverCnt: r.CarriedOverCnt,
		Department:     r.Department,
		Position:       r.Position,
		FixedHolidays:  intsToWeekdays(r.FixedHolidays),
		Retired:        r.Retired,
	}, nil
}

func toLeaveRequestDTO(req roster.LeaveRequest) LeaveRequestDTO {
	dates := make([]string, 0, len(req.Dates))
	for _, d := range req.Dates {
		dates = append(dates, d.String())
	}
	return LeaveRequestDTO{
		ID:         req.ID,
		EmployeeID: req.EmployeeID,
		Dates:      dates,
		Status:     string(req.Status),
		Reason:     req.Reason,
		CreatedAt:  req.CreatedAt.Format(time.RFC3339),
	}
}

func toScheduleEntryDTO(e roster.ScheduleEntry) ScheduleEntryDTO {
	return ScheduleEntryDTO{
		ID:         e.ID,
		Date:       e.Date.String(),
		EmployeeID: e.EmployeeID,
		Status:     string(e.Status),
		GridPos:    e.GridPos,
		SortOrder:  e.SortOrder,
		Spacer:     roster.IsSpacerID(e.EmployeeID),
	}
}

func (d ScheduleEntryDTO) toEntry() (roster.ScheduleEntry, error) {
	date, err := roster.ParseDate(d.Date)
	if err != nil {
		return roster.ScheduleEntry{}, err
	}
	status := roster.EntryStatus(d.Status)
	if status == "" {
		status = roster.EntryWorking
	}
	return roster.ScheduleEntry{
		ID:         d.ID,
		Date:       date,
		EmployeeID: d.EmployeeID,
		Status:     status,
		GridPos:    d.GridPos,
		SortOrder:  d.SortOrder,
	}, nil
}

func toAccrualDTO(a roster.AccrualResult) AccrualDTO {
	return AccrualDTO{
		Legal:          a.Legal,
		Adjustment:     a.Adjustment,
		CarriedOverCnt: a.CarriedOverCnt,
		Final:          a.Final,
		CarriedOver:    a.CarriedOver,
		Note:           a.Note,
		PeriodStart:    a.PeriodStart,
		PeriodEnd:      a.PeriodEnd,
	}
}

func dateStrPtr(d *roster.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseDatePtr(s *string) (*roster.Date, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := roster.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func weekdaysToInts(weekdays []time.Weekday) []int {
	out := make([]int, 0, len(weekdays))
	for _, wd := range weekdays {
		out = append(out, int(wd))
	}
	return out
}

func intsToWeekdays(ints []int) []time.Weekday {
	out := make([]time.Weekday, 0, len(ints))
	for _, i := range ints {
		out = append(out, time.Weekday(i))
	}
	return out
}
