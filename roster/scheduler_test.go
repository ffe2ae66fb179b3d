package roster_test

import (
	"testing"
	"time"

	"github.com/SunQthecodemaker/off-schedule-manager-sub000/roster"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fourDoctors is a roster where nobody's day off falls on a weekday the
// tests schedule, so the on-duty set stays constant.
func fourDoctors(capacity int) []roster.Supervisor {
	return []roster.Supervisor{
		{Name: "Dr. North", Capacity: capacity, DayOff: time.Sunday},
		{Name: "Dr. East", Capacity: capacity, DayOff: time.Sunday},
		{Name: "Dr. South", Capacity: capacity, DayOff: time.Sunday},
		{Name: "Dr. West", Capacity: capacity, DayOff: time.Sunday},
	}
}

func clinicalStaff(n int) []roster.Employee {
	staff := make([]roster.Employee, 0, n)
	for i := 0; i < n; i++ {
		staff = append(staff, roster.Employee{
			ID:         int64(i + 1),
			Department: "Clinical",
			WorkDays:   5,
		})
	}
	return staff
}

func entriesOn(entries []roster.ScheduleEntry, day roster.Date) []roster.ScheduleEntry {
	var out []roster.ScheduleEntry
	for _, e := range entries {
		if e.Date.Equal(day) {
			out = append(out, e)
		}
	}
	return out
}

// =============================================================================
// SCHEDULER TESTS
// =============================================================================

func TestGenerateMonth_DistributesAcrossDoctors(t *testing.T) {
	// GIVEN: 4 on-duty doctors with capacity 5 and 18 eligible clinical
	//        staff, weekly caps untouched
	// WHEN: Generating a single schedulable day
	// THEN: Exactly 18 assignments, each doctor receiving 4 or 5

	s := roster.NewScheduler(roster.SchedulerConfig{
		Supervisors:    fourDoctors(5),
		ClosedWeekday:  time.Sunday,
		WeeklyCap:      5,
		ClinicalMarker: "Clinical",
	})

	// June 2024: restrict to one day by marking the rest as holidays.
	holidays := make(roster.HolidaySet)
	for d := roster.NewDate(2024, time.June, 1); d.BeforeOrEqual(roster.NewDate(2024, time.June, 30)); d = d.AddDays(1) {
		if d.Day() != 3 { // Monday June 3
			holidays[d.String()] = true
		}
	}

	entries := s.GenerateMonth(2024, time.June, clinicalStaff(18), nil, holidays)

	if len(entries) != 18 {
		t.Fatalf("expected 18 assignments, got %d", len(entries))
	}

	perDoctor := make(map[int]int) // block index -> count
	seen := make(map[int64]bool)
	for _, e := range entries {
		if e.Status != roster.EntryWorking {
			t.Errorf("expected working status, got %q", e.Status)
		}
		if e.GridPos < 0 || e.GridPos >= roster.GridSlots {
			t.Errorf("grid position %d out of range", e.GridPos)
		}
		if !roster.IsTempEntryID(e.ID) {
			t.Errorf("proposed entry should carry a temp ID, got %q", e.ID)
		}
		if seen[e.EmployeeID] {
			t.Errorf("employee %d assigned twice on one day", e.EmployeeID)
		}
		seen[e.EmployeeID] = true
		perDoctor[e.GridPos/(roster.GridSlots/4)]++
	}

	for doctor, count := range perDoctor {
		if count < 4 || count > 5 {
			t.Errorf("doctor %d received %d assignees, want 4..5", doctor, count)
		}
	}
}

func TestGenerateMonth_SkipsClosedAndHolidayDays(t *testing.T) {
	// GIVEN: Sunday closed and June 3 a company holiday
	// WHEN: Generating June 2024
	// THEN: No entries on Sundays or the holiday

	s := roster.NewScheduler(roster.SchedulerConfig{
		Supervisors:    fourDoctors(5),
		ClosedWeekday:  time.Sunday,
		ClinicalMarker: "Clinical",
	})
	holidays := roster.NewHolidaySet([]roster.CompanyHoliday{
		{Date: roster.NewDate(2024, time.June, 3), Name: "Clinic anniversary"},
	})

	entries := s.GenerateMonth(2024, time.June, clinicalStaff(4), nil, holidays)

	for _, e := range entries {
		if e.Date.Weekday() == time.Sunday {
			t.Errorf("entry generated on closed Sunday %s", e.Date)
		}
		if e.Date.Equal(roster.NewDate(2024, time.June, 3)) {
			t.Errorf("entry generated on company holiday")
		}
	}
	if len(entries) == 0 {
		t.Fatal("expected entries on open days")
	}
}

func TestGenerateMonth_EligibilityFilters(t *testing.T) {
	// GIVEN: A retired employee, one on approved leave, one with a fixed
	//        Monday holiday, and one non-clinical
	// WHEN: Generating Monday June 3
	// THEN: None of them is assigned

	s := roster.NewScheduler(roster.SchedulerConfig{
		Supervisors:    fourDoctors(5),
		ClosedWeekday:  time.Sunday,
		ClinicalMarker: "Clinical",
	})

	monday := roster.NewDate(2024, time.June, 3)
	staff := []roster.Employee{
		{ID: 1, Department: "Clinical"},
		{ID: 2, Department: "Clinical", Retired: true},
		{ID: 3, Department: "Clinical"}, // on leave below
		{ID: 4, Department: "Clinical", FixedHolidays: []time.Weekday{time.Monday}},
		{ID: 5, Department: "Billing"},
	}
	approved := []roster.LeaveRequest{
		{ID: 1, EmployeeID: 3, Status: roster.LeaveApproved, Dates: []roster.Date{monday}},
	}

	holidays := make(roster.HolidaySet)
	for d := roster.NewDate(2024, time.June, 1); d.BeforeOrEqual(roster.NewDate(2024, time.June, 30)); d = d.AddDays(1) {
		if !d.Equal(monday) {
			holidays[d.String()] = true
		}
	}

	entries := s.GenerateMonth(2024, time.June, staff, approved, holidays)

	if len(entries) != 1 || entries[0].EmployeeID != 1 {
		t.Fatalf("expected only employee 1 assigned, got %+v", entries)
	}
}

func TestGenerateMonth_WeeklyCapExcludes(t *testing.T) {
	// GIVEN: A weekly cap of 2 and a Monday-anchored week of open days
	// WHEN: Generating a month with one eligible employee
	// THEN: The employee works at most 2 days per Monday-anchored week

	s := roster.NewScheduler(roster.SchedulerConfig{
		Supervisors:    fourDoctors(5),
		ClosedWeekday:  time.Sunday,
		WeeklyCap:      2,
		ClinicalMarker: "Clinical",
	})

	entries := s.GenerateMonth(2024, time.June, clinicalStaff(1), nil, nil)

	perWeek := make(map[string]int) // Monday ISO date -> worked days
	for _, e := range entries {
		monday := e.Date
		for monday.Weekday() != time.Monday {
			monday = monday.AddDays(-1)
		}
		perWeek[monday.String()]++
	}
	if len(perWeek) == 0 {
		t.Fatal("expected some working days")
	}
	for week, worked := range perWeek {
		if worked > 2 {
			t.Errorf("week of %s: worked %d days, cap is 2", week, worked)
		}
	}
}

func TestGenerateMonth_RotationAdvancesDaily(t *testing.T) {
	// GIVEN: A constant pool and constant on-duty set
	// WHEN: Comparing two consecutive days
	// THEN: The first-assigned doctor differs (rotation advanced by one)

	s := roster.NewScheduler(roster.SchedulerConfig{
		Supervisors:    fourDoctors(5),
		ClosedWeekday:  time.Sunday,
		ClinicalMarker: "Clinical",
	})

	entries := s.GenerateMonth(2024, time.June, clinicalStaff(1), nil, nil)

	mon := entriesOn(entries, roster.NewDate(2024, time.June, 3))
	tue := entriesOn(entries, roster.NewDate(2024, time.June, 4))
	if len(mon) != 1 || len(tue) != 1 {
		t.Fatalf("expected one assignment per day, got %d and %d", len(mon), len(tue))
	}

	blockSize := roster.GridSlots / 4
	if mon[0].GridPos/blockSize == tue[0].GridPos/blockSize {
		t.Errorf("rotation did not advance: doctor %d on both days", mon[0].GridPos/blockSize)
	}
}

func TestGenerateMonth_AllDoctorsFull(t *testing.T) {
	// GIVEN: 4 doctors with capacity 1 and 6 eligible staff
	// WHEN: Generating a day
	// THEN: Only 4 assignments; the overflow staff stay unassigned

	s := roster.NewScheduler(roster.SchedulerConfig{
		Supervisors:    fourDoctors(1),
		ClosedWeekday:  time.Sunday,
		ClinicalMarker: "Clinical",
	})

	holidays := make(roster.HolidaySet)
	for d := roster.NewDate(2024, time.June, 1); d.BeforeOrEqual(roster.NewDate(2024, time.June, 30)); d = d.AddDays(1) {
		if d.Day() != 3 {
			holidays[d.String()] = true
		}
	}

	entries := s.GenerateMonth(2024, time.June, clinicalStaff(6), nil, holidays)

	if len(entries) != 4 {
		t.Fatalf("expected 4 assignments with all doctors at capacity, got %d", len(entries))
	}
}

func TestGenerateMonth_NoOnDutyDoctor(t *testing.T) {
	// GIVEN: Every doctor off on Mondays
	// WHEN: Generating a month
	// THEN: Mondays produce no entries

	supervisors := []roster.Supervisor{
		{Name: "Dr. Solo A", DayOff: time.Monday},
		{Name: "Dr. Solo B", DayOff: time.Monday},
	}
	s := roster.NewScheduler(roster.SchedulerConfig{
		Supervisors:    supervisors,
		ClosedWeekday:  time.Sunday,
		ClinicalMarker: "Clinical",
	})

	entries := s.GenerateMonth(2024, time.June, clinicalStaff(3), nil, nil)

	for _, e := range entries {
		if e.Date.Weekday() == time.Monday {
			t.Errorf("entry on Monday %s with no doctor on duty", e.Date)
		}
	}
	if len(entries) == 0 {
		t.Fatal("expected entries on non-Mondays")
	}
}

func TestGenerateMonth_Deterministic(t *testing.T) {
	// GIVEN: The default rotated ordering
	// WHEN: Generating the same month twice
	// THEN: Assignments are identical apart from the temp IDs

	s := roster.NewScheduler(roster.SchedulerConfig{
		Supervisors:    fourDoctors(5),
		ClosedWeekday:  time.Sunday,
		ClinicalMarker: "Clinical",
	})

	first := s.GenerateMonth(2024, time.June, clinicalStaff(10), nil, nil)
	second := s.GenerateMonth(2024, time.June, clinicalStaff(10), nil, nil)

	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		a.ID, b.ID = "", ""
		if a != b {
			t.Fatalf("entry %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
