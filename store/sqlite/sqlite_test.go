package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SunQthecodemaker/off-schedule-manager-sub000/roster"
	"github.com/SunQthecodemaker/off-schedule-manager-sub000/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testEmployee(name string) roster.Employee {
	entry := roster.NewDate(2023, time.April, 1)
	return roster.Employee{
		Name:          name,
		EntryDate:     &entry,
		WorkDays:      5,
		Department:    "Clinical",
		FixedHolidays: []time.Weekday{time.Wednesday},
	}
}

// =============================================================================
// EMPLOYEE TESTS
// =============================================================================

func TestEmployee_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	renewal := roster.NewDate(2024, time.April, 1)
	emp := testEmployee("Sato")
	emp.RenewalDate = &renewal
	emp.Adjustment = -1.5
	emp.CarriedOverCnt = 2

	id, err := store.CreateEmployee(ctx, emp)
	require.NoError(t, err)

	got, err := store.GetEmployee(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "Sato", got.Name)
	require.NotNil(t, got.EntryDate)
	assert.Equal(t, "2023-04-01", got.EntryDate.String())
	require.NotNil(t, got.RenewalDate)
	assert.Equal(t, "2024-04-01", got.RenewalDate.String())
	assert.Equal(t, 5, got.WorkDays)
	assert.Equal(t, -1.5, got.Adjustment)
	assert.Equal(t, 2.0, got.CarriedOverCnt)
	assert.Equal(t, []time.Weekday{time.Wednesday}, got.FixedHolidays)
	assert.False(t, got.Retired)
}

func TestEmployee_Settlement(t *testing.T) {
	// GIVEN: A stored employee
	// WHEN: Applying a settlement
	// THEN: The accrual inputs reflect the new adjustment and carry-over

	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateEmployee(ctx, testEmployee("Mori"))
	require.NoError(t, err)

	require.NoError(t, store.ApplySettlement(ctx, id, 1.5, 3))

	got, err := store.GetEmployee(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got.Adjustment)
	assert.Equal(t, 3.0, got.CarriedOverCnt)

	assert.ErrorIs(t, store.ApplySettlement(ctx, 9999, 0, 0), sqlite.ErrNotFound)
}

func TestEmployee_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetEmployee(context.Background(), 42)
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

// =============================================================================
// LEAVE REQUEST TESTS
// =============================================================================

func TestLeaveRequest_Workflow(t *testing.T) {
	// GIVEN: A pending request over two non-contiguous dates
	// WHEN: Approving it
	// THEN: It lists under approved, and further status changes fail

	store := newTestStore(t)
	ctx := context.Background()

	empID, err := store.CreateEmployee(ctx, testEmployee("Kudo"))
	require.NoError(t, err)

	reqID, err := store.CreateLeaveRequest(ctx, roster.LeaveRequest{
		EmployeeID: empID,
		Dates: []roster.Date{
			roster.NewDate(2024, time.June, 10),
			roster.NewDate(2024, time.June, 14),
		},
		Reason: "family visit",
	})
	require.NoError(t, err)

	require.NoError(t, store.SetLeaveStatus(ctx, reqID, roster.LeaveApproved))

	approved, err := store.ListLeaveRequests(ctx, roster.LeaveApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, empID, approved[0].EmployeeID)
	require.Len(t, approved[0].Dates, 2)
	assert.Equal(t, "2024-06-10", approved[0].Dates[0].String())

	// Approved requests are immutable except for deletion.
	assert.ErrorIs(t, store.SetLeaveStatus(ctx, reqID, roster.LeaveRejected), sqlite.ErrApprovedImmutable)
	require.NoError(t, store.DeleteLeaveRequest(ctx, reqID))

	_, err = store.GetLeaveRequest(ctx, reqID)
	assert.ErrorIs(t, err, sqlite.ErrNotFound)
}

func TestLeaveRequest_StatusFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, status := range []roster.LeaveStatus{roster.LeavePending, roster.LeaveApproved, roster.LeaveRejected} {
		_, err := store.CreateLeaveRequest(ctx, roster.LeaveRequest{
			EmployeeID: 1,
			Dates:      []roster.Date{roster.NewDate(2024, time.June, 1)},
			Status:     status,
		})
		require.NoError(t, err)
	}

	pending, err := store.ListLeaveRequests(ctx, roster.LeavePending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := store.ListLeaveRequests(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// =============================================================================
// SCHEDULE TESTS
// =============================================================================

func TestSchedule_ReplaceMonth(t *testing.T) {
	// GIVEN: A persisted June schedule
	// WHEN: Replacing the month with a new set
	// THEN: Only the new set remains; entries get numeric IDs

	store := newTestStore(t)
	ctx := context.Background()

	june3 := roster.NewDate(2024, time.June, 3)
	old := []roster.ScheduleEntry{
		{ID: roster.NewTempEntryID(), Date: june3, EmployeeID: 1, Status: roster.EntryWorking, GridPos: 0},
		{ID: roster.NewTempEntryID(), Date: june3, EmployeeID: 2, Status: roster.EntryWorking, GridPos: 1, SortOrder: 1},
	}
	require.NoError(t, store.ReplaceScheduleMonth(ctx, 2024, time.June, old))

	replacement := []roster.ScheduleEntry{
		{ID: roster.NewTempEntryID(), Date: june3, EmployeeID: 3, Status: roster.EntryWorking, GridPos: 4},
	}
	require.NoError(t, store.ReplaceScheduleMonth(ctx, 2024, time.June, replacement))

	got, err := store.ListScheduleMonth(ctx, 2024, time.June)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].EmployeeID)
	assert.False(t, roster.IsTempEntryID(got[0].ID), "persisted entries carry numeric IDs")
}

func TestSchedule_DuplicateWorkingDayRejected(t *testing.T) {
	// GIVEN: Two working entries for the same (date, employee)
	// WHEN: Persisting the month
	// THEN: The unique index rejects the batch

	store := newTestStore(t)
	ctx := context.Background()

	june3 := roster.NewDate(2024, time.June, 3)
	err := store.ReplaceScheduleMonth(ctx, 2024, time.June, []roster.ScheduleEntry{
		{Date: june3, EmployeeID: 1, Status: roster.EntryWorking, GridPos: 0},
		{Date: june3, EmployeeID: 1, Status: roster.EntryWorking, GridPos: 5},
	})
	assert.ErrorIs(t, err, sqlite.ErrDuplicateWorkingDay)

	// The failed batch must not have cleared the month partially.
	got, err := store.ListScheduleMonth(ctx, 2024, time.June)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSchedule_SpacersExemptFromUniqueness(t *testing.T) {
	// GIVEN: Two spacer entries on one date
	// WHEN: Persisting
	// THEN: Both are accepted (spacers use the negative ID range)

	store := newTestStore(t)
	ctx := context.Background()

	june3 := roster.NewDate(2024, time.June, 3)
	err := store.ReplaceScheduleMonth(ctx, 2024, time.June, []roster.ScheduleEntry{
		{Date: june3, EmployeeID: -1, Status: roster.EntryWorking, GridPos: 2},
		{Date: june3, EmployeeID: -1, Status: roster.EntryWorking, GridPos: 3},
	})
	require.NoError(t, err)

	got, err := store.ListScheduleMonth(ctx, 2024, time.June)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, e := range got {
		assert.True(t, roster.IsSpacerID(e.EmployeeID))
	}
}

func TestSchedule_MonthBoundaries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceScheduleMonth(ctx, 2024, time.May, []roster.ScheduleEntry{
		{Date: roster.NewDate(2024, time.May, 31), EmployeeID: 1, Status: roster.EntryWorking, GridPos: 0},
	}))
	require.NoError(t, store.ReplaceScheduleMonth(ctx, 2024, time.June, []roster.ScheduleEntry{
		{Date: roster.NewDate(2024, time.June, 1), EmployeeID: 1, Status: roster.EntryWorking, GridPos: 0},
	}))

	may, err := store.ListScheduleMonth(ctx, 2024, time.May)
	require.NoError(t, err)
	june, err := store.ListScheduleMonth(ctx, 2024, time.June)
	require.NoError(t, err)

	assert.Len(t, may, 1)
	assert.Len(t, june, 1)
	assert.Equal(t, "2024-05-31", may[0].Date.String())
	assert.Equal(t, "2024-06-01", june[0].Date.String())
}

// =============================================================================
// HOLIDAY TESTS
// =============================================================================

func TestHolidays_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateHoliday(ctx, roster.CompanyHoliday{
		Date: roster.NewDate(2024, time.June, 3),
		Name: "Clinic anniversary",
	})
	require.NoError(t, err)

	_, err = store.CreateHoliday(ctx, roster.CompanyHoliday{
		Date: roster.NewDate(2024, time.June, 3),
		Name: "Duplicate",
	})
	assert.ErrorIs(t, err, sqlite.ErrDuplicateHolidayDate)

	holidays, err := store.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Clinic anniversary", holidays[0].Name)

	require.NoError(t, store.DeleteHoliday(ctx, id))
	holidays, err = store.ListHolidays(ctx)
	require.NoError(t, err)
	assert.Empty(t, holidays)
}
