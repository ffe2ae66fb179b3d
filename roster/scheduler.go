/*
scheduler.go - Month auto-scheduling heuristic

PURPOSE:
  Generates a full month of staff-to-doctor assignments so managers don't
  have to drag every cell by hand. The output is a proposal: a flat list of
  ephemeral schedule entries the caller may persist (bulk replace of the
  month) or throw away.

THE HEURISTIC:
  For each working day of the month (skipping the clinic's closed weekday
  and company holidays):
    1. Find the doctors on duty (not on their fixed weekly day off).
    2. Filter staff to those available: not retired, no approved leave that
       day, weekly work-day cap not reached, weekday not in their personal
       fixed holidays, and in a clinical department/position.
    3. Distribute staff across doctors round-robin. The starting doctor
       rotates by one per calendar day so the same doctor isn't always
       filled first. A doctor at capacity passes to the next with room; if
       every doctor is full the employee stays unassigned that day.
    4. Map assignments onto the 24-slot grid: each doctor owns a contiguous
       block, assignees fill it in assignment order, overflow is dropped.

  Weekly counters reset every Monday. No on-duty doctor, or no eligible
  staff, means an empty day - never an error.

ORDERING:
  Employee processing order is injectable (OrderFunc). The default is
  deterministic: sort by employee ID, rotated by the day offset, which
  spreads assignments without making runs irreproducible. ShuffledOrder
  restores randomized tie-breaking for callers that prefer fairness over
  reproducibility.

SEE ALSO:
  - types.go: ScheduleEntry, GridSlots
  - api: the generate endpoint that invokes this and persists the result
*/
package roster

import (
	"math/rand"
	"sort"
	"time"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Supervisor is a doctor staff can be assigned to. Capacity zero falls back
// to the scheduler's default capacity.
type Supervisor struct {
	Name     string
	Capacity int
	DayOff   time.Weekday
}

// OrderFunc decides the order employees are considered in on a given day.
// offset is the day's rotation offset. Implementations must not mutate the
// input slice.
type OrderFunc func(day Date, offset int, pool []Employee) []Employee

// SchedulerConfig carries the static roster and the global caps.
type SchedulerConfig struct {
	Supervisors    []Supervisor
	ClosedWeekday  time.Weekday // clinic-wide fixed non-working weekday
	WeeklyCap      int          // max working days per employee per week
	Capacity       int          // default per-supervisor assignee capacity
	ClinicalMarker string       // department/position substring gating eligibility
	Order          OrderFunc
}

// DefaultSupervisors is the clinic's fixed doctor roster: six doctors, each
// owning a four-slot block of the 24-slot grid.
func DefaultSupervisors() []Supervisor {
	return []Supervisor{
		{Name: "Dr. A", DayOff: time.Monday},
		{Name: "Dr. B", DayOff: time.Tuesday},
		{Name: "Dr. C", DayOff: time.Wednesday},
		{Name: "Dr. D", DayOff: time.Thursday},
		{Name: "Dr. E", DayOff: time.Friday},
		{Name: "Dr. F", DayOff: time.Saturday},
	}
}

// RotatedOrder is the default deterministic ordering: employees sorted by
// ID, rotated by the day offset so the same employee isn't always placed
// first over a long run.
func RotatedOrder(_ Date, offset int, pool []Employee) []Employee {
	out := make([]Employee, len(pool))
	copy(out, pool)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > 1 {
		r := offset % len(out)
		out = append(out[r:], out[:r]...)
	}
	return out
}

// ShuffledOrder randomizes employee order with the given source. Runs are
// not reproducible; use RotatedOrder for testable behavior.
func ShuffledOrder(rnd *rand.Rand) OrderFunc {
	return func(_ Date, _ int, pool []Employee) []Employee {
		out := make([]Employee, len(pool))
		copy(out, pool)
		rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}
}

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler generates month proposals from a fixed supervisor roster.
type Scheduler struct {
	cfg       SchedulerConfig
	blockSize int
}

// NewScheduler fills config defaults: Sunday closed, weekly cap 5, default
// supervisor roster, capacity bounded by the grid block size, deterministic
// ordering.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if len(cfg.Supervisors) == 0 {
		cfg.Supervisors = DefaultSupervisors()
	}
	if cfg.WeeklyCap <= 0 {
		cfg.WeeklyCap = 5
	}
	if cfg.Order == nil {
		cfg.Order = RotatedOrder
	}
	blockSize := GridSlots / len(cfg.Supervisors)
	if cfg.Capacity <= 0 {
		cfg.Capacity = blockSize
	}
	return &Scheduler{cfg: cfg, blockSize: blockSize}
}

// GenerateMonth produces proposed "working" entries for every schedulable
// day of the month. Entries carry temporary identifiers; the caller decides
// whether to persist them. The generator has no notion of previously saved
// schedules - it recomputes the month from scratch.
func (s *Scheduler) GenerateMonth(
	year int,
	month time.Month,
	employees []Employee,
	approved []LeaveRequest,
	holidays HolidaySet,
) []ScheduleEntry {
	var entries []ScheduleEntry

	onLeave := leaveIndex(approved)
	weekly := make(map[int64]int)

	last := EndOfMonth(year, month)
	for day := StartOfMonth(year, month); day.BeforeOrEqual(last); day = day.AddDays(1) {
		// Weekly counters anchor to Monday.
		if day.Weekday() == time.Monday {
			weekly = make(map[int64]int)
		}

		// Rotation advances one step per calendar day.
		offset := day.Day() - 1

		if day.Weekday() == s.cfg.ClosedWeekday || holidays.Contains(day) {
			continue
		}

		entries = append(entries, s.generateDay(day, offset, employees, onLeave, weekly)...)
	}

	return entries
}

func (s *Scheduler) generateDay(
	day Date,
	offset int,
	employees []Employee,
	onLeave map[int64]map[string]bool,
	weekly map[int64]int,
) []ScheduleEntry {
	onDuty := s.onDutyIndexes(day.Weekday())
	if len(onDuty) == 0 {
		return nil
	}

	pool := s.eligible(day, employees, onLeave, weekly)
	if len(pool) == 0 {
		return nil
	}

	var entries []ScheduleEntry
	assigned := make([]int, len(s.cfg.Supervisors)) // per-supervisor count
	cur := offset % len(onDuty)
	sortOrder := 0

	for _, emp := range s.cfg.Order(day, offset, pool) {
		idx, ok := s.nextWithRoom(onDuty, assigned, cur)
		if !ok {
			// Every on-duty doctor is full; the employee stays
			// unassigned today.
			continue
		}
		cur = (idx + 1) % len(onDuty)

		sup := onDuty[idx]
		assigned[sup]++
		weekly[emp.ID]++

		// Grid block overflow is dropped silently; capacity should
		// already prevent it.
		slot := assigned[sup] - 1
		if slot >= s.blockSize {
			continue
		}

		entries = append(entries, ScheduleEntry{
			ID:         NewTempEntryID(),
			Date:       day,
			EmployeeID: emp.ID,
			Status:     EntryWorking,
			GridPos:    sup*s.blockSize + slot,
			SortOrder:  sortOrder,
		})
		sortOrder++
	}

	return entries
}

// onDutyIndexes returns roster indexes of supervisors not on their fixed
// day off.
func (s *Scheduler) onDutyIndexes(wd time.Weekday) []int {
	var onDuty []int
	for i, sup := range s.cfg.Supervisors {
		if sup.DayOff != wd {
			onDuty = append(onDuty, i)
		}
	}
	return onDuty
}

// nextWithRoom scans on-duty supervisors from the rotation cursor for one
// with spare capacity.
func (s *Scheduler) nextWithRoom(onDuty []int, assigned []int, cur int) (int, bool) {
	for i := 0; i < len(onDuty); i++ {
		idx := (cur + i) % len(onDuty)
		if assigned[onDuty[idx]] < s.capacityOf(onDuty[idx]) {
			return idx, true
		}
	}
	return 0, false
}

func (s *Scheduler) capacityOf(supIdx int) int {
	if c := s.cfg.Supervisors[supIdx].Capacity; c > 0 {
		return c
	}
	return s.cfg.Capacity
}

// eligible filters the employee pool for one day.
func (s *Scheduler) eligible(
	day Date,
	employees []Employee,
	onLeave map[int64]map[string]bool,
	weekly map[int64]int,
) []Employee {
	date := day.String()
	wd := day.Weekday()

	var pool []Employee
	for _, emp := range employees {
		if emp.Retired {
			continue
		}
		if onLeave[emp.ID][date] {
			continue
		}
		if weekly[emp.ID] >= s.cfg.WeeklyCap {
			continue
		}
		if emp.HasFixedHoliday(wd) {
			continue
		}
		if !emp.IsClinical(s.cfg.ClinicalMarker) {
			continue
		}
		pool = append(pool, emp)
	}
	return pool
}

// leaveIndex maps employee ID -> ISO date -> true for approved requests.
// Requests in other states are ignored even if passed in.
func leaveIndex(requests []LeaveRequest) map[int64]map[string]bool {
	idx := make(map[int64]map[string]bool)
	for _, req := range requests {
		if req.Status != LeaveApproved {
			continue
		}
		days := idx[req.EmployeeID]
		if days == nil {
			days = make(map[string]bool)
			idx[req.EmployeeID] = days
		}
		for _, d := range req.Dates {
			days[d.String()] = true
		}
	}
	return idx
}
