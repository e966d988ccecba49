// Package availability computes the bookable time slots for a doctor on a
// calendar date from the weekly schedule, per-date exceptions and the
// appointments already on the books. It is pure read-side computation: the
// store is re-queried on every call and nothing is cached or mutated.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clinio/clinicsched/internal/interval"
	"github.com/clinio/clinicsched/internal/model"
)

var ErrInvalidDate = errors.New("invalid date")

const (
	DefaultSlotMinutes = 30

	dateLayout = "2006-01-02"
)

// Store is the read contract the engine needs. Implemented by storage.PG.
type Store interface {
	WeeklySchedule(ctx context.Context, doctorID string, weekday time.Weekday) ([]model.ScheduleEntry, error)
	ScheduleExceptions(ctx context.Context, doctorID string, date time.Time) ([]model.ScheduleException, error)
	AppointmentsOnDate(ctx context.Context, doctorID string, date time.Time, statuses []model.AppointmentStatus) ([]model.Appointment, error)
}

type Config struct {
	SlotMinutes int
}

type Engine struct {
	store       Store
	slotMinutes int
}

func NewEngine(store Store, cfg Config) *Engine {
	slot := cfg.SlotMinutes
	if slot <= 0 {
		slot = DefaultSlotMinutes
	}
	return &Engine{store: store, slotMinutes: slot}
}

// GetAvailableSlots returns the open slots for the doctor on the given
// "YYYY-MM-DD" date, in chronological order. An unknown doctor or a weekday
// without a working schedule row yields an empty result, not an error; the
// rest of the system displays that as "doctor does not work this day". Store
// failures are always propagated, never folded into an empty list.
func (e *Engine) GetAvailableSlots(ctx context.Context, doctorID string, date string) ([]model.TimeSlot, error) {
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	exceptions, err := e.store.ScheduleExceptions(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("load schedule exceptions: %w", err)
	}
	for _, ex := range exceptions {
		if ex.BlocksAllDay() {
			return nil, nil
		}
	}

	entries, err := e.store.WeeklySchedule(ctx, doctorID, day.Weekday())
	if err != nil {
		return nil, fmt.Errorf("load weekly schedule: %w", err)
	}
	entry, ok := firstWorkingEntry(entries)
	if !ok {
		return nil, nil
	}

	candidates, err := e.generate(entry)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	appts, err := e.store.AppointmentsOnDate(ctx, doctorID, day, model.OccupyingStatuses())
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	var slots []model.TimeSlot
	for _, c := range candidates {
		if occupied(c, day, appts) {
			continue
		}
		slots = append(slots, model.TimeSlot{
			Start: interval.MinutesToTime(c.start),
			End:   interval.MinutesToTime(c.end),
		})
	}
	return slots, nil
}

// SlotMinutes reports the configured slot length.
func (e *Engine) SlotMinutes() int {
	return e.slotMinutes
}

// firstWorkingEntry picks the first working-day row. When duplicate rows
// exist for a weekday the store's row order decides; no tie-break is applied.
func firstWorkingEntry(entries []model.ScheduleEntry) (model.ScheduleEntry, bool) {
	for _, entry := range entries {
		if entry.IsWorkingDay {
			return entry, true
		}
	}
	return model.ScheduleEntry{}, false
}

type candidate struct {
	start, end int // minutes since midnight
}

// generate steps through the working window producing fixed-length
// candidates. A candidate is skipped when its start falls inside the break
// window; the check is on the start bound only, so a slot that begins before
// the break and runs into it survives.
func (e *Engine) generate(entry model.ScheduleEntry) ([]candidate, error) {
	startMin, err := interval.TimeToMinutes(entry.StartTime)
	if err != nil {
		return nil, fmt.Errorf("schedule entry start_time: %w", err)
	}
	endMin, err := interval.TimeToMinutes(entry.EndTime)
	if err != nil {
		return nil, fmt.Errorf("schedule entry end_time: %w", err)
	}

	breakStart, breakEnd := -1, -1
	if entry.HasBreak() {
		breakStart, err = interval.TimeToMinutes(entry.BreakStartTime)
		if err != nil {
			return nil, fmt.Errorf("schedule entry break_start_time: %w", err)
		}
		breakEnd, err = interval.TimeToMinutes(entry.BreakEndTime)
		if err != nil {
			return nil, fmt.Errorf("schedule entry break_end_time: %w", err)
		}
	}

	var out []candidate
	for cur := startMin; cur+e.slotMinutes <= endMin; cur += e.slotMinutes {
		if breakStart >= 0 && cur >= breakStart && cur < breakEnd {
			continue
		}
		out = append(out, candidate{start: cur, end: cur + e.slotMinutes})
	}
	return out, nil
}

func occupied(c candidate, day time.Time, appts []model.Appointment) bool {
	slotStart := day.Add(time.Duration(c.start) * time.Minute)
	slotEnd := day.Add(time.Duration(c.end) * time.Minute)
	for _, a := range appts {
		if interval.OverlapsTime(slotStart, slotEnd, a.ScheduledStart, a.ScheduledEnd) {
			return true
		}
	}
	return false
}
