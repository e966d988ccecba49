// Package booking holds the conflict pre-check run before an appointment is
// created or moved. The check is advisory: two concurrent bookings can both
// pass it, so the appointments table carries an exclusion constraint that is
// the authoritative guard (see storage.IsConflict). This check exists to turn
// most double-bookings into a friendly rejection instead of a constraint
// violation.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clinio/clinicsched/internal/interval"
	"github.com/clinio/clinicsched/internal/model"
)

var ErrInvalidRange = errors.New("start must be before end")

// Store is the read contract the guard needs. Implemented by storage.PG.
type Store interface {
	AppointmentsOverlapping(ctx context.Context, doctorID string, start, end time.Time, filter model.StatusFilter, excludeID string) ([]model.Appointment, error)
}

type Guard struct {
	store Store
}

func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// HasConflict is the create-path check: only occupying appointments
// ({scheduled, confirmed}) count. A store failure is propagated as an error,
// never reported as "no conflict".
func (g *Guard) HasConflict(ctx context.Context, doctorID string, start, end time.Time) (bool, error) {
	return g.check(ctx, doctorID, start, end, model.AllowStatuses(model.OccupyingStatuses()...), "")
}

// HasConflictExcluding is the doctor-created/reschedule-path check: every
// status except cancelled counts (so a completed appointment blocks here but
// not on the create path — the two call sites have always differed), and the
// appointment being moved is excluded so it cannot conflict with itself.
func (g *Guard) HasConflictExcluding(ctx context.Context, doctorID string, start, end time.Time, excludeAppointmentID string) (bool, error) {
	return g.check(ctx, doctorID, start, end, model.DenyStatuses(model.StatusCancelled), excludeAppointmentID)
}

func (g *Guard) check(ctx context.Context, doctorID string, start, end time.Time, filter model.StatusFilter, excludeID string) (bool, error) {
	if !end.After(start) {
		return false, fmt.Errorf("%w: [%s, %s)", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	appts, err := g.store.AppointmentsOverlapping(ctx, doctorID, start, end, filter, excludeID)
	if err != nil {
		return false, fmt.Errorf("load overlapping appointments: %w", err)
	}

	// The store already matched on overlap; re-apply the half-open test so a
	// coarser adapter (e.g. one returning a whole day window) cannot widen
	// the conflict semantics.
	for _, a := range appts {
		if interval.OverlapsTime(start, end, a.ScheduledStart, a.ScheduledEnd) {
			return true, nil
		}
	}
	return false, nil
}
