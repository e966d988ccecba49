package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clinio/clinicsched/internal/interval"
	"github.com/clinio/clinicsched/internal/model"
)

// fakeStore applies the same overlap, status and exclusion filtering the SQL
// adapter does, and records the filter it was handed.
type fakeStore struct {
	appts []model.Appointment
	err   error

	gotFilter    model.StatusFilter
	gotExcludeID string
}

func (f *fakeStore) AppointmentsOverlapping(_ context.Context, doctorID string, start, end time.Time, filter model.StatusFilter, excludeID string) ([]model.Appointment, error) {
	f.gotFilter = filter
	f.gotExcludeID = excludeID
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Appointment
	for _, a := range f.appts {
		if a.DoctorID != doctorID {
			continue
		}
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		if !filter.Matches(a.Status) {
			continue
		}
		if !interval.OverlapsTime(start, end, a.ScheduledStart, a.ScheduledEnd) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func at(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

func existing(id string, start, end time.Time, status model.AppointmentStatus) model.Appointment {
	return model.Appointment{ID: id, DoctorID: "doc-1", ScheduledStart: start, ScheduledEnd: end, Status: status}
}

func TestHasConflict_PartialOverlap(t *testing.T) {
	store := &fakeStore{appts: []model.Appointment{
		existing("apt-1", at(10, 0), at(10, 30), model.StatusConfirmed),
	}}
	guard := NewGuard(store)

	conflict, err := guard.HasConflict(context.Background(), "doc-1", at(10, 15), at(10, 45))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !conflict {
		t.Fatal("expected conflict for partially overlapping range")
	}
}

func TestHasConflict_AdjacentIsNotConflict(t *testing.T) {
	store := &fakeStore{appts: []model.Appointment{
		existing("apt-1", at(10, 30), at(11, 0), model.StatusScheduled),
	}}
	guard := NewGuard(store)

	conflict, err := guard.HasConflict(context.Background(), "doc-1", at(10, 0), at(10, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict {
		t.Fatal("back-to-back appointments must not conflict (half-open intervals)")
	}
}

func TestHasConflict_CancelledDoesNotBlock(t *testing.T) {
	store := &fakeStore{appts: []model.Appointment{
		existing("apt-1", at(10, 0), at(10, 30), model.StatusCancelled),
	}}
	guard := NewGuard(store)

	conflict, err := guard.HasConflict(context.Background(), "doc-1", at(10, 0), at(10, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict {
		t.Fatal("cancelled appointments must not block a new booking")
	}
}

func TestHasConflict_CompletedDoesNotBlockCreatePath(t *testing.T) {
	store := &fakeStore{appts: []model.Appointment{
		existing("apt-1", at(10, 0), at(10, 30), model.StatusCompleted),
	}}
	guard := NewGuard(store)

	conflict, err := guard.HasConflict(context.Background(), "doc-1", at(10, 0), at(10, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict {
		t.Fatal("create path allow-lists {scheduled, confirmed}; completed must not block")
	}
	if len(store.gotFilter.Allow) != 2 || len(store.gotFilter.Deny) != 0 {
		t.Fatalf("create path must use the occupying allow-list, got %+v", store.gotFilter)
	}
}

func TestHasConflictExcluding_CompletedBlocksReschedulePath(t *testing.T) {
	store := &fakeStore{appts: []model.Appointment{
		existing("apt-1", at(10, 0), at(10, 30), model.StatusCompleted),
	}}
	guard := NewGuard(store)

	conflict, err := guard.HasConflictExcluding(context.Background(), "doc-1", at(10, 0), at(10, 30), "apt-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !conflict {
		t.Fatal("reschedule path deny-lists only cancelled; completed must block")
	}
	if len(store.gotFilter.Deny) != 1 || store.gotFilter.Deny[0] != model.StatusCancelled {
		t.Fatalf("reschedule path must deny-list cancelled only, got %+v", store.gotFilter)
	}
}

func TestHasConflictExcluding_SelfExclusion(t *testing.T) {
	store := &fakeStore{appts: []model.Appointment{
		existing("apt-1", at(10, 0), at(10, 30), model.StatusScheduled),
	}}
	guard := NewGuard(store)

	conflict, err := guard.HasConflictExcluding(context.Background(), "doc-1", at(10, 15), at(10, 45), "apt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict {
		t.Fatal("an appointment must not conflict with itself when rescheduling")
	}
	if store.gotExcludeID != "apt-1" {
		t.Fatalf("exclude id not forwarded, got %q", store.gotExcludeID)
	}
}

func TestHasConflictExcluding_OtherAppointmentStillBlocks(t *testing.T) {
	store := &fakeStore{appts: []model.Appointment{
		existing("apt-1", at(10, 0), at(10, 30), model.StatusScheduled),
		existing("apt-2", at(10, 30), at(11, 0), model.StatusConfirmed),
	}}
	guard := NewGuard(store)

	conflict, err := guard.HasConflictExcluding(context.Background(), "doc-1", at(10, 15), at(10, 45), "apt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !conflict {
		t.Fatal("expected conflict with the other appointment")
	}
}

func TestHasConflict_InvalidRange(t *testing.T) {
	guard := NewGuard(&fakeStore{})

	for _, c := range []struct{ start, end time.Time }{
		{at(10, 30), at(10, 0)},
		{at(10, 0), at(10, 0)},
	} {
		_, err := guard.HasConflict(context.Background(), "doc-1", c.start, c.end)
		if !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange for [%v, %v), got %v", c.start, c.end, err)
		}
	}
}

func TestHasConflict_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	guard := NewGuard(&fakeStore{err: storeErr})

	conflict, err := guard.HasConflict(context.Background(), "doc-1", at(10, 0), at(10, 30))
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if conflict {
		t.Fatal("a failed query must not report a conflict result")
	}
}
