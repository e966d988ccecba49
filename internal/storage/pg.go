// Package storage is the Postgres adapter behind the availability engine and
// booking guard. It only reads; appointment and schedule writes belong to the
// booking and schedule-management services.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinio/clinicsched/internal/model"
	"github.com/clinio/clinicsched/libs/db"
)

type PG struct {
	pool *db.Pool
}

func NewPG(pool *db.Pool) *PG {
	return &PG{pool: pool}
}

// WeeklySchedule returns every schedule row for the weekday, working or not.
// Deliberately no ORDER BY: when duplicate rows exist for one weekday the
// row order is undefined and the engine takes the first working one.
func (s *PG) WeeklySchedule(ctx context.Context, doctorID string, weekday time.Weekday) ([]model.ScheduleEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT doctor_id::text, day_of_week, is_working_day,
			start_time::text, end_time::text,
			COALESCE(break_start_time::text, ''), COALESCE(break_end_time::text, '')
		FROM doctor_weekly_schedules
		WHERE doctor_id = $1 AND day_of_week = $2
	`, doctorID, int(weekday))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScheduleEntry
	for rows.Next() {
		var e model.ScheduleEntry
		var dayOfWeek int
		if err := rows.Scan(
			&e.DoctorID,
			&dayOfWeek,
			&e.IsWorkingDay,
			&e.StartTime,
			&e.EndTime,
			&e.BreakStartTime,
			&e.BreakEndTime,
		); err != nil {
			return nil, err
		}
		e.Weekday = time.Weekday(dayOfWeek)
		out = append(out, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (s *PG) ScheduleExceptions(ctx context.Context, doctorID string, date time.Time) ([]model.ScheduleException, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT doctor_id::text, exception_date, exception_type, is_all_day
		FROM schedule_exceptions
		WHERE doctor_id = $1 AND exception_date = $2
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ScheduleException
	for rows.Next() {
		var ex model.ScheduleException
		if err := rows.Scan(&ex.DoctorID, &ex.Date, &ex.Type, &ex.IsAllDay); err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// AppointmentsOnDate returns appointments whose scheduled_start falls within
// the date's [00:00:00, 23:59:59] window as stored (UTC), filtered to the
// given statuses.
func (s *PG) AppointmentsOnDate(ctx context.Context, doctorID string, date time.Time, statuses []model.AppointmentStatus) ([]model.Appointment, error) {
	dayStart := date
	dayEnd := date.Add(24*time.Hour - time.Second)

	rows, err := s.pool.Query(ctx, `
		SELECT id::text, doctor_id::text, scheduled_start, scheduled_end, status
		FROM appointments
		WHERE doctor_id = $1
			AND scheduled_start >= $2
			AND scheduled_start <= $3
			AND status = ANY($4)
		ORDER BY scheduled_start ASC
	`, doctorID, dayStart, dayEnd, statusStrings(statuses))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// AppointmentsOverlapping returns appointments whose [scheduled_start,
// scheduled_end) interval overlaps [start, end), filtered by status
// allow-list or deny-list and optionally excluding one appointment id.
func (s *PG) AppointmentsOverlapping(ctx context.Context, doctorID string, start, end time.Time, filter model.StatusFilter, excludeID string) ([]model.Appointment, error) {
	q := `
		SELECT id::text, doctor_id::text, scheduled_start, scheduled_end, status
		FROM appointments
		WHERE doctor_id = $1
			AND scheduled_start < $3
			AND scheduled_end > $2`
	args := []any{doctorID, start, end}

	switch {
	case len(filter.Allow) > 0:
		q += fmt.Sprintf(" AND status = ANY($%d)", len(args)+1)
		args = append(args, statusStrings(filter.Allow))
	case len(filter.Deny) > 0:
		q += fmt.Sprintf(" AND status <> ALL($%d)", len(args)+1)
		args = append(args, statusStrings(filter.Deny))
	}
	if excludeID != "" {
		q += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	q += " ORDER BY scheduled_start ASC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAppointments(rows)
}

func scanAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		var status string
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.ScheduledStart, &a.ScheduledEnd, &status); err != nil {
			return nil, err
		}
		a.Status = model.AppointmentStatus(status)
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func statusStrings(statuses []model.AppointmentStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// IsConflict reports whether err is the appointments exclusion constraint
// firing (the authoritative double-booking guard; the booking.Guard check is
// only a pre-flight).
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
