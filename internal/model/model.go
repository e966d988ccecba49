package model

import "time"

type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusRescheduled AppointmentStatus = "rescheduled"
	StatusNoShow      AppointmentStatus = "no_show"
)

// OccupyingStatuses are the only statuses that block a doctor's time.
// Everything else (cancelled, completed, no-show, rescheduled) leaves the
// window bookable again.
func OccupyingStatuses() []AppointmentStatus {
	return []AppointmentStatus{StatusScheduled, StatusConfirmed}
}

// ScheduleEntry is a doctor's recurring availability for one weekday.
// Times are wall-clock "HH:MM:SS" strings as stored; break times are empty
// when the doctor has no mid-day break.
type ScheduleEntry struct {
	DoctorID       string
	Weekday        time.Weekday
	IsWorkingDay   bool
	StartTime      string
	EndTime        string
	BreakStartTime string
	BreakEndTime   string
}

func (e ScheduleEntry) HasBreak() bool {
	return e.BreakStartTime != "" && e.BreakEndTime != ""
}

// ScheduleException overrides the weekly schedule for a single calendar date.
type ScheduleException struct {
	DoctorID string
	Date     time.Time
	Type     string // "vacation", "day_off", "half_day", ...
	IsAllDay bool
}

// BlocksAllDay reports whether the exception zeroes out the whole date.
// Vacations and days off always do, regardless of the all-day flag.
func (e ScheduleException) BlocksAllDay() bool {
	return e.IsAllDay || e.Type == "vacation" || e.Type == "day_off"
}

type Appointment struct {
	ID             string
	DoctorID       string
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	Status         AppointmentStatus
}

// TimeSlot is a bookable window produced by the availability engine. It is
// computed fresh on every call and never persisted.
type TimeSlot struct {
	Start string `json:"start_time"` // "HH:MM"
	End   string `json:"end_time"`
}
