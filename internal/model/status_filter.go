package model

// StatusFilter selects appointments by status either positively (Allow) or
// negatively (Deny). The booking paths use different shapes on purpose: the
// patient create path allows only {scheduled, confirmed}, while the
// doctor-created/reschedule path excludes only cancelled. A filter has
// exactly one of the two lists set.
type StatusFilter struct {
	Allow []AppointmentStatus
	Deny  []AppointmentStatus
}

func AllowStatuses(statuses ...AppointmentStatus) StatusFilter {
	return StatusFilter{Allow: statuses}
}

func DenyStatuses(statuses ...AppointmentStatus) StatusFilter {
	return StatusFilter{Deny: statuses}
}

func (f StatusFilter) Matches(s AppointmentStatus) bool {
	if len(f.Allow) > 0 {
		for _, a := range f.Allow {
			if s == a {
				return true
			}
		}
		return false
	}
	for _, d := range f.Deny {
		if s == d {
			return false
		}
	}
	return true
}
