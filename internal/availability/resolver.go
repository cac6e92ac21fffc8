package availability

import (
	"sort"

	"github.com/google/uuid"
)

// ResolveWindows returns the windows applicable to the attendant on the
// given date, ordered by start time.
//
// A recurring window applies when it is active and its day-of-week matches
// the date. A date-specific window applies when its date matches, and it
// overrides: any recurring window whose time range overlaps a date-specific
// window for that day is dropped, so an operator can replace or block a
// single day without editing the recurring rule. An inactive date-specific
// window still suppresses the recurring windows it overlaps but produces no
// slots itself, which is how a day (or part of one) is blocked.
//
// Windows bound to a service only apply when that exact service is
// requested; windows without a service apply to any request.
func ResolveWindows(windows []ScheduleWindow, date Date, serviceID *uuid.UUID) []ScheduleWindow {
	weekday := date.ISOWeekday()

	var specific []ScheduleWindow
	for _, w := range windows {
		if w.SpecificDate != nil && w.SpecificDate.Equal(date) && matchesService(w, serviceID) {
			specific = append(specific, w)
		}
	}

	var out []ScheduleWindow
	for _, w := range specific {
		if w.Active {
			out = append(out, w)
		}
	}
	for _, w := range windows {
		if w.SpecificDate != nil || w.DayOfWeek == nil {
			continue
		}
		if !w.Active || *w.DayOfWeek != weekday || !matchesService(w, serviceID) {
			continue
		}
		overridden := false
		for _, s := range specific {
			if overlaps(w.Start, w.End, s.Start, s.End) {
				overridden = true
				break
			}
		}
		if !overridden {
			out = append(out, w)
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func matchesService(w ScheduleWindow, serviceID *uuid.UUID) bool {
	if w.ServiceID == nil {
		return true
	}
	return serviceID != nil && *w.ServiceID == *serviceID
}
