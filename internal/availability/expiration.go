package availability

// FilterExpired drops slots that start before Now plus the grace buffer.
// Slots on a past date are all expired; slots on a future date are all kept
// (the buffer only constrains the current day); slots on the current day
// are kept when their start is at or after now+grace.
//
// Both sides of the comparison are wall-clock calendar values built from the
// same (year, month, day, hour, minute) components. No instant is ever
// derived from a UTC-midnight boundary here: doing that made the first slot
// of the day expire differently from the rest whenever the server's offset
// disagreed with the clinic's.
func FilterExpired(slots []TimeSlot, policy ExpirationPolicy) []TimeSlot {
	out := slots[:0:0]
	cutoff := policy.Now.Time + TimeOfDay(policy.GraceMinutes)
	for _, s := range slots {
		if s.Date.Before(policy.Now.Date) {
			continue
		}
		if s.Date.After(policy.Now.Date) {
			out = append(out, s)
			continue
		}
		if s.Start >= cutoff {
			out = append(out, s)
		}
	}
	return out
}
