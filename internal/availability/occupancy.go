package availability

// FilterOccupied drops candidate slots that overlap a blocking appointment
// of the same attendant on the same date. Intervals are half-open, so a slot
// ending exactly when an appointment starts (or starting exactly when one
// ends) is kept. Getting this comparison wrong double-books attendants.
func FilterOccupied(slots []TimeSlot, appointments []Appointment) []TimeSlot {
	out := slots[:0:0]
	for _, s := range slots {
		occupied := false
		for _, a := range appointments {
			if !a.Blocks() || !a.Date.Equal(s.Date) {
				continue
			}
			if overlaps(s.Start, s.End, a.Start, a.End) {
				occupied = true
				break
			}
		}
		if !occupied {
			out = append(out, s)
		}
	}
	return out
}
