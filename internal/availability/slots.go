package availability

// GenerateSlots expands each resolved window into consecutive candidate
// slots of exactly durationMinutes. Windows are expanded independently:
// a slot never spans two windows, even when they are adjacent. A trailing
// remainder shorter than the duration is dropped, never emitted short, so a
// window shorter than the duration yields nothing.
func GenerateSlots(date Date, windows []ScheduleWindow, durationMinutes int) []TimeSlot {
	if durationMinutes <= 0 {
		return nil
	}
	dur := TimeOfDay(durationMinutes)
	var slots []TimeSlot
	for _, w := range windows {
		for start := w.Start; start+dur <= w.End; start += dur {
			slots = append(slots, TimeSlot{Date: date, Start: start, End: start + dur})
		}
	}
	return slots
}
