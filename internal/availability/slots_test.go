package availability

import "testing"

func TestGenerateSlots_ExactMultiple(t *testing.T) {
	windows := []ScheduleWindow{recurring(1, hm(8, 0), hm(10, 0))}
	slots := GenerateSlots(monday, windows, 30)
	want := []TimeOfDay{hm(8, 0), hm(8, 30), hm(9, 0), hm(9, 30)}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d", len(slots), len(want))
	}
	for i, s := range slots {
		if s.Start != want[i] {
			t.Errorf("slot %d: start %v, want %v", i, s.Start, want[i])
		}
		if s.End != want[i]+30 {
			t.Errorf("slot %d: end %v, want %v", i, s.End, want[i]+30)
		}
		if s.DurationMinutes() != 30 {
			t.Errorf("slot %d: duration %d", i, s.DurationMinutes())
		}
	}
}

func TestGenerateSlots_TrailingPartialDropped(t *testing.T) {
	// 08:00-09:50 with 30 min slots: 08:00, 08:30, 09:00; the 09:30-10:00
	// candidate would exceed the window and the 20 min remainder is never
	// emitted short.
	windows := []ScheduleWindow{recurring(1, hm(8, 0), hm(9, 50))}
	slots := GenerateSlots(monday, windows, 30)
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(slots))
	}
	for _, s := range slots {
		if s.End > hm(9, 50) {
			t.Errorf("slot %v-%v exceeds window end", s.Start, s.End)
		}
	}
}

func TestGenerateSlots_WindowShorterThanDuration(t *testing.T) {
	windows := []ScheduleWindow{recurring(1, hm(8, 0), hm(8, 20))}
	if slots := GenerateSlots(monday, windows, 30); len(slots) != 0 {
		t.Fatalf("got %d slots, want 0", len(slots))
	}
}

func TestGenerateSlots_NoSpanAcrossAdjacentWindows(t *testing.T) {
	// 08:00-08:45 and 08:45-09:30 are contiguous, but each window is a hard
	// stop: with 30 min slots each yields exactly one, and no slot crosses
	// 08:45.
	windows := []ScheduleWindow{
		recurring(1, hm(8, 0), hm(8, 45)),
		recurring(1, hm(8, 45), hm(9, 30)),
	}
	slots := GenerateSlots(monday, windows, 30)
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	if slots[0].Start != hm(8, 0) || slots[1].Start != hm(8, 45) {
		t.Errorf("starts: %v, %v", slots[0].Start, slots[1].Start)
	}
	for _, s := range slots {
		if s.Start < hm(8, 45) && s.End > hm(8, 45) {
			t.Errorf("slot %v-%v spans the window boundary", s.Start, s.End)
		}
	}
}

func TestGenerateSlots_StrictlyIncreasingWithinWindow(t *testing.T) {
	windows := []ScheduleWindow{recurring(1, hm(7, 0), hm(12, 0))}
	slots := GenerateSlots(monday, windows, 25)
	for i := 1; i < len(slots); i++ {
		if slots[i].Start <= slots[i-1].Start {
			t.Fatalf("slot starts not strictly increasing at %d", i)
		}
	}
}

func TestGenerateSlots_NonPositiveDuration(t *testing.T) {
	windows := []ScheduleWindow{recurring(1, hm(8, 0), hm(10, 0))}
	if slots := GenerateSlots(monday, windows, 0); slots != nil {
		t.Fatalf("duration 0: got %v", slots)
	}
	if slots := GenerateSlots(monday, windows, -10); slots != nil {
		t.Fatalf("negative duration: got %v", slots)
	}
}
