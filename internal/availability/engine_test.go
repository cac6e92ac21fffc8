package availability

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

// mockProvider implementa Provider para testes.
type mockProvider struct {
	windows      []ScheduleWindow
	appointments []Appointment
	windowsErr   error
	apptsErr     error
}

func (m *mockProvider) ScheduleWindows(_ context.Context, _ uuid.UUID) ([]ScheduleWindow, error) {
	if m.windowsErr != nil {
		return nil, m.windowsErr
	}
	return m.windows, nil
}

func (m *mockProvider) Appointments(_ context.Context, _ uuid.UUID, _ Date) ([]Appointment, error) {
	if m.apptsErr != nil {
		return nil, m.apptsErr
	}
	return m.appointments, nil
}

func mondayRequest(now LocalDateTime) Request {
	return Request{
		AttendantID:     testAttendant,
		Date:            "2026-02-09",
		DurationMinutes: 30,
		Now:             now,
	}
}

func startTimes(r *Result) []string {
	out := make([]string, len(r.Slots))
	for i, s := range r.Slots {
		out[i] = s.StartTime
	}
	return out
}

func TestComputeAvailability_RecurringWindowNoAppointments(t *testing.T) {
	// Monday 08:00-10:00, 30 min service, now = Monday 07:00, grace 15:
	// all four slots are offerable.
	p := &mockProvider{windows: []ScheduleWindow{recurring(1, hm(8, 0), hm(10, 0))}}
	e := NewEngine(p)
	res, err := e.ComputeAvailability(context.Background(), mondayRequest(LocalDateTime{monday, hm(7, 0)}))
	if err != nil {
		t.Fatalf("ComputeAvailability: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got reason %q", res.Reason)
	}
	want := []string{"08:00", "08:30", "09:00", "09:30"}
	if got := startTimes(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slots = %v, want %v", got, want)
	}
	if res.Date != "2026-02-09" {
		t.Errorf("date = %q", res.Date)
	}
}

func TestComputeAvailability_BookedSlotRemoved(t *testing.T) {
	p := &mockProvider{
		windows:      []ScheduleWindow{recurring(1, hm(8, 0), hm(10, 0))},
		appointments: []Appointment{appt(monday, hm(8, 30), hm(9, 0), StatusScheduled)},
	}
	res, err := NewEngine(p).ComputeAvailability(context.Background(), mondayRequest(LocalDateTime{monday, hm(7, 0)}))
	if err != nil {
		t.Fatalf("ComputeAvailability: %v", err)
	}
	want := []string{"08:00", "09:00", "09:30"}
	if got := startTimes(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slots = %v, want %v", got, want)
	}
}

func TestComputeAvailability_FirstSlotJustPassed(t *testing.T) {
	// now = 08:05: the 08:00 slot is excluded, and only the 08:00 slot.
	// Historically the day boundary was computed in UTC while the grace
	// comparison ran in local time, which also dropped 08:30.
	p := &mockProvider{windows: []ScheduleWindow{recurring(1, hm(8, 0), hm(10, 0))}}
	res, err := NewEngine(p).ComputeAvailability(context.Background(), mondayRequest(LocalDateTime{monday, hm(8, 5)}))
	if err != nil {
		t.Fatalf("ComputeAvailability: %v", err)
	}
	want := []string{"08:30", "09:00", "09:30"}
	if got := startTimes(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slots = %v, want %v", got, want)
	}
}

// Regression for the first-slot bug: booking slot N and recomputing must
// remove exactly slot N, never N plus an unrelated slot.
func TestComputeAvailability_BookingRemovesExactlyThatSlot(t *testing.T) {
	windows := []ScheduleWindow{recurring(1, hm(8, 0), hm(10, 0))}
	now := LocalDateTime{monday, hm(7, 0)}
	ctx := context.Background()

	base, err := NewEngine(&mockProvider{windows: windows}).ComputeAvailability(ctx, mondayRequest(now))
	if err != nil {
		t.Fatalf("base: %v", err)
	}
	for _, booked := range base.Slots {
		start, _ := ParseTimeOfDay(booked.StartTime)
		end, _ := ParseTimeOfDay(booked.EndTime)
		p := &mockProvider{
			windows:      windows,
			appointments: []Appointment{appt(monday, start, end, StatusScheduled)},
		}
		res, err := NewEngine(p).ComputeAvailability(ctx, mondayRequest(now))
		if err != nil {
			t.Fatalf("after booking %s: %v", booked.StartTime, err)
		}
		if len(res.Slots) != len(base.Slots)-1 {
			t.Fatalf("booking %s: got %d slots, want %d", booked.StartTime, len(res.Slots), len(base.Slots)-1)
		}
		for _, s := range res.Slots {
			if s.StartTime == booked.StartTime {
				t.Errorf("booking %s: slot still offered", booked.StartTime)
			}
		}
	}
}

func TestComputeAvailability_SpecificDateWindowAddsSlots(t *testing.T) {
	// Recurring 08:00-10:00 plus specific 13:00-14:00 on the same Monday:
	// slots come from both ranges.
	p := &mockProvider{windows: []ScheduleWindow{
		recurring(1, hm(8, 0), hm(10, 0)),
		dated(monday, hm(13, 0), hm(14, 0)),
	}}
	res, err := NewEngine(p).ComputeAvailability(context.Background(), mondayRequest(LocalDateTime{monday, hm(7, 0)}))
	if err != nil {
		t.Fatalf("ComputeAvailability: %v", err)
	}
	want := []string{"08:00", "08:30", "09:00", "09:30", "13:00", "13:30"}
	if got := startTimes(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slots = %v, want %v", got, want)
	}
}

func TestComputeAvailability_FutureDateIgnoresNow(t *testing.T) {
	p := &mockProvider{windows: []ScheduleWindow{recurring(1, hm(8, 0), hm(10, 0))}}
	// Now is the previous Friday, late evening, huge grace: irrelevant.
	grace := 240
	req := mondayRequest(LocalDateTime{Date{2026, time.February, 6}, hm(23, 30)})
	req.GraceMinutes = &grace
	res, err := NewEngine(p).ComputeAvailability(context.Background(), req)
	if err != nil {
		t.Fatalf("ComputeAvailability: %v", err)
	}
	if len(res.Slots) != 4 {
		t.Errorf("got %d slots, want 4", len(res.Slots))
	}
}

func TestComputeAvailability_PastDateEmpty(t *testing.T) {
	p := &mockProvider{windows: []ScheduleWindow{recurring(1, hm(8, 0), hm(10, 0))}}
	res, err := NewEngine(p).ComputeAvailability(context.Background(), mondayRequest(LocalDateTime{Date{2026, time.February, 10}, hm(0, 1)}))
	if err != nil {
		t.Fatalf("ComputeAvailability: %v", err)
	}
	if !res.Success || len(res.Slots) != 0 {
		t.Errorf("past date: success=%v slots=%v", res.Success, res.Slots)
	}
}

func TestComputeAvailability_NoWindowsIsSuccessEmpty(t *testing.T) {
	res, err := NewEngine(&mockProvider{}).ComputeAvailability(context.Background(), mondayRequest(LocalDateTime{monday, hm(7, 0)}))
	if err != nil {
		t.Fatalf("ComputeAvailability: %v", err)
	}
	if !res.Success {
		t.Errorf("no windows must be a success, got reason %q", res.Reason)
	}
	if len(res.Slots) != 0 {
		t.Errorf("got %d slots, want 0", len(res.Slots))
	}
}

func TestComputeAvailability_InvalidInput(t *testing.T) {
	e := NewEngine(&mockProvider{windows: []ScheduleWindow{recurring(1, hm(8, 0), hm(10, 0))}})
	ctx := context.Background()
	now := LocalDateTime{monday, hm(7, 0)}

	req := mondayRequest(now)
	req.Date = "09/02/2026"
	res, err := e.ComputeAvailability(ctx, req)
	if err != nil || res.Success {
		t.Errorf("bad date: res=%+v err=%v", res, err)
	}

	req = mondayRequest(now)
	req.DurationMinutes = 0
	res, err = e.ComputeAvailability(ctx, req)
	if err != nil || res.Success {
		t.Errorf("zero duration: res=%+v err=%v", res, err)
	}

	req = mondayRequest(now)
	req.AttendantID = uuid.Nil
	res, err = e.ComputeAvailability(ctx, req)
	if err != nil || res.Success {
		t.Errorf("nil attendant: res=%+v err=%v", res, err)
	}

	neg := -5
	req = mondayRequest(now)
	req.GraceMinutes = &neg
	res, err = e.ComputeAvailability(ctx, req)
	if err != nil || res.Success {
		t.Errorf("negative grace: res=%+v err=%v", res, err)
	}
}

func TestComputeAvailability_ProviderErrorPropagates(t *testing.T) {
	wantErr := errors.New("db down")
	e := NewEngine(&mockProvider{windowsErr: wantErr})
	res, err := e.ComputeAvailability(context.Background(), mondayRequest(LocalDateTime{monday, hm(7, 0)}))
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v unchanged", err, wantErr)
	}
	if res != nil {
		t.Errorf("no partial result allowed, got %+v", res)
	}

	e = NewEngine(&mockProvider{
		windows:  []ScheduleWindow{recurring(1, hm(8, 0), hm(10, 0))},
		apptsErr: wantErr,
	})
	res, err = e.ComputeAvailability(context.Background(), mondayRequest(LocalDateTime{monday, hm(7, 0)}))
	if !errors.Is(err, wantErr) || res != nil {
		t.Errorf("appointments error: res=%+v err=%v", res, err)
	}
}

func TestComputeAvailability_Deterministic(t *testing.T) {
	p := &mockProvider{
		windows: []ScheduleWindow{
			recurring(1, hm(8, 0), hm(10, 0)),
			dated(monday, hm(13, 0), hm(14, 0)),
		},
		appointments: []Appointment{appt(monday, hm(9, 0), hm(9, 30), StatusScheduled)},
	}
	e := NewEngine(p)
	req := mondayRequest(LocalDateTime{monday, hm(7, 0)})
	first, err := e.ComputeAvailability(context.Background(), req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := e.ComputeAvailability(context.Background(), req)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestComputeAvailability_DuplicateWindowsDeduped(t *testing.T) {
	w := recurring(1, hm(8, 0), hm(9, 0))
	dup := recurring(1, hm(8, 0), hm(9, 0))
	p := &mockProvider{windows: []ScheduleWindow{w, dup}}
	res, err := NewEngine(p).ComputeAvailability(context.Background(), mondayRequest(LocalDateTime{monday, hm(7, 0)}))
	if err != nil {
		t.Fatalf("ComputeAvailability: %v", err)
	}
	want := []string{"08:00", "08:30"}
	if got := startTimes(res); !reflect.DeepEqual(got, want) {
		t.Errorf("slots = %v, want %v (no duplicates)", got, want)
	}
}

func TestComputeAvailability_DefaultGraceIs15(t *testing.T) {
	p := &mockProvider{windows: []ScheduleWindow{recurring(1, hm(8, 0), hm(10, 0))}}
	// now = 07:46: with the default 15 min buffer the 08:00 slot is gone;
	// at 07:45 it is still there.
	res, err := NewEngine(p).ComputeAvailability(context.Background(), mondayRequest(LocalDateTime{monday, hm(7, 46)}))
	if err != nil {
		t.Fatalf("ComputeAvailability: %v", err)
	}
	if len(res.Slots) != 3 || res.Slots[0].StartTime != "08:30" {
		t.Errorf("07:46: slots = %v", startTimes(res))
	}
	res, err = NewEngine(p).ComputeAvailability(context.Background(), mondayRequest(LocalDateTime{monday, hm(7, 45)}))
	if err != nil {
		t.Fatalf("ComputeAvailability: %v", err)
	}
	if len(res.Slots) != 4 {
		t.Errorf("07:45: slots = %v", startTimes(res))
	}
}
