package availability

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// DefaultGraceMinutes is the lead time required between "now" and a slot's
// start for the slot to remain offerable, when the caller does not say
// otherwise.
const DefaultGraceMinutes = 15

// Provider is the read-only data collaborator. The engine never retries or
// swallows its errors; retry policy belongs to the data layer.
type Provider interface {
	ScheduleWindows(ctx context.Context, attendantID uuid.UUID) ([]ScheduleWindow, error)
	Appointments(ctx context.Context, attendantID uuid.UUID, date Date) ([]Appointment, error)
}

// Request are the inputs of one availability computation. Now must be built
// from the clinic's wall clock (see LocalDateTimeOf); the engine reads no
// global clock, so identical requests always produce identical results.
type Request struct {
	AttendantID     uuid.UUID
	Date            string // 2006-01-02
	ServiceID       *uuid.UUID
	DurationMinutes int
	Now             LocalDateTime
	GraceMinutes    *int // nil = DefaultGraceMinutes
}

// Slot is one offerable interval in a Result.
type Slot struct {
	StartTime string `json:"start_time"` // 15:04
	EndTime   string `json:"end_time"`   // 15:04
}

// Result is the outcome of a computation. Success=false carries a Reason and
// means the input was rejected before any stage ran; an empty Slots list on
// Success=true is a valid outcome, not a fault.
type Result struct {
	Date    string `json:"date"`
	Slots   []Slot `json:"slots"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Engine computes bookable slots for an attendant, date and service. It is
// stateless and safe for concurrent use; the returned slots are a snapshot,
// not a reservation, so booking must re-validate the occupancy invariant at
// write time.
type Engine struct {
	provider Provider
}

func NewEngine(p Provider) *Engine {
	return &Engine{provider: p}
}

// ComputeAvailability runs the four stages in order: resolve windows,
// generate candidate slots, drop occupied slots, drop expired slots.
// Invalid input returns a structured failure with a nil error; a provider
// error is returned unchanged and no partial result is produced.
func (e *Engine) ComputeAvailability(ctx context.Context, req Request) (*Result, error) {
	if req.AttendantID == uuid.Nil {
		return failure("attendant id is required"), nil
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return failure("invalid date, expected YYYY-MM-DD"), nil
	}
	if req.DurationMinutes <= 0 {
		return failure("duration must be a positive number of minutes"), nil
	}
	grace := DefaultGraceMinutes
	if req.GraceMinutes != nil {
		grace = *req.GraceMinutes
	}
	if grace < 0 {
		return failure("grace buffer must not be negative"), nil
	}

	windows, err := e.provider.ScheduleWindows(ctx, req.AttendantID)
	if err != nil {
		return nil, err
	}
	appointments, err := e.provider.Appointments(ctx, req.AttendantID, date)
	if err != nil {
		return nil, err
	}

	resolved := ResolveWindows(windows, date, req.ServiceID)
	slots := GenerateSlots(date, resolved, req.DurationMinutes)
	slots = FilterOccupied(slots, appointments)
	slots = FilterExpired(slots, ExpirationPolicy{Now: req.Now, GraceMinutes: grace})

	out := make([]Slot, 0, len(slots))
	seen := make(map[TimeOfDay]bool, len(slots))
	for _, s := range slots {
		if seen[s.Start] {
			continue
		}
		seen[s.Start] = true
		out = append(out, Slot{StartTime: s.Start.String(), EndTime: s.End.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })

	return &Result{Date: date.String(), Slots: out, Success: true}, nil
}

func failure(reason string) *Result {
	return &Result{Success: false, Reason: reason}
}
