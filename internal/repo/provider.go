package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/availability"
	"gorm.io/gorm"
)

// AvailabilityProvider adapts the database rows to the availability engine's
// typed model. Rows with malformed time strings are a data fault and surface
// as errors instead of silently producing wrong slots.
type AvailabilityProvider struct {
	DB *gorm.DB
}

func (p *AvailabilityProvider) ScheduleWindows(ctx context.Context, attendantID uuid.UUID) ([]availability.ScheduleWindow, error) {
	rows, err := ListScheduleWindows(ctx, p.DB, attendantID)
	if err != nil {
		return nil, err
	}
	out := make([]availability.ScheduleWindow, 0, len(rows))
	for _, r := range rows {
		start, err := availability.ParseTimeOfDay(r.StartTime)
		if err != nil {
			return nil, fmt.Errorf("schedule window %s: %w", r.ID, err)
		}
		end, err := availability.ParseTimeOfDay(r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("schedule window %s: %w", r.ID, err)
		}
		w := availability.ScheduleWindow{
			ID:          r.ID,
			AttendantID: r.AttendantID,
			ServiceID:   r.ServiceID,
			DayOfWeek:   r.DayOfWeek,
			Start:       start,
			End:         end,
			Active:      r.Active,
		}
		if r.SpecificDate != nil {
			d := availability.DateOf(*r.SpecificDate)
			w.SpecificDate = &d
		}
		out = append(out, w)
	}
	return out, nil
}

func (p *AvailabilityProvider) Appointments(ctx context.Context, attendantID uuid.UUID, date availability.Date) ([]availability.Appointment, error) {
	day := time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, time.UTC)
	rows, err := ListAppointmentsByAttendantAndDate(ctx, p.DB, attendantID, day)
	if err != nil {
		return nil, err
	}
	out := make([]availability.Appointment, 0, len(rows))
	for _, r := range rows {
		start, err := availability.ParseTimeOfDay(r.StartTime)
		if err != nil {
			return nil, fmt.Errorf("appointment %s: %w", r.ID, err)
		}
		end, err := availability.ParseTimeOfDay(r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("appointment %s: %w", r.ID, err)
		}
		out = append(out, availability.Appointment{
			ID:          r.ID,
			AttendantID: r.AttendantID,
			Date:        availability.DateOf(r.AppointmentDate),
			Start:       start,
			End:         end,
			Status:      availability.AppointmentStatus(r.Status),
		})
	}
	return out, nil
}
