package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeOfDay is a wall-clock time as minutes since midnight (e.g. 08:30 = 510).
// Comparisons between slots, windows and appointments are plain integer
// comparisons, so they cannot depend on the machine's UTC offset.
type TimeOfDay int

// ParseTimeOfDay interpreta "HH:MM" ou "HH:MM:SS" (PostgreSQL TIME vem como string no driver).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	var t time.Time
	var err error
	if len(s) > 5 && s[5] == ':' {
		t, err = time.Parse("15:04:05", s)
	} else {
		t, err = time.Parse("15:04", s)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Date is a plain calendar date. It deliberately carries no location and no
// instant: building comparison instants from an ISO date truncated at UTC
// midnight is how slots used to expire hours too early or too late depending
// on the server's offset.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate interpreta "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf extracts the calendar date from t using t's own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ISOWeekday returns 1=Monday .. 7=Sunday, computed from the date's own
// year/month/day components only.
func (d Date) ISOWeekday() int {
	wd := int(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) Equal(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) After(o Date) bool {
	return o.Before(d)
}

// LocalDateTime is a wall-clock date-time in the clinic's calendar.
type LocalDateTime struct {
	Date Date
	Time TimeOfDay
}

// LocalDateTimeOf decomposes t into calendar components in t's location.
// The caller picks the location (the clinic timezone); from here on the
// engine never touches instants or offsets again.
func LocalDateTimeOf(t time.Time) LocalDateTime {
	return LocalDateTime{
		Date: DateOf(t),
		Time: TimeOfDay(t.Hour()*60 + t.Minute()),
	}
}

// ScheduleWindow is one recurring-weekly or date-specific availability
// window of an attendant. Exactly one of DayOfWeek (1=Mon..7=Sun) and
// SpecificDate is set; a ServiceID of nil means the window serves any service.
type ScheduleWindow struct {
	ID           uuid.UUID
	AttendantID  uuid.UUID
	ServiceID    *uuid.UUID
	DayOfWeek    *int
	SpecificDate *Date
	Start        TimeOfDay
	End          TimeOfDay
	Active       bool
}

type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "SCHEDULED"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
)

// Appointment is a booked occupation of an attendant's time.
type Appointment struct {
	ID          uuid.UUID
	AttendantID uuid.UUID
	Date        Date
	Start       TimeOfDay
	End         TimeOfDay
	Status      AppointmentStatus
}

// Blocks reports whether the appointment occupies its interval.
// Cancelled appointments never block.
func (a Appointment) Blocks() bool {
	return a.Status != StatusCancelled
}

// TimeSlot is one bookable candidate. Slots live only for the duration of a
// single availability computation.
type TimeSlot struct {
	Date  Date
	Start TimeOfDay
	End   TimeOfDay
}

func (s TimeSlot) DurationMinutes() int {
	return int(s.End - s.Start)
}

// ExpirationPolicy decides when a slot is too late to offer: a slot starting
// before Now plus GraceMinutes is no longer bookable.
type ExpirationPolicy struct {
	Now          LocalDateTime
	GraceMinutes int
}

// overlaps is the half-open interval test shared by the occupancy filter and
// the override resolution: [aStart,aEnd) and [bStart,bEnd) overlap iff
// aStart < bEnd && bStart < aEnd. An interval ending exactly where the other
// starts does not overlap.
func overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}
