package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrSlotConflict means the requested interval overlaps a non-cancelled
// appointment of the same attendant. Booking is optimistic: availability is
// a snapshot, so the overlap invariant is re-checked inside the write and
// the write fails instead of double-booking.
var ErrSlotConflict = errors.New("slot conflicts with an existing appointment")

// Appointment is an agenda appointment.
// StartTime and EndTime are string (e.g. "09:00:00"); PostgreSQL TIME is
// returned as string by the driver. Status is one of SCHEDULED, IN_PROGRESS,
// COMPLETED, CANCELLED; only CANCELLED frees the interval.
type Appointment struct {
	ID              uuid.UUID
	ClinicID        uuid.UUID
	AttendantID     uuid.UUID
	PatientID       uuid.UUID
	ServiceID       *uuid.UUID
	AppointmentDate time.Time
	StartTime       string `gorm:"column:start_time;type:time"`
	EndTime         string `gorm:"column:end_time;type:time"`
	Status          string
	Notes           *string
}

func ListAppointmentsByAttendantAndDate(ctx context.Context, db *gorm.DB, attendantID uuid.UUID, date time.Time) ([]Appointment, error) {
	var list []Appointment
	err := db.WithContext(ctx).Raw(`
		SELECT a.id, a.clinic_id, a.attendant_id, a.patient_id, a.service_id, a.appointment_date, a.start_time, a.end_time, a.status, a.notes
		FROM appointments a
		WHERE a.attendant_id = ? AND a.appointment_date = ?::date AND a.status != 'CANCELLED'
		ORDER BY a.start_time
	`, attendantID, date.Format("2006-01-02")).Scan(&list).Error
	return list, err
}

func ListAppointmentsByAttendantAndDateRange(ctx context.Context, db *gorm.DB, attendantID uuid.UUID, from, to time.Time, limit, offset int) ([]Appointment, error) {
	var list []Appointment
	err := db.WithContext(ctx).Raw(`
		SELECT a.id, a.clinic_id, a.attendant_id, a.patient_id, a.service_id, a.appointment_date, a.start_time, a.end_time, a.status, a.notes
		FROM appointments a
		WHERE a.attendant_id = ? AND a.appointment_date >= ? AND a.appointment_date <= ? AND a.status != 'CANCELLED'
		ORDER BY a.appointment_date, a.start_time
		LIMIT ? OFFSET ?
	`, attendantID, from, to, limit, offset).Scan(&list).Error
	return list, err
}

func AppointmentByIDAndClinic(ctx context.Context, db *gorm.DB, id, clinicID uuid.UUID) (*Appointment, error) {
	var a Appointment
	err := db.WithContext(ctx).Table("appointments").Where("id = ? AND clinic_id = ?", id, clinicID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAppointmentIfFree inserts the appointment only when no non-cancelled
// appointment of the attendant overlaps [start_time, end_time) on that date
// (half-open: touching boundaries are fine). Returns ErrSlotConflict when
// the interval is taken; the check and the insert are one statement, so two
// concurrent bookings of the same slot cannot both succeed.
func CreateAppointmentIfFree(ctx context.Context, db *gorm.DB, a *Appointment) (uuid.UUID, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	var res struct{ ID uuid.UUID }
	err := db.WithContext(ctx).Raw(`
		INSERT INTO appointments (id, clinic_id, attendant_id, patient_id, service_id, appointment_date, start_time, end_time, status, notes)
		SELECT ?, ?, ?, ?, ?, ?::date, ?::time, ?::time, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments b
			WHERE b.attendant_id = ?
			  AND b.appointment_date = ?::date
			  AND b.status != 'CANCELLED'
			  AND b.start_time < ?::time
			  AND ?::time < b.end_time
		)
		RETURNING id
	`,
		a.ID, a.ClinicID, a.AttendantID, a.PatientID, a.ServiceID,
		a.AppointmentDate.Format("2006-01-02"), a.StartTime, a.EndTime, a.Status, a.Notes,
		a.AttendantID, a.AppointmentDate.Format("2006-01-02"), a.EndTime, a.StartTime,
	).Scan(&res).Error
	if err != nil {
		return uuid.Nil, err
	}
	if res.ID == uuid.Nil {
		return uuid.Nil, ErrSlotConflict
	}
	return res.ID, nil
}

// RescheduleAppointmentIfFree moves the appointment to a new date/time with
// the same write-time overlap guard, ignoring the appointment itself.
func RescheduleAppointmentIfFree(ctx context.Context, db *gorm.DB, id, clinicID uuid.UUID, date time.Time, startTime, endTime string) error {
	result := db.WithContext(ctx).Exec(`
		UPDATE appointments a
		SET appointment_date = ?::date, start_time = ?::time, end_time = ?::time, updated_at = now()
		WHERE a.id = ? AND a.clinic_id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM appointments b
			WHERE b.attendant_id = a.attendant_id
			  AND b.id != a.id
			  AND b.appointment_date = ?::date
			  AND b.status != 'CANCELLED'
			  AND b.start_time < ?::time
			  AND ?::time < b.end_time
		  )
	`, date.Format("2006-01-02"), startTime, endTime, id, clinicID,
		date.Format("2006-01-02"), endTime, startTime)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflictOrNotFound(ctx, db, id, clinicID)
	}
	return nil
}

// ReactivateAppointmentIfFree muda o status de um agendamento CANCELLED de
// volta para um status que ocupa o intervalo. O intervalo pode ter sido
// reagendado por outra pessoa depois do cancelamento, então a reativação
// passa pela mesma guarda de sobreposição do insert e falha com
// ErrSlotConflict em vez de duplicar o horário.
func ReactivateAppointmentIfFree(ctx context.Context, db *gorm.DB, id, clinicID uuid.UUID, status string) error {
	result := db.WithContext(ctx).Exec(`
		UPDATE appointments a
		SET status = ?, updated_at = now()
		WHERE a.id = ? AND a.clinic_id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM appointments b
			WHERE b.attendant_id = a.attendant_id
			  AND b.id != a.id
			  AND b.appointment_date = a.appointment_date
			  AND b.status != 'CANCELLED'
			  AND b.start_time < a.end_time
			  AND a.start_time < b.end_time
		  )
	`, status, id, clinicID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflictOrNotFound(ctx, db, id, clinicID)
	}
	return nil
}

// conflictOrNotFound separa as duas causas de zero linhas afetadas numa
// guarda de sobreposição: a linha sumiu (ErrRecordNotFound) ou o intervalo
// está tomado (ErrSlotConflict).
func conflictOrNotFound(ctx context.Context, db *gorm.DB, id, clinicID uuid.UUID) error {
	var n int64
	if err := db.WithContext(ctx).Table("appointments").Where("id = ? AND clinic_id = ?", id, clinicID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrSlotConflict
}

// UpdateAppointmentStatus altera status e/ou notas (sem mexer em data/hora).
func UpdateAppointmentStatus(ctx context.Context, db *gorm.DB, id, clinicID uuid.UUID, status *string, notes *string) error {
	updates := map[string]interface{}{"updated_at": gorm.Expr("now()")}
	if status != nil {
		updates["status"] = *status
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	return db.WithContext(ctx).Table("appointments").Where("id = ? AND clinic_id = ?", id, clinicID).Updates(updates).Error
}

// AppointmentReminderRow holds data to send one reminder.
// StartTime is string; PostgreSQL TIME is returned as string by the driver.
type AppointmentReminderRow struct {
	AppointmentID   uuid.UUID
	PatientID       uuid.UUID
	PatientName     string
	AppointmentDate time.Time
	StartTime       string
	PatientPhone    string
}

// ListAppointmentsForReminder returns appointments on the given date with a
// patient phone, for the WhatsApp reminder. Only SCHEDULED and IN_PROGRESS;
// only patients with a non-empty phone.
func ListAppointmentsForReminder(ctx context.Context, db *gorm.DB, date time.Time) ([]AppointmentReminderRow, error) {
	dateStr := date.Format("2006-01-02")
	var list []AppointmentReminderRow
	err := db.WithContext(ctx).Raw(`
		SELECT a.id as appointment_id, p.id as patient_id, COALESCE(p.full_name, '') as patient_name,
		       a.appointment_date, a.start_time, TRIM(p.phone) as patient_phone
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.appointment_date = ?::date
		  AND a.status IN ('SCHEDULED', 'IN_PROGRESS')
		  AND p.phone IS NOT NULL AND TRIM(p.phone) != ''
		ORDER BY a.start_time, p.full_name
	`, dateStr).Scan(&list).Error
	return list, err
}
