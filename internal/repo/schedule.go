package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScheduleWindow is one availability window of an attendant: recurring
// (day_of_week 1=Monday .. 7=Sunday) or date-specific (specific_date set).
// Exactly one of the two is set, enforced by a table CHECK.
// Time fields are string (e.g. "08:00" or "08:00:00"); PostgreSQL TIME is
// returned as string by the driver.
type ScheduleWindow struct {
	ID           uuid.UUID  `gorm:"primaryKey;type:uuid"`
	AttendantID  uuid.UUID  `gorm:"type:uuid"`
	ServiceID    *uuid.UUID `gorm:"type:uuid"`
	DayOfWeek    *int
	SpecificDate *time.Time `gorm:"type:date"`
	StartTime    string     `gorm:"type:time"`
	EndTime      string     `gorm:"type:time"`
	Active       bool       `gorm:"default:true"`
}

// TableName overrides GORM table name.
func (ScheduleWindow) TableName() string { return "schedule_windows" }

func ListScheduleWindows(ctx context.Context, db *gorm.DB, attendantID uuid.UUID) ([]ScheduleWindow, error) {
	var list []ScheduleWindow
	err := db.WithContext(ctx).
		Where("attendant_id = ?", attendantID).
		Order("day_of_week NULLS LAST, specific_date NULLS LAST, start_time").
		Find(&list).Error
	return list, err
}

// ReplaceScheduleWindows substitui a agenda do atendente: remove todas as
// janelas e grava só as que vieram no body (mesma semântica do PUT).
func ReplaceScheduleWindows(ctx context.Context, db *gorm.DB, attendantID uuid.UUID, windows []ScheduleWindow) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attendant_id = ?", attendantID).Delete(&ScheduleWindow{}).Error; err != nil {
			return err
		}
		for i := range windows {
			windows[i].AttendantID = attendantID
			if windows[i].ID == uuid.Nil {
				windows[i].ID = uuid.New()
			}
			if err := tx.Create(&windows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// TimeStringToHHMM returns "HH:MM" from a DB time string ("HH:MM:SS" or "HH:MM").
func TimeStringToHHMM(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}
