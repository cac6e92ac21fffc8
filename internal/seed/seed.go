package seed

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/auth"
	"gorm.io/gorm"
)

// Run popula o banco vazio com dados de demonstração: uma clínica, um
// SUPER_ADMIN, dois atendentes com agenda semanal e alguns pacientes.
// Idempotente: se já houver atendentes, não faz nada.
func Run(ctx context.Context, db *gorm.DB) error {
	var n int
	if err := db.WithContext(ctx).Raw("SELECT COUNT(*) FROM attendants").Scan(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		log.Printf("seed: atendentes existem, nada a fazer")
		return nil
	}

	clinicID := uuid.New()
	if err := db.WithContext(ctx).Exec(`INSERT INTO clinics (id, name) VALUES (?, 'Clínica Demo')`, clinicID).Error; err != nil {
		return err
	}

	adminHash, err := auth.HashPassword("Admin123!")
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Exec(`
		INSERT INTO attendants (id, clinic_id, email, password_hash, full_name, role, active)
		VALUES (?, ?, 'admin@clinica.local', ?, 'Super Admin', 'SUPER_ADMIN', true)
	`, uuid.New(), clinicID, adminHash).Error; err != nil {
		return err
	}

	attHash, err := auth.HashPassword("ChangeMe123!")
	if err != nil {
		return err
	}
	a1, a2 := uuid.New(), uuid.New()
	if err := db.WithContext(ctx).Exec(`
		INSERT INTO attendants (id, clinic_id, email, password_hash, full_name, role, active)
		VALUES (?, ?, 'ana@clinica.local', ?, 'Ana Atendente', 'ATTENDANT', true),
		       (?, ?, 'bruno@clinica.local', ?, 'Bruno Atendente', 'ATTENDANT', true)
	`, a1, clinicID, attHash, a2, clinicID, attHash).Error; err != nil {
		return err
	}

	// Agenda semanal de segunda a sexta, com pausa de almoço modelada como
	// duas janelas por dia.
	for _, att := range []uuid.UUID{a1, a2} {
		for day := 1; day <= 5; day++ {
			if err := db.WithContext(ctx).Exec(`
				INSERT INTO schedule_windows (id, attendant_id, day_of_week, start_time, end_time, active)
				VALUES (?, ?, ?, '08:00', '12:00', true),
				       (?, ?, ?, '13:00', '17:00', true)
			`, uuid.New(), att, day, uuid.New(), att, day).Error; err != nil {
				return err
			}
		}
	}

	patients := []struct {
		name  string
		phone string
	}{
		{"Maria Souza", "+5511999990001"},
		{"João Lima", "+5511999990002"},
		{"Pedro Alves", ""},
	}
	for _, p := range patients {
		if err := db.WithContext(ctx).Exec(`
			INSERT INTO patients (id, clinic_id, full_name, phone)
			VALUES (?, ?, ?, NULLIF(?, ''))
		`, uuid.New(), clinicID, p.name, p.phone).Error; err != nil {
			return err
		}
	}
	log.Printf("seed: clínica demo criada com 2 atendentes e %d pacientes", len(patients))
	return nil
}
