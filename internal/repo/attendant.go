package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Attendant é o profissional cuja agenda é consultada.
type Attendant struct {
	ID           uuid.UUID
	ClinicID     uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Role         string // ATTENDANT | SUPER_ADMIN
	Active       bool
}

func AttendantByEmail(ctx context.Context, pool *pgxpool.Pool, email string) (*Attendant, error) {
	var a Attendant
	err := pool.QueryRow(ctx, `
		SELECT id, clinic_id, email, password_hash, full_name, role, active
		FROM attendants WHERE lower(email) = lower($1)
	`, email).Scan(&a.ID, &a.ClinicID, &a.Email, &a.PasswordHash, &a.FullName, &a.Role, &a.Active)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func AttendantByID(ctx context.Context, pool *pgxpool.Pool, id uuid.UUID) (*Attendant, error) {
	var a Attendant
	err := pool.QueryRow(ctx, `
		SELECT id, clinic_id, email, password_hash, full_name, role, active
		FROM attendants WHERE id = $1
	`, id).Scan(&a.ID, &a.ClinicID, &a.Email, &a.PasswordHash, &a.FullName, &a.Role, &a.Active)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
