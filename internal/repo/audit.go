package repo

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditEvent struct {
	Action       string
	ActorType    string
	ActorID      *uuid.UUID
	ClinicID     *uuid.UUID
	RequestID    string
	IP           string
	UserAgent    string
	ResourceType *string
	ResourceID   *uuid.UUID
	Source       *string // USER|SYSTEM
	Severity     *string // INFO|WARN|ERROR
	Metadata     interface{}
}

func CreateAuditEvent(ctx context.Context, pool *pgxpool.Pool, ev AuditEvent) error {
	var meta []byte
	if ev.Metadata != nil {
		var marshalErr error
		meta, marshalErr = json.Marshal(ev.Metadata)
		if marshalErr != nil {
			return marshalErr
		}
	}
	_, err := pool.Exec(ctx, `
		INSERT INTO audit_events (
			action, actor_type, actor_id, clinic_id, request_id, ip, user_agent,
			resource_type, resource_id, source, severity, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		ev.Action, ev.ActorType, ev.ActorID, ev.ClinicID, nullIfEmptyText(ev.RequestID), nullIfEmptyText(ev.IP), nullIfEmptyText(ev.UserAgent),
		ev.ResourceType, ev.ResourceID, ev.Source, ev.Severity, meta,
	)
	return err
}

func nullIfEmptyText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
