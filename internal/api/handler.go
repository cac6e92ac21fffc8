package api

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/availability"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/cache"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/config"
	"gorm.io/gorm"
)

type Handler struct {
	Pool   *pgxpool.Pool
	DB     *gorm.DB
	Cfg    *config.Config
	Cache  *cache.TTL
	Engine *availability.Engine

	// nowFn existe para os testes congelarem o relógio. nil = time.Now.
	nowFn func() time.Time
}

func (h *Handler) SetNow(fn func() time.Time) { h.nowFn = fn }

// clinicNow returns the clinic's wall clock as local calendar components.
// Availability must never be computed from a UTC instant: near midnight the
// UTC date differs from the clinic date and whole days flip.
func (h *Handler) clinicNow() availability.LocalDateTime {
	now := time.Now()
	if h.nowFn != nil {
		now = h.nowFn()
	}
	loc, err := time.LoadLocation(h.Cfg.ClinicTimezone)
	if err != nil {
		loc = time.UTC
	}
	return availability.LocalDateTimeOf(now.In(loc))
}

func strPtr(s string) *string { return &s }
