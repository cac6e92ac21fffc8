package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/auth"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/availability"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/repo"
)

var (
	ErrWindowDayOrDate = errors.New("window must have exactly one of day_of_week or specific_date")
	ErrWindowTimes     = errors.New("window start_time must be before end_time")
)

// ScheduleWindowInput é uma janela no corpo do PUT.
type ScheduleWindowInput struct {
	ServiceID    *string `json:"service_id"`
	DayOfWeek    *int    `json:"day_of_week"`    // 1=segunda .. 7=domingo
	SpecificDate *string `json:"specific_date"`  // YYYY-MM-DD
	StartTime    string  `json:"start_time"`     // HH:MM
	EndTime      string  `json:"end_time"`       // HH:MM
	Active       *bool   `json:"active"`         // default true
}

// validateWindowInput checa a janela e a converte para a linha persistida.
// Exatamente um entre day_of_week e specific_date; horários HH:MM com
// start < end; service_id, se presente, um uuid válido.
func validateWindowInput(in ScheduleWindowInput) (repo.ScheduleWindow, error) {
	var out repo.ScheduleWindow
	hasDay := in.DayOfWeek != nil
	hasDate := in.SpecificDate != nil && *in.SpecificDate != ""
	if hasDay == hasDate {
		return out, ErrWindowDayOrDate
	}
	if hasDay {
		if *in.DayOfWeek < 1 || *in.DayOfWeek > 7 {
			return out, fmt.Errorf("day_of_week must be 1..7, got %d", *in.DayOfWeek)
		}
		d := *in.DayOfWeek
		out.DayOfWeek = &d
	} else {
		t, err := time.Parse("2006-01-02", *in.SpecificDate)
		if err != nil {
			return out, fmt.Errorf("invalid specific_date %q", *in.SpecificDate)
		}
		out.SpecificDate = &t
	}
	start, err := availability.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return out, fmt.Errorf("invalid start_time %q", in.StartTime)
	}
	end, err := availability.ParseTimeOfDay(in.EndTime)
	if err != nil {
		return out, fmt.Errorf("invalid end_time %q", in.EndTime)
	}
	if start >= end {
		return out, ErrWindowTimes
	}
	out.StartTime = start.String()
	out.EndTime = end.String()
	if in.ServiceID != nil && *in.ServiceID != "" {
		id, err := uuid.Parse(*in.ServiceID)
		if err != nil {
			return out, fmt.Errorf("invalid service_id %q", *in.ServiceID)
		}
		out.ServiceID = &id
	}
	out.Active = true
	if in.Active != nil {
		out.Active = *in.Active
	}
	return out, nil
}

func windowToJSON(w repo.ScheduleWindow) map[string]interface{} {
	var serviceID, specificDate interface{}
	if w.ServiceID != nil {
		serviceID = w.ServiceID.String()
	}
	if w.SpecificDate != nil {
		specificDate = w.SpecificDate.Format("2006-01-02")
	}
	var dayOfWeek interface{}
	if w.DayOfWeek != nil {
		dayOfWeek = *w.DayOfWeek
	}
	return map[string]interface{}{
		"id":            w.ID.String(),
		"service_id":    serviceID,
		"day_of_week":   dayOfWeek,
		"specific_date": specificDate,
		"start_time":    repo.TimeStringToHHMM(w.StartTime),
		"end_time":      repo.TimeStringToHHMM(w.EndTime),
		"active":        w.Active,
	}
}

// GetMyScheduleWindows lista as janelas do atendente logado, com cache TTL.
func (h *Handler) GetMyScheduleWindows(w http.ResponseWriter, r *http.Request) {
	attID, ok := attendantID(r)
	if !ok {
		http.Error(w, `{"error":"invalid attendant"}`, http.StatusBadRequest)
		return
	}
	cacheKey := "windows:" + attID.String()
	if h.Cache != nil {
		if cached := h.Cache.Get(cacheKey); cached != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Cache-Control", "no-store")
			_, _ = w.Write(cached)
			return
		}
	}
	list, err := repo.ListScheduleWindows(r.Context(), h.DB, attID)
	if err != nil {
		log.Printf("[schedule] GET schedule-windows: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]map[string]interface{}, len(list))
	for i, sw := range list {
		out[i] = windowToJSON(sw)
	}
	buf, _ := json.Marshal(map[string]interface{}{"windows": out})
	if h.Cache != nil && len(list) > 0 {
		h.Cache.Set(cacheKey, buf)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf)
}

// PutMyScheduleWindows substitui a agenda do atendente: remove todas as
// janelas e grava só as que vieram no body.
func (h *Handler) PutMyScheduleWindows(w http.ResponseWriter, r *http.Request) {
	attID, ok := attendantID(r)
	if !ok {
		http.Error(w, `{"error":"invalid attendant"}`, http.StatusBadRequest)
		return
	}
	var req struct {
		Windows []ScheduleWindowInput `json:"windows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	rows := make([]repo.ScheduleWindow, 0, len(req.Windows))
	for i, in := range req.Windows {
		row, err := validateWindowInput(in)
		if err != nil {
			msg, _ := json.Marshal(map[string]string{"error": fmt.Sprintf("windows[%d]: %v", i, err)})
			http.Error(w, string(msg), http.StatusBadRequest)
			return
		}
		rows = append(rows, row)
	}
	if err := repo.ReplaceScheduleWindows(r.Context(), h.DB, attID, rows); err != nil {
		log.Printf("[schedule] PUT schedule-windows ReplaceScheduleWindows: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if h.Cache != nil {
		h.Cache.Delete("windows:" + attID.String())
	}
	h.auditEvent(r, "SCHEDULE_WINDOWS_REPLACED", "SCHEDULE", &attID, map[string]interface{}{"count": len(rows)})
	// Relê do banco para resposta e próximo GET ficarem consistentes.
	list, err := repo.ListScheduleWindows(r.Context(), h.DB, attID)
	if err != nil {
		log.Printf("[schedule] PUT schedule-windows ListScheduleWindows: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]map[string]interface{}, len(list))
	for i, sw := range list {
		out[i] = windowToJSON(sw)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"message": "Agenda salva.", "windows": out})
}

// auditEvent grava o evento de auditoria da mutação; falha de auditoria não
// falha a requisição.
func (h *Handler) auditEvent(r *http.Request, action, resourceType string, resourceID *uuid.UUID, metadata interface{}) {
	if h.Pool == nil {
		return
	}
	var actorID *uuid.UUID
	if uid, err := uuid.Parse(auth.UserIDFrom(r.Context())); err == nil {
		actorID = &uid
	}
	var clinic *uuid.UUID
	if cid, ok := clinicID(r); ok {
		clinic = &cid
	}
	err := repo.CreateAuditEvent(r.Context(), h.Pool, repo.AuditEvent{
		Action:       action,
		ActorType:    auth.RoleFrom(r.Context()),
		ActorID:      actorID,
		ClinicID:     clinic,
		RequestID:    r.Header.Get("X-Request-ID"),
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
		ResourceType: &resourceType,
		ResourceID:   resourceID,
		Source:       strPtr("USER"),
		Severity:     strPtr("INFO"),
		Metadata:     metadata,
	})
	if err != nil {
		log.Printf("[audit] %s: %v", action, err)
	}
}
