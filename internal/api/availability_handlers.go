package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/availability"
)

const maxRangeDays = 31

// GetAvailableSlots retorna os slots disponíveis do atendente logado em uma
// data (?date=YYYY-MM-DD&duration=30[&service_id=]). Entrada inválida vira
// 400 com o motivo; erro de leitura do banco vira 500.
func (h *Handler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	attID, ok := attendantID(r)
	if !ok {
		http.Error(w, `{"error":"invalid attendant"}`, http.StatusBadRequest)
		return
	}
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		http.Error(w, `{"error":"date query param required (YYYY-MM-DD)"}`, http.StatusBadRequest)
		return
	}
	duration, err := strconv.Atoi(r.URL.Query().Get("duration"))
	if err != nil || duration <= 0 {
		http.Error(w, `{"error":"duration query param required (positive minutes)"}`, http.StatusBadRequest)
		return
	}
	var serviceID *uuid.UUID
	if s := r.URL.Query().Get("service_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, `{"error":"invalid service_id"}`, http.StatusBadRequest)
			return
		}
		serviceID = &id
	}
	grace := h.Cfg.GraceBufferMinutes
	res, err := h.Engine.ComputeAvailability(r.Context(), availability.Request{
		AttendantID:     attID,
		Date:            dateStr,
		ServiceID:       serviceID,
		DurationMinutes: duration,
		Now:             h.clinicNow(),
		GraceMinutes:    &grace,
	})
	if err != nil {
		log.Printf("[available-slots] ComputeAvailability: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if !res.Success {
		w.WriteHeader(http.StatusBadRequest)
	}
	_ = json.NewEncoder(w).Encode(res)
}

// GetAvailableSlotsRange roda o motor por dia no intervalo [from, to]
// (?from=&to=&duration=[&service_id=]), o formato do seletor de remarcação.
// Dias sem agenda entram com a lista vazia, para o front desenhar o calendário.
func (h *Handler) GetAvailableSlotsRange(w http.ResponseWriter, r *http.Request) {
	attID, ok := attendantID(r)
	if !ok {
		http.Error(w, `{"error":"invalid attendant"}`, http.StatusBadRequest)
		return
	}
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		http.Error(w, `{"error":"from and to query params required (YYYY-MM-DD)"}`, http.StatusBadRequest)
		return
	}
	from, err1 := availability.ParseDate(fromStr)
	to, err2 := availability.ParseDate(toStr)
	if err1 != nil || err2 != nil {
		http.Error(w, `{"error":"from and to must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}
	if to.Before(from) {
		http.Error(w, `{"error":"to must be >= from"}`, http.StatusBadRequest)
		return
	}
	duration, err := strconv.Atoi(r.URL.Query().Get("duration"))
	if err != nil || duration <= 0 {
		http.Error(w, `{"error":"duration query param required (positive minutes)"}`, http.StatusBadRequest)
		return
	}
	var serviceID *uuid.UUID
	if s := r.URL.Query().Get("service_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, `{"error":"invalid service_id"}`, http.StatusBadRequest)
			return
		}
		serviceID = &id
	}
	grace := h.Cfg.GraceBufferMinutes
	now := h.clinicNow()
	days := make([]*availability.Result, 0, maxRangeDays)
	cur := time.Date(from.Year, from.Month, from.Day, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year, to.Month, to.Day, 0, 0, 0, 0, time.UTC)
	for i := 0; !cur.After(end); i++ {
		if i >= maxRangeDays {
			http.Error(w, `{"error":"range too large (max 31 days)"}`, http.StatusBadRequest)
			return
		}
		res, err := h.Engine.ComputeAvailability(r.Context(), availability.Request{
			AttendantID:     attID,
			Date:            cur.Format("2006-01-02"),
			ServiceID:       serviceID,
			DurationMinutes: duration,
			Now:             now,
			GraceMinutes:    &grace,
		})
		if err != nil {
			log.Printf("[available-slots] ComputeAvailability %s: %v", cur.Format("2006-01-02"), err)
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		days = append(days, res)
		cur = cur.AddDate(0, 0, 1)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"days": days})
}
