package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/availability"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/repo"
	"gorm.io/gorm"
)

var allowedStatuses = map[string]bool{
	"SCHEDULED": true, "IN_PROGRESS": true, "COMPLETED": true, "CANCELLED": true,
}

func appointmentToJSON(a repo.Appointment) map[string]interface{} {
	var serviceID interface{}
	if a.ServiceID != nil {
		serviceID = a.ServiceID.String()
	}
	notes := ""
	if a.Notes != nil {
		notes = *a.Notes
	}
	return map[string]interface{}{
		"id":               a.ID.String(),
		"attendant_id":     a.AttendantID.String(),
		"patient_id":       a.PatientID.String(),
		"service_id":       serviceID,
		"appointment_date": a.AppointmentDate.Format("2006-01-02"),
		"start_time":       repo.TimeStringToHHMM(a.StartTime),
		"end_time":         repo.TimeStringToHHMM(a.EndTime),
		"status":           a.Status,
		"notes":            notes,
	}
}

// ListAppointments lista compromissos não cancelados do atendente em um
// período (?from=&to=, paginado com limit/offset).
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	attID, ok := attendantID(r)
	if !ok {
		http.Error(w, `{"error":"invalid attendant"}`, http.StatusBadRequest)
		return
	}
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")
	if fromStr == "" || toStr == "" {
		http.Error(w, `{"error":"from and to required (YYYY-MM-DD)"}`, http.StatusBadRequest)
		return
	}
	from, err1 := time.Parse("2006-01-02", fromStr)
	to, err2 := time.Parse("2006-01-02", toStr)
	if err1 != nil || err2 != nil {
		http.Error(w, `{"error":"invalid date format"}`, http.StatusBadRequest)
		return
	}
	if to.Before(from) {
		http.Error(w, `{"error":"to must be >= from"}`, http.StatusBadRequest)
		return
	}
	limit, offset := ParseLimitOffset(r)
	list, err := repo.ListAppointmentsByAttendantAndDateRange(r.Context(), h.DB, attID, from, to, limit, offset)
	if err != nil {
		log.Printf("[appointments] ListAppointmentsByAttendantAndDateRange: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	out := make([]map[string]interface{}, len(list))
	for i, a := range list {
		out[i] = appointmentToJSON(a)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"appointments": out})
}

// CreateAppointment agenda um horário. A disponibilidade mostrada ao usuário
// é um retrato; o insert revalida a sobreposição e responde 409 se o slot
// foi tomado nesse meio tempo.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	clinic, ok := clinicID(r)
	if !ok {
		http.Error(w, `{"error":"no clinic"}`, http.StatusForbidden)
		return
	}
	attID, ok := attendantID(r)
	if !ok {
		http.Error(w, `{"error":"invalid attendant"}`, http.StatusBadRequest)
		return
	}
	var req struct {
		PatientID       string  `json:"patient_id"`
		ServiceID       *string `json:"service_id"`
		AppointmentDate string  `json:"appointment_date"`
		StartTime       string  `json:"start_time"`
		DurationMinutes int     `json:"duration_minutes"`
		Notes           *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		http.Error(w, `{"error":"invalid patient_id"}`, http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		http.Error(w, `{"error":"invalid appointment_date (YYYY-MM-DD)"}`, http.StatusBadRequest)
		return
	}
	start, err := availability.ParseTimeOfDay(req.StartTime)
	if err != nil {
		http.Error(w, `{"error":"invalid start_time (HH:MM)"}`, http.StatusBadRequest)
		return
	}
	if req.DurationMinutes <= 0 {
		http.Error(w, `{"error":"duration_minutes must be positive"}`, http.StatusBadRequest)
		return
	}
	end := start + availability.TimeOfDay(req.DurationMinutes)
	// end == 24:00 não tem representação HH:MM na leitura; o último horário
	// válido termina 23:59.
	if end >= 24*60 {
		http.Error(w, `{"error":"appointment must end within the day"}`, http.StatusBadRequest)
		return
	}
	var serviceID *uuid.UUID
	if req.ServiceID != nil && *req.ServiceID != "" {
		id, err := uuid.Parse(*req.ServiceID)
		if err != nil {
			http.Error(w, `{"error":"invalid service_id"}`, http.StatusBadRequest)
			return
		}
		serviceID = &id
	}
	a := &repo.Appointment{
		ClinicID:        clinic,
		AttendantID:     attID,
		PatientID:       patientID,
		ServiceID:       serviceID,
		AppointmentDate: date,
		StartTime:       start.String(),
		EndTime:         end.String(),
		Status:          "SCHEDULED",
		Notes:           req.Notes,
	}
	id, err := repo.CreateAppointmentIfFree(r.Context(), h.DB, a)
	if errors.Is(err, repo.ErrSlotConflict) {
		http.Error(w, `{"error":"slot is no longer available"}`, http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("[appointments] CreateAppointmentIfFree: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.auditEvent(r, "APPOINTMENT_CREATED", "APPOINTMENT", &id, map[string]interface{}{
		"appointment_date": req.AppointmentDate,
		"start_time":       start.String(),
		"end_time":         end.String(),
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id.String(), "message": "Agendamento criado."})
}

// PatchAppointment altera data/horário, status e/ou notas. Mudança de
// data/horário passa pela mesma guarda de sobreposição do insert (409 se o
// novo intervalo estiver tomado).
func (h *Handler) PatchAppointment(w http.ResponseWriter, r *http.Request) {
	clinic, ok := clinicID(r)
	if !ok {
		http.Error(w, `{"error":"no clinic"}`, http.StatusForbidden)
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}
	var req struct {
		AppointmentDate *string `json:"appointment_date"`
		StartTime       *string `json:"start_time"`
		EndTime         *string `json:"end_time"`
		Status          *string `json:"status"`
		Notes           *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	if req.Status != nil && !allowedStatuses[*req.Status] {
		http.Error(w, `{"error":"invalid status"}`, http.StatusBadRequest)
		return
	}
	current, err := repo.AppointmentByIDAndClinic(r.Context(), h.DB, id, clinic)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, `{"error":"appointment not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[appointments] AppointmentByIDAndClinic: %v", err)
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	changed := make([]string, 0, 5)
	if req.AppointmentDate != nil || req.StartTime != nil || req.EndTime != nil {
		date := current.AppointmentDate
		if req.AppointmentDate != nil && *req.AppointmentDate != "" {
			date, err = time.Parse("2006-01-02", *req.AppointmentDate)
			if err != nil {
				http.Error(w, `{"error":"invalid appointment_date (YYYY-MM-DD)"}`, http.StatusBadRequest)
				return
			}
			changed = append(changed, "appointment_date")
		}
		start, err := availability.ParseTimeOfDay(current.StartTime)
		if err != nil {
			log.Printf("[appointments] malformed start_time on %s: %v", current.ID, err)
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		end, err := availability.ParseTimeOfDay(current.EndTime)
		if err != nil {
			log.Printf("[appointments] malformed end_time on %s: %v", current.ID, err)
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
		if req.StartTime != nil && *req.StartTime != "" {
			start, err = availability.ParseTimeOfDay(*req.StartTime)
			if err != nil {
				http.Error(w, `{"error":"invalid start_time (HH:MM)"}`, http.StatusBadRequest)
				return
			}
			changed = append(changed, "start_time")
		}
		if req.EndTime != nil && *req.EndTime != "" {
			end, err = availability.ParseTimeOfDay(*req.EndTime)
			if err != nil {
				http.Error(w, `{"error":"invalid end_time (HH:MM)"}`, http.StatusBadRequest)
				return
			}
			changed = append(changed, "end_time")
		}
		if start >= end {
			http.Error(w, `{"error":"start_time must be before end_time"}`, http.StatusBadRequest)
			return
		}
		err = repo.RescheduleAppointmentIfFree(r.Context(), h.DB, id, clinic, date, start.String(), end.String())
		if errors.Is(err, repo.ErrSlotConflict) {
			http.Error(w, `{"error":"slot is no longer available"}`, http.StatusConflict)
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, `{"error":"appointment not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("[appointments] RescheduleAppointmentIfFree: %v", err)
			http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
			return
		}
	}
	if req.Status != nil || req.Notes != nil {
		// Reativar um agendamento CANCELLED volta a ocupar o intervalo, e o
		// intervalo pode ter sido tomado depois do cancelamento. Esse caso
		// passa pela guarda de sobreposição; os demais são update simples.
		if req.Status != nil && *req.Status != "CANCELLED" && current.Status == "CANCELLED" {
			err = repo.ReactivateAppointmentIfFree(r.Context(), h.DB, id, clinic, *req.Status)
			if errors.Is(err, repo.ErrSlotConflict) {
				http.Error(w, `{"error":"slot is no longer available"}`, http.StatusConflict)
				return
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				http.Error(w, `{"error":"appointment not found"}`, http.StatusNotFound)
				return
			}
			if err != nil {
				log.Printf("[appointments] ReactivateAppointmentIfFree: %v", err)
				http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
				return
			}
			changed = append(changed, "status")
			if req.Notes != nil {
				if err := repo.UpdateAppointmentStatus(r.Context(), h.DB, id, clinic, nil, req.Notes); err != nil {
					log.Printf("[appointments] UpdateAppointmentStatus: %v", err)
					http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
					return
				}
				changed = append(changed, "notes")
			}
		} else {
			if err := repo.UpdateAppointmentStatus(r.Context(), h.DB, id, clinic, req.Status, req.Notes); err != nil {
				log.Printf("[appointments] UpdateAppointmentStatus: %v", err)
				http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
				return
			}
			if req.Status != nil {
				changed = append(changed, "status")
			}
			if req.Notes != nil {
				changed = append(changed, "notes")
			}
		}
	}
	// Auditoria: registra apenas os campos alterados (sem PII).
	h.auditEvent(r, "APPOINTMENT_UPDATED", "APPOINTMENT", &id, map[string]interface{}{"changed_fields": changed})
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Agendamento atualizado."})
}
