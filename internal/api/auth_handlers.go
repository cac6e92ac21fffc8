package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/auth"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/repo"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Role     string  `json:"role"`
	ClinicID *string `json:"clinic_id,omitempty"`
}

// Login autentica ATTENDANT ou SUPER_ADMIN; o papel vem da própria linha de
// attendants. Falhas de credencial retornam sempre a mesma resposta genérica.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, `{"error":"email and password required"}`, http.StatusBadRequest)
		return
	}
	a, err := repo.AttendantByEmail(r.Context(), h.Pool, req.Email)
	if err != nil || !a.Active {
		genericLoginError(w)
		return
	}
	if !auth.CheckPassword(a.PasswordHash, req.Password) {
		genericLoginError(w)
		return
	}
	role := a.Role
	if role == "" {
		role = auth.RoleAttendant
	}
	clinicID := a.ClinicID.String()
	tok, err := auth.BuildJWT(h.Cfg.JWTSecret, a.ID.String(), role, &clinicID, 24*time.Hour)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResponse{
		Token:     tok,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		User: UserInfo{
			ID:       a.ID.String(),
			Email:    a.Email,
			FullName: a.FullName,
			Role:     role,
			ClinicID: &clinicID,
		},
	})
}

// Me retorna os dados do usuário autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	c := auth.ClaimsFrom(r.Context())
	if c == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	info := UserInfo{ID: c.UserID, Role: c.Role, ClinicID: c.ClinicID}
	if id, err := uuid.Parse(c.UserID); err == nil {
		if a, err := repo.AttendantByID(r.Context(), h.Pool, id); err == nil {
			info.Email = a.Email
			info.FullName = a.FullName
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}

func genericLoginError(w http.ResponseWriter) {
	http.Error(w, `{"error":"invalid email or password"}`, http.StatusUnauthorized)
}
