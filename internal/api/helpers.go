package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jerime10/pronto-jr-digital-sub003/internal/auth"
)

// attendantID resolve o atendente da requisição: o próprio usuário logado,
// ou ?attendant_id= quando o SUPER_ADMIN consulta a agenda de outro.
func attendantID(r *http.Request) (uuid.UUID, bool) {
	if auth.IsSuperAdmin(r.Context()) {
		if s := r.URL.Query().Get("attendant_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				return uuid.Nil, false
			}
			return id, true
		}
	}
	id, err := uuid.Parse(auth.UserIDFrom(r.Context()))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// clinicID extrai e valida o clinic_id das claims.
func clinicID(r *http.Request) (uuid.UUID, bool) {
	s := auth.ClinicIDFrom(r.Context())
	if s == nil || *s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
