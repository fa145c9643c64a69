package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"notipayBack/internal/models"
)

// callerID extracts the verified caller identity the JWT middleware stored in
// the request context. Handlers must not trust any id supplied in the body or
// URL for ownership decisions.
func callerID(r *http.Request) (uuid.UUID, bool) {
	raw, ok := r.Context().Value("user_id").(string)
	if !ok {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

func callerRole(r *http.Request) string {
	role, _ := r.Context().Value("role").(string)
	return role
}

func isAdmin(r *http.Request) bool {
	return callerRole(r) == models.RoleAdmin
}

func noticeIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.URL.Query().Get(":id"))
}
