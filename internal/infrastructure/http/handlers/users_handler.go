package handlers

import (
	"net/http"

	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
	"github.com/awsm-eng/lotus-medplum/internal/infrastructure/http/middleware"
)

// UsersHandler handles /users/* (GET /users/me). Requires JWT auth.
type UsersHandler struct {
	userRepo ports.UserRepository
}

func NewUsersHandler(userRepo ports.UserRepository) *UsersHandler {
	return &UsersHandler{userRepo: userRepo}
}

// MeResponse is the JSON shape for GET /users/me (no password).
type MeResponse struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Me returns the current user from the JWT. Requires AuthValidator middleware.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	_, userID, _ := middleware.AuthFromContext(r.Context())
	if userID == "" {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), domain.UserID(userID))
	if err != nil {
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	if user == nil {
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	}
	resp := MeResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if user.ProjectID != nil {
		resp.ProjectID = user.ProjectID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}
