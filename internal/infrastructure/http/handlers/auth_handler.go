package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/awsm-eng/lotus-medplum/internal/application/auth"
	"github.com/awsm-eng/lotus-medplum/internal/application/ports"
	"github.com/awsm-eng/lotus-medplum/internal/domain"
	"github.com/awsm-eng/lotus-medplum/internal/infrastructure/http/middleware"
)

// AuthHandler serves /auth/*: self-service registration, password login,
// refresh rotation, logout.
type AuthHandler struct {
	register *auth.RegisterClientUser
	tryLogin *auth.TryLogin
	refresh  *auth.Refresh
	logout   *auth.Logout
	enqueuer ports.TaskEnqueuer
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthHandler(register *auth.RegisterClientUser, tryLogin *auth.TryLogin, refresh *auth.Refresh, logout *auth.Logout, enqueuer ports.TaskEnqueuer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register: register,
		tryLogin: tryLogin,
		refresh:  refresh,
		logout:   logout,
		enqueuer: enqueuer,
		validate: validator.New(),
		log:      log,
	}
}

// registerBody is the wire contract of POST /auth/register. projectId may be
// the sentinel "new"; client_ip and client_user_agent let gateways forward
// the original caller's metadata.
type registerBody struct {
	ClientID        string `json:"clientId"`
	ProjectID       string `json:"projectId" validate:"omitempty,max=64"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	FirstName       string `json:"firstName" validate:"max=128"`
	LastName        string `json:"lastName" validate:"max=128"`
	Scope           string `json:"scope" validate:"max=256"`
	Nonce           string `json:"nonce" validate:"max=256"`
	Remember        bool   `json:"remember"`
	ClientIP        string `json:"client_ip" validate:"max=64"`
	ClientUserAgent string `json:"client_user_agent" validate:"max=512"`
}

// Register runs the registration pipeline and returns the client reference
// plus the issued login id.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid email or password length")
		return
	}

	remoteAddr := body.ClientIP
	if remoteAddr == "" {
		remoteAddr = ClientIP(r)
	}
	userAgent := body.ClientUserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}

	result, err := h.register.Execute(r.Context(), auth.RegisterClientUserInput{
		ClientID:   domain.ClientID(body.ClientID),
		Project:    domain.ParseProjectRef(body.ProjectID),
		Email:      email,
		Password:   password,
		FirstName:  body.FirstName,
		LastName:   body.LastName,
		Scope:      body.Scope,
		Nonce:      body.Nonce,
		Remember:   body.Remember,
		RemoteAddr: remoteAddr,
		UserAgent:  userAgent,
	})
	if err != nil {
		AuditEmit(h.log, r, h.enqueuer, ports.AuditEvent{
			Event:     "user.registered",
			ClientID:  body.ClientID,
			ProjectID: body.ProjectID,
			Success:   false,
			Err:       err.Error(),
		})
		middleware.RecordAuthAttempt("register", false)
		writeDomainErr(w, err)
		return
	}
	AuditEmit(h.log, r, h.enqueuer, ports.AuditEvent{
		Event:     "user.registered",
		ClientID:  result.Client.ID.String(),
		ProjectID: body.ProjectID,
		UserID:    result.User.ID.String(),
		LoginID:   result.Login.ID.String(),
		Success:   true,
	})
	middleware.RecordAuthAttempt("register", true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"client": map[string]string{
			"reference": result.Client.Reference(),
			"display":   result.Client.Name,
		},
		"login": result.Login.ID.String(),
	})
}

type loginBody struct {
	ClientID  string `json:"clientId"`
	ProjectID string `json:"projectId" validate:"omitempty,max=64"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=128"`
	Scope     string `json:"scope" validate:"max=256"`
	Nonce     string `json:"nonce" validate:"max=256"`
	Remember  bool   `json:"remember"`
}

// Login issues a session for an existing identity. Unlike registration, a
// missing membership is not created here.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid email or password length")
		return
	}
	result, err := h.tryLogin.Execute(r.Context(), auth.TryLoginInput{
		ClientID:   domain.ClientID(body.ClientID),
		Project:    domain.ParseProjectRef(body.ProjectID),
		Email:      email,
		Password:   password,
		Scope:      body.Scope,
		Nonce:      body.Nonce,
		Remember:   body.Remember,
		RemoteAddr: ClientIP(r),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		AuditEmit(h.log, r, h.enqueuer, ports.AuditEvent{
			Event:     "user.login",
			ClientID:  body.ClientID,
			ProjectID: body.ProjectID,
			Success:   false,
			Err:       err.Error(),
		})
		middleware.RecordAuthAttempt("login", false)
		writeDomainErr(w, err)
		return
	}
	AuditEmit(h.log, r, h.enqueuer, ports.AuditEvent{
		Event:     "user.login",
		ClientID:  body.ClientID,
		ProjectID: body.ProjectID,
		UserID:    result.User.ID.String(),
		LoginID:   result.Login.ID.String(),
		Success:   true,
	})
	middleware.RecordAuthAttempt("login", true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"login":         result.Login.ID.String(),
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
		"user": map[string]interface{}{
			"id":    result.User.ID.String(),
			"email": result.User.Email,
		},
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token" validate:"required,max=1024"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	result, err := h.refresh.Execute(r.Context(), auth.RefreshInput{RefreshToken: body.RefreshToken})
	if err != nil {
		middleware.RecordAuthAttempt("refresh", false)
		writeDomainErr(w, err)
		return
	}
	middleware.RecordAuthAttempt("refresh", true)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if err := h.logout.Execute(r.Context(), body.RefreshToken); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
