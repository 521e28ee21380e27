package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/awsm-eng/lotus-medplum/internal/application/admin"
)

// AdminHandler serves /admin/*: provisioning of client applications and
// projects. Guarded by the shared-secret middleware.
type AdminHandler struct {
	createClient  *admin.CreateClient
	createProject *admin.CreateProject
	validate      *validator.Validate
	log           zerolog.Logger
}

func NewAdminHandler(createClient *admin.CreateClient, createProject *admin.CreateProject, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		createClient:  createClient,
		createProject: createProject,
		validate:      validator.New(),
		log:           log,
	}
}

type provisionBody struct {
	ID   string `json:"id" validate:"omitempty,max=64"`
	Name string `json:"name" validate:"required,max=128"`
}

func (h *AdminHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var body provisionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	client, err := h.createClient.Execute(r.Context(), admin.CreateClientInput{ID: body.ID, Name: body.Name})
	if err != nil {
		h.log.Warn().Err(err).Str("name", body.Name).Msg("create client failed")
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":        client.ID.String(),
		"name":      client.Name,
		"reference": client.Reference(),
	})
}

func (h *AdminHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var body provisionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	project, err := h.createProject.Execute(r.Context(), admin.CreateProjectInput{ID: body.ID, Name: body.Name})
	if err != nil {
		h.log.Warn().Err(err).Str("name", body.Name).Msg("create project failed")
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":   project.ID.String(),
		"name": project.Name,
	})
}
