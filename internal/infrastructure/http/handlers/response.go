package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domerrors "github.com/awsm-eng/lotus-medplum/internal/domain/errors"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

// writeErr sends JSON { "error": message, "code": errCode }.
func writeErr(w http.ResponseWriter, code int, errCode, message string) {
	writeFieldErr(w, code, errCode, "", message)
}

func writeFieldErr(w http.ResponseWriter, code int, errCode, field, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message, Code: errCode, Field: field})
}

// writeDomainErr maps the error taxonomy to transport outcomes: validation
// failures are 400 with a field hint, conflicts 409, credential failures
// 401, everything else a detail-free 500.
func writeDomainErr(w http.ResponseWriter, err error) {
	var (
		ve *domerrors.ValidationError
		ce *domerrors.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		writeFieldErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, ve.Field, ve.Message)
	case errors.As(err, &ce):
		writeFieldErr(w, http.StatusConflict, ErrCodeConflict, ce.Field, ce.Message)
	case errors.Is(err, domerrors.ErrInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, err.Error())
	case errors.Is(err, domerrors.ErrInvalidToken):
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidToken, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
