package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/account"
	"github.com/dmitrijs2005/accountkeeper/internal/server/avatars"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type validationResponse struct {
	Error   string               `json:"error"`
	Details []account.FieldError `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: v})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

func writeValidation(w http.ResponseWriter, errs []account.FieldError) {
	writeJSON(w, http.StatusBadRequest, validationResponse{Error: "Validation failed", Details: errs})
}

// errorStatus maps core errors to a status code and a client-facing
// message. Anything unrecognised becomes 500 with fallback.
func errorStatus(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, common.ErrInactiveAccount):
		return http.StatusUnauthorized, "Account is inactive"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, common.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already in use"
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "Validation failed"
	case errors.Is(err, avatars.ErrNotUploaded):
		return http.StatusConflict, "Avatar has not been uploaded"
	case errors.Is(err, avatars.ErrAvatarsDisabled):
		return http.StatusServiceUnavailable, "Avatar storage is not configured"
	default:
		return http.StatusInternalServerError, fallback
	}
}
