package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/account"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/users"
)

const maxBodyBytes = 1 << 20

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmAvatarRequest struct {
	Key string `json:"key"`
}

type handlers struct {
	acc    Account
	logger logging.Logger
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	email, errs := account.ValidateLogin(req.Email, req.Password)
	if len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	sess, err := h.acc.Authenticate(r.Context(), email, req.Password)
	if err != nil {
		status, msg := errorStatus(err, "Login failed")
		writeFailure(w, status, msg)
		return
	}

	writeData(w, sess)
}

func (h *handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	profile := user.Public()

	url, err := h.acc.AvatarURL(r.Context(), user)
	if err != nil {
		h.logger.Warn(r.Context(), "error resolving avatar url", "user_id", user.ID, "error", err)
	} else {
		profile.Picture = url
	}

	writeData(w, profile)
}

func (h *handlers) getBalance(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	writeData(w, map[string]string{"balance": h.acc.GetBalanceView(user)})
}

func (h *handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var in users.UpdateInput
	if !decodeBody(w, r, &in) {
		return
	}
	if errs := account.ValidateUpdate(&in); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	profile, err := h.acc.UpdateProfile(r.Context(), user.ID, in)
	if err != nil {
		status, msg := errorStatus(err, "Failed to update profile")
		if status == http.StatusInternalServerError {
			h.logger.Error(r.Context(), "error updating profile", "user_id", user.ID, "error", err)
		}
		writeFailure(w, status, msg)
		return
	}

	writeData(w, profile)
}

func (h *handlers) requestAvatarUpload(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	up, err := h.acc.RequestAvatarUpload(r.Context(), user.ID)
	if err != nil {
		status, msg := errorStatus(err, "Failed to prepare avatar upload")
		writeFailure(w, status, msg)
		return
	}

	writeData(w, up)
}

func (h *handlers) confirmAvatarUpload(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req confirmAvatarRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeValidation(w, []account.FieldError{{Field: "key", Message: "Avatar key is required"}})
		return
	}

	profile, err := h.acc.ConfirmAvatarUpload(r.Context(), user.ID, req.Key)
	if err != nil {
		status, msg := errorStatus(err, "Failed to store avatar")
		if status == http.StatusInternalServerError {
			h.logger.Error(r.Context(), "error confirming avatar upload", "user_id", user.ID, "error", err)
		}
		writeFailure(w, status, msg)
		return
	}

	url, err := h.acc.AvatarURL(r.Context(), &models.User{ID: user.ID, Picture: profile.Picture})
	if err != nil {
		h.logger.Warn(r.Context(), "error resolving avatar url", "user_id", user.ID, "error", err)
	} else {
		profile.Picture = url
	}
	writeData(w, profile)
}
