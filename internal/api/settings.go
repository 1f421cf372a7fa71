package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/lostflight/lostflight/internal/model"
	"github.com/lostflight/lostflight/internal/store"
)

// SettingsHandler handles account settings endpoints.
type SettingsHandler struct {
	DB *sql.DB
}

type updateSettingsRequest struct {
	Name         string `json:"name"`
	LAF          string `json:"laf"`
	HoldDuration int    `json:"hold_duration"`
	SMSConsent   bool   `json:"sms_consent"`
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	jsonResponse(w, http.StatusOK, user)
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req updateSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "name required"
	}
	if err := model.ValidateHoldDuration(req.HoldDuration); err != nil {
		fields["hold_duration"] = err.Error()
	}
	if len(fields) > 0 {
		jsonFieldErrors(w, fields)
		return
	}

	err := store.UpdateUserSettings(r.Context(), h.DB, claims.UserID,
		req.Name, req.LAF, req.HoldDuration, req.SMSConsent)
	if err != nil {
		slog.Error("updating settings", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	user, _ := store.GetUser(r.Context(), h.DB, claims.UserID)
	jsonResponse(w, http.StatusOK, user)
}
