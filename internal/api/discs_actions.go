package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lostflight/lostflight/internal/delivery"
	"github.com/lostflight/lostflight/internal/model"
	"github.com/lostflight/lostflight/internal/store"
)

type batchRequest struct {
	IDs  []int64 `json:"ids"`
	Days int     `json:"days,omitempty"`
}

type batchIDsResponse struct {
	IDs []int64 `json:"ids"`
}

type batchCountResponse struct {
	Affected int64 `json:"affected"`
}

var messageSubjects = map[string]string{
	model.TemplateInitial:   "Disc found",
	model.TemplateReminder:  "Pickup reminder",
	model.TemplateExtension: "Hold extended",
}

func decodeBatch(w http.ResponseWriter, r *http.Request) (*batchRequest, bool) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "ids required")
		return nil, false
	}
	return &req, true
}

// sendMessages renders and queues the notification for each disc.
// Rendering failures and missing consent skip the message but never the
// state change that already committed.
func (h *DiscsHandler) sendMessages(r *http.Request, user *model.User, discs []model.Disc, typ string) {
	if len(discs) == 0 {
		return
	}

	templates, err := store.ListTemplates(r.Context(), h.DB, user.ID, "")
	if err != nil {
		slog.Error("listing templates for notifications", "error", err)
		return
	}

	for i := range discs {
		d := &discs[i]
		if !user.SMSConsent {
			slog.Info("skipping message, no sms consent", "disc", d.ID)
			continue
		}
		text, err := resolveMessage(d, user, templates, typ)
		if err != nil {
			slog.Warn("no message source for disc", "disc", d.ID, "type", typ)
			continue
		}
		h.Queue.Enqueue(delivery.Message{
			To:      d.Phone,
			Subject: messageSubjects[typ],
			Text:    text,
		})
	}
}

func (h *DiscsHandler) currentUser(w http.ResponseWriter, r *http.Request) *model.User {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return nil
	}
	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return nil
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "account no longer exists")
		return nil
	}
	return user
}

// Notify handles POST /api/discs/notify. Marks eligible discs notified,
// starts their hold period, and queues the initial messages.
func (h *DiscsHandler) Notify(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}
	req, ok := decodeBatch(w, r)
	if !ok {
		return
	}

	heldUntil := time.Now().AddDate(0, 0, user.HoldDuration)
	discs, err := store.NotifyDiscs(r.Context(), h.DB, user.ID, req.IDs, heldUntil)
	if err != nil {
		slog.Error("notifying discs", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to notify discs")
		return
	}

	h.sendMessages(r, user, discs, model.TemplateInitial)
	jsonResponse(w, http.StatusOK, batchIDsResponse{IDs: discIDs(discs)})
}

// Remind handles POST /api/discs/remind.
func (h *DiscsHandler) Remind(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}
	req, ok := decodeBatch(w, r)
	if !ok {
		return
	}

	discs, err := store.RemindDiscs(r.Context(), h.DB, user.ID, req.IDs)
	if err != nil {
		slog.Error("reminding discs", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to remind discs")
		return
	}

	h.sendMessages(r, user, discs, model.TemplateReminder)
	jsonResponse(w, http.StatusOK, batchIDsResponse{IDs: discIDs(discs)})
}

// Extend handles POST /api/discs/extend. Pushes hold dates out by the
// requested number of days and queues the extension messages.
func (h *DiscsHandler) Extend(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(w, r)
	if user == nil {
		return
	}
	req, ok := decodeBatch(w, r)
	if !ok {
		return
	}
	if req.Days <= 0 {
		jsonFieldErrors(w, map[string]string{"days": "days must be positive"})
		return
	}

	discs, err := store.ExtendDiscs(r.Context(), h.DB, user.ID, req.IDs, req.Days)
	if err != nil {
		slog.Error("extending discs", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to extend discs")
		return
	}

	h.sendMessages(r, user, discs, model.TemplateExtension)
	jsonResponse(w, http.StatusOK, batchIDsResponse{IDs: discIDs(discs)})
}

// Pickup handles POST /api/discs/pickup.
func (h *DiscsHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	req, ok := decodeBatch(w, r)
	if !ok {
		return
	}

	affected, err := store.MarkPickedUp(r.Context(), h.DB, claims.UserID, req.IDs)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to mark discs picked up")
		return
	}
	jsonResponse(w, http.StatusOK, batchCountResponse{Affected: affected})
}

// Archive handles POST /api/discs/archive. Only abandoned discs move.
func (h *DiscsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	req, ok := decodeBatch(w, r)
	if !ok {
		return
	}

	affected, err := store.ArchiveDiscs(r.Context(), h.DB, claims.UserID, req.IDs, time.Now())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to archive discs")
		return
	}
	jsonResponse(w, http.StatusOK, batchCountResponse{Affected: affected})
}

// Restore handles POST /api/discs/restore.
func (h *DiscsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	req, ok := decodeBatch(w, r)
	if !ok {
		return
	}

	affected, err := store.RestoreDiscs(r.Context(), h.DB, claims.UserID, req.IDs)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to restore discs")
		return
	}
	jsonResponse(w, http.StatusOK, batchCountResponse{Affected: affected})
}

// Delete handles POST /api/discs/delete.
func (h *DiscsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	req, ok := decodeBatch(w, r)
	if !ok {
		return
	}

	affected, err := store.DeleteDiscs(r.Context(), h.DB, claims.UserID, req.IDs)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete discs")
		return
	}
	jsonResponse(w, http.StatusOK, batchCountResponse{Affected: affected})
}

func discIDs(discs []model.Disc) []int64 {
	ids := make([]int64, len(discs))
	for i := range discs {
		ids[i] = discs[i].ID
	}
	return ids
}
