package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/lostflight/lostflight/internal/model"
	"github.com/lostflight/lostflight/internal/store"
)

// TemplatesHandler handles message template CRUD endpoints.
type TemplatesHandler struct {
	DB *sql.DB
}

type templateRequest struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

func validateTemplateRequest(req templateRequest) map[string]string {
	fields := map[string]string{}
	if !model.ValidTemplateType(req.Type) {
		fields["type"] = "type must be initial, reminder, or extension"
	}
	if req.Name == "" {
		fields["name"] = "name required"
	}
	if err := model.ValidateTemplateContent(req.Content); err != nil {
		fields["content"] = err.Error()
	}
	return fields
}

// List handles GET /api/templates. An optional ?type= filters by
// notification type.
func (h *TemplatesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	typ := r.URL.Query().Get("type")
	if typ != "" && !model.ValidTemplateType(typ) {
		jsonError(w, http.StatusBadRequest, "invalid template type")
		return
	}

	templates, err := store.ListTemplates(r.Context(), h.DB, claims.UserID, typ)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []model.Template{}
	}
	jsonResponse(w, http.StatusOK, templates)
}

// Create handles POST /api/templates.
func (h *TemplatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if fields := validateTemplateRequest(req); len(fields) > 0 {
		jsonFieldErrors(w, fields)
		return
	}

	tpl, err := store.CreateTemplate(r.Context(), h.DB, claims.UserID, req.Type, req.Name, req.Content)
	if err == store.ErrDuplicateName {
		jsonError(w, http.StatusConflict, "a template with that name already exists")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create template")
		return
	}

	jsonResponse(w, http.StatusCreated, tpl)
}

// Get handles GET /api/templates/{id}.
func (h *TemplatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	tpl, err := store.GetTemplate(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if tpl == nil {
		jsonError(w, http.StatusNotFound, "template not found")
		return
	}
	jsonResponse(w, http.StatusOK, tpl)
}

// Update handles PUT /api/templates/{id}.
func (h *TemplatesHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if fields := validateTemplateRequest(req); len(fields) > 0 {
		jsonFieldErrors(w, fields)
		return
	}

	err = store.UpdateTemplate(r.Context(), h.DB, claims.UserID, id, req.Type, req.Name, req.Content)
	switch {
	case err == store.ErrDefaultTemplate:
		jsonError(w, http.StatusConflict, "a default template cannot change type")
		return
	case err == store.ErrTemplateInUse:
		jsonError(w, http.StatusConflict, "a template referenced by discs cannot change type")
		return
	case err == store.ErrDuplicateName:
		jsonError(w, http.StatusConflict, "a template with that name already exists")
		return
	case err != nil:
		jsonError(w, http.StatusInternalServerError, "failed to update template")
		return
	}

	tpl, _ := store.GetTemplate(r.Context(), h.DB, claims.UserID, id)
	if tpl == nil {
		jsonError(w, http.StatusNotFound, "template not found")
		return
	}
	jsonResponse(w, http.StatusOK, tpl)
}

// Delete handles DELETE /api/templates/{id}.
func (h *TemplatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	err = store.DeleteTemplate(r.Context(), h.DB, claims.UserID, id)
	if err == store.ErrDefaultTemplate {
		jsonError(w, http.StatusConflict, "a default template cannot be deleted")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "template deleted"})
}

// MakeDefault handles POST /api/templates/{id}/default.
func (h *TemplatesHandler) MakeDefault(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid template id")
		return
	}

	tpl, err := store.GetTemplate(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if tpl == nil {
		jsonError(w, http.StatusNotFound, "template not found")
		return
	}

	if err := store.MakeDefault(r.Context(), h.DB, claims.UserID, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to set default template")
		return
	}

	tpl, _ = store.GetTemplate(r.Context(), h.DB, claims.UserID, id)
	jsonResponse(w, http.StatusOK, tpl)
}
