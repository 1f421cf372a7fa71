package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lostflight/lostflight/internal/delivery"
	"github.com/lostflight/lostflight/internal/imaging"
	"github.com/lostflight/lostflight/internal/model"
	"github.com/lostflight/lostflight/internal/notify"
	"github.com/lostflight/lostflight/internal/search"
	"github.com/lostflight/lostflight/internal/store"
)

// DiscsHandler handles disc CRUD, search, and photo endpoints.
type DiscsHandler struct {
	DB    *sql.DB
	Queue *delivery.Queue
}

type discRequest struct {
	Name      string        `json:"name"`
	Phone     string        `json:"phone"`
	Color     string        `json:"color"`
	Brand     string        `json:"brand"`
	Plastic   string        `json:"plastic"`
	Mold      string        `json:"mold"`
	Location  string        `json:"location"`
	Notes     string        `json:"notes"`
	Initial   model.Channel `json:"initial"`
	Reminder  model.Channel `json:"reminder"`
	Extension model.Channel `json:"extension"`
}

func (req discRequest) params() store.DiscParams {
	return store.DiscParams{
		Name:      req.Name,
		Phone:     req.Phone,
		Color:     req.Color,
		Brand:     req.Brand,
		Plastic:   req.Plastic,
		Mold:      req.Mold,
		Location:  req.Location,
		Notes:     req.Notes,
		Initial:   req.Initial,
		Reminder:  req.Reminder,
		Extension: req.Extension,
	}
}

// validateChannel checks one notification slot against the account's
// templates. Returns an error message, or "" when the slot is valid.
func validateChannel(ch model.Channel, typ string, templates []model.Template) string {
	if ch.Custom {
		if ch.TemplateID != nil {
			return "choose a template or custom text, not both"
		}
		if ch.Text == "" {
			return "custom text required"
		}
		return ""
	}
	if ch.TemplateID != nil {
		for i := range templates {
			if templates[i].ID == *ch.TemplateID && templates[i].Type == typ {
				return ""
			}
		}
		return "template not found"
	}
	return ""
}

func (h *DiscsHandler) validateDisc(r *http.Request, userID int64, req discRequest) (map[string]string, error) {
	fields := map[string]string{}
	if err := model.ValidatePhone(req.Phone); err != nil {
		fields["phone"] = err.Error()
	}

	templates, err := store.ListTemplates(r.Context(), h.DB, userID, "")
	if err != nil {
		return nil, err
	}
	if msg := validateChannel(req.Initial, model.TemplateInitial, templates); msg != "" {
		fields["initial"] = msg
	}
	if msg := validateChannel(req.Reminder, model.TemplateReminder, templates); msg != "" {
		fields["reminder"] = msg
	}
	if msg := validateChannel(req.Extension, model.TemplateExtension, templates); msg != "" {
		fields["extension"] = msg
	}
	return fields, nil
}

// List handles GET /api/discs. An optional ?q= runs the field:value
// search language; without it, all of the account's discs are returned.
func (h *DiscsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	q := search.Parse(r.URL.Query().Get("q"), store.DiscSearchFields())
	discs, err := store.SearchDiscs(r.Context(), h.DB, claims.UserID, q)
	if err != nil {
		slog.Error("searching discs", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list discs")
		return
	}
	if discs == nil {
		discs = []model.Disc{}
	}
	jsonResponse(w, http.StatusOK, discs)
}

// Create handles POST /api/discs.
func (h *DiscsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req discRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields, err := h.validateDisc(r, claims.UserID, req)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(fields) > 0 {
		jsonFieldErrors(w, fields)
		return
	}

	disc, err := store.CreateDisc(r.Context(), h.DB, claims.UserID, req.params())
	if err != nil {
		slog.Error("creating disc", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create disc")
		return
	}

	jsonResponse(w, http.StatusCreated, disc)
}

// Get handles GET /api/discs/{id}.
func (h *DiscsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid disc id")
		return
	}

	disc, err := store.GetDisc(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get disc")
		return
	}
	if disc == nil {
		jsonError(w, http.StatusNotFound, "disc not found")
		return
	}
	jsonResponse(w, http.StatusOK, disc)
}

// Update handles PUT /api/discs/{id}.
func (h *DiscsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid disc id")
		return
	}

	var req discRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields, err := h.validateDisc(r, claims.UserID, req)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(fields) > 0 {
		jsonFieldErrors(w, fields)
		return
	}

	err = store.UpdateDisc(r.Context(), h.DB, claims.UserID, id, req.params())
	if err == store.ErrTextLocked {
		jsonError(w, http.StatusConflict, "notification text can no longer be changed")
		return
	}
	if err != nil {
		slog.Error("updating disc", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update disc")
		return
	}

	disc, _ := store.GetDisc(r.Context(), h.DB, claims.UserID, id)
	if disc == nil {
		jsonError(w, http.StatusNotFound, "disc not found")
		return
	}
	jsonResponse(w, http.StatusOK, disc)
}

// UploadPhoto handles PUT /api/discs/{id}/photo.
func (h *DiscsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid disc id")
		return
	}

	disc, err := store.GetDisc(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get disc")
		return
	}
	if disc == nil {
		jsonError(w, http.StatusNotFound, "disc not found")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo must be a JPEG or PNG image")
		return
	}

	if err := store.SetDiscPhoto(r.Context(), h.DB, claims.UserID, id, photo.Data, photo.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/discs/{id}/photo.
func (h *DiscsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid disc id")
		return
	}

	data, mime, err := store.GetDiscPhoto(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

type previewResponse struct {
	Type  string        `json:"type"`
	Text  string        `json:"text"`
	Spans []notify.Span `json:"spans"`
}

// Preview handles GET /api/discs/{id}/preview?type=. Returns the
// message text a notification would send right now, plus the spans so
// clients can highlight substituted variables.
func (h *DiscsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid disc id")
		return
	}

	typ := r.URL.Query().Get("type")
	if !model.ValidTemplateType(typ) {
		jsonError(w, http.StatusBadRequest, "invalid template type")
		return
	}

	disc, err := store.GetDisc(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get disc")
		return
	}
	if disc == nil {
		jsonError(w, http.StatusNotFound, "disc not found")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	templates, err := store.ListTemplates(r.Context(), h.DB, claims.UserID, "")
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}

	text, err := resolveMessage(disc, user, templates, typ)
	if err != nil {
		jsonError(w, http.StatusConflict, "no template selected and no default exists for this type")
		return
	}

	// Custom text is sent verbatim, so its preview is one literal span.
	spans := []notify.Span{{Text: text}}
	if ch := channelFor(disc, typ); !ch.Custom {
		spans = previewSpans(disc, user, templates, typ)
	}

	jsonResponse(w, http.StatusOK, previewResponse{Type: typ, Text: text, Spans: spans})
}

func channelFor(d *model.Disc, typ string) model.Channel {
	switch typ {
	case model.TemplateInitial:
		return d.Initial
	case model.TemplateReminder:
		return d.Reminder
	default:
		return d.Extension
	}
}

// previewSpans recomputes the span split over the source template
// content so variable positions survive into the response.
func previewSpans(d *model.Disc, u *model.User, templates []model.Template, typ string) []notify.Span {
	ch := channelFor(d, typ)
	v := notify.DiscValues(d, u)

	var content string
	if ch.TemplateID != nil {
		for i := range templates {
			if templates[i].ID == *ch.TemplateID && templates[i].Type == typ {
				content = templates[i].Content
			}
		}
	}
	if content == "" {
		if def := notify.DefaultFor(templates, typ); def != nil {
			content = def.Content
		}
	}
	return notify.Spans(content, v)
}

// resolveMessage produces the outbound text for one notification slot,
// falling back to the type's default template when the disc selects
// nothing or references a template that no longer exists.
func resolveMessage(d *model.Disc, u *model.User, templates []model.Template, typ string) (string, error) {
	ch := channelFor(d, typ)
	v := notify.DiscValues(d, u)

	choice, ok := notify.ChannelChoice(ch)
	if ok {
		text, err := notify.Resolve(choice, ch.Text, typ, templates, v)
		if err == nil {
			return text, nil
		}
	}
	if def := notify.DefaultFor(templates, typ); def != nil {
		return notify.Render(def.Content, v), nil
	}
	return "", notify.ErrTemplateNotFound
}
