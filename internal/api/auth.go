package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lostflight/lostflight/internal/auth"
	"github.com/lostflight/lostflight/internal/delivery"
	"github.com/lostflight/lostflight/internal/model"
	"github.com/lostflight/lostflight/internal/store"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
	Queue     *delivery.Queue
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetCompleteRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type changeEmailRequest struct {
	Password string `json:"password"`
	Email    string `json:"email"`
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

// starterTemplates seed every new account with a working default for
// each notification type.
var starterTemplates = []struct{ typ, name, content string }{
	{model.TemplateInitial, "Found disc",
		"We found a disc that looks like yours ($color $brand $mold) at $laf. Please pick it up by $heldUntil."},
	{model.TemplateReminder, "Pickup reminder",
		"Reminder: your disc is still waiting at $laf. Please pick it up by $heldUntil."},
	{model.TemplateExtension, "Hold extended",
		"Good news: we will keep holding your disc at $laf until $heldUntil."},
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string]string{}
	if err := model.ValidateEmail(req.Email); err != nil {
		fields["email"] = err.Error()
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		fields["password"] = err.Error()
	}
	if req.Name == "" {
		fields["name"] = "name required"
	}
	if len(fields) > 0 {
		jsonFieldErrors(w, fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Email, string(hash), req.Name)
	if err == store.ErrDuplicateEmail {
		jsonError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		slog.Error("creating account", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Seed one default template per notification type so new accounts
	// can notify immediately.
	for _, s := range starterTemplates {
		tpl, err := store.CreateTemplate(r.Context(), h.DB, user.ID, s.typ, s.name, s.content)
		if err != nil {
			slog.Error("seeding starter template", "type", s.typ, "error", err)
			continue
		}
		if err := store.MakeDefault(r.Context(), h.DB, user.ID, tpl.ID); err != nil {
			slog.Error("marking starter template default", "type", s.typ, "error", err)
		}
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("account created", "email", user.Email)
	setSessionCookie(w, token)
	jsonResponse(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("user logged in", "email", user.Email)
	setSessionCookie(w, token)
	jsonResponse(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout. Revokes the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	expires := time.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expires); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	clearSessionCookie(w)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonFieldErrors(w, map[string]string{"new_password": err.Error()})
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, claims.UserID, string(hash)); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	slog.Info("user changed password", "email", claims.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// RequestPasswordReset handles POST /api/auth/password-reset. Always
// responds 200 so the endpoint cannot be used to probe for accounts.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	done := map[string]string{"message": "if the account exists, a reset message has been sent"}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		slog.Error("looking up account for reset", "error", err)
		jsonResponse(w, http.StatusOK, done)
		return
	}
	if user == nil || user.DeletedAt != nil {
		jsonResponse(w, http.StatusOK, done)
		return
	}

	token, err := store.CreateResetToken(r.Context(), h.DB, user.ID)
	if err != nil {
		slog.Error("creating reset token", "error", err)
		jsonResponse(w, http.StatusOK, done)
		return
	}

	h.Queue.Enqueue(delivery.Message{
		To:      user.Email,
		Subject: "Password reset",
		Text:    "Use this token to reset your password within the next hour: " + token,
	})
	jsonResponse(w, http.StatusOK, done)
}

// CompletePasswordReset handles PUT /api/auth/password-reset.
func (h *AuthHandler) CompletePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetCompleteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidatePassword(req.Password); err != nil {
		jsonFieldErrors(w, map[string]string{"password": err.Error()})
		return
	}

	userID, err := store.ConsumeResetToken(r.Context(), h.DB, req.Token)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if userID == 0 {
		jsonError(w, http.StatusBadRequest, "invalid or expired reset token")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), h.DB, userID, string(hash)); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	slog.Info("password reset completed", "user_id", userID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// ChangeEmail handles PUT /api/auth/email. Requires the current password.
func (h *AuthHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changeEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidateEmail(req.Email); err != nil {
		jsonFieldErrors(w, map[string]string{"email": err.Error()})
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		jsonError(w, http.StatusUnauthorized, "password is incorrect")
		return
	}

	err = store.UpdateUserEmail(r.Context(), h.DB, claims.UserID, req.Email)
	if err == store.ErrDuplicateEmail {
		jsonError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update email")
		return
	}

	slog.Info("user changed email", "from", claims.Email, "to", req.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "email updated"})
}

// DeleteAccount handles DELETE /api/auth/account. Soft-deletes the
// account and revokes the presented token.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req deleteAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		jsonError(w, http.StatusUnauthorized, "password is incorrect")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, claims.UserID); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	expires := time.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expires); err != nil {
		slog.Error("revoking token after account deletion", "error", err)
	}

	slog.Info("account deleted", "email", claims.Email)
	clearSessionCookie(w)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
