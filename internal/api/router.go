package api

import (
	"database/sql"
	"net/http"

	"github.com/lostflight/lostflight/internal/delivery"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, queue *delivery.Queue) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Queue: queue}
	settingsHandler := &SettingsHandler{DB: db}
	templatesHandler := &TemplatesHandler{DB: db}
	discsHandler := &DiscsHandler{DB: db, Queue: queue}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: signup, login, password reset.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/password-reset", authHandler.RequestPasswordReset)
	mux.HandleFunc("PUT /api/auth/password-reset", authHandler.CompletePasswordReset)

	// Session and account management.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("PUT /api/auth/email", authMW(http.HandlerFunc(authHandler.ChangeEmail)))
	mux.Handle("DELETE /api/auth/account", authMW(http.HandlerFunc(authHandler.DeleteAccount)))

	// Settings.
	mux.Handle("GET /api/settings", authMW(http.HandlerFunc(settingsHandler.Get)))
	mux.Handle("PUT /api/settings", authMW(http.HandlerFunc(settingsHandler.Update)))

	// Templates.
	mux.Handle("GET /api/templates", authMW(http.HandlerFunc(templatesHandler.List)))
	mux.Handle("POST /api/templates", authMW(http.HandlerFunc(templatesHandler.Create)))
	mux.Handle("GET /api/templates/{id}", authMW(http.HandlerFunc(templatesHandler.Get)))
	mux.Handle("PUT /api/templates/{id}", authMW(http.HandlerFunc(templatesHandler.Update)))
	mux.Handle("DELETE /api/templates/{id}", authMW(http.HandlerFunc(templatesHandler.Delete)))
	mux.Handle("POST /api/templates/{id}/default", authMW(http.HandlerFunc(templatesHandler.MakeDefault)))

	// Discs.
	mux.Handle("GET /api/discs", authMW(http.HandlerFunc(discsHandler.List)))
	mux.Handle("POST /api/discs", authMW(http.HandlerFunc(discsHandler.Create)))
	mux.Handle("GET /api/discs/{id}", authMW(http.HandlerFunc(discsHandler.Get)))
	mux.Handle("PUT /api/discs/{id}", authMW(http.HandlerFunc(discsHandler.Update)))
	mux.Handle("PUT /api/discs/{id}/photo", authMW(http.HandlerFunc(discsHandler.UploadPhoto)))
	mux.Handle("GET /api/discs/{id}/photo", authMW(http.HandlerFunc(discsHandler.GetPhoto)))
	mux.Handle("GET /api/discs/{id}/preview", authMW(http.HandlerFunc(discsHandler.Preview)))

	// Batch lifecycle actions. Ineligible ids are skipped, never errors.
	mux.Handle("POST /api/discs/notify", authMW(http.HandlerFunc(discsHandler.Notify)))
	mux.Handle("POST /api/discs/remind", authMW(http.HandlerFunc(discsHandler.Remind)))
	mux.Handle("POST /api/discs/extend", authMW(http.HandlerFunc(discsHandler.Extend)))
	mux.Handle("POST /api/discs/pickup", authMW(http.HandlerFunc(discsHandler.Pickup)))
	mux.Handle("POST /api/discs/archive", authMW(http.HandlerFunc(discsHandler.Archive)))
	mux.Handle("POST /api/discs/restore", authMW(http.HandlerFunc(discsHandler.Restore)))
	mux.Handle("POST /api/discs/delete", authMW(http.HandlerFunc(discsHandler.Delete)))

	return mux
}
