package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"filevault/internal/domain/models"
	"filevault/internal/domain/services"
	"filevault/internal/httputil"
	"filevault/internal/middleware"
)

// UserHandler handles registration, login and the session probe
type UserHandler struct {
	userService services.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Register creates a new user and opens a session
// POST /register/
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	setSessionCookie(w, session)
	respondMessage(w, http.StatusCreated, "User created successfully")
}

// Login verifies credentials and opens a session
// POST /login/
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	setSessionCookie(w, session)
	respondMessage(w, http.StatusOK, "Login successful")
}

// Logout clears the session cookie. The token itself stays valid until
// it expires; logout only removes it from the browser.
// POST /logout/
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	respondMessage(w, http.StatusOK, "Logout successful")
}

// Home greets the authenticated user; the frontend uses it as a
// session-validity probe
// GET /home/
func (h *UserHandler) Home(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentity(w, r)
	if !ok {
		return
	}

	owner, err := h.userService.ResolveOwner(r.Context(), identity)
	if err != nil {
		handleError(w, err)
		return
	}

	respondMessage(w, http.StatusOK, fmt.Sprintf("Welcome, %s!", owner.Username))
}

// setSessionCookie stores the session token as an HttpOnly cookie
func setSessionCookie(w http.ResponseWriter, session *services.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
	})
}

// clearSessionCookie expires the session cookie in the browser
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
