package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"filevault/internal/auth"
	"filevault/internal/httputil"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "access_token"

// publicPaths are reachable without a session
var publicPaths = map[string]bool{
	"/register/": true,
	"/login/":    true,
	"/logout/":   true,
	"/chatbot":   true,
	"/health":    true,
}

// Auth extracts the session token from the access_token cookie (falling
// back to an Authorization bearer header), verifies it, and stores the
// resolved owner identity in the request context. Requests without a
// valid session are rejected before reaching any handler.
func Auth(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token := tokenFromRequest(r)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing session token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("session rejected",
					"path", r.URL.Path,
					"error", err,
				)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, httputil.WithIdentity(r, claims.Identity()))
		})
	}
}

// tokenFromRequest pulls the session token from cookie or bearer header
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}
