package handler

import (
	"net/http"

	"filevault/internal/httputil"
)

// getIdentity extracts the authenticated owner identity from the request
// context. The auth middleware guarantees it for protected routes; an
// empty identity means the route was wired outside the middleware chain.
func getIdentity(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity := httputil.GetIdentity(r)
	if identity == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return "", false
	}
	return identity, true
}

// message is the envelope for confirmation responses
type message struct {
	Message string `json:"message"`
}

// respondMessage writes a confirmation message response
func respondMessage(w http.ResponseWriter, status int, text string) {
	httputil.RespondJSON(w, status, message{Message: text})
}
