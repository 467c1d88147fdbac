package server

import (
	"net/http"
	"strings"

	"github.com/h0rv/bugdrop/internal/bridge"
)

// extensionSchemes are the Origin schemes browser extensions send.
var extensionSchemes = []string{
	"chrome-extension://",
	"moz-extension://",
	"safari-web-extension://",
}

// OriginMiddleware rejects requests carrying a web page Origin.
// Requests without an Origin header (curl, the CLI) and requests from
// extension origins pass through.
func OriginMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && !extensionOrigin(origin) {
			writeJSON(w, http.StatusForbidden, bridge.Response{Error: "origin not allowed: " + origin})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extensionOrigin(origin string) bool {
	origin = strings.ToLower(origin)
	for _, scheme := range extensionSchemes {
		if strings.HasPrefix(origin, scheme) && len(origin) > len(scheme) {
			return true
		}
	}
	return false
}
