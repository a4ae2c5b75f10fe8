// internal/middleware/cors.go
//
// Minimal CORS for the patients API.
//
// Context
// -------
// A browser front-end served from another origin posts to /api/patients.
// CORS answers preflights and echoes the Origin header when it is on the
// allow-list.  "*" allows any origin; credentials are never allowed.  An
// empty list disables CORS entirely.
//
// Notes
// -----
// • Only the methods and headers the API uses are advertised.

package middleware

import (
	"net/http"
	"slices"
)

// CORS returns a middleware that allows the given origins.
func CORS(origins []string) func(http.Handler) http.Handler {
	anyOrigin := slices.Contains(origins, "*")

	return func(next http.Handler) http.Handler {
		if len(origins) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !(anyOrigin || slices.Contains(origins, origin)) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Origin", origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
