// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
Mounted after chi's RealIP, before the component routers.  For every
request it:

  1. Parses the User-Agent header.
  2. Picks the client IP: left-most parseable X-Forwarded-For entry, then
     X-Real-Ip, then `r.RemoteAddr`.
  3. Performs a GeoLite2 country lookup when a DB is loaded.
  4. Stores the `*RequestInfo` in the request context.

Notes
-----
  • Look-ups are read-only, so the middleware is safe under concurrency.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// Enrich wraps an http.Handler, attaches *RequestInfo, and forwards.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &RequestInfo{
			UA:        parseUA(r.UserAgent()),
			Geo:       lookupGeo(clientIP(r)),
			Timestamp: time.Now().UTC(),
		}
		next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
	})
}

// clientIP extracts the left-most address from X-Forwarded-For or
// X-Real-Ip, falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
