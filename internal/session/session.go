// internal/session/session.go
//
// Intake – browser session cookie.
//
// Context
//   The intake page keeps one form.Session per browser in memory.  This
//   package only issues and reads the opaque cookie that names it,
//   “intake_session”.  The cookie carries a random UUID and nothing else;
//   form values never leave the server.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"

	"github.com/google/uuid"
)

// CookieName is the session cookie's name.
const CookieName = "intake_session"

// ID returns the session id from the request, if any.  Values that are not
// UUIDs are ignored.
func ID(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// Issue sets a fresh session cookie and returns its id.  The cookie lives
// for the browser session only.
func Issue(w http.ResponseWriter, r *http.Request) string {
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Clear expires the session cookie.
func Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
