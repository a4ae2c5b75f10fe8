// components/intake/intake.go
//
// Intake component – server-rendered patient intake page.
//
// Context
// -------
// Each browser gets one form.Session, named by the intake_session cookie and
// held in a bounded LRU.  The page is a thin presenter over that session:
//
//   GET  /intake            render the form from Session.State()
//   POST /intake            stage every posted value, commit them only if
//                           all parse, Session.Submit, then redirect on
//                           Success or re-render otherwise
//   POST /intake/blur       apply one field, Session.BlurField, JSON reply
//   POST /intake/reset      Session.Reset, drop the session, redirect
//   GET  /intake/intake.js  posts blur events so errors appear per field
//
// Every POST must carry a csrf_token bound to the session id.
//
// Notes
// -----
//   • Values never leave the server except inside the rendered page and the
//     gateway request.
//   • An evicted session is recreated empty under the same id.  Lookup and
//     creation happen under the cache lock, so concurrent requests for one
//     cookie always share one Session.
//
//------------------------------------------------------------------------------

package intake

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/intake/internal/cache"
	"github.com/yanizio/intake/internal/component"
	"github.com/yanizio/intake/internal/form"
	"github.com/yanizio/intake/internal/metrics"
	"github.com/yanizio/intake/internal/patient"
	"github.com/yanizio/intake/internal/session"
)

// MsgSubmitted is the banner shown after a successful submission.
const MsgSubmitted = "Patient intake form submitted successfully!"

// maxForm bounds a posted form body.
const maxForm = 64 << 10

//go:embed intake.js
var script []byte

var page = template.Must(template.New("intake").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Patient Intake Form</title>
</head>
<body>
<main class="intake">
<h1>Patient Intake Form</h1>
<p class="lead">Please fill out all required fields to complete your patient intake.</p>
{{if .Submitted}}<div class="toast toast-success" role="status">{{.Submitted}}</div>{{end}}
{{.Form}}
<form class="intake-reset" method="post" action="{{.Prefix}}/reset">
<input type="hidden" name="csrf_token" value="{{.Token}}">
<button type="submit">Clear form</button>
</form>
</main>
<script src="{{.Prefix}}/intake.js" defer></script>
</body>
</html>
`))

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the intake page.
type Component struct {
	sub      form.Submitter
	csrf     *form.CSRF
	sessions *cache.LRU[string, *form.Session]
	log      *zap.SugaredLogger
}

// Option configures a Component.
type Option func(*Component)

// WithLogger sets the logger.  The default is zap.S().
func WithLogger(l *zap.SugaredLogger) Option { return func(c *Component) { c.log = l } }

// New returns a Component that submits through sub and keeps at most
// capacity sessions.
func New(sub form.Submitter, csrf *form.CSRF, capacity int, opts ...Option) *Component {
	c := &Component{sub: sub, csrf: csrf}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = zap.S()
	}
	c.sessions = cache.New(capacity, func(id string, _ *form.Session) {
		metrics.ActiveSessions.Dec()
		metrics.SessionEvictTotal.Inc()
		c.log.Debugw("intake session evicted", "session", id)
	})
	return c
}

// SweepInterval is how often Sweep looks for idle sessions.
const SweepInterval = time.Minute

// Sweep drops sessions idle longer than idle, every SweepInterval, until
// ctx is cancelled.  idle <= 0 disables it.
func (c *Component) Sweep(ctx context.Context, idle time.Duration) error {
	if idle <= 0 {
		return nil
	}
	t := time.NewTicker(SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := c.sessions.EvictIdle(idle); n > 0 {
				c.log.Infow("idle intake sessions evicted", "count", n, "idle", idle)
			}
		}
	}
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "intake" }

// Prefix is where Routes is mounted.
func (c *Component) Prefix() string { return "/intake" }

// Migrations returns nil; sessions live in memory.
func (c *Component) Migrations() []string { return nil }

// Routes builds the router mounted at Prefix().
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handlePage)
	r.Post("/", c.handleSubmit)
	r.Post("/blur", c.handleBlur)
	r.Post("/reset", c.handleReset)
	r.Get("/intake.js", handleScript)
	return r
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handlePage(w http.ResponseWriter, r *http.Request) {
	sid, s := c.session(w, r)
	banner := ""
	if r.URL.Query().Get("submitted") != "" {
		banner = MsgSubmitted
	}
	c.render(w, http.StatusOK, sid, s.State(), banner)
}

func (c *Component) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sid, s, ok := c.verified(w, r)
	if !ok {
		return
	}

	staged, err := stage(r.PostForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, f := range form.Fields() {
		if err := commit(s, f, staged); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	out, err := s.Submit(r.Context())
	if errors.Is(err, form.ErrSubmitInProgress) {
		c.render(w, http.StatusConflict, sid, s.State(), "")
		return
	}

	switch o := out.(type) {
	case form.Success:
		http.Redirect(w, r, c.Prefix()+"?submitted=1", http.StatusSeeOther)
	case form.Invalid:
		c.render(w, http.StatusUnprocessableEntity, sid, s.State(), "")
	case form.Failure:
		c.render(w, http.StatusBadGateway, sid, s.State(), "")
	default:
		c.log.Errorw("unexpected submit outcome", "outcome", fmt.Sprintf("%T", o))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// blurResponse is the JSON reply of POST /intake/blur.
type blurResponse struct {
	Field string `json:"field"`
	Error string `json:"error,omitempty"`
}

func (c *Component) handleBlur(w http.ResponseWriter, r *http.Request) {
	_, s, ok := c.verified(w, r)
	if !ok {
		return
	}

	f, known := form.ParseField(r.PostForm.Get("field"))
	if !known {
		http.Error(w, "unknown field", http.StatusBadRequest)
		return
	}
	var staged form.Values
	if err := set(&staged, f, r.PostForm["value"]); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := commit(s, f, staged); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.BlurField(f)

	resp := blurResponse{Field: f.String()}
	if s.ShouldShowError(f) {
		resp.Error = s.State().Errors.Get(f)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (c *Component) handleReset(w http.ResponseWriter, r *http.Request) {
	sid, s, ok := c.verified(w, r)
	if !ok {
		return
	}
	if err := s.Reset(); err != nil {
		c.render(w, http.StatusConflict, sid, s.State(), "")
		return
	}
	// Rotate the id; the redirected GET issues a fresh cookie.
	c.sessions.Remove(sid)
	session.Clear(w)
	http.Redirect(w, r, c.Prefix(), http.StatusSeeOther)
}

func handleScript(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	_, _ = w.Write(script)
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// session returns the caller's session, issuing a cookie and creating an
// empty session when needed.
func (c *Component) session(w http.ResponseWriter, r *http.Request) (string, *form.Session) {
	sid, ok := session.ID(r)
	if !ok {
		sid = session.Issue(w, r)
	}
	s, added := c.sessions.GetOrAdd(sid, func() *form.Session {
		return form.NewSession(c.sub, form.WithLogger(c.log.With("session", sid)))
	})
	if added {
		metrics.ActiveSessions.Inc()
	}
	return sid, s
}

// verified parses the posted form and checks its CSRF token.  On failure it
// writes the response and returns ok == false.
func (c *Component) verified(w http.ResponseWriter, r *http.Request) (string, *form.Session, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxForm)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return "", nil, false
	}
	sid, ok := session.ID(r)
	if !ok || !c.csrf.Verify(r.PostForm.Get("csrf_token"), sid) {
		http.Error(w, "invalid or expired form token", http.StatusForbidden)
		return "", nil, false
	}
	_, s := c.session(w, r)
	return sid, s, true
}

func (c *Component) render(w http.ResponseWriter, status int, sid string, st form.State, banner string) {
	tok, err := c.csrf.Token(sid)
	if err != nil {
		c.log.Errorw("csrf token failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	data := map[string]any{
		"Prefix":    c.Prefix(),
		"Token":     tok,
		"Submitted": banner,
		"Form":      form.Render(st, form.RenderOptions{Action: c.Prefix(), CSRFToken: tok}),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Execute(w, data); err != nil {
		c.log.Errorw("intake render failed", "err", err)
	}
}

// stage parses every posted field into a fresh snapshot.  Nothing touches
// the session until all of them are accepted.
func stage(post url.Values) (form.Values, error) {
	var v form.Values
	for _, f := range form.Fields() {
		if err := set(&v, f, post[f.String()]); err != nil {
			return form.Values{}, err
		}
	}
	return v, nil
}

// set decodes the posted values for f into v.
func set(v *form.Values, f form.Field, vals []string) error {
	switch f {
	case form.FieldExistingConditions:
		cs := make([]patient.Condition, len(vals))
		for i, x := range vals {
			cs[i] = patient.Condition(x)
		}
		conds, err := patient.NewConditionSet(cs...)
		if err != nil {
			return fmt.Errorf("%w: %v", form.ErrInvalidOption, err)
		}
		v.ExistingConditions = conds
		return nil
	case form.FieldConsentToTreatment:
		v.ConsentToTreatment = len(vals) > 0 && vals[0] == "true"
		return nil
	}
	x := ""
	if len(vals) > 0 {
		x = vals[0]
	}
	return v.SetText(f, x)
}

// commit copies field f of a staged snapshot into the session through the
// matching change operation.
func commit(s *form.Session, f form.Field, v form.Values) error {
	switch f {
	case form.FieldExistingConditions:
		s.ChangeConditions(v.ExistingConditions)
		return nil
	case form.FieldConsentToTreatment:
		s.ChangeConsent(v.ConsentToTreatment)
		return nil
	}
	return s.ChangeText(f, v.Text(f))
}
