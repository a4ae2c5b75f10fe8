// components/patients/patients.go
//
// Patients component – the persistence service's HTTP contract.
//
// Context
// -------
//   POST /api/patients  → validate, stamp id + submittedAt, append, 201
//   GET  /api/patients  → every stored record in insertion order
//
// Response envelopes are patient.CreateResponse and patient.ListResponse,
// the same types the gateway decodes, so both halves of the contract are
// compiled from one definition.
//
// Notes
// -----
//   • Logs carry the record id and request metadata, never patient fields.
//   • Schema for the MySQL store comes from Migrations().
//
//------------------------------------------------------------------------------

package patients

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/intake/internal/component"
	"github.com/yanizio/intake/internal/metrics"
	"github.com/yanizio/intake/internal/patient"
	"github.com/yanizio/intake/internal/requestinfo"
	"github.com/yanizio/intake/internal/store"
)

// Response messages.
const (
	MsgSaved      = "Patient data saved successfully"
	MsgInvalid    = "Invalid patient data"
	MsgSaveFailed = "Failed to save patient data"
	MsgReadFailed = "Failed to read patient data"
)

// maxBody bounds a POST body.  Real intakes are a few KB.
const maxBody = 1 << 20

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the patients API over a Store.
type Component struct {
	store store.Store
	log   *zap.SugaredLogger
	now   func() time.Time
	newID func() string
}

// Option configures a Component.
type Option func(*Component)

// WithLogger sets the logger.  The default is zap.S().
func WithLogger(l *zap.SugaredLogger) Option { return func(c *Component) { c.log = l } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(c *Component) { c.now = now } }

// WithIDs replaces the UUID generator.
func WithIDs(next func() string) Option { return func(c *Component) { c.newID = next } }

// New returns a Component backed by st.
func New(st store.Store, opts ...Option) *Component {
	c := &Component{store: st, now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = zap.S()
	}
	return c
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "patients" }

// Prefix is where Routes is mounted.
func (c *Component) Prefix() string { return "/api/patients" }

// Migrations returns the patient_intake DDL.
func (c *Component) Migrations() []string { return []string{store.Schema} }

// Routes builds the router mounted at Prefix().
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", c.handleCreate)
	r.Get("/", c.handleList)
	return r
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in patient.Intake
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(&in); err != nil {
		c.reject(w, r, "malformed body: "+err.Error())
		return
	}
	if err := patient.Validate(&in); err != nil {
		c.reject(w, r, err.Error())
		return
	}

	rec := patient.Record{
		Intake:      in,
		ID:          c.newID(),
		SubmittedAt: c.now().UTC().Truncate(time.Millisecond),
	}
	if err := c.store.Append(r.Context(), rec); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("append").Inc()
		c.log.Errorw("patient store append failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, patient.CreateResponse{
			Message: MsgSaveFailed,
			Error:   err.Error(),
		})
		return
	}

	metrics.PatientsStoredTotal.Inc()
	c.log.Infow("patient stored", append([]any{"id", rec.ID},
		requestinfo.FromContext(r.Context()).LogFields()...)...)

	writeJSON(w, http.StatusCreated, patient.CreateResponse{
		Success: true,
		Message: MsgSaved,
		Patient: &rec,
	})
}

func (c *Component) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := c.store.List(r.Context())
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("list").Inc()
		c.log.Errorw("patient store list failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, patient.CreateResponse{Message: MsgReadFailed})
		return
	}
	if recs == nil {
		recs = []patient.Record{}
	}
	writeJSON(w, http.StatusOK, patient.ListResponse{Patients: recs})
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

func (c *Component) reject(w http.ResponseWriter, r *http.Request, detail string) {
	metrics.PatientsRejectedTotal.Inc()
	c.log.Warnw("patient payload rejected", append([]any{"detail", detail},
		requestinfo.FromContext(r.Context()).LogFields()...)...)
	writeJSON(w, http.StatusBadRequest, patient.CreateResponse{
		Message: MsgInvalid,
		Error:   detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
