// internal/form/session.go
//
// Intake – Forms subsystem: the per-session state machine.
//
// Context
//   A Session owns one form's values, touched flags, errors, and the
//   submitting flag.  It is Idle or Submitting:
//
//      Idle --Submit--> Submitting --success--> Idle (reset)
//                                  --failure--> Idle (values kept, Submit error)
//
//   Every operation takes the session mutex, so changes, blurs, submits, and
//   resets are serialized.  The only suspension point is the Submitter call;
//   the mutex is released around it so edits keep flowing while a request is
//   in flight.  The payload is built from a copy taken before the call, so
//   such edits never reach the outgoing request.
//
// Workflow
//   •  Change* overwrites one field and clears only that field's error.
//   •  BlurField marks the field touched and copies its fresh verdict.
//   •  Submit touches every field, validates everything, and either stops
//      (Invalid) or sends (Success / Failure).
//   •  Reset is refused while a submission is in flight.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/yanizio/intake/internal/metrics"
	"github.com/yanizio/intake/internal/patient"
)

var (
	// ErrSubmitInProgress is returned by Submit and Reset while a submission
	// is outstanding.
	ErrSubmitInProgress = errors.New("form: submission in progress")
	// ErrFieldType is returned when a change targets a field of another type.
	ErrFieldType = errors.New("form: wrong value type for field")
	// ErrInvalidOption is returned for a selection outside its closed set.
	ErrInvalidOption = errors.New("form: invalid option")
)

// State is a point-in-time copy of a session.
type State struct {
	Values     Values
	Touched    Touched
	Errors     Errors
	Submitting bool
}

// Session is one form session.  Create with NewSession; the zero value is
// not usable.
type Session struct {
	sub Submitter
	log *zap.SugaredLogger

	mu         sync.Mutex
	values     Values
	touched    Touched
	errors     Errors
	submitting bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.  The default is zap.S().
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession returns an empty session that submits through sub.
func NewSession(sub Submitter, opts ...Option) *Session {
	s := &Session{sub: sub}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.S()
	}
	return s
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Values:     s.values,
		Touched:    s.touched,
		Errors:     s.errors,
		Submitting: s.submitting,
	}
}

// ShouldShowError reports whether f's error should be displayed: the field
// has been touched, or a submission is in flight.
func (s *Session) ShouldShowError(f Field) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched.Is(f) || s.submitting
}

// Submitting reports whether a submission is outstanding.
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// -----------------------------------------------------------------------------
// Changes
// -----------------------------------------------------------------------------

// ChangeText sets a text or select field.  Selections outside their option
// set return ErrInvalidOption; set and boolean fields return ErrFieldType.
// State is unchanged on error.
func (s *Session) ChangeText(f Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.values.SetText(f, value); err != nil {
		return err
	}
	s.clearError(f)
	return nil
}

// ChangeConditions replaces the existing-conditions set.
func (s *Session) ChangeConditions(set patient.ConditionSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.ExistingConditions = set
	s.clearError(FieldExistingConditions)
}

// ToggleCondition flips one condition's membership.
func (s *Session) ToggleCondition(c patient.Condition) error {
	if !c.Valid() {
		return ErrInvalidOption
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.ExistingConditions = s.values.ExistingConditions.Toggle(c)
	s.clearError(FieldExistingConditions)
	return nil
}

// ChangeConsent sets the consent checkbox.
func (s *Session) ChangeConsent(given bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values.ConsentToTreatment = given
	s.clearError(FieldConsentToTreatment)
}

// clearError drops f's error without revalidating.  Caller holds mu.
func (s *Session) clearError(f Field) {
	if s.errors.Has(f) {
		s.errors.set(f, "")
	}
}

// BlurField marks f touched and refreshes its error from a full validation
// of the current values.  Other fields' errors are left alone.
func (s *Session) BlurField(f Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched.mark(f)
	fresh := Validate(s.values)
	s.errors.set(f, fresh.Get(f))
}

// Reset restores the initial empty form.  It is refused while submitting.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSubmitInProgress
	}
	s.reset()
	return nil
}

// reset clears values, touched, and errors together.  Caller holds mu.
func (s *Session) reset() {
	s.values = Values{}
	s.touched = Touched{}
	s.errors = Errors{}
}

// -----------------------------------------------------------------------------
// Submit
// -----------------------------------------------------------------------------

// Submit validates the whole form and, when clean, sends it.  A second call
// while the first is outstanding returns ErrSubmitInProgress and has no
// effect.  All other paths return a nil error and one Outcome.
func (s *Session) Submit(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInProgress
	}

	s.touched.markAll()
	s.errors = Validate(s.values)
	if s.errors.Len() > 0 {
		errs := s.errors
		s.mu.Unlock()
		metrics.SubmissionsTotal.WithLabelValues("invalid").Inc()
		s.log.Debugw("intake blocked by validation", "errors", errs.Len())
		return Invalid{Errors: errs}, nil
	}

	s.submitting = true
	payload := BuildPayload(s.values)
	s.mu.Unlock()

	rec, err := s.send(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false

	if err != nil {
		msg := userMessage(err)
		s.errors.Submit = msg
		metrics.SubmissionsTotal.WithLabelValues("failure").Inc()
		s.log.Warnw("intake submission failed", "err", err)
		return Failure{Message: msg, Err: err}, nil
	}

	s.reset()
	metrics.SubmissionsTotal.WithLabelValues("success").Inc()
	s.log.Infow("intake submitted", "id", rec.ID)
	return Success{Record: rec}, nil
}

// send calls the submitter, turning a panic into an error so the session
// always returns to Idle.
func (s *Session) send(ctx context.Context, in patient.Intake) (rec patient.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("submitter panic", "panic", r)
			err = errors.New("submitter panic")
		}
	}()
	return s.sub.Submit(ctx, in)
}
