// internal/form/submit.go
//
// Intake – Forms subsystem: submission contract.
//
// Context
//   A Session hands a validated snapshot to a Submitter and reports back one
//   of three outcomes.  Outcome is a closed union (Invalid, Success, Failure)
//   so callers decide on presentation with a type switch instead of passing
//   callbacks into Submit.
//
//   BuildPayload converts the raw snapshot into the wire payload: strings are
//   trimmed, age becomes an integer, and the emergency contact phone is
//   reduced to its digits.  The primary phone is trimmed only; its looser
//   rule is kept as-is pending product clarification.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"errors"
	"strings"

	"github.com/yanizio/intake/internal/patient"
)

// Submitter delivers one payload to the persistence service.  Exactly one
// attempt is made per call; retry policy belongs to the caller.
type Submitter interface {
	Submit(ctx context.Context, in patient.Intake) (patient.Record, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, in patient.Intake) (patient.Record, error)

// Submit implements Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, in patient.Intake) (patient.Record, error) {
	return f(ctx, in)
}

// -----------------------------------------------------------------------------
// Outcomes
// -----------------------------------------------------------------------------

// Outcome is the result of Session.Submit: Invalid, Success, or Failure.
type Outcome interface{ outcome() }

// Invalid means local validation failed and nothing was sent.
type Invalid struct{ Errors Errors }

// Success carries the record created by the persistence service.
type Success struct{ Record patient.Record }

// Failure means the submission was attempted and did not succeed.  Message
// is the user-facing text also stored in Errors.Submit.
type Failure struct {
	Message string
	Err     error
}

func (Invalid) outcome() {}
func (Success) outcome() {}
func (Failure) outcome() {}

// Fallback message for submitter errors that carry no user-facing text.
const MsgUnexpected = "An unexpected error occurred"

// userMessage extracts the user-facing text from err.  Gateway errors expose
// it through UserMessage; anything else gets the generic fallback.
func userMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if m := um.UserMessage(); m != "" {
			return m
		}
	}
	return MsgUnexpected
}

// -----------------------------------------------------------------------------
// Payload
// -----------------------------------------------------------------------------

// BuildPayload normalizes a snapshot into the wire payload.  It assumes v has
// passed Validate; an unparseable age becomes 0.
func BuildPayload(v Values) patient.Intake {
	age, _ := patient.ParseInt(v.Age)
	return patient.Intake{
		PatientName:           strings.TrimSpace(v.PatientName),
		EmergencyContactName:  strings.TrimSpace(v.EmergencyContactName),
		Age:                   age,
		Gender:                v.Gender,
		BloodGroup:            v.BloodGroup,
		Phone:                 strings.TrimSpace(v.Phone),
		EmergencyContactPhone: patient.DigitsOnly(v.EmergencyContactPhone),
		Email:                 strings.TrimSpace(v.Email),
		Symptoms:              strings.TrimSpace(v.Symptoms),
		ExistingConditions:    v.ExistingConditions,
		InsuranceProvider:     strings.TrimSpace(v.InsuranceProvider),
		InsuranceIssuedYear:   strings.TrimSpace(v.InsuranceIssuedYear),
		MemberID:              strings.TrimSpace(v.MemberID),
		ConsentToTreatment:    v.ConsentToTreatment,
	}
}
