// internal/form/definition.go
//
// Intake – Forms subsystem: field definitions.
//
// Context
//   The intake form has a fixed set of fields.  Each one is identified by a
//   Field value whose JSON name matches the wire payload.  Values, Errors,
//   and Touched are fixed-shape records indexed by Field, so a validator or
//   display rule that forgets a field shows up as a gap in an array literal
//   rather than a missing map key.
//
// Workflow
//   •  Field enumerates the fourteen inputs in display order.
//   •  Values is the form snapshot.  It is total: every field always holds a
//      value (empty string, false, or the empty set).
//   •  Errors holds one optional message per field plus a form-level Submit
//      slot for failed remote calls.
//   •  Touched records which fields have been blurred.
//
//------------------------------------------------------------------------------

package form

import (
	"encoding/json"
	"fmt"

	"github.com/yanizio/intake/internal/patient"
)

// -----------------------------------------------------------------------------
// Field identifiers
// -----------------------------------------------------------------------------

// Field identifies one input on the intake form.
type Field int

const (
	FieldPatientName Field = iota
	FieldEmergencyContactName
	FieldAge
	FieldGender
	FieldBloodGroup
	FieldPhone
	FieldEmergencyContactPhone
	FieldEmail
	FieldSymptoms
	FieldExistingConditions
	FieldInsuranceProvider
	FieldInsuranceIssuedYear
	FieldMemberID
	FieldConsentToTreatment

	fieldCount
)

// SubmitKey is the JSON key under which Errors carries the form-level error.
const SubmitKey = "_submit"

var fieldNames = [fieldCount]string{
	FieldPatientName:           "patientName",
	FieldEmergencyContactName:  "emergencyContactName",
	FieldAge:                   "age",
	FieldGender:                "gender",
	FieldBloodGroup:            "bloodGroup",
	FieldPhone:                 "phone",
	FieldEmergencyContactPhone: "emergencyContactPhone",
	FieldEmail:                 "email",
	FieldSymptoms:              "symptoms",
	FieldExistingConditions:    "existingConditions",
	FieldInsuranceProvider:     "insuranceProvider",
	FieldInsuranceIssuedYear:   "insuranceIssuedYear",
	FieldMemberID:              "memberId",
	FieldConsentToTreatment:    "consentToTreatment",
}

var fieldLabels = [fieldCount]string{
	FieldPatientName:           "Patient Name",
	FieldEmergencyContactName:  "Emergency Contact Name",
	FieldAge:                   "Age",
	FieldGender:                "Gender",
	FieldBloodGroup:            "Blood Group",
	FieldPhone:                 "Phone Number",
	FieldEmergencyContactPhone: "Emergency Contact Phone",
	FieldEmail:                 "Email Address",
	FieldSymptoms:              "Symptoms Description",
	FieldExistingConditions:    "Existing Conditions (Select all that apply)",
	FieldInsuranceProvider:     "Insurance Provider",
	FieldInsuranceIssuedYear:   "Insurance Issued Year",
	FieldMemberID:              "Member ID",
	FieldConsentToTreatment:    "I consent to treatment",
}

// Fields returns every field in display order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// String returns the JSON name, e.g. "patientName".
func (f Field) String() string {
	if !f.valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// Label returns the human-readable label.
func (f Field) Label() string {
	if !f.valid() {
		return f.String()
	}
	return fieldLabels[f]
}

func (f Field) valid() bool { return f >= 0 && f < fieldCount }

// ParseField maps a JSON name to its Field.
func ParseField(name string) (Field, bool) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), true
		}
	}
	return 0, false
}

// isText reports whether the field holds a string-like value that can be set
// through ChangeText.
func (f Field) isText() bool {
	return f.valid() && f != FieldExistingConditions && f != FieldConsentToTreatment
}

// -----------------------------------------------------------------------------
// Values
// -----------------------------------------------------------------------------

// Values is the snapshot of one form session.  The zero value is the initial
// empty form.
type Values struct {
	PatientName           string
	EmergencyContactName  string
	Age                   string
	Gender                patient.Gender
	BloodGroup            patient.BloodGroup
	Phone                 string
	EmergencyContactPhone string
	Email                 string
	Symptoms              string
	ExistingConditions    patient.ConditionSet
	InsuranceProvider     string
	InsuranceIssuedYear   string
	MemberID              string
	ConsentToTreatment    bool
}

// Text returns the raw string value of a text field, or "" for the set and
// boolean fields.
func (v Values) Text(f Field) string {
	if p := v.textSlot(f); p != nil {
		return *p
	}
	switch f {
	case FieldGender:
		return string(v.Gender)
	case FieldBloodGroup:
		return string(v.BloodGroup)
	}
	return ""
}

// textSlot returns the address of a plain string field.  Enum and non-text
// fields return nil.
func (v *Values) textSlot(f Field) *string {
	switch f {
	case FieldPatientName:
		return &v.PatientName
	case FieldEmergencyContactName:
		return &v.EmergencyContactName
	case FieldAge:
		return &v.Age
	case FieldPhone:
		return &v.Phone
	case FieldEmergencyContactPhone:
		return &v.EmergencyContactPhone
	case FieldEmail:
		return &v.Email
	case FieldSymptoms:
		return &v.Symptoms
	case FieldInsuranceProvider:
		return &v.InsuranceProvider
	case FieldInsuranceIssuedYear:
		return &v.InsuranceIssuedYear
	case FieldMemberID:
		return &v.MemberID
	}
	return nil
}

// SetText assigns a text or enum field.  Enum values outside their closed
// set are rejected with ErrInvalidOption; the empty string clears a
// selection.
func (v *Values) SetText(f Field, s string) error {
	if !f.isText() {
		return fmt.Errorf("%w: %s", ErrFieldType, f)
	}
	switch f {
	case FieldGender:
		g := patient.Gender(s)
		if g != "" && !g.Valid() {
			return fmt.Errorf("%w: gender %q", ErrInvalidOption, s)
		}
		v.Gender = g
	case FieldBloodGroup:
		b := patient.BloodGroup(s)
		if b != "" && !b.Valid() {
			return fmt.Errorf("%w: blood group %q", ErrInvalidOption, s)
		}
		v.BloodGroup = b
	default:
		*v.textSlot(f) = s
	}
	return nil
}

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

// Errors maps each field to an optional message.  A field is valid iff its
// message is empty.  Submit carries the form-level error from a failed
// remote call.
type Errors struct {
	fields [fieldCount]string
	Submit string
}

// Get returns the message for f, or "".
func (e Errors) Get(f Field) string {
	if !f.valid() {
		return ""
	}
	return e.fields[f]
}

// Has reports whether f currently has an error.
func (e Errors) Has(f Field) bool { return e.Get(f) != "" }

// Len counts field errors.  The Submit slot is not counted.
func (e Errors) Len() int {
	n := 0
	for _, m := range e.fields {
		if m != "" {
			n++
		}
	}
	return n
}

// Empty reports whether there are no field errors and no Submit error.
func (e Errors) Empty() bool { return e.Len() == 0 && e.Submit == "" }

func (e *Errors) set(f Field, msg string) {
	if f.valid() {
		e.fields[f] = msg
	}
}

// Map returns the present entries keyed by JSON name, with the form-level
// error under SubmitKey.
func (e Errors) Map() map[string]string {
	out := make(map[string]string, e.Len()+1)
	for i, m := range e.fields {
		if m != "" {
			out[fieldNames[i]] = m
		}
	}
	if e.Submit != "" {
		out[SubmitKey] = e.Submit
	}
	return out
}

// MarshalJSON emits only present keys, so key presence means "has error".
func (e Errors) MarshalJSON() ([]byte, error) { return json.Marshal(e.Map()) }

// -----------------------------------------------------------------------------
// Touched
// -----------------------------------------------------------------------------

// Touched records which fields the user has blurred.
type Touched struct {
	fields [fieldCount]bool
}

// Is reports whether f has been touched.
func (t Touched) Is(f Field) bool { return f.valid() && t.fields[f] }

// Any reports whether at least one field has been touched.
func (t Touched) Any() bool {
	for _, b := range t.fields {
		if b {
			return true
		}
	}
	return false
}

func (t *Touched) mark(f Field) {
	if f.valid() {
		t.fields[f] = true
	}
}

func (t *Touched) markAll() {
	for i := range t.fields {
		t.fields[i] = true
	}
}
