// internal/patient/patient.go
//
// Intake – shared patient vocabulary.
//
// Context
//   Both halves of the wire contract speak in these types: the form session
//   builds an Intake from a validated snapshot, the gateway posts it, and the
//   patients component stores it as a Record with a server-generated ID and
//   timestamp appended.  The option sets (gender, blood group, conditions)
//   are closed; anything outside them is rejected at the boundary.
//
// Notes
//   Struct tags carry both JSON names and go-playground/validator rules.  The
//   custom rules (intake_phone, intake_email, issued_year) are registered in
//   validate.go.
//
//------------------------------------------------------------------------------

package patient

import "time"

// Gender is one of the four selectable gender options.
type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer-not-to-say"
)

// Genders lists the options in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay}

// Valid reports whether g is a member of the closed set.
func (g Gender) Valid() bool {
	for _, o := range Genders {
		if g == o {
			return true
		}
	}
	return false
}

// Label is the human-readable option text.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderOther:
		return "Other"
	case GenderPreferNotToSay:
		return "Prefer not to say"
	}
	return string(g)
}

// BloodGroup is one of the nine selectable blood groups.
type BloodGroup string

const (
	BloodAPos  BloodGroup = "A+"
	BloodANeg  BloodGroup = "A-"
	BloodBPos  BloodGroup = "B+"
	BloodBNeg  BloodGroup = "B-"
	BloodABPos BloodGroup = "AB+"
	BloodABNeg BloodGroup = "AB-"
	BloodOPos  BloodGroup = "O+"
	BloodONeg  BloodGroup = "O-"
	BloodOther BloodGroup = "Other"
)

// BloodGroups lists the options in display order.
var BloodGroups = []BloodGroup{
	BloodAPos, BloodANeg, BloodBPos, BloodBNeg,
	BloodABPos, BloodABNeg, BloodOPos, BloodONeg, BloodOther,
}

// Valid reports whether b is a member of the closed set.
func (b BloodGroup) Valid() bool {
	for _, o := range BloodGroups {
		if b == o {
			return true
		}
	}
	return false
}

// Intake is the normalized payload posted to POST /patients.  It carries
// every patient field except the server-generated ID and timestamp.
type Intake struct {
	PatientName           string       `json:"patientName"           validate:"required,min=2"`
	EmergencyContactName  string       `json:"emergencyContactName"  validate:"required,min=2"`
	Age                   int          `json:"age"                   validate:"min=1,max=150"`
	Gender                Gender       `json:"gender"                validate:"required,oneof=male female other prefer-not-to-say"`
	BloodGroup            BloodGroup   `json:"bloodGroup"            validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O- Other"`
	Phone                 string       `json:"phone"                 validate:"required,intake_phone"`
	EmergencyContactPhone string       `json:"emergencyContactPhone" validate:"required,len=10,numeric"`
	Email                 string       `json:"email"                 validate:"required,intake_email"`
	Symptoms              string       `json:"symptoms"              validate:"required,min=10"`
	ExistingConditions    ConditionSet `json:"existingConditions"`
	InsuranceProvider     string       `json:"insuranceProvider"     validate:"required"`
	InsuranceIssuedYear   string       `json:"insuranceIssuedYear"   validate:"required,issued_year"`
	MemberID              string       `json:"memberId"              validate:"required"`
	ConsentToTreatment    bool         `json:"consentToTreatment"    validate:"required"`
}

// Record is a stored intake: the payload plus the identifier and timestamp
// assigned by the persistence service.
type Record struct {
	Intake
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// CreateResponse is the body of every POST /patients response.  Patient is
// present on success only; Error carries optional diagnostic detail.
type CreateResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Patient *Record `json:"patient,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// ListResponse is the body of GET /patients.
type ListResponse struct {
	Patients []Record `json:"patients"`
}
