// internal/form/validate.go
//
// Intake – Forms subsystem: field validators and the form-wide aggregator.
//
// Context
//   Each validator is a pure function from one raw field value to a
//   user-facing message, or "" when the value passes.  Validate runs the
//   whole table over a snapshot and collects the failures into Errors.
//   Fields are independent of each other, so evaluation order is irrelevant
//   and re-running the table for a single blurred field is safe.
//
// Workflow
//   •  Text rules trim before checking, except the insurance issued year,
//      whose "required" check looks at the raw value.
//   •  Numeric rules use patient.ParseInt, which accepts a leading integer
//      the way the browser form always has ("42abc" reads as 42).
//   •  Existing conditions are never invalid.
//
//------------------------------------------------------------------------------

package form

import (
	"strings"
	"unicode/utf8"

	"github.com/yanizio/intake/internal/patient"
)

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

const (
	MsgPatientNameRequired  = "Patient name is required"
	MsgPatientNameShort     = "Patient name must be at least 2 characters"
	MsgContactNameRequired  = "Emergency contact name is required"
	MsgContactNameShort     = "Emergency contact name must be at least 2 characters"
	MsgAgeRequired          = "Age is required"
	MsgAgeRange             = "Age must be a number between 1 and 150"
	MsgGenderRequired       = "Gender is required"
	MsgBloodGroupRequired   = "Blood group is required"
	MsgPhoneRequired        = "Phone number is required"
	MsgPhoneInvalid         = "Please enter a valid phone number"
	MsgContactPhoneRequired = "Emergency contact phone is required"
	MsgContactPhoneDigits   = "Emergency contact phone must be exactly 10 digits"
	MsgEmailRequired        = "Email is required"
	MsgEmailInvalid         = "Please enter a valid email address"
	MsgSymptomsRequired     = "Symptoms description is required"
	MsgSymptomsShort        = "Symptoms description must be at least 10 characters"
	MsgInsuranceRequired    = "Insurance provider is required"
	MsgIssuedYearRequired   = "Insurance issued year is required"
	MsgIssuedYearRange      = "Insurance issued year must be between 1930 and 2025"
	MsgMemberIDRequired     = "Member ID is required"
	MsgConsentRequired      = "You must consent to treatment to proceed"
)

// -----------------------------------------------------------------------------
// Field validators
// -----------------------------------------------------------------------------

// ValidatePatientName requires a trimmed name of at least two characters.
func ValidatePatientName(s string) string {
	return nameRule(s, MsgPatientNameRequired, MsgPatientNameShort)
}

// ValidateEmergencyContactName applies the patient-name rule to the contact.
func ValidateEmergencyContactName(s string) string {
	return nameRule(s, MsgContactNameRequired, MsgContactNameShort)
}

func nameRule(s, required, short string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return required
	case utf8.RuneCountInString(s) < patient.MinNameLength:
		return short
	}
	return ""
}

// ValidateAge requires an integer between 1 and 150.
func ValidateAge(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return MsgAgeRequired
	}
	n, ok := patient.ParseInt(s)
	if !ok || n < patient.MinAge || n > patient.MaxAge {
		return MsgAgeRange
	}
	return ""
}

// ValidateGender requires a selection.
func ValidateGender(g patient.Gender) string {
	if g == "" {
		return MsgGenderRequired
	}
	return ""
}

// ValidateBloodGroup requires a selection.
func ValidateBloodGroup(b patient.BloodGroup) string {
	if b == "" {
		return MsgBloodGroupRequired
	}
	return ""
}

// ValidatePhone requires digits, spaces, and - + ( ) only.  The digit count
// is deliberately not checked.
func ValidatePhone(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return MsgPhoneRequired
	case !patient.PhoneOK(s):
		return MsgPhoneInvalid
	}
	return ""
}

// ValidateEmergencyContactPhone requires exactly ten digits once every
// non-digit is stripped.
func ValidateEmergencyContactPhone(s string) string {
	switch {
	case strings.TrimSpace(s) == "":
		return MsgContactPhoneRequired
	case len(patient.DigitsOnly(s)) != patient.ContactPhoneDigits:
		return MsgContactPhoneDigits
	}
	return ""
}

// ValidateEmail requires the local@domain.tld shape.
func ValidateEmail(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return MsgEmailRequired
	case !patient.EmailOK(s):
		return MsgEmailInvalid
	}
	return ""
}

// ValidateSymptoms requires at least ten characters after trimming.
func ValidateSymptoms(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return MsgSymptomsRequired
	case utf8.RuneCountInString(s) < patient.MinSymptomsLength:
		return MsgSymptomsShort
	}
	return ""
}

// ValidateInsuranceProvider requires a non-blank provider.
func ValidateInsuranceProvider(s string) string {
	if strings.TrimSpace(s) == "" {
		return MsgInsuranceRequired
	}
	return ""
}

// ValidateInsuranceIssuedYear requires a year between 1930 and 2025.
// Whitespace-only input counts as present and fails the range check.
func ValidateInsuranceIssuedYear(s string) string {
	switch {
	case s == "":
		return MsgIssuedYearRequired
	case !patient.IssuedYearOK(s):
		return MsgIssuedYearRange
	}
	return ""
}

// ValidateMemberID requires a non-blank member ID.
func ValidateMemberID(s string) string {
	if strings.TrimSpace(s) == "" {
		return MsgMemberIDRequired
	}
	return ""
}

// ValidateConsent requires consent to be given.
func ValidateConsent(b bool) string {
	if !b {
		return MsgConsentRequired
	}
	return ""
}

// -----------------------------------------------------------------------------
// Aggregator
// -----------------------------------------------------------------------------

// rules holds one entry per field.  A nil entry means the field is always
// valid.
var rules = [fieldCount]func(Values) string{
	FieldPatientName:           func(v Values) string { return ValidatePatientName(v.PatientName) },
	FieldEmergencyContactName:  func(v Values) string { return ValidateEmergencyContactName(v.EmergencyContactName) },
	FieldAge:                   func(v Values) string { return ValidateAge(v.Age) },
	FieldGender:                func(v Values) string { return ValidateGender(v.Gender) },
	FieldBloodGroup:            func(v Values) string { return ValidateBloodGroup(v.BloodGroup) },
	FieldPhone:                 func(v Values) string { return ValidatePhone(v.Phone) },
	FieldEmergencyContactPhone: func(v Values) string { return ValidateEmergencyContactPhone(v.EmergencyContactPhone) },
	FieldEmail:                 func(v Values) string { return ValidateEmail(v.Email) },
	FieldSymptoms:              func(v Values) string { return ValidateSymptoms(v.Symptoms) },
	FieldExistingConditions:    nil,
	FieldInsuranceProvider:     func(v Values) string { return ValidateInsuranceProvider(v.InsuranceProvider) },
	FieldInsuranceIssuedYear:   func(v Values) string { return ValidateInsuranceIssuedYear(v.InsuranceIssuedYear) },
	FieldMemberID:              func(v Values) string { return ValidateMemberID(v.MemberID) },
	FieldConsentToTreatment:    func(v Values) string { return ValidateConsent(v.ConsentToTreatment) },
}

// Validate runs every field rule over v.  Passing fields are left empty in
// the result; the Submit slot is always empty.
func Validate(v Values) Errors {
	var errs Errors
	for f, rule := range rules {
		if rule == nil {
			continue
		}
		errs.set(Field(f), rule(v))
	}
	return errs
}
