// internal/patient/patient_test.go
//
// Unit-tests for the shared patient vocabulary: condition sets, lenient
// integer parsing, and server-side payload validation.
//
// Run: go test ./internal/patient -v

package patient

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validIntake() Intake {
	set, _ := NewConditionSet(ConditionAsthma)
	return Intake{
		PatientName:           "Jane Doe",
		EmergencyContactName:  "John Doe",
		Age:                   34,
		Gender:                GenderFemale,
		BloodGroup:            BloodONeg,
		Phone:                 "+1 (555) 010-2000",
		EmergencyContactPhone: "5551234567",
		Email:                 "jane@example.com",
		Symptoms:              "Persistent cough for two weeks",
		ExistingConditions:    set,
		InsuranceProvider:     "Acme Health",
		InsuranceIssuedYear:   "2019",
		MemberID:              "M123",
		ConsentToTreatment:    true,
	}
}

func TestConditionSetToggle(t *testing.T) {
	var s ConditionSet
	s = s.Toggle(ConditionAsthma)
	s = s.Toggle(ConditionDiabetes)
	s = s.Toggle(ConditionAsthma)
	s = s.Toggle(ConditionDiabetes).Toggle(ConditionDiabetes)

	if got, want := s.Slice(), []Condition{ConditionDiabetes}; !cmp.Equal(got, want) {
		t.Fatalf("Slice() mismatch (-got +want):\n%s", cmp.Diff(got, want))
	}
	if s.Has(ConditionAsthma) {
		t.Fatalf("asthma toggled twice should be absent")
	}
	if s.Toggle("gout") != s {
		t.Fatalf("unknown condition must not change the set")
	}
}

func TestConditionSetJSON(t *testing.T) {
	var s ConditionSet
	if err := json.Unmarshal([]byte(`["none","asthma","asthma"]`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `["asthma","none"]` {
		t.Fatalf("marshal = %s, want display order", b)
	}

	var empty ConditionSet
	b, _ = json.Marshal(empty)
	if string(b) != `[]` {
		t.Fatalf("empty set marshals to %s, want []", b)
	}

	if err := json.Unmarshal([]byte(`["gout"]`), &s); err == nil {
		t.Fatalf("expected error for unknown condition")
	}
}

func TestParseInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{"  7", 7, true},
		{"42abc", 42, true},
		{"1.9", 1, true},
		{"-3", -3, true},
		{"+5", 5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
		{"99999999999999999999999", int(^uint(0) >> 1), true},
	}
	for _, c := range cases {
		got, ok := ParseInt(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseInt(%q) = %d, %v; want %d, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestDigitsOnly(t *testing.T) {
	if got := DigitsOnly("(555) 123-4567"); got != "5551234567" {
		t.Fatalf("DigitsOnly = %q", got)
	}
}

func TestValidateAcceptsCleanIntake(t *testing.T) {
	in := validIntake()
	if err := Validate(&in); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateNamesFailingFields(t *testing.T) {
	in := validIntake()
	in.Age = 200
	in.Email = "not-an-email"
	in.Gender = "robot"
	in.ConsentToTreatment = false
	in.InsuranceIssuedYear = "1900"

	err := Validate(&in)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{
		"age failed max",
		"email failed intake_email",
		"gender failed oneof",
		"consentToTreatment failed required",
		"insuranceIssuedYear failed issued_year",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
