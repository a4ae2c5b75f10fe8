// cmd/intakectl/main_test.go
//
// Tests for YAML loading and the submit and list commands against a fake
// patients API.
//
// Run: go test ./cmd/intakectl -v

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yanizio/intake/internal/form"
	"github.com/yanizio/intake/internal/patient"
)

const janeYAML = `
patientName: Jane Doe
emergencyContactName: John Doe
age: 34
gender: female
bloodGroup: AB+
phone: "555-010-2000"
emergencyContactPhone: "5551234567"
email: jane@example.com
symptoms: Persistent cough for two weeks
existingConditions: [asthma]
insuranceProvider: Acme Health
insuranceIssuedYear: 2019
memberId: M123
consentToTreatment: true
`

func TestFillFromYAML(t *testing.T) {
	doc, err := readDoc(strings.NewReader(janeYAML))
	if err != nil {
		t.Fatal(err)
	}
	s := form.NewSession(nil)
	if err := fill(s, doc); err != nil {
		t.Fatal(err)
	}
	v := s.State().Values
	if v.Age != "34" || v.InsuranceIssuedYear != "2019" || v.BloodGroup != patient.BloodABPos {
		t.Errorf("values = %+v", v)
	}
	if !v.ExistingConditions.Has(patient.ConditionAsthma) || !v.ConsentToTreatment {
		t.Errorf("set or consent not applied")
	}
	if errs := form.Validate(v); errs.Len() != 0 {
		t.Errorf("document should be valid: %v", errs.Map())
	}
}

func TestFillRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "ssn: 123",
		"bad option":       "gender: robot",
		"bad condition":    "existingConditions: [gout]",
		"non-bool consent": "consentToTreatment: maybe",
		"non-scalar field": "patientName: [a, b]",
	}
	for name, src := range cases {
		doc, err := readDoc(strings.NewReader(src))
		if err != nil {
			t.Fatalf("%s: parse: %v", name, err)
		}
		if err := fill(form.NewSession(nil), doc); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestReadDocEmpty(t *testing.T) {
	doc, err := readDoc(strings.NewReader(""))
	if err != nil || len(doc) != 0 {
		t.Fatalf("empty doc = %v, %v", doc, err)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestSubmitCommand(t *testing.T) {
	var got patient.Intake
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/patients" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(patient.CreateResponse{
			Success: true,
			Message: "Patient data saved successfully",
			Patient: &patient.Record{Intake: got, ID: "p-42"},
		})
	}))
	defer srv.Close()

	out, _, err := run(t, janeYAML, "submit", "--base-url", srv.URL+"/api")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.PatientName != "Jane Doe" || got.Age != 34 {
		t.Errorf("server saw %+v", got)
	}
	if !strings.Contains(out, `"id": "p-42"`) {
		t.Errorf("record not printed:\n%s", out)
	}
}

func TestSubmitCommandInvalid(t *testing.T) {
	_, stderr, err := run(t, "patientName: J\n", "submit", "--base-url", "http://127.0.0.1:1")
	if !errors.Is(err, errInvalid) {
		t.Fatalf("err = %v, want errInvalid", err)
	}
	for _, msg := range []string{form.MsgPatientNameShort, form.MsgConsentRequired} {
		if !strings.Contains(stderr, msg) {
			t.Errorf("stderr missing %q", msg)
		}
	}
}

func TestListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(patient.ListResponse{Patients: []patient.Record{{ID: "a"}, {ID: "b"}}})
	}))
	defer srv.Close()

	out, _, err := run(t, "", "list", "--base-url", srv.URL+"/api")
	if err != nil {
		t.Fatal(err)
	}
	var recs []patient.Record
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("output not JSON: %v", err)
	}
	if len(recs) != 2 || recs[1].ID != "b" {
		t.Errorf("records = %+v", recs)
	}
}
