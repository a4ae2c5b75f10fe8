// internal/gateway/gateway_test.go
//
// Unit-tests for the submission gateway against httptest servers.
//
// Context
// -------
// Each case stands up a throwaway server that answers POST /api/patients in
// one specific way and checks the gateway sorts it into the right outcome:
// success, explicit rejection, or transport failure.
//
// Run: go test ./internal/gateway -v

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/yanizio/intake/internal/patient"
)

func newClient(url string) *Client {
	return New(url+"/api", WithLogger(zap.NewNop().Sugar()), WithTimeout(2*time.Second))
}

func sampleIntake() patient.Intake {
	set, _ := patient.NewConditionSet(patient.ConditionHypertension)
	return patient.Intake{
		PatientName:           "Jane Doe",
		EmergencyContactName:  "John Doe",
		Age:                   34,
		Gender:                patient.GenderFemale,
		BloodGroup:            patient.BloodOPos,
		Phone:                 "555 010 2000",
		EmergencyContactPhone: "5551234567",
		Email:                 "jane@example.com",
		Symptoms:              "Headache for three days",
		ExistingConditions:    set,
		InsuranceProvider:     "Acme",
		InsuranceIssuedYear:   "2020",
		MemberID:              "M1",
		ConsentToTreatment:    true,
	}
}

func TestSubmitSuccess(t *testing.T) {
	var got patient.Intake
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/patients" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		rec := patient.Record{Intake: got, ID: "abc", SubmittedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(patient.CreateResponse{Success: true, Message: "Patient data saved successfully", Patient: &rec})
	}))
	defer srv.Close()

	in := sampleIntake()
	rec, err := newClient(srv.URL).Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rec.ID != "abc" {
		t.Fatalf("ID = %q", rec.ID)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("server saw different payload (-sent +got):\n%s", diff)
	}
	if diff := cmp.Diff(in, rec.Intake); diff != "" {
		t.Fatalf("record payload mismatch:\n%s", diff)
	}
}

func TestSubmitSuccessWithoutPatient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer srv.Close()

	rec, err := newClient(srv.URL).Submit(context.Background(), sampleIntake())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rec.ID != "" {
		t.Fatalf("expected zero record, got %+v", rec)
	}
}

func TestSubmitSuccessWithUnreadablePatient(t *testing.T) {
	bodies := map[string]string{
		"unknown condition": `{"success":true,"message":"ok","patient":{"id":"1","existingConditions":["gout"]}}`,
		"numeric id":        `{"success":true,"message":"ok","patient":{"id":1700000000000}}`,
		"string age":        `{"success":true,"message":"ok","patient":{"id":"1","age":"34"}}`,
	}
	for name, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(body))
		}))

		rec, err := newClient(srv.URL).Submit(context.Background(), sampleIntake())
		srv.Close()
		if err != nil {
			t.Errorf("%s: err = %v, want success", name, err)
			continue
		}
		if rec.ID != "" {
			t.Errorf("%s: expected zero record, got %+v", name, rec)
		}
	}
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to save patient data","error":"disk full"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Submit(context.Background(), sampleIntake())
	var rej *RejectedError
	if !errors.As(err, &rej) {
		t.Fatalf("err = %v, want *RejectedError", err)
	}
	if rej.Status != 500 || rej.UserMessage() != "Failed to save patient data" || rej.Detail != "disk full" {
		t.Fatalf("unexpected rejection: %+v", rej)
	}
}

func TestSubmitRejectedWithUnreadableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Submit(context.Background(), sampleIntake())
	var rej *RejectedError
	if !errors.As(err, &rej) {
		t.Fatalf("err = %v, want *RejectedError", err)
	}
	if rej.UserMessage() != MsgRejectFallback {
		t.Fatalf("UserMessage = %q, want fallback", rej.UserMessage())
	}
}

func TestSubmitExplicitFailureOn2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Duplicate member"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Submit(context.Background(), sampleIntake())
	var rej *RejectedError
	if !errors.As(err, &rej) || rej.UserMessage() != "Duplicate member" {
		t.Fatalf("err = %v, want rejection with service message", err)
	}
}

func TestSubmitMalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Submit(context.Background(), sampleIntake())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if te.UserMessage() != MsgTransport {
		t.Fatalf("UserMessage = %q", te.UserMessage())
	}
}

func TestSubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing listens here any more

	_, err := newClient(url).Submit(context.Background(), sampleIntake())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
}

func TestSubmitMakesExactlyOneAttempt(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, _ = newClient(srv.URL).Submit(context.Background(), sampleIntake())
	if n := hits.Load(); n != 1 {
		t.Fatalf("hits = %d, want 1", n)
	}
}

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"patients":[{"id":"1","patientName":"A"},{"id":"2","patientName":"B"}]}`))
	}))
	defer srv.Close()

	recs, err := newClient(srv.URL).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "1" || recs[1].PatientName != "B" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}
