// internal/form/render_test.go
//
// Unit-tests for the HTML renderer and CSRF tokens.
//
// Run: go test ./internal/form -v

package form

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func TestRenderPrefillsAndEscapes(t *testing.T) {
	v := validValues()
	v.PatientName = `<script>alert(1)</script>`
	out := string(Render(State{Values: v}, RenderOptions{Action: "/intake", CSRFToken: "tok"}))

	if strings.Contains(out, "<script>") {
		t.Fatalf("value not escaped")
	}
	for _, want := range []string{
		`action="/intake"`,
		`name="csrf_token" value="tok"`,
		`<option value="female" selected>Female</option>`,
		`value="asthma" checked`,
		`name="consentToTreatment" type="checkbox" value="true" checked`,
		`<button type="submit">Submit</button>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markup missing %q", want)
		}
	}
	for _, f := range Fields() {
		if !strings.Contains(out, `data-field="`+f.String()+`"`) {
			t.Errorf("field %s not rendered", f)
		}
	}
}

func TestRenderShowsErrorsOnlyWhenAllowed(t *testing.T) {
	st := State{Errors: Validate(Values{})}
	st.Touched.mark(FieldAge)

	out := string(Render(st, RenderOptions{}))
	if !strings.Contains(out, `id="err-age" aria-live="polite">`+MsgAgeRequired+`<`) {
		t.Errorf("touched field error hidden")
	}
	if strings.Contains(out, MsgPatientNameRequired) {
		t.Errorf("untouched field error shown")
	}

	st.Submitting = true
	out = string(Render(st, RenderOptions{}))
	if !strings.Contains(out, MsgPatientNameRequired) {
		t.Errorf("errors should show while submitting")
	}
	if !strings.Contains(out, `<button type="submit" disabled>Submitting...</button>`) {
		t.Errorf("submit button not disabled while submitting")
	}
}

func TestRenderSubmitError(t *testing.T) {
	st := State{Errors: Errors{Submit: "Failed to save patient data"}}
	out := string(Render(st, RenderOptions{}))
	if !strings.Contains(out, `role="alert">Failed to save patient data</div>`) {
		t.Fatalf("submit error not rendered")
	}
}

func TestCSRFRoundTrip(t *testing.T) {
	c, err := NewCSRF("")
	if err != nil {
		t.Fatal(err)
	}
	tok, err := c.Token("sid-1")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Verify(tok, "sid-1") {
		t.Fatalf("fresh token rejected")
	}
	if c.Verify(tok, "sid-2") {
		t.Fatalf("token accepted for another session")
	}
	bad := []byte(tok)
	if bad[10] == 'A' {
		bad[10] = 'B'
	} else {
		bad[10] = 'A'
	}
	if c.Verify(string(bad), "sid-1") {
		t.Fatalf("tampered token accepted")
	}
	if c.Verify("garbage", "sid-1") {
		t.Fatalf("garbage accepted")
	}
}

func TestCSRFExpiry(t *testing.T) {
	c, _ := NewCSRF("")
	base := time.Now()
	c.now = func() time.Time { return base }
	tok, _ := c.Token("s")

	c.now = func() time.Time { return base.Add(MaxAge + time.Second) }
	if c.Verify(tok, "s") {
		t.Fatalf("expired token accepted")
	}
	c.now = func() time.Time { return base.Add(-2 * time.Minute) }
	if c.Verify(tok, "s") {
		t.Fatalf("future token accepted")
	}
}

func TestNewCSRFKeyChecks(t *testing.T) {
	if _, err := NewCSRF("!!notbase64"); err == nil {
		t.Errorf("bad encoding accepted")
	}
	short := base64.RawURLEncoding.EncodeToString(make([]byte, 8))
	if _, err := NewCSRF(short); err == nil {
		t.Errorf("short key accepted")
	}
	key := base64.RawURLEncoding.EncodeToString([]byte(strings.Repeat("k", MinKeyBytes)))
	a, err := NewCSRF(key)
	if err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
	b, _ := NewCSRF(key)
	tok, _ := a.Token("s")
	if !b.Verify(tok, "s") {
		t.Errorf("same key should verify across instances")
	}
}
