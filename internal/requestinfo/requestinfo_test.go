// internal/requestinfo/requestinfo_test.go
//
// Run: go test ./internal/requestinfo -v

package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/avct/uasurfer"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name   string
		xff    string
		xrip   string
		remote string
		want   string
	}{
		{"forwarded first", "garbage, 203.0.113.7, 10.0.0.1", "", "10.0.0.2:5000", "203.0.113.7"},
		{"real ip", "", "198.51.100.4", "10.0.0.2:5000", "198.51.100.4"},
		{"remote addr", "", "", "192.0.2.9:443", "192.0.2.9"},
		{"remote without port", "", "", "192.0.2.10", "192.0.2.10"},
	}
	for _, c := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = c.remote
		if c.xff != "" {
			r.Header.Set("X-Forwarded-For", c.xff)
		}
		if c.xrip != "" {
			r.Header.Set("X-Real-Ip", c.xrip)
		}
		if got := clientIP(r).String(); got != c.want {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

func TestEnrichAttachesInfo(t *testing.T) {
	var got *RequestInfo
	h := Enrich(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/patients", nil)
	r.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15")
	r.RemoteAddr = "192.0.2.1:1234"
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got == nil {
		t.Fatalf("RequestInfo not attached")
	}
	if got.Geo.IP.String() != "192.0.2.1" {
		t.Errorf("IP = %s", got.Geo.IP)
	}
	if got.Geo.CountryISO != "" {
		t.Errorf("country should be empty without a GeoLite2 DB")
	}
	if got.UA.Browser != "Safari" {
		t.Errorf("browser = %q, want Safari", got.UA.Browser)
	}
	if got.Timestamp.IsZero() {
		t.Errorf("timestamp not set")
	}
	if len(got.LogFields())%2 != 0 {
		t.Errorf("LogFields must be key-value pairs")
	}
}

func TestFromContextWithoutMiddleware(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if FromContext(r.Context()) != nil {
		t.Fatalf("expected nil")
	}
	var ri *RequestInfo
	if ri.LogFields() != nil {
		t.Fatalf("nil receiver should yield no fields")
	}
}

func TestInitGeoMissingFile(t *testing.T) {
	if err := InitGeo(filepath.Join(t.TempDir(), "missing.mmdb")); err == nil {
		t.Fatalf("expected error for missing DB")
	}
}

func TestTrimVersion(t *testing.T) {
	// zero-valued version collapses to "0"
	if got := trimVersion(uasurfer.Version{}); got != "0" {
		t.Fatalf("trimVersion(0.0.0) = %q", got)
	}
}
