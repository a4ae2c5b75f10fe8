//
//  internal/requestinfo/requestinfo.go
//
//  Per-request metadata (user-agent fingerprint, client IP, optional
//  geolocation, and timestamp) attached by the Enrich middleware.  The
//  patients API logs it next to each stored record id; patient fields are
//  never part of it.
//
//  These structs are inert.  They hold no handles or large buffers, so
//  they are safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer           (UA parsing)
//  • github.com/oschwald/geoip2-golang  (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties we log.
type UA struct {
	Browser string // "Chrome", "Firefox", "Safari", etc.
	Version string // "124.0.6367"
	OS      string // "macOS", "Windows", "Android", "iOS", etc.
	Device  string // "Desktop", "Phone", "Tablet", ...
	IsBot   bool
}

// Geo holds IP-based hints.  Empty when no GeoLite2 DB is configured.
type Geo struct {
	IP         net.IP
	CountryISO string
}

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

// LogFields returns key-value pairs for zap's *w methods.
func (ri *RequestInfo) LogFields() []any {
	if ri == nil {
		return nil
	}
	return []any{
		"ip", ri.Geo.IP.String(),
		"country", ri.Geo.CountryISO,
		"browser", ri.UA.Browser,
		"device", ri.UA.Device,
		"bot", ri.UA.IsBot,
	}
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is an optional MaxMind handle, safe for concurrent reads.
var geoReader atomic.Pointer[geoip2.Reader]

// InitGeo opens a GeoLite2 Country or City database.  Lookups stay empty
// until it succeeds; a failure is returned, not fatal.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	if old := geoReader.Swap(r); old != nil {
		old.Close()
	}
	return nil
}

// CloseGeo releases the reader opened by InitGeo, if any.
func CloseGeo() {
	if r := geoReader.Swap(nil); r != nil {
		r.Close()
	}
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{}

// FromContext returns the pointer stored by Enrich, or nil.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// WithInfo returns ctx carrying ri.
func WithInfo(ctx context.Context, ri *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, ri)
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(header string) UA {
	u := uasurfer.Parse(header)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	return UA{
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version: trimVersion(u.Browser.Version),
		OS:      osName,
		Device:  deviceString(u.DeviceType),
		IsBot:   u.IsBot(),
	}
}

// trimVersion builds "major.minor.patch" and removes trailing ".0" parts.
func trimVersion(v uasurfer.Version) string {
	out := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	for strings.HasSuffix(out, ".0") {
		out = strings.TrimSuffix(out, ".0")
	}
	return out
}

func deviceString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

// lookupGeo returns best-effort Geo data.
func lookupGeo(ip net.IP) Geo {
	r := geoReader.Load()
	if r == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := r.Country(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{IP: ip, CountryISO: rec.Country.IsoCode}
}
