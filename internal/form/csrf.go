// internal/form/csrf.go
//
// Intake – Forms subsystem: stateless CSRF token utilities.
//
// Context
//   The intake page embeds a hidden `csrf_token` input generated at render
//   time, and every POST (submit, blur, reset) must echo it.  Tokens are
//   *stateless* and bound to the browser's session id:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(key, nonce+unixMicro+sid) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  HMAC – keyed with intake.csrf_key.  Binding the session id means a
//      token lifted from one browser is useless in another.
//
//   Verification checks the signature and that the timestamp is within
//   MaxAge.  No server-side token store is required.
//
// Workflow
//   •  NewCSRF(key)        → decode the configured key, or generate one.
//   •  c.Token(sid)        → token string for the renderer.
//   •  c.Verify(tok, sid)  → constant-time verify; false on any failure.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	nonceBytes = 16
	tokenBytes = nonceBytes + 8 + sha256.Size // nonce + ts + sig

	// MaxAge is how long a rendered form stays submittable.
	MaxAge = 2 * time.Hour
	// MinKeyBytes is the shortest accepted configured key.
	MinKeyBytes = 32
)

// CSRF issues and verifies tokens with one key.  Safe for concurrent use.
type CSRF struct {
	key []byte
	now func() time.Time
}

// NewCSRF decodes a base64url (unpadded) key of at least MinKeyBytes.  An
// empty key generates a random one, so tokens stop verifying on restart;
// set intake.csrf_key in production.
func NewCSRF(key string) (*CSRF, error) {
	if key == "" {
		b := make([]byte, MinKeyBytes)
		if _, err := rand.Read(b); err != nil {
			return nil, err
		}
		zap.S().Warnw("intake.csrf_key not set, using an ephemeral key")
		return &CSRF{key: b, now: time.Now}, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("csrf key: %w", err)
	}
	if len(b) < MinKeyBytes {
		return nil, fmt.Errorf("csrf key: %d bytes, want at least %d", len(b), MinKeyBytes)
	}
	return &CSRF{key: b, now: time.Now}, nil
}

// Token creates a new token for session sid.  Call once per form render.
func (c *CSRF) Token(sid string) (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(c.now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, c.sign(nonce, ts, sid)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify reports whether tok was issued for sid and is still fresh.
func (c *CSRF) Verify(tok, sid string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce := raw[:nonceBytes]
	tsBytes := raw[nonceBytes : nonceBytes+8]
	sig := raw[nonceBytes+8:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	now := c.now()
	if now.Sub(issued) > MaxAge || issued.Sub(now) > time.Minute {
		// Older than MaxAge, or from the future beyond clock skew.
		return false
	}

	return hmac.Equal(sig, c.sign(nonce, tsBytes, sid))
}

func (c *CSRF) sign(nonce, ts []byte, sid string) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(nonce)
	mac.Write(ts)
	mac.Write([]byte(sid))
	return mac.Sum(nil)
}
