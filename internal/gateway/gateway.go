// internal/gateway/gateway.go
//
// Submission gateway: the HTTP client for the patient persistence service.
//
// Context
// -------
// Submit posts one Intake to `<base>/patients` and sorts the exchange into
// three outcomes:
//
//   • transport failure  – dial, timeout, unreadable or malformed body
//                          → *TransportError, generic user message
//   • explicit rejection – non-2xx, or 2xx with success=false
//                          → *RejectedError, the service's own message
//   • success            – the created Record (zero if the service omits it
//                          or echoes one this client cannot decode)
//
// Exactly one attempt is made per call.  Retry policy, if any, belongs to
// the caller.  Both error types implement UserMessage() so the form session
// can surface them without importing this package.
//
// Notes
// -----
//   • The default client comes from go-cleanhttp (pooled transport, no
//     shared DefaultTransport state).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"

	"github.com/yanizio/intake/internal/patient"
)

// User-facing messages.
const (
	MsgTransport      = "Unable to reach the patient service.  Please try again."
	MsgRejectFallback = "Failed to submit patient data"
)

// maxBody caps how much of a response we are willing to read.
const maxBody = 4 << 20

// envelope is patient.CreateResponse with the record left raw, so a record
// this client cannot read does not hide the outcome fields.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Patient json.RawMessage `json:"patient"`
}

//
// SECTION 1.  Errors
//

// TransportError means the exchange could not be completed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return "gateway " + e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage returns the generic transport message.
func (e *TransportError) UserMessage() string { return MsgTransport }

// RejectedError means the service answered with an explicit failure.
type RejectedError struct {
	Status  int
	Message string
	Detail  string
}

func (e *RejectedError) Error() string {
	s := fmt.Sprintf("gateway: rejected (%d): %s", e.Status, e.UserMessage())
	if e.Detail != "" {
		s += " (" + e.Detail + ")"
	}
	return s
}

// UserMessage returns the service's message, or a fallback when empty.
func (e *RejectedError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return MsgRejectFallback
}

//
// SECTION 2.  Client
//

// Client talks to one persistence service.  Safe for concurrent use.
type Client struct {
	base string
	http *http.Client
	log  *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each exchange.  Zero means no client-side limit.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.Timeout = d } }

// WithLogger sets the logger.  The default is zap.S().
func WithLogger(l *zap.SugaredLogger) Option { return func(c *Client) { c.log = l } }

// New returns a Client for baseURL, e.g. "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: cleanhttp.DefaultPooledClient(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = zap.S()
	}
	return c
}

// Submit posts in and returns the created record.
func (c *Client) Submit(ctx context.Context, in patient.Intake) (patient.Record, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return patient.Record{}, &TransportError{Op: "encode", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/patients", bytes.NewReader(body))
	if err != nil {
		return patient.Record{}, &TransportError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, raw, err := c.do(req)
	if err != nil {
		return patient.Record{}, err
	}

	var resp envelope
	decodeErr := json.Unmarshal(raw, &resp)

	if status < 200 || status > 299 {
		// The service's message wins when the body is readable; otherwise
		// the status line is all we have.
		rej := &RejectedError{Status: status, Message: resp.Message, Detail: resp.Error}
		if decodeErr != nil {
			rej.Detail = http.StatusText(status)
		}
		c.log.Warnw("patient service rejected intake", "status", status, "message", rej.UserMessage())
		return patient.Record{}, rej
	}
	if decodeErr != nil {
		return patient.Record{}, &TransportError{Op: "decode", Err: decodeErr}
	}
	if !resp.Success {
		return patient.Record{}, &RejectedError{Status: status, Message: resp.Message, Detail: resp.Error}
	}

	// The record is already stored at this point.  An unreadable echo must
	// not turn into a failure the user would retry.
	if len(resp.Patient) == 0 || string(resp.Patient) == "null" {
		return patient.Record{}, nil
	}
	var rec patient.Record
	if err := json.Unmarshal(resp.Patient, &rec); err != nil {
		c.log.Warnw("patient service echoed an unreadable record", "status", status, "err", err)
		return patient.Record{}, nil
	}
	return rec, nil
}

// List fetches every stored record in insertion order.
func (c *Client) List(ctx context.Context) ([]patient.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/patients", nil)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	status, raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		var resp envelope
		_ = json.Unmarshal(raw, &resp)
		return nil, &RejectedError{Status: status, Message: resp.Message, Detail: resp.Error}
	}

	var list patient.ListResponse
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &TransportError{Op: "decode", Err: err}
	}
	return list.Patients, nil
}

//
// SECTION 3.  Helpers
//

// do performs req and reads the bounded body.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	res, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &TransportError{Op: req.Method, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return 0, nil, &TransportError{Op: "read", Err: err}
	}
	return res.StatusCode, raw, nil
}
