// internal/store/store.go
//
// Patient record storage.
//
// Context
// -------
// The patients component appends one Record per accepted intake and lists
// them back in insertion order.  Two back-ends satisfy the same interface:
//
//   • FileStore – the flat `{"patients": [...]}` JSON document (default).
//   • SQLStore  – one row per record in MySQL, via sqlx.
//
// cmd/web picks the back-end from the `store` config section.
//
// Notes
// -----
//   • Stored records are never rewritten or migrated.  The document shape is
//     whatever the wire payload was at append time.
package store

import (
	"context"
	"errors"

	"github.com/yanizio/intake/internal/patient"
)

// ErrCorrupt means the backing document or row could not be decoded.
var ErrCorrupt = errors.New("store: corrupt data")

// Store is the persistence contract used by the patients component.
type Store interface {
	Append(ctx context.Context, rec patient.Record) error
	List(ctx context.Context) ([]patient.Record, error)
}

// Driver names used in the `store.driver` config key.
const (
	DriverFile  = "file"
	DriverMySQL = "mysql"
)
