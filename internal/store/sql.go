// internal/store/sql.go
//
// SQLStore keeps one row per record:
//
//	patient_intake (seq PK AUTO_INCREMENT, id UNIQUE, submitted_at, data JSON)
//
// `data` holds the Intake exactly as it would appear on the wire, so the
// file and SQL back-ends return byte-for-byte equivalent records.  `seq`
// preserves insertion order for List.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/intake/internal/database"
	"github.com/yanizio/intake/internal/patient"
)

// Schema is the DDL for the patient_intake table.
const Schema = `CREATE TABLE IF NOT EXISTS patient_intake (
    seq          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
    id           VARCHAR(64)     NOT NULL UNIQUE,
    submitted_at DATETIME(3)     NOT NULL,
    data         JSON            NOT NULL
)`

const (
	insertSQL = `INSERT INTO patient_intake (id, submitted_at, data) VALUES (?, ?, ?)`
	listSQL   = `SELECT id, submitted_at, data FROM patient_intake ORDER BY seq`
)

// SQLStore is a Store backed by MySQL.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps an open pool.  The caller owns db.
func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db} }

// OpenDB opens the pool through the shared database helper.
func OpenDB(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := database.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open mysql: %w", err)
	}
	return db, nil
}

// Append inserts rec.
func (s *SQLStore) Append(ctx context.Context, rec patient.Record) error {
	data, err := json.Marshal(rec.Intake)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, insertSQL, rec.ID, rec.SubmittedAt.UTC(), data); err != nil {
		return fmt.Errorf("store: insert %s: %w", rec.ID, err)
	}
	return nil
}

type row struct {
	ID          string    `db:"id"`
	SubmittedAt time.Time `db:"submitted_at"`
	Data        []byte    `db:"data"`
}

// List returns every record ordered by insertion.
func (s *SQLStore) List(ctx context.Context) ([]patient.Record, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, listSQL); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}

	out := make([]patient.Record, 0, len(rows))
	for _, r := range rows {
		rec := patient.Record{ID: r.ID, SubmittedAt: r.SubmittedAt.UTC()}
		if err := json.Unmarshal(r.Data, &rec.Intake); err != nil {
			return nil, fmt.Errorf("%w: row %s: %v", ErrCorrupt, r.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
