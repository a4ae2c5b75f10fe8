// internal/store/sql_test.go
//
// Unit-tests for SQLStore using sqlmock.
//
// Run: go test ./internal/store -v

package store

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/intake/internal/patient"
)

func newMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSQLAppend(t *testing.T) {
	s, mock := newMock(t)
	rec := record("abc")
	data, _ := json.Marshal(rec.Intake)

	mock.ExpectExec(regexp.QuoteMeta(insertSQL)).
		WithArgs("abc", rec.SubmittedAt, data).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.Append(context.Background(), rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLAppendError(t *testing.T) {
	s, mock := newMock(t)
	boom := errors.New("duplicate key")
	mock.ExpectExec(regexp.QuoteMeta(insertSQL)).WillReturnError(boom)

	if err := s.Append(context.Background(), record("abc")); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestSQLList(t *testing.T) {
	s, mock := newMock(t)
	a, b := record("a"), record("b")
	b.SubmittedAt = b.SubmittedAt.Add(time.Minute)
	da, _ := json.Marshal(a.Intake)
	db, _ := json.Marshal(b.Intake)

	mock.ExpectQuery(regexp.QuoteMeta(listSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submitted_at", "data"}).
			AddRow("a", a.SubmittedAt, da).
			AddRow("b", b.SubmittedAt, db))

	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]patient.Record{a, b}, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLListCorruptRow(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(listSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submitted_at", "data"}).
			AddRow("bad", time.Now(), []byte(`{"existingConditions":["gout"]}`)))

	if _, err := s.List(context.Background()); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}
