// internal/store/file.go
//
// FileStore keeps every record in one pretty-printed JSON document:
//
//	{
//	  "patients": [ {...}, {...} ]
//	}
//
// Workflow
// --------
//  1. OpenFile creates the parent directory and an empty document when the
//     file is missing.
//  2. Append reads the whole document, appends, and rewrites it through a
//     temp file + rename so readers never see a half-written file.
//  3. List reads the document.  Concurrent List calls collapse into a single
//     read through singleflight, keyed on a write generation, so a List
//     that starts after an Append returns never shares an older read.
//
// Appends are serialized by a mutex; the store is safe for concurrent use
// within one process.  Two processes sharing one file are not supported.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/intake/internal/patient"
)

type document struct {
	Patients []patient.Record `json:"patients"`
}

// FileStore is a Store backed by a JSON file.
type FileStore struct {
	path string

	mu    sync.Mutex
	gen   atomic.Uint64 // bumped after every successful write
	reads singleflight.Group
}

// OpenFile returns a FileStore for path, creating an empty document if
// none exists.  An existing file is checked for readability only at the
// first List or Append.
func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("store: empty file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("store: mkdir: %w", err)
	}

	s := &FileStore{path: path}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("store: stat %s: %w", path, err)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Append adds rec to the end of the document.
func (s *FileStore) Append(ctx context.Context, rec patient.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return err
	}
	if err := s.write(append(recs, rec)); err != nil {
		return err
	}
	s.gen.Add(1)
	return nil
}

// List returns every record in insertion order.  The slice is the caller's
// to keep.
func (s *FileStore) List(ctx context.Context) ([]patient.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, _ := s.reads.Do(s.flightKey(), func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.read()
	})
	if err != nil {
		return nil, err
	}
	// Shared callers get the same backing array; hand out copies.
	return slices.Clone(v.([]patient.Record)), nil
}

// flightKey names the current generation's shared read.
func (s *FileStore) flightKey() string { return "list-" + strconv.FormatUint(s.gen.Load(), 10) }

//
// helpers (caller holds s.mu)
//

func (s *FileStore) read() ([]patient.Record, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []patient.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if doc.Patients == nil {
		doc.Patients = []patient.Record{}
	}
	return doc.Patients, nil
}

func (s *FileStore) write(recs []patient.Record) error {
	if recs == nil {
		recs = []patient.Record{}
	}
	raw, err := json.MarshalIndent(document{Patients: recs}, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".patients-*.json")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}
