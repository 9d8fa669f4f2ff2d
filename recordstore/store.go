package recordstore

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kjk/jsonstore/fsys"
	"github.com/kjk/jsonstore/log"

	"github.com/tidwall/pretty"
)

// Record is one stored entry
type Record struct {
	// unique, >= 1, assigned as max(existing ids) + 1
	ID int64 `json:"id"`
	// creation time, ISO-8601 UTC with millisecond precision
	// e.g. "2024-01-01T00:00:00.000Z"
	Created string `json:"created"`
	// opaque payload, any JSON value including null
	Data json.RawMessage `json:"data"`
}

// CreatedFormat is the time.Format layout of Record.Created
const CreatedFormat = "2006-01-02T15:04:05.000Z"

type Store struct {
	// Path of the store file, extension must be ".json"
	Path string
	// FS is the filesystem used for all I/O, defaults to fsys.OS
	FS fsys.FS

	records  []Record // in-memory cache of all records
	hasCache bool
	lastErr  error
	mu       sync.Mutex
}

// OpenStore validates s.Path and makes sure the store file exists.
// A missing directory is created, a missing file is created with an
// empty array. Bootstrap failures are logged but not returned: the
// only errors are an empty path or a non-.json extension.
func OpenStore(s *Store) error {
	if s.Path == "" {
		return fmt.Errorf("store path is not set")
	}
	ext := strings.ToLower(filepath.Ext(s.Path))
	if ext != ".json" {
		return fmt.Errorf("invalid store file extension '%s', must be '.json'", filepath.Ext(s.Path))
	}
	if s.FS == nil {
		s.FS = fsys.OS{}
	}

	dir := filepath.Dir(s.Path)
	if !s.FS.Exists(dir) {
		err := s.FS.MkdirAll(dir)
		log.IfErrf(err, "recordstore: failed to create directory '%s': %v\n", dir, err)
	}
	if !s.FS.Exists(s.Path) {
		err := s.FS.WriteFile(s.Path, []byte("[]\n"))
		if !log.IfErrf(err, "recordstore: failed to create store file '%s': %v\n", s.Path, err) {
			log.Verbosef("recordstore: created empty store file '%s'\n", s.Path)
		}
	}
	return nil
}

// LastError returns the most recent soft failure, nil if none.
// Operations never return errors directly (other than OpenStore),
// this is a side channel for diagnostics.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearCache discards the in-memory cache so the next read
// hits the file
func (s *Store) ClearCache() {
	s.mu.Lock()
	s.records = nil
	s.hasCache = false
	s.mu.Unlock()
	log.Verbosef("recordstore: cache cleared\n")
}

// setCache makes recs the authoritative in-memory copy.
// Called on every successful read or mutation.
func (s *Store) setCache(recs []Record) {
	s.mu.Lock()
	s.records = recs
	s.hasCache = true
	s.lastErr = nil
	s.mu.Unlock()
}

// fail records err and invalidates the cache so the next read
// re-derives truth from disk. Called on every failure exit of a
// mutating operation.
func (s *Store) fail(err error) {
	s.mu.Lock()
	s.records = nil
	s.hasCache = false
	s.lastErr = err
	s.mu.Unlock()
	log.IfErrf(err)
}

// softErr records err without touching the cache. Used for read-side
// failures where the cache (if any) is still valid.
func (s *Store) softErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	log.IfErrf(err)
}

// Records returns all records in stored (append) order.
// Served from the cache when possible, otherwise the whole file is
// read and parsed. On any I/O or parse failure returns an empty
// slice, never an error.
func (s *Store) Records() []Record {
	s.mu.Lock()
	if s.hasCache {
		res := append([]Record{}, s.records...)
		s.mu.Unlock()
		return res
	}
	s.mu.Unlock()

	d, err := s.FS.ReadFile(s.Path)
	if err != nil {
		s.softErr(fmt.Errorf("recordstore: failed to read '%s': %w", s.Path, err))
		return []Record{}
	}
	var recs []Record
	if err = json.Unmarshal(d, &recs); err != nil {
		s.softErr(fmt.Errorf("recordstore: failed to parse '%s': %w", s.Path, err))
		return []Record{}
	}
	if recs == nil {
		recs = []Record{}
	}
	s.setCache(recs)
	return append([]Record{}, recs...)
}

// nextID returns max(ids) + 1, 1 when recs is empty.
// Deleted high ids are not reused unless the max itself was deleted.
func nextID(recs []Record) int64 {
	var max int64
	for _, rec := range recs {
		if rec.ID > max {
			max = rec.ID
		}
	}
	return max + 1
}

// commit serializes recs and overwrites the store file in one write.
// On success the cache is set to recs, on failure it's invalidated.
func (s *Store) commit(recs []Record) bool {
	if recs == nil {
		recs = []Record{}
	}
	d, err := json.Marshal(recs)
	if err != nil {
		s.fail(fmt.Errorf("recordstore: failed to serialize records: %w", err))
		return false
	}
	d = pretty.Pretty(d)
	if err = s.FS.WriteFile(s.Path, d); err != nil {
		s.fail(fmt.Errorf("recordstore: failed to write '%s': %w", s.Path, err))
		return false
	}
	s.setCache(recs)
	return true
}

// WriteRecord appends a new record with the given payload.
// data can be any JSON-serializable value, including nil.
// Returns false if serialization or the file write failed.
func (s *Store) WriteRecord(data any) bool {
	d, err := json.Marshal(data)
	if err != nil {
		s.fail(fmt.Errorf("recordstore: failed to serialize payload: %w", err))
		return false
	}
	recs := s.Records()
	rec := Record{
		ID:      nextID(recs),
		Created: time.Now().UTC().Format(CreatedFormat),
		Data:    d,
	}
	if !s.commit(append(recs, rec)) {
		return false
	}
	log.Verbosef("recordstore: wrote record %d to '%s'\n", rec.ID, s.Path)
	log.Event("record_write", "id", rec.ID)
	return true
}

// DeleteFirst removes the first record in stored order.
// Returns true also when the store was already empty: it means
// "completed without error", not "a record was removed".
func (s *Store) DeleteFirst() bool {
	recs := s.Records()
	if len(recs) > 0 {
		recs = recs[1:]
	}
	return s.commit(recs)
}

// DeleteLast removes the last record in stored order.
// Like DeleteFirst, an empty store is a no-op success.
func (s *Store) DeleteLast() bool {
	recs := s.Records()
	if len(recs) > 0 {
		recs = recs[:len(recs)-1]
	}
	return s.commit(recs)
}

// DeleteByID removes the record with the given id.
// Returns false if no such record exists.
func (s *Store) DeleteByID(id int64) bool {
	recs := s.Records()
	idx := -1
	for i, rec := range recs {
		if rec.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		log.Verbosef("recordstore: record %d not found in '%s'\n", id, s.Path)
		return false
	}
	recs = append(recs[:idx], recs[idx+1:]...)
	if !s.commit(recs) {
		return false
	}
	log.Event("record_delete", "id", id)
	return true
}

// DeleteAll resets the store file to an empty array. It doesn't load
// the current records first, the empty array is written unconditionally.
func (s *Store) DeleteAll() bool {
	return s.commit([]Record{})
}
