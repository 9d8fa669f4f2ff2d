package recordstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Count returns the number of records in the store
func (s *Store) Count() int {
	return len(s.Records())
}

// First returns the first record in stored order, nil when empty
func (s *Store) First() *Record {
	recs := s.Records()
	if len(recs) == 0 {
		return nil
	}
	return &recs[0]
}

// Last returns the last record in stored order, nil when empty
func (s *Store) Last() *Record {
	recs := s.Records()
	if len(recs) == 0 {
		return nil
	}
	return &recs[len(recs)-1]
}

// FindByID returns the record with the given id, nil if absent.
// Linear scan, the store has no index.
func (s *Store) FindByID(id int64) *Record {
	recs := s.Records()
	for i := range recs {
		if recs[i].ID == id {
			return &recs[i]
		}
	}
	return nil
}

// FindByDate returns all records whose Created timestamp starts with
// prefix. Because Created is a zero-padded ISO-8601 string, a bare
// year ("2024"), year-month ("2024-01") or any longer prefix acts as
// a hierarchical date filter.
func (s *Store) FindByDate(prefix string) []Record {
	var res []Record
	for _, rec := range s.Records() {
		if strings.HasPrefix(rec.Created, prefix) {
			res = append(res, rec)
		}
	}
	return res
}

// FindByData returns all records whose payload, re-serialized to a
// compact JSON string, contains keyword as a substring. This is a
// coarse whole-payload search: keyword can match key names or JSON
// punctuation, which is accepted behavior.
func (s *Store) FindByData(keyword string) []Record {
	var res []Record
	var buf bytes.Buffer
	for _, rec := range s.Records() {
		buf.Reset()
		if err := json.Compact(&buf, rec.Data); err != nil {
			continue
		}
		if strings.Contains(buf.String(), keyword) {
			res = append(res, rec)
		}
	}
	return res
}

// layouts accepted for FindByDateRange bounds, longest first
var boundLayouts = []string{
	CreatedFormat,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

func parseBound(s string) (time.Time, error) {
	for _, layout := range boundLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date '%s'", s)
}

// FindByDateRange returns all records whose Created timestamp falls
// within [start, end] inclusive. Bounds accept full ISO-8601 as well
// as truncated forms like "2024-01-02" or "2024". A malformed bound
// is an error: logged, recorded in LastError and the result is empty.
func (s *Store) FindByDateRange(start, end string) []Record {
	tStart, err := parseBound(start)
	if err != nil {
		s.softErr(fmt.Errorf("recordstore: invalid range start: %w", err))
		return nil
	}
	tEnd, err := parseBound(end)
	if err != nil {
		s.softErr(fmt.Errorf("recordstore: invalid range end: %w", err))
		return nil
	}

	var res []Record
	for _, rec := range s.Records() {
		t, err := time.Parse(CreatedFormat, rec.Created)
		if err != nil {
			// malformed record timestamp, skip it
			continue
		}
		if !t.Before(tStart) && !t.After(tEnd) {
			res = append(res, rec)
		}
	}
	return res
}
