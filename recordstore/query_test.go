package recordstore

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"

	"github.com/kjk/jsonstore/fsys"
)

// seedStore creates a store whose file already contains recs
func seedStore(t *testing.T, recs []Record) *Store {
	mem := fsys.NewMem()
	path := filepath.Join("data", "records.json")
	d, err := json.Marshal(recs)
	assert.NoError(t, err)
	assert.NoError(t, mem.WriteFile(path, d))

	s := &Store{Path: path, FS: mem}
	assert.NoError(t, OpenStore(s))
	return s
}

func rec(id int64, created string, data string) Record {
	return Record{
		ID:      id,
		Created: created,
		Data:    json.RawMessage(data),
	}
}

var queryRecords = []Record{
	rec(1, "2023-12-31T23:59:59.999Z", `{"kind":"note","text":"old year"}`),
	rec(2, "2024-01-01T00:00:00.000Z", `{"kind":"note","text":"new year"}`),
	rec(3, "2024-01-15T12:30:00.000Z", `{"kind":"task","text":"mid january"}`),
	rec(4, "2024-02-01T08:00:00.000Z", `{"kind":"note","text":"february"}`),
	rec(7, "2024-02-02T09:00:00.000Z", `"bare string payload"`),
}

func TestFirstLastEmpty(t *testing.T) {
	s, _ := newMemStore(t)
	assert.Nil(t, s.First())
	assert.Nil(t, s.Last())

	assert.True(t, s.WriteRecord("only"))
	first := s.First()
	last := s.Last()
	assert.Equal(t, first.ID, last.ID)
	assert.Equal(t, int64(1), first.ID)
}

func TestFindByID(t *testing.T) {
	s := seedStore(t, queryRecords)
	r := s.FindByID(3)
	assert.NotNil(t, r)
	assert.Equal(t, "2024-01-15T12:30:00.000Z", r.Created)
	assert.Nil(t, s.FindByID(5))
}

func TestFindByDate(t *testing.T) {
	s := seedStore(t, queryRecords)

	got := s.FindByDate("2024-01")
	assert.Equal(t, 2, len(got))
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	got = s.FindByDate("2024")
	assert.Equal(t, 4, len(got))

	got = s.FindByDate("2024-01-15")
	assert.Equal(t, 1, len(got))

	got = s.FindByDate("2025")
	assert.Equal(t, 0, len(got))
}

func TestFindByData(t *testing.T) {
	s := seedStore(t, queryRecords)

	got := s.FindByData("january")
	assert.Equal(t, 1, len(got))
	assert.Equal(t, int64(3), got[0].ID)

	// matches key names too, accepted coarse behavior
	got = s.FindByData("kind")
	assert.Equal(t, 4, len(got))

	got = s.FindByData("bare string")
	assert.Equal(t, 1, len(got))
	assert.Equal(t, int64(7), got[0].ID)

	got = s.FindByData("nope")
	assert.Equal(t, 0, len(got))
}

func TestFindByDataCompactsPayload(t *testing.T) {
	// payload written pretty-printed to disk must still match
	// its compact form
	s := seedStore(t, nil)
	assert.True(t, s.WriteRecord(map[string]any{"a": 1}))
	s.ClearCache()
	got := s.FindByData(`{"a":1}`)
	assert.Equal(t, 1, len(got))
}

func TestFindByDateRange(t *testing.T) {
	s := seedStore(t, queryRecords)

	// inclusive on both ends
	got := s.FindByDateRange("2024-01-01T00:00:00.000Z", "2024-01-15T12:30:00.000Z")
	assert.Equal(t, 2, len(got))
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	// truncated bounds parse as the start of the period
	got = s.FindByDateRange("2024-01-01", "2024-02-01T08:00:00")
	assert.Equal(t, 3, len(got))

	got = s.FindByDateRange("2023", "2025")
	assert.Equal(t, 5, len(got))

	got = s.FindByDateRange("2025", "2026")
	assert.Equal(t, 0, len(got))
}

func TestFindByDateRangeMalformed(t *testing.T) {
	s := seedStore(t, queryRecords)

	got := s.FindByDateRange("not-a-date", "2024")
	assert.Equal(t, 0, len(got))
	assert.Error(t, s.LastError())

	got = s.FindByDateRange("2024", "also bad")
	assert.Equal(t, 0, len(got))
	assert.Error(t, s.LastError())

	// the error is a declared condition, not a crash: the store
	// still works afterwards
	assert.Equal(t, 5, s.Count())
}

func TestDateRangeSkipsMalformedRecords(t *testing.T) {
	recs := append([]Record{}, queryRecords...)
	recs = append(recs, rec(8, "garbage", `"x"`))
	s := seedStore(t, recs)

	got := s.FindByDateRange("2023", "2025")
	assert.Equal(t, 5, len(got))
}
