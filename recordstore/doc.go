// Package recordstore provides a simple record store backed by a single
// JSON file.
//
// Records are appended with monotonically increasing integer ids and a
// UTC creation timestamp. The whole file is the unit of persistence:
// every mutation rewrites the complete JSON array and refreshes an
// in-memory cache of all records.
//
// # Basic Usage
//
//	s := &recordstore.Store{
//	    Path: "./data/notes.json",
//	}
//	err := recordstore.OpenStore(s)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s.WriteRecord(map[string]any{"text": "hello"})
//	for _, rec := range s.Records() {
//	    // ...
//	}
//
// # Error Handling
//
// Only OpenStore returns an error (invalid path or extension). All other
// operations are fail-soft: failures are logged and converted to false,
// nil or an empty slice. The most recent failure is available via
// LastError().
//
// # Concurrency
//
// A store instance assumes a single logical owner. The in-memory cache
// is guarded by a mutex but whole operations are not serialized: two
// concurrent mutations (or two processes sharing one file) can clobber
// each other's writes.
package recordstore
