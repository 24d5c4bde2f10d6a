package stats

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink is the `sqlite_dsn`-selected alternative to CSVSink: the
// same bounded per-stream cache, but flushed as a single transaction
// inserting into a `snapshots` table instead of appending CSV lines.
type SQLiteSink struct {
	db *sql.DB

	mu    sync.Mutex
	cache map[string][]Snapshot
}

// NewSQLiteSink opens (creating if needed) the sqlite database at dsn and
// ensures the snapshots table exists.
func NewSQLiteSink(dsn string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("stats: opening sqlite database %q: %w", dsn, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS snapshots (
		stream_name TEXT NOT NULL,
		t REAL NOT NULL,
		n_dom_hyb INTEGER NOT NULL,
		f_dom_hyb REAL NOT NULL,
		n_strand_hyb INTEGER NOT NULL,
		f_strand_hyb REAL NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("stats: creating snapshots table: %w", err)
	}
	return &SQLiteSink{db: db, cache: make(map[string][]Snapshot)}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteSink) Close() error { return s.db.Close() }

// Record appends one snapshot to stream's in-memory cache, flushing
// automatically if the cache has grown past flushThreshold.
func (s *SQLiteSink) Record(stream string, t float64, nDomHyb int, fDomHyb float64, nStrandHyb int, fStrandHyb float64) error {
	s.mu.Lock()
	s.cache[stream] = append(s.cache[stream], Snapshot{t, nDomHyb, fDomHyb, nStrandHyb, fStrandHyb})
	shouldFlush := len(s.cache[stream]) > flushThreshold
	s.mu.Unlock()

	if shouldFlush {
		return s.flushStream(stream)
	}
	return nil
}

// Flush inserts and clears every stream's cache in a single transaction
// per stream. Flushing an empty cache is a no-op.
func (s *SQLiteSink) Flush() error {
	s.mu.Lock()
	streams := make([]string, 0, len(s.cache))
	for stream := range s.cache {
		streams = append(streams, stream)
	}
	s.mu.Unlock()

	for _, stream := range streams {
		if err := s.flushStream(stream); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteSink) flushStream(stream string) error {
	s.mu.Lock()
	batch := s.cache[stream]
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &FlushError{Stream: stream, Unflushed: batch, Err: err}
	}
	stmt, err := tx.Prepare(`INSERT INTO snapshots (stream_name, t, n_dom_hyb, f_dom_hyb, n_strand_hyb, f_strand_hyb) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return &FlushError{Stream: stream, Unflushed: batch, Err: err}
	}
	defer stmt.Close()

	for _, snap := range batch {
		if _, err := stmt.Exec(stream, snap.T, snap.NDomHyb, snap.FDomHyb, snap.NStrandHyb, snap.FStrandHyb); err != nil {
			tx.Rollback()
			return &FlushError{Stream: stream, Unflushed: batch, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &FlushError{Stream: stream, Unflushed: batch, Err: err}
	}

	s.mu.Lock()
	s.cache[stream] = s.cache[stream][len(batch):]
	s.mu.Unlock()
	return nil
}
