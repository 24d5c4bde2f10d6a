package stats

import (
	"fmt"
	"os"
	"sync"
)

// CSVSink is the default stats sink: each stream accumulates snapshots in a
// bounded in-memory cache and appends them, one CSV line per snapshot, to
// a file named "<base>_<stream>.csv" whenever the cache exceeds
// flushThreshold entries, or whenever Flush is called explicitly (the
// annealer calls Flush at every temperature boundary).
type CSVSink struct {
	base string

	mu    sync.Mutex
	cache map[string][]Snapshot
}

// NewCSVSink returns a CSVSink that writes to files named "<base>_<stream>.csv".
func NewCSVSink(base string) *CSVSink {
	return &CSVSink{base: base, cache: make(map[string][]Snapshot)}
}

func (c *CSVSink) filename(stream string) string {
	return fmt.Sprintf("%s_%s.csv", c.base, stream)
}

// Record appends one snapshot to stream's in-memory cache, flushing
// automatically if the cache has grown past flushThreshold.
func (c *CSVSink) Record(stream string, t float64, nDomHyb int, fDomHyb float64, nStrandHyb int, fStrandHyb float64) error {
	c.mu.Lock()
	c.cache[stream] = append(c.cache[stream], Snapshot{t, nDomHyb, fDomHyb, nStrandHyb, fStrandHyb})
	shouldFlush := len(c.cache[stream]) > flushThreshold
	c.mu.Unlock()

	if shouldFlush {
		return c.flushStream(stream)
	}
	return nil
}

// Flush appends and clears every stream's cache, even empty ones (which
// are a no-op per spec.md section 8's round-trip property).
func (c *CSVSink) Flush() error {
	c.mu.Lock()
	streams := make([]string, 0, len(c.cache))
	for stream := range c.cache {
		streams = append(streams, stream)
	}
	c.mu.Unlock()

	for _, stream := range streams {
		if err := c.flushStream(stream); err != nil {
			return err
		}
	}
	return nil
}

func (c *CSVSink) flushStream(stream string) error {
	c.mu.Lock()
	batch := c.cache[stream]
	c.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	f, err := os.OpenFile(c.filename(stream), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &FlushError{Stream: stream, Unflushed: batch, Err: err}
	}
	defer f.Close()

	for _, snap := range batch {
		if _, err := f.WriteString(snap.csvLine()); err != nil {
			return &FlushError{Stream: stream, Unflushed: batch, Err: err}
		}
	}

	c.mu.Lock()
	// only drop the entries we actually flushed; Record may have appended
	// more to the cache concurrently with this flush.
	c.cache[stream] = c.cache[stream][len(batch):]
	c.mu.Unlock()
	return nil
}
