// Package stats implements the statistics pipeline: bounded in-memory
// snapshot caches per named stream, flushed to append-only CSV (or
// optionally SQLite) output, plus debug helpers for diffing history rings
// and flushed CSV dumps.
package stats

import (
	"fmt"
)

// flushThreshold is the entry count at which a stream's cache is flushed
// automatically, independent of any temperature-boundary flush.
const flushThreshold = 10000

// Snapshot is one recorded tuple: (T, N_dom_hyb, f_dom_hyb, N_strand_hyb,
// f_strand_hyb).
type Snapshot struct {
	T          float64
	NDomHyb    int
	FDomHyb    float64
	NStrandHyb int
	FStrandHyb float64
}

// FlushError wraps an I/O failure encountered while flushing a stream,
// preserving the unflushed cache so the caller can retry.
type FlushError struct {
	Stream    string
	Unflushed []Snapshot
	Err       error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("stats: flushing stream %q: %v", e.Stream, e.Err)
}

func (e *FlushError) Unwrap() error { return e.Err }

func (s Snapshot) csvLine() string {
	return fmt.Sprintf("%.6f,%d,%.6f,%d,%.6f\n", s.T, s.NDomHyb, s.FDomHyb, s.NStrandHyb, s.FStrandHyb)
}
