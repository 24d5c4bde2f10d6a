package stats_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rscholer/domkin/stats"
)

func TestCSVSinkFlushWritesExpectedLineCount(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run")
	sink := stats.NewCSVSink(base)

	for i := 0; i < 10001; i++ {
		require.NoError(t, sink.Record("timesampling", 310, i, float64(i)/10001, i, float64(i)/10001))
	}
	// the 10001st Record call already triggered one automatic flush; a
	// second explicit Flush should be a no-op on an empty cache.
	require.NoError(t, sink.Flush())

	content, err := os.ReadFile(base + "_timesampling.csv")
	require.NoError(t, err)
	lines := countLines(string(content))
	assert.Equal(t, 10001, lines)
}

func TestCSVSinkFlushEmptyCacheIsNoOp(t *testing.T) {
	base := filepath.Join(t.TempDir(), "run")
	sink := stats.NewCSVSink(base)
	require.NoError(t, sink.Flush())
	_, err := os.Stat(base + "_changesampling.csv")
	assert.True(t, os.IsNotExist(err))
}

func TestDiffHistoryShowsAppendedEntry(t *testing.T) {
	before := []string{"add_strand: s1", "add_strand: s2"}
	after := append(append([]string{}, before...), "add_hybridization_edge: a-b")
	diff := stats.DiffHistory(before, after)
	assert.Contains(t, diff, "add_hybridization_edge")
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
