package stats

import (
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffHistory renders a human-readable unified diff between two
// Complex.History() snapshots, for the debug dump path: a caller can diff
// the history ring before and after a mutation to see which entries it
// appended (a hybridize/dehybridize round trip inside one complex appends
// the two matching edge entries; one that merges and splits complexes
// also appends add_strand/remove_strand entries).
func DiffHistory(before, after []string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(strings.Join(before, "\n"), strings.Join(after, "\n"), false)
	return dmp.DiffPrettyText(diffs)
}

// DiffCSVDumps diffs two flushed CSV files line by line, returning a
// unified diff (empty when the files are identical).
func DiffCSVDumps(pathA, pathB string) (string, error) {
	a, err := os.ReadFile(pathA)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: pathA,
		ToFile:   pathB,
		Context:  3,
	})
}
