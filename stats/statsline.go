package stats

import (
	"fmt"

	"github.com/mitchellh/go-wordwrap"
)

// StatslineWidth is the column width print_statsline_when_saving wraps
// to, matching the teacher's console-output convention.
const StatslineWidth uint = 100

// PrintStatslineWhenSaving formats a one-line flush summary and wraps it
// to StatslineWidth columns, for the print_statsline_when_saving option.
func PrintStatslineWhenSaving(stream string, flushed int, snap Snapshot) string {
	line := fmt.Sprintf(
		"flushed %d entries on stream %q at T=%.2fK: N_dom_hyb=%d (f=%.4f) N_strand_hyb=%d (f=%.4f)",
		flushed, stream, snap.T, snap.NDomHyb, snap.FDomHyb, snap.NStrandHyb, snap.FStrandHyb,
	)
	return wordwrap.WrapString(line, StatslineWidth)
}
