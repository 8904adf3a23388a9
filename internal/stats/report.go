package stats

import (
	"fmt"
	"io"
	"strings"
)

// ReportSeparator closes every report.
var ReportSeparator = strings.Repeat("-", 50)

// Report writes the human-readable accuracy report for the current counters.
// Rendering does not modify the counters.
func (r *Recorder) Report(w io.Writer, title string) error {
	return WriteReport(w, title, r.Snapshot())
}

// WriteReport renders a snapshot. Kinds without attempts report "No attempts yet".
func WriteReport(w io.Writer, title string, snapshot []KindStats) error {
	var b strings.Builder

	if title != "" {
		fmt.Fprintf(&b, "\n%s\n", title)
	}
	for _, ks := range snapshot {
		if ks.Attempts > 0 {
			fmt.Fprintf(&b, "  %-12s  Acc: %5.1f%% (%d/%d)   Avg resp: %.2f ms\n",
				ks.Kind, ks.Accuracy(), ks.Successes, ks.Attempts, ks.AvgResponseMs())
		} else {
			fmt.Fprintf(&b, "  %-12s  No attempts yet\n", ks.Kind)
		}
	}
	b.WriteString(ReportSeparator)
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
