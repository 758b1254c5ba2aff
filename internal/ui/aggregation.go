package ui

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pacwrap/pacwrap/agentlaunch"
)

// AggregationInteraction is the Transaction Aggregator's callback
// surface into the CLI, grounded on guard.PackageManagerGuardInteraction's
// SetStatus/ClearStatus/ShowWarning shape, repurposed for per-container
// sync status instead of malware-scan status.
type AggregationInteraction struct {
	SetStatus   func(status string)
	ClearStatus func()
	ShowWarning func(message string)
}

// DefaultAggregationInteraction renders status via the package's own
// spinner/color helpers, matching the teacher's default (non-silent)
// CLI wiring.
func DefaultAggregationInteraction() AggregationInteraction {
	return AggregationInteraction{
		SetStatus:   func(status string) { StartSpinnerWithColor(status, Colors.Cyan) },
		ClearStatus: StopSpinner,
		ShowWarning: func(message string) { fmt.Println(Colors.Yellow("::WARNING:: %s", message)) },
	}
}

// RenderSummary prints the package list and installed/download size
// totals for a pending transaction, grounded on commit.rs's summary()
// function, re-expressed as a go-pretty table instead of hand-rolled
// terminal-width line wrapping.
func RenderSummary(action string, s agentlaunch.Summary) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{fmt.Sprintf("Packages (%d)", len(s.Packages))})
	for _, pkg := range s.Packages {
		t.AppendRow(table.Row{pkg})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%s: %s", totalSizeLabel(action), humanBytes(s.DownloadBytes))})
	fmt.Println(t.Render())

	if s.DownloadFiles > 0 {
		fmt.Println(Colors.Dim("%d file(s) to download", s.DownloadFiles))
	}
}

func totalSizeLabel(action string) string {
	if action == "removal" {
		return "Total Removed Size"
	}
	return "Total Installed Size"
}

// humanBytes formats a byte count using SI units, grounded on
// original_source's simplebyteunit::ToByteUnit — no SI byte-formatting
// library appears anywhere in _examples, so this is hand-rolled.
func humanBytes(n uint64) string {
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	units := "kMGTPE"
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), units[exp])
}
