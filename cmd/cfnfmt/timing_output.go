package main

import (
	"io"

	"cfnfmt/internal/driver"
	"cfnfmt/internal/observ"
)

// printTimings sums the stage timings of all files and prints one table.
func printTimings(out io.Writer, results []driver.FormatResult) {
	if out == nil {
		return
	}
	reports := make([]observ.Report, 0, len(results))
	for i := range results {
		reports = append(reports, results[i].Timings)
	}
	merged := observ.Merge(reports...)
	if len(merged.Phases) == 0 {
		return
	}
	if _, err := io.WriteString(out, merged.Summary()); err != nil {
		panic(err)
	}
}
