package output

import (
	"fmt"
	"io"
	"sort"
)

// WriteCountSummary writes scan totals and the anomaly breakdown of a
// counter run.
func WriteCountSummary(w io.Writer, processed, counted int, anomalies map[string]int) {
	countRate := float64(0)
	if processed > 0 {
		countRate = float64(counted) / float64(processed) * 100
	}
	fmt.Fprintf(w, "\nCount Summary:\n")
	fmt.Fprintf(w, "  Total variants:  %d\n", processed)
	fmt.Fprintf(w, "  Counted:         %d (%.1f%%)\n", counted, countRate)

	kinds := make([]string, 0, len(anomalies))
	for k := range anomalies {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  Skipped (%s): %d\n", k, anomalies[k])
	}
}

// WriteParamSummary writes the size and raw probability sum of a parameter
// list. The sum is not normalized.
func WriteParamSummary(w io.Writer, n, skipped int, sum float64) {
	fmt.Fprintf(w, "\nParameter Summary:\n")
	fmt.Fprintf(w, "  Parameters:      %d\n", n)
	fmt.Fprintf(w, "  Skipped:         %d\n", skipped)
	fmt.Fprintf(w, "  Probability sum: %g\n", sum)
}
