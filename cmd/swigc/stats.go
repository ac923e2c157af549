package main

import (
	"fmt"
	"io"
	"sort"

	metrics "github.com/hashicorp/go-metrics"
)

// reportMetrics prints the timers and counters collected in inm, one line
// per metric, sorted by name.
func reportMetrics(w io.Writer, inm *metrics.InmemSink) {
	type row struct {
		name  string
		count int
		avg   float64
		total float64
	}
	var rows []row
	for _, interval := range inm.Data() {
		interval.RLock()
		// timers are recorded in milliseconds
		for name, v := range interval.Samples {
			r := row{name: name, count: v.Count, total: v.Sum}
			if v.Count > 0 {
				r.avg = v.Sum / float64(v.Count) * 1000
			}
			rows = append(rows, r)
		}
		for name, v := range interval.Counters {
			rows = append(rows, row{name: name, count: v.Count, total: v.Sum})
		}
		interval.RUnlock()
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].name < rows[j].name })

	width := len("metric")
	for _, r := range rows {
		width = max(len(r.name), width)
	}
	fmt.Fprintf(w, "%-*s\t%-6s\t%-9s\t%s\n", width, "metric", "count", "avg (us)", "total")
	for _, r := range rows {
		fmt.Fprintf(w, "%-*s\t%-6d\t%-9.1f\t%.1f\n", width, r.name, r.count, r.avg, r.total)
	}
}
