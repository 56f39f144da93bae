// Package coverage derives summary statistics over the symptom coverage
// entries of a chart: how far the recorded diagnoses explain the presented
// symptoms.
package coverage

import (
	"math"

	"github.com/mdx/mdx/internal/chart"
)

// Bucket boundaries for a single coverage percentage.
const (
	FullMin    = 85
	PartialMin = 60
)

// Summary aggregates the coverage entries of one chart. HasData
// distinguishes an empty entry list from genuinely zero coverage.
type Summary struct {
	Mean         float64 `json:"mean"`
	Full         int     `json:"full"`
	Partial      int     `json:"partial"`
	Insufficient int     `json:"insufficient"`
	Total        int     `json:"total"`
	HasData      bool    `json:"has_data"`
}

// Summarize computes the mean coverage (rounded to two decimal places) and
// the bucket counts: full >= 85, partial 60-84, insufficient < 60. Empty
// input yields a zero summary, never an error.
func Summarize(entries []chart.CoverageEntry) Summary {
	if len(entries) == 0 {
		return Summary{}
	}

	s := Summary{Total: len(entries), HasData: true}
	sum := 0
	for _, e := range entries {
		sum += e.CoveragePct
		switch {
		case e.CoveragePct >= FullMin:
			s.Full++
		case e.CoveragePct >= PartialMin:
			s.Partial++
		default:
			s.Insufficient++
		}
	}
	mean := float64(sum) / float64(len(entries))
	s.Mean = math.Round(mean*100) / 100
	return s
}
