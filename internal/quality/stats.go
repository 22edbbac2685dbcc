package quality

import (
	"math"
	"sort"
)

// StatsSummary holds descriptive statistics over a numeric sample. All fields
// are nil for an empty sample and serialize as JSON null.
//
// Min and max are exact. Mean and median are rounded to the nearest integer,
// halves away from zero. Mode is the most frequent value; ties break toward
// the smallest value.
type StatsSummary struct {
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Mean   *float64 `json:"mean"`
	Median *float64 `json:"median"`
	Mode   *float64 `json:"mode"`
}

func Summarize(data []float64) StatsSummary {
	if len(data) == 0 {
		return StatsSummary{}
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	min := sorted[0]
	max := sorted[len(sorted)-1]

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := math.Round(sum / float64(len(sorted)))

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = sorted[mid]
	} else {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	median = math.Round(median)

	mode := modeOf(sorted)

	return StatsSummary{
		Min:    &min,
		Max:    &max,
		Mean:   &mean,
		Median: &median,
		Mode:   &mode,
	}
}

// SummarizeInts is Summarize over integer samples (block counts and the like).
func SummarizeInts(data []int) StatsSummary {
	floats := make([]float64, len(data))
	for i, v := range data {
		floats[i] = float64(v)
	}
	return Summarize(floats)
}

// modeOf expects sorted input: equal values are adjacent, and the first value
// reaching the highest count is the smallest, which is the documented
// tie-break.
func modeOf(sorted []float64) float64 {
	mode := sorted[0]
	bestCount := 0
	i := 0
	for i < len(sorted) {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			bestCount = j - i
			mode = sorted[i]
		}
		i = j
	}
	return mode
}
