// Package stats provides statistical utility functions for analyzers.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// Percentile calculates the p-th percentile (0-100) of a sorted slice.
// The slice must already be sorted in ascending order.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(p/100, stat.Empirical, sorted, nil)
}

// Severity scores a file's duplication burden. Log damping on the line
// count keeps one huge block from drowning out files involved in many
// distinct pairs.
func Severity(duplicateLines, pairCount int) float64 {
	return math.Log(float64(duplicateLines)+1) * math.Sqrt(float64(pairCount))
}
