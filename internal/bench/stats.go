package bench

import (
	"github.com/montanaflynn/stats"
)

// Stats summarizes a series of latencies in milliseconds.
type Stats struct {
	Mean   float64 `json:"mean_ms"`
	Median float64 `json:"median_ms"`
	Stdev  float64 `json:"stdev_ms"`
	Min    float64 `json:"min_ms"`
	Max    float64 `json:"max_ms"`
	N      int     `json:"n"`
}

// Summarize computes Stats over xs, rounded to three decimals. The standard
// deviation is the sample one and is zero with fewer than two values. An
// empty series gives zero Stats.
func Summarize(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	data := stats.Float64Data(xs)
	s := Stats{N: len(xs)}
	s.Mean, _ = data.Mean()
	s.Median, _ = data.Median()
	s.Min, _ = data.Min()
	s.Max, _ = data.Max()
	if len(xs) > 1 {
		s.Stdev, _ = data.StandardDeviationSample()
	}

	for _, v := range []*float64{&s.Mean, &s.Median, &s.Stdev, &s.Min, &s.Max} {
		*v, _ = stats.Round(*v, 3)
	}
	return s
}
