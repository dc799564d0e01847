package rng

import (
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// HealthResult contains the outcome of a uniformity check.
type HealthResult struct {
	Healthy   bool      `json:"healthy"`
	Timestamp time.Time `json:"timestamp"`
	ChiSquare float64   `json:"chi_square"`
	Critical  float64   `json:"critical_value"`
	Samples   int       `json:"samples"`
	Error     string    `json:"error,omitempty"`
}

// HealthCheck draws samples from the source and runs a chi-square test
// for uniformity across bins at 99% confidence.
func HealthCheck(src Source, samples, bins int) (*HealthResult, error) {
	counts := make([]int, bins)
	for i := 0; i < samples; i++ {
		n, err := src.Int64n(int64(bins))
		if err != nil {
			return &HealthResult{
				Healthy:   false,
				Timestamp: time.Now().UTC(),
				Error:     err.Error(),
			}, err
		}
		counts[n]++
	}

	expected := float64(samples) / float64(bins)
	var chi float64
	for _, c := range counts {
		diff := float64(c) - expected
		chi += diff * diff / expected
	}

	critical := distuv.ChiSquared{K: float64(bins - 1)}.Quantile(0.99)

	return &HealthResult{
		Healthy:   chi < critical,
		Timestamp: time.Now().UTC(),
		ChiSquare: chi,
		Critical:  critical,
		Samples:   samples,
	}, nil
}
