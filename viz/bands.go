package viz

import (
	"fmt"
	"sort"
)

// Band is the pointwise envelope of the deepest members up to a percentile.
type Band struct {
	Percentile float64   `json:"percentile"`
	Lower      []float64 `json:"lower"`
	Upper      []float64 `json:"upper"`
}

// PercentileBands builds nested envelopes: for each requested percentile p,
// the pointwise min/max of the deepest p% of members.
func PercentileBands(e *Ensemble, depths []float64, percentiles []float64) ([]Band, error) {
	n := e.MemberCount()
	if len(depths) != n {
		return nil, fmt.Errorf("depth count %d does not match member count %d", len(depths), n)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return depths[order[a]] > depths[order[b]]
	})

	sortedPercentiles := append([]float64(nil), percentiles...)
	sort.Float64s(sortedPercentiles)

	bands := make([]Band, 0, len(sortedPercentiles))
	for _, p := range sortedPercentiles {
		if p <= 0 || p > 100 {
			return nil, fmt.Errorf("percentile out of range (0,100]: %v", p)
		}
		count := int(float64(n)*p/100 + 0.5)
		if count < 2 {
			count = 2
		}
		if count > n {
			count = n
		}

		lower := make([]float64, e.Points)
		upper := make([]float64, e.Points)
		for i := 0; i < e.Points; i++ {
			lo := e.Members[order[0]][i]
			hi := lo
			for _, m := range order[1:count] {
				v := e.Members[m][i]
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			lower[i] = lo
			upper[i] = hi
		}
		bands = append(bands, Band{Percentile: p, Lower: lower, Upper: upper})
	}
	return bands, nil
}

// MedianCurve returns the deepest member curve.
func MedianCurve(e *Ensemble, depths []float64) ([]float64, error) {
	if len(depths) != e.MemberCount() {
		return nil, fmt.Errorf("depth count %d does not match member count %d", len(depths), e.MemberCount())
	}
	best := 0
	for i, d := range depths {
		if d > depths[best] {
			best = i
		}
	}
	return append([]float64(nil), e.Members[best]...), nil
}

// ContourBandSummary describes where member curves cross an isovalue.
type ContourBandSummary struct {
	Isovalue float64   `json:"isovalue"`
	Coverage []float64 `json:"coverage"`   // fraction of members at or above the isovalue, per point
	BandLow  []int     `json:"band_low"`   // points where coverage is in the central band
	BandHigh []int     `json:"band_high"`  // points where all members agree (coverage 0 or 1)
	Crossing []int     `json:"crossing"`   // points where coverage changes most rapidly
}

// ContourBands summarizes isovalue agreement across the ensemble.
func ContourBands(e *Ensemble, isovalue float64) *ContourBandSummary {
	coverage := make([]float64, e.Points)
	for i := 0; i < e.Points; i++ {
		above := 0
		for _, curve := range e.Members {
			if curve[i] >= isovalue {
				above++
			}
		}
		coverage[i] = float64(above) / float64(e.MemberCount())
	}

	summary := &ContourBandSummary{
		Isovalue: isovalue,
		Coverage: coverage,
		BandLow:  []int{},
		BandHigh: []int{},
		Crossing: []int{},
	}
	for i, c := range coverage {
		switch {
		case c == 0 || c == 1:
			summary.BandHigh = append(summary.BandHigh, i)
		case c >= 0.25 && c <= 0.75:
			summary.BandLow = append(summary.BandLow, i)
		}
		if i > 0 {
			delta := coverage[i] - coverage[i-1]
			if delta < 0 {
				delta = -delta
			}
			if delta >= 0.25 {
				summary.Crossing = append(summary.Crossing, i)
			}
		}
	}
	return summary
}
