package viz

import (
	"fmt"
	"math/rand"
	"sort"
)

// DepthSummary is the structured result of a band depth computation.
type DepthSummary struct {
	Method         string    `json:"method"`
	Depths         []float64 `json:"depths"`
	MedianIndex    int       `json:"median_index"`
	CentralIndices []int     `json:"central_indices"` // deepest 50% of members
	OutlierIndices []int     `json:"outlier_indices"`
	MeanDepth      float64   `json:"mean_depth"`
	MinDepth       float64   `json:"min_depth"`
	MaxDepth       float64   `json:"max_depth"`
}

// fastPairBudget bounds the number of member pairs sampled by the "fast" method.
const fastPairBudget = 500

// BandDepth computes per-member band depth for an ensemble.
// Methods: "bd" (exact two-member band depth), "mbd" (modified band depth,
// the default), "fast" (modified band depth over a sampled subset of pairs).
func BandDepth(e *Ensemble, method string) (*DepthSummary, error) {
	n := e.MemberCount()
	if n < 3 {
		return nil, fmt.Errorf("band depth needs at least 3 members, got %d", n)
	}

	var depths []float64
	switch method {
	case "", "mbd":
		method = "mbd"
		depths = modifiedBandDepth(e, allPairs(n))
	case "bd":
		depths = exactBandDepth(e, allPairs(n))
	case "fast":
		depths = modifiedBandDepth(e, sampledPairs(n, fastPairBudget))
	default:
		return nil, fmt.Errorf("unknown band depth method: %s", method)
	}

	summary := &DepthSummary{
		Method: method,
		Depths: depths,
	}
	summary.classify()
	return summary, nil
}

// classify fills the ranking-derived fields from Depths.
func (s *DepthSummary) classify() {
	n := len(s.Depths)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.Depths[order[a]] > s.Depths[order[b]]
	})

	s.MedianIndex = order[0]
	central := order[:(n+1)/2]
	s.CentralIndices = append([]int(nil), central...)
	sort.Ints(s.CentralIndices)

	// 1.5 IQR fence on the depth distribution.
	sorted := append([]float64(nil), s.Depths...)
	sort.Float64s(sorted)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	fence := q1 - 1.5*(q3-q1)

	s.MinDepth = sorted[0]
	s.MaxDepth = sorted[n-1]
	sum := 0.0
	for _, d := range s.Depths {
		sum += d
	}
	s.MeanDepth = sum / float64(n)

	s.OutlierIndices = []int{}
	for i, d := range s.Depths {
		if d < fence {
			s.OutlierIndices = append(s.OutlierIndices, i)
		}
	}
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

type memberPair struct{ a, b int }

func allPairs(n int) []memberPair {
	pairs := make([]memberPair, 0, n*(n-1)/2)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			pairs = append(pairs, memberPair{a, b})
		}
	}
	return pairs
}

func sampledPairs(n, budget int) []memberPair {
	all := allPairs(n)
	if len(all) <= budget {
		return all
	}
	rng := rand.New(rand.NewSource(int64(n)))
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:budget]
}

// modifiedBandDepth computes MBD: the mean fraction of the domain on which a
// member lies inside the band spanned by each pair.
func modifiedBandDepth(e *Ensemble, pairs []memberPair) []float64 {
	n := e.MemberCount()
	depths := make([]float64, n)
	for m := 0; m < n; m++ {
		curve := e.Members[m]
		total := 0.0
		for _, p := range pairs {
			lo, hi := e.Members[p.a], e.Members[p.b]
			inside := 0
			for i := 0; i < e.Points; i++ {
				low, high := lo[i], hi[i]
				if low > high {
					low, high = high, low
				}
				if curve[i] >= low && curve[i] <= high {
					inside++
				}
			}
			total += float64(inside) / float64(e.Points)
		}
		depths[m] = total / float64(len(pairs))
	}
	return depths
}

// exactBandDepth computes BD: the fraction of pairs whose band fully
// contains the member.
func exactBandDepth(e *Ensemble, pairs []memberPair) []float64 {
	n := e.MemberCount()
	depths := make([]float64, n)
	for m := 0; m < n; m++ {
		curve := e.Members[m]
		contained := 0
		for _, p := range pairs {
			lo, hi := e.Members[p.a], e.Members[p.b]
			inside := true
			for i := 0; i < e.Points; i++ {
				low, high := lo[i], hi[i]
				if low > high {
					low, high = high, low
				}
				if curve[i] < low || curve[i] > high {
					inside = false
					break
				}
			}
			if inside {
				contained++
			}
		}
		depths[m] = float64(contained) / float64(len(pairs))
	}
	return depths
}
