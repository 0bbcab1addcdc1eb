package viz

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
)

// Ensemble holds a set of member curves sampled on a shared grid.
type Ensemble struct {
	Name    string      `json:"name"`
	Members [][]float64 `json:"members"` // one row per member
	Points  int         `json:"points"`  // samples per member
}

// MemberCount returns the number of member curves.
func (e *Ensemble) MemberCount() int {
	return len(e.Members)
}

// GenerateEnsemble synthesizes an ensemble of the given kind.
// Supported kinds: "sine" (phase/amplitude jittered sine waves) and
// "gaussian" (randomly placed gaussian bumps). The seed makes runs
// reproducible.
func GenerateEnsemble(kind string, members, points int, noise float64, seed int64) (*Ensemble, error) {
	if members <= 0 {
		members = 20
	}
	if points <= 1 {
		points = 50
	}
	if noise < 0 {
		noise = 0
	}

	rng := rand.New(rand.NewSource(seed))
	curves := make([][]float64, members)

	switch kind {
	case "", "sine":
		for m := 0; m < members; m++ {
			amp := 1.0 + 0.25*rng.NormFloat64()
			phase := 0.4 * rng.NormFloat64()
			curve := make([]float64, points)
			for i := 0; i < points; i++ {
				x := float64(i) / float64(points-1)
				curve[i] = amp*math.Sin(2*math.Pi*x+phase) + noise*rng.NormFloat64()
			}
			curves[m] = curve
		}
	case "gaussian":
		for m := 0; m < members; m++ {
			center := 0.5 + 0.15*rng.NormFloat64()
			width := 0.12 + 0.04*rng.Float64()
			height := 1.0 + 0.3*rng.NormFloat64()
			curve := make([]float64, points)
			for i := 0; i < points; i++ {
				x := float64(i) / float64(points-1)
				d := (x - center) / width
				curve[i] = height*math.Exp(-0.5*d*d) + noise*rng.NormFloat64()
			}
			curves[m] = curve
		}
	default:
		return nil, fmt.Errorf("unknown ensemble kind: %s", kind)
	}

	return &Ensemble{
		Name:    fmt.Sprintf("%s ensemble (%dx%d)", kindLabel(kind), members, points),
		Members: curves,
		Points:  points,
	}, nil
}

func kindLabel(kind string) string {
	if kind == "" {
		return "sine"
	}
	return kind
}

// LoadEnsembleCSV reads an ensemble from a CSV file, one member per row.
// All rows must have the same length and contain finite numbers.
func LoadEnsembleCSV(path string) (*Ensemble, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty ensemble file: %s", path)
	}

	var members [][]float64
	points := -1
	for rowIdx, row := range rows {
		if len(row) == 0 {
			continue
		}
		curve := make([]float64, 0, len(row))
		for colIdx, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				// Tolerate a single header row of labels.
				if rowIdx == 0 {
					curve = nil
					break
				}
				return nil, fmt.Errorf("row %d col %d: not a number: %q", rowIdx+1, colIdx+1, cell)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d col %d: non-finite value", rowIdx+1, colIdx+1)
			}
			curve = append(curve, v)
		}
		if curve == nil {
			continue
		}
		if points < 0 {
			points = len(curve)
		} else if len(curve) != points {
			return nil, fmt.Errorf("row %d: expected %d values, got %d", rowIdx+1, points, len(curve))
		}
		members = append(members, curve)
	}

	if len(members) == 0 {
		return nil, fmt.Errorf("no numeric rows in %s", path)
	}

	return &Ensemble{
		Name:    path,
		Members: members,
		Points:  points,
	}, nil
}
