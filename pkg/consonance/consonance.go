package consonance

import (
	"fmt"
	"strings"

	"github.com/chordlab/consonance/pkg/chord"
)

// Aggregation selects how weighted interval counts combine into one score.
type Aggregation int

const (
	// AggregationSum scores with raw interval counts.
	AggregationSum Aggregation = iota

	// AggregationType scores with relative interval frequencies: each count
	// is divided by the chord's total interval count before weighting, which
	// removes sensitivity to chord size.
	AggregationType
)

// String returns the wire tag for the aggregation ("sum" or "type").
func (a Aggregation) String() string {
	switch a {
	case AggregationSum:
		return "sum"
	case AggregationType:
		return "type"
	default:
		return fmt.Sprintf("aggregation(%d)", int(a))
	}
}

// ParseAggregation converts a string tag to an Aggregation.
func ParseAggregation(s string) (Aggregation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum":
		return AggregationSum, nil
	case "type":
		return AggregationType, nil
	default:
		return 0, fmt.Errorf("unknown aggregation %q, want sum or type", s)
	}
}

// IntervalConsonance scores a chord from its pairwise octave intervals.
// Weights must have length 12 (index i holds the coefficient for interval
// i+1). Chords with no intervals score exactly 0.
func IntervalConsonance(c chord.Chord, weights WeightVector, agg Aggregation) (float64, error) {
	if err := weights.validate(chord.NumIntervals); err != nil {
		return 0, err
	}
	return score(c.IntervalCounts(), weights, agg)
}

// IntervalClassConsonance scores a chord from its pairwise interval classes.
// Weights must have length 7, indexed directly by class 0-6.
func IntervalClassConsonance(c chord.Chord, weights WeightVector, agg Aggregation) (float64, error) {
	if err := weights.validate(chord.NumClasses); err != nil {
		return 0, err
	}
	return score(c.ClassCounts(), weights, agg)
}

// score applies a validated weight vector to a count vector. Absent slots
// are skipped both in the weighted sum and in the type-normalisation
// denominator, so an excluded interval never dilutes the remaining ones.
func score(counts []float64, weights WeightVector, agg Aggregation) (float64, error) {
	var total float64
	for i, w := range weights {
		if !w.Absent {
			total += counts[i]
		}
	}
	if total == 0 {
		// Degenerate chord, or every counted interval excluded.
		return 0, nil
	}

	var s float64
	for i, w := range weights {
		if w.Absent {
			continue
		}
		switch agg {
		case AggregationSum:
			s += w.Value * counts[i]
		case AggregationType:
			s += w.Value * counts[i] / total
		default:
			return 0, fmt.Errorf("unsupported aggregation: %s", agg)
		}
	}

	return s, nil
}

// IntervalConsonanceBatch scores every chord with the same weight vector.
// When scoring against a fitted WeightSet, callers select one vector (see
// WeightSet.At) and apply it to the whole batch; per-chord combination
// selection is the caller's contract, never inferred here.
func IntervalConsonanceBatch(chords []chord.Chord, weights WeightVector, agg Aggregation) ([]float64, error) {
	out := make([]float64, len(chords))
	for i, c := range chords {
		s, err := IntervalConsonance(c, weights, agg)
		if err != nil {
			return nil, fmt.Errorf("scoring chord %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// IntervalClassConsonanceBatch is the interval class twin of
// IntervalConsonanceBatch.
func IntervalClassConsonanceBatch(chords []chord.Chord, weights WeightVector, agg Aggregation) ([]float64, error) {
	out := make([]float64, len(chords))
	for i, c := range chords {
		s, err := IntervalClassConsonance(c, weights, agg)
		if err != nil {
			return nil, fmt.Errorf("scoring chord %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}
