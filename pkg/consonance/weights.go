package consonance

import (
	"fmt"

	"github.com/chordlab/consonance/pkg/chord"
)

// Weight is one per-interval coefficient of a consonance model. Absent marks
// the slot's interval as excluded from the model entirely: an absent interval
// is skipped by the scorer, it does not count as zero.
type Weight struct {
	Value  float64 `json:"value" yaml:"value"`
	Absent bool    `json:"absent,omitempty" yaml:"absent,omitempty"`
}

// WeightVector holds one Weight per interval, positionally aligned with the
// count vectors produced by pkg/chord: length chord.NumIntervals with index
// i holding interval i+1, or length chord.NumClasses indexed by class.
type WeightVector []Weight

// Values builds a fully-present WeightVector from raw coefficients.
func Values(vals ...float64) WeightVector {
	wv := make(WeightVector, len(vals))
	for i, v := range vals {
		wv[i] = Weight{Value: v}
	}
	return wv
}

// Floats returns the vector as raw values, with absent slots reported as 0
// and listed separately by index.
func (wv WeightVector) Floats() (vals []float64, absent []int) {
	vals = make([]float64, len(wv))
	for i, w := range wv {
		if w.Absent {
			absent = append(absent, i)
			continue
		}
		vals[i] = w.Value
	}
	return vals, absent
}

func (wv WeightVector) presentSlots() int {
	n := 0
	for _, w := range wv {
		if !w.Absent {
			n++
		}
	}
	return n
}

// validate checks the vector against the expected domain size. All-absent
// vectors are rejected too: a model with every interval excluded cannot
// score anything.
func (wv WeightVector) validate(want int) error {
	if len(wv) != want {
		return &ShapeError{Want: want, Got: len(wv)}
	}
	if p := wv.presentSlots(); p == 0 {
		return &ShapeError{Want: want, Got: len(wv), Present: &p}
	}
	return nil
}

// WeightSet holds one WeightVector per exclusion combination, ordered by
// increasing bitmask over the excluded interval list used to fit it: bit j
// of the mask set means the j-th excludable interval is absent in that
// vector. Callers index into the set positionally; the set never selects a
// vector from chord content.
type WeightSet []WeightVector

// At returns the vector fitted for the given exclusion bitmask.
func (s WeightSet) At(mask int) (WeightVector, error) {
	if mask < 0 || mask >= len(s) {
		return nil, fmt.Errorf("exclusion mask %d out of range (set holds %d combinations)", mask, len(s))
	}
	return s[mask], nil
}

// Validate checks the structural invariants of the set: a power-of-two
// number of vectors, uniform vector length, and absence patterns consistent
// with bitmask-ordered exclusion combinations. A slot may be absent in every
// vector (an interval never observed during fitting), present in every
// vector, or absent exactly where one mask bit is set.
func (s WeightSet) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("weight set is empty")
	}
	if len(s)&(len(s)-1) != 0 {
		return fmt.Errorf("weight set holds %d vectors, want a power of two", len(s))
	}

	size := len(s[0])
	for i, wv := range s[1:] {
		if len(wv) != size {
			return fmt.Errorf("weight set vectors differ in length: vector 0 has %d slots, vector %d has %d", size, i+1, len(wv))
		}
	}

	for ix := 0; ix < size; ix++ {
		var absentMasks []int
		for mask, wv := range s {
			if wv[ix].Absent {
				absentMasks = append(absentMasks, mask)
			}
		}
		if len(absentMasks) == 0 || len(absentMasks) == len(s) {
			continue
		}

		// Varying slot: its absence must track exactly one mask bit, so it
		// is absent in exactly half the vectors, the first being its bit.
		bit := absentMasks[0]
		if bit&(bit-1) != 0 || len(absentMasks)*2 != len(s) {
			return fmt.Errorf("slot %d absent in %d of %d vectors, not aligned to an exclusion bit", ix, len(absentMasks), len(s))
		}
		for mask, wv := range s {
			if wv[ix].Absent != (mask&bit != 0) {
				return fmt.Errorf("vector %d: slot %d absent=%t, want %t", mask, ix, wv[ix].Absent, mask&bit != 0)
			}
		}
	}

	return nil
}

// ShapeError reports a weight vector that cannot be applied to a chord's
// count vector.
type ShapeError struct {
	Want int
	Got  int

	// Present, when set, carries the number of usable slots (the vector had
	// the right length but excluded every interval).
	Present *int
}

func (e *ShapeError) Error() string {
	if e.Present != nil {
		return fmt.Sprintf("weight vector of length %d has no present weights", e.Got)
	}
	return fmt.Sprintf("weight vector must have length %d, got %d", e.Want, e.Got)
}

// domain sizes re-exported for error messages and callers that size vectors.
const (
	IntervalVectorLen = chord.NumIntervals
	ClassVectorLen    = chord.NumClasses
)
