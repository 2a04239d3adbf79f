package chord

import "sort"

const (
	// NumIntervals is the size of the octave interval domain (1 through 12,
	// minor second to octave).
	NumIntervals = 12

	// NumClasses is the size of the interval class domain (0 through 6).
	NumClasses = 7
)

// Chord is an ordered list of MIDI pitches. Two pitches are the minimum for
// any interval to exist; doubled pitches are allowed.
type Chord []int

// OctaveIntervals returns every pairwise interval of the chord folded into a
// single octave (1-12), sorted ascending. A folded value of 0 means the pair
// is some whole number of octaves apart and maps to 12. Exact unisons
// (doubled pitches, difference of 0 before folding) are dropped entirely:
// a doubled note carries no interval and must not register as an octave.
// Chords with fewer than two pitches have no intervals and return nil.
func (c Chord) OctaveIntervals() []int {
	if len(c) < 2 {
		return nil
	}

	ivls := make([]int, 0, len(c)*(len(c)-1)/2)
	for i := 0; i < len(c); i++ {
		for j := i + 1; j < len(c); j++ {
			d := c[j] - c[i]
			if d < 0 {
				d = -d
			}
			if d == 0 {
				continue
			}
			ivl := d % NumIntervals
			if ivl == 0 {
				ivl = NumIntervals
			}
			ivls = append(ivls, ivl)
		}
	}
	sort.Ints(ivls)

	return ivls
}

// Class folds an octave interval into its interval class (0-6) under the
// standard inversional equivalence: class = min(i mod 12, 12 - i mod 12).
func Class(ivl int) int {
	r := ivl % NumIntervals
	if NumIntervals-r < r {
		return NumIntervals - r
	}
	return r
}

// IntervalCounts returns the chord's interval multiset as a count vector of
// length NumIntervals, where index i holds the count of interval i+1.
// Degenerate chords yield an all-zero vector.
func (c Chord) IntervalCounts() []float64 {
	counts := make([]float64, NumIntervals)
	for _, ivl := range c.OctaveIntervals() {
		counts[ivl-1]++
	}
	return counts
}

// ClassCounts returns the chord's interval class multiset as a count vector
// of length NumClasses, indexed directly by class.
func (c Chord) ClassCounts() []float64 {
	counts := make([]float64, NumClasses)
	for _, ivl := range c.OctaveIntervals() {
		counts[Class(ivl)]++
	}
	return counts
}
