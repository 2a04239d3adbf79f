// Package fit estimates consonance weight vectors from behavioural ratings
// by linear least squares. Weights enter the score linearly under both
// aggregations (type normalisation only rescales counts per chord), so a
// single SVD solve per fit recovers the MSE-minimising vector; rank-deficient
// designs take the minimum-norm solution.
package fit

import (
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/chordlab/consonance/pkg/chord"
	"github.com/chordlab/consonance/pkg/consonance"
)

// machEps is the float64 machine epsilon used for rank thresholding.
const machEps = 2.220446049250313e-16

// DataError reports a dataset the optimiser cannot fit.
type DataError struct {
	Chords  int
	Ratings int
}

func (e *DataError) Error() string {
	if e.Chords == 0 && e.Ratings == 0 {
		return "empty dataset: at least one rated chord required"
	}
	return fmt.Sprintf("chords and ratings misaligned: %d chords, %d ratings", e.Chords, e.Ratings)
}

// IntervalWeights fits a 12-slot weight vector over octave intervals,
// minimising mean squared error between the fitted score and the ratings.
// Intervals never observed in the dataset come back marked Absent.
func IntervalWeights(chords []chord.Chord, ratings []float64, agg consonance.Aggregation) (consonance.WeightVector, error) {
	if err := validate(chords, ratings, agg); err != nil {
		return nil, err
	}
	return fitVector(countMatrix(chords, chord.Chord.IntervalCounts), ratings, agg, make([]bool, chord.NumIntervals))
}

// IntervalClassWeights fits a 7-slot weight vector over interval classes.
func IntervalClassWeights(chords []chord.Chord, ratings []float64, agg consonance.Aggregation) (consonance.WeightVector, error) {
	if err := validate(chords, ratings, agg); err != nil {
		return nil, err
	}
	return fitVector(countMatrix(chords, chord.Chord.ClassCounts), ratings, agg, make([]bool, chord.NumClasses))
}

// IntervalWeightsExcluding refits a weight vector for every subset of the
// given intervals (values 1-12) marked excluded, returning 2^len(exclude)
// vectors ordered by increasing exclusion bitmask: bit j of a set index set
// means exclude[j] was dropped from that fit's free parameters and from each
// chord's score. Any sub-fit failure aborts the whole set so the positional
// contract never holds gaps.
func IntervalWeightsExcluding(chords []chord.Chord, ratings []float64, agg consonance.Aggregation, exclude []int) (consonance.WeightSet, error) {
	if err := validate(chords, ratings, agg); err != nil {
		return nil, err
	}
	cols, err := columnsOf(exclude, 1, chord.NumIntervals, -1)
	if err != nil {
		return nil, err
	}
	return fitSet(countMatrix(chords, chord.Chord.IntervalCounts), ratings, agg, chord.NumIntervals, cols)
}

// IntervalClassWeightsExcluding is the interval class twin of
// IntervalWeightsExcluding; exclude holds class values 0-6.
func IntervalClassWeightsExcluding(chords []chord.Chord, ratings []float64, agg consonance.Aggregation, exclude []int) (consonance.WeightSet, error) {
	if err := validate(chords, ratings, agg); err != nil {
		return nil, err
	}
	cols, err := columnsOf(exclude, 0, chord.NumClasses-1, 0)
	if err != nil {
		return nil, err
	}
	return fitSet(countMatrix(chords, chord.Chord.ClassCounts), ratings, agg, chord.NumClasses, cols)
}

func validate(chords []chord.Chord, ratings []float64, agg consonance.Aggregation) error {
	if len(chords) == 0 || len(chords) != len(ratings) {
		return &DataError{Chords: len(chords), Ratings: len(ratings)}
	}
	switch agg {
	case consonance.AggregationSum, consonance.AggregationType:
		return nil
	default:
		return fmt.Errorf("unsupported aggregation: %s", agg)
	}
}

// columnsOf maps interval values to count vector columns (column = value +
// offset), rejecting out-of-range values and duplicates.
func columnsOf(exclude []int, lo, hi, offset int) ([]int, error) {
	cols := make([]int, 0, len(exclude))
	seen := make(map[int]bool, len(exclude))
	for _, v := range exclude {
		if v < lo || v > hi {
			return nil, fmt.Errorf("excluded interval %d out of range %d-%d", v, lo, hi)
		}
		if seen[v] {
			return nil, fmt.Errorf("excluded interval %d listed twice", v)
		}
		seen[v] = true
		cols = append(cols, v+offset)
	}
	return cols, nil
}

func countMatrix(chords []chord.Chord, countsOf func(chord.Chord) []float64) [][]float64 {
	counts := make([][]float64, len(chords))
	for i, c := range chords {
		counts[i] = countsOf(c)
	}
	return counts
}

// fitSet runs one fit per exclusion combination. The 2^k fits are
// independent, so they run concurrently; results land at their bitmask index
// regardless of completion order.
func fitSet(counts [][]float64, ratings []float64, agg consonance.Aggregation, dim int, cols []int) (consonance.WeightSet, error) {
	set := make(consonance.WeightSet, 1<<len(cols))

	var g errgroup.Group
	for mask := range set {
		mask := mask
		g.Go(func() error {
			excluded := make([]bool, dim)
			for bit, col := range cols {
				if mask&(1<<bit) != 0 {
					excluded[col] = true
				}
			}
			wv, err := fitVector(counts, ratings, agg, excluded)
			if err != nil {
				return fmt.Errorf("exclusion combination %d: %w", mask, err)
			}
			set[mask] = wv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return set, nil
}

// fitVector solves one least squares problem. Free parameters are the
// intervals that are not excluded and occur somewhere in the dataset; the
// rest come back Absent. Degenerate chords (no intervals, or only excluded
// ones) keep their row with a constant predicted score of 0, matching the
// scorer's policy.
func fitVector(counts [][]float64, ratings []float64, agg consonance.Aggregation, excluded []bool) (consonance.WeightVector, error) {
	dim := len(excluded)

	observed := make([]bool, dim)
	for _, row := range counts {
		for j, v := range row {
			if v > 0 && !excluded[j] {
				observed[j] = true
			}
		}
	}
	free := make([]int, 0, dim)
	for j := 0; j < dim; j++ {
		if observed[j] {
			free = append(free, j)
		}
	}
	if len(free) == 0 {
		return nil, fmt.Errorf("no intervals observed outside the excluded set")
	}

	n := len(counts)
	a := mat.NewDense(n, len(free), nil)
	b := mat.NewVecDense(n, nil)
	for i, row := range counts {
		var total float64
		if agg == consonance.AggregationType {
			for j, v := range row {
				if !excluded[j] {
					total += v
				}
			}
		}
		for jj, j := range free {
			v := row[j]
			if agg == consonance.AggregationType && total > 0 {
				v /= total
			}
			a.Set(i, jj, v)
		}
		b.SetVec(i, ratings[i])
	}

	sol, err := solveMinNorm(a, b)
	if err != nil {
		return nil, err
	}

	wv := make(consonance.WeightVector, dim)
	for j := range wv {
		wv[j] = consonance.Weight{Absent: true}
	}
	for jj, j := range free {
		wv[j] = consonance.Weight{Value: sol[jj]}
	}

	return wv, nil
}

// solveMinNorm solves min ||Ax - b|| by thin SVD, truncating singular values
// below machine precision so near-rank-deficient designs yield the
// minimum-norm solution instead of blowing up.
func solveMinNorm(a *mat.Dense, b *mat.VecDense) ([]float64, error) {
	n, m := a.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("svd factorization did not converge")
	}

	sv := svd.Values(nil)
	rank := 0
	if len(sv) > 0 {
		tol := machEps * float64(max(n, m)) * sv[0]
		for _, v := range sv {
			if v > tol {
				rank++
			}
		}
	}

	sol := make([]float64, m)
	if rank == 0 {
		// All-zero design; 0 is the minimum-norm minimiser.
		return sol, nil
	}

	var x mat.VecDense
	svd.SolveVecTo(&x, b, rank)
	for j := range sol {
		sol[j] = x.AtVec(j)
	}

	return sol, nil
}
