package consonance

import (
	"testing"

	"github.com/chordlab/consonance/pkg/chord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binaryWeights marks intervals 3, 4, 5, 7, 8, 9, 12 consonant (+1) and the
// rest dissonant (-1), index i holding interval i+1.
func binaryWeights() WeightVector {
	return Values(-1, -1, 1, 1, 1, -1, 1, 1, 1, -1, -1, 1)
}

func TestIntervalConsonanceSum(t *testing.T) {
	tests := []struct {
		name    string
		pitches chord.Chord
		weights WeightVector
		want    float64
	}{
		{
			name:    "major triad all consonant",
			pitches: chord.Chord{60, 64, 67}, // intervals 3, 4, 7
			weights: binaryWeights(),
			want:    3,
		},
		{
			name:    "chromatic cluster all dissonant",
			pitches: chord.Chord{60, 61, 62}, // intervals 1, 1, 2
			weights: binaryWeights(),
			want:    -3,
		},
		{
			name:    "counts multiply weights",
			pitches: chord.Chord{60, 67, 74}, // intervals 7, 7, 2
			weights: binaryWeights(),
			want:    1, // +1 +1 -1
		},
		{
			name:    "single note scores zero",
			pitches: chord.Chord{60},
			weights: binaryWeights(),
			want:    0,
		},
		{
			name:    "empty chord scores zero",
			pitches: chord.Chord{},
			weights: binaryWeights(),
			want:    0,
		},
		{
			name:    "doubled pitches carry no phantom octave",
			pitches: chord.Chord{60, 60},
			weights: binaryWeights(),
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntervalConsonance(tt.pitches, tt.weights, AggregationSum)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestIntervalConsonanceType(t *testing.T) {
	// Uniform weight w: type aggregation yields exactly w for any chord
	// size, sum yields w times the interval count.
	w := 0.25
	uniform := make(WeightVector, chord.NumIntervals)
	for i := range uniform {
		uniform[i] = Weight{Value: w}
	}

	chords := []chord.Chord{
		{60, 64},             // 1 interval
		{60, 64, 67},         // 3 intervals
		{60, 64, 67, 70},     // 6 intervals
		{60, 62, 64, 67, 71}, // 10 intervals
	}

	for _, c := range chords {
		typ, err := IntervalConsonance(c, uniform, AggregationType)
		require.NoError(t, err)
		assert.InDelta(t, w, typ, 1e-12)

		sum, err := IntervalConsonance(c, uniform, AggregationSum)
		require.NoError(t, err)
		assert.InDelta(t, w*float64(len(c.OctaveIntervals())), sum, 1e-12)
	}
}

func TestIntervalConsonanceAbsentSkipped(t *testing.T) {
	// Chord {60, 64, 67} has intervals 3, 4, 7. Excluding interval 7 must
	// drop it from both the sum and the type denominator.
	weights := Values(0, 0, 1, 2, 0, 0, 4, 0, 0, 0, 0, 0)
	weights[6].Absent = true

	sum, err := IntervalConsonance(chord.Chord{60, 64, 67}, weights, AggregationSum)
	require.NoError(t, err)
	assert.InDelta(t, 3, sum, 1e-12) // 1 + 2, the 4 never read

	typ, err := IntervalConsonance(chord.Chord{60, 64, 67}, weights, AggregationType)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, typ, 1e-12) // (1+2)/2, denominator excludes interval 7
}

func TestIntervalConsonanceAllCountedIntervalsExcluded(t *testing.T) {
	// A dyad whose only interval is excluded scores 0, not NaN.
	weights := binaryWeights()
	weights[6].Absent = true

	got, err := IntervalConsonance(chord.Chord{60, 67}, weights, AggregationType)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestIntervalConsonanceShapeErrors(t *testing.T) {
	_, err := IntervalConsonance(chord.Chord{60, 64, 67}, Values(1, 2, 3), AggregationSum)
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, chord.NumIntervals, se.Want)
	assert.Equal(t, 3, se.Got)

	allAbsent := make(WeightVector, chord.NumIntervals)
	for i := range allAbsent {
		allAbsent[i].Absent = true
	}
	_, err = IntervalConsonance(chord.Chord{60, 64, 67}, allAbsent, AggregationSum)
	require.ErrorAs(t, err, &se)
	assert.NotNil(t, se.Present)
}

func TestIntervalClassConsonance(t *testing.T) {
	// Chord {60, 67, 72}: intervals 5, 7, 12 -> classes 5, 5, 0.
	weights := Values(2, 0, 0, 0, 0, 3, 0)

	sum, err := IntervalClassConsonance(chord.Chord{60, 67, 72}, weights, AggregationSum)
	require.NoError(t, err)
	assert.InDelta(t, 8, sum, 1e-12) // 1*2 + 2*3

	typ, err := IntervalClassConsonance(chord.Chord{60, 67, 72}, weights, AggregationType)
	require.NoError(t, err)
	assert.InDelta(t, 8.0/3.0, typ, 1e-12)

	_, err = IntervalClassConsonance(chord.Chord{60, 64, 67}, binaryWeights(), AggregationSum)
	var se *ShapeError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, chord.NumClasses, se.Want)
}

func TestScoreIdempotent(t *testing.T) {
	c := chord.Chord{60, 63, 67, 70}
	w := binaryWeights()

	first, err := IntervalConsonance(c, w, AggregationType)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := IntervalConsonance(c, w, AggregationType)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScorePermutationInvariant(t *testing.T) {
	w := binaryWeights()

	a, err := IntervalConsonance(chord.Chord{60, 64, 67}, w, AggregationSum)
	require.NoError(t, err)
	b, err := IntervalConsonance(chord.Chord{67, 60, 64}, w, AggregationSum)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBatchScoring(t *testing.T) {
	chords := []chord.Chord{
		{60, 64, 67},
		{60, 61, 62},
	}

	got, err := IntervalConsonanceBatch(chords, binaryWeights(), AggregationSum)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, -3}, got)

	_, err = IntervalConsonanceBatch(chords, Values(1), AggregationSum)
	assert.Error(t, err)

	cls, err := IntervalClassConsonanceBatch(chords, Values(0, -1, 1, 1, 1, 1, 0), AggregationSum)
	require.NoError(t, err)
	assert.Len(t, cls, 2)
}

func TestParseAggregation(t *testing.T) {
	tests := []struct {
		input   string
		want    Aggregation
		wantErr bool
	}{
		{"sum", AggregationSum, false},
		{"type", AggregationType, false},
		{"SUM", AggregationSum, false},
		{" Type ", AggregationType, false},
		{"mean", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAggregation(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregationString(t *testing.T) {
	assert.Equal(t, "sum", AggregationSum.String())
	assert.Equal(t, "type", AggregationType.String())
}
