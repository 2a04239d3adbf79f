package consonance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValuesAndFloats(t *testing.T) {
	wv := Values(0.5, -1, 2)
	require.Len(t, wv, 3)
	for _, w := range wv {
		assert.False(t, w.Absent)
	}

	wv[1].Absent = true
	vals, absent := wv.Floats()
	assert.Equal(t, []float64{0.5, 0, 2}, vals)
	assert.Equal(t, []int{1}, absent)
}

// setOver builds a 2^k weight set over the given excludable slots, absent
// slots following the increasing bitmask order the optimiser guarantees.
func setOver(size int, excludable []int) WeightSet {
	set := make(WeightSet, 1<<len(excludable))
	for mask := range set {
		wv := make(WeightVector, size)
		for i := range wv {
			wv[i] = Weight{Value: float64(mask)}
		}
		for bit, ix := range excludable {
			if mask&(1<<bit) != 0 {
				wv[ix] = Weight{Absent: true}
			}
		}
		set[mask] = wv
	}
	return set
}

func TestWeightSetAt(t *testing.T) {
	set := setOver(12, []int{7})
	require.Len(t, set, 2)

	wv, err := set.At(1)
	require.NoError(t, err)
	assert.True(t, wv[7].Absent)

	wv, err = set.At(0)
	require.NoError(t, err)
	assert.False(t, wv[7].Absent)

	_, err = set.At(2)
	assert.Error(t, err)
	_, err = set.At(-1)
	assert.Error(t, err)
}

func TestWeightSetValidate(t *testing.T) {
	assert.NoError(t, setOver(12, []int{7}).Validate())
	assert.NoError(t, setOver(12, []int{4, 7, 10}).Validate())
	assert.NoError(t, setOver(7, nil).Validate())

	// A slot absent in every vector (interval never observed) is legal.
	deg := setOver(12, []int{7})
	deg[0][2].Absent = true
	deg[1][2].Absent = true
	assert.NoError(t, deg.Validate())

	// Empty set.
	assert.Error(t, WeightSet{}.Validate())

	// Not a power of two.
	bad := setOver(12, []int{4, 7})
	assert.Error(t, bad[:3].Validate())

	// Mixed vector lengths.
	mixed := setOver(12, []int{7})
	mixed[1] = mixed[1][:7]
	assert.Error(t, mixed.Validate())

	// Wrong slot absent for the mask.
	wrong := setOver(12, []int{4, 7})
	wrong[1][4].Absent = false
	wrong[1][9].Absent = true
	assert.Error(t, wrong.Validate())
}
