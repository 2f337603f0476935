package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTEM(t *testing.T) {
	set, err := FromTEM(10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, set.TEM)
	assert.Equal(t, 120.0, set.TNA)
	// (1.10)^12 - 1 = 2.13843... -> 213.843%
	assert.InDelta(t, 213.843, set.TEA, 0.001)
}

func TestFromTNA(t *testing.T) {
	set, err := FromTNA(120)
	require.NoError(t, err)
	assert.Equal(t, 120.0, set.TNA)
	assert.Equal(t, 10.0, set.TEM)
	assert.InDelta(t, 213.843, set.TEA, 0.001)
}

func TestFromTEA(t *testing.T) {
	set, err := FromTEA(213.843)
	require.NoError(t, err)
	assert.Equal(t, 213.843, set.TEA)
	assert.InDelta(t, 10.0, set.TEM, 0.001)
	assert.InDelta(t, 120.0, set.TNA, 0.01)
}

func TestRoundTrip(t *testing.T) {
	for _, tem := range []float64{0, 0.5, 3.25, 15} {
		set, err := FromTEM(tem)
		require.NoError(t, err)

		back, err := FromTEA(set.TEA)
		require.NoError(t, err)
		assert.InDelta(t, set.TEM, back.TEM, 0.001, "tem %v", tem)
	}
}

func TestFromTEADerivesFromRoundedInput(t *testing.T) {
	// Sub-millesimal input digits must not leak into the derived TEM/TNA:
	// both inputs round to the same TEA and must yield the same set.
	exact, err := FromTEA(213.843)
	require.NoError(t, err)

	noisy, err := FromTEA(213.8434)
	require.NoError(t, err)
	assert.Equal(t, exact, noisy)
	assert.Equal(t, 213.843, noisy.TEA)
}

func TestNegativeRejected(t *testing.T) {
	_, err := FromTEM(-1)
	assert.ErrorIs(t, err, ErrNegativeRate)
	_, err = FromTNA(-0.01)
	assert.ErrorIs(t, err, ErrNegativeRate)
	_, err = FromTEA(-5)
	assert.ErrorIs(t, err, ErrNegativeRate)
}

func TestZeroRate(t *testing.T) {
	set, err := FromTEM(0)
	require.NoError(t, err)
	assert.Equal(t, RateSet{}, set)
}
