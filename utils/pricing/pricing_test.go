package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/joy095/hotelbooking/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestComputeTotalPrice(t *testing.T) {
	t.Run("ThreeNightsWithBreakfast", func(t *testing.T) {
		total, err := ComputeTotalPrice(100, 3, true, ptr(20))
		require.NoError(t, err)
		assert.Equal(t, 360.0, total)
	})

	t.Run("BreakfastNotIncluded", func(t *testing.T) {
		total, err := ComputeTotalPrice(100, 3, false, ptr(20))
		require.NoError(t, err)
		assert.Equal(t, 300.0, total)
	})

	t.Run("NilBreakfastRate", func(t *testing.T) {
		total, err := ComputeTotalPrice(80, 2, true, nil)
		require.NoError(t, err)
		assert.Equal(t, 160.0, total)
	})

	t.Run("RoundsToCents", func(t *testing.T) {
		total, err := ComputeTotalPrice(33.333, 3, false, nil)
		require.NoError(t, err)
		assert.Equal(t, 100.0, total)
	})

	t.Run("RejectsNonPositiveNights", func(t *testing.T) {
		for _, n := range []int{0, -1} {
			_, err := ComputeTotalPrice(100, n, false, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, utils.ErrValidation))
		}
	})
}

func TestPricingIdentity(t *testing.T) {
	rates := []float64{0, 49.5, 100, 1234.25}
	breakfast := []float64{0, 12.5, 20}
	for _, r := range rates {
		for _, b := range breakfast {
			for nights := 1; nights <= 14; nights++ {
				without, err := ComputeTotalPrice(r, nights, false, ptr(b))
				require.NoError(t, err)
				assert.InDelta(t, r*float64(nights), without, 0.005)

				with, err := ComputeTotalPrice(r, nights, true, ptr(b))
				require.NoError(t, err)
				assert.InDelta(t, r*float64(nights)+b*float64(nights), with, 0.005)
			}
		}
	}
}

func TestNights(t *testing.T) {
	in := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	n, err := Nights(in, in.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = Nights(in, in.Add(26*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n, "partial day rounds up")

	_, err = Nights(in, in)
	assert.True(t, errors.Is(err, utils.ErrInvalidRange))

	_, err = Nights(in, in.AddDate(0, 0, -1))
	assert.True(t, errors.Is(err, utils.ErrInvalidRange))
}

func TestMinorUnitsAndMatches(t *testing.T) {
	assert.Equal(t, 36000, MinorUnits(360))
	assert.Equal(t, 10001, MinorUnits(100.01))
	assert.True(t, Matches(360, 360.01))
	assert.False(t, Matches(360, 360.02))
}
