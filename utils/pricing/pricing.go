// Package pricing computes booking totals from room rates.
package pricing

import (
	"math"
	"time"

	"github.com/joy095/hotelbooking/utils"
)

const day = 24 * time.Hour

// Nights returns the number of billable nights between check-in and check-out,
// rounding a partial day up. A non-positive result is an InvalidRange error.
func Nights(checkIn, checkOut time.Time) (int, error) {
	if !checkOut.After(checkIn) {
		return 0, utils.InvalidRange("check-out must be after check-in")
	}
	nights := int(math.Ceil(float64(checkOut.Sub(checkIn)) / float64(day)))
	if nights < 1 {
		return 0, utils.InvalidRange("booking must span at least one night")
	}
	return nights, nil
}

// ComputeTotalPrice returns roomRate*nights plus breakfastRate*nights when breakfast
// is included. A nil breakfast rate counts as zero. The result is rounded to cents.
func ComputeTotalPrice(roomRate float64, nights int, breakfastIncluded bool, breakfastRate *float64) (float64, error) {
	if nights < 1 {
		return 0, utils.ValidationError("nights must be at least 1, got %d", nights)
	}
	if roomRate < 0 {
		return 0, utils.ValidationError("room rate must not be negative")
	}

	total := roomRate * float64(nights)
	if breakfastIncluded && breakfastRate != nil {
		total += *breakfastRate * float64(nights)
	}
	return Round(total), nil
}

// Round rounds to two decimal places.
func Round(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// MinorUnits converts an amount to the smallest currency unit (paise, cents).
func MinorUnits(amount float64) int {
	return int(math.Round(amount * 100))
}

// Matches reports whether a client supplied total agrees with the computed one
// within a cent.
func Matches(computed, supplied float64) bool {
	return math.Abs(computed-supplied) <= 0.01+1e-9
}
