package shared_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(BookingStatusPending, BookingStatusConfirmed))
	assert.True(t, CanTransition(BookingStatusPending, BookingStatusFailed))
	assert.True(t, CanTransition(BookingStatusConfirmed, BookingStatusCancelled))
	assert.True(t, CanTransition(BookingStatusConfirmed, BookingStatusConfirmed))

	assert.False(t, CanTransition(BookingStatusCancelled, BookingStatusConfirmed))
	assert.False(t, CanTransition(BookingStatusFailed, BookingStatusCancelled))
	assert.False(t, CanTransition(BookingStatusConfirmed, BookingStatusPending))
	assert.False(t, CanTransition(BookingStatusPending, "refunded"))
}

func TestAllowedFromIsACopy(t *testing.T) {
	from := AllowedFrom(BookingStatusCancelled)
	from[0] = "mutated"
	assert.Equal(t, []string{BookingStatusPending, BookingStatusConfirmed}, AllowedFrom(BookingStatusCancelled))
}
