package shared_models

import "github.com/google/uuid"

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusFailed    = "failed"
)

// transitions lists, for every target status, the statuses it may be entered from
// by a guest or owner action.
var transitions = map[string][]string{
	BookingStatusPending:   {},
	BookingStatusConfirmed: {BookingStatusPending},
	BookingStatusFailed:    {BookingStatusPending},
	BookingStatusCancelled: {BookingStatusPending, BookingStatusConfirmed},
}

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// AllowedFrom returns the statuses a booking may move to target from.
func AllowedFrom(target string) []string {
	return append([]string(nil), transitions[target]...)
}

// CanTransition reports whether from -> to is a legal manual transition.
// Re-applying the current status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return ValidStatus(to)
	}
	for _, s := range transitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

// GenerateUUIDv7 generates a new UUIDv7.
func GenerateUUIDv7() (uuid.UUID, error) {
	return uuid.NewV7()
}

// Actor is the authenticated caller of a booking operation.
type Actor struct {
	UserID uuid.UUID
	Email  string
}
