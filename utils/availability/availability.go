// Package availability decides whether date ranges collide with existing bookings.
package availability

import "time"

// DateRange is a half-open [CheckIn, CheckOut) stay.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// BookedRange is an existing booking's stay on a room.
type BookedRange struct {
	RoomID int64
	Status string
	DateRange
}

// Overlaps reports whether two half-open ranges intersect. Touching ranges do not.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}

// Blocking reports whether a booking in this status holds the room.
func Blocking(status string) bool {
	return status != "cancelled" && status != "failed"
}

// HasOverlap reports whether candidate collides with any blocking booking in existing.
func HasOverlap(candidate DateRange, existing []BookedRange) bool {
	for _, b := range existing {
		if !Blocking(b.Status) {
			continue
		}
		if candidate.Overlaps(b.DateRange) {
			return true
		}
	}
	return false
}

// GetAvailableRooms returns the ids from rooms that have no blocking booking overlapping rng.
// Bookings for other rooms are ignored. Neither slice is modified.
func GetAvailableRooms(rooms []int64, rng DateRange, all []BookedRange) []int64 {
	taken := make(map[int64]bool)
	for _, b := range all {
		if taken[b.RoomID] || !Blocking(b.Status) {
			continue
		}
		if rng.Overlaps(b.DateRange) {
			taken[b.RoomID] = true
		}
	}

	available := make([]int64, 0, len(rooms))
	for _, id := range rooms {
		if !taken[id] {
			available = append(available, id)
		}
	}
	return available
}
