package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func rng(in, out int) DateRange {
	return DateRange{CheckIn: day(in), CheckOut: day(out)}
}

func TestHasOverlap(t *testing.T) {
	existing := []BookedRange{{RoomID: 1, Status: "confirmed", DateRange: rng(10, 13)}}

	tests := []struct {
		name      string
		candidate DateRange
		want      bool
	}{
		{"Inside", rng(11, 12), true},
		{"Covering", rng(9, 14), true},
		{"OverlapStart", rng(8, 11), true},
		{"OverlapEnd", rng(12, 15), true},
		{"AbutsAfter", rng(13, 15), false},
		{"AbutsBefore", rng(7, 10), false},
		{"Disjoint", rng(1, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasOverlap(tt.candidate, existing))
		})
	}
}

func TestHasOverlapIgnoresReleasedBookings(t *testing.T) {
	existing := []BookedRange{
		{RoomID: 1, Status: "cancelled", DateRange: rng(10, 13)},
		{RoomID: 1, Status: "failed", DateRange: rng(10, 13)},
	}
	assert.False(t, HasOverlap(rng(10, 13), existing))

	existing = append(existing, BookedRange{RoomID: 1, Status: "pending", DateRange: rng(12, 14)})
	assert.True(t, HasOverlap(rng(10, 13), existing))
}

func TestHasOverlapEmpty(t *testing.T) {
	assert.False(t, HasOverlap(rng(1, 2), nil))
	assert.False(t, HasOverlap(rng(1, 2), []BookedRange{}))
}

func TestOverlapSymmetry(t *testing.T) {
	for aIn := 1; aIn <= 6; aIn++ {
		for aOut := aIn + 1; aOut <= 7; aOut++ {
			for bIn := 1; bIn <= 6; bIn++ {
				for bOut := bIn + 1; bOut <= 7; bOut++ {
					a := BookedRange{Status: "confirmed", DateRange: rng(aIn, aOut)}
					b := BookedRange{Status: "pending", DateRange: rng(bIn, bOut)}
					assert.Equal(t,
						HasOverlap(a.DateRange, []BookedRange{b}),
						HasOverlap(b.DateRange, []BookedRange{a}),
						"a=%v b=%v", a.DateRange, b.DateRange)
				}
			}
		}
	}
}

func TestGetAvailableRooms(t *testing.T) {
	rooms := []int64{1, 2, 3}
	all := []BookedRange{
		{RoomID: 1, Status: "confirmed", DateRange: rng(10, 12)},
		{RoomID: 2, Status: "cancelled", DateRange: rng(10, 12)},
		{RoomID: 3, Status: "pending", DateRange: rng(12, 14)},
	}
	roomsCopy := append([]int64(nil), rooms...)
	allCopy := append([]BookedRange(nil), all...)

	got := GetAvailableRooms(rooms, rng(10, 12), all)

	assert.Equal(t, []int64{2, 3}, got)
	assert.Equal(t, roomsCopy, rooms)
	assert.Equal(t, allCopy, all)
	assert.Empty(t, GetAvailableRooms(nil, rng(1, 2), nil))
}
