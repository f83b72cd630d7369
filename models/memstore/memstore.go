// Package memstore is an in-process implementation of the booking, hotel, webhook and
// record repositories. It mirrors the PostgreSQL semantics (conditional updates, the
// room overlap exclusion, upsert by booking and kind) and backs tests and the
// STORAGE=memory mode.
package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/hotelbooking/models/booking_models"
	"github.com/joy095/hotelbooking/models/booking_record_models"
	"github.com/joy095/hotelbooking/models/hotel_models"
	"github.com/joy095/hotelbooking/models/shared_models"
	"github.com/joy095/hotelbooking/models/webhook_event_models"
	"github.com/joy095/hotelbooking/utils"
	"github.com/joy095/hotelbooking/utils/availability"
)

type recordKey struct {
	bookingID uuid.UUID
	kind      booking_record_models.Kind
}

type Store struct {
	mu       sync.Mutex
	hotels   map[uuid.UUID]hotel_models.Hotel
	rooms    map[int64]hotel_models.Room
	bookings map[uuid.UUID]booking_models.Booking
	events   []webhook_event_models.Event
	records  map[recordKey]booking_record_models.Record
	nextRoom int64
}

func New() *Store {
	return &Store{
		hotels:   make(map[uuid.UUID]hotel_models.Hotel),
		rooms:    make(map[int64]hotel_models.Room),
		bookings: make(map[uuid.UUID]booking_models.Booking),
		records:  make(map[recordKey]booking_record_models.Record),
	}
}

// AddHotel seeds a hotel.
func (s *Store) AddHotel(h hotel_models.Hotel) hotel_models.Hotel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	s.hotels[h.ID] = h
	return h
}

// AddRoom seeds a room, assigning the next id when none is set.
func (s *Store) AddRoom(rm hotel_models.Room) hotel_models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rm.ID == 0 {
		s.nextRoom++
		rm.ID = s.nextRoom
	} else if rm.ID > s.nextRoom {
		s.nextRoom = rm.ID
	}
	if rm.CreatedAt.IsZero() {
		rm.CreatedAt = time.Now().UTC()
	}
	s.rooms[rm.ID] = rm
	return rm
}

// PutBooking stores b as is, bypassing every check.
func (s *Store) PutBooking(b booking_models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
}

// Events returns a copy of the recorded webhook deliveries.
func (s *Store) Events() []webhook_event_models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]webhook_event_models.Event(nil), s.events...)
}

// BookingCount returns the number of stored bookings.
func (s *Store) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *Store) GetHotel(ctx context.Context, id uuid.UUID) (*hotel_models.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hotels[id]
	if !ok {
		return nil, utils.NotFound("hotel")
	}
	return &h, nil
}

func (s *Store) GetRoom(ctx context.Context, id int64) (*hotel_models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[id]
	if !ok {
		return nil, utils.NotFound("room")
	}
	return &rm, nil
}

func (s *Store) ListRooms(ctx context.Context, hotelID uuid.UUID) ([]hotel_models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rooms := []hotel_models.Room{}
	for _, rm := range s.rooms {
		if rm.HotelID == hotelID {
			rooms = append(rooms, rm)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (s *Store) SetRoomBooked(ctx context.Context, roomID int64, booked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rm, ok := s.rooms[roomID]
	if !ok {
		return utils.NotFound("room")
	}
	rm.IsBooked = booked
	s.rooms[roomID] = rm
	return nil
}

func (s *Store) Insert(ctx context.Context, b *booking_models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overlapsLocked(b.RoomID, b.ID, b.Range()) {
		return utils.Conflict("room is not available for the selected dates")
	}
	s.bookings[b.ID] = *b
	return nil
}

func (s *Store) overlapsLocked(roomID int64, exclude uuid.UUID, rng availability.DateRange) bool {
	var existing []availability.BookedRange
	for _, o := range s.bookings {
		if o.RoomID == roomID && o.ID != exclude {
			existing = append(existing, availability.BookedRange{RoomID: o.RoomID, Status: o.Status, DateRange: o.Range()})
		}
	}
	return availability.HasOverlap(rng, existing)
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, utils.NotFound("booking")
	}
	return &b, nil
}

func (s *Store) FindByPaymentReference(ctx context.Context, ref string) (*booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ref == "" {
		return nil, utils.NotFound("booking")
	}
	for _, b := range s.bookings {
		if b.PaymentReference == ref || b.PaymentOrderID == ref {
			return &b, nil
		}
	}
	return nil, utils.NotFound("booking")
}

func (s *Store) ListByGuest(ctx context.Context, guestID uuid.UUID, f booking_models.ListFilter) ([]booking_models.Booking, int, error) {
	return s.list(func(b booking_models.Booking) bool { return b.GuestID == guestID }, f)
}

func (s *Store) ListByOwner(ctx context.Context, ownerID uuid.UUID, f booking_models.ListFilter) ([]booking_models.Booking, int, error) {
	return s.list(func(b booking_models.Booking) bool { return b.OwnerID == ownerID }, f)
}

func (s *Store) list(match func(booking_models.Booking) bool, f booking_models.ListFilter) ([]booking_models.Booking, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []booking_models.Booking
	for _, b := range s.bookings {
		if match(b) && (f.Status == "" || b.Status == f.Status) {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	page := []booking_models.Booking{}
	for i := f.Offset; i < len(all) && (f.Limit <= 0 || len(page) < f.Limit); i++ {
		page = append(page, all[i])
	}
	return page, len(all), nil
}

func (s *Store) RoomBookings(ctx context.Context, roomID int64, rng availability.DateRange, exclude uuid.UUID) ([]availability.BookedRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []availability.BookedRange
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.ID != exclude && rng.Overlaps(b.Range()) {
			out = append(out, availability.BookedRange{RoomID: b.RoomID, Status: b.Status, DateRange: b.Range()})
		}
	}
	return out, nil
}

func (s *Store) HotelBookings(ctx context.Context, hotelID uuid.UUID, rng availability.DateRange) ([]availability.BookedRange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []availability.BookedRange
	for _, b := range s.bookings {
		if b.HotelID == hotelID && rng.Overlaps(b.Range()) {
			out = append(out, availability.BookedRange{RoomID: b.RoomID, Status: b.Status, DateRange: b.Range()})
		}
	}
	return out, nil
}

func (s *Store) SetPaymentOrder(ctx context.Context, id uuid.UUID, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != shared_models.BookingStatusPending || b.PaymentReference != "" {
		return false, nil
	}
	b.PaymentReference = orderID
	b.PaymentOrderID = orderID
	b.UpdatedAt = time.Now().UTC()
	s.bookings[id] = b
	return true, nil
}

func (s *Store) UpdatePending(ctx context.Context, id uuid.UUID, u booking_models.PendingUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != shared_models.BookingStatusPending {
		return false, nil
	}
	rng := availability.DateRange{CheckIn: u.CheckIn, CheckOut: u.CheckOut}
	if s.overlapsLocked(b.RoomID, id, rng) {
		return false, utils.Conflict("room is not available for the selected dates")
	}
	b.CheckIn, b.CheckOut = u.CheckIn, u.CheckOut
	b.BreakfastIncluded = u.BreakfastIncluded
	b.TotalPrice = u.TotalPrice
	if u.OrderID != "" {
		b.PaymentReference = u.OrderID
		b.PaymentOrderID = u.OrderID
	}
	b.UpdatedAt = time.Now().UTC()
	s.bookings[id] = b
	return true, nil
}

func (s *Store) ApplyTransition(ctx context.Context, id uuid.UUID, t booking_models.Transition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, from := range t.From {
		if b.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	if !availability.Blocking(b.Status) && availability.Blocking(t.To) && s.overlapsLocked(b.RoomID, id, b.Range()) {
		return false, utils.Conflict("room is not available for the selected dates")
	}
	b.Status = t.To
	b.PaymentStatus = t.PaymentStatus
	if t.Reference != "" {
		b.PaymentReference = t.Reference
	}
	if t.Reason != "" {
		b.CancellationReason = t.Reason
	}
	b.UpdatedAt = time.Now().UTC()
	s.bookings[id] = b
	return true, nil
}

func (s *Store) Record(ctx context.Context, eventID, eventType string, raw []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if eventID != "" {
		for _, e := range s.events {
			if e.EventID == eventID {
				return 0, nil
			}
		}
	}
	e := webhook_event_models.Event{
		ID:         int64(len(s.events) + 1),
		EventID:    eventID,
		EventType:  eventType,
		RawPayload: append(json.RawMessage(nil), raw...),
		CreatedAt:  time.Now().UTC(),
	}
	s.events = append(s.events, e)
	return e.ID, nil
}

func (s *Store) MarkProcessed(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > 0 && int(id) <= len(s.events) {
		s.events[id-1].Processed = true
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, bookingID uuid.UUID, p booking_record_models.Payload) (*booking_record_models.Record, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	key := recordKey{bookingID, p.Kind()}
	rec, ok := s.records[key]
	if !ok {
		rec = booking_record_models.Record{BookingID: bookingID, Kind: p.Kind(), CreatedAt: now}
	}
	rec.Payload = body
	rec.UpdatedAt = now
	s.records[key] = rec
	return &rec, nil
}

func (s *Store) Get(ctx context.Context, bookingID uuid.UUID, kind booking_record_models.Kind) (*booking_record_models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordKey{bookingID, kind}]
	if !ok {
		return nil, utils.NotFound(string(kind) + " record")
	}
	return &rec, nil
}
