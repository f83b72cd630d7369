package booking_controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joy095/hotelbooking/badwords"
	"github.com/joy095/hotelbooking/cache"
	"github.com/joy095/hotelbooking/clients"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/metrics"
	"github.com/joy095/hotelbooking/models/booking_models"
	"github.com/joy095/hotelbooking/models/hotel_models"
	"github.com/joy095/hotelbooking/models/shared_models"
	"github.com/joy095/hotelbooking/utils"
	"github.com/joy095/hotelbooking/utils/availability"
	"github.com/joy095/hotelbooking/utils/pricing"
)

// BookingStore is the booking persistence the lifecycle needs.
type BookingStore interface {
	Insert(ctx context.Context, b *booking_models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error)
	ListByGuest(ctx context.Context, guestID uuid.UUID, f booking_models.ListFilter) ([]booking_models.Booking, int, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, f booking_models.ListFilter) ([]booking_models.Booking, int, error)
	RoomBookings(ctx context.Context, roomID int64, rng availability.DateRange, exclude uuid.UUID) ([]availability.BookedRange, error)
	HotelBookings(ctx context.Context, hotelID uuid.UUID, rng availability.DateRange) ([]availability.BookedRange, error)
	SetPaymentOrder(ctx context.Context, id uuid.UUID, orderID string) (bool, error)
	UpdatePending(ctx context.Context, id uuid.UUID, u booking_models.PendingUpdate) (bool, error)
	ApplyTransition(ctx context.Context, id uuid.UUID, t booking_models.Transition) (bool, error)
}

type HotelStore interface {
	GetHotel(ctx context.Context, id uuid.UUID) (*hotel_models.Hotel, error)
	GetRoom(ctx context.Context, id int64) (*hotel_models.Room, error)
	ListRooms(ctx context.Context, hotelID uuid.UUID) ([]hotel_models.Room, error)
	SetRoomBooked(ctx context.Context, roomID int64, booked bool) error
}

// Notifier sends guest notifications. Failures never fail the operation.
type Notifier interface {
	BookingConfirmed(b *booking_models.Booking) error
	BookingCancelled(b *booking_models.Booking, refunded bool) error
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// BookingService owns the booking lifecycle: creation, processor orders, updates,
// cancellations and owner overrides. It holds no booking state of its own; every
// decision re-reads the row and every state change is a conditional update.
type BookingService struct {
	Bookings  BookingStore
	Hotels    HotelStore
	Processor clients.PaymentProcessor
	Cache     *cache.BookingCache
	Notifier  Notifier
	// KeyID is the public processor key handed to clients for checkout.
	KeyID string
}

func NewBookingService(bookings BookingStore, hotels HotelStore, processor clients.PaymentProcessor, bookingCache *cache.BookingCache, notifier Notifier, keyID string) *BookingService {
	return &BookingService{
		Bookings:  bookings,
		Hotels:    hotels,
		Processor: processor,
		Cache:     bookingCache,
		Notifier:  notifier,
		KeyID:     keyID,
	}
}

// PaymentOrder is what a client needs to open the processor checkout.
type PaymentOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

type CreateBookingResult struct {
	Booking *booking_models.Booking `json:"booking"`
	Order   *PaymentOrder           `json:"payment_order"`
}

func (s *BookingService) orderFor(b *booking_models.Booking) *PaymentOrder {
	orderID := b.PaymentOrderID
	if orderID == "" {
		orderID = b.PaymentReference
	}
	return &PaymentOrder{
		OrderID:  orderID,
		Amount:   pricing.MinorUnits(b.TotalPrice),
		Currency: b.Currency,
		KeyID:    s.KeyID,
	}
}

func (req *CreateBookingRequest) validate(guest shared_models.Actor) error {
	var missing []string
	if guest.UserID == uuid.Nil {
		missing = append(missing, "guest")
	}
	if strings.TrimSpace(req.GuestName) == "" {
		missing = append(missing, "guest_name")
	}
	if req.HotelID == uuid.Nil {
		missing = append(missing, "hotel_id")
	}
	if req.RoomID <= 0 {
		missing = append(missing, "room_id")
	}
	if req.CheckIn.IsZero() {
		missing = append(missing, "check_in")
	}
	if req.CheckOut.IsZero() {
		missing = append(missing, "check_out")
	}
	if req.Currency == "" {
		missing = append(missing, "currency")
	}
	if req.TotalPrice == nil {
		missing = append(missing, "total_price")
	}
	if len(missing) > 0 {
		return utils.ValidationError("missing required fields: %s", strings.Join(missing, ", "))
	}
	if badwords.Contains(req.GuestName) {
		return utils.ValidationError("guest_name contains disallowed words")
	}
	if !validCurrency(req.Currency) {
		return utils.ValidationError("currency must be a 3 letter ISO 4217 code")
	}
	if *req.TotalPrice < 0 {
		return utils.ValidationError("total_price must not be negative")
	}
	return nil
}

func validCurrency(c string) bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// CreateBooking validates the request, prices it from the room's current rates, stores
// a pending booking and opens a processor order for it. If the processor call fails
// the booking stays pending without a reference and EnsurePaymentOrder can be retried.
func (s *BookingService) CreateBooking(ctx context.Context, guest shared_models.Actor, req CreateBookingRequest) (*CreateBookingResult, error) {
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if err := req.validate(guest); err != nil {
		return nil, err
	}

	checkIn, checkOut := req.CheckIn.Time(), req.CheckOut.Time()
	nights, err := pricing.Nights(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	room, err := s.Hotels.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	hotel, err := s.Hotels.GetHotel(ctx, req.HotelID)
	if err != nil {
		return nil, err
	}
	if room.HotelID != hotel.ID {
		return nil, utils.ValidationError("room %d does not belong to hotel %s", room.ID, hotel.ID)
	}

	rng := availability.DateRange{CheckIn: checkIn, CheckOut: checkOut}
	existing, err := s.Bookings.RoomBookings(ctx, room.ID, rng, uuid.Nil)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if availability.HasOverlap(rng, existing) {
		return nil, utils.Conflict("room is not available for the selected dates")
	}

	total, err := pricing.ComputeTotalPrice(room.Rate, nights, req.BreakfastIncluded, room.BreakfastRate)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, utils.ValidationError("room %d has no payable price for these dates", room.ID)
	}
	if !pricing.Matches(total, *req.TotalPrice) {
		return nil, utils.ValidationError("total_price %.2f does not match the computed price %.2f", *req.TotalPrice, total)
	}

	booking, err := booking_models.NewBooking(guest.UserID, hotel.ID, hotel.OwnerID, room.ID, checkIn, checkOut)
	if err != nil {
		return nil, utils.Internal(err)
	}
	booking.GuestName = strings.TrimSpace(req.GuestName)
	booking.GuestEmail = req.GuestEmail
	if booking.GuestEmail == "" {
		booking.GuestEmail = guest.Email
	}
	booking.BreakfastIncluded = req.BreakfastIncluded
	booking.Currency = req.Currency
	booking.TotalPrice = total

	if err := s.Bookings.Insert(ctx, booking); err != nil {
		if utils.KindOf(err) == utils.KindConflict {
			return nil, err
		}
		return nil, utils.Internal(err)
	}
	metrics.IncBookingCreated()
	logger.InfoLogger.Infof("Booking %s created for room %d, %d nights, total %.2f %s", booking.ID, room.ID, nights, total, booking.Currency)

	order, err := s.EnsurePaymentOrder(ctx, guest, booking.ID)
	if err != nil {
		return nil, err
	}

	booking, err = s.Bookings.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	return &CreateBookingResult{Booking: booking, Order: order}, nil
}

// EnsurePaymentOrder opens a processor order for a pending booking that has none. It is
// safe to call repeatedly; a booking that already has an order gets that order back.
func (s *BookingService) EnsurePaymentOrder(ctx context.Context, guest shared_models.Actor, bookingID uuid.UUID) (*PaymentOrder, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != guest.UserID {
		return nil, utils.Forbidden("only the guest can pay for this booking")
	}
	if b.Status != shared_models.BookingStatusPending {
		return nil, utils.InvalidTransition("cannot create a payment order for a %s booking", b.Status)
	}
	if b.PaymentReference != "" {
		return s.orderFor(b), nil
	}

	order, err := s.Processor.CreateOrder(ctx, clients.OrderRequest{
		Amount:   pricing.MinorUnits(b.TotalPrice),
		Currency: b.Currency,
		Receipt:  b.ID.String(),
		Notes: map[string]string{
			"booking_id": b.ID.String(),
			"guest_id":   b.GuestID.String(),
			"hotel_id":   b.HotelID.String(),
			"owner_id":   b.OwnerID.String(),
			"room_id":    fmt.Sprintf("%d", b.RoomID),
		},
	})
	metrics.IncProcessorCall("create_order", err)
	if err != nil {
		return nil, utils.UpstreamPayment(
			fmt.Sprintf("payment processor unavailable; booking %s is pending, retry creating the payment order", b.ID), err)
	}

	stored, err := s.Bookings.SetPaymentOrder(ctx, b.ID, order.ID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	s.Cache.Invalidate(ctx, b.ID)

	current, err := s.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if !stored {
		if current.Status != shared_models.BookingStatusPending {
			return nil, utils.InvalidTransition("cannot create a payment order for a %s booking", current.Status)
		}
		logger.WarnLogger.Warnf("Booking %s already had order %s, processor order %s left unused", b.ID, current.PaymentReference, order.ID)
	}
	return s.orderFor(current), nil
}

// UpdateBooking changes dates or breakfast of a pending booking and re-prices it from the
// room's current rates. When the price changes and an order exists, the processor is
// updated first so the local total never drifts from what the guest will be charged.
func (s *BookingService) UpdateBooking(ctx context.Context, guest shared_models.Actor, bookingID uuid.UUID, req UpdateBookingRequest) (*booking_models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != guest.UserID {
		return nil, utils.Forbidden("only the guest can modify this booking")
	}
	if b.Status != shared_models.BookingStatusPending {
		return nil, utils.InvalidTransition("cannot modify a %s booking", b.Status)
	}

	checkIn, checkOut, breakfast := b.CheckIn, b.CheckOut, b.BreakfastIncluded
	if req.CheckIn != nil {
		checkIn = req.CheckIn.Time()
	}
	if req.CheckOut != nil {
		checkOut = req.CheckOut.Time()
	}
	if req.BreakfastIncluded != nil {
		breakfast = *req.BreakfastIncluded
	}

	nights, err := pricing.Nights(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	rng := availability.DateRange{CheckIn: checkIn, CheckOut: checkOut}
	existing, err := s.Bookings.RoomBookings(ctx, b.RoomID, rng, b.ID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if availability.HasOverlap(rng, existing) {
		return nil, utils.Conflict("room is not available for the selected dates")
	}

	room, err := s.Hotels.GetRoom(ctx, b.RoomID)
	if err != nil {
		return nil, err
	}
	total, err := pricing.ComputeTotalPrice(room.Rate, nights, breakfast, room.BreakfastRate)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, utils.ValidationError("room %d has no payable price for these dates", room.ID)
	}

	update := booking_models.PendingUpdate{
		CheckIn:           checkIn,
		CheckOut:          checkOut,
		BreakfastIncluded: breakfast,
		TotalPrice:        total,
	}

	if total != b.TotalPrice && b.PaymentReference != "" {
		orderID := b.PaymentOrderID
		if orderID == "" {
			orderID = b.PaymentReference
		}
		order, err := s.Processor.UpdateOrderAmount(ctx, orderID, clients.OrderRequest{
			Amount:   pricing.MinorUnits(total),
			Currency: b.Currency,
			Receipt:  b.ID.String(),
			Notes: map[string]string{
				"booking_id": b.ID.String(),
				"guest_id":   b.GuestID.String(),
				"hotel_id":   b.HotelID.String(),
				"owner_id":   b.OwnerID.String(),
				"room_id":    fmt.Sprintf("%d", b.RoomID),
			},
		})
		metrics.IncProcessorCall("update_order", err)
		if err != nil {
			return nil, utils.UpstreamPayment("payment processor rejected the new amount; booking unchanged", err)
		}
		update.OrderID = order.ID
	}

	updated, err := s.Bookings.UpdatePending(ctx, b.ID, update)
	if err != nil {
		if utils.KindOf(err) == utils.KindConflict {
			return nil, err
		}
		return nil, utils.Internal(err)
	}
	s.Cache.Invalidate(ctx, b.ID)

	current, err := s.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if !updated {
		return nil, utils.InvalidTransition("cannot modify a %s booking", current.Status)
	}
	logger.InfoLogger.Infof("Booking %s updated: %s to %s, total %.2f -> %.2f", b.ID,
		checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02"), b.TotalPrice, total)
	return current, nil
}

// CancelBooking cancels a pending or confirmed booking on behalf of its guest or the
// hotel owner. A paid booking is refunded first; if the refund fails nothing changes.
func (s *BookingService) CancelBooking(ctx context.Context, actor shared_models.Actor, bookingID uuid.UUID, reason string) (*booking_models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	source := "guest"
	if b.GuestID != actor.UserID {
		owner, err := s.isHotelOwner(ctx, actor, b)
		if err != nil {
			return nil, err
		}
		if !owner {
			return nil, utils.Forbidden("only the guest or the hotel owner can cancel this booking")
		}
		source = "owner"
	}

	reason = strings.TrimSpace(reason)
	if badwords.Contains(reason) {
		return nil, utils.ValidationError("reason contains disallowed words")
	}
	return s.cancel(ctx, b, reason, source)
}

func (s *BookingService) cancel(ctx context.Context, b *booking_models.Booking, reason, source string) (*booking_models.Booking, error) {
	if b.Status == shared_models.BookingStatusCancelled || b.Status == shared_models.BookingStatusFailed {
		return nil, utils.InvalidTransition("cannot cancel a %s booking", b.Status)
	}
	if reason == "" {
		reason = "cancelled by " + source
	}

	refunded := false
	if b.PaymentStatus && b.PaymentReference != "" {
		refundID, err := s.Processor.Refund(ctx, b.PaymentReference, pricing.MinorUnits(b.TotalPrice), map[string]string{
			"booking_id": b.ID.String(),
			"reason":     reason,
		})
		metrics.IncProcessorCall("refund", err)
		if err != nil {
			return nil, utils.UpstreamPayment("refund could not be issued; booking was not cancelled", err)
		}
		refunded = true
		logger.InfoLogger.Infof("Refund %s issued for booking %s", refundID, b.ID)
	}

	applied, err := s.Bookings.ApplyTransition(ctx, b.ID, booking_models.Transition{
		To:            shared_models.BookingStatusCancelled,
		From:          shared_models.AllowedFrom(shared_models.BookingStatusCancelled),
		PaymentStatus: false,
		Reason:        reason,
	})
	if err != nil {
		return nil, utils.Internal(err)
	}
	s.Cache.Invalidate(ctx, b.ID)

	current, err := s.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if !applied {
		if current.Status == shared_models.BookingStatusCancelled {
			return current, nil
		}
		return nil, utils.InvalidTransition("cannot cancel a %s booking", current.Status)
	}

	metrics.IncTransition(shared_models.BookingStatusCancelled, source)
	if err := s.Hotels.SetRoomBooked(ctx, b.RoomID, false); err != nil {
		logger.WarnLogger.Warnf("Failed to clear booked flag on room %d: %v", b.RoomID, err)
	}
	if s.Notifier != nil {
		if err := s.Notifier.BookingCancelled(current, refunded); err != nil {
			logger.WarnLogger.Warnf("Cancellation e-mail for booking %s not sent: %v", b.ID, err)
		}
	}
	return current, nil
}

func (s *BookingService) isHotelOwner(ctx context.Context, actor shared_models.Actor, b *booking_models.Booking) (bool, error) {
	if actor.UserID == uuid.Nil {
		return false, nil
	}
	hotel, err := s.Hotels.GetHotel(ctx, b.HotelID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return b.OwnerID == actor.UserID, nil
		}
		return false, utils.Internal(err)
	}
	return hotel.OwnerID == actor.UserID, nil
}

// OwnedBooking returns a booking only if actor owns its hotel.
func (s *BookingService) OwnedBooking(ctx context.Context, actor shared_models.Actor, bookingID uuid.UUID) (*booking_models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	isOwner, err := s.isHotelOwner(ctx, actor, b)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, utils.Forbidden("only the hotel owner can manage this booking")
	}
	return b, nil
}

// OverrideStatus lets the hotel owner fail or cancel a booking by hand. Confirmation
// is reserved for verified payments, and cancelling a paid booking refunds it.
func (s *BookingService) OverrideStatus(ctx context.Context, owner shared_models.Actor, bookingID uuid.UUID, status string, paymentStatus *bool) (*booking_models.Booking, error) {
	if !shared_models.ValidStatus(status) {
		return nil, utils.ValidationError("unknown status %q", status)
	}

	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	isOwner, err := s.isHotelOwner(ctx, owner, b)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, utils.Forbidden("only the hotel owner can change this booking's status")
	}

	if paymentStatus != nil && *paymentStatus && status != shared_models.BookingStatusConfirmed {
		return nil, utils.ValidationError("payment_status can only be set by a verified payment")
	}

	if status == b.Status {
		return b, nil
	}

	switch status {
	case shared_models.BookingStatusConfirmed:
		return nil, utils.InvalidTransition("a %s booking is confirmed only by a verified payment", b.Status)
	case shared_models.BookingStatusCancelled:
		return s.cancel(ctx, b, "cancelled by hotel", "owner")
	}

	if !shared_models.CanTransition(b.Status, status) {
		return nil, utils.InvalidTransition("cannot move a %s booking to %s", b.Status, status)
	}

	applied, err := s.Bookings.ApplyTransition(ctx, b.ID, booking_models.Transition{
		To:            status,
		From:          shared_models.AllowedFrom(status),
		PaymentStatus: false,
		Reason:        "set by hotel",
	})
	if err != nil {
		return nil, utils.Internal(err)
	}
	s.Cache.Invalidate(ctx, b.ID)

	current, err := s.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if !applied && current.Status != status {
		return nil, utils.InvalidTransition("cannot move a %s booking to %s", current.Status, status)
	}
	if applied {
		metrics.IncTransition(status, "owner")
	}
	return current, nil
}

// GetBooking returns a booking to its guest or hotel owner. Reads may be served from cache.
func (s *BookingService) GetBooking(ctx context.Context, actor shared_models.Actor, bookingID uuid.UUID) (*booking_models.Booking, error) {
	b, err := s.Cache.GetOrLoad(ctx, bookingID, s.Bookings.GetByID)
	if err != nil {
		return nil, err
	}
	if b.GuestID == actor.UserID || b.OwnerID == actor.UserID {
		return b, nil
	}
	isOwner, err := s.isHotelOwner(ctx, actor, b)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		return nil, utils.Forbidden("you do not have access to this booking")
	}
	return b, nil
}

// Page is one page of a booking listing.
type Page struct {
	Bookings []booking_models.Booking `json:"bookings"`
	Total    int                      `json:"total"`
	Limit    int                      `json:"limit"`
	Offset   int                      `json:"offset"`
}

func normalizeFilter(f booking_models.ListFilter) (booking_models.ListFilter, error) {
	if f.Status != "" && !shared_models.ValidStatus(f.Status) {
		return f, utils.ValidationError("unknown status %q", f.Status)
	}
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f, nil
}

// ListGuestBookings lists the caller's own bookings, newest first.
func (s *BookingService) ListGuestBookings(ctx context.Context, guest shared_models.Actor, f booking_models.ListFilter) (*Page, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	bookings, total, err := s.Bookings.ListByGuest(ctx, guest.UserID, f)
	if err != nil {
		return nil, utils.Internal(err)
	}
	return &Page{Bookings: bookings, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// ListOwnerBookings lists bookings across the caller's hotels, newest first.
func (s *BookingService) ListOwnerBookings(ctx context.Context, owner shared_models.Actor, f booking_models.ListFilter) (*Page, error) {
	f, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	bookings, total, err := s.Bookings.ListByOwner(ctx, owner.UserID, f)
	if err != nil {
		return nil, utils.Internal(err)
	}
	return &Page{Bookings: bookings, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// AvailableRooms lists the hotel's rooms that are free for the whole range.
func (s *BookingService) AvailableRooms(ctx context.Context, hotelID uuid.UUID, rng availability.DateRange) ([]hotel_models.Room, error) {
	if _, err := pricing.Nights(rng.CheckIn, rng.CheckOut); err != nil {
		return nil, err
	}
	if _, err := s.Hotels.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}

	rooms, err := s.Hotels.ListRooms(ctx, hotelID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	booked, err := s.Bookings.HotelBookings(ctx, hotelID, rng)
	if err != nil {
		return nil, utils.Internal(err)
	}

	ids := make([]int64, len(rooms))
	for i, rm := range rooms {
		ids[i] = rm.ID
	}
	free := make(map[int64]bool)
	for _, id := range availability.GetAvailableRooms(ids, rng, booked) {
		free[id] = true
	}

	available := []hotel_models.Room{}
	for _, rm := range rooms {
		if free[rm.ID] {
			available = append(available, rm)
		}
	}
	return available, nil
}
