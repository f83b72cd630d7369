package payment_controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joy095/hotelbooking/cache"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/metrics"
	"github.com/joy095/hotelbooking/models/booking_models"
	"github.com/joy095/hotelbooking/models/shared_models"
	"github.com/joy095/hotelbooking/utils"
	"github.com/joy095/hotelbooking/utils/pricing"
	"github.com/joy095/hotelbooking/utils/signature"
)

type BookingStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error)
	FindByPaymentReference(ctx context.Context, ref string) (*booking_models.Booking, error)
	ApplyTransition(ctx context.Context, id uuid.UUID, t booking_models.Transition) (bool, error)
}

// EventStore audits verified webhook deliveries.
type EventStore interface {
	Record(ctx context.Context, eventID, eventType string, raw []byte) (int64, error)
	MarkProcessed(ctx context.Context, id int64) error
}

type RoomStore interface {
	SetRoomBooked(ctx context.Context, roomID int64, booked bool) error
}

type Notifier interface {
	BookingConfirmed(b *booking_models.Booking) error
}

// Webhook outcomes, also used as metric labels.
const (
	OutcomeApplied  = "applied"
	OutcomeNoop     = "noop"
	OutcomeNotFound = "not_found"
	OutcomeIgnored  = "ignored"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
)

// PaymentService reconciles bookings with the processor, through the client's
// synchronous verification and through asynchronous webhooks. Both paths apply the
// same conditional transitions so they converge regardless of arrival order.
type PaymentService struct {
	Bookings      BookingStore
	Events        EventStore
	Rooms         RoomStore
	Cache         *cache.BookingCache
	Notifier      Notifier
	KeySecret     string
	WebhookSecret string
}

func NewPaymentService(bookings BookingStore, events EventStore, rooms RoomStore, bookingCache *cache.BookingCache, notifier Notifier, keySecret, webhookSecret string) *PaymentService {
	return &PaymentService{
		Bookings:      bookings,
		Events:        events,
		Rooms:         rooms,
		Cache:         bookingCache,
		Notifier:      notifier,
		KeySecret:     keySecret,
		WebhookSecret: webhookSecret,
	}
}

// WebhookResult describes what a delivery did.
type WebhookResult struct {
	Event     string    `json:"event"`
	Outcome   string    `json:"outcome"`
	BookingID uuid.UUID `json:"booking_id,omitempty"`
}

// HandleWebhook authenticates and applies one processor delivery. A bad signature
// returns InvalidSignature before anything is read or written. Unknown kinds and
// unmatched bookings are acknowledged without a change.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, sig, eventID string) (*WebhookResult, error) {
	if !signature.VerifyWebhook(body, sig, s.WebhookSecret) {
		metrics.IncWebhook("unknown", OutcomeRejected)
		logger.WarnLogger.Warn("Webhook rejected: signature mismatch")
		return nil, utils.InvalidSignature()
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.IncWebhook("unknown", OutcomeRejected)
		return nil, utils.ValidationError("malformed webhook payload")
	}
	if event.Event == "" {
		metrics.IncWebhook("unknown", OutcomeRejected)
		return nil, utils.ValidationError("webhook payload has no event")
	}

	rowID, err := s.Events.Record(ctx, eventID, event.Event, body)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if rowID == 0 {
		logger.InfoLogger.Infof("Redelivery of webhook event %s (%s)", eventID, event.Event)
	}

	result, err := s.dispatch(ctx, &event)
	if err != nil {
		metrics.IncWebhook(event.Event, "error")
		return nil, err
	}
	metrics.IncWebhook(event.Event, result.Outcome)

	if err := s.Events.MarkProcessed(ctx, rowID); err != nil {
		logger.WarnLogger.Warnf("Webhook event %s applied but not marked processed: %v", eventID, err)
	}
	logger.InfoLogger.Infof("Webhook %s (%s): %s booking=%s", eventID, event.Event, result.Outcome, result.BookingID)
	return result, nil
}

func (s *PaymentService) dispatch(ctx context.Context, event *WebhookEvent) (*WebhookResult, error) {
	result := &WebhookResult{Event: event.Event}

	var (
		refs       []string
		transition booking_models.Transition
	)
	paymentID := event.paymentID()
	switch event.Event {
	case EventPaymentAuthorized, EventPaymentCaptured, EventOrderPaid:
		refs = []string{event.orderID(), paymentID}
	case EventPaymentFailed:
		refs = []string{event.orderID(), paymentID}
		transition = booking_models.Transition{
			To:            shared_models.BookingStatusFailed,
			From:          []string{shared_models.BookingStatusPending},
			PaymentStatus: false,
			Reference:     paymentID,
		}
	case EventRefundCreated, EventRefundProcessed:
		refs = []string{paymentID}
		transition = booking_models.Transition{
			To: shared_models.BookingStatusCancelled,
			From: []string{
				shared_models.BookingStatusPending,
				shared_models.BookingStatusConfirmed,
				shared_models.BookingStatusFailed,
			},
			PaymentStatus: false,
			Reason:        "refunded by payment processor",
		}
	default:
		logger.InfoLogger.Infof("Unhandled webhook event type: %s", event.Event)
		result.Outcome = OutcomeIgnored
		return result, nil
	}

	b, err := s.findBooking(ctx, refs, event.noteBookingID())
	if err != nil {
		return nil, err
	}
	if b == nil {
		logger.InfoLogger.Infof("No booking matches webhook %s (refs %v)", event.Event, refs)
		result.Outcome = OutcomeNotFound
		return result, nil
	}
	result.BookingID = b.ID

	if event.Event != EventRefundCreated && event.Event != EventRefundProcessed {
		if mismatch := paymentMismatch(b, event); mismatch != "" {
			if event.Event == EventPaymentFailed {
				logger.InfoLogger.Infof("Ignoring %s for booking %s: %s", event.Event, b.ID, mismatch)
				result.Outcome = OutcomeNoop
				return result, nil
			}
			logger.ErrorLogger.Errorf("Payment %s not applied to booking %s (%s); refund required", paymentID, b.ID, mismatch)
			result.Outcome = OutcomeConflict
			return result, nil
		}
	}

	if event.Event == EventPaymentAuthorized || event.Event == EventPaymentCaptured || event.Event == EventOrderPaid {
		if paymentID == "" {
			return nil, utils.ValidationError("payment event carries no payment id")
		}
		result.Outcome, err = s.confirm(ctx, b, paymentID, "webhook")
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	applied, err := s.Bookings.ApplyTransition(ctx, b.ID, transition)
	if err != nil {
		return nil, utils.Internal(err)
	}
	s.Cache.Invalidate(ctx, b.ID)
	if !applied {
		logger.InfoLogger.Infof("Webhook %s left booking %s in %s", event.Event, b.ID, b.Status)
		result.Outcome = OutcomeNoop
		return result, nil
	}

	metrics.IncTransition(transition.To, "webhook")
	if transition.To == shared_models.BookingStatusCancelled {
		if err := s.Rooms.SetRoomBooked(ctx, b.RoomID, false); err != nil {
			logger.WarnLogger.Warnf("Failed to clear booked flag on room %d: %v", b.RoomID, err)
		}
	}
	result.Outcome = OutcomeApplied
	return result, nil
}

// paymentMismatch explains why a payment event does not settle b's current order, or
// returns "" when it does. An order replaced after a re-price stays payable at its
// old amount, so it must not confirm the booking.
func paymentMismatch(b *booking_models.Booking, event *WebhookEvent) string {
	if orderID := event.orderID(); orderID != "" && b.PaymentOrderID != "" && orderID != b.PaymentOrderID {
		return fmt.Sprintf("order %s was replaced by %s", orderID, b.PaymentOrderID)
	}
	if amount := event.paymentAmount(); amount > 0 && amount != pricing.MinorUnits(b.TotalPrice) {
		return fmt.Sprintf("paid %d, booking total is %d", amount, pricing.MinorUnits(b.TotalPrice))
	}
	return ""
}

// findBooking tries each reference in order, then the booking id from the notes.
// It returns nil without an error when nothing matches.
func (s *PaymentService) findBooking(ctx context.Context, refs []string, noteID uuid.UUID) (*booking_models.Booking, error) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		b, err := s.Bookings.FindByPaymentReference(ctx, ref)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, utils.ErrNotFound) {
			return nil, utils.Internal(err)
		}
	}
	if noteID == uuid.Nil {
		return nil, nil
	}
	b, err := s.Bookings.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil
		}
		return nil, utils.Internal(err)
	}
	return b, nil
}

// confirm marks b confirmed and paid with paymentID as its reference. A room that was
// rebooked while the booking sat in failed is reported as a conflict and left alone.
func (s *PaymentService) confirm(ctx context.Context, b *booking_models.Booking, paymentID, source string) (string, error) {
	if b.Status == shared_models.BookingStatusConfirmed && b.PaymentStatus && b.PaymentReference == paymentID {
		return OutcomeNoop, nil
	}

	applied, err := s.Bookings.ApplyTransition(ctx, b.ID, booking_models.Transition{
		To: shared_models.BookingStatusConfirmed,
		From: []string{
			shared_models.BookingStatusPending,
			shared_models.BookingStatusFailed,
			shared_models.BookingStatusConfirmed,
		},
		PaymentStatus: true,
		Reference:     paymentID,
	})
	if err != nil {
		if utils.KindOf(err) == utils.KindConflict {
			logger.ErrorLogger.Errorf("Payment %s captured for booking %s but room %d is no longer free; refund required", paymentID, b.ID, b.RoomID)
			return OutcomeConflict, nil
		}
		return "", utils.Internal(err)
	}
	s.Cache.Invalidate(ctx, b.ID)
	if !applied {
		logger.WarnLogger.Warnf("Payment %s arrived for %s booking %s; not confirmed", paymentID, b.Status, b.ID)
		return OutcomeNoop, nil
	}

	metrics.IncTransition(shared_models.BookingStatusConfirmed, source)
	if err := s.Rooms.SetRoomBooked(ctx, b.RoomID, true); err != nil {
		logger.WarnLogger.Warnf("Failed to set booked flag on room %d: %v", b.RoomID, err)
	}
	if b.Status != shared_models.BookingStatusConfirmed && s.Notifier != nil {
		current, err := s.Bookings.GetByID(ctx, b.ID)
		if err == nil {
			if err := s.Notifier.BookingConfirmed(current); err != nil {
				logger.WarnLogger.Warnf("Confirmation e-mail for booking %s not sent: %v", b.ID, err)
			}
		}
	}
	return OutcomeApplied, nil
}

// VerifyPayment confirms a booking from the signature the checkout hands back to the
// guest. The order id must be the one issued for this booking.
func (s *PaymentService) VerifyPayment(ctx context.Context, guest shared_models.Actor, bookingID uuid.UUID, orderID, paymentID, sig string) (*booking_models.Booking, error) {
	orderID, paymentID, sig = strings.TrimSpace(orderID), strings.TrimSpace(paymentID), strings.TrimSpace(sig)
	if orderID == "" || paymentID == "" || sig == "" {
		return nil, utils.ValidationError("razorpay_order_id, razorpay_payment_id and razorpay_signature are required")
	}

	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != guest.UserID {
		return nil, utils.Forbidden("only the guest can verify this booking's payment")
	}

	if !signature.VerifyPayment(orderID, paymentID, sig, s.KeySecret) {
		logger.WarnLogger.Warnf("Payment verification failed for booking %s", b.ID)
		return nil, utils.InvalidSignature()
	}
	ownOrder := orderID == b.PaymentOrderID || orderID == b.PaymentReference || paymentID == b.PaymentReference
	if !ownOrder {
		logger.WarnLogger.Warnf("Payment verification for booking %s used foreign order %s", b.ID, orderID)
		return nil, utils.InvalidSignature()
	}
	if b.Status == shared_models.BookingStatusCancelled {
		return nil, utils.InvalidTransition("cannot confirm a %s booking", b.Status)
	}

	outcome, err := s.confirm(ctx, b, paymentID, "verify")
	if err != nil {
		return nil, err
	}
	if outcome == OutcomeConflict {
		return nil, utils.Conflict("room is no longer available for the selected dates")
	}

	current, err := s.Bookings.GetByID(ctx, b.ID)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if current.Status != shared_models.BookingStatusConfirmed || !current.PaymentStatus {
		return nil, utils.InvalidTransition("cannot confirm a %s booking", current.Status)
	}
	logger.InfoLogger.Infof("Payment %s verified for booking %s", paymentID, b.ID)
	return current, nil
}
