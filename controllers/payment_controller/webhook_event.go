package payment_controller

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Processor event kinds the ingester acts on.
const (
	EventPaymentAuthorized = "payment.authorized"
	EventPaymentCaptured   = "payment.captured"
	EventOrderPaid         = "order.paid"
	EventPaymentFailed     = "payment.failed"
	EventRefundCreated     = "refund.created"
	EventRefundProcessed   = "refund.processed"
)

// WebhookEvent is the processor's delivery envelope.
type WebhookEvent struct {
	Entity    string         `json:"entity"`
	AccountID string         `json:"account_id"`
	Event     string         `json:"event"`
	Contains  []string       `json:"contains"`
	Payload   WebhookPayload `json:"payload"`
	CreatedAt int64          `json:"created_at"`
}

type WebhookPayload struct {
	Payment *struct {
		Entity PaymentEntity `json:"entity"`
	} `json:"payment,omitempty"`
	Order *struct {
		Entity OrderEntity `json:"entity"`
	} `json:"order,omitempty"`
	Refund *struct {
		Entity RefundEntity `json:"entity"`
	} `json:"refund,omitempty"`
}

type PaymentEntity struct {
	ID       string          `json:"id"`
	OrderID  string          `json:"order_id"`
	Amount   int             `json:"amount"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
	Notes    json.RawMessage `json:"notes"`
}

type OrderEntity struct {
	ID      string          `json:"id"`
	Receipt string          `json:"receipt"`
	Status  string          `json:"status"`
	Notes   json.RawMessage `json:"notes"`
}

type RefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int    `json:"amount"`
	Status    string `json:"status"`
}

// paymentID returns the concrete payment id carried by the event, if any.
func (e *WebhookEvent) paymentID() string {
	if e.Payload.Payment != nil && e.Payload.Payment.Entity.ID != "" {
		return e.Payload.Payment.Entity.ID
	}
	if e.Payload.Refund != nil {
		return e.Payload.Refund.Entity.PaymentID
	}
	return ""
}

// paymentAmount returns the paid amount in minor units, or 0 when the event has none.
func (e *WebhookEvent) paymentAmount() int {
	if e.Payload.Payment != nil {
		return e.Payload.Payment.Entity.Amount
	}
	return 0
}

// orderID returns the processor order id carried by the event, if any.
func (e *WebhookEvent) orderID() string {
	if e.Payload.Payment != nil && e.Payload.Payment.Entity.OrderID != "" {
		return e.Payload.Payment.Entity.OrderID
	}
	if e.Payload.Order != nil {
		return e.Payload.Order.Entity.ID
	}
	return ""
}

// noteBookingID returns the booking id embedded in the order or payment notes. Notes
// arrive as an object, or as an empty array when there are none.
func (e *WebhookEvent) noteBookingID() uuid.UUID {
	var candidates []json.RawMessage
	if e.Payload.Payment != nil {
		candidates = append(candidates, e.Payload.Payment.Entity.Notes)
	}
	if e.Payload.Order != nil {
		candidates = append(candidates, e.Payload.Order.Entity.Notes)
	}
	for _, raw := range candidates {
		var notes map[string]any
		if len(raw) == 0 || json.Unmarshal(raw, &notes) != nil {
			continue
		}
		if s, ok := notes["booking_id"].(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				return id
			}
		}
	}
	return uuid.Nil
}
