package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joy095/hotelbooking/logger"
	"github.com/razorpay/razorpay-go"
)

// Order is the subset of a processor order the booking flow needs.
type Order struct {
	ID       string `json:"id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// OrderRequest describes an order to create. Amount is in minor units.
type OrderRequest struct {
	Amount   int
	Currency string
	Receipt  string
	Notes    map[string]string
}

// PaymentProcessor is the processor surface used by the booking lifecycle.
type PaymentProcessor interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	// UpdateOrderAmount re-prices an unpaid order. Orders are immutable at the
	// processor, so a replacement order is created and returned.
	UpdateOrderAmount(ctx context.Context, orderID string, req OrderRequest) (*Order, error)
	Refund(ctx context.Context, paymentID string, amount int, notes map[string]string) (string, error)
}

// RazorpayClient implements PaymentProcessor using the Razorpay SDK.
type RazorpayClient struct {
	Client  *razorpay.Client
	KeyID   string
	Timeout time.Duration
}

// NewRazorpayClient creates a client for the given key pair. A zero timeout means 15s.
func NewRazorpayClient(keyID, keySecret string, timeout time.Duration) *RazorpayClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RazorpayClient{
		Client:  razorpay.NewClient(keyID, keySecret),
		KeyID:   keyID,
		Timeout: timeout,
	}
}

func (r *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("order amount must be positive, got %d", req.Amount)
	}

	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}
	data := map[string]interface{}{
		"amount":          req.Amount,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
		"notes":           notes,
	}

	body, err := r.do(ctx, func() (map[string]interface{}, error) {
		return r.Client.Order.Create(data, nil)
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Razorpay order creation failed for receipt %s: %v", req.Receipt, err)
		return nil, fmt.Errorf("create order: %w", err)
	}

	order := &Order{
		ID:       stringField(body, "id"),
		Amount:   intField(body, "amount"),
		Currency: stringField(body, "currency"),
		Receipt:  stringField(body, "receipt"),
		Status:   stringField(body, "status"),
	}
	if order.ID == "" {
		return nil, errors.New("create order: response carried no order id")
	}
	logger.InfoLogger.Infof("Razorpay order %s created for receipt %s (%d %s)", order.ID, req.Receipt, req.Amount, req.Currency)
	return order, nil
}

func (r *RazorpayClient) UpdateOrderAmount(ctx context.Context, orderID string, req OrderRequest) (*Order, error) {
	if req.Notes == nil {
		req.Notes = map[string]string{}
	}
	req.Notes["replaces_order_id"] = orderID

	order, err := r.CreateOrder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("replace order %s: %w", orderID, err)
	}
	logger.InfoLogger.Infof("Razorpay order %s replaced by %s", orderID, order.ID)
	return order, nil
}

func (r *RazorpayClient) Refund(ctx context.Context, paymentID string, amount int, notes map[string]string) (string, error) {
	data := map[string]interface{}{}
	if len(notes) > 0 {
		n := make(map[string]interface{}, len(notes))
		for k, v := range notes {
			n[k] = v
		}
		data["notes"] = n
	}

	body, err := r.do(ctx, func() (map[string]interface{}, error) {
		return r.Client.Payment.Refund(paymentID, amount, data, nil)
	})
	if err != nil {
		logger.ErrorLogger.Errorf("Razorpay refund failed for payment %s: %v", paymentID, err)
		return "", fmt.Errorf("refund payment %s: %w", paymentID, err)
	}

	refundID := stringField(body, "id")
	logger.InfoLogger.Infof("Razorpay refund %s requested for payment %s (%d)", refundID, paymentID, amount)
	return refundID, nil
}

// do runs an SDK call bounded by ctx and the client timeout. The SDK takes no
// context, so an abandoned call finishes in the background and its result is dropped.
func (r *RazorpayClient) do(ctx context.Context, call func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := call()
		done <- result{body, err}
	}()

	select {
	case res := <-done:
		return res.body, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// JSON numbers decode to float64.
func intField(m map[string]interface{}, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
