package booking_controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/joy095/hotelbooking/utils"
)

// Date is a calendar day. It accepts "2006-01-02" or an RFC 3339 timestamp and is
// normalized to midnight UTC.
type Date struct {
	t time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" or RFC 3339 string.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return NewDate(t.UTC()), nil
}

func (d Date) Time() time.Time { return d.t }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.t.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type CreateBookingRequest struct {
	GuestName         string    `json:"guest_name" binding:"required,max=200"`
	GuestEmail        string    `json:"guest_email" binding:"omitempty,email"`
	HotelID           uuid.UUID `json:"hotel_id"`
	RoomID            int64     `json:"room_id" binding:"required,gt=0"`
	CheckIn           Date      `json:"check_in"`
	CheckOut          Date      `json:"check_out"`
	BreakfastIncluded bool      `json:"breakfast_included"`
	Currency          string    `json:"currency" binding:"required,len=3"`
	TotalPrice        *float64  `json:"total_price" binding:"required"`
}

type UpdateBookingRequest struct {
	CheckIn           *Date `json:"check_in"`
	CheckOut          *Date `json:"check_out"`
	BreakfastIncluded *bool `json:"breakfast_included"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

type OverrideStatusRequest struct {
	BookingID     uuid.UUID `json:"booking_id"`
	Status        string    `json:"status" binding:"required"`
	PaymentStatus *bool     `json:"payment_status"`
}

// BindStrict decodes a JSON body into req, rejecting unknown fields and trailing data,
// then runs the binding validators. Every failure is a ValidationError. An empty body
// decodes as {} when allowEmpty is set.
func BindStrict(c *gin.Context, req any, allowEmpty bool) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return utils.ValidationError("could not read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if !allowEmpty {
			return utils.ValidationError("request body is required")
		}
		body = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return utils.ValidationError("invalid request body: %v", err)
	}
	if dec.More() {
		return utils.ValidationError("invalid request body: unexpected data after JSON object")
	}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return utils.ValidationError("invalid request body: %v", err)
	}
	return nil
}
