package booking_controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/joy095/hotelbooking/clients"
	"github.com/joy095/hotelbooking/models/shared_models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(f *fixture, actor shared_models.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", actor.UserID.String())
		c.Next()
	})
	bc := NewBookingController(f.svc)
	r.POST("/bookings", bc.CreateBooking)
	r.GET("/bookings", bc.ListBookings)
	r.GET("/bookings/:booking_id", bc.GetBooking)
	r.PUT("/bookings/:booking_id", bc.UpdateBooking)
	r.DELETE("/bookings/:booking_id", bc.CancelBooking)
	r.POST("/bookings/:booking_id/payment-order", bc.CreatePaymentOrder)
	r.GET("/hotels/:hotel_id/available-rooms", bc.AvailableRooms)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func createBody(f *fixture, in, out string, total string) string {
	return `{"guest_name":"Asha Rao","hotel_id":"` + f.hotel.ID.String() + `","room_id":1,` +
		`"check_in":"` + in + `","check_out":"` + out + `","breakfast_included":true,` +
		`"currency":"INR","total_price":` + total + `}`
}

func TestCreateBookingHandler(t *testing.T) {
	f := newFixture(t)
	r := setupRouter(f, f.guest)
	f.proc.On("CreateOrder", mock.Anything, mock.Anything).Return(&clients.Order{ID: "order_h1"}, nil).Once()

	w := do(r, http.MethodPost, "/bookings", createBody(f, "2030-01-10", "2030-01-13", "360"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Booking struct {
			ID               string  `json:"id"`
			Status           string  `json:"status"`
			TotalPrice       float64 `json:"total_price"`
			PaymentReference string  `json:"payment_reference"`
		} `json:"booking"`
		Order PaymentOrder `json:"payment_order"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
	assert.Equal(t, "pending", res.Booking.Status)
	assert.Equal(t, 360.0, res.Booking.TotalPrice)
	assert.Equal(t, "order_h1", res.Order.OrderID)
	assert.Equal(t, 36000, res.Order.Amount)

	w = do(r, http.MethodGet, "/bookings/"+res.Booking.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"check_in":"2030-01-10T00:00:00Z"`)
}

func TestCreateBookingHandlerRejects(t *testing.T) {
	f := newFixture(t)
	r := setupRouter(f, f.guest)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"InvertedRange", createBody(f, "2030-01-13", "2030-01-10", "360"), http.StatusBadRequest, "INVALID_RANGE"},
		{"UnknownField", strings.Replace(createBody(f, "2030-01-10", "2030-01-13", "360"), "{", `{"discount":5,`, 1), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"BadDate", createBody(f, "10/01/2030", "2030-01-13", "360"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"MissingPrice", strings.Replace(createBody(f, "2030-01-10", "2030-01-13", "360"), `,"total_price":360`, "", 1), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"EmptyBody", "", http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/bookings", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			env := decode(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
	assert.Equal(t, 0, f.store.BookingCount())
}

func TestUpdateConfirmedBookingHandler(t *testing.T) {
	f := newFixture(t)
	r := setupRouter(f, f.guest)
	b := f.putBooking(shared_models.BookingStatusConfirmed, true, "pay_1")

	w := do(r, http.MethodPut, "/bookings/"+b.ID.String(), `{"check_out":"2030-01-15"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)
	assert.Contains(t, env.Error.Message, "confirmed")
}

func TestCancelBookingHandlerForbidden(t *testing.T) {
	f := newFixture(t)
	r := setupRouter(f, f.stranger)
	b := f.putBooking(shared_models.BookingStatusPending, false, "")

	w := do(r, http.MethodDelete, "/bookings/"+b.ID.String(), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodDelete, "/bookings/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelBookingHandler(t *testing.T) {
	f := newFixture(t)
	r := setupRouter(f, f.guest)
	b := f.putBooking(shared_models.BookingStatusPending, false, "order_1")

	w := do(r, http.MethodDelete, "/bookings/"+b.ID.String(), `{"reason":"sick"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), `"status":"cancelled"`)
}

func TestAvailableRoomsHandler(t *testing.T) {
	f := newFixture(t)
	r := setupRouter(f, f.guest)

	w := do(r, http.MethodGet, "/hotels/"+f.hotel.ID.String()+"/available-rooms?check_in=2030-01-10&check_out=2030-01-12", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"name":"Deluxe"`)

	w = do(r, http.MethodGet, "/hotels/"+f.hotel.ID.String()+"/available-rooms?check_in=2030-01-10", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
