package hotel_booking_controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/hotelbooking/cache"
	"github.com/joy095/hotelbooking/controllers/booking_controller"
	"github.com/joy095/hotelbooking/models/booking_models"
	"github.com/joy095/hotelbooking/models/hotel_models"
	"github.com/joy095/hotelbooking/models/memstore"
	"github.com/joy095/hotelbooking/models/shared_models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memstore.Store
	hc    *HotelBookingController
	hotel hotel_models.Hotel
	room  hotel_models.Room
	owner uuid.UUID
	guest uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	owner := uuid.New()
	hotel := store.AddHotel(hotel_models.Hotel{OwnerID: owner, Name: "Seaside Inn"})
	room := store.AddRoom(hotel_models.Room{HotelID: hotel.ID, Name: "Deluxe", Rate: 100})
	svc := booking_controller.NewBookingService(store, store, nil, cache.NewBookingCache(nil, 0), nil, "rzp_test_key")
	return &fixture{
		store: store,
		hc:    NewHotelBookingController(svc, store),
		hotel: hotel,
		room:  room,
		owner: owner,
		guest: uuid.New(),
	}
}

func (f *fixture) putBooking(status string, checkIn int) booking_models.Booking {
	b := booking_models.Booking{
		ID:         uuid.New(),
		GuestID:    f.guest,
		GuestName:  "Asha Rao",
		HotelID:    f.hotel.ID,
		OwnerID:    f.owner,
		RoomID:     f.room.ID,
		CheckIn:    time.Date(2030, 1, checkIn, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2030, 1, checkIn+2, 0, 0, 0, 0, time.UTC),
		Currency:   "INR",
		TotalPrice: 200,
		Status:     status,
		CreatedAt:  time.Now().Add(time.Duration(checkIn) * time.Minute),
		UpdatedAt:  time.Now(),
	}
	f.store.PutBooking(b)
	return b
}

func (f *fixture) router(as uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", as.String())
		c.Next()
	})
	r.GET("/hotel-bookings", f.hc.ListHotelBookings)
	r.PUT("/hotel-bookings", f.hc.OverrideStatus)
	r.PUT("/hotel-bookings/:booking_id/records/:kind", f.hc.PutRecord)
	r.GET("/hotel-bookings/:booking_id/records/:kind", f.hc.GetRecord)
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
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestListHotelBookings(t *testing.T) {
	f := newFixture(t)
	older := f.putBooking(shared_models.BookingStatusPending, 1)
	newer := f.putBooking(shared_models.BookingStatusConfirmed, 5)

	w := do(f.router(f.owner), http.MethodGet, "/hotel-bookings", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page booking_controller.Page
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	require.Len(t, page.Bookings, 2)
	assert.Equal(t, newer.ID, page.Bookings[0].ID)
	assert.Equal(t, older.ID, page.Bookings[1].ID)
	assert.Equal(t, 2, page.Total)

	w = do(f.router(f.owner), http.MethodGet, "/hotel-bookings?status=confirmed", "")
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	require.Len(t, page.Bookings, 1)
	assert.Equal(t, newer.ID, page.Bookings[0].ID)

	w = do(f.router(f.guest), http.MethodGet, "/hotel-bookings", "")
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	assert.Empty(t, page.Bookings)

	w = do(f.router(f.owner), http.MethodGet, "/hotel-bookings?status=lost", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverrideStatus(t *testing.T) {
	f := newFixture(t)
	b := f.putBooking(shared_models.BookingStatusPending, 1)

	tests := []struct {
		name   string
		as     uuid.UUID
		body   string
		status int
		code   string
	}{
		{"NotOwner", f.guest, `{"booking_id":"` + b.ID.String() + `","status":"failed"}`, http.StatusForbidden, "FORBIDDEN"},
		{"UnknownStatus", f.owner, `{"booking_id":"` + b.ID.String() + `","status":"archived"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"MissingBooking", f.owner, `{"status":"failed"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"ConfirmByHand", f.owner, `{"booking_id":"` + b.ID.String() + `","status":"confirmed","payment_status":true}`, http.StatusBadRequest, "INVALID_TRANSITION"},
		{"PaidWithoutConfirm", f.owner, `{"booking_id":"` + b.ID.String() + `","status":"failed","payment_status":true}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"UnknownBooking", f.owner, `{"booking_id":"` + uuid.NewString() + `","status":"failed"}`, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(f.router(tt.as), http.MethodPut, "/hotel-bookings", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode(t, w).Error.Code)
		})
	}

	w := do(f.router(f.owner), http.MethodPut, "/hotel-bookings", `{"booking_id":"`+b.ID.String()+`","status":"failed","payment_status":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), `"status":"failed"`)

	w = do(f.router(f.owner), http.MethodPut, "/hotel-bookings", `{"booking_id":"`+b.ID.String()+`","status":"pending"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode(t, w).Error.Code)
}

func TestRecordsUpsert(t *testing.T) {
	f := newFixture(t)
	b := f.putBooking(shared_models.BookingStatusConfirmed, 1)
	path := "/hotel-bookings/" + b.ID.String() + "/records/room_assignment"
	r := f.router(f.owner)

	w := do(r, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPut, path, `{"room_number":"101","floor":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPut, path, `{"room_number":"204","floor":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	var rec struct {
		Kind    string          `json:"kind"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &rec))
	assert.Equal(t, "room_assignment", rec.Kind)
	assert.JSONEq(t, `{"room_number":"204","floor":2}`, string(rec.Payload))
}

func TestRecordsRejects(t *testing.T) {
	f := newFixture(t)
	b := f.putBooking(shared_models.BookingStatusConfirmed, 1)
	base := "/hotel-bookings/" + b.ID.String() + "/records/"

	tests := []struct {
		name   string
		as     uuid.UUID
		path   string
		body   string
		status int
	}{
		{"UnknownKind", f.owner, base + "minibar", `{}`, http.StatusBadRequest},
		{"UnknownField", f.owner, base + "guest_profile", `{"full_name":"A","vip":true}`, http.StatusBadRequest},
		{"InvalidPayload", f.owner, base + "service_request", `{"items":["towels"],"status":"lost"}`, http.StatusBadRequest},
		{"InvoiceMismatch", f.owner, base + "invoice", `{"number":"INV-1","lines":[{"description":"Room","amount":200}],"total":150}`, http.StatusBadRequest},
		{"Guest", f.guest, base + "guest_profile", `{"full_name":"Asha Rao"}`, http.StatusForbidden},
		{"BadBooking", f.owner, "/hotel-bookings/xyz/records/guest_profile", `{"full_name":"Asha Rao"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(f.router(tt.as), http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := do(f.router(f.guest), http.MethodGet, base+"guest_profile", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
