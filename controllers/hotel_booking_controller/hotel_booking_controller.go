package hotel_booking_controller

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/hotelbooking/controllers/booking_controller"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/models/booking_record_models"
	"github.com/joy095/hotelbooking/models/shared_models"
	"github.com/joy095/hotelbooking/utils"
)

// RecordStore keeps the management records attached to a booking.
type RecordStore interface {
	Upsert(ctx context.Context, bookingID uuid.UUID, p booking_record_models.Payload) (*booking_record_models.Record, error)
	Get(ctx context.Context, bookingID uuid.UUID, kind booking_record_models.Kind) (*booking_record_models.Record, error)
}

const maxRecordBody = 64 << 10

// HotelBookingController serves the hotel owner's side of bookings.
type HotelBookingController struct {
	Bookings *booking_controller.BookingService
	Records  RecordStore
}

func NewHotelBookingController(bookings *booking_controller.BookingService, records RecordStore) *HotelBookingController {
	return &HotelBookingController{Bookings: bookings, Records: records}
}

// ListHotelBookings handles GET /hotel-bookings.
func (hc *HotelBookingController) ListHotelBookings(c *gin.Context) {
	owner, err := booking_controller.ActorFromContext(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	f, err := booking_controller.ListFilterFromQuery(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	page, err := hc.Bookings.ListOwnerBookings(c.Request.Context(), owner, f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, page)
}

// OverrideStatus handles PUT /hotel-bookings.
func (hc *HotelBookingController) OverrideStatus(c *gin.Context) {
	owner, err := booking_controller.ActorFromContext(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req booking_controller.OverrideStatusRequest
	if err := booking_controller.BindStrict(c, &req, false); err != nil {
		utils.RespondError(c, err)
		return
	}
	if req.BookingID == uuid.Nil {
		utils.RespondError(c, utils.ValidationError("booking_id is required"))
		return
	}

	b, err := hc.Bookings.OverrideStatus(c.Request.Context(), owner, req.BookingID, req.Status, req.PaymentStatus)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	logger.InfoLogger.Infof("Owner %s set booking %s to %s", owner.UserID, b.ID, b.Status)
	utils.RespondOK(c, http.StatusOK, b)
}

// PutRecord handles PUT /hotel-bookings/:booking_id/records/:kind. The body is the
// record payload itself; an existing record of the same kind is replaced.
func (hc *HotelBookingController) PutRecord(c *gin.Context) {
	owner, bookingID, kind, ok := hc.recordTarget(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRecordBody+1))
	if err != nil || len(body) > maxRecordBody {
		utils.RespondError(c, utils.ValidationError("record body is unreadable or too large"))
		return
	}
	payload, err := booking_record_models.Decode(kind, body)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if _, err := hc.Bookings.OwnedBooking(c.Request.Context(), owner, bookingID); err != nil {
		utils.RespondError(c, err)
		return
	}

	rec, err := hc.Records.Upsert(c.Request.Context(), bookingID, payload)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	logger.InfoLogger.Infof("Stored %s record for booking %s", kind, bookingID)
	utils.RespondOK(c, http.StatusOK, rec)
}

// GetRecord handles GET /hotel-bookings/:booking_id/records/:kind.
func (hc *HotelBookingController) GetRecord(c *gin.Context) {
	owner, bookingID, kind, ok := hc.recordTarget(c)
	if !ok {
		return
	}
	if _, err := hc.Bookings.OwnedBooking(c.Request.Context(), owner, bookingID); err != nil {
		utils.RespondError(c, err)
		return
	}

	rec, err := hc.Records.Get(c.Request.Context(), bookingID, kind)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, rec)
}

// recordTarget reads the caller, booking id and record kind, writing the error
// response itself when one is invalid.
func (hc *HotelBookingController) recordTarget(c *gin.Context) (shared_models.Actor, uuid.UUID, booking_record_models.Kind, bool) {
	owner, err := booking_controller.ActorFromContext(c)
	if err != nil {
		utils.RespondError(c, err)
		return owner, uuid.Nil, "", false
	}
	bookingID, err := booking_controller.BookingIDParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return owner, uuid.Nil, "", false
	}
	kind, err := booking_record_models.ParseKind(c.Param("kind"))
	if err != nil {
		utils.RespondError(c, err)
		return owner, uuid.Nil, "", false
	}
	return owner, bookingID, kind, true
}
