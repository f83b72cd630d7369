package booking_controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/models/booking_models"
	"github.com/joy095/hotelbooking/models/shared_models"
	"github.com/joy095/hotelbooking/utils"
	"github.com/joy095/hotelbooking/utils/availability"
)

type BookingController struct {
	Service *BookingService
}

func NewBookingController(service *BookingService) *BookingController {
	return &BookingController{Service: service}
}

// ActorFromContext builds the caller from the values the auth middleware set.
func ActorFromContext(c *gin.Context) (shared_models.Actor, error) {
	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		return shared_models.Actor{}, utils.NewError(utils.KindForbidden, "authentication required", err)
	}
	return shared_models.Actor{UserID: userID, Email: utils.GetEmailFromContext(c)}, nil
}

// BookingIDParam parses the :booking_id path parameter.
func BookingIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		return uuid.Nil, utils.ValidationError("invalid booking id")
	}
	return id, nil
}

// ListFilterFromQuery reads limit, offset and status query parameters.
func ListFilterFromQuery(c *gin.Context) (booking_models.ListFilter, error) {
	f := booking_models.ListFilter{Status: c.Query("status")}
	var err error
	if v := c.Query("limit"); v != "" {
		if f.Limit, err = strconv.Atoi(v); err != nil {
			return f, utils.ValidationError("limit must be a number")
		}
	}
	if v := c.Query("offset"); v != "" {
		if f.Offset, err = strconv.Atoi(v); err != nil {
			return f, utils.ValidationError("offset must be a number")
		}
	}
	return f, nil
}

// CreateBooking handles POST /bookings.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	guest, err := ActorFromContext(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req CreateBookingRequest
	if err := BindStrict(c, &req, false); err != nil {
		utils.RespondError(c, err)
		return
	}

	result, err := bc.Service.CreateBooking(c.Request.Context(), guest, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	logger.InfoLogger.Infof("Booking %s created by guest %s", result.Booking.ID, guest.UserID)
	utils.RespondOK(c, http.StatusCreated, result)
}

// ListBookings handles GET /bookings for the authenticated guest.
func (bc *BookingController) ListBookings(c *gin.Context) {
	guest, err := ActorFromContext(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	f, err := ListFilterFromQuery(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	page, err := bc.Service.ListGuestBookings(c.Request.Context(), guest, f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, page)
}

// GetBooking handles GET /bookings/:booking_id.
func (bc *BookingController) GetBooking(c *gin.Context) {
	actor, err := ActorFromContext(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	id, err := BookingIDParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	b, err := bc.Service.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, b)
}

// UpdateBooking handles PUT /bookings/:booking_id.
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	guest, err := ActorFromContext(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	id, err := BookingIDParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req UpdateBookingRequest
	if err := BindStrict(c, &req, false); err != nil {
		utils.RespondError(c, err)
		return
	}
	if req.CheckIn == nil && req.CheckOut == nil && req.BreakfastIncluded == nil {
		utils.RespondError(c, utils.ValidationError("nothing to update"))
		return
	}

	b, err := bc.Service.UpdateBooking(c.Request.Context(), guest, id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, b)
}

// CancelBooking handles DELETE /bookings/:booking_id. The booking row is kept.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	actor, err := ActorFromContext(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	id, err := BookingIDParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req CancelBookingRequest
	if err := BindStrict(c, &req, true); err != nil {
		utils.RespondError(c, err)
		return
	}

	b, err := bc.Service.CancelBooking(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, b)
}

// CreatePaymentOrder handles POST /bookings/:booking_id/payment-order, the retry path
// after a processor outage during creation.
func (bc *BookingController) CreatePaymentOrder(c *gin.Context) {
	guest, err := ActorFromContext(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	id, err := BookingIDParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	order, err := bc.Service.EnsurePaymentOrder(c.Request.Context(), guest, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, order)
}

// AvailableRooms handles GET /hotels/:hotel_id/available-rooms?check_in=&check_out=.
func (bc *BookingController) AvailableRooms(c *gin.Context) {
	hotelID, err := uuid.Parse(c.Param("hotel_id"))
	if err != nil {
		utils.RespondError(c, utils.ValidationError("invalid hotel id"))
		return
	}
	checkIn, err := ParseDate(c.Query("check_in"))
	if err != nil {
		utils.RespondError(c, utils.ValidationError("check_in: %v", err))
		return
	}
	checkOut, err := ParseDate(c.Query("check_out"))
	if err != nil {
		utils.RespondError(c, utils.ValidationError("check_out: %v", err))
		return
	}

	rooms, err := bc.Service.AvailableRooms(c.Request.Context(), hotelID,
		availability.DateRange{CheckIn: checkIn.Time(), CheckOut: checkOut.Time()})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, gin.H{"rooms": rooms})
}
