package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/hotelbooking/controllers/booking_controller"
)

func RegisterBookingRoutes(router *gin.Engine, deps Dependencies) {
	bookingController := booking_controller.NewBookingController(deps.Bookings)
	rl := deps.Limiter

	// Public routes
	router.GET("/hotels/:hotel_id/available-rooms", rl.NewRateLimiter("60-1m", "available-rooms"), bookingController.AvailableRooms)

	// Protected routes
	protected := protectedGroup(router, deps)
	{
		protected.POST("/bookings", rl.CombinedRateLimiter("create-booking", "10-1m", "50-1h"), bookingController.CreateBooking)
		protected.GET("/bookings", rl.NewRateLimiter("30-30s", "list-bookings"), bookingController.ListBookings)
		protected.GET("/bookings/:booking_id", rl.NewRateLimiter("30-30s", "get-booking"), bookingController.GetBooking)
		protected.PUT("/bookings/:booking_id", rl.CombinedRateLimiter("update-booking", "10-1m", "50-1h"), bookingController.UpdateBooking)
		protected.DELETE("/bookings/:booking_id", rl.CombinedRateLimiter("cancel-booking", "5-1m", "20-1h"), bookingController.CancelBooking)
		protected.POST("/bookings/:booking_id/payment-order", rl.CombinedRateLimiter("payment-order", "5-1m", "30-1h"), bookingController.CreatePaymentOrder)
	}
}
