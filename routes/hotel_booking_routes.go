package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/hotelbooking/controllers/hotel_booking_controller"
)

func RegisterHotelBookingRoutes(router *gin.Engine, deps Dependencies) {
	hotelBookingController := hotel_booking_controller.NewHotelBookingController(deps.Bookings, deps.Records)
	rl := deps.Limiter

	protected := protectedGroup(router, deps)
	hotelGroup := protected.Group("/hotel-bookings")
	{
		hotelGroup.GET("", rl.NewRateLimiter("30-30s", "hotel-bookings"), hotelBookingController.ListHotelBookings)
		hotelGroup.PUT("", rl.CombinedRateLimiter("override-status", "10-1m", "100-1h"), hotelBookingController.OverrideStatus)
		hotelGroup.GET("/:booking_id/records/:kind", rl.NewRateLimiter("60-1m", "get-record"), hotelBookingController.GetRecord)
		hotelGroup.PUT("/:booking_id/records/:kind", rl.NewRateLimiter("30-1m", "put-record"), hotelBookingController.PutRecord)
	}
}
