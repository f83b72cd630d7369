package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joy095/hotelbooking/controllers/booking_controller"
	"github.com/joy095/hotelbooking/controllers/hotel_booking_controller"
	"github.com/joy095/hotelbooking/controllers/payment_controller"
	middleware "github.com/joy095/hotelbooking/middlewares"
	"github.com/joy095/hotelbooking/middlewares/auth"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Bookings  *booking_controller.BookingService
	Payments  *payment_controller.PaymentService
	Records   hotel_booking_controller.RecordStore
	Limiter   *middleware.RateLimiter
	JWTSecret []byte
	// Ping checks the backing stores for /health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// RegisterAll mounts every route group on router.
func RegisterAll(router *gin.Engine, deps Dependencies) {
	if deps.Limiter == nil {
		deps.Limiter = middleware.NewRateLimiterFactory(nil)
	}
	RegisterHealthRoutes(router, deps.Ping)
	RegisterBookingRoutes(router, deps)
	RegisterPaymentRoutes(router, deps)
	RegisterHotelBookingRoutes(router, deps)
}

func protectedGroup(router *gin.Engine, deps Dependencies) *gin.RouterGroup {
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(deps.JWTSecret))
	return protected
}
