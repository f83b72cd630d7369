package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/hotelbooking/controllers/payment_controller"
)

func RegisterPaymentRoutes(router *gin.Engine, deps Dependencies) {
	paymentController := payment_controller.NewPaymentController(deps.Payments)

	// Public webhook endpoint, authenticated by its signature header
	router.POST("/webhooks/payments", paymentController.PaymentWebhook)

	protected := protectedGroup(router, deps)
	{
		protected.POST("/bookings/:booking_id/verify-payment",
			deps.Limiter.CombinedRateLimiter("verify-payment", "10-1m", "60-1h"), paymentController.VerifyPayment)
	}
}
