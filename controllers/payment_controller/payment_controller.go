package payment_controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/hotelbooking/controllers/booking_controller"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/utils"
)

const (
	SignatureHeader = "X-Razorpay-Signature"
	EventIDHeader   = "X-Razorpay-Event-Id"

	maxWebhookBody = 1 << 20
)

type PaymentController struct {
	Service *PaymentService
}

func NewPaymentController(service *PaymentService) *PaymentController {
	return &PaymentController{Service: service}
}

// PaymentWebhook handles POST /webhooks/payments. Correctly signed deliveries are
// acknowledged with 200 even when nothing changes, so the processor does not retry them.
func (pc *PaymentController) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(c, utils.ValidationError("webhook payload too large"))
			return
		}
		logger.ErrorLogger.Errorf("Failed to read webhook body: %v", err)
		utils.RespondError(c, utils.ValidationError("could not read webhook body"))
		return
	}

	sig := c.GetHeader(SignatureHeader)
	if sig == "" {
		utils.RespondError(c, utils.InvalidSignature())
		return
	}

	if _, err := pc.Service.HandleWebhook(c.Request.Context(), body, sig, c.GetHeader(EventIDHeader)); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

// VerifyPayment handles POST /bookings/:booking_id/verify-payment.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	guest, err := booking_controller.ActorFromContext(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	id, err := booking_controller.BookingIDParam(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req booking_controller.VerifyPaymentRequest
	if err := booking_controller.BindStrict(c, &req, false); err != nil {
		utils.RespondError(c, err)
		return
	}

	b, err := pc.Service.VerifyPayment(c.Request.Context(), guest, id, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, b)
}
