// Package signature authenticates payment confirmations and webhook deliveries
// with the processor SDK's HMAC helpers.
package signature

import (
	"github.com/razorpay/razorpay-go/utils"
)

// VerifyWebhook reports whether sig is the processor's signature of body under the
// webhook secret. An empty secret or signature never verifies.
func VerifyWebhook(body []byte, sig, secret string) bool {
	if secret == "" || sig == "" {
		return false
	}
	return utils.VerifyWebhookSignature(string(body), sig, secret)
}

// VerifyPayment reports whether sig is the checkout's signature of orderID|paymentID
// under the key secret.
func VerifyPayment(orderID, paymentID, sig, secret string) bool {
	if secret == "" || sig == "" || orderID == "" || paymentID == "" {
		return false
	}
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return utils.VerifyPaymentSignature(params, sig, secret)
}
