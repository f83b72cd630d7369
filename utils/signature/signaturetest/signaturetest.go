// Package signaturetest produces processor signatures for tests.
package signaturetest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the hex encoded HMAC-SHA256 of message under secret, as the
// processor computes it for webhook bodies.
func Sign(message []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// PaymentSignature is the signature the checkout hands back for a paid order.
func PaymentSignature(orderID, paymentID, secret string) string {
	return Sign([]byte(orderID+"|"+paymentID), secret)
}
