package signature

import (
	"testing"

	"github.com/joy095/hotelbooking/utils/signature/signaturetest"
	"github.com/stretchr/testify/assert"
)

func TestVerifyWebhook(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	sig := signaturetest.Sign(body, "whsec")

	assert.True(t, VerifyWebhook(body, sig, "whsec"))
	assert.False(t, VerifyWebhook(body, sig, "other"))
	assert.False(t, VerifyWebhook([]byte(`{"event":"payment.failed"}`), sig, "whsec"))
	assert.False(t, VerifyWebhook(body, sig[:len(sig)-1]+"0", "whsec"))
	assert.False(t, VerifyWebhook(body, "", "whsec"))
	assert.False(t, VerifyWebhook(body, sig, ""))
}

func TestVerifyPayment(t *testing.T) {
	sig := signaturetest.PaymentSignature("order_1", "pay_2", "key_secret")

	assert.True(t, VerifyPayment("order_1", "pay_2", sig, "key_secret"))
	assert.False(t, VerifyPayment("order_1", "pay_3", sig, "key_secret"))
	assert.False(t, VerifyPayment("order_9", "pay_2", sig, "key_secret"))
	assert.False(t, VerifyPayment("order_1", "pay_2", sig, "other"))
	assert.False(t, VerifyPayment("order_1", "pay_2", "", "key_secret"))
	assert.False(t, VerifyPayment("", "", signaturetest.PaymentSignature("", "", "key_secret"), "key_secret"))
}
