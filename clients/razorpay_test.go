package clients

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoReturnsCallResult(t *testing.T) {
	c := NewRazorpayClient("rzp_test", "secret", time.Second)

	body, err := c.do(context.Background(), func() (map[string]interface{}, error) {
		return map[string]interface{}{"id": "order_1"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "order_1", stringField(body, "id"))

	_, err = c.do(context.Background(), func() (map[string]interface{}, error) {
		return nil, errors.New("bad request")
	})
	assert.EqualError(t, err, "bad request")
}

func TestDoTimesOut(t *testing.T) {
	c := NewRazorpayClient("rzp_test", "secret", 20*time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := c.do(context.Background(), func() (map[string]interface{}, error) {
		<-release
		return nil, nil
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDoHonoursCancelledContext(t *testing.T) {
	c := NewRazorpayClient("rzp_test", "secret", time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	release := make(chan struct{})
	defer close(release)

	_, err := c.do(ctx, func() (map[string]interface{}, error) {
		<-release
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFields(t *testing.T) {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":"order_9","amount":36000,"status":"created"}`), &body))

	assert.Equal(t, "order_9", stringField(body, "id"))
	assert.Equal(t, 36000, intField(body, "amount"))
	assert.Equal(t, 0, intField(body, "missing"))
	assert.Equal(t, "", stringField(body, "amount"))
	assert.Equal(t, 7, intField(map[string]interface{}{"n": 7}, "n"))
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	c := NewRazorpayClient("rzp_test", "secret", time.Second)
	_, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 0, Currency: "INR"})
	assert.Error(t, err)
}
