// Package cache is an optional read-through cache for booking reads. It is never
// consulted before a state change; the database stays the system of record.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/hotelbooking/logger"
	"github.com/joy095/hotelbooking/models/booking_models"
	"github.com/redis/go-redis/v9"
)

const bookingKeyPrefix = "booking:"

// BookingCache stores serialized bookings in Redis. A BookingCache without a client
// misses on every read and ignores writes.
type BookingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBookingCache(client *redis.Client, ttl time.Duration) *BookingCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &BookingCache{client: client, ttl: ttl}
}

func bookingKey(id uuid.UUID) string {
	return bookingKeyPrefix + id.String()
}

// Get returns the cached booking, or nil on a miss.
func (c *BookingCache) Get(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	val, err := c.client.Get(ctx, bookingKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking from redis: %w", err)
	}

	var b booking_models.Booking
	if err := json.Unmarshal(val, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached booking: %w", err)
	}
	return &b, nil
}

func (c *BookingCache) Set(ctx context.Context, b *booking_models.Booking) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal booking: %w", err)
	}
	if err := c.client.Set(ctx, bookingKey(b.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set booking in redis: %w", err)
	}
	return nil
}

// Invalidate drops a booking after any change. Failures are logged only; the short TTL
// bounds staleness.
func (c *BookingCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, bookingKey(id)).Err(); err != nil {
		logger.WarnLogger.Warnf("Failed to invalidate cached booking %s: %v", id, err)
	}
}

// GetOrLoad returns the cached booking or loads it and fills the cache. Cache errors
// fall through to load.
func (c *BookingCache) GetOrLoad(ctx context.Context, id uuid.UUID, load func(context.Context, uuid.UUID) (*booking_models.Booking, error)) (*booking_models.Booking, error) {
	b, err := c.Get(ctx, id)
	if err != nil {
		logger.WarnLogger.Warnf("Booking cache read failed for %s: %v", id, err)
	}
	if b != nil {
		return b, nil
	}

	b, err = load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, b); err != nil {
		logger.WarnLogger.Warnf("Booking cache write failed for %s: %v", id, err)
	}
	return b, nil
}
