package delivery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kenza-oss/kleerlogistics/pkg/config"
)

const (
	resendCounterName = "delivery_otp_resend"
	failedCounterName = "delivery_otp_failed"
)

type counterStore interface {
	Get(ctx context.Context, key string) (string, error)
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Del(ctx context.Context, keys ...string) error
	CounterKey(name string) string
}

// Counters tracks per-shipment resend and failed-attempt counts in
// redis. Both decay on their own; resets happen on successful
// verification.
type Counters struct {
	store counterStore
	cfg   config.DeliveryConfig
}

func NewCounters(store counterStore, cfg config.DeliveryConfig) (*Counters, error) {
	if store == nil {
		return nil, fmt.Errorf("counter store required")
	}
	return &Counters{store: store, cfg: cfg}, nil
}

func (c *Counters) resendKey(trackingNumber string) string {
	return c.store.CounterKey(resendCounterName + ":" + trackingNumber)
}

func (c *Counters) failedKey(trackingNumber string) string {
	return c.store.CounterKey(failedCounterName + ":" + trackingNumber)
}

// ResendCount returns the current resend count inside the rolling window.
func (c *Counters) ResendCount(ctx context.Context, trackingNumber string) (int64, error) {
	raw, err := c.store.Get(ctx, c.resendKey(trackingNumber))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing resend counter: %w", err)
	}
	return count, nil
}

// FailedCount returns the current failed-attempt count.
func (c *Counters) FailedCount(ctx context.Context, trackingNumber string) (int64, error) {
	raw, err := c.store.Get(ctx, c.failedKey(trackingNumber))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing failed counter: %w", err)
	}
	return count, nil
}

// IncrResend bumps the resend counter, starting the window on first use.
func (c *Counters) IncrResend(ctx context.Context, trackingNumber string) (int64, error) {
	return c.store.IncrWithTTL(ctx, c.resendKey(trackingNumber), c.cfg.ResendWindow)
}

// IncrFailed bumps the failed-attempt counter, starting its TTL on first use.
func (c *Counters) IncrFailed(ctx context.Context, trackingNumber string) (int64, error) {
	return c.store.IncrWithTTL(ctx, c.failedKey(trackingNumber), c.cfg.FailedAttemptTTL)
}

// Reset clears both counters for the shipment.
func (c *Counters) Reset(ctx context.Context, trackingNumber string) error {
	return c.store.Del(ctx, c.resendKey(trackingNumber), c.failedKey(trackingNumber))
}
