package sms

import (
	"context"
	"fmt"

	"github.com/kenza-oss/kleerlogistics/pkg/logger"
)

// ConsoleSender logs messages instead of dispatching them. Used in dev
// and test environments.
type ConsoleSender struct {
	logg *logger.Logger
}

func NewConsoleSender(logg *logger.Logger) (*ConsoleSender, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &ConsoleSender{logg: logg}, nil
}

func (c *ConsoleSender) Send(ctx context.Context, to string, body string) error {
	ctx = c.logg.WithFields(ctx, map[string]any{"to": to, "body": body})
	c.logg.Info(ctx, "console sms dispatched")
	return nil
}
