package sms

import (
	"context"
	"fmt"
	"strings"

	"github.com/kenza-oss/kleerlogistics/pkg/config"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
)

// Sender dispatches a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, to string, body string) error
}

// ConfirmationMessage renders the SMS sent to a recipient alongside
// their delivery confirmation code.
func ConfirmationMessage(code string, trackingNumber string) string {
	return fmt.Sprintf(
		"KleerLogistics: votre code de confirmation pour le colis %s est %s. Il expire dans 24h. Communiquez-le uniquement au voyageur lors de la remise.",
		trackingNumber, code,
	)
}

// NewSender selects a Sender implementation from configuration.
func NewSender(cfg config.SMSConfig, logg *logger.Logger) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "twilio":
		return NewTwilioSender(cfg)
	case "", "console":
		return NewConsoleSender(logg)
	default:
		return nil, fmt.Errorf("unknown sms provider %q", cfg.Provider)
	}
}
