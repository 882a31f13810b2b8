package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/kenza-oss/kleerlogistics/pkg/config"
)

// TwilioSender dispatches SMS through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender builds a Twilio-backed sender from configuration.
func NewTwilioSender(cfg config.SMSConfig) (*TwilioSender, error) {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "" {
		return nil, fmt.Errorf("twilio account sid, auth token and from number are required")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &TwilioSender{client: client, from: cfg.TwilioFromNumber}, nil
}

// Send delivers body to the given E.164 phone number.
func (t *TwilioSender) Send(ctx context.Context, to string, body string) error {
	if t.client == nil {
		return fmt.Errorf("twilio client not initialized")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("sending sms: %w", err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}
	return nil
}
