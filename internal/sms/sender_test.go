package sms

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kenza-oss/kleerlogistics/pkg/config"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
)

func TestConfirmationMessageIncludesCodeAndTracking(t *testing.T) {
	msg := ConfirmationMessage("042137", "KL-2025-0042")
	if !strings.Contains(msg, "042137") {
		t.Fatalf("message missing code: %s", msg)
	}
	if !strings.Contains(msg, "KL-2025-0042") {
		t.Fatalf("message missing tracking number: %s", msg)
	}
}

func TestNewSenderSelectsProvider(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})

	sender, err := NewSender(config.SMSConfig{Provider: "console"}, logg)
	if err != nil {
		t.Fatalf("console sender: %v", err)
	}
	if _, ok := sender.(*ConsoleSender); !ok {
		t.Fatalf("expected console sender, got %T", sender)
	}

	if _, err := NewSender(config.SMSConfig{Provider: "twilio"}, logg); err == nil {
		t.Fatal("expected error for twilio without credentials")
	}

	if _, err := NewSender(config.SMSConfig{Provider: "smoke-signals"}, logg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestConsoleSenderSend(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	sender, err := NewConsoleSender(logg)
	if err != nil {
		t.Fatalf("new console sender: %v", err)
	}
	if err := sender.Send(context.Background(), "+33612345678", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(buf.String(), "+33612345678") {
		t.Fatalf("expected recipient in log output, got %s", buf.String())
	}
}
