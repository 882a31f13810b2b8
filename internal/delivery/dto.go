package delivery

import (
	"time"

	"github.com/google/uuid"
)

// OTPStatus reports the confirmation state of a shipment without ever
// revealing the code itself.
type OTPStatus struct {
	TrackingNumber       string     `json:"tracking_number"`
	ShipmentStatus       string     `json:"shipment_status"`
	HasActiveOTP         bool       `json:"has_active_otp"`
	HasUsedOTP           bool       `json:"has_used_otp"`
	GeneratedAt          *time.Time `json:"generated_at,omitempty"`
	ExpiresAt            *time.Time `json:"expires_at,omitempty"`
	VerifiedAt           *time.Time `json:"verified_at,omitempty"`
	TimeRemainingMinutes int        `json:"time_remaining_minutes"`
	RecipientName        string     `json:"recipient_name"`
	RecipientPhone       string     `json:"recipient_phone"`
	ResendCount          int64      `json:"resend_count"`
	FailedAttempts       int64      `json:"failed_attempts"`
}

// VerifyResult is returned on successful confirmation. PayoutSettled is
// false when the delivery stands but the earnings credit failed and will
// be retried out-of-band.
type VerifyResult struct {
	ShipmentID    uuid.UUID  `json:"shipment_id"`
	DeliveredAt   time.Time  `json:"delivered_at"`
	PayoutCents   int        `json:"payout_cents"`
	PayoutSettled bool       `json:"payout_settled"`
	EntryID       *uuid.UUID `json:"entry_id,omitempty"`
}

// GenerateResult is returned when a code was issued and dispatched. The
// code is echoed back to the issuing traveler; it never reaches anyone
// else through the API.
type GenerateResult struct {
	OTPID     uuid.UUID `json:"otp_id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResendResult reports the resend counter after a successful redispatch.
type ResendResult struct {
	ResendCount int64     `json:"resend_count"`
	ExpiresAt   time.Time `json:"expires_at"`
}
