package payloads

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryInitiatedEvent signals that a traveler picked up a shipment
// and the recipient received a confirmation code.
type DeliveryInitiatedEvent struct {
	ShipmentID     uuid.UUID `json:"shipment_id"`
	TrackingNumber string    `json:"tracking_number"`
	TravelerID     uuid.UUID `json:"traveler_id"`
	RecipientPhone string    `json:"recipient_phone"`
	OTPExpiresAt   time.Time `json:"otp_expires_at"`
}

// DeliveryOTPGeneratedEvent is emitted when a confirmation code is
// issued for an in-transit shipment.
type DeliveryOTPGeneratedEvent struct {
	ShipmentID     uuid.UUID `json:"shipment_id"`
	TrackingNumber string    `json:"tracking_number"`
	OTPID          uuid.UUID `json:"otp_id"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// DeliveryOTPResentEvent is emitted when an active code is redelivered
// to the recipient.
type DeliveryOTPResentEvent struct {
	ShipmentID     uuid.UUID `json:"shipment_id"`
	TrackingNumber string    `json:"tracking_number"`
	OTPID          uuid.UUID `json:"otp_id"`
	ResendCount    int64     `json:"resend_count"`
}

// DeliveryConfirmedEvent is emitted when the recipient's code checks
// out and the shipment flips to delivered.
type DeliveryConfirmedEvent struct {
	ShipmentID     uuid.UUID `json:"shipment_id"`
	TrackingNumber string    `json:"tracking_number"`
	TravelerID     uuid.UUID `json:"traveler_id"`
	DeliveredAt    time.Time `json:"delivered_at"`
}

// TravelerPayoutRecordedEvent reports that delivery earnings were
// credited to the traveler's wallet.
type TravelerPayoutRecordedEvent struct {
	ShipmentID   uuid.UUID `json:"shipment_id"`
	TravelerID   uuid.UUID `json:"traveler_id"`
	EntryID      uuid.UUID `json:"entry_id"`
	AmountCents  int       `json:"amount_cents"`
	CommissionBP int       `json:"commission_bp"`
}
