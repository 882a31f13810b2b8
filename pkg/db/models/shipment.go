package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kenza-oss/kleerlogistics/pkg/enums"
)

// Shipment is a parcel posted by a sender and carried by a matched traveler.
type Shipment struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TrackingNumber  string               `gorm:"column:tracking_number;type:text;not null;uniqueIndex"`
	SenderID        uuid.UUID            `gorm:"column:sender_id;type:uuid;not null;index"`
	TravelerID      *uuid.UUID           `gorm:"column:traveler_id;type:uuid;index"`
	Status          enums.ShipmentStatus `gorm:"column:status;type:shipment_status_enum;not null;default:draft"`
	Description     string               `gorm:"column:description;type:text"`
	OriginCity      string               `gorm:"column:origin_city;not null"`
	DestinationCity string               `gorm:"column:destination_city;not null"`
	RecipientName   string               `gorm:"column:recipient_name;not null"`
	RecipientPhone  string               `gorm:"column:recipient_phone;not null"`
	PriceCents      int                  `gorm:"column:price_cents;not null"`
	DeliveryOTPCode *string              `gorm:"column:delivery_otp_code;type:char(6)"`
	DeliveryDate    *time.Time           `gorm:"column:delivery_date"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
