package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kenza-oss/kleerlogistics/pkg/enums"
)

// DeliveryOTP is a single-use confirmation code sent to a shipment's
// recipient. The code is consumed by the assigned traveler when the
// parcel is handed over. Recipient name and phone are snapshots taken
// at generation time, decoupled from later shipment edits.
type DeliveryOTP struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShipmentID     uuid.UUID               `gorm:"column:shipment_id;type:uuid;not null;index"`
	Code           string                  `gorm:"column:code;type:char(6);not null"`
	RecipientName  string                  `gorm:"column:recipient_name;not null"`
	RecipientPhone string                  `gorm:"column:recipient_phone;not null"`
	GeneratedByID  uuid.UUID               `gorm:"column:generated_by_id;type:uuid;not null"`
	SMSStatus      enums.SMSDispatchStatus `gorm:"column:sms_status;not null;default:pending"`
	ExpiresAt      time.Time               `gorm:"column:expires_at;not null;index"`
	IsUsed         bool                    `gorm:"column:is_used;not null;default:false"`
	UsedAt         *time.Time              `gorm:"column:used_at"`
	UsedByID       *uuid.UUID              `gorm:"column:used_by_id;type:uuid"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
}
