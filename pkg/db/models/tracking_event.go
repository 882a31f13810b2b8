package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kenza-oss/kleerlogistics/pkg/enums"
)

// TrackingEvent is an append-only audit row recorded whenever a
// shipment changes status.
type TrackingEvent struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShipmentID  uuid.UUID            `gorm:"column:shipment_id;type:uuid;not null;index"`
	Status      enums.ShipmentStatus `gorm:"column:status;type:shipment_status_enum;not null"`
	Note        string               `gorm:"column:note;type:text"`
	ActorUserID *uuid.UUID           `gorm:"column:actor_user_id;type:uuid"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
