package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kenza-oss/kleerlogistics/pkg/enums"
)

// WalletAccount holds a traveler's accumulated earnings.
type WalletAccount struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	BalanceCents    int       `gorm:"column:balance_cents;not null;default:0"`
	TotalDeliveries int       `gorm:"column:total_deliveries;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// WalletEntry records an immutable money movement against a wallet
// account. Delivery earnings carry the shipment they settle; the unique
// index keeps a shipment from paying out twice.
type WalletEntry struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID   uuid.UUID             `gorm:"column:account_id;type:uuid;not null;index"`
	ShipmentID  *uuid.UUID            `gorm:"column:shipment_id;type:uuid;uniqueIndex:idx_wallet_entries_shipment_earnings,where:type = 'delivery_earnings'"`
	Type        enums.WalletEntryType `gorm:"column:type;type:wallet_entry_type_enum;not null"`
	AmountCents int                   `gorm:"column:amount_cents;not null"`
	Metadata    json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
