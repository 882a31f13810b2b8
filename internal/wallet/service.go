package wallet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	"github.com/kenza-oss/kleerlogistics/pkg/enums"
)

const maxCommissionBP = 10000

// Service credits travelers when deliveries settle.
type Service interface {
	// ReleaseEarnings credits the traveler for a delivered shipment.
	// Calling it twice for the same shipment is a no-op; the first entry
	// wins. Must run inside the caller's transaction.
	ReleaseEarnings(ctx context.Context, tx *gorm.DB, input ReleaseEarningsInput) (*models.WalletEntry, error)
	Account(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error)
}

type service struct {
	repo Repository
}

// ReleaseEarningsInput captures the data a payout requires.
type ReleaseEarningsInput struct {
	ShipmentID   uuid.UUID
	TravelerID   uuid.UUID
	PriceCents   int
	CommissionBP int
}

type earningsMetadata struct {
	ShipmentID   uuid.UUID `json:"shipment_id"`
	PriceCents   int       `json:"price_cents"`
	CommissionBP int       `json:"commission_bp"`
}

// NewService wires a wallet service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

// PayoutCents computes the traveler's share after platform commission.
func PayoutCents(priceCents int, commissionBP int) int {
	if commissionBP < 0 {
		commissionBP = 0
	}
	if commissionBP > maxCommissionBP {
		commissionBP = maxCommissionBP
	}
	return priceCents * (maxCommissionBP - commissionBP) / maxCommissionBP
}

func (s *service) ReleaseEarnings(ctx context.Context, tx *gorm.DB, input ReleaseEarningsInput) (*models.WalletEntry, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if input.ShipmentID == uuid.Nil {
		return nil, fmt.Errorf("shipment id is required")
	}
	if input.TravelerID == uuid.Nil {
		return nil, fmt.Errorf("traveler id is required")
	}
	if input.PriceCents < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}

	repo := s.repo.WithTx(tx)

	settled, err := repo.HasEarningsForShipment(ctx, input.ShipmentID)
	if err != nil {
		return nil, err
	}
	if settled {
		return nil, nil
	}

	account, err := repo.FindAccountByUserID(ctx, input.TravelerID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		account = &models.WalletAccount{UserID: input.TravelerID}
		if err := repo.CreateAccount(ctx, account); err != nil {
			return nil, err
		}
	}

	amount := PayoutCents(input.PriceCents, input.CommissionBP)
	metadata, err := json.Marshal(earningsMetadata{
		ShipmentID:   input.ShipmentID,
		PriceCents:   input.PriceCents,
		CommissionBP: input.CommissionBP,
	})
	if err != nil {
		return nil, err
	}

	shipmentID := input.ShipmentID
	entry := &models.WalletEntry{
		AccountID:   account.ID,
		ShipmentID:  &shipmentID,
		Type:        enums.WalletEntryDeliveryEarnings,
		AmountCents: amount,
		Metadata:    metadata,
	}
	if err := repo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	if err := repo.CreditAccount(ctx, account.ID, amount); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Account(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	account, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return account, nil
}
