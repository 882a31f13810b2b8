package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	"github.com/kenza-oss/kleerlogistics/pkg/enums"
)

// Repository manages persistence for wallet accounts and entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error)
	CreateAccount(ctx context.Context, account *models.WalletAccount) error
	CreateEntry(ctx context.Context, entry *models.WalletEntry) error
	ListEntriesByAccountID(ctx context.Context, accountID uuid.UUID) ([]models.WalletEntry, error)
	HasEarningsForShipment(ctx context.Context, shipmentID uuid.UUID) (bool, error)
	// CreditAccount applies the amount and bumps the delivery counter.
	CreditAccount(ctx context.Context, accountID uuid.UUID, amountCents int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error) {
	var account models.WalletAccount
	if err := r.db.WithContext(ctx).First(&account, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) CreateAccount(ctx context.Context, account *models.WalletAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.WalletEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntriesByAccountID(ctx context.Context, accountID uuid.UUID) ([]models.WalletEntry, error) {
	var entries []models.WalletEntry
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) HasEarningsForShipment(ctx context.Context, shipmentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WalletEntry{}).
		Where("shipment_id = ? AND type = ?", shipmentID, enums.WalletEntryDeliveryEarnings).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreditAccount(ctx context.Context, accountID uuid.UUID, amountCents int) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"balance_cents":    gorm.Expr("balance_cents + ?", amountCents),
			"total_deliveries": gorm.Expr("total_deliveries + 1"),
		}).Error
}
