package wallet

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	"github.com/kenza-oss/kleerlogistics/pkg/enums"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A distinct shared-cache database per test keeps rows from leaking
	// between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	accounts := `
CREATE TABLE IF NOT EXISTS wallet_accounts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  balance_cents INTEGER NOT NULL DEFAULT 0,
  total_deliveries INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	entries := `
CREATE TABLE IF NOT EXISTS wallet_entries (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  shipment_id TEXT,
  type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  metadata TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(accounts).Error)
	require.NoError(t, db.Exec(entries).Error)
	return db
}

func newTestAccount(t *testing.T, db *gorm.DB) *models.WalletAccount {
	t.Helper()

	account := &models.WalletAccount{ID: uuid.New(), UserID: uuid.New()}
	require.NoError(t, db.Create(account).Error)
	return account
}

func TestCreditAccountMovesBalanceAndCounter(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	account := newTestAccount(t, db)
	require.NoError(t, repo.CreditAccount(ctx, account.ID, 382500))
	require.NoError(t, repo.CreditAccount(ctx, account.ID, 10000))

	var stored models.WalletAccount
	require.NoError(t, db.First(&stored, "id = ?", account.ID).Error)
	assert.Equal(t, 392500, stored.BalanceCents)
	assert.Equal(t, 2, stored.TotalDeliveries)
}

func TestHasEarningsForShipment(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	account := newTestAccount(t, db)
	shipmentID := uuid.New()

	settled, err := repo.HasEarningsForShipment(ctx, shipmentID)
	require.NoError(t, err)
	assert.False(t, settled)

	sid := shipmentID
	entry := &models.WalletEntry{
		ID:          uuid.New(),
		AccountID:   account.ID,
		ShipmentID:  &sid,
		Type:        enums.WalletEntryDeliveryEarnings,
		AmountCents: 382500,
	}
	require.NoError(t, db.Create(entry).Error)

	settled, err = repo.HasEarningsForShipment(ctx, shipmentID)
	require.NoError(t, err)
	assert.True(t, settled)
}

func TestFindAccountByUserID(t *testing.T) {
	db := setupWalletTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	account := newTestAccount(t, db)

	found, err := repo.FindAccountByUserID(ctx, account.UserID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)

	_, err = repo.FindAccountByUserID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
