package wallet

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	"github.com/kenza-oss/kleerlogistics/pkg/enums"
)

type fakeWalletRepo struct {
	account  *models.WalletAccount
	settled  bool
	entries  []*models.WalletEntry
	accounts []*models.WalletAccount
	credits  map[uuid.UUID]int
}

func (f *fakeWalletRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeWalletRepo) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*models.WalletAccount, error) {
	if f.account == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.account, nil
}

func (f *fakeWalletRepo) CreateAccount(ctx context.Context, account *models.WalletAccount) error {
	account.ID = uuid.New()
	f.accounts = append(f.accounts, account)
	return nil
}

func (f *fakeWalletRepo) CreateEntry(ctx context.Context, entry *models.WalletEntry) error {
	entry.ID = uuid.New()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeWalletRepo) ListEntriesByAccountID(ctx context.Context, accountID uuid.UUID) ([]models.WalletEntry, error) {
	return nil, nil
}

func (f *fakeWalletRepo) HasEarningsForShipment(ctx context.Context, shipmentID uuid.UUID) (bool, error) {
	return f.settled, nil
}

func (f *fakeWalletRepo) CreditAccount(ctx context.Context, accountID uuid.UUID, amountCents int) error {
	if f.credits == nil {
		f.credits = map[uuid.UUID]int{}
	}
	f.credits[accountID] += amountCents
	return nil
}

func TestPayoutCents(t *testing.T) {
	tests := []struct {
		name         string
		priceCents   int
		commissionBP int
		want         int
	}{
		{name: "fifteen percent", priceCents: 450000, commissionBP: 1500, want: 382500},
		{name: "zero commission", priceCents: 10000, commissionBP: 0, want: 10000},
		{name: "full commission", priceCents: 10000, commissionBP: 10000, want: 0},
		{name: "negative clamps to zero", priceCents: 10000, commissionBP: -5, want: 10000},
		{name: "excess clamps to full", priceCents: 10000, commissionBP: 20000, want: 0},
		{name: "rounds down", priceCents: 999, commissionBP: 1500, want: 849},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PayoutCents(tc.priceCents, tc.commissionBP))
		})
	}
}

func TestReleaseEarningsCreditsTraveler(t *testing.T) {
	repo := &fakeWalletRepo{account: &models.WalletAccount{ID: uuid.New(), UserID: uuid.New()}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	shipmentID := uuid.New()
	entry, err := svc.ReleaseEarnings(context.Background(), &gorm.DB{}, ReleaseEarningsInput{
		ShipmentID:   shipmentID,
		TravelerID:   repo.account.UserID,
		PriceCents:   450000,
		CommissionBP: 1500,
	})
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, enums.WalletEntryDeliveryEarnings, entry.Type)
	assert.Equal(t, 382500, entry.AmountCents)
	require.NotNil(t, entry.ShipmentID)
	assert.Equal(t, shipmentID, *entry.ShipmentID)
	assert.Equal(t, 382500, repo.credits[repo.account.ID])

	var meta struct {
		ShipmentID   uuid.UUID `json:"shipment_id"`
		PriceCents   int       `json:"price_cents"`
		CommissionBP int       `json:"commission_bp"`
	}
	require.NoError(t, json.Unmarshal(entry.Metadata, &meta))
	assert.Equal(t, 1500, meta.CommissionBP)
}

func TestReleaseEarningsIsIdempotent(t *testing.T) {
	repo := &fakeWalletRepo{settled: true}
	svc, err := NewService(repo)
	require.NoError(t, err)

	entry, err := svc.ReleaseEarnings(context.Background(), &gorm.DB{}, ReleaseEarningsInput{
		ShipmentID:   uuid.New(),
		TravelerID:   uuid.New(),
		PriceCents:   450000,
		CommissionBP: 1500,
	})
	require.NoError(t, err)
	assert.Nil(t, entry, "a settled shipment must not pay out twice")
	assert.Empty(t, repo.entries)
	assert.Empty(t, repo.credits)
}

func TestReleaseEarningsCreatesAccountOnFirstPayout(t *testing.T) {
	repo := &fakeWalletRepo{}
	svc, err := NewService(repo)
	require.NoError(t, err)

	travelerID := uuid.New()
	entry, err := svc.ReleaseEarnings(context.Background(), &gorm.DB{}, ReleaseEarningsInput{
		ShipmentID:   uuid.New(),
		TravelerID:   travelerID,
		PriceCents:   10000,
		CommissionBP: 1000,
	})
	require.NoError(t, err)
	require.NotNil(t, entry)

	require.Len(t, repo.accounts, 1)
	assert.Equal(t, travelerID, repo.accounts[0].UserID)
	assert.Equal(t, 9000, entry.AmountCents)
}

func TestReleaseEarningsRequiresTransaction(t *testing.T) {
	svc, err := NewService(&fakeWalletRepo{})
	require.NoError(t, err)

	_, err = svc.ReleaseEarnings(context.Background(), nil, ReleaseEarningsInput{
		ShipmentID: uuid.New(),
		TravelerID: uuid.New(),
		PriceCents: 100,
	})
	assert.Error(t, err)
}
