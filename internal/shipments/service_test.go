package shipments

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	"github.com/kenza-oss/kleerlogistics/pkg/enums"
	pkgerrors "github.com/kenza-oss/kleerlogistics/pkg/errors"
)

type fakeShipmentStore struct {
	shipment   *models.Shipment
	created    []*models.Shipment
	events     []*models.TrackingEvent
	createErrs []error
	listLimits []int
}

func (f *fakeShipmentStore) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeShipmentStore) Create(ctx context.Context, shipment *models.Shipment) error {
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return err
		}
	}
	shipment.ID = uuid.New()
	f.created = append(f.created, shipment)
	return nil
}

func (f *fakeShipmentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	return f.shipment, nil
}

func (f *fakeShipmentStore) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	if f.shipment == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.shipment, nil
}

func (f *fakeShipmentStore) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Shipment, error) {
	f.listLimits = append(f.listLimits, limit)
	return nil, nil
}

func (f *fakeShipmentStore) UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.ShipmentStatus, to enums.ShipmentStatus) (int64, error) {
	return 0, nil
}

func (f *fakeShipmentStore) SetDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeShipmentStore) SetDeliveryOTPCode(ctx context.Context, id uuid.UUID, code string) error {
	return nil
}

func (f *fakeShipmentStore) CreateTrackingEvent(ctx context.Context, event *models.TrackingEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeShipmentStore) ListTrackingEvents(ctx context.Context, shipmentID uuid.UUID) ([]models.TrackingEvent, error) {
	return nil, nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func validInput() CreateShipmentInput {
	return CreateShipmentInput{
		SenderID:        uuid.New(),
		Description:     "documents",
		OriginCity:      "Alger",
		DestinationCity: "Oran",
		RecipientName:   "Nadia B",
		RecipientPhone:  "+213550123456",
		PriceCents:      450000,
	}
}

func TestCreateShipmentAssignsTrackingNumber(t *testing.T) {
	repo := &fakeShipmentStore{}
	svc, err := NewService(repo, passthroughTx{})
	require.NoError(t, err)

	shipment, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^KL-\d{4}-[0-9A-F]{8}$`), shipment.TrackingNumber)
	assert.Equal(t, enums.ShipmentStatusPending, shipment.Status)
	require.Len(t, repo.events, 1)
	assert.Equal(t, enums.ShipmentStatusPending, repo.events[0].Status)
	assert.Equal(t, shipment.ID, repo.events[0].ShipmentID)
}

func TestCreateShipmentRetriesOnTrackingCollision(t *testing.T) {
	repo := &fakeShipmentStore{createErrs: []error{
		errors.New(`duplicate key value violates unique constraint "idx_shipments_tracking_number"`),
	}}
	svc, err := NewService(repo, passthroughTx{})
	require.NoError(t, err)

	shipment, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, shipment.TrackingNumber)
	require.Len(t, repo.created, 1)
}

func TestCreateShipmentValidatesInput(t *testing.T) {
	svc, err := NewService(&fakeShipmentStore{}, passthroughTx{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*CreateShipmentInput)
		code   pkgerrors.Code
	}{
		{name: "missing sender", mutate: func(in *CreateShipmentInput) { in.SenderID = uuid.Nil }, code: pkgerrors.CodeUnauthorized},
		{name: "missing origin", mutate: func(in *CreateShipmentInput) { in.OriginCity = " " }, code: pkgerrors.CodeValidation},
		{name: "missing recipient name", mutate: func(in *CreateShipmentInput) { in.RecipientName = "" }, code: pkgerrors.CodeValidation},
		{name: "missing recipient phone", mutate: func(in *CreateShipmentInput) { in.RecipientPhone = "" }, code: pkgerrors.CodeValidation},
		{name: "negative price", mutate: func(in *CreateShipmentInput) { in.PriceCents = -1 }, code: pkgerrors.CodeValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), input)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed, "expected typed error, got %v", err)
			assert.Equal(t, tc.code, typed.Code())
		})
	}
}

func TestCreateShipmentGivesUpAfterRepeatedCollisions(t *testing.T) {
	collision := errors.New(`duplicate key value violates unique constraint "idx_shipments_tracking_number"`)
	repo := &fakeShipmentStore{createErrs: []error{collision, collision, collision}}
	svc, err := NewService(repo, passthroughTx{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validInput())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Empty(t, repo.created)
}

func TestListForUserForwardsLimit(t *testing.T) {
	repo := &fakeShipmentStore{}
	svc, err := NewService(repo, passthroughTx{})
	require.NoError(t, err)

	_, err = svc.ListForUser(context.Background(), uuid.New(), 25)
	require.NoError(t, err)
	require.Equal(t, []int{25}, repo.listLimits)
}

func TestGetByTrackingNumberMapsNotFound(t *testing.T) {
	svc, err := NewService(&fakeShipmentStore{}, passthroughTx{})
	require.NoError(t, err)

	_, err = svc.GetByTrackingNumber(context.Background(), "KL-2026-00000000")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
