package shipments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/kenza-oss/kleerlogistics/pkg/db"
	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	"github.com/kenza-oss/kleerlogistics/pkg/enums"
	pkgerrors "github.com/kenza-oss/kleerlogistics/pkg/errors"
)

const trackingNumberAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes shipment lifecycle operations outside the delivery
// handshake itself.
type Service interface {
	Create(ctx context.Context, input CreateShipmentInput) (*models.Shipment, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Shipment, error)
	TrackingHistory(ctx context.Context, trackingNumber string) ([]models.TrackingEvent, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// CreateShipmentInput captures what a sender provides when posting a parcel.
type CreateShipmentInput struct {
	SenderID        uuid.UUID
	Description     string
	OriginCity      string
	DestinationCity string
	RecipientName   string
	RecipientPhone  string
	PriceCents      int
}

// NewService wires a shipments service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateShipmentInput) (*models.Shipment, error) {
	if input.SenderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.OriginCity) == "" || strings.TrimSpace(input.DestinationCity) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin and destination cities required")
	}
	if strings.TrimSpace(input.RecipientName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient name required")
	}
	if strings.TrimSpace(input.RecipientPhone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient phone required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	var created *models.Shipment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var lastErr error
		for i := 0; i < trackingNumberAttempts; i++ {
			shipment := &models.Shipment{
				TrackingNumber:  newTrackingNumber(time.Now()),
				SenderID:        input.SenderID,
				Status:          enums.ShipmentStatusPending,
				Description:     strings.TrimSpace(input.Description),
				OriginCity:      strings.TrimSpace(input.OriginCity),
				DestinationCity: strings.TrimSpace(input.DestinationCity),
				RecipientName:   strings.TrimSpace(input.RecipientName),
				RecipientPhone:  strings.TrimSpace(input.RecipientPhone),
				PriceCents:      input.PriceCents,
			}
			lastErr = repo.Create(ctx, shipment)
			if lastErr == nil {
				created = shipment
				break
			}
			if !dbpkg.IsUniqueViolation(lastErr, "") {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "create shipment")
			}
		}
		if created == nil {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "could not allocate a unique tracking number")
		}

		event := &models.TrackingEvent{
			ShipmentID:  created.ID,
			Status:      enums.ShipmentStatusPending,
			Note:        "shipment posted",
			ActorUserID: &input.SenderID,
		}
		if err := repo.CreateTrackingEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record tracking event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number required")
	}
	shipment, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment")
	}
	return shipment, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Shipment, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipments")
	}
	return rows, nil
}

func (s *service) TrackingHistory(ctx context.Context, trackingNumber string) ([]models.TrackingEvent, error) {
	shipment, err := s.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.ListTrackingEvents(ctx, shipment.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tracking events")
	}
	return events, nil
}

// newTrackingNumber builds identifiers like KL-2025-4F7A2C91.
func newTrackingNumber(now time.Time) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("tracking number entropy: %v", err))
	}
	return fmt.Sprintf("KL-%d-%s", now.Year(), strings.ToUpper(hex.EncodeToString(buf)))
}
