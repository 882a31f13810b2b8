package shipments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	"github.com/kenza-oss/kleerlogistics/pkg/enums"
)

// Repository manages persistence for shipments and their tracking trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipment *models.Shipment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Shipment, error)
	// UpdateStatus flips the shipment status only when the row still holds
	// one of the expected statuses. Returns the number of rows changed.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.ShipmentStatus, to enums.ShipmentStatus) (int64, error)
	SetDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) (int64, error)
	// SetDeliveryOTPCode stores the code of the shipment's current
	// confirmation attempt for operational echo.
	SetDeliveryOTPCode(ctx context.Context, id uuid.UUID, code string) error
	CreateTrackingEvent(ctx context.Context, event *models.TrackingEvent) error
	ListTrackingEvents(ctx context.Context, shipmentID uuid.UUID) ([]models.TrackingEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a shipments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shipment *models.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.WithContext(ctx).
		First(&shipment, "tracking_number = ?", trackingNumber).Error; err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Shipment, error) {
	q := r.db.WithContext(ctx).
		Where("sender_id = ? OR traveler_id = ?", userID, userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Shipment
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from []enums.ShipmentStatus, to enums.ShipmentStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *repository) SetDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ? AND status = ?", id, enums.ShipmentStatusInTransit).
		Updates(map[string]any{
			"status":        enums.ShipmentStatusDelivered,
			"delivery_date": deliveredAt,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) SetDeliveryOTPCode(ctx context.Context, id uuid.UUID, code string) error {
	return r.db.WithContext(ctx).
		Model(&models.Shipment{}).
		Where("id = ?", id).
		Update("delivery_otp_code", code).Error
}

func (r *repository) CreateTrackingEvent(ctx context.Context, event *models.TrackingEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListTrackingEvents(ctx context.Context, shipmentID uuid.UUID) ([]models.TrackingEvent, error) {
	var events []models.TrackingEvent
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
