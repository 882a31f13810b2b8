package delivery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	"github.com/kenza-oss/kleerlogistics/pkg/enums"
)

// Repository manages persistence for delivery confirmation codes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, otp *models.DeliveryOTP) error
	// FindActive returns the unconsumed, unexpired code for the shipment.
	FindActive(ctx context.Context, shipmentID uuid.UUID, now time.Time) (*models.DeliveryOTP, error)
	// FindUnused returns the unconsumed code regardless of expiry.
	FindUnused(ctx context.Context, shipmentID uuid.UUID) (*models.DeliveryOTP, error)
	FindLatest(ctx context.Context, shipmentID uuid.UUID) (*models.DeliveryOTP, error)
	// Consume marks the row used only if it is still unconsumed and
	// unexpired, recording who verified it. Returns the number of rows
	// changed.
	Consume(ctx context.Context, id uuid.UUID, usedByID uuid.UUID, usedAt time.Time) (int64, error)
	SetSMSStatus(ctx context.Context, id uuid.UUID, status enums.SMSDispatchStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired sweeps every row past its expiry, consumed or not.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a delivery OTP repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, otp *models.DeliveryOTP) error {
	return r.db.WithContext(ctx).Create(otp).Error
}

func (r *repository) FindActive(ctx context.Context, shipmentID uuid.UUID, now time.Time) (*models.DeliveryOTP, error) {
	var otp models.DeliveryOTP
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ? AND is_used = ? AND expires_at > ?", shipmentID, false, now).
		First(&otp).Error; err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *repository) FindUnused(ctx context.Context, shipmentID uuid.UUID) (*models.DeliveryOTP, error) {
	var otp models.DeliveryOTP
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ? AND is_used = ?", shipmentID, false).
		First(&otp).Error; err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *repository) FindLatest(ctx context.Context, shipmentID uuid.UUID) (*models.DeliveryOTP, error) {
	var otp models.DeliveryOTP
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("created_at DESC").
		First(&otp).Error; err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *repository) Consume(ctx context.Context, id uuid.UUID, usedByID uuid.UUID, usedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DeliveryOTP{}).
		Where("id = ? AND is_used = ? AND expires_at > ?", id, false, usedAt).
		Updates(map[string]any{
			"is_used":    true,
			"used_at":    usedAt,
			"used_by_id": usedByID,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) SetSMSStatus(ctx context.Context, id uuid.UUID, status enums.SMSDispatchStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliveryOTP{}).
		Where("id = ?", id).
		Update("sms_status", status).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DeliveryOTP{}, "id = ?", id).Error
}

func (r *repository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.DeliveryOTP{})
	return res.RowsAffected, res.Error
}
