package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kenza-oss/kleerlogistics/internal/delivery"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type OTPCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository otpCleanupRepo
}

type otpCleanupRepo interface {
	WithTx(tx *gorm.DB) delivery.Repository
}

// NewOTPCleanupJob purges every confirmation code past its expiry,
// consumed or not. Validity checks test expiry directly, so a late
// sweep never lets a stale code through.
func NewOTPCleanupJob(params OTPCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("delivery otp repository required")
	}
	return &otpCleanupJob{
		logg: params.Logger,
		db:   params.DB,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type otpCleanupJob struct {
	logg *logger.Logger
	db   txRunner
	repo otpCleanupRepo
	now  func() time.Time
}

func (j *otpCleanupJob) Name() string { return "otp-cleanup" }

func (j *otpCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.WithTx(tx).DeleteExpired(ctx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("otp cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "expired otp cleanup complete")
	return nil
}
