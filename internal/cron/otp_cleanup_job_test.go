package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kenza-oss/kleerlogistics/internal/delivery"
	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	"github.com/kenza-oss/kleerlogistics/pkg/enums"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
)

func TestOTPCleanupJobDeletesExpiredRows(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	repo := &fakeOTPCleanupRepo{}
	job := newOTPCleanupJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !repo.lastCutoff.Equal(now) {
		t.Fatalf("expected cutoff %s, got %s", now, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestOTPCleanupJobPropagatesError(t *testing.T) {
	repo := &fakeOTPCleanupRepo{err: errors.New("boom")}
	job := newOTPCleanupJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewOTPCleanupJobValidatesParams(t *testing.T) {
	_, err := NewOTPCleanupJob(OTPCleanupJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		DB:     otpCleanupTxRunner{},
	})
	if err == nil {
		t.Fatal("expected error for missing repository")
	}
}

func newOTPCleanupJob(t *testing.T, repo *fakeOTPCleanupRepo) *otpCleanupJob {
	t.Helper()
	jobIface, err := NewOTPCleanupJob(OTPCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		DB:         otpCleanupTxRunner{},
		Repository: repo,
	})
	if err != nil {
		t.Fatalf("NewOTPCleanupJob: %v", err)
	}
	job, ok := jobIface.(*otpCleanupJob)
	if !ok {
		t.Fatalf("expected otpCleanupJob, got %T", jobIface)
	}
	return job
}

type fakeOTPCleanupRepo struct {
	lastCutoff time.Time
	called     int
	err        error
}

func (f *fakeOTPCleanupRepo) WithTx(tx *gorm.DB) delivery.Repository {
	return f
}

func (f *fakeOTPCleanupRepo) Create(ctx context.Context, otp *models.DeliveryOTP) error {
	return nil
}

func (f *fakeOTPCleanupRepo) FindActive(ctx context.Context, shipmentID uuid.UUID, now time.Time) (*models.DeliveryOTP, error) {
	return nil, nil
}

func (f *fakeOTPCleanupRepo) FindUnused(ctx context.Context, shipmentID uuid.UUID) (*models.DeliveryOTP, error) {
	return nil, nil
}

func (f *fakeOTPCleanupRepo) FindLatest(ctx context.Context, shipmentID uuid.UUID) (*models.DeliveryOTP, error) {
	return nil, nil
}

func (f *fakeOTPCleanupRepo) Consume(ctx context.Context, id uuid.UUID, usedByID uuid.UUID, usedAt time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeOTPCleanupRepo) SetSMSStatus(ctx context.Context, id uuid.UUID, status enums.SMSDispatchStatus) error {
	return nil
}

func (f *fakeOTPCleanupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeOTPCleanupRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

type otpCleanupTxRunner struct{}

func (otpCleanupTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}
