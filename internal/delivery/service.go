package delivery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kenza-oss/kleerlogistics/internal/shipments"
	"github.com/kenza-oss/kleerlogistics/internal/sms"
	"github.com/kenza-oss/kleerlogistics/internal/wallet"
	"github.com/kenza-oss/kleerlogistics/pkg/config"
	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	"github.com/kenza-oss/kleerlogistics/pkg/enums"
	pkgerrors "github.com/kenza-oss/kleerlogistics/pkg/errors"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
	"github.com/kenza-oss/kleerlogistics/pkg/outbox"
	"github.com/kenza-oss/kleerlogistics/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// EarningsReleaser credits the traveler once a delivery settles.
type EarningsReleaser interface {
	ReleaseEarnings(ctx context.Context, tx *gorm.DB, input wallet.ReleaseEarningsInput) (*models.WalletEntry, error)
}

type attemptCounters interface {
	ResendCount(ctx context.Context, trackingNumber string) (int64, error)
	FailedCount(ctx context.Context, trackingNumber string) (int64, error)
	IncrResend(ctx context.Context, trackingNumber string) (int64, error)
	IncrFailed(ctx context.Context, trackingNumber string) (int64, error)
	Reset(ctx context.Context, trackingNumber string) error
}

// Service implements the delivery confirmation handshake.
type Service interface {
	InitiateDelivery(ctx context.Context, input ActionInput) (*GenerateResult, error)
	GenerateOTP(ctx context.Context, input ActionInput) (*GenerateResult, error)
	ResendOTP(ctx context.Context, input ActionInput) (*ResendResult, error)
	VerifyOTP(ctx context.Context, input VerifyInput) (*VerifyResult, error)
	OTPStatus(ctx context.Context, input ActionInput) (*OTPStatus, error)
}

// ActionInput identifies the shipment and the authenticated actor.
type ActionInput struct {
	TrackingNumber string
	ActorUserID    uuid.UUID
	ActorRole      string
}

// VerifyInput carries the code offered at handover.
type VerifyInput struct {
	TrackingNumber string
	Code           string
	ActorUserID    uuid.UUID
	ActorRole      string
}

type service struct {
	otps         Repository
	shipments    shipments.Repository
	earnings     EarningsReleaser
	counters     attemptCounters
	sender       sms.Sender
	outbox       outboxPublisher
	users        userLookup
	tx           txRunner
	logg         *logger.Logger
	cfg          config.DeliveryConfig
	commissionBP int
}

// NewService builds the delivery service with the required dependencies.
func NewService(
	otps Repository,
	shipmentRepo shipments.Repository,
	earnings EarningsReleaser,
	counters attemptCounters,
	sender sms.Sender,
	outboxSvc outboxPublisher,
	users userLookup,
	tx txRunner,
	logg *logger.Logger,
	cfg config.DeliveryConfig,
	commissionBP int,
) (Service, error) {
	if otps == nil {
		return nil, fmt.Errorf("delivery otp repository required")
	}
	if shipmentRepo == nil {
		return nil, fmt.Errorf("shipments repository required")
	}
	if earnings == nil {
		return nil, fmt.Errorf("earnings releaser required")
	}
	if counters == nil {
		return nil, fmt.Errorf("attempt counters required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sms sender required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if users == nil {
		return nil, fmt.Errorf("user lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.OTPTTL <= 0 {
		return nil, fmt.Errorf("otp ttl must be positive")
	}
	return &service{
		otps:         otps,
		shipments:    shipmentRepo,
		earnings:     earnings,
		counters:     counters,
		sender:       sender,
		outbox:       outboxSvc,
		users:        users,
		tx:           tx,
		logg:         logg,
		cfg:          cfg,
		commissionBP: commissionBP,
	}, nil
}

// InitiateDelivery flips a matched shipment to in transit and issues the
// recipient's confirmation code. Everything happens in one transaction;
// if the SMS cannot be dispatched the shipment stays matched.
func (s *service) InitiateDelivery(ctx context.Context, input ActionInput) (*GenerateResult, error) {
	if err := validateAction(input); err != nil {
		return nil, err
	}
	ctx = s.logg.WithTrackingNumber(ctx, input.TrackingNumber)

	var result *GenerateResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shipmentRepo := s.shipments.WithTx(tx)
		shipment, err := s.loadShipment(ctx, shipmentRepo, input.TrackingNumber)
		if err != nil {
			return err
		}
		if shipment.TravelerID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no traveler assigned to shipment")
		}
		if *shipment.TravelerID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "shipment is assigned to another traveler")
		}

		from := []enums.ShipmentStatus{enums.ShipmentStatusMatched, enums.ShipmentStatusPending}
		changed, err := shipmentRepo.UpdateStatus(ctx, shipment.ID, from, enums.ShipmentStatusInTransit)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shipment status")
		}
		if changed == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "delivery cannot start from current shipment state")
		}

		trackingEvent := &models.TrackingEvent{
			ShipmentID:  shipment.ID,
			Status:      enums.ShipmentStatusInTransit,
			Note:        "delivery started",
			ActorUserID: &input.ActorUserID,
		}
		if err := shipmentRepo.CreateTrackingEvent(ctx, trackingEvent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record tracking event")
		}

		otp, err := s.issueCode(ctx, tx, shipment, input.ActorUserID)
		if err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventDeliveryInitiated,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: payloads.DeliveryInitiatedEvent{
				ShipmentID:     shipment.ID,
				TrackingNumber: shipment.TrackingNumber,
				TravelerID:     input.ActorUserID,
				RecipientPhone: shipment.RecipientPhone,
				OTPExpiresAt:   otp.ExpiresAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit delivery initiated")
		}

		result = &GenerateResult{OTPID: otp.ID, Code: otp.Code, ExpiresAt: otp.ExpiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(ctx, "delivery initiated")
	return result, nil
}

// GenerateOTP issues a fresh code for an in-transit shipment that has
// none. An unexpired code must be resent, not replaced.
func (s *service) GenerateOTP(ctx context.Context, input ActionInput) (*GenerateResult, error) {
	if err := validateAction(input); err != nil {
		return nil, err
	}
	ctx = s.logg.WithTrackingNumber(ctx, input.TrackingNumber)

	var result *GenerateResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shipmentRepo := s.shipments.WithTx(tx)
		shipment, err := s.loadShipment(ctx, shipmentRepo, input.TrackingNumber)
		if err != nil {
			return err
		}
		if shipment.Status != enums.ShipmentStatusInTransit {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "shipment is not in transit")
		}
		if shipment.TravelerID == nil || *shipment.TravelerID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "shipment is assigned to another traveler")
		}

		otp, err := s.issueCode(ctx, tx, shipment, input.ActorUserID)
		if err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventDeliveryOTPGenerated,
			AggregateType: enums.AggregateDeliveryOTP,
			AggregateID:   otp.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: payloads.DeliveryOTPGeneratedEvent{
				ShipmentID:     shipment.ID,
				TrackingNumber: shipment.TrackingNumber,
				OTPID:          otp.ID,
				ExpiresAt:      otp.ExpiresAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit otp generated")
		}

		result = &GenerateResult{OTPID: otp.ID, Code: otp.Code, ExpiresAt: otp.ExpiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(ctx, "delivery otp generated")
	return result, nil
}

// issueCode creates and dispatches a confirmation code for the shipment
// inside the caller's transaction. An active code aborts with a state
// conflict; a stale unused one is replaced.
func (s *service) issueCode(ctx context.Context, tx *gorm.DB, shipment *models.Shipment, issuerID uuid.UUID) (*models.DeliveryOTP, error) {
	if strings.TrimSpace(shipment.RecipientPhone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipment has no recipient phone")
	}

	otpRepo := s.otps.WithTx(tx)
	now := time.Now()

	existing, err := otpRepo.FindUnused(ctx, shipment.ID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing otp")
	}
	if existing != nil {
		if existing.ExpiresAt.After(now) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "an active confirmation code already exists, resend it instead")
		}
		if err := otpRepo.Delete(ctx, existing.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge expired otp")
		}
	}

	code, err := generateCode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate confirmation code")
	}

	otp := &models.DeliveryOTP{
		ShipmentID:     shipment.ID,
		Code:           code,
		RecipientName:  shipment.RecipientName,
		RecipientPhone: shipment.RecipientPhone,
		GeneratedByID:  issuerID,
		SMSStatus:      enums.SMSDispatchPending,
		ExpiresAt:      now.Add(s.cfg.OTPTTL),
	}
	if err := otpRepo.Create(ctx, otp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store confirmation code")
	}

	// A failed dispatch aborts the transaction, so the row never
	// survives unsent.
	body := sms.ConfirmationMessage(code, shipment.TrackingNumber)
	if err := s.sender.Send(ctx, shipment.RecipientPhone, body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dispatch confirmation sms")
	}
	if err := otpRepo.SetSMSStatus(ctx, otp.ID, enums.SMSDispatchSent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sms dispatch")
	}
	otp.SMSStatus = enums.SMSDispatchSent
	if err := s.shipments.WithTx(tx).SetDeliveryOTPCode(ctx, shipment.ID, code); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store code on shipment")
	}
	return otp, nil
}

// ResendOTP redelivers the active code to the recipient. The code and
// its expiry are untouched; only the resend counter moves.
func (s *service) ResendOTP(ctx context.Context, input ActionInput) (*ResendResult, error) {
	if err := validateAction(input); err != nil {
		return nil, err
	}
	ctx = s.logg.WithTrackingNumber(ctx, input.TrackingNumber)

	shipment, err := s.loadShipment(ctx, s.shipments, input.TrackingNumber)
	if err != nil {
		return nil, err
	}
	if !isParticipant(shipment, input.ActorUserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant of this shipment")
	}
	if shipment.Status != enums.ShipmentStatusInTransit {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipment is not in transit")
	}

	otp, err := s.otps.FindActive(ctx, shipment.ID, time.Now())
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no active confirmation code to resend")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active otp")
	}

	count, err := s.counters.ResendCount(ctx, input.TrackingNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read resend counter")
	}
	if count >= int64(s.cfg.ResendLimit) {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "resend limit reached, try again later")
	}

	body := sms.ConfirmationMessage(otp.Code, shipment.TrackingNumber)
	if err := s.sender.Send(ctx, otp.RecipientPhone, body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dispatch confirmation sms")
	}

	// The counter only moves after a successful dispatch, so a failed
	// provider call never burns the recipient's quota.
	newCount, err := s.counters.IncrResend(ctx, input.TrackingNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump resend counter")
	}

	emitErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryOTPResent,
			AggregateType: enums.AggregateDeliveryOTP,
			AggregateID:   otp.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: payloads.DeliveryOTPResentEvent{
				ShipmentID:     shipment.ID,
				TrackingNumber: shipment.TrackingNumber,
				OTPID:          otp.ID,
				ResendCount:    newCount,
			},
		})
	})
	if emitErr != nil {
		s.logg.Error(ctx, "emit otp resent event", emitErr)
	}

	s.logg.Info(ctx, "delivery otp resent")
	return &ResendResult{ResendCount: newCount, ExpiresAt: otp.ExpiresAt}, nil
}

// VerifyOTP consumes the code at handover. The delivery fact commits
// first; the traveler's earnings settle as a best-effort follow-on, so a
// payout failure never unwinds a confirmed delivery.
func (s *service) VerifyOTP(ctx context.Context, input VerifyInput) (*VerifyResult, error) {
	if strings.TrimSpace(input.TrackingNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !isWellFormedCode(input.Code) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code must be exactly six digits")
	}
	ctx = s.logg.WithTrackingNumber(ctx, input.TrackingNumber)

	var result *VerifyResult
	var confirmed *models.Shipment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		shipmentRepo := s.shipments.WithTx(tx)
		otpRepo := s.otps.WithTx(tx)

		shipment, err := s.loadShipment(ctx, shipmentRepo, input.TrackingNumber)
		if err != nil {
			return err
		}

		now := time.Now()
		otp, err := otpRepo.FindActive(ctx, shipment.ID, now)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return s.rejectCode(ctx, input.TrackingNumber)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active otp")
		}
		if otp.Code != input.Code {
			return s.rejectCode(ctx, input.TrackingNumber)
		}
		if otp.GeneratedByID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "code can only be confirmed by the traveler who issued it")
		}

		consumed, err := otpRepo.Consume(ctx, otp.ID, input.ActorUserID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume otp")
		}
		if consumed == 0 {
			// Lost the race with a concurrent confirmation.
			return s.rejectCode(ctx, input.TrackingNumber)
		}

		delivered, err := shipmentRepo.SetDelivered(ctx, shipment.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark shipment delivered")
		}
		if delivered == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "shipment is not in transit")
		}

		trackingEvent := &models.TrackingEvent{
			ShipmentID:  shipment.ID,
			Status:      enums.ShipmentStatusDelivered,
			Note:        "delivery confirmed by recipient code",
			ActorUserID: &input.ActorUserID,
		}
		if err := shipmentRepo.CreateTrackingEvent(ctx, trackingEvent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record tracking event")
		}

		confirmEvent := outbox.DomainEvent{
			EventType:     enums.EventDeliveryConfirmed,
			AggregateType: enums.AggregateShipment,
			AggregateID:   shipment.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: payloads.DeliveryConfirmedEvent{
				ShipmentID:     shipment.ID,
				TrackingNumber: shipment.TrackingNumber,
				TravelerID:     input.ActorUserID,
				DeliveredAt:    now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, confirmEvent); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit delivery confirmed")
		}

		confirmed = shipment
		result = &VerifyResult{ShipmentID: shipment.ID, DeliveredAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resetErr := s.counters.Reset(ctx, input.TrackingNumber); resetErr != nil {
		s.logg.Error(ctx, "reset delivery counters", resetErr)
	}

	s.settlePayout(ctx, confirmed, input, result)
	s.logg.Info(ctx, "delivery confirmed")
	return result, nil
}

// travelerCommissionBP resolves the commission applied to a payout. A
// per-traveler override on the user record wins over the platform default;
// a lookup failure falls back to the default rather than blocking the
// delivery confirmation.
func (s *service) travelerCommissionBP(ctx context.Context, travelerID uuid.UUID) int {
	user, err := s.users.FindByID(ctx, travelerID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			s.logg.Error(ctx, "load traveler commission", err)
		}
		return s.commissionBP
	}
	if user.CommissionBP != nil {
		return *user.CommissionBP
	}
	return s.commissionBP
}

// settlePayout credits the traveler after the delivery fact has
// committed. The ledger check inside ReleaseEarnings keeps the credit
// exactly-once, so a failed settlement here is safe to retry later.
func (s *service) settlePayout(ctx context.Context, shipment *models.Shipment, input VerifyInput, result *VerifyResult) {
	commissionBP := s.travelerCommissionBP(ctx, input.ActorUserID)
	result.PayoutCents = wallet.PayoutCents(shipment.PriceCents, commissionBP)

	var entryID *uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		entry, err := s.earnings.ReleaseEarnings(ctx, tx, wallet.ReleaseEarningsInput{
			ShipmentID:   shipment.ID,
			TravelerID:   input.ActorUserID,
			PriceCents:   shipment.PriceCents,
			CommissionBP: commissionBP,
		})
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		entryID = &entry.ID
		payoutEvent := outbox.DomainEvent{
			EventType:     enums.EventTravelerPayoutRecorded,
			AggregateType: enums.AggregateWalletEntry,
			AggregateID:   entry.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorRole),
			Data: payloads.TravelerPayoutRecordedEvent{
				ShipmentID:   shipment.ID,
				TravelerID:   input.ActorUserID,
				EntryID:      entry.ID,
				AmountCents:  entry.AmountCents,
				CommissionBP: commissionBP,
			},
		}
		return s.outbox.Emit(ctx, tx, payoutEvent)
	})
	if err != nil {
		s.logg.Error(ctx, "release traveler earnings", err)
		return
	}
	result.EntryID = entryID
	result.PayoutSettled = true
}

// rejectCode bumps the failed-attempt counter and returns the
// deliberately vague rejection used for every code mismatch.
func (s *service) rejectCode(ctx context.Context, trackingNumber string) error {
	if _, err := s.counters.IncrFailed(ctx, trackingNumber); err != nil {
		s.logg.Error(ctx, "bump failed-attempt counter", err)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid or expired confirmation code")
}

// OTPStatus reports handshake progress to shipment participants.
func (s *service) OTPStatus(ctx context.Context, input ActionInput) (*OTPStatus, error) {
	if err := validateAction(input); err != nil {
		return nil, err
	}

	shipment, err := s.loadShipment(ctx, s.shipments, input.TrackingNumber)
	if err != nil {
		return nil, err
	}
	if !isParticipant(shipment, input.ActorUserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant of this shipment")
	}

	status := &OTPStatus{
		TrackingNumber: shipment.TrackingNumber,
		ShipmentStatus: shipment.Status.String(),
		RecipientName:  shipment.RecipientName,
		RecipientPhone: shipment.RecipientPhone,
	}

	otp, err := s.otps.FindLatest(ctx, shipment.ID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load otp")
	}
	if otp != nil {
		now := time.Now()
		// The snapshot on the code wins over later shipment edits.
		if otp.RecipientName != "" {
			status.RecipientName = otp.RecipientName
		}
		if otp.RecipientPhone != "" {
			status.RecipientPhone = otp.RecipientPhone
		}
		status.GeneratedAt = &otp.CreatedAt
		status.ExpiresAt = &otp.ExpiresAt
		status.HasUsedOTP = otp.IsUsed
		status.VerifiedAt = otp.UsedAt
		if !otp.IsUsed && otp.ExpiresAt.After(now) {
			status.HasActiveOTP = true
			status.TimeRemainingMinutes = int(otp.ExpiresAt.Sub(now).Minutes())
		}
	}

	if count, err := s.counters.ResendCount(ctx, input.TrackingNumber); err == nil {
		status.ResendCount = count
	}
	if count, err := s.counters.FailedCount(ctx, input.TrackingNumber); err == nil {
		status.FailedAttempts = count
	}
	return status, nil
}

func (s *service) loadShipment(ctx context.Context, repo shipments.Repository, trackingNumber string) (*models.Shipment, error) {
	shipment, err := repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipment")
	}
	return shipment, nil
}

func validateAction(input ActionInput) error {
	if strings.TrimSpace(input.TrackingNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tracking number required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return nil
}

func isParticipant(shipment *models.Shipment, userID uuid.UUID) bool {
	if shipment.SenderID == userID {
		return true
	}
	return shipment.TravelerID != nil && *shipment.TravelerID == userID
}

func buildActor(userID uuid.UUID, role string) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: role}
}
