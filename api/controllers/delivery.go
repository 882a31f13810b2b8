package controllers

import (
	"net/http"
	"strings"

	"github.com/kenza-oss/kleerlogistics/api/middleware"
	"github.com/kenza-oss/kleerlogistics/api/responses"
	"github.com/kenza-oss/kleerlogistics/api/validators"
	"github.com/kenza-oss/kleerlogistics/internal/delivery"
	pkgerrors "github.com/kenza-oss/kleerlogistics/pkg/errors"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
)

type VerifyOTPBody struct {
	Code string `json:"code" validate:"required,len=6"`
}

// InitiateDelivery marks the shipment in transit and dispatches the
// confirmation code to the recipient.
func InitiateDelivery(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := deliveryActionInput(r, svc, logg, w)
		if err != nil {
			return
		}

		result, err := svc.InitiateDelivery(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GenerateOTP issues a confirmation code for a shipment already in transit.
func GenerateOTP(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := deliveryActionInput(r, svc, logg, w)
		if err != nil {
			return
		}

		result, err := svc.GenerateOTP(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ResendOTP redispatches the active code to the recipient.
func ResendOTP(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := deliveryActionInput(r, svc, logg, w)
		if err != nil {
			return
		}

		result, err := svc.ResendOTP(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// VerifyOTP checks the code offered at handover and settles the delivery.
func VerifyOTP(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := deliveryActionInput(r, svc, logg, w)
		if err != nil {
			return
		}

		var body VerifyOTPBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.VerifyOTP(r.Context(), delivery.VerifyInput{
			TrackingNumber: input.TrackingNumber,
			Code:           strings.TrimSpace(body.Code),
			ActorUserID:    input.ActorUserID,
			ActorRole:      input.ActorRole,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetOTPStatus reports the confirmation state without revealing the code.
func GetOTPStatus(svc delivery.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := deliveryActionInput(r, svc, logg, w)
		if err != nil {
			return
		}

		status, err := svc.OTPStatus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// deliveryActionInput gathers the tracking number and actor identity shared
// by every confirmation endpoint. On failure it writes the error response and
// returns a non-nil error so the caller can bail out.
func deliveryActionInput(r *http.Request, svc delivery.Service, logg *logger.Logger, w http.ResponseWriter) (delivery.ActionInput, error) {
	if svc == nil {
		err := pkgerrors.New(pkgerrors.CodeInternal, "delivery service unavailable")
		responses.WriteError(r.Context(), logg, w, err)
		return delivery.ActionInput{}, err
	}

	trackingNumber, err := trackingNumberParam(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return delivery.ActionInput{}, err
	}

	actorID, err := actorUserID(r)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return delivery.ActionInput{}, err
	}

	return delivery.ActionInput{
		TrackingNumber: trackingNumber,
		ActorUserID:    actorID,
		ActorRole:      middleware.RoleFromContext(r.Context()),
	}, nil
}
