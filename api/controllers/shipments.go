package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kenza-oss/kleerlogistics/api/middleware"
	"github.com/kenza-oss/kleerlogistics/api/responses"
	"github.com/kenza-oss/kleerlogistics/api/validators"
	"github.com/kenza-oss/kleerlogistics/internal/shipments"
	"github.com/kenza-oss/kleerlogistics/pkg/db/models"
	pkgerrors "github.com/kenza-oss/kleerlogistics/pkg/errors"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
)

type CreateShipmentBody struct {
	Description     string `json:"description" validate:"max=500"`
	OriginCity      string `json:"origin_city" validate:"required,min=2,max=128"`
	DestinationCity string `json:"destination_city" validate:"required,min=2,max=128"`
	RecipientName   string `json:"recipient_name" validate:"required,min=2,max=128"`
	RecipientPhone  string `json:"recipient_phone" validate:"required,e164"`
	PriceCents      int    `json:"price_cents" validate:"required,gt=0"`
}

type ShipmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	TrackingNumber  string     `json:"tracking_number"`
	Status          string     `json:"status"`
	Description     string     `json:"description,omitempty"`
	OriginCity      string     `json:"origin_city"`
	DestinationCity string     `json:"destination_city"`
	RecipientName   string     `json:"recipient_name"`
	RecipientPhone  string     `json:"recipient_phone"`
	PriceCents      int        `json:"price_cents"`
	TravelerID      *uuid.UUID `json:"traveler_id,omitempty"`
	DeliveryDate    *time.Time `json:"delivery_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func shipmentResponse(s *models.Shipment) ShipmentResponse {
	return ShipmentResponse{
		ID:              s.ID,
		TrackingNumber:  s.TrackingNumber,
		Status:          s.Status.String(),
		Description:     s.Description,
		OriginCity:      s.OriginCity,
		DestinationCity: s.DestinationCity,
		RecipientName:   s.RecipientName,
		RecipientPhone:  s.RecipientPhone,
		PriceCents:      s.PriceCents,
		TravelerID:      s.TravelerID,
		DeliveryDate:    s.DeliveryDate,
		CreatedAt:       s.CreatedAt,
	}
}

// CreateShipment posts a new parcel for the authenticated sender.
func CreateShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}

		actorID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body CreateShipmentBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), shipments.CreateShipmentInput{
			SenderID:        actorID,
			Description:     validators.SanitizeString(body.Description, 500),
			OriginCity:      validators.SanitizeString(body.OriginCity, 128),
			DestinationCity: validators.SanitizeString(body.DestinationCity, 128),
			RecipientName:   validators.SanitizeString(body.RecipientName, 128),
			RecipientPhone:  strings.TrimSpace(body.RecipientPhone),
			PriceCents:      body.PriceCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shipmentResponse(created))
	}
}

// ListShipments returns the shipments the caller participates in, as sender
// or traveler.
func ListShipments(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}

		actorID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListForUser(r.Context(), actorID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]ShipmentResponse, 0, len(rows))
		for i := range rows {
			out = append(out, shipmentResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// GetShipment returns a single shipment by tracking number.
func GetShipment(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}

		trackingNumber, err := trackingNumberParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shipment, err := svc.GetByTrackingNumber(r.Context(), trackingNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shipmentResponse(shipment))
	}
}

type TrackingEventResponse struct {
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// GetTrackingHistory returns the shipment's recorded status changes, newest
// last.
func GetTrackingHistory(svc shipments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipments service unavailable"))
			return
		}

		trackingNumber, err := trackingNumberParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.TrackingHistory(r.Context(), trackingNumber)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]TrackingEventResponse, 0, len(events))
		for _, ev := range events {
			out = append(out, TrackingEventResponse{
				Status:     ev.Status.String(),
				Note:       ev.Note,
				RecordedAt: ev.CreatedAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

func actorUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func trackingNumberParam(r *http.Request) (string, error) {
	trackingNumber := strings.TrimSpace(chi.URLParam(r, "trackingNumber"))
	if trackingNumber == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "tracking number required")
	}
	return trackingNumber, nil
}
