package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kenza-oss/kleerlogistics/api/controllers"
	"github.com/kenza-oss/kleerlogistics/api/middleware"
	"github.com/kenza-oss/kleerlogistics/internal/delivery"
	"github.com/kenza-oss/kleerlogistics/internal/shipments"
	"github.com/kenza-oss/kleerlogistics/internal/users"
	"github.com/kenza-oss/kleerlogistics/pkg/config"
	"github.com/kenza-oss/kleerlogistics/pkg/db"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
	"github.com/kenza-oss/kleerlogistics/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	shipmentService shipments.Service,
	deliveryService delivery.Service,
	userService users.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// A nil *redis.Client must stay nil once it becomes an interface,
	// otherwise the health check dereferences it.
	var cache interface{ Ping(context.Context) error }
	var limiterStore interface {
		IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	}
	if redisClient != nil {
		cache = redisClient
		limiterStore = redisClient
	}

	verifyPolicy := middleware.NewOTPRateLimitPolicy(
		"verify",
		cfg.OTPRateLimit.VerifyWindow,
		cfg.OTPRateLimit.VerifyIPLimit,
		cfg.OTPRateLimit.VerifyTrackingLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cache))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/me", controllers.GetProfile(userService, logg))

		r.Route("/shipments", func(r chi.Router) {
			r.Post("/", controllers.CreateShipment(shipmentService, logg))
			r.Get("/", controllers.ListShipments(shipmentService, logg))

			r.Route("/{trackingNumber}", func(r chi.Router) {
				r.Get("/", controllers.GetShipment(shipmentService, logg))
				r.Get("/tracking", controllers.GetTrackingHistory(shipmentService, logg))

				r.Post("/initiate-delivery", controllers.InitiateDelivery(deliveryService, logg))
				r.Post("/generate-otp", controllers.GenerateOTP(deliveryService, logg))
				r.Post("/resend-otp", controllers.ResendOTP(deliveryService, logg))
				r.With(middleware.OTPRateLimit(verifyPolicy, limiterStore, logg)).
					Post("/verify-otp", controllers.VerifyOTP(deliveryService, logg))
				r.Get("/otp-status", controllers.GetOTPStatus(deliveryService, logg))
			})
		})
	})

	return r
}
