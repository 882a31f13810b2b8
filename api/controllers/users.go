package controllers

import (
	"net/http"

	"github.com/kenza-oss/kleerlogistics/api/responses"
	"github.com/kenza-oss/kleerlogistics/internal/users"
	pkgerrors "github.com/kenza-oss/kleerlogistics/pkg/errors"
	"github.com/kenza-oss/kleerlogistics/pkg/logger"
)

// GetProfile returns the authenticated user's own record.
func GetProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		actorID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Profile(r.Context(), actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
