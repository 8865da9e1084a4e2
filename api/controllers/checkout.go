package controllers

import (
	"net/http"

	"github.com/pati-platform/pati-backend/api/responses"
	"github.com/pati-platform/pati-backend/api/validators"
	checkoutsvc "github.com/pati-platform/pati-backend/internal/checkout"
	"github.com/pati-platform/pati-backend/pkg/logger"
)

// Checkout converts the active cart into an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutsvc.Input
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), userID, actorRole(r), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
