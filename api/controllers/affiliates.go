package controllers

import (
	"net/http"

	"github.com/pati-platform/pati-backend/api/responses"
	affsvc "github.com/pati-platform/pati-backend/internal/affiliates"
	"github.com/pati-platform/pati-backend/pkg/logger"
)

// AffiliateSummary reports the affiliate's commissions and accrued totals.
func AffiliateSummary(svc affsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		affiliateID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), affiliateID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
