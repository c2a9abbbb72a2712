package controllers

import (
	"net/http"

	"github.com/lebraggaa/spool-tracker/api/responses"
	"github.com/lebraggaa/spool-tracker/internal/dashboard"
	"github.com/lebraggaa/spool-tracker/pkg/logger"
)

// Dashboard serves the aggregate status counts and recent activity.
func Dashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
