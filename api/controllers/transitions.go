package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lebraggaa/spool-tracker/api/middleware"
	"github.com/lebraggaa/spool-tracker/api/responses"
	"github.com/lebraggaa/spool-tracker/api/validators"
	"github.com/lebraggaa/spool-tracker/internal/transitions"
	"github.com/lebraggaa/spool-tracker/pkg/logger"
)

// SpoolUpdate applies a state transition to the spool in the path.
func SpoolUpdate(svc transitions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUint(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body transitions.ApplyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var userID *uint
		if uid := middleware.UserIDFromContext(r.Context()); uid != 0 {
			userID = &uid
		}

		result, err := svc.Apply(r.Context(), id, body, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
