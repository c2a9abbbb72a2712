package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lebraggaa/spool-tracker/api/responses"
	"github.com/lebraggaa/spool-tracker/api/validators"
	"github.com/lebraggaa/spool-tracker/internal/spools"
	"github.com/lebraggaa/spool-tracker/pkg/logger"
	"github.com/lebraggaa/spool-tracker/pkg/pagination"
)

// SpoolSearch serves the tag substring search used by scanners and the UI.
func SpoolSearch(svc spools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.Search(r.Context(), r.URL.Query().Get("q"), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"spools": results,
			"count":  len(results),
		})
	}
}

// SpoolDetail returns one spool with its current state and full history.
func SpoolDetail(svc spools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUint(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Detail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// SpoolEvents returns the audit trail for one spool, oldest first.
func SpoolEvents(svc spools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathUint(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"events": history,
			"count":  len(history),
		})
	}
}

// SpoolRegisterRequest is the body accepted when registering a tag directly.
type SpoolRegisterRequest struct {
	Tag string `json:"tag" validate:"required,min=1,max=120"`
}

// SpoolRegister creates the spool for a tag, or returns the existing one.
func SpoolRegister(svc spools.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body SpoolRegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, created, err := svc.GetOrCreateByTag(r.Context(), body.Tag)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, summary)
	}
}
