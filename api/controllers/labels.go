package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lebraggaa/spool-tracker/api/responses"
	"github.com/lebraggaa/spool-tracker/api/validators"
	"github.com/lebraggaa/spool-tracker/internal/labels"
	"github.com/lebraggaa/spool-tracker/pkg/config"
	"github.com/lebraggaa/spool-tracker/pkg/logger"
)

// SpoolLabel renders the QR label PNG for the tag in the path. The route
// matches /qr/{tag}.png, so the suffix is stripped before lookup.
func SpoolLabel(svc labels.Service, cfg config.LabelsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag := strings.TrimSuffix(chi.URLParam(r, "tag"), ".png")

		size, err := validators.ParseQueryInt(r, "size", cfg.DefaultSize, 1, cfg.MaxSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, err := svc.SpoolLabelPNG(r.Context(), tag, size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WritePNG(w, data)
	}
}
