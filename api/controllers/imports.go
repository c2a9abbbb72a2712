package controllers

import (
	"net/http"

	"github.com/lebraggaa/spool-tracker/api/responses"
	"github.com/lebraggaa/spool-tracker/internal/importer"
	"github.com/lebraggaa/spool-tracker/pkg/config"
	pkgerrors "github.com/lebraggaa/spool-tracker/pkg/errors"
	"github.com/lebraggaa/spool-tracker/pkg/logger"
)

// ImportSpools ingests a multipart spreadsheet upload of spool tags.
func ImportSpools(svc importer.Service, cfg config.ImportConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxBytes := int64(cfg.MaxUploadMB) << 20
		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}

		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file field"))
			return
		}
		defer file.Close()

		summary, err := svc.Import(r.Context(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
