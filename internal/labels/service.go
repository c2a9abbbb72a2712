package labels

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"net/url"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/lebraggaa/spool-tracker/pkg/config"
	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	pkgerrors "github.com/lebraggaa/spool-tracker/pkg/errors"
	"gorm.io/gorm"
)

const minLabelSize = 64

// Service renders scannable QR labels for spools.
type Service interface {
	SpoolLabelPNG(ctx context.Context, tag string, size int) ([]byte, error)
	SearchURL(tag string) string
}

type spoolRepository interface {
	FindByTag(ctx context.Context, tag string) (*models.Spool, error)
}

type service struct {
	spools spoolRepository
	cfg    config.LabelsConfig
}

// ServiceParams bundles the dependencies required to build a label service.
type ServiceParams struct {
	SpoolRepo spoolRepository
	Config    config.LabelsConfig
}

// NewService constructs the label service.
func NewService(params ServiceParams) (Service, error) {
	if params.SpoolRepo == nil {
		return nil, fmt.Errorf("spool repository is required")
	}
	if params.Config.PublicBaseURL == "" {
		return nil, fmt.Errorf("public base url is required")
	}
	return &service{spools: params.SpoolRepo, cfg: params.Config}, nil
}

// SpoolLabelPNG renders a QR code whose payload is the search URL for the
// spool's tag, so scanning a printed label lands on that spool.
func (s *service) SpoolLabelPNG(ctx context.Context, tag string, size int) ([]byte, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag is required")
	}

	if _, err := s.spools.FindByTag(ctx, tag); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "spool not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup spool")
	}

	size = s.clampSize(size)
	code, err := qr.Encode(s.SearchURL(tag), qr.M, qr.Auto)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode qr payload")
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "scale qr code")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render png")
	}
	return buf.Bytes(), nil
}

// SearchURL builds the public URL a scanned label resolves to.
func (s *service) SearchURL(tag string) string {
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	return base + "/spools?q=" + url.QueryEscape(tag)
}

func (s *service) clampSize(size int) int {
	if size <= 0 {
		size = s.cfg.DefaultSize
	}
	if size < minLabelSize {
		size = minLabelSize
	}
	if s.cfg.MaxSize > 0 && size > s.cfg.MaxSize {
		size = s.cfg.MaxSize
	}
	return size
}
