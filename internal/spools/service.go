package spools

import (
	"context"
	"errors"
	"fmt"

	"github.com/lebraggaa/spool-tracker/internal/events"
	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	pkgerrors "github.com/lebraggaa/spool-tracker/pkg/errors"
	"github.com/lebraggaa/spool-tracker/pkg/pagination"
	"gorm.io/gorm"
)

// Service defines the read-side lookups served by the spool controllers.
type Service interface {
	Search(ctx context.Context, query string, limit int) ([]SpoolSummaryDTO, error)
	Detail(ctx context.Context, id uint) (*SpoolDetailDTO, error)
	History(ctx context.Context, id uint) ([]events.EventDTO, error)
	GetOrCreateByTag(ctx context.Context, tag string) (*SpoolSummaryDTO, bool, error)
}

type spoolRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Spool, error)
	GetOrCreateByTag(ctx context.Context, tag string) (*models.Spool, bool, error)
	SearchByTag(ctx context.Context, query string, limit int) ([]SpoolWithState, error)
	GetState(ctx context.Context, spoolID uint) (*models.SpoolState, error)
}

type eventRepository interface {
	HistoryForSpool(ctx context.Context, spoolID uint) ([]models.SpoolEvent, error)
}

type service struct {
	spools spoolRepository
	events eventRepository
}

// ServiceParams bundles the dependencies required to build a spool service.
type ServiceParams struct {
	SpoolRepo spoolRepository
	EventRepo eventRepository
}

// NewService constructs the spool lookup service.
func NewService(params ServiceParams) (Service, error) {
	if params.SpoolRepo == nil {
		return nil, fmt.Errorf("spool repository is required")
	}
	if params.EventRepo == nil {
		return nil, fmt.Errorf("event repository is required")
	}
	return &service{spools: params.SpoolRepo, events: params.EventRepo}, nil
}

func (s *service) Search(ctx context.Context, query string, limit int) ([]SpoolSummaryDTO, error) {
	limit = pagination.NormalizeLimit(limit)

	found, err := s.spools.SearchByTag(ctx, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search spools")
	}

	results := make([]SpoolSummaryDTO, 0, len(found))
	for i := range found {
		results = append(results, summaryFromModels(&found[i].Spool, found[i].State))
	}
	return results, nil
}

func (s *service) Detail(ctx context.Context, id uint) (*SpoolDetailDTO, error) {
	spool, err := s.spools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "spool not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load spool")
	}

	state, err := s.spools.GetState(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load spool state")
	}

	history, err := s.events.HistoryForSpool(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load spool history")
	}

	return &SpoolDetailDTO{
		SpoolSummaryDTO: summaryFromModels(spool, state),
		History:         events.FromModels(history),
	}, nil
}

func (s *service) History(ctx context.Context, id uint) ([]events.EventDTO, error) {
	if _, err := s.spools.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "spool not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load spool")
	}

	history, err := s.events.HistoryForSpool(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load spool history")
	}
	return events.FromModels(history), nil
}

func (s *service) GetOrCreateByTag(ctx context.Context, tag string) (*SpoolSummaryDTO, bool, error) {
	if tag == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "tag is required")
	}

	spool, created, err := s.spools.GetOrCreateByTag(ctx, tag)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get or create spool")
	}

	state, err := s.spools.GetState(ctx, spool.ID)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load spool state")
	}

	summary := summaryFromModels(spool, state)
	return &summary, created, nil
}
