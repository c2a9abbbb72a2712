package dashboard

import (
	"context"
	"fmt"

	"github.com/lebraggaa/spool-tracker/internal/events"
	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	"github.com/lebraggaa/spool-tracker/pkg/enums"
	pkgerrors "github.com/lebraggaa/spool-tracker/pkg/errors"
)

const recentEventsLimit = 10

// SummaryDTO is the aggregate snapshot rendered on the dashboard.
type SummaryDTO struct {
	TotalSpools  int64             `json:"total_spools"`
	Pending      int64             `json:"pending"`
	Released     int64             `json:"released"`
	Blocked      int64             `json:"blocked"`
	RecentEvents []events.EventDTO `json:"recent_events"`
}

// Service produces the dashboard summary.
type Service interface {
	Summary(ctx context.Context) (*SummaryDTO, error)
}

type spoolRepository interface {
	CountAll(ctx context.Context) (int64, error)
	CountStatesByStatus(ctx context.Context) (map[enums.Status]int64, error)
}

type eventRepository interface {
	Recent(ctx context.Context, limit int) ([]models.SpoolEvent, error)
}

type service struct {
	spools spoolRepository
	events eventRepository
}

// ServiceParams bundles the dependencies required to build a dashboard service.
type ServiceParams struct {
	SpoolRepo spoolRepository
	EventRepo eventRepository
}

// NewService constructs the dashboard service.
func NewService(params ServiceParams) (Service, error) {
	if params.SpoolRepo == nil {
		return nil, fmt.Errorf("spool repository is required")
	}
	if params.EventRepo == nil {
		return nil, fmt.Errorf("event repository is required")
	}
	return &service{spools: params.SpoolRepo, events: params.EventRepo}, nil
}

func (s *service) Summary(ctx context.Context) (*SummaryDTO, error) {
	total, err := s.spools.CountAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count spools")
	}

	byStatus, err := s.spools.CountStatesByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count states")
	}

	recent, err := s.events.Recent(ctx, recentEventsLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent events")
	}

	return &SummaryDTO{
		TotalSpools:  total,
		Pending:      byStatus[enums.StatusPending],
		Released:     byStatus[enums.StatusReleased],
		Blocked:      byStatus[enums.StatusBlocked],
		RecentEvents: events.FromModels(recent),
	}, nil
}
