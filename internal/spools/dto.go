package spools

import (
	"time"

	"github.com/lebraggaa/spool-tracker/internal/events"
	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	"github.com/lebraggaa/spool-tracker/pkg/enums"
)

// StateDTO is the transport shape of a spool's current snapshot.
type StateDTO struct {
	Stage     enums.Stage  `json:"stage"`
	Status    enums.Status `json:"status"`
	Location  string       `json:"location"`
	Note      string       `json:"note"`
	UpdatedAt time.Time    `json:"updated_at"`
	UpdatedBy *uint        `json:"updated_by,omitempty"`
}

// SpoolSummaryDTO pairs spool identity with its current state for list views.
// State is null for spools that have never been transitioned.
type SpoolSummaryDTO struct {
	ID        uint      `json:"id"`
	Tag       string    `json:"tag"`
	CreatedAt time.Time `json:"created_at"`
	State     *StateDTO `json:"state"`
}

// SpoolDetailDTO adds the full chronological history to the summary.
type SpoolDetailDTO struct {
	SpoolSummaryDTO
	History []events.EventDTO `json:"history"`
}

func stateFromModel(s *models.SpoolState) *StateDTO {
	if s == nil {
		return nil
	}
	return &StateDTO{
		Stage:     s.Stage,
		Status:    s.Status,
		Location:  s.Location,
		Note:      s.Note,
		UpdatedAt: s.UpdatedAt,
		UpdatedBy: s.UpdatedBy,
	}
}

func summaryFromModels(spool *models.Spool, state *models.SpoolState) SpoolSummaryDTO {
	return SpoolSummaryDTO{
		ID:        spool.ID,
		Tag:       spool.Tag,
		CreatedAt: spool.CreatedAt,
		State:     stateFromModel(state),
	}
}
