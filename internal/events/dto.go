package events

import (
	"time"

	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	"github.com/lebraggaa/spool-tracker/pkg/enums"
)

// EventDTO is the transport shape for one audit record.
type EventDTO struct {
	ID       uint              `json:"id"`
	SpoolID  uint              `json:"spool_id"`
	UserID   *uint             `json:"user_id,omitempty"`
	TS       time.Time         `json:"ts"`
	Action   enums.EventAction `json:"action"`
	Stage    enums.Stage       `json:"stage"`
	Status   enums.Status      `json:"status"`
	Location string            `json:"location"`
	Note     string            `json:"note"`
}

func FromModel(e *models.SpoolEvent) *EventDTO {
	if e == nil {
		return nil
	}
	return &EventDTO{
		ID:       e.ID,
		SpoolID:  e.SpoolID,
		UserID:   e.UserID,
		TS:       e.TS,
		Action:   e.Action,
		Stage:    e.Stage,
		Status:   e.Status,
		Location: e.Location,
		Note:     e.Note,
	}
}

func FromModels(models []models.SpoolEvent) []EventDTO {
	out := make([]EventDTO, 0, len(models))
	for i := range models {
		out = append(out, *FromModel(&models[i]))
	}
	return out
}
