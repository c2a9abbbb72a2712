package transitions

import (
	"time"

	"github.com/lebraggaa/spool-tracker/internal/events"
	"github.com/lebraggaa/spool-tracker/pkg/enums"
)

// ApplyRequest is the transition payload accepted by the update endpoint.
// Location and Note always overwrite the previous values, so omitting them
// clears the fields rather than carrying them forward.
type ApplyRequest struct {
	Stage    string `json:"stage" validate:"required"`
	Status   string `json:"status" validate:"required"`
	Location string `json:"location" validate:"max=100"`
	Note     string `json:"note" validate:"max=2000"`
}

// ApplyResult reports the committed snapshot and the audit record it produced.
type ApplyResult struct {
	SpoolID   uint            `json:"spool_id"`
	Stage     enums.Stage     `json:"stage"`
	Status    enums.Status    `json:"status"`
	Location  string          `json:"location"`
	Note      string          `json:"note"`
	UpdatedAt time.Time       `json:"updated_at"`
	UpdatedBy *uint           `json:"updated_by,omitempty"`
	Event     events.EventDTO `json:"event"`
}
