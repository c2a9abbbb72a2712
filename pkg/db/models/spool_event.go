package models

import (
	"time"

	"github.com/lebraggaa/spool-tracker/pkg/enums"
)

// SpoolEvent is one immutable audit record. The ordered set of events for a
// spool is the only source of historical truth; SpoolState is a derived cache
// of the latest event. Rows are only ever inserted.
type SpoolEvent struct {
	ID      uint              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SpoolID uint              `gorm:"column:spool_id;not null;index" json:"spool_id"`
	UserID  *uint             `gorm:"column:user_id" json:"user_id,omitempty"`
	TS      time.Time         `gorm:"column:ts;not null" json:"ts"`
	Action  enums.EventAction `gorm:"column:action;type:varchar(30);not null" json:"action"`
	Stage   enums.Stage       `gorm:"column:stage;type:varchar(30);not null" json:"stage"`
	Status  enums.Status      `gorm:"column:status;type:varchar(20);not null" json:"status"`

	Location string `gorm:"column:location;type:varchar(100)" json:"location"`
	Note     string `gorm:"column:note;type:text" json:"note"`
}

// TableName overrides the GORM default.
func (SpoolEvent) TableName() string {
	return "spool_events"
}
