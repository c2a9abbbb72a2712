package models

import (
	"time"

	"github.com/lebraggaa/spool-tracker/pkg/enums"
)

// SpoolState is the current snapshot of a spool. There is at most one row per
// spool (the spool id doubles as the primary key) and it is created lazily by
// the first transition, never at spool creation. Previous values survive only
// in spool_events.
type SpoolState struct {
	SpoolID   uint         `gorm:"column:spool_id;primaryKey" json:"spool_id"`
	Stage     enums.Stage  `gorm:"column:stage;type:varchar(30);not null" json:"stage"`
	Status    enums.Status `gorm:"column:status;type:varchar(20);not null" json:"status"`
	Location  string       `gorm:"column:location;type:varchar(100)" json:"location"`
	Note      string       `gorm:"column:note;type:text" json:"note"`
	UpdatedAt time.Time    `gorm:"column:updated_at;not null" json:"updated_at"`
	UpdatedBy *uint        `gorm:"column:updated_by" json:"updated_by,omitempty"`
}

// TableName overrides the GORM default.
func (SpoolState) TableName() string {
	return "spool_states"
}
