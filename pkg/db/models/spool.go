package models

import "time"

// Spool is the identity entity for a trackable fabrication unit. Spools are
// never deleted through normal operation so history stays attributable.
type Spool struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Tag       string    `gorm:"column:tag;type:varchar(120);not null;uniqueIndex" json:"tag"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName overrides the GORM default.
func (Spool) TableName() string {
	return "spools"
}
