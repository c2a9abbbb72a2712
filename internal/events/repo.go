package events

import (
	"context"

	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	"gorm.io/gorm"
)

// Repository appends and reads the immutable spool audit log. There are no
// update or delete operations on purpose.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an events repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Append inserts one audit record and returns it with its assigned id.
func (r *Repository) Append(ctx context.Context, event *models.SpoolEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// HistoryForSpool returns every event for the spool in chronological order.
// Ties on ts fall back to insertion order so replays stay deterministic.
func (r *Repository) HistoryForSpool(ctx context.Context, spoolID uint) ([]models.SpoolEvent, error) {
	var events []models.SpoolEvent
	err := r.db.WithContext(ctx).
		Where("spool_id = ?", spoolID).
		Order("ts ASC").
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Recent returns the newest events across all spools, capped at limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.SpoolEvent, error) {
	var events []models.SpoolEvent
	err := r.db.WithContext(ctx).
		Order("ts DESC").
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
