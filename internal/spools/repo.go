package spools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lebraggaa/spool-tracker/pkg/db"
	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	"github.com/lebraggaa/spool-tracker/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes spool identity and current-state persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a spools repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetByID loads a spool by its numeric id.
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Spool, error) {
	var spool models.Spool
	if err := r.db.WithContext(ctx).First(&spool, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &spool, nil
}

// FindByTag retrieves the spool matching the exact tag.
func (r *Repository) FindByTag(ctx context.Context, tag string) (*models.Spool, error) {
	var spool models.Spool
	if err := r.db.WithContext(ctx).Where("tag = ?", tag).First(&spool).Error; err != nil {
		return nil, err
	}
	return &spool, nil
}

// GetOrCreateByTag returns the spool for the tag, creating it when absent.
// A concurrent insert losing the unique-index race is recovered by re-reading,
// so both callers observe the same row. The bool reports whether this call
// created the spool.
func (r *Repository) GetOrCreateByTag(ctx context.Context, tag string) (*models.Spool, bool, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, false, fmt.Errorf("tag is required")
	}

	existing, err := r.FindByTag(ctx, tag)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	spool := &models.Spool{Tag: tag}
	if createErr := r.db.WithContext(ctx).Create(spool).Error; createErr != nil {
		if db.IsUniqueViolation(createErr, "uq_spools_tag") {
			winner, findErr := r.FindByTag(ctx, tag)
			if findErr != nil {
				return nil, false, findErr
			}
			return winner, false, nil
		}
		return nil, false, createErr
	}
	return spool, true, nil
}

// SpoolWithState pairs a spool with its current state, if one exists yet.
type SpoolWithState struct {
	Spool models.Spool
	State *models.SpoolState
}

// SearchByTag returns spools whose tag contains the query substring, ordered
// by id ascending and capped at limit. An empty query matches everything.
func (r *Repository) SearchByTag(ctx context.Context, query string, limit int) ([]SpoolWithState, error) {
	tx := r.db.WithContext(ctx).Model(&models.Spool{}).Order("id ASC").Limit(limit)
	if q := strings.TrimSpace(query); q != "" {
		tx = tx.Where("tag LIKE ?", "%"+q+"%")
	}

	var found []models.Spool
	if err := tx.Find(&found).Error; err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return []SpoolWithState{}, nil
	}

	ids := make([]uint, 0, len(found))
	for _, spool := range found {
		ids = append(ids, spool.ID)
	}

	var states []models.SpoolState
	if err := r.db.WithContext(ctx).Where("spool_id IN ?", ids).Find(&states).Error; err != nil {
		return nil, err
	}
	stateBySpool := make(map[uint]*models.SpoolState, len(states))
	for i := range states {
		stateBySpool[states[i].SpoolID] = &states[i]
	}

	results := make([]SpoolWithState, 0, len(found))
	for _, spool := range found {
		results = append(results, SpoolWithState{
			Spool: spool,
			State: stateBySpool[spool.ID],
		})
	}
	return results, nil
}

// GetState loads the current state row for the spool, nil when none exists.
func (r *Repository) GetState(ctx context.Context, spoolID uint) (*models.SpoolState, error) {
	var state models.SpoolState
	err := r.db.WithContext(ctx).First(&state, "spool_id = ?", spoolID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// UpsertState inserts or fully replaces the spool's current state row.
func (r *Repository) UpsertState(ctx context.Context, state *models.SpoolState) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "spool_id"}},
			UpdateAll: true,
		}).
		Create(state).Error
}

// CountAll reports how many spools are registered.
func (r *Repository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Spool{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountStatesByStatus tallies current states grouped by status.
func (r *Repository) CountStatesByStatus(ctx context.Context) (map[enums.Status]int64, error) {
	type row struct {
		Status enums.Status
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.SpoolState{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.Status]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
