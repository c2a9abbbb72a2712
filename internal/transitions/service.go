package transitions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lebraggaa/spool-tracker/internal/events"
	"github.com/lebraggaa/spool-tracker/internal/spools"
	"github.com/lebraggaa/spool-tracker/pkg/config"
	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	"github.com/lebraggaa/spool-tracker/pkg/enums"
	pkgerrors "github.com/lebraggaa/spool-tracker/pkg/errors"
	"gorm.io/gorm"
)

// Service applies state transitions to spools.
type Service interface {
	Apply(ctx context.Context, spoolID uint, req ApplyRequest, userID *uint) (*ApplyResult, error)
}

type spoolRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Spool, error)
	GetState(ctx context.Context, spoolID uint) (*models.SpoolState, error)
	WithTx(tx *gorm.DB) *spools.Repository
}

type eventRepository interface {
	WithTx(tx *gorm.DB) *events.Repository
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	spools spoolRepository
	events eventRepository
	tx     txRunner
	flags  config.FeatureFlagsConfig
	locker *spoolLocker
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build a transition service.
type ServiceParams struct {
	SpoolRepo spoolRepository
	EventRepo eventRepository
	TxRunner  txRunner
	Flags     config.FeatureFlagsConfig
}

// NewService constructs the transition engine.
func NewService(params ServiceParams) (Service, error) {
	if params.SpoolRepo == nil {
		return nil, fmt.Errorf("spool repository is required")
	}
	if params.EventRepo == nil {
		return nil, fmt.Errorf("event repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		spools: params.SpoolRepo,
		events: params.EventRepo,
		tx:     params.TxRunner,
		flags:  params.Flags,
		locker: newSpoolLocker(),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Apply validates the requested transition and commits the new snapshot plus
// its audit event atomically. Transitions for the same spool are serialized,
// so checks against the current state cannot interleave with another writer
// in this process.
func (s *service) Apply(ctx context.Context, spoolID uint, req ApplyRequest, userID *uint) (*ApplyResult, error) {
	stage, err := enums.ParseStage(req.Stage)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stage").
			WithDetails(map[string]any{"stage": req.Stage, "allowed": enums.Stages()})
	}
	status, err := enums.ParseStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status").
			WithDetails(map[string]any{"status": req.Status, "allowed": enums.Statuses()})
	}

	unlock := s.locker.Lock(spoolID)
	defer unlock()

	if _, err := s.spools.GetByID(ctx, spoolID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "spool not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load spool")
	}

	current, err := s.spools.GetState(ctx, spoolID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load spool state")
	}

	if s.flags.EnforceStageOrder && current != nil {
		if err := checkStageOrder(current.Stage, stage); err != nil {
			return nil, err
		}
	}

	committedAt := s.now()
	state := &models.SpoolState{
		SpoolID:   spoolID,
		Stage:     stage,
		Status:    status,
		Location:  req.Location,
		Note:      req.Note,
		UpdatedAt: committedAt,
		UpdatedBy: userID,
	}
	event := &models.SpoolEvent{
		SpoolID:  spoolID,
		UserID:   userID,
		TS:       committedAt,
		Action:   enums.EventActionUpdate,
		Stage:    stage,
		Status:   status,
		Location: req.Location,
		Note:     req.Note,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.spools.WithTx(tx).UpsertState(ctx, state); err != nil {
			return fmt.Errorf("upserting state: %w", err)
		}
		if err := s.events.WithTx(tx).Append(ctx, event); err != nil {
			return fmt.Errorf("appending event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "commit transition")
	}

	return &ApplyResult{
		SpoolID:   spoolID,
		Stage:     stage,
		Status:    status,
		Location:  req.Location,
		Note:      req.Note,
		UpdatedAt: committedAt,
		UpdatedBy: userID,
		Event:     *events.FromModel(event),
	}, nil
}

// checkStageOrder enforces the one-step movement rule: a transition may stay
// on the current stage, advance to the immediately next stage, or fall back to
// the immediately previous one. Everything else is rejected.
func checkStageOrder(current, next enums.Stage) error {
	if next == current {
		return nil
	}
	if prev, ok := next.Previous(); ok && prev == current {
		return nil
	}
	if prev, ok := current.Previous(); ok && prev == next {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "stage transition disallowed").
		WithDetails(map[string]any{
			"current":   current,
			"requested": next,
		})
}
