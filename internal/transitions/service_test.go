package transitions

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lebraggaa/spool-tracker/internal/events"
	"github.com/lebraggaa/spool-tracker/internal/spools"
	"github.com/lebraggaa/spool-tracker/pkg/config"
	"github.com/lebraggaa/spool-tracker/pkg/db/models"
	"github.com/lebraggaa/spool-tracker/pkg/enums"
	pkgerrors "github.com/lebraggaa/spool-tracker/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fixture struct {
	svc       Service
	spoolRepo *spools.Repository
	eventRepo *events.Repository
	db        *gorm.DB
}

func newFixture(t *testing.T, enforce bool) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single pooled connection keeps every goroutine on the same in-memory DB
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(&models.Spool{}, &models.SpoolState{}, &models.SpoolEvent{}))

	spoolRepo := spools.NewRepository(conn)
	eventRepo := events.NewRepository(conn)
	svc, err := NewService(ServiceParams{
		SpoolRepo: spoolRepo,
		EventRepo: eventRepo,
		TxRunner:  gormTxRunner{db: conn},
		Flags:     config.FeatureFlagsConfig{EnforceStageOrder: enforce},
	})
	require.NoError(t, err)

	return &fixture{svc: svc, spoolRepo: spoolRepo, eventRepo: eventRepo, db: conn}
}

func (f *fixture) seedSpool(t *testing.T, tag string) *models.Spool {
	t.Helper()
	spool, _, err := f.spoolRepo.GetOrCreateByTag(context.Background(), tag)
	require.NoError(t, err)
	return spool
}

func request(stage enums.Stage, status enums.Status) ApplyRequest {
	return ApplyRequest{Stage: string(stage), Status: string(status)}
}

func TestApplyUnknownSpool(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.svc.Apply(context.Background(), 999, request(enums.StageFabrication, enums.StatusPending), nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestApplyRejectsUnknownEnums(t *testing.T) {
	f := newFixture(t, true)
	spool := f.seedSpool(t, "ISO-1")

	_, err := f.svc.Apply(context.Background(), spool.ID, ApplyRequest{Stage: "WELDING", Status: "PENDING"}, nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = f.svc.Apply(context.Background(), spool.ID, ApplyRequest{Stage: "FABRICATION", Status: "SHIPPED"}, nil)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	history, err := f.eventRepo.HistoryForSpool(context.Background(), spool.ID)
	require.NoError(t, err)
	assert.Empty(t, history, "rejected transitions must not leave audit records")
}

func TestApplyFirstTransitionAllowsAnyStage(t *testing.T) {
	f := newFixture(t, true)
	spool := f.seedSpool(t, "ISO-1")

	// no prior state: even the last stage is acceptable as an entry point
	result, err := f.svc.Apply(context.Background(), spool.ID, request(enums.StageOnBoard, enums.StatusReleased), nil)
	require.NoError(t, err)
	assert.Equal(t, enums.StageOnBoard, result.Stage)

	state, err := f.spoolRepo.GetState(context.Background(), spool.ID)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, enums.StageOnBoard, state.Stage)
}

func TestApplyStageOrderRules(t *testing.T) {
	cases := []struct {
		name    string
		from    enums.Stage
		to      enums.Stage
		allowed bool
	}{
		{"same stage", enums.StagePainting, enums.StagePainting, true},
		{"one forward", enums.StagePainting, enums.StageLogistics2, true},
		{"one back", enums.StagePainting, enums.StageLogistics1, true},
		{"skip forward", enums.StageFabrication, enums.StagePainting, false},
		{"skip to last", enums.StageFabrication, enums.StageOnBoard, false},
		{"one back from logistics 2", enums.StageLogistics2, enums.StagePainting, true},
		{"two back", enums.StageLogistics2, enums.StageFabrication, false},
		{"jump back", enums.StageOnBoard, enums.StagePainting, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, true)
			spool := f.seedSpool(t, "ISO-1")

			_, err := f.svc.Apply(context.Background(), spool.ID, request(tc.from, enums.StatusPending), nil)
			require.NoError(t, err)

			_, err = f.svc.Apply(context.Background(), spool.ID, request(tc.to, enums.StatusPending), nil)
			if tc.allowed {
				require.NoError(t, err)
				return
			}
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

			state, stateErr := f.spoolRepo.GetState(context.Background(), spool.ID)
			require.NoError(t, stateErr)
			assert.Equal(t, tc.from, state.Stage, "rejected transition must not change state")
		})
	}
}

func TestApplySkipAllowedWhenEnforcementDisabled(t *testing.T) {
	f := newFixture(t, false)
	spool := f.seedSpool(t, "ISO-1")

	_, err := f.svc.Apply(context.Background(), spool.ID, request(enums.StageFabrication, enums.StatusPending), nil)
	require.NoError(t, err)

	_, err = f.svc.Apply(context.Background(), spool.ID, request(enums.StageOnBoard, enums.StatusReleased), nil)
	require.NoError(t, err)
}

func TestApplyCommitsStateAndEventTogether(t *testing.T) {
	f := newFixture(t, true)
	spool := f.seedSpool(t, "ISO-1")
	userID := uint(9)

	result, err := f.svc.Apply(context.Background(), spool.ID, ApplyRequest{
		Stage:    "FABRICATION",
		Status:   "PENDING",
		Location: "bay 4",
		Note:     "tack welds done",
	}, &userID)
	require.NoError(t, err)

	state, err := f.spoolRepo.GetState(context.Background(), spool.ID)
	require.NoError(t, err)
	require.NotNil(t, state)

	history, err := f.eventRepo.HistoryForSpool(context.Background(), spool.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	event := history[0]

	// snapshot and audit record carry the identical commit timestamp
	assert.True(t, state.UpdatedAt.Equal(event.TS))
	assert.True(t, result.UpdatedAt.Equal(event.TS))

	assert.Equal(t, enums.EventActionUpdate, event.Action)
	assert.Equal(t, state.Stage, event.Stage)
	assert.Equal(t, state.Status, event.Status)
	assert.Equal(t, "bay 4", event.Location)
	assert.Equal(t, "tack welds done", event.Note)
	require.NotNil(t, event.UserID)
	assert.Equal(t, userID, *event.UserID)
	require.NotNil(t, state.UpdatedBy)
	assert.Equal(t, userID, *state.UpdatedBy)
}

func TestApplyOverwritesLocationAndNote(t *testing.T) {
	f := newFixture(t, true)
	spool := f.seedSpool(t, "ISO-1")
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, spool.ID, ApplyRequest{
		Stage: "FABRICATION", Status: "PENDING", Location: "bay 4", Note: "initial",
	}, nil)
	require.NoError(t, err)

	// omitted fields clear, they do not carry forward
	_, err = f.svc.Apply(ctx, spool.ID, ApplyRequest{Stage: "FABRICATION", Status: "RELEASED"}, nil)
	require.NoError(t, err)

	state, err := f.spoolRepo.GetState(ctx, spool.ID)
	require.NoError(t, err)
	assert.Empty(t, state.Location)
	assert.Empty(t, state.Note)

	history, err := f.eventRepo.HistoryForSpool(ctx, spool.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "bay 4", history[0].Location)
	assert.Empty(t, history[1].Location)
}

func TestApplyAppendsOneEventPerTransition(t *testing.T) {
	f := newFixture(t, true)
	spool := f.seedSpool(t, "ISO-1")
	ctx := context.Background()

	steps := []enums.Stage{
		enums.StageFabrication,
		enums.StageLogistics1,
		enums.StagePainting,
		enums.StageLogistics2,
		enums.StageOnBoard,
	}
	start := time.Now()
	for _, stage := range steps {
		_, err := f.svc.Apply(ctx, spool.ID, request(stage, enums.StatusReleased), nil)
		require.NoError(t, err)
	}

	history, err := f.eventRepo.HistoryForSpool(ctx, spool.ID)
	require.NoError(t, err)
	require.Len(t, history, len(steps))
	for i, event := range history {
		assert.Equal(t, steps[i], event.Stage)
		assert.False(t, event.TS.Before(start.Add(-time.Second)))
	}

	var stateRows int64
	require.NoError(t, f.db.Model(&models.SpoolState{}).Count(&stateRows).Error)
	assert.EqualValues(t, 1, stateRows)
}

func TestApplyConcurrentWritersOnOneSpool(t *testing.T) {
	f := newFixture(t, false)
	spool := f.seedSpool(t, "ISO-1")
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Apply(ctx, spool.ID, ApplyRequest{
				Stage:    string(enums.StageFabrication),
				Status:   string(enums.StatusReleased),
				Location: fmt.Sprintf("station-%d", i),
			}, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}

	// every transition is audited, none is lost or doubled
	history, err := f.eventRepo.HistoryForSpool(ctx, spool.ID)
	require.NoError(t, err)
	require.Len(t, history, writers)

	var stateRows int64
	require.NoError(t, f.db.Model(&models.SpoolState{}).Count(&stateRows).Error)
	assert.EqualValues(t, 1, stateRows)

	// the surviving state is the last committed writer's snapshot
	state, err := f.spoolRepo.GetState(ctx, spool.ID)
	require.NoError(t, err)
	require.NotNil(t, state)
	last := history[len(history)-1]
	assert.Equal(t, last.Location, state.Location)
	assert.True(t, state.UpdatedAt.Equal(last.TS))
}

func TestCheckStageOrderTable(t *testing.T) {
	require.NoError(t, checkStageOrder(enums.StageFabrication, enums.StageFabrication))
	require.NoError(t, checkStageOrder(enums.StageFabrication, enums.StageLogistics1))
	require.NoError(t, checkStageOrder(enums.StageLogistics1, enums.StageFabrication))

	err := checkStageOrder(enums.StageFabrication, enums.StagePainting)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}
