package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bobina-estoque-backend/internal/model"
)

// newTestStore opens a private in-memory database. Access is forced
// through a single connection so concurrent goroutines serialize on the
// pool instead of tripping SQLite busy errors.
func newTestStore(t *testing.T) Store {
	t.Helper()
	dsn := "file:store_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Reel{},
		&model.Machine{},
		&model.LedgerEntry{},
		&model.PushSubscription{},
	))
	return NewGormStore(db)
}

func seedReel(t *testing.T, s Store, code string, available int) *model.Reel {
	t.Helper()
	reel := &model.Reel{
		Code:              code,
		Material:          "PEBD",
		Color:             "Transparente",
		QuantityAvailable: available,
		Priority:          model.PriorityHigh,
	}
	require.NoError(t, s.CreateReel(context.Background(), reel))
	return reel
}

func seedMachine(t *testing.T, s Store, name string) *model.Machine {
	t.Helper()
	machine := &model.Machine{Name: name, Active: true}
	require.NoError(t, s.CreateMachine(context.Background(), machine))
	return machine
}

func TestReserveStock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reel := seedReel(t, s, "BOB-001", 15)

	remaining, err := s.ReserveStock(ctx, reel.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)

	got, err := s.GetReel(ctx, reel.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.QuantityAvailable)
	assert.Equal(t, 5, got.QuantityUsed)
	assert.False(t, got.InMachine)
	require.NotNil(t, got.SentToMachineAt)
}

func TestReserveStockDepletesReel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reel := seedReel(t, s, "BOB-002", 7)

	remaining, err := s.ReserveStock(ctx, reel.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	got, err := s.GetReel(ctx, reel.ID)
	require.NoError(t, err)
	assert.True(t, got.InMachine, "a reel whose stock hits zero is on the machine")
}

func TestReserveStockInsufficient(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reel := seedReel(t, s, "BOB-003", 3)

	_, err := s.ReserveStock(ctx, reel.ID, 5)
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 5, insufficient.Requested)

	// No mutation on rejection.
	got, err := s.GetReel(ctx, reel.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.QuantityAvailable)
	assert.Equal(t, 0, got.QuantityUsed)
	assert.False(t, got.InMachine)
}

func TestReserveStockUnknownReel(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ReserveStock(context.Background(), uuid.NewString(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Two concurrent reserves whose combined quantity exceeds availability
// must never both succeed.
func TestReserveStockConcurrentRace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reel := seedReel(t, s, "BOB-004", 10)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.ReserveStock(ctx, reel.ID, 6)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			var insufficient *InsufficientStockError
			assert.ErrorAs(t, err, &insufficient)
		}
	}
	assert.Equal(t, 1, successes, "exactly one of the competing reserves may win")

	got, err := s.GetReel(ctx, reel.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.QuantityAvailable)
	assert.Equal(t, 6, got.QuantityUsed)
}

// Stock is conserved under a concurrent pile-up: exactly enough reserves
// succeed to exhaust the stock, and availability never goes negative.
func TestReserveStockConservation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reel := seedReel(t, s, "BOB-005", 30)

	const workers = 20
	const each = 3

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ReserveStock(ctx, reel.ID, each); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)

	got, err := s.GetReel(ctx, reel.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.QuantityAvailable, 0)
	assert.Equal(t, 0, got.QuantityAvailable)
	assert.Equal(t, 30, got.QuantityUsed)
	assert.Equal(t, 30, got.QuantityAvailable+got.QuantityUsed)
}

func TestReleaseStockRestoresCounters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reel := seedReel(t, s, "BOB-006", 8)

	_, err := s.ReserveStock(ctx, reel.ID, 8)
	require.NoError(t, err)
	require.NoError(t, s.ReleaseStock(ctx, reel.ID, 8, nil))

	got, err := s.GetReel(ctx, reel.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.QuantityAvailable)
	assert.Equal(t, 0, got.QuantityUsed)
	assert.False(t, got.InMachine)
	assert.Nil(t, got.SentToMachineAt, "timestamp is released with the counters")
}

func TestReleaseStockRestoresTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reel := seedReel(t, s, "BOB-007", 10)

	// First reserve sticks; the second one is rolled back to the state
	// the first one left behind.
	_, err := s.ReserveStock(ctx, reel.ID, 3)
	require.NoError(t, err)
	afterFirst, err := s.GetReel(ctx, reel.ID)
	require.NoError(t, err)
	require.NotNil(t, afterFirst.SentToMachineAt)

	_, err = s.ReserveStock(ctx, reel.ID, 4)
	require.NoError(t, err)
	require.NoError(t, s.ReleaseStock(ctx, reel.ID, 4, afterFirst.SentToMachineAt))

	got, err := s.GetReel(ctx, reel.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.QuantityAvailable)
	assert.Equal(t, 3, got.QuantityUsed)
	require.NotNil(t, got.SentToMachineAt)
	assert.WithinDuration(t, *afterFirst.SentToMachineAt, *got.SentToMachineAt, time.Second)
}

func TestReleaseStockExceedsUsed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reel := seedReel(t, s, "BOB-008", 5)

	_, err := s.ReserveStock(ctx, reel.ID, 2)
	require.NoError(t, err)

	err = s.ReleaseStock(ctx, reel.ID, 3, nil)
	assert.ErrorIs(t, err, ErrInvalidRelease)

	err = s.ReleaseStock(ctx, uuid.NewString(), 1, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReelValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.CreateReel(ctx, &model.Reel{Code: "not a code", Material: "PP"})
	assert.Error(t, err)

	err = s.CreateReel(ctx, &model.Reel{Code: "BOB-010", Material: "PP", QuantityAvailable: -1})
	assert.Error(t, err)

	reel := &model.Reel{Code: "BOB-010", Material: "PP"}
	require.NoError(t, s.CreateReel(ctx, reel))
	assert.NotEmpty(t, reel.ID)
	assert.Equal(t, model.PriorityMedium, reel.Priority, "priority defaults to media")
}

func TestListReelsFilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	low := seedReel(t, s, "BOB-020", 5)
	_, err := s.UpdateReel(ctx, low.ID, ReelUpdate{Priority: priorityPtr(model.PriorityLow)})
	require.NoError(t, err)
	seedReel(t, s, "BOB-021", 0)
	seedReel(t, s, "BOB-022", 9)

	all, err := s.ListReels(ctx, ReelFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "BOB-021", all[0].Code, "high priority reels come first")
	assert.Equal(t, "BOB-020", all[2].Code, "low priority reels come last")

	inStock, err := s.ListReels(ctx, ReelFilter{Status: StatusInStock})
	require.NoError(t, err)
	assert.Len(t, inStock, 2)

	empty, err := s.ListReels(ctx, ReelFilter{Status: StatusEmpty})
	require.NoError(t, err)
	require.Len(t, empty, 1)
	assert.Equal(t, "BOB-021", empty[0].Code)

	high, err := s.ListReels(ctx, ReelFilter{Priority: model.PriorityHigh})
	require.NoError(t, err)
	assert.Len(t, high, 2)
}

func priorityPtr(p model.Priority) *model.Priority { return &p }

func TestDeleteReelRetainedForAudit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reel := seedReel(t, s, "BOB-030", 10)
	machine := seedMachine(t, s, "Extrusora 1")

	_, err := s.ReserveStock(ctx, reel.ID, 2)
	require.NoError(t, err)
	_, err = s.AppendLedger(ctx, &model.LedgerEntry{
		ReelID:       reel.ID,
		MachineID:    machine.ID,
		QuantityUsed: 2,
		OperatorID:   "op1",
	})
	require.NoError(t, err)

	err = s.DeleteReel(ctx, reel.ID)
	assert.ErrorIs(t, err, ErrReelReferenced)

	// Still there.
	_, err = s.GetReel(ctx, reel.ID)
	assert.NoError(t, err)
}

func TestDeleteReelWithoutHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reel := seedReel(t, s, "BOB-031", 10)

	require.NoError(t, s.DeleteReel(ctx, reel.ID))
	_, err := s.GetReel(ctx, reel.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteReel(ctx, reel.ID), ErrNotFound)
}

func TestAssignReelReportsPrevious(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	machine := seedMachine(t, s, "Extrusora 2")
	first := seedReel(t, s, "BOB-040", 5)
	second := seedReel(t, s, "BOB-041", 5)

	prev, err := s.AssignReel(ctx, machine.ID, &first.ID)
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = s.AssignReel(ctx, machine.ID, &second.ID)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, first.ID, *prev)

	got, err := s.GetMachine(ctx, machine.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentReelID)
	assert.Equal(t, second.ID, *got.CurrentReelID)

	// Clearing works too.
	prev, err = s.AssignReel(ctx, machine.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, second.ID, *prev)

	_, err = s.AssignReel(ctx, uuid.NewString(), &first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendLedgerValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reel := seedReel(t, s, "BOB-050", 5)
	machine := seedMachine(t, s, "Extrusora 3")

	_, err := s.AppendLedger(ctx, &model.LedgerEntry{
		ReelID: reel.ID, MachineID: machine.ID, QuantityUsed: 0, OperatorID: "op1",
	})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = s.AppendLedger(ctx, &model.LedgerEntry{
		ReelID: reel.ID, MachineID: machine.ID, QuantityUsed: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = s.AppendLedger(ctx, &model.LedgerEntry{
		ReelID: uuid.NewString(), MachineID: machine.ID, QuantityUsed: 1, OperatorID: "op1",
	})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = s.AppendLedger(ctx, &model.LedgerEntry{
		ReelID: reel.ID, MachineID: uuid.NewString(), QuantityUsed: 1, OperatorID: "op1",
	})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	id, err := s.AppendLedger(ctx, &model.LedgerEntry{
		ReelID: reel.ID, MachineID: machine.ID, QuantityUsed: 1, OperatorID: "op1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestQueryLedgerFiltersAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	reelA := seedReel(t, s, "BOB-060", 50)
	reelB := seedReel(t, s, "BOB-061", 50)
	machine := seedMachine(t, s, "Extrusora 4")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []model.LedgerEntry{
		{ReelID: reelA.ID, MachineID: machine.ID, QuantityUsed: 3, OperatorID: "op1", UsedAt: base.Add(2 * time.Hour)},
		{ReelID: reelA.ID, MachineID: machine.ID, QuantityUsed: 1, OperatorID: "op2", UsedAt: base},
		{ReelID: reelB.ID, MachineID: machine.ID, QuantityUsed: 7, OperatorID: "op1", UsedAt: base.Add(time.Hour)},
	}
	for i := range entries {
		_, err := s.AppendLedger(ctx, &entries[i])
		require.NoError(t, err)
	}

	all, err := s.QueryLedger(ctx, LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].UsedAt.Before(all[1].UsedAt))
	assert.True(t, all[1].UsedAt.Before(all[2].UsedAt))

	forReelA, err := s.QueryLedger(ctx, LedgerFilter{ReelID: reelA.ID})
	require.NoError(t, err)
	assert.Len(t, forReelA, 2)

	forOp1, err := s.QueryLedger(ctx, LedgerFilter{OperatorID: "op1"})
	require.NoError(t, err)
	assert.Len(t, forOp1, 2)

	window, err := s.QueryLedger(ctx, LedgerFilter{
		From: base.Add(30 * time.Minute),
		To:   base.Add(90 * time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, reelB.ID, window[0].ReelID)
}

func TestDashboardStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	high := seedReel(t, s, "BOB-070", 10)
	_, err := s.UpdateReel(ctx, high.ID, ReelUpdate{WeightKG: floatPtr(2.5)})
	require.NoError(t, err)
	low := seedReel(t, s, "BOB-071", 4)
	_, err = s.UpdateReel(ctx, low.ID, ReelUpdate{Priority: priorityPtr(model.PriorityLow)})
	require.NoError(t, err)

	machine := seedMachine(t, s, "Extrusora 5")
	inactive := seedMachine(t, s, "Extrusora 6")
	_, err = s.UpdateMachine(ctx, inactive.ID, MachineUpdate{Active: boolPtr(false)})
	require.NoError(t, err)

	// Deplete the low-priority reel and record it.
	_, err = s.ReserveStock(ctx, low.ID, 4)
	require.NoError(t, err)
	_, err = s.AppendLedger(ctx, &model.LedgerEntry{
		ReelID: low.ID, MachineID: machine.ID, QuantityUsed: 4, OperatorID: "op1",
	})
	require.NoError(t, err)

	stats, err := s.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalReels)
	assert.Equal(t, int64(10), stats.TotalQuantity)
	assert.InDelta(t, 25.0, stats.TotalWeightKG, 0.001)
	assert.Equal(t, int64(1), stats.HighPriorityReels)
	assert.Equal(t, int64(1), stats.LowPriorityReels)
	assert.Equal(t, int64(1), stats.ReelsInMachine)
	assert.Equal(t, int64(2), stats.TotalMachines)
	assert.Equal(t, int64(1), stats.ActiveMachines)
	assert.Equal(t, int64(1), stats.TotalTransfers)
}

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func TestUpdateReelNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpdateReel(context.Background(), uuid.NewString(), ReelUpdate{Notes: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func strPtr(s string) *string { return &s }
