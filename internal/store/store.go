package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"bobina-estoque-backend/internal/model"
)

// ErrNotFound is returned when the referenced reel or machine does not exist.
var ErrNotFound = errors.New("record not found")

// ErrReelReferenced is returned when a reel cannot be deleted because
// ledger entries reference it. Reels with history are retained for audit.
var ErrReelReferenced = errors.New("reel is referenced by ledger entries")

// ErrInvalidEntry is returned for a malformed ledger entry.
var ErrInvalidEntry = errors.New("invalid ledger entry")

// ErrInvalidRelease is returned when a release would exceed the reel's
// recorded usage. It signals a compensation bug, not a missing record.
var ErrInvalidRelease = errors.New("release exceeds recorded usage")

// InsufficientStockError reports a reserve attempt that exceeded the
// reel's available quantity. Available carries the actual stock so the
// caller can surface it without a second round trip.
type InsufficientStockError struct {
	ReelID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for reel %s: requested %d, available %d",
		e.ReelID, e.Requested, e.Available)
}

// Store defines the interface for all database operations.
type Store interface {
	// Reels
	ListReels(ctx context.Context, filter ReelFilter) ([]model.Reel, error)
	GetReel(ctx context.Context, id string) (*model.Reel, error)
	CreateReel(ctx context.Context, reel *model.Reel) error
	UpdateReel(ctx context.Context, id string, update ReelUpdate) (*model.Reel, error)
	DeleteReel(ctx context.Context, id string) error
	ReserveStock(ctx context.Context, reelID string, qty int) (remaining int, err error)
	ReleaseStock(ctx context.Context, reelID string, qty int, sentAt *time.Time) error
	ClearInMachine(ctx context.Context, reelID string) error

	// Machines
	ListMachines(ctx context.Context) ([]model.Machine, error)
	GetMachine(ctx context.Context, id string) (*model.Machine, error)
	CreateMachine(ctx context.Context, machine *model.Machine) error
	UpdateMachine(ctx context.Context, id string, update MachineUpdate) (*model.Machine, error)
	DeleteMachine(ctx context.Context, id string) error
	AssignReel(ctx context.Context, machineID string, reelID *string) (previous *string, err error)

	// Ledger
	AppendLedger(ctx context.Context, entry *model.LedgerEntry) (string, error)
	QueryLedger(ctx context.Context, filter LedgerFilter) ([]model.LedgerEntry, error)

	// Aggregates
	DashboardStats(ctx context.Context) (*DashboardStats, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB

	// assignMu serializes reel assignment per machine id so that two
	// concurrent transfers targeting the same machine cannot lose updates.
	assignMu sync.Mutex
	machines map[string]*sync.Mutex
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{
		db:       db,
		machines: make(map[string]*sync.Mutex),
	}
}

// DB exposes the underlying gorm handle for callers that need ad-hoc
// queries or transactions (subscription handlers, tests).
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) machineLock(machineID string) *sync.Mutex {
	s.assignMu.Lock()
	defer s.assignMu.Unlock()
	mu, ok := s.machines[machineID]
	if !ok {
		mu = &sync.Mutex{}
		s.machines[machineID] = mu
	}
	return mu
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
