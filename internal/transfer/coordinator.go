package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"bobina-estoque-backend/internal/model"
	"bobina-estoque-backend/internal/store"
)

// Store is the slice of the store layer the coordinator drives.
type Store interface {
	GetReel(ctx context.Context, id string) (*model.Reel, error)
	GetMachine(ctx context.Context, id string) (*model.Machine, error)
	ReserveStock(ctx context.Context, reelID string, qty int) (remaining int, err error)
	ReleaseStock(ctx context.Context, reelID string, qty int, sentAt *time.Time) error
	ClearInMachine(ctx context.Context, reelID string) error
	AssignReel(ctx context.Context, machineID string, reelID *string) (previous *string, err error)
	AppendLedger(ctx context.Context, entry *model.LedgerEntry) (string, error)
}

// Notifier receives the id of a reel whose stock was depleted by a
// transfer. The notification worker pool satisfies this.
type Notifier interface {
	Dispatch(reelID string)
}

// Request describes one "move N units of reel R onto machine M" call.
type Request struct {
	ReelID     string
	MachineID  string
	Quantity   int
	OperatorID string
	Notes      string
}

// Result reports a recorded transfer back to the caller.
type Result struct {
	LedgerEntryID     string `json:"ledger_entry_id"`
	QuantityAvailable int    `json:"quantity_available"`
	QuantityUsed      int    `json:"quantity_used"`
}

// Coordinator performs the transfer-to-machine operation with
// all-or-nothing visibility: the stock decrement, the machine assignment
// and the ledger append either all take effect or none do. The stores
// are independently mutable, so later-step failures are compensated by
// reversing the earlier mutations rather than wrapped in a transaction.
type Coordinator struct {
	store    Store
	notifier Notifier
}

// NewCoordinator wires a coordinator. The notifier may be nil.
func NewCoordinator(s Store, n Notifier) *Coordinator {
	return &Coordinator{store: s, notifier: n}
}

// Transfer moves quantity units of the reel's stock onto the machine and
// records the usage in the ledger.
//
// Repeated identical calls are not deduplicated: each one transfers
// additional stock, matching the one-shot form-submit the operator UI
// issues.
func (c *Coordinator) Transfer(ctx context.Context, req Request) (*Result, error) {
	// Validate.
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.OperatorID == "" {
		return nil, ErrMissingOperator
	}
	reel, err := c.store.GetReel(ctx, req.ReelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReelNotFound
		}
		return nil, err
	}
	// Kept so compensation can put the timestamp back exactly as it was.
	priorSentAt := reel.SentToMachineAt
	if _, err := c.store.GetMachine(ctx, req.MachineID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrMachineNotFound
		}
		return nil, err
	}

	// Apply. The guarded decrement is the first mutation; when it fails
	// nothing has changed yet.
	remaining, err := c.store.ReserveStock(ctx, req.ReelID, req.Quantity)
	if err != nil {
		var insufficient *store.InsufficientStockError
		if errors.As(err, &insufficient) {
			return nil, insufficient
		}
		if errors.Is(err, store.ErrNotFound) {
			// The reel vanished between validation and apply.
			return nil, ErrReelNotFound
		}
		return nil, err
	}

	// Record: machine assignment first, then the ledger entry.
	previous, err := c.store.AssignReel(ctx, req.MachineID, &req.ReelID)
	if err != nil {
		c.releaseStock(ctx, req.ReelID, req.Quantity, priorSentAt)
		if errors.Is(err, store.ErrNotFound) {
			err = ErrMachineNotFound
		}
		return nil, &MachineAssignmentError{MachineID: req.MachineID, Cause: err}
	}

	entry := &model.LedgerEntry{
		ReelID:       req.ReelID,
		MachineID:    req.MachineID,
		QuantityUsed: req.Quantity,
		OperatorID:   req.OperatorID,
		UsedAt:       time.Now().UTC(),
		Notes:        req.Notes,
	}
	entryID, err := c.store.AppendLedger(ctx, entry)
	if err != nil {
		// Put the previous assignment back, then reverse the decrement.
		if _, assignErr := c.store.AssignReel(ctx, req.MachineID, previous); assignErr != nil {
			log.Error().Err(assignErr).
				Str("machine_id", req.MachineID).
				Msg("compensation failed: could not restore machine assignment")
		}
		c.releaseStock(ctx, req.ReelID, req.Quantity, priorSentAt)
		return nil, &LedgerAppendError{Cause: err}
	}

	// The machine swapped reels; the one it held before is off now.
	if previous != nil && *previous != req.ReelID {
		if err := c.store.ClearInMachine(ctx, *previous); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).
				Str("reel_id", *previous).
				Msg("could not clear in-machine flag of replaced reel")
		}
	}

	if remaining == 0 && c.notifier != nil {
		c.notifier.Dispatch(req.ReelID)
	}

	result := &Result{LedgerEntryID: entryID, QuantityAvailable: remaining}
	if reel, err := c.store.GetReel(ctx, req.ReelID); err == nil {
		result.QuantityAvailable = reel.QuantityAvailable
		result.QuantityUsed = reel.QuantityUsed
	}
	return result, nil
}

func (c *Coordinator) releaseStock(ctx context.Context, reelID string, qty int, sentAt *time.Time) {
	if err := c.store.ReleaseStock(ctx, reelID, qty, sentAt); err != nil {
		log.Error().Err(err).
			Str("reel_id", reelID).
			Int("quantity", qty).
			Msg("compensation failed: stock decrement could not be reversed")
	}
}
