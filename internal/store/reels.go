package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bobina-estoque-backend/internal/model"
	"bobina-estoque-backend/internal/parse"
)

// ListReels returns reels matching the filter, highest priority first.
func (s *gormStore) ListReels(ctx context.Context, filter ReelFilter) ([]model.Reel, error) {
	q := s.db.WithContext(ctx).Model(&model.Reel{})

	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Material != "" {
		q = q.Where("material = ?", filter.Material)
	}
	switch filter.Status {
	case StatusInStock:
		q = q.Where("quantity_available > 0")
	case StatusEmpty:
		q = q.Where("quantity_available = 0")
	case StatusInMachine:
		q = q.Where("in_machine = ?", true)
	}

	var reels []model.Reel
	err := q.Order("CASE priority WHEN 'alta' THEN 3 WHEN 'media' THEN 2 WHEN 'baixa' THEN 1 ELSE 0 END DESC").
		Order("code ASC").
		Find(&reels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reels: %w", err)
	}
	return reels, nil
}

func (s *gormStore) GetReel(ctx context.Context, id string) (*model.Reel, error) {
	var reel model.Reel
	if err := s.db.WithContext(ctx).First(&reel, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &reel, nil
}

// CreateReel inserts a new reel. The id is generated when absent and the
// code must parse as a valid reel code.
func (s *gormStore) CreateReel(ctx context.Context, reel *model.Reel) error {
	if reel.ID == "" {
		reel.ID = uuid.NewString()
	}
	if _, err := parse.ParseCode(reel.Code); err != nil {
		return fmt.Errorf("invalid reel code %q: %w", reel.Code, err)
	}
	if reel.QuantityAvailable < 0 || reel.QuantityUsed < 0 {
		return fmt.Errorf("reel quantities must be non-negative")
	}
	if reel.Priority == "" {
		reel.Priority = model.PriorityMedium
	}
	if !reel.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", reel.Priority)
	}
	return s.db.WithContext(ctx).Create(reel).Error
}

// UpdateReel applies the operator edit-action.
func (s *gormStore) UpdateReel(ctx context.Context, id string, update ReelUpdate) (*model.Reel, error) {
	values := make(map[string]any)
	if update.Code != nil {
		if _, err := parse.ParseCode(*update.Code); err != nil {
			return nil, fmt.Errorf("invalid reel code %q: %w", *update.Code, err)
		}
		values["code"] = *update.Code
	}
	if update.Material != nil {
		values["material"] = *update.Material
	}
	if update.Color != nil {
		values["color"] = *update.Color
	}
	if update.ThicknessMicrons != nil {
		values["thickness_microns"] = *update.ThicknessMicrons
	}
	if update.WidthMM != nil {
		values["width_mm"] = *update.WidthMM
	}
	if update.WeightKG != nil {
		values["weight_kg"] = *update.WeightKG
	}
	if update.QuantityAvailable != nil {
		if *update.QuantityAvailable < 0 {
			return nil, fmt.Errorf("quantity_available must be non-negative")
		}
		values["quantity_available"] = *update.QuantityAvailable
	}
	if update.Priority != nil {
		if !update.Priority.Valid() {
			return nil, fmt.Errorf("invalid priority %q", *update.Priority)
		}
		values["priority"] = *update.Priority
	}
	if update.Location != nil {
		values["location"] = *update.Location
	}
	if update.Supplier != nil {
		values["supplier"] = *update.Supplier
	}
	if update.Notes != nil {
		values["notes"] = *update.Notes
	}

	if len(values) > 0 {
		res := s.db.WithContext(ctx).Model(&model.Reel{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetReel(ctx, id)
}

// DeleteReel removes a reel that has no usage history. Reels referenced
// by ledger entries are retained for audit and report a conflict.
func (s *gormStore) DeleteReel(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&model.LedgerEntry{}).Where("reel_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrReelReferenced
		}

		// Unhook any machine still pointing at the reel.
		if err := tx.Model(&model.Machine{}).
			Where("current_reel_id = ?", id).
			Update("current_reel_id", nil).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Reel{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ReserveStock atomically checks and decrements a reel's available
// quantity while incrementing its used counter by the same amount. The
// guard and the decrement happen in a single conditional UPDATE so two
// concurrent reserves can never both succeed past the available stock.
// A reel whose stock reaches zero is flagged as mounted on a machine.
func (s *gormStore) ReserveStock(ctx context.Context, reelID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("reserve quantity must be positive, got %d", qty)
	}

	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&model.Reel{}).
		Where("id = ? AND quantity_available >= ?", reelID, qty).
		Updates(map[string]any{
			"quantity_available": gorm.Expr("quantity_available - ?", qty),
			"quantity_used":      gorm.Expr("quantity_used + ?", qty),
			"in_machine":         gorm.Expr("quantity_available - ? = 0", qty),
			"sent_to_machine_at": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to reserve stock for reel %s: %w", reelID, res.Error)
	}

	if res.RowsAffected == 0 {
		// Either the reel does not exist or the guard rejected the amount.
		reel, err := s.GetReel(ctx, reelID)
		if err != nil {
			return 0, err
		}
		return reel.QuantityAvailable, &InsufficientStockError{
			ReelID:    reelID,
			Requested: qty,
			Available: reel.QuantityAvailable,
		}
	}

	reel, err := s.GetReel(ctx, reelID)
	if err != nil {
		return 0, err
	}
	return reel.QuantityAvailable, nil
}

// ReleaseStock reverses a prior ReserveStock of the same amount. It is
// the compensation path: after it runs, the reel's counters, in-machine
// flag and sent-to-machine timestamp equal their values before the
// reserve. The caller supplies sentAt as observed before the reserve.
func (s *gormStore) ReleaseStock(ctx context.Context, reelID string, qty int, sentAt *time.Time) error {
	if qty <= 0 {
		return fmt.Errorf("release quantity must be positive, got %d", qty)
	}

	res := s.db.WithContext(ctx).Model(&model.Reel{}).
		Where("id = ? AND quantity_used >= ?", reelID, qty).
		Updates(map[string]any{
			"quantity_available": gorm.Expr("quantity_available + ?", qty),
			"quantity_used":      gorm.Expr("quantity_used - ?", qty),
			"in_machine":         false,
			"sent_to_machine_at": sentAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to release stock for reel %s: %w", reelID, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetReel(ctx, reelID); err != nil {
			return err
		}
		return fmt.Errorf("%w: reel %s, quantity %d", ErrInvalidRelease, reelID, qty)
	}
	return nil
}

// ClearInMachine drops the in-machine flag, used when a machine swaps to
// a different reel and the previous one is taken off.
func (s *gormStore) ClearInMachine(ctx context.Context, reelID string) error {
	res := s.db.WithContext(ctx).Model(&model.Reel{}).
		Where("id = ?", reelID).
		Update("in_machine", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
