package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bobina-estoque-backend/internal/model"
)

// AppendLedger records one transfer in the usage history. Entries are
// append-only; malformed entries (non-positive quantity, unknown reel or
// machine) are rejected without a write.
func (s *gormStore) AppendLedger(ctx context.Context, entry *model.LedgerEntry) (string, error) {
	if entry.QuantityUsed <= 0 {
		return "", fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidEntry, entry.QuantityUsed)
	}
	if entry.OperatorID == "" {
		return "", fmt.Errorf("%w: operator id is required", ErrInvalidEntry)
	}

	var reelCount int64
	if err := s.db.WithContext(ctx).Model(&model.Reel{}).Where("id = ?", entry.ReelID).Count(&reelCount).Error; err != nil {
		return "", err
	}
	if reelCount == 0 {
		return "", fmt.Errorf("%w: unknown reel %s", ErrInvalidEntry, entry.ReelID)
	}

	var machineCount int64
	if err := s.db.WithContext(ctx).Model(&model.Machine{}).Where("id = ?", entry.MachineID).Count(&machineCount).Error; err != nil {
		return "", err
	}
	if machineCount == 0 {
		return "", fmt.Errorf("%w: unknown machine %s", ErrInvalidEntry, entry.MachineID)
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.UsedAt.IsZero() {
		entry.UsedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return "", fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return entry.ID, nil
}

// QueryLedger returns matching entries ordered by usage time ascending.
func (s *gormStore) QueryLedger(ctx context.Context, filter LedgerFilter) ([]model.LedgerEntry, error) {
	q := s.db.WithContext(ctx).Model(&model.LedgerEntry{})

	if filter.ReelID != "" {
		q = q.Where("reel_id = ?", filter.ReelID)
	}
	if filter.MachineID != "" {
		q = q.Where("machine_id = ?", filter.MachineID)
	}
	if filter.OperatorID != "" {
		q = q.Where("operator_id = ?", filter.OperatorID)
	}
	if !filter.From.IsZero() {
		q = q.Where("used_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("used_at <= ?", filter.To)
	}

	var entries []model.LedgerEntry
	if err := q.Order("used_at ASC").Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	return entries, nil
}
