package store

import (
	"context"
	"fmt"

	"bobina-estoque-backend/internal/model"
)

// DashboardStats computes the aggregate counters shown on the dashboard
// with a handful of grouped queries instead of loading every row.
func (s *gormStore) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	type reelAgg struct {
		Priority      model.Priority
		Count         int64
		TotalQuantity int64
		TotalWeight   float64
	}
	var reelAggs []reelAgg
	err := s.db.WithContext(ctx).Model(&model.Reel{}).
		Select("priority, COUNT(*) as count, " +
			"COALESCE(SUM(quantity_available), 0) as total_quantity, " +
			"COALESCE(SUM(weight_kg * quantity_available), 0) as total_weight").
		Group("priority").
		Scan(&reelAggs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate reels: %w", err)
	}
	for _, agg := range reelAggs {
		stats.TotalReels += agg.Count
		stats.TotalQuantity += agg.TotalQuantity
		stats.TotalWeightKG += agg.TotalWeight
		switch agg.Priority {
		case model.PriorityHigh:
			stats.HighPriorityReels = agg.Count
		case model.PriorityMedium:
			stats.MediumPriority = agg.Count
		case model.PriorityLow:
			stats.LowPriorityReels = agg.Count
		}
	}

	if err := s.db.WithContext(ctx).Model(&model.Reel{}).
		Where("in_machine = ?", true).
		Count(&stats.ReelsInMachine).Error; err != nil {
		return nil, fmt.Errorf("failed to count reels in machine: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&model.Machine{}).Count(&stats.TotalMachines).Error; err != nil {
		return nil, fmt.Errorf("failed to count machines: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&model.Machine{}).
		Where("active = ?", true).
		Count(&stats.ActiveMachines).Error; err != nil {
		return nil, fmt.Errorf("failed to count active machines: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&model.LedgerEntry{}).Count(&stats.TotalTransfers).Error; err != nil {
		return nil, fmt.Errorf("failed to count transfers: %w", err)
	}

	return &stats, nil
}
