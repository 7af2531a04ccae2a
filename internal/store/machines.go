package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bobina-estoque-backend/internal/model"
)

func (s *gormStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	err := s.db.WithContext(ctx).
		Preload("CurrentReel").
		Order("name ASC").
		Find(&machines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

func (s *gormStore) GetMachine(ctx context.Context, id string) (*model.Machine, error) {
	var machine model.Machine
	if err := s.db.WithContext(ctx).Preload("CurrentReel").First(&machine, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &machine, nil
}

func (s *gormStore) CreateMachine(ctx context.Context, machine *model.Machine) error {
	if machine.ID == "" {
		machine.ID = uuid.NewString()
	}
	if machine.Name == "" {
		return fmt.Errorf("machine name is required")
	}
	return s.db.WithContext(ctx).Create(machine).Error
}

func (s *gormStore) UpdateMachine(ctx context.Context, id string, update MachineUpdate) (*model.Machine, error) {
	values := make(map[string]any)
	if update.Name != nil {
		if *update.Name == "" {
			return nil, fmt.Errorf("machine name is required")
		}
		values["name"] = *update.Name
	}
	if update.Active != nil {
		values["active"] = *update.Active
	}
	if update.OperatorID != nil {
		if *update.OperatorID == "" {
			values["operator_id"] = nil
		} else {
			values["operator_id"] = *update.OperatorID
		}
	}

	if len(values) > 0 {
		res := s.db.WithContext(ctx).Model(&model.Machine{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetMachine(ctx, id)
}

func (s *gormStore) DeleteMachine(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Machine{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignReel sets the machine's current reel and reports the previous
// assignment so the caller can decide whether to free the prior reel.
// The read-modify-write runs under a per-machine lock and a transaction;
// assignment itself is last-writer-wins.
func (s *gormStore) AssignReel(ctx context.Context, machineID string, reelID *string) (*string, error) {
	mu := s.machineLock(machineID)
	mu.Lock()
	defer mu.Unlock()

	var previous *string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var machine model.Machine
		if err := tx.First(&machine, "id = ?", machineID).Error; err != nil {
			return translateNotFound(err)
		}
		previous = machine.CurrentReelID
		return tx.Model(&model.Machine{}).
			Where("id = ?", machineID).
			Update("current_reel_id", reelID).Error
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}
