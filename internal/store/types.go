package store

import (
	"time"

	"bobina-estoque-backend/internal/model"
)

// StockStatus narrows a reel listing to one slice of the stock lifecycle.
type StockStatus string

const (
	StatusAll       StockStatus = ""
	StatusInStock   StockStatus = "stock"
	StatusEmpty     StockStatus = "empty"
	StatusInMachine StockStatus = "in_machine"
)

// Valid reports whether s is a known stock status filter.
func (s StockStatus) Valid() bool {
	switch s {
	case StatusAll, StatusInStock, StatusEmpty, StatusInMachine:
		return true
	}
	return false
}

// ReelFilter selects which reels a listing returns.
type ReelFilter struct {
	Priority model.Priority
	Status   StockStatus
	Material string
}

// ReelUpdate is a partial update applied by the operator edit-action.
// Nil fields are left untouched.
type ReelUpdate struct {
	Code              *string
	Material          *string
	Color             *string
	ThicknessMicrons  *float64
	WidthMM           *float64
	WeightKG          *float64
	QuantityAvailable *int
	Priority          *model.Priority
	Location          *string
	Supplier          *string
	Notes             *string
}

// MachineUpdate is a partial update for a machine record.
type MachineUpdate struct {
	Name       *string
	Active     *bool
	OperatorID *string
}

// LedgerFilter selects ledger entries; zero values mean "any".
type LedgerFilter struct {
	ReelID     string
	MachineID  string
	OperatorID string
	From       time.Time
	To         time.Time
}

// DashboardStats carries the aggregate counters shown on the dashboard.
type DashboardStats struct {
	TotalReels        int64   `json:"total_reels"`
	TotalQuantity     int64   `json:"total_quantity"`
	TotalWeightKG     float64 `json:"total_weight_kg"`
	HighPriorityReels int64   `json:"high_priority_reels"`
	MediumPriority    int64   `json:"medium_priority_reels"`
	LowPriorityReels  int64   `json:"low_priority_reels"`
	ReelsInMachine    int64   `json:"reels_in_machine"`
	TotalMachines     int64   `json:"total_machines"`
	ActiveMachines    int64   `json:"active_machines"`
	TotalTransfers    int64   `json:"total_transfers"`
}
