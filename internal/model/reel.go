package model

import "time"

// Priority ranks how urgently a reel should be consumed.
type Priority string

const (
	PriorityHigh   Priority = "alta"
	PriorityMedium Priority = "media"
	PriorityLow    Priority = "baixa"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns a sortable weight, highest priority first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Reel represents one batch of plastic film stock (a "bobina").
type Reel struct {
	ID                string   `gorm:"primaryKey;size:36" json:"id"`
	Code              string   `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Material          string   `gorm:"size:64;not null" json:"material"`
	Color             string   `gorm:"size:64" json:"color"`
	ThicknessMicrons  float64  `json:"thickness_microns"`
	WidthMM           float64  `gorm:"column:width_mm" json:"width_mm"`
	WeightKG          float64  `gorm:"column:weight_kg" json:"weight_kg"`
	QuantityAvailable int      `gorm:"not null" json:"quantity_available"`
	QuantityUsed      int      `gorm:"not null" json:"quantity_used"`
	Priority          Priority `gorm:"size:16;not null;default:media" json:"priority"`
	Location          string   `gorm:"size:64" json:"location"`
	Supplier          string   `gorm:"size:128" json:"supplier"`
	Notes             string   `json:"notes"`
	// InMachine is set when a transfer exhausts the available stock; the
	// whole remaining reel is then considered mounted on a machine.
	InMachine       bool       `gorm:"not null;default:false" json:"in_machine"`
	SentToMachineAt *time.Time `json:"sent_to_machine_at"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}
