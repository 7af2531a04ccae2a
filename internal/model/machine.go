package model

import "time"

// Machine represents a production unit that consumes reel stock.
// A machine holds at most one reel at a time.
type Machine struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Active        bool      `gorm:"not null;default:true" json:"active"`
	CurrentReelID *string   `gorm:"size:36;index" json:"current_reel_id"`
	OperatorID    *string   `gorm:"size:64" json:"operator_id"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	CurrentReel *Reel `gorm:"foreignKey:CurrentReelID" json:"current_reel,omitempty"`
}
