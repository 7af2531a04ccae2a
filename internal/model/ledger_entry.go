package model

import "time"

// LedgerEntry is the immutable record of one stock transfer onto a
// machine. Entries are append-only: never updated, never deleted.
type LedgerEntry struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	ReelID       string    `gorm:"size:36;not null;index" json:"reel_id"`
	MachineID    string    `gorm:"size:36;not null;index" json:"machine_id"`
	QuantityUsed int       `gorm:"not null" json:"quantity_used"`
	OperatorID   string    `gorm:"size:64;not null;index" json:"operator_id"`
	UsedAt       time.Time `gorm:"not null;index" json:"used_at"`
	Notes        string    `json:"notes"`
}
