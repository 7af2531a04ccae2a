package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Operators subscribe to reels they care about and are notified when a
// transfer depletes one of them.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Reels []*Reel `gorm:"many2many:subscription_reel_mapping;"`
}
