package models

import "time"

// Notification is one entry of the in-app notification log. Seq is the
// insertion-order key the FIFO cap is enforced on; ID is the public
// identifier handed to clients.
type Notification struct {
	Seq       int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	ID        string    `gorm:"size:64;uniqueIndex;not null" json:"id"`
	UserID    string    `gorm:"size:64;not null;index" json:"user_id"`
	ProjectID string    `gorm:"size:64;index" json:"project_id,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

// PushSubscription is one registered push delivery target. The endpoint is
// the identity: one physical device cannot hold two registrations, so
// re-registration overwrites user and keys in place.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey" json:"endpoint"`
	UserID    string    `gorm:"size:64;not null;index" json:"user_id"`
	P256dh    string    `gorm:"not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
