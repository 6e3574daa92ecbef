package models

import "time"

// Setting is one key/value application setting. Reads go through the
// per-request SettingsCache in the services package.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
