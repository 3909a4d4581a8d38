package model

import "time"

// Setting is one key-value configuration row (unit prices, flat fees,
// usage-warning thresholds). Settings are mutable independently of
// historical invoices, which carry their own rate snapshot.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"size:256;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
