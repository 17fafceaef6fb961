package model

import "time"

// DeviceState is a persisted key/value pair in the unit's non-volatile store.
type DeviceState struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:256;not null"`
	UpdatedAt time.Time
}
