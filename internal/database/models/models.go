// Package models contains the database model definitions.
// These models map to the SQLite tables that persist controller
// preferences between runs.
package models

import (
	"time"
)

// Setting represents a persisted preference (log level, last MIDI port,
// throttle overrides).
// Table: settings
type Setting struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Key       string    `gorm:"column:key;uniqueIndex"`
	Value     string    `gorm:"column:value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Setting) TableName() string { return "settings" }

// Well-known setting keys.
const (
	SettingLogLevel = "log_level"
	SettingMIDIPort = "midi_port"
)

// ControlMapping represents a user-defined MIDI mapping persisted across
// runs. Position preserves the table's insertion order, which determines
// first-match-wins resolution for duplicate (control, channel) pairs.
// Table: control_mappings
type ControlMapping struct {
	ID             string    `gorm:"column:id;primaryKey"`
	Name           string    `gorm:"column:name;uniqueIndex"`
	Control        int       `gorm:"column:control"`
	Channel        int       `gorm:"column:channel"`
	ControlType    string    `gorm:"column:control_type"`
	TargetFunction string    `gorm:"column:target_function"`
	TargetMin      float64   `gorm:"column:target_min"`
	TargetMax      float64   `gorm:"column:target_max"`
	Enabled        bool      `gorm:"column:enabled;default:true"`
	Description    string    `gorm:"column:description"`
	Position       int       `gorm:"column:position"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ControlMapping) TableName() string { return "control_mappings" }
