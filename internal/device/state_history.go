package device

import (
	"context"
	"time"
)

// State history source values.
const (
	StateHistorySourceCommand = "command"
	StateHistorySourceStartup = "startup"
)

// StateHistoryEntry represents a single device state change record.
//
// Each entry records the new on/off state at the time the change was
// applied, providing a local audit trail for "when did the bedroom light
// last turn off" questions even when telemetry is disabled.
type StateHistoryEntry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// Room and Type identify the device.
	Room string `json:"room"`
	Type string `json:"type"`

	// On is the state the device was set to.
	On bool `json:"state"`

	// Source identifies how the state change was recorded.
	Source string `json:"source"`

	// CreatedAt is the timestamp of the state change (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// StateHistoryRepository stores and retrieves device state change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type StateHistoryRepository interface {
	// RecordStateChange records a device state change.
	RecordStateChange(ctx context.Context, room, deviceType string, on bool, source string) error

	// GetHistory returns recent state change history for the device,
	// ordered newest first. Implementations may clamp the limit.
	GetHistory(ctx context.Context, room, deviceType string, limit int) ([]StateHistoryEntry, error)
}
