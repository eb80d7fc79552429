package device

import (
	"fmt"
	"time"
)

// Backend identifies the hardware driver variant a device uses.
//
// The backend is fixed at load time and never changes for the lifetime of
// a device; only its State mutates at runtime.
type Backend string

// Backend constants.
const (
	// BackendKasa is a networked smart device controlled over TCP.
	BackendKasa Backend = "kasa"

	// BackendGPIO is a local digital-output pin on the host board.
	BackendGPIO Backend = "gpio"
)

// ParseBackend converts a stored backend tag to a Backend.
//
// The legacy tag "pi" (used by earlier device files) is accepted as an
// alias for the GPIO backend.
//
// Returns:
//   - Backend: Parsed backend variant
//   - error: ErrInvalidBackend if the tag is not recognised
func ParseBackend(tag string) (Backend, error) {
	switch tag {
	case "kasa":
		return BackendKasa, nil
	case "gpio", "pi":
		return BackendGPIO, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBackend, tag)
	}
}

// Device represents a controllable unit identified by (room, type) with a
// boolean on/off state and a hardware backend.
//
// Exactly one of Address or Pin is meaningful, depending on Backend:
// kasa devices carry a network address, GPIO devices carry a symbolic pin
// name resolved through the configured pin table.
type Device struct {
	// Identity: unique within the registry as a composite key.
	Room string `json:"-"`
	Type string `json:"-"`

	Backend Backend `json:"backend"`

	// Address is the network host/IP for kasa devices.
	Address string `json:"ip,omitempty"`

	// Pin is the symbolic pin name for GPIO devices.
	Pin string `json:"pin,omitempty"`

	// State is the current on/off state.
	State bool `json:"state"`
}

// Name returns the human-readable identity used in feedback and
// notifications, e.g. "light in kitchen".
func (d Device) Name() string {
	return fmt.Sprintf("%s in %s", d.Type, d.Room)
}

// Event describes a single device state change. Events are transient:
// constructed per change, fanned out to notification and telemetry sinks,
// then discarded.
type Event struct {
	Room string    `json:"room"`
	Type string    `json:"type"`
	On   bool      `json:"state"`
	At   time.Time `json:"timestamp"`
}

// StateWord returns "on" or "off" for the event's new state.
func (e Event) StateWord() string {
	if e.On {
		return "on"
	}
	return "off"
}
