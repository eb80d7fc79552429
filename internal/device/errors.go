package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a (room, type) pair is not registered.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidBackend is returned when a backend tag is not recognised.
	ErrInvalidBackend = errors.New("device: invalid backend")

	// ErrInvalidDevice is returned when a persisted device entry is
	// unusable, e.g. its backend tag is not recognised.
	ErrInvalidDevice = errors.New("device: invalid")
)
