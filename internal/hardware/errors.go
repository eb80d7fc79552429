package hardware

import "errors"

var (
	// ErrUnsupportedBackend indicates no driver is registered for the
	// device's backend.
	ErrUnsupportedBackend = errors.New("hardware: unsupported backend")

	// ErrUnreachable indicates the device could not be contacted on the
	// network within the dial timeout.
	ErrUnreachable = errors.New("hardware: device unreachable")

	// ErrCommandFailed indicates the device was reached but rejected the
	// command or returned a malformed response.
	ErrCommandFailed = errors.New("hardware: command failed")

	// ErrPinNotMapped indicates a GPIO device references a pin name with
	// no entry in the configured pin table.
	ErrPinNotMapped = errors.New("hardware: pin not mapped")

	// ErrGPIOUnavailable indicates GPIO memory could not be opened, usually
	// because the process is not running on a Pi or lacks permission.
	ErrGPIOUnavailable = errors.New("hardware: gpio unavailable")
)
