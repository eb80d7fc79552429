package hardware

import (
	"context"
	"fmt"

	"github.com/betnix/hearth/internal/device"
)

// Driver applies a desired on/off state to one hardware backend.
type Driver interface {
	Apply(ctx context.Context, dev device.Device, on bool) error
}

// Manager dispatches state changes to the driver registered for each
// device's backend. It is the single Driver the registry sees.
type Manager struct {
	drivers map[device.Backend]Driver
}

// NewManager creates an empty driver manager.
func NewManager() *Manager {
	return &Manager{drivers: make(map[device.Backend]Driver)}
}

// Register attaches the driver for a backend, replacing any previous one.
func (m *Manager) Register(backend device.Backend, driver Driver) {
	m.drivers[backend] = driver
}

// Apply routes the state change to the device's backend driver.
// Returns ErrUnsupportedBackend when no driver is registered for it.
func (m *Manager) Apply(ctx context.Context, dev device.Device, on bool) error {
	driver, ok := m.drivers[dev.Backend]
	if !ok {
		return fmt.Errorf("%w: %q for %s", ErrUnsupportedBackend, dev.Backend, dev.Name())
	}
	return driver.Apply(ctx, dev, on)
}
