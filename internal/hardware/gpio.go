package hardware

import (
	"context"
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/betnix/hearth/internal/device"
)

// gpioMemory abstracts the BCM GPIO register access so the driver can be
// exercised without Pi hardware.
type gpioMemory interface {
	Open() error
	Close() error
	SetOutput(pin int)
	Write(pin int, high bool)
}

// rpioMemory is the real register access via /dev/gpiomem.
type rpioMemory struct{}

func (rpioMemory) Open() error  { return rpio.Open() }
func (rpioMemory) Close() error { return rpio.Close() }

func (rpioMemory) SetOutput(pin int) {
	rpio.Pin(pin).Output()
}

func (rpioMemory) Write(pin int, high bool) {
	p := rpio.Pin(pin)
	if high {
		p.High()
	} else {
		p.Low()
	}
}

// GPIODriver controls locally wired devices (relays, strike plates)
// through the Pi's BCM GPIO pins.
//
// Devices reference pins by symbolic name; the name-to-BCM-number table
// comes from configuration, so rewiring a pin never touches the device
// store. On state true the pin is driven high, on false low.
type GPIODriver struct {
	pins map[string]int
	mem  gpioMemory

	mu         sync.Mutex
	opened     bool
	configured map[int]bool
}

// NewGPIODriver creates a GPIO driver over the given pin name table.
// Open must be called before the first Apply.
func NewGPIODriver(pins map[string]int) *GPIODriver {
	return &GPIODriver{
		pins:       pins,
		mem:        rpioMemory{},
		configured: make(map[int]bool),
	}
}

// setMemory overrides the register access. Used by tests.
func (d *GPIODriver) setMemory(mem gpioMemory) {
	d.mem = mem
}

// Open maps the GPIO registers. Returns ErrGPIOUnavailable when the
// memory cannot be opened (not a Pi, or missing permission).
func (d *GPIODriver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.opened {
		return nil
	}
	if err := d.mem.Open(); err != nil {
		return fmt.Errorf("%w: %v", ErrGPIOUnavailable, err)
	}
	d.opened = true
	return nil
}

// Apply drives the device's pin high or low.
//
// Returns ErrPinNotMapped when the device's pin name has no table entry
// and ErrGPIOUnavailable when Open has not succeeded.
func (d *GPIODriver) Apply(_ context.Context, dev device.Device, on bool) error {
	bcm, ok := d.pins[dev.Pin]
	if !ok {
		return fmt.Errorf("%w: %q for %s", ErrPinNotMapped, dev.Pin, dev.Name())
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened {
		return fmt.Errorf("%w: driver not opened", ErrGPIOUnavailable)
	}
	if !d.configured[bcm] {
		d.mem.SetOutput(bcm)
		d.configured[bcm] = true
	}
	d.mem.Write(bcm, on)
	return nil
}

// Close drives every configured pin low and releases the GPIO memory.
// Safe to call when Open never succeeded.
func (d *GPIODriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened {
		return nil
	}
	for bcm := range d.configured {
		d.mem.Write(bcm, false)
	}
	d.opened = false
	d.configured = make(map[int]bool)

	if err := d.mem.Close(); err != nil {
		return fmt.Errorf("closing gpio memory: %w", err)
	}
	return nil
}
