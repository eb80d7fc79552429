package hardware

import (
	"context"
	"errors"
	"testing"

	"github.com/betnix/hearth/internal/device"
)

// fakeDriver records the devices it was asked to drive.
type fakeDriver struct {
	applied []device.Device
	err     error
}

func (f *fakeDriver) Apply(_ context.Context, dev device.Device, on bool) error {
	dev.State = on
	f.applied = append(f.applied, dev)
	return f.err
}

func TestManager_Apply_RoutesByBackend(t *testing.T) {
	kasa := &fakeDriver{}
	gpio := &fakeDriver{}
	m := NewManager()
	m.Register(device.BackendKasa, kasa)
	m.Register(device.BackendGPIO, gpio)

	kasaDev := device.Device{Room: "kitchen", Type: "light", Backend: device.BackendKasa, Address: "192.168.1.50"}
	if err := m.Apply(context.Background(), kasaDev, true); err != nil {
		t.Fatalf("Apply(kasa) error = %v", err)
	}

	gpioDev := device.Device{Room: "hall", Type: "door", Backend: device.BackendGPIO, Pin: "front_door"}
	if err := m.Apply(context.Background(), gpioDev, false); err != nil {
		t.Fatalf("Apply(gpio) error = %v", err)
	}

	if len(kasa.applied) != 1 || kasa.applied[0].Room != "kitchen" {
		t.Errorf("kasa driver saw %+v", kasa.applied)
	}
	if len(gpio.applied) != 1 || gpio.applied[0].Room != "hall" {
		t.Errorf("gpio driver saw %+v", gpio.applied)
	}
}

func TestManager_Apply_UnsupportedBackend(t *testing.T) {
	m := NewManager()
	m.Register(device.BackendKasa, &fakeDriver{})

	dev := device.Device{Room: "hall", Type: "door", Backend: device.BackendGPIO, Pin: "front_door"}
	err := m.Apply(context.Background(), dev, true)
	if !errors.Is(err, ErrUnsupportedBackend) {
		t.Errorf("Apply() error = %v, want ErrUnsupportedBackend", err)
	}
}

func TestManager_Apply_DriverErrorPropagates(t *testing.T) {
	failing := &fakeDriver{err: ErrUnreachable}
	m := NewManager()
	m.Register(device.BackendKasa, failing)

	dev := device.Device{Room: "kitchen", Type: "light", Backend: device.BackendKasa, Address: "192.168.1.50"}
	err := m.Apply(context.Background(), dev, true)
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("Apply() error = %v, want ErrUnreachable", err)
	}
}
