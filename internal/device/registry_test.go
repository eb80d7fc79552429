package device

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// MockStore is a test implementation of Store.
type MockStore struct {
	mu      sync.Mutex
	devices []Device
	loadErr error
	saveErr error
	saves   int
}

func (m *MockStore) LoadDevices() ([]Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]Device, len(m.devices))
	copy(out, m.devices)
	return out, nil
}

func (m *MockStore) SaveDevices(devices []Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.devices = make([]Device, len(devices))
	copy(m.devices, devices)
	m.saves++
	return nil
}

func (m *MockStore) saved(room, deviceType string) (Device, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.devices {
		if d.Room == room && d.Type == deviceType {
			return d, true
		}
	}
	return Device{}, false
}

// MockDriver records Apply calls and optionally fails.
type MockDriver struct {
	mu       sync.Mutex
	applies  []Device
	applyErr error
}

func (m *MockDriver) Apply(_ context.Context, d Device, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.State = on
	m.applies = append(m.applies, d)
	return m.applyErr
}

func (m *MockDriver) applyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.applies)
}

// MockNotifier records events and returns canned failures.
type MockNotifier struct {
	mu       sync.Mutex
	events   []Event
	failures []string
}

func (m *MockNotifier) Notify(_ context.Context, ev Event) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return m.failures
}

// MockSink records published events.
type MockSink struct {
	mu     sync.Mutex
	events []Event
}

func (m *MockSink) StateChanged(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// MockHistory records state changes.
type MockHistory struct {
	mu      sync.Mutex
	records []StateHistoryEntry
}

func (m *MockHistory) RecordStateChange(_ context.Context, room, deviceType string, on bool, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, StateHistoryEntry{Room: room, Type: deviceType, On: on, Source: source})
	return nil
}

func (m *MockHistory) GetHistory(_ context.Context, _, _ string, _ int) ([]StateHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]StateHistoryEntry, len(m.records))
	copy(out, m.records)
	return out, nil
}

func testDevices() []Device {
	return []Device{
		{Room: "kitchen", Type: "light", Backend: BackendKasa, Address: "192.168.1.50"},
		{Room: "bedroom", Type: "light", Backend: BackendKasa, Address: "192.168.1.51"},
		{Room: "hall", Type: "door", Backend: BackendGPIO, Pin: "front_door"},
	}
}

func newTestRegistry(store *MockStore) *Registry {
	r := NewRegistry(store)
	r.Load()
	return r
}

func TestRegistry_Load(t *testing.T) {
	store := &MockStore{devices: testDevices()}
	r := newTestRegistry(store)

	if got := r.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
}

func TestRegistry_Load_CorruptStoreDegradesToEmpty(t *testing.T) {
	store := &MockStore{loadErr: errors.New("parse error")}
	r := newTestRegistry(store)

	if got := r.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0 for unreadable store", got)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := newTestRegistry(&MockStore{devices: testDevices()})

	d, err := r.Lookup("kitchen", "light")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if d.Backend != BackendKasa || d.Address != "192.168.1.50" {
		t.Errorf("Lookup() = %+v, wrong device", d)
	}
}

func TestRegistry_Lookup_NotFound(t *testing.T) {
	r := newTestRegistry(&MockStore{devices: testDevices()})

	_, err := r.Lookup("garage", "light")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Lookup() error = %v, want ErrDeviceNotFound", err)
	}
}

func TestRegistry_List_Sorted(t *testing.T) {
	r := newTestRegistry(&MockStore{devices: testDevices()})

	devices := r.List()
	if len(devices) != 3 {
		t.Fatalf("List() returned %d devices, want 3", len(devices))
	}
	if devices[0].Room != "bedroom" || devices[2].Room != "kitchen" {
		t.Errorf("List() not ordered by room: %v, %v, %v",
			devices[0].Room, devices[1].Room, devices[2].Room)
	}
}

func TestRegistry_SetState_NotFound(t *testing.T) {
	store := &MockStore{devices: testDevices()}
	r := newTestRegistry(store)
	driver := &MockDriver{}
	r.SetDriver(driver)

	_, err := r.SetState(context.Background(), "garage", "light", true)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("SetState() error = %v, want ErrDeviceNotFound", err)
	}
	if driver.applyCount() != 0 {
		t.Error("SetState() on unknown device must not drive hardware")
	}
	if store.saves != 0 {
		t.Error("SetState() on unknown device must not persist")
	}
}

func TestRegistry_SetState_FullFlow(t *testing.T) {
	store := &MockStore{devices: testDevices()}
	r := newTestRegistry(store)
	driver := &MockDriver{}
	notifier := &MockNotifier{}
	sink := &MockSink{}
	history := &MockHistory{}
	r.SetDriver(driver)
	r.SetNotifier(notifier)
	r.AddEventSink(sink)
	r.SetHistory(history)

	res, err := r.SetState(context.Background(), "kitchen", "light", true)
	if err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	if !res.Applied || !res.Persisted || !res.HardwareOK {
		t.Errorf("Result = %+v, want applied/persisted/hardware ok", res)
	}
	if res.Feedback != "light in kitchen turned on" {
		t.Errorf("Feedback = %q", res.Feedback)
	}

	if d, _ := r.Lookup("kitchen", "light"); !d.State {
		t.Error("in-memory state not mutated")
	}
	if saved, ok := store.saved("kitchen", "light"); !ok || !saved.State {
		t.Error("write-through persistence did not record new state")
	}
	if driver.applyCount() != 1 {
		t.Errorf("driver applied %d times, want 1", driver.applyCount())
	}
	if len(notifier.events) != 1 || notifier.events[0].StateWord() != "on" {
		t.Errorf("notifier events = %+v", notifier.events)
	}
	if len(sink.events) != 1 {
		t.Errorf("sink events = %d, want 1", len(sink.events))
	}
	if len(history.records) != 1 || history.records[0].Source != StateHistorySourceCommand {
		t.Errorf("history records = %+v", history.records)
	}
}

func TestRegistry_SetState_Idempotence(t *testing.T) {
	// Two identical calls each run the full flow; there is no suppression
	// of redundant commands.
	store := &MockStore{devices: testDevices()}
	r := newTestRegistry(store)
	driver := &MockDriver{}
	notifier := &MockNotifier{}
	r.SetDriver(driver)
	r.SetNotifier(notifier)

	for i := 0; i < 2; i++ {
		if _, err := r.SetState(context.Background(), "bedroom", "light", true); err != nil {
			t.Fatalf("SetState() call %d error = %v", i+1, err)
		}
	}

	if d, _ := r.Lookup("bedroom", "light"); !d.State {
		t.Error("final state should be on")
	}
	if driver.applyCount() != 2 {
		t.Errorf("driver applied %d times, want 2", driver.applyCount())
	}
	if len(notifier.events) != 2 {
		t.Errorf("notifier fanned out %d times, want 2", len(notifier.events))
	}
	if store.saves != 2 {
		t.Errorf("persisted %d times, want 2", store.saves)
	}
}

func TestRegistry_SetState_HardwareFailureDoesNotBlockPersistence(t *testing.T) {
	store := &MockStore{devices: testDevices()}
	r := newTestRegistry(store)
	driver := &MockDriver{applyErr: errors.New("unreachable")}
	notifier := &MockNotifier{}
	r.SetDriver(driver)
	r.SetNotifier(notifier)

	res, err := r.SetState(context.Background(), "kitchen", "light", true)
	if err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	if res.HardwareOK {
		t.Error("HardwareOK should be false")
	}
	if res.HardwareErr == nil {
		t.Error("HardwareErr should carry the driver error")
	}
	if !res.Applied || !res.Persisted {
		t.Errorf("Result = %+v, state and persistence must proceed despite hardware failure", res)
	}
	if saved, _ := store.saved("kitchen", "light"); !saved.State {
		t.Error("write-through persistence must reflect the new state even when hardware failed")
	}
	if len(notifier.events) != 1 {
		t.Error("notification must still fan out after hardware failure")
	}
}

func TestRegistry_SetState_SaveFailureDoesNotBlockHardware(t *testing.T) {
	store := &MockStore{devices: testDevices(), saveErr: errors.New("disk full")}
	r := newTestRegistry(store)
	driver := &MockDriver{}
	r.SetDriver(driver)

	res, err := r.SetState(context.Background(), "hall", "door", false)
	if err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	if res.Persisted {
		t.Error("Persisted should be false")
	}
	if !res.Applied || !res.HardwareOK {
		t.Errorf("Result = %+v, hardware must still be driven on save failure", res)
	}
	if d, _ := r.Lookup("hall", "door"); d.State {
		t.Error("in-memory state must change despite save failure")
	}
}

func TestRegistry_SetState_NotifyFailuresSurfaced(t *testing.T) {
	store := &MockStore{devices: testDevices()}
	r := newTestRegistry(store)
	r.SetDriver(&MockDriver{})
	r.SetNotifier(&MockNotifier{failures: []string{"bad@nowhere.example"}})

	res, err := r.SetState(context.Background(), "kitchen", "light", false)
	if err != nil {
		t.Fatalf("SetState() error = %v", err)
	}

	if len(res.NotifyFailures) != 1 || res.NotifyFailures[0] != "bad@nowhere.example" {
		t.Errorf("NotifyFailures = %v", res.NotifyFailures)
	}
	if !res.Applied || !res.Persisted {
		t.Error("notification failures must not affect the state change")
	}
}
