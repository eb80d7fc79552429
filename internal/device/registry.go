package device

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store persists the device collection. Every mutation is written through
// immediately so on-disk state never lags the in-memory collection by more
// than one mutation.
type Store interface {
	// LoadDevices reads the persisted collection. A missing store returns
	// an empty collection with a nil error; a corrupt store returns an
	// error the caller recovers from.
	LoadDevices() ([]Device, error)

	// SaveDevices overwrites the persisted collection in place.
	SaveDevices(devices []Device) error
}

// Driver applies a desired on/off state to a device's hardware backend.
// Implementations must bound their own waits; a control attempt never
// hangs the caller indefinitely.
type Driver interface {
	Apply(ctx context.Context, d Device, on bool) error
}

// Notifier fans a state-change event out to interested recipients and
// returns the recipients that could not be reached. Fanout never fails as
// a whole; failures are per-recipient.
type Notifier interface {
	Notify(ctx context.Context, ev Event) (failed []string)
}

// EventSink receives state-change events for best-effort side channels
// (MQTT publication, telemetry). Sinks must not block for long and their
// failures never affect the state change itself.
type EventSink interface {
	StateChanged(ev Event)
}

// Result is the structured outcome of a SetState call. Each side effect
// is independent and best-effort: a hardware or notification failure is
// reported here, never raised to abort the others.
type Result struct {
	// Applied reports whether the in-memory state was mutated.
	Applied bool

	// Persisted reports whether the write-through save succeeded.
	Persisted bool

	// HardwareOK reports whether the hardware backend accepted the change.
	HardwareOK bool

	// HardwareErr carries the driver error when HardwareOK is false.
	HardwareErr error

	// NotifyFailures lists recipients that could not be notified.
	NotifyFailures []string

	// Feedback is the human-readable confirmation for speech output.
	Feedback string
}

// key is the composite registry key.
type key struct {
	room string
	typ  string
}

// Registry owns the authoritative in-memory device collection.
//
// All mutation flows through SetState, which serialises on an internal
// lock: the command path is single-threaded by construction, but the lock
// keeps the read-modify-persist sequence atomic if a second mutation path
// is ever added.
type Registry struct {
	store    Store
	driver   Driver
	notifier Notifier
	sinks    []EventSink
	history  StateHistoryRepository

	devices map[key]*Device
	mu      sync.RWMutex

	logger Logger
}

// NewRegistry creates a device registry backed by the given store.
// Collaborators (driver, notifier, sinks, history) are attached with the
// Set/Add methods before Load.
func NewRegistry(store Store) *Registry {
	return &Registry{
		store:   store,
		devices: make(map[key]*Device),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetDriver attaches the hardware driver dispatched on SetState.
func (r *Registry) SetDriver(driver Driver) {
	r.driver = driver
}

// SetNotifier attaches the notification dispatcher.
func (r *Registry) SetNotifier(notifier Notifier) {
	r.notifier = notifier
}

// AddEventSink registers an additional state-change sink.
func (r *Registry) AddEventSink(sink EventSink) {
	r.sinks = append(r.sinks, sink)
}

// SetHistory attaches the state history recorder.
func (r *Registry) SetHistory(history StateHistoryRepository) {
	r.history = history
}

// Load populates the registry from the persistence store.
//
// A missing or unreadable store degrades to an empty registry: the system
// starts with no known devices rather than failing. The error is logged,
// never returned.
func (r *Registry) Load() {
	devices, err := r.store.LoadDevices()
	if err != nil {
		r.logger.Warn("device store unreadable, starting with empty registry", "error", err)
		devices = nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices = make(map[key]*Device, len(devices))
	for i := range devices {
		d := devices[i]
		r.devices[key{d.Room, d.Type}] = &d
	}

	r.logger.Info("device registry loaded", "devices", len(devices))
}

// Lookup retrieves a device by its (room, type) identity.
// Returns ErrDeviceNotFound if no such device is registered.
// The returned device is a copy; callers can safely modify it.
func (r *Registry) Lookup(room, deviceType string) (Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[key{room, deviceType}]
	if !ok {
		return Device{}, ErrDeviceNotFound
	}
	return *d, nil
}

// List returns a copy of every registered device, ordered by room then type.
func (r *Registry) List() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, *d)
	}
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Room != devices[j].Room {
			return devices[i].Room < devices[j].Room
		}
		return devices[i].Type < devices[j].Type
	})
	return devices
}

// Count returns the number of registered devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// SetState records the desired state for a device and drives every side
// effect of the change:
//
//  1. Mutates the in-memory state (optimistically — hardware failure does
//     not roll back the recorded intent)
//  2. Write-through persists the full collection
//  3. Dispatches to the hardware driver with a bounded wait
//  4. Records state history and publishes the event to sinks
//  5. Fans the notification out to all recipients
//
// Each step is independent and best-effort; failures are surfaced in the
// Result, never raised to abort later steps. Redundant identical calls are
// not suppressed — every invocation runs the full flow.
//
// Returns ErrDeviceNotFound (and an empty Result) if (room, type) is not
// registered; any other failure is recovered into the Result.
func (r *Registry) SetState(ctx context.Context, room, deviceType string, desired bool) (Result, error) {
	r.mu.Lock()
	d, ok := r.devices[key{room, deviceType}]
	if !ok {
		r.mu.Unlock()
		return Result{}, ErrDeviceNotFound
	}

	d.State = desired
	dev := *d
	snapshot := make([]Device, 0, len(r.devices))
	for _, entry := range r.devices {
		snapshot = append(snapshot, *entry)
	}
	r.mu.Unlock()

	ev := Event{
		Room: room,
		Type: deviceType,
		On:   desired,
		At:   time.Now().UTC(),
	}

	res := Result{
		Applied:  true,
		Feedback: fmt.Sprintf("%s in %s turned %s", deviceType, room, ev.StateWord()),
	}

	// Write-through persistence. A save failure is a durability warning,
	// not a reason to abandon the hardware or notification steps.
	if err := r.store.SaveDevices(snapshot); err != nil {
		r.logger.Warn("device store save failed", "room", room, "type", deviceType, "error", err)
	} else {
		res.Persisted = true
	}

	// Hardware control, bounded by the driver's own timeouts.
	if r.driver == nil {
		res.HardwareErr = fmt.Errorf("no hardware driver configured")
	} else if err := r.driver.Apply(ctx, dev, desired); err != nil {
		res.HardwareErr = err
		r.logger.Warn("hardware control failed",
			"room", room,
			"type", deviceType,
			"backend", dev.Backend,
			"error", err,
		)
	} else {
		res.HardwareOK = true
	}

	// State history audit trail.
	if r.history != nil {
		if err := r.history.RecordStateChange(ctx, room, deviceType, desired, StateHistorySourceCommand); err != nil {
			r.logger.Warn("state history record failed", "room", room, "type", deviceType, "error", err)
		}
	}

	// Best-effort event sinks (MQTT, telemetry).
	for _, sink := range r.sinks {
		sink.StateChanged(ev)
	}

	// Notification fanout; failures are per-recipient and accumulated.
	if r.notifier != nil {
		res.NotifyFailures = r.notifier.Notify(ctx, ev)
		if len(res.NotifyFailures) > 0 {
			r.logger.Warn("notification fanout incomplete",
				"room", room,
				"type", deviceType,
				"failed", res.NotifyFailures,
			)
		}
	}

	r.logger.Info("device state set",
		"room", room,
		"type", deviceType,
		"state", ev.StateWord(),
		"persisted", res.Persisted,
		"hardware_ok", res.HardwareOK,
	)

	return res, nil
}
