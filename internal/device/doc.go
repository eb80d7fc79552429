// Package device provides the Device Registry for Hearth.
//
// The Device Registry is the central catalogue of every controllable unit
// in a Hearth installation, keyed by (room, type). It owns the
// authoritative in-memory collection and drives every side effect of a
// state change: write-through persistence, hardware control, state
// history, event publication, and notification fanout.
//
// # Architecture
//
//	┌────────────────────────────────────────────────────────────┐
//	│                       Device Registry                       │
//	│                                                             │
//	│   Load ──▶ Store.LoadDevices (degrades to empty on error)   │
//	│                                                             │
//	│   SetState ──▶ mutate state (optimistic)                    │
//	│            ──▶ Store.SaveDevices (write-through)            │
//	│            ──▶ Driver.Apply (bounded wait)                  │
//	│            ──▶ StateHistoryRepository.RecordStateChange     │
//	│            ──▶ EventSink.StateChanged (MQTT, telemetry)     │
//	│            ──▶ Notifier.Notify (per-recipient isolation)    │
//	└────────────────────────────────────────────────────────────┘
//
// Each SetState side effect is independent and best-effort: hardware
// failure does not roll back the recorded intent, a save failure does not
// stop the hardware from being driven, and a notification failure never
// aborts the state change. The structured Result reports each outcome.
//
// # Key Types
//
//   - Device: a controllable unit with a boolean state and a Backend
//   - Backend: the hardware driver variant (kasa, gpio), fixed at load
//   - Event: a transient state-change record consumed by sinks and fanout
//   - Result: per-side-effect outcome of a SetState call
//
// # Usage
//
//	registry := device.NewRegistry(store)
//	registry.SetLogger(log)
//	registry.SetDriver(manager)
//	registry.SetNotifier(notifier)
//	registry.Load()
//
//	res, err := registry.SetState(ctx, "kitchen", "light", true)
package device
