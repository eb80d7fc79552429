// Package mqtt publishes Hearth's device state to an MQTT broker.
//
// The broker is an optional, outbound-only side channel: every state
// change is published retained to its device topic, and the service's
// own liveness is tracked on hearth/system/status via a Last Will and
// Testament. Nothing in Hearth consumes MQTT; dashboards and other
// services subscribe.
//
// # Topic Hierarchy
//
//	hearth/core/device/{room}/{type}/state   retained per-device state
//	hearth/core/event/{event_type}           transient core events
//	hearth/system/status                     online/offline (retained, LWT)
//
// The client reconnects automatically with exponential backoff. Publish
// failures while disconnected return ErrNotConnected and are absorbed by
// the caller; state publication is best-effort by design.
package mqtt
