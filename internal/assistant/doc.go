// Package assistant is Hearth's command front end: it listens for lines
// addressed to the assistant, resolves them against the device registry,
// and speaks the outcome.
//
// # Flow
//
//	stdin ──▶ Listener (wake phrase filter)
//	              │
//	              ▼
//	         Assistant.HandleCommand
//	              │
//	     ┌────────┴─────────┐
//	     ▼                  ▼
//	matches found       no match
//	SetState per        Responder.Reply
//	device + speak      (fallback line on
//	confirmation        failure) + speak
//
// Every handled command ends in speech: a per-device confirmation, a
// conversational reply, or the fixed "I didn't understand that." line.
// Command handling never returns an error to the listener loop; device
// and responder failures are logged and absorbed.
package assistant
