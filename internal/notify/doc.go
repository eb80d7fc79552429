// Package notify delivers state-change emails to every registered user.
//
// Each user record carries its own SMTP credentials; delivery
// authenticates as the user against their mail provider's submission
// port and sends the message from the user's address to itself. The
// provider is resolved from the domain part of the address via a fixed
// host:port table.
//
// Fanout is per-recipient and best-effort:
//
//   - a user record missing its email or password is skipped silently
//   - a malformed address or unsupported domain is recorded as a failure
//   - a refused or timed-out delivery is recorded as a failure
//
// No individual outcome affects delivery to the remaining users, and the
// fanout as a whole never fails.
package notify
