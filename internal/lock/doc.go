// Package lock implements the smart-lock state machine engine.
//
// The engine models the lock as a deterministic finite state machine:
// a static transition table maps (current state, event) pairs to the next
// state, and heterogeneous triggers (keypad, biometric, proximity, mobile
// command, physical key, emergency, system, sensor) are translated into
// events by per-kind handlers that enforce authentication, authorization
// and failed-attempt lockout. Every executed transition is recorded in a
// bounded, append-only history.
//
// The engine performs no I/O of its own. Collaborators observe transitions
// through the Notifier hook and drive time-based behaviour (auto-lock,
// lockout expiry) by calling Tick or submitting system triggers.
//
// Thread Safety: all mutating operations serialize on a single mutex held
// for the full duration of the call. Status and History are consistent
// snapshots taken under the same lock.
package lock
