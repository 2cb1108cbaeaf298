// Package mqtt wraps the paho client for lockcore's integration bus.
//
// External systems reach the lock through the broker: keypad panels
// and sensor gateways publish triggers, and anything interested in the
// lock subscribes to state, event and emergency topics. The broker is
// the seam that keeps integrations out of the engine.
//
// The wrapper adds what the raw paho client leaves to the caller:
// subscription restoration after a reconnect, panic recovery around
// message handlers, a retained online/offline status topic backed by
// an LWT, and health checks for the startup sequence. Reconnects use
// exponential backoff bounded by the config.
//
// TLS should be on for anything past local development; payloads have
// no encryption of their own.
package mqtt
