package lock

import "time"

// HistoryCapacity is the maximum number of entries retained in the
// in-memory audit history. Older entries are evicted first.
const HistoryCapacity = 1000

// HistoryEntry is one immutable record of a state change, with a snapshot
// of the ancillary state at the moment of the transition.
type HistoryEntry struct {
	// Timestamp is when the transition was executed.
	Timestamp time.Time `json:"timestamp"`

	// From is the state before the transition; nil only for the initial
	// entry written at engine construction.
	From *State `json:"from,omitempty"`

	// To is the state after the transition.
	To State `json:"to"`

	// Reason describes why the transition happened.
	Reason string `json:"reason"`

	// BatteryLevel is the battery percentage at transition time.
	BatteryLevel float64 `json:"battery_level"`

	// Temperature is the ambient temperature (°C) at transition time.
	Temperature float64 `json:"temperature"`

	// Sensors is a snapshot of the sensor readings at transition time.
	Sensors SensorSet `json:"sensors"`
}

// historyLog is an append-only, capacity-bounded sequence of entries.
// Entries within capacity are never mutated; eviction removes the oldest.
type historyLog struct {
	entries  []HistoryEntry
	capacity int
}

func newHistoryLog(capacity int) *historyLog {
	return &historyLog{capacity: capacity}
}

// append adds an entry, evicting the oldest entries beyond capacity.
func (h *historyLog) append(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.capacity {
		// Reallocate so evicted entries do not pin the backing array.
		trimmed := make([]HistoryEntry, h.capacity)
		copy(trimmed, h.entries[len(h.entries)-h.capacity:])
		h.entries = trimmed
	}
}

// snapshot returns a copy of the retained entries, oldest first.
func (h *historyLog) snapshot() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *historyLog) len() int {
	return len(h.entries)
}
