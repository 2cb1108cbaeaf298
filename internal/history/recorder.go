package history

import (
	"context"
	"time"

	"github.com/quietroom/lockcore/internal/lock"
)

// recordTimeout bounds how long one insert may take. The engine invokes
// the notifier synchronously, so the write must not stall trigger
// processing indefinitely.
const recordTimeout = 5 * time.Second

// Logger is the logging interface used by the Recorder.
type Logger interface {
	Error(msg string, args ...any)
}

// Recorder adapts a Repository to the engine's Notifier interface,
// persisting every executed transition.
type Recorder struct {
	repo   Repository
	logger Logger
}

// NewRecorder creates a Recorder writing to repo. logger may be nil.
func NewRecorder(repo Repository, logger Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// NotifyTransition persists one transition. Failures are logged, never
// propagated: a full disk must not wedge the lock.
func (r *Recorder) NotifyTransition(t lock.Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	event := &Event{
		Timestamp:    t.At,
		FromState:    string(t.From),
		ToState:      string(t.To),
		Reason:       t.Reason,
		TriggerKind:  string(t.Trigger),
		UserID:       t.UserID,
		Success:      true,
		BatteryLevel: t.BatteryLevel,
		Temperature:  t.Temperature,
		Sensors:      t.Sensors,
	}

	if err := r.repo.Record(ctx, event); err != nil && r.logger != nil {
		r.logger.Error("recording lock transition failed",
			"from", t.From,
			"to", t.To,
			"error", err,
		)
	}
}
