// Package history persists the lock's event log to SQLite and exposes
// query, statistics, and export operations over it.
//
// The in-memory ring buffer inside the lock engine holds the most recent
// entries for fast status queries; this package is the durable record.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/quietroom/lockcore/internal/lock"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Event is one row of the lock event log: a processed trigger or an
// executed transition with the environmental snapshot taken at the time.
type Event struct {
	ID           int64          `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	FromState    string         `json:"state_before,omitempty"`
	ToState      string         `json:"state_after"`
	Reason       string         `json:"reason"`
	TriggerKind  string         `json:"trigger_type,omitempty"`
	UserID       string         `json:"user_id,omitempty"`
	Success      bool           `json:"success"`
	BatteryLevel float64        `json:"battery_level"`
	Temperature  float64        `json:"temperature"`
	Sensors      lock.SensorSet `json:"sensors"`
}

// Filter controls which events List returns.
type Filter struct {
	ToState     string    // optional: filter by resulting state
	TriggerKind string    // optional: filter by trigger kind
	UserID      string    // optional: filter by acting user
	Since       time.Time // optional: inclusive lower bound
	Until       time.Time // optional: exclusive upper bound
	Limit       int       // default 50, max 200
	Offset      int       // pagination offset
}

// ListResult contains the paginated event results.
type ListResult struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// Stats summarises the stored event log.
type Stats struct {
	TotalEvents   int            `json:"total_events"`
	StateCounts   map[string]int `json:"state_counts"`
	TriggerCounts map[string]int `json:"trigger_counts"`
	SuccessCount  int            `json:"success_count"`
	FailureCount  int            `json:"failure_count"`
}

// Repository defines the interface for lock event persistence.
type Repository interface {
	Record(ctx context.Context, event *Event) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
	Stats(ctx context.Context) (*Stats, error)
}

// SQLiteRepository stores lock events in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new lock event repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts a new event. The Timestamp is set if zero; the generated
// row ID is written back to the event.
func (r *SQLiteRepository) Record(ctx context.Context, event *Event) error {
	if event.ToState == "" {
		return fmt.Errorf("history: to_state is required")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	sensorsJSON, err := json.Marshal(event.Sensors)
	if err != nil {
		return fmt.Errorf("marshalling sensors: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO lock_events
		 (timestamp, from_state, to_state, reason, trigger_kind, user_id, success, battery_level, temperature, sensors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Timestamp.UTC().Format(time.RFC3339),
		nullableString(event.FromState),
		event.ToState,
		event.Reason,
		event.TriggerKind,
		event.UserID,
		event.Success,
		event.BatteryLevel,
		event.Temperature,
		string(sensorsJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting lock event: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		event.ID = id
	}

	return nil
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// List returns events matching the filter, ordered by most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any

	if filter.ToState != "" {
		conditions = append(conditions, "to_state = ?")
		args = append(args, filter.ToState)
	}
	if filter.TriggerKind != "" {
		conditions = append(conditions, "trigger_kind = ?")
		args = append(args, filter.TriggerKind)
	}
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339))
	}
	if !filter.Until.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, filter.Until.UTC().Format(time.RFC3339))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// WHERE clause is built from parameterised conditions (? placeholders) — no user input in SQL string.
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM lock_events %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting lock events: %w", err)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		`SELECT id, timestamp, from_state, to_state, reason, trigger_kind, user_id, success, battery_level, temperature, sensors
		 FROM lock_events %s ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`,
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying lock events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lock events: %w", err)
	}

	if events == nil {
		events = []Event{}
	}

	return &ListResult{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// scanEvent reads one row into an Event.
func scanEvent(rows *sql.Rows) (Event, error) {
	var event Event
	var fromState sql.NullString
	var timestamp, sensorsJSON string

	if err := rows.Scan(&event.ID, &timestamp, &fromState, &event.ToState,
		&event.Reason, &event.TriggerKind, &event.UserID, &event.Success,
		&event.BatteryLevel, &event.Temperature, &sensorsJSON); err != nil {
		return Event{}, fmt.Errorf("scanning lock event: %w", err)
	}

	if fromState.Valid {
		event.FromState = fromState.String
	}

	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("parsing lock event timestamp %q: %w", timestamp, err)
	}
	event.Timestamp = t

	if sensorsJSON != "" {
		// Sensors are stored by us; a malformed blob is left zeroed.
		_ = json.Unmarshal([]byte(sensorsJSON), &event.Sensors) //nolint:errcheck // format controlled by Record
	}

	return event, nil
}

// Stats aggregates the event log.
func (r *SQLiteRepository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		StateCounts:   make(map[string]int),
		TriggerCounts: make(map[string]int),
	}

	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(success), 0) FROM lock_events",
	).Scan(&stats.TotalEvents, &stats.SuccessCount); err != nil {
		return nil, fmt.Errorf("counting lock events: %w", err)
	}
	stats.FailureCount = stats.TotalEvents - stats.SuccessCount

	rows, err := r.db.QueryContext(ctx,
		"SELECT to_state, COUNT(*) FROM lock_events GROUP BY to_state",
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("scanning state count: %w", err)
		}
		stats.StateCounts[state] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating state counts: %w", err)
	}

	triggerRows, err := r.db.QueryContext(ctx,
		"SELECT trigger_kind, COUNT(*) FROM lock_events WHERE trigger_kind != '' GROUP BY trigger_kind",
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating triggers: %w", err)
	}
	defer triggerRows.Close()

	for triggerRows.Next() {
		var kind string
		var count int
		if err := triggerRows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("scanning trigger count: %w", err)
		}
		stats.TriggerCounts[kind] = count
	}
	if err := triggerRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trigger counts: %w", err)
	}

	return stats, nil
}
