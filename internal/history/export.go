package history

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// exportPageSize is how many rows each export query fetches.
const exportPageSize = maxListLimit

// csvHeader defines the CSV export column order.
var csvHeader = []string{
	"timestamp",
	"state_before",
	"state_after",
	"reason",
	"trigger_type",
	"user_id",
	"success",
	"battery_level",
	"temperature",
}

// Exporter streams the stored event log in CSV or JSON form.
type Exporter struct {
	repo Repository
}

// NewExporter creates an Exporter over repo.
func NewExporter(repo Repository) *Exporter {
	return &Exporter{repo: repo}
}

// WriteCSV streams all events matching filter to w as CSV, newest first.
// Limit and Offset on the filter are ignored; the exporter pages through
// the full result set itself.
func (e *Exporter) WriteCSV(ctx context.Context, w io.Writer, filter Filter) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	err := e.forEachPage(ctx, filter, func(events []Event) error {
		for _, ev := range events {
			record := []string{
				ev.Timestamp.UTC().Format(time.RFC3339),
				ev.FromState,
				ev.ToState,
				ev.Reason,
				ev.TriggerKind,
				ev.UserID,
				strconv.FormatBool(ev.Success),
				strconv.FormatFloat(ev.BatteryLevel, 'f', 1, 64),
				strconv.FormatFloat(ev.Temperature, 'f', 1, 64),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("writing CSV record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// jsonExport is the JSON export envelope.
type jsonExport struct {
	ExportedAt time.Time `json:"exported_at"`
	Statistics *Stats    `json:"statistics"`
	Events     []Event   `json:"events"`
}

// WriteJSON streams all events matching filter to w as a JSON document
// with a statistics block, newest first.
func (e *Exporter) WriteJSON(ctx context.Context, w io.Writer, filter Filter) error {
	stats, err := e.repo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("collecting statistics: %w", err)
	}

	export := jsonExport{
		ExportedAt: time.Now().UTC(),
		Statistics: stats,
		Events:     []Event{},
	}

	err = e.forEachPage(ctx, filter, func(events []Event) error {
		export.Events = append(export.Events, events...)
		return nil
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON export: %w", err)
	}
	return nil
}

// forEachPage pages through the full filtered result set, invoking fn for
// each page.
func (e *Exporter) forEachPage(ctx context.Context, filter Filter, fn func([]Event) error) error {
	filter.Limit = exportPageSize
	filter.Offset = 0

	for {
		page, err := e.repo.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("listing events for export: %w", err)
		}
		if len(page.Events) == 0 {
			return nil
		}
		if err := fn(page.Events); err != nil {
			return err
		}
		filter.Offset += len(page.Events)
		if filter.Offset >= page.Total {
			return nil
		}
	}
}
