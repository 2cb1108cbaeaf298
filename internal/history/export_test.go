package history

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func seedExportEvents(t *testing.T, repo Repository, n int) {
	t.Helper()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		ev := testEvent(base.Add(time.Duration(i)*time.Minute), "LOCKED", "UNLOCKED", "keypad")
		if err := repo.Record(context.Background(), ev); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	seedExportEvents(t, repo, 3)

	var buf bytes.Buffer
	exporter := NewExporter(repo)
	if err := exporter.WriteCSV(context.Background(), &buf, Filter{}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported CSV: %v", err)
	}

	if len(records) != 4 { // header + 3 rows
		t.Fatalf("CSV rows = %d, want 4", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("header = %v", records[0])
	}

	row := records[1]
	if row[1] != "LOCKED" || row[2] != "UNLOCKED" {
		t.Errorf("first row states = %q -> %q", row[1], row[2])
	}
	if row[6] != "true" {
		t.Errorf("success column = %q, want true", row[6])
	}
	if row[7] != "84.2" {
		t.Errorf("battery column = %q, want 84.2", row[7])
	}
}

func TestWriteCSVPagesThroughAllRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	seedExportEvents(t, repo, exportPageSize+25)

	var buf bytes.Buffer
	exporter := NewExporter(repo)
	if err := exporter.WriteCSV(context.Background(), &buf, Filter{}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing exported CSV: %v", err)
	}
	if got := len(records) - 1; got != exportPageSize+25 {
		t.Errorf("exported %d rows, want %d", got, exportPageSize+25)
	}
}

func TestWriteJSON(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	seedExportEvents(t, repo, 2)

	var buf bytes.Buffer
	exporter := NewExporter(repo)
	if err := exporter.WriteJSON(context.Background(), &buf, Filter{}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var export struct {
		ExportedAt time.Time `json:"exported_at"`
		Statistics *Stats    `json:"statistics"`
		Events     []Event   `json:"events"`
	}
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("parsing exported JSON: %v", err)
	}

	if export.Statistics == nil || export.Statistics.TotalEvents != 2 {
		t.Errorf("statistics = %+v, want 2 total events", export.Statistics)
	}
	if len(export.Events) != 2 {
		t.Errorf("events = %d, want 2", len(export.Events))
	}
	if export.ExportedAt.IsZero() {
		t.Error("exported_at not set")
	}
}
