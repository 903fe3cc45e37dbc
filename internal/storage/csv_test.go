package storage

import (
	"encoding/csv"
	"os"
	"testing"
	"time"
)

func TestCycleLogWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	log := NewCycleLog(dir, time.Unix(1655121600, 0))

	header := []string{"Wind Speed", "Active Power", "IDS Alarms"}
	if err := log.Append(header, []string{"7.5", "800", ""}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := log.Append(header, []string{"8.1", "900", "Alert: Brake Failure!"}); err != nil {
		t.Fatalf("second append: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	file, err := os.Open(log.Path())
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][2] != "IDS Alarms" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[2][2] != "Alert: Brake Failure!" {
		t.Fatalf("unexpected alert cell: %v", rows[2])
	}
}

func TestCycleLogFileName(t *testing.T) {
	log := NewCycleLog("/tmp/logs", time.Unix(1655121600, 0))
	if log.Path() != "/tmp/logs/1655121600.csv" {
		t.Fatalf("unexpected path %s", log.Path())
	}
}
