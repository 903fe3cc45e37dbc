package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CycleLog appends one CSV row per successful poll cycle. The file is named
// after the run's start time, one file per monitor run; the header is written
// with the first row so the column set reflects the first cycle's fields.
type CycleLog struct {
	path        string
	file        *os.File
	writer      *csv.Writer
	wroteHeader bool
}

// NewCycleLog creates the run's log file inside dir.
func NewCycleLog(dir string, start time.Time) *CycleLog {
	return &CycleLog{
		path: filepath.Join(dir, fmt.Sprintf("%d.csv", start.Unix())),
	}
}

// Path returns the log file location.
func (l *CycleLog) Path() string {
	return l.path
}

// Append writes the header (once) and the row, flushing to disk so a crashed
// run keeps its data.
func (l *CycleLog) Append(header, row []string) error {
	if l.file == nil {
		if err := l.open(); err != nil {
			return err
		}
	}

	if !l.wroteHeader {
		if err := l.writer.Write(header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		l.wroteHeader = true
	}

	if err := l.writer.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}

	l.writer.Flush()
	return l.writer.Error()
}

func (l *CycleLog) open() error {
	if dir := filepath.Dir(l.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open cycle log: %w", err)
	}
	l.file = file
	l.writer = csv.NewWriter(file)
	return nil
}

// Close flushes and closes the log file.
func (l *CycleLog) Close() error {
	if l.file == nil {
		return nil
	}
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
