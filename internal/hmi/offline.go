package hmi

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Default offline document names, matching the HMI capture tooling.
const (
	DefaultTelemetryFile       = "mk6e-readdynamicxml.xml"
	DefaultTelemetrySecondFile = "mk6e-readdynamicxml1Sec.xml"
	DefaultAlarmFile           = "mk6e-readdynamicxml_alarms.xml"
)

// FileSourceOptions locate recorded HMI documents on disk.
type FileSourceOptions struct {
	Dir            string
	TelemetryFiles []string
	AlarmFile      string
}

// FileSource serves recorded XML documents instead of hitting the network.
// The fast and the one-second capture carry disjoint variable sets, so both
// are read each cycle and merged by the snapshot builder.
type FileSource struct {
	opts   FileSourceOptions
	logger zerolog.Logger
}

// NewFileSource constructs an offline source.
func NewFileSource(opts FileSourceOptions, logger zerolog.Logger) *FileSource {
	if len(opts.TelemetryFiles) == 0 {
		opts.TelemetryFiles = []string{DefaultTelemetryFile, DefaultTelemetrySecondFile}
	}
	if opts.AlarmFile == "" {
		opts.AlarmFile = DefaultAlarmFile
	}
	return &FileSource{
		opts:   opts,
		logger: logger.With().Str("component", "hmi_files").Logger(),
	}
}

// FetchTelemetry reads each recorded telemetry document in order.
func (f *FileSource) FetchTelemetry(ctx context.Context) ([][]Record, error) {
	docs := make([][]Record, 0, len(f.opts.TelemetryFiles))
	for _, name := range f.opts.TelemetryFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := f.readFile(name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, records)
	}
	return docs, nil
}

// FetchAlarms reads the recorded alarm document.
func (f *FileSource) FetchAlarms(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.readFile(f.opts.AlarmFile)
}

func (f *FileSource) readFile(name string) ([]Record, error) {
	path := filepath.Join(f.opts.Dir, name)
	f.logger.Debug().Str("file", path).Msg("using xml file")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xml file: %w", err)
	}
	defer file.Close()

	records, err := parseDocument(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return records, nil
}

var _ TelemetrySource = (*FileSource)(nil)
var _ AlarmSource = (*FileSource)(nil)
