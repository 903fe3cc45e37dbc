// Package hmi acquires telemetry and alarm documents from the turbine's HMI
// webserver, live over HTTP or from recorded XML files, and turns the raw
// attribute-bag records into typed snapshots for the monitor core.
package hmi

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
)

// Record is one variable row of an mk6e dynamic XML document. The HMI packs
// everything into attributes; element names vary between endpoints and are
// not significant.
type Record struct {
	Name   string `xml:"Name,attr"`
	Value  string `xml:"Value,attr"`
	Index  string `xml:"Index,attr"`
	Desc   string `xml:"Desc,attr"`
	Status string `xml:"Status,attr"`
}

type recordGroup struct {
	XMLName xml.Name
	Records []Record `xml:",any"`
}

type dynamicDocument struct {
	XMLName xml.Name
	Groups  []recordGroup `xml:",any"`
}

// parseDocument decodes a dynamic XML document and returns the records of
// its first group, which is where the HMI places the variable rows.
func parseDocument(r io.Reader) ([]Record, error) {
	var doc dynamicDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode dynamic xml: %w", err)
	}
	if len(doc.Groups) == 0 {
		return nil, fmt.Errorf("dynamic xml document has no record group")
	}
	return doc.Groups[0].Records, nil
}

// TelemetrySource produces the cycle's telemetry documents, newest-first
// records within each document.
type TelemetrySource interface {
	FetchTelemetry(ctx context.Context) ([][]Record, error)
}

// AlarmSource produces the cycle's alarm records.
type AlarmSource interface {
	FetchAlarms(ctx context.Context) ([]Record, error)
}
