package hmi

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const telemetryXML = `<?xml version="1.0"?>
<CDL>
  <Rows>
    <R Name="In_WindSpd" Value="7.5" Index="42"/>
    <R Name="In_RotorSpd" Value="15.2" Index="42"/>
    <R Name="In_WindSpd" Value="99" Index="41"/>
  </Rows>
</CDL>`

const alarmXML = `<?xml version="1.0"?>
<Alarms>
  <Rows>
    <R Name="GridLoss" Status="0"/>
    <R Name="OverTemp" Status="1"/>
  </Rows>
</Alarms>`

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("split host port: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return NewClient(ClientOptions{Addr: host, Port: port, Timeout: time.Second}, noopLogger())
}

func TestClientFetchTelemetry(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(telemetryXML))
	}))
	defer srv.Close()

	c := testClient(t, srv)
	docs, err := c.FetchTelemetry(context.Background())
	if err != nil {
		t.Fatalf("fetch telemetry: %v", err)
	}
	if len(docs) != 1 || len(docs[0]) != 3 {
		t.Fatalf("expected one document with 3 records, got %v", docs)
	}
	if docs[0][0].Name != "In_WindSpd" || docs[0][0].Value != "7.5" {
		t.Fatalf("unexpected first record: %+v", docs[0][0])
	}

	if gotPath != "/cgi-bin/mk6e-readdynamicxml" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	q, err := url.ParseQuery(gotQuery)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	if q.Get("file") != "cdl.xml" || q.Get("type") != "4" || q.Get("data") != "1" {
		t.Fatalf("unexpected query %s", gotQuery)
	}
	if q.Get("p1") == "" || q.Get("p1") != q.Get("p2") {
		t.Fatalf("p1/p2 should carry the same timestamp, got %s", gotQuery)
	}
}

func TestClientServerTimeOverride(t *testing.T) {
	var gotP1 string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotP1 = r.URL.Query().Get("p1")
		_, _ = w.Write([]byte(telemetryXML))
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)
	c := NewClient(ClientOptions{Addr: host, Port: port, ServerTime: 103453815, Timeout: time.Second}, noopLogger())

	if _, err := c.FetchTelemetry(context.Background()); err != nil {
		t.Fatalf("fetch telemetry: %v", err)
	}
	if gotP1 != "103453815" {
		t.Fatalf("server time override not applied, got p1=%s", gotP1)
	}
}

func TestClientFetchAlarms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("file") != "alarms.xml" {
			t.Errorf("unexpected file param %s", r.URL.Query().Get("file"))
		}
		_, _ = w.Write([]byte(alarmXML))
	}))
	defer srv.Close()

	c := testClient(t, srv)
	records, err := c.FetchAlarms(context.Background())
	if err != nil {
		t.Fatalf("fetch alarms: %v", err)
	}
	if len(records) != 2 || records[1].Status != "1" {
		t.Fatalf("unexpected alarm records: %+v", records)
	}
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(t, srv)
	if _, err := c.FetchTelemetry(context.Background()); err == nil {
		t.Fatal("HTTP 502 should return an error")
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "telemetry.xml"), []byte(telemetryXML), 0o644); err != nil {
		t.Fatalf("write telemetry file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "alarms.xml"), []byte(alarmXML), 0o644); err != nil {
		t.Fatalf("write alarm file: %v", err)
	}

	src := NewFileSource(FileSourceOptions{
		Dir:            dir,
		TelemetryFiles: []string{"telemetry.xml"},
		AlarmFile:      "alarms.xml",
	}, noopLogger())

	docs, err := src.FetchTelemetry(context.Background())
	if err != nil {
		t.Fatalf("fetch telemetry: %v", err)
	}
	if len(docs) != 1 || len(docs[0]) != 3 {
		t.Fatalf("unexpected documents: %v", docs)
	}

	alarms, err := src.FetchAlarms(context.Background())
	if err != nil {
		t.Fatalf("fetch alarms: %v", err)
	}
	if len(alarms) != 2 {
		t.Fatalf("expected 2 alarm records, got %d", len(alarms))
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(FileSourceOptions{Dir: t.TempDir()}, noopLogger())
	if _, err := src.FetchTelemetry(context.Background()); err == nil {
		t.Fatal("missing file should error")
	}
}
