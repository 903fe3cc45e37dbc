package hmi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ClientOptions parameterise live HMI access.
type ClientOptions struct {
	Addr       string
	Port       int
	ServerTime int64 // webserver epoch override; 0 uses local time
	Timeout    time.Duration
}

// Client polls the HMI's mk6e-readdynamicxml CGI endpoints.
type Client struct {
	opts   ClientOptions
	logger zerolog.Logger
	client *http.Client
	now    func() time.Time
}

// NewClient constructs a live HMI client.
func NewClient(opts ClientOptions, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if opts.Port <= 0 {
		opts.Port = 80
	}

	return &Client{
		opts:   opts,
		logger: logger.With().Str("component", "hmi_client").Logger(),
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// FetchTelemetry requests the current dynamic variable document. The request
// timestamp lags one second so the webserver's newest complete index group is
// returned.
func (c *Client) FetchTelemetry(ctx context.Context) ([][]Record, error) {
	t := c.opts.ServerTime
	if t == 0 {
		t = c.now().Unix() - 1
	}

	url := fmt.Sprintf("http://%s:%d/cgi-bin/mk6e-readdynamicxml?file=cdl.xml&type=4&data=1&p1=%d&p2=%d",
		c.opts.Addr, c.opts.Port, t, t)

	records, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch telemetry: %w", err)
	}
	return [][]Record{records}, nil
}

// FetchAlarms requests the alarm list document.
func (c *Client) FetchAlarms(ctx context.Context) ([]Record, error) {
	url := fmt.Sprintf("http://%s:%d/cgi-bin/mk6e-readdynamicxml?file=alarms.xml&type=16&p1=0&p2=0",
		c.opts.Addr, c.opts.Port)

	records, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch alarms: %w", err)
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, url string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hmi returned status %d", resp.StatusCode)
	}

	c.logger.Debug().Str("url", url).Msg("fetched hmi document")
	return parseDocument(resp.Body)
}

var _ TelemetrySource = (*Client)(nil)
var _ AlarmSource = (*Client)(nil)
