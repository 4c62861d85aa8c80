// Package weather fetches the current weather from wttr.in and formats it as ticker reports.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultURL is the wttr.in endpoint.
const DefaultURL = "https://wttr.in"

// Fields, in the order of the wttr.in format string.
const (
	Temperature   = "temperature"
	FeelsLike     = "feelslike"
	Condition     = "condition"
	Humidity      = "humidity"
	Wind          = "wind"
	Precipitation = "precipitation"
	Pressure      = "pressure"
	UV            = "uv"
	Moon          = "moon"
)

var (
	fields = []string{Temperature, FeelsLike, Condition, Humidity, Wind, Precipitation, Pressure, UV, Moon}
	format = "%t:%f:%C:%h:%w:%p:%P:%u:%m"
)

var moonPhases = []struct {
	Emoji string
	Text  string
}{
	{"🌑", "NEW"},
	{"🌒", "WAXING CRESCENT"},
	{"🌓", "FIRST QUARTER"},
	{"🌔", "WAXING GIBBOUS"},
	{"🌕", "FULL"},
	{"🌖", "WANING GIBBOUS"},
	{"🌗", "LAST QUARTER"},
	{"🌘", "WANING CRESCENT"},
}

// Errors
var (
	ErrResponse = errors.New("weather: unexpected response")
)

// Client keeps the last weather report of a location.
type Client struct {
	// URL is the wttr.in endpoint.
	URL string

	// Location is the place to report on.
	Location string

	// HTTP client, defaults to one with a 30s timeout.
	HTTP *http.Client

	mu      sync.Mutex
	weather map[string]string
	running bool
}

// New returns a client for location.
func New(location string) *Client {
	return &Client{
		URL:      DefaultURL,
		Location: location,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	return true
}

func (c *Client) done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// Request starts a background fetch, unless one is already running. It reports if a fetch
// was started.
func (c *Client) Request(ctx context.Context) bool {
	if !c.begin() {
		return false
	}
	go func() {
		defer c.done()
		if err := c.Fetch(ctx); err != nil {
			log.Printf("weather: request failed: %v", err)
		}
	}()
	return true
}

// Fetch retrieves the weather and replaces the stored report.
func (c *Client) Fetch(ctx context.Context) error {
	u := fmt.Sprintf("%s/%s?format=%s", strings.TrimSuffix(c.URL, "/"), url.PathEscape(c.Location), url.QueryEscape(format))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrResponse, res.Status)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 4096))
	if err != nil {
		return err
	}
	weather, err := Parse(string(body))
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.weather = weather
	c.mu.Unlock()
	return nil
}

// Parse decodes a wttr.in response in the client's format.
func Parse(s string) (map[string]string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < len(fields) {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrResponse, len(fields), len(parts))
	}
	weather := make(map[string]string, len(fields))
	for i, name := range fields {
		weather[name] = strings.TrimSpace(parts[i])
	}
	return weather, nil
}

// IsRunning reports if a fetch is in progress.
func (c *Client) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Get returns a field of the last report.
func (c *Client) Get(field string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.weather[field]
	return v, ok
}

// MoonPhase is the moon phase of the last report, in words.
func (c *Client) MoonPhase() (string, bool) {
	v, ok := c.Get(Moon)
	if !ok {
		return "", false
	}
	for _, phase := range moonPhases {
		if phase.Emoji == v {
			return phase.Text, true
		}
	}
	return "", false
}
