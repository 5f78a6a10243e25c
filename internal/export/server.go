package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrUnsupportedFormat is returned for output formats the server client
// does not know.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// DefaultServer is the public PlantUML server.
const DefaultServer = "https://www.plantuml.com/plantuml"

// Output formats served by a PlantUML server.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
	FormatTXT = "txt"
)

// ValidFormat reports whether format can be requested from a server.
func ValidFormat(format string) bool {
	switch format {
	case FormatPNG, FormatSVG, FormatTXT:
		return true
	}
	return false
}

// RenderClient fetches rendered diagrams from a PlantUML server. It only
// reads the markup it is given and may be retried or cancelled freely.
type RenderClient struct {
	http    *http.Client
	server  string
	retries int
	backoff time.Duration
}

// RenderOption configures a RenderClient.
type RenderOption func(*RenderClient)

// WithServer sets the server base URL.
func WithServer(url string) RenderOption {
	return func(c *RenderClient) {
		if url != "" {
			c.server = strings.TrimRight(url, "/")
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) RenderOption {
	return func(c *RenderClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetries sets how many times a failed request is repeated.
func WithRetries(n int) RenderOption {
	return func(c *RenderClient) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithBackoff sets the delay before the first retry; it doubles per retry.
func WithBackoff(d time.Duration) RenderOption {
	return func(c *RenderClient) { c.backoff = d }
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) RenderOption {
	return func(c *RenderClient) { c.http = hc }
}

// NewRenderClient creates a client for DefaultServer unless overridden.
func NewRenderClient(opts ...RenderOption) *RenderClient {
	c := &RenderClient{
		http:    &http.Client{Timeout: 30 * time.Second},
		server:  DefaultServer,
		retries: 2,
		backoff: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the server URL of markup rendered as format.
func (c *RenderClient) URL(markup, format string) (string, error) {
	if !ValidFormat(format) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	encoded, err := Encode(markup)
	if err != nil {
		return "", err
	}
	return c.server + "/" + format + "/" + encoded, nil
}

// statusError is an HTTP-level failure; 5xx responses are retried.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.code, e.body)
}

// Render fetches markup rendered as format. Network errors and 5xx
// responses are retried with exponential backoff; 4xx responses and a
// cancelled context end the attempts at once.
func (c *RenderClient) Render(ctx context.Context, markup, format string) ([]byte, error) {
	url, err := c.URL(markup, format)
	if err != nil {
		return nil, err
	}

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		body, err := c.fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		var se *statusError
		if (errors.As(err, &se) && se.code < 500) || ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(uint(c.retries)+1))
	if err != nil {
		return nil, fmt.Errorf("export: render %s: %w", format, err)
	}
	return body, nil
}

// newBackOff doubles the delay from c.backoff without jitter.
func (c *RenderClient) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.backoff
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = max(b.MaxInterval, c.backoff)
	b.Reset()
	return b
}

func (c *RenderClient) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
