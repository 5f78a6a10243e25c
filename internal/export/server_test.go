package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMarkup = "@startuml\nA <|-- B\n@enduml\n"

func TestRenderClient_URL(t *testing.T) {
	c := NewRenderClient(WithServer("http://example.test/plantuml/"))

	url, err := c.URL(sampleMarkup, FormatSVG)
	require.NoError(t, err)
	encoded, err := Encode(sampleMarkup)
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/plantuml/svg/"+encoded, url)

	_, err = c.URL(sampleMarkup, "gif")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRenderClient_Render(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("<svg/>"))
	}))
	defer srv.Close()

	c := NewRenderClient(WithServer(srv.URL))
	body, err := c.Render(context.Background(), sampleMarkup, FormatSVG)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(body))
	assert.True(t, strings.HasPrefix(gotPath, "/svg/"))

	decoded, err := Decode(strings.TrimPrefix(gotPath, "/svg/"))
	require.NoError(t, err)
	assert.Equal(t, sampleMarkup, decoded)
}

func TestRenderClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewRenderClient(WithServer(srv.URL), WithRetries(2), WithBackoff(time.Millisecond))
	body, err := c.Render(context.Background(), sampleMarkup, FormatTXT)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.EqualValues(t, 3, calls.Load())
}

func TestRenderClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewRenderClient(WithServer(srv.URL), WithRetries(1), WithBackoff(time.Millisecond))
	_, err := c.Render(context.Background(), sampleMarkup, FormatPNG)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
	assert.EqualValues(t, 2, calls.Load())
}

func TestRenderClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad diagram", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewRenderClient(WithServer(srv.URL), WithRetries(3), WithBackoff(time.Millisecond))
	_, err := c.Render(context.Background(), sampleMarkup, FormatPNG)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad diagram")
	assert.EqualValues(t, 1, calls.Load())
}

func TestRenderClient_BackOffDoublesWithoutJitter(t *testing.T) {
	c := NewRenderClient(WithBackoff(10 * time.Millisecond))
	b := c.newBackOff()

	assert.Equal(t, 10*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 20*time.Millisecond, b.NextBackOff())
	assert.Equal(t, 40*time.Millisecond, b.NextBackOff())
}

func TestRenderClient_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewRenderClient(WithServer(srv.URL), WithRetries(5), WithBackoff(time.Hour))
	_, err := c.Render(ctx, sampleMarkup, FormatSVG)
	assert.ErrorIs(t, err, context.Canceled)
}
