package device

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muurk/wave/internal/painter"
)

// Response captured from a device running the hex painter
const mockParamsResponse = `{"painter":"hex","global_brightness":0.5,"speed":1,"color":{"r":255,"g":0,"b":0},"secondary_colors":[{"r":66,"g":103,"b":178}],"fade":0,"bidirectional":false}`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClientWithURL(server.URL)
	if err != nil {
		t.Fatalf("NewClientWithURL() error = %v", err)
	}
	client.RetryDelay = time.Millisecond
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient("192.168.1.20", 8080)

	if client.Endpoint != "http://192.168.1.20:8080/api" {
		t.Errorf("Endpoint = %s, want http://192.168.1.20:8080/api", client.Endpoint)
	}
	if client.HTTPClient == nil || client.HTTPClient.Timeout != DefaultTimeout {
		t.Error("HTTPClient should use DefaultTimeout")
	}
	if client.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", client.MaxRetries, DefaultMaxRetries)
	}
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "192.168.1.20:8080", want: "http://192.168.1.20:8080/api"},
		{input: "http://wave.local", want: "http://wave.local/api"},
		{input: "http://wave.local/", want: "http://wave.local/api"},
		{input: "https://wave.local/painter/api", want: "https://wave.local/painter/api"},
		{input: " http://wave.local:80/api ", want: "http://wave.local:80/api"},
		{input: "", wantErr: true},
		{input: "ftp://wave.local", wantErr: true},
		{input: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseEndpoint(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEndpoint(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseEndpoint(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetParams_Success(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api" {
			t.Errorf("Path = %s, want /api", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockParamsResponse))
	})

	params, err := client.GetParams(context.Background())
	if err != nil {
		t.Fatalf("GetParams() error = %v", err)
	}
	if params.Painter != "hex" || params.Color != painter.RGB(255, 0, 0) {
		t.Errorf("GetParams() = %+v", params)
	}
	if len(params.SecondaryColors) != 1 || params.SecondaryColors[0] != painter.Hex(0x4267B2) {
		t.Errorf("SecondaryColors = %v", params.SecondaryColors)
	}
}

func TestGetParams_Malformed(t *testing.T) {
	var calls int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"painter":"hex","secondary_colors":"nope"}`))
	})

	_, err := client.GetParams(context.Background())
	if !errors.Is(err, painter.ErrMalformedParams) {
		t.Fatalf("GetParams() error = %v, want ErrMalformedParams", err)
	}
	if !IsParseError(err) {
		t.Error("expected a parse error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("malformed payloads should not be retried, got %d calls", calls)
	}
}

func TestGetParams_RetriesServerErrors(t *testing.T) {
	var calls int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(mockParamsResponse))
	})

	if _, err := client.GetParams(context.Background()); err != nil {
		t.Fatalf("GetParams() error = %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestGetParams_GivesUp(t *testing.T) {
	var calls int32
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	client.MaxRetries = 1

	_, err := client.GetParams(context.Background())
	if !IsHTTPError(err) {
		t.Fatalf("GetParams() error = %v, want HTTP error", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestGetParams_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	client, _ := NewClientWithURL(endpoint)
	client.MaxRetries = 0

	_, err := client.GetParams(context.Background())
	if !errors.Is(err, ErrNetworkFailure) {
		t.Fatalf("GetParams() error = %v, want ErrNetworkFailure", err)
	}
	if !IsNetworkError(err) {
		t.Errorf("IsNetworkError(%v) = false", err)
	}
}

func TestGetParams_ContextCanceled(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client.RetryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.GetParams(ctx)
	if err == nil {
		t.Fatal("expected an error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("GetParams ignored cancellation during backoff")
	}
}

func TestPostParams(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"no content", http.StatusNoContent, false},
		{"accepted", http.StatusAccepted, false},
		{"bad request", http.StatusBadRequest, true},
		{"server error", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			var gotBody []byte
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				if r.Method != http.MethodPost {
					t.Errorf("Method = %s, want POST", r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q, want application/json", ct)
				}
				gotBody, _ = io.ReadAll(r.Body)
				w.WriteHeader(tt.status)
			})

			err := client.PostParams(context.Background(), painter.Defaults())
			if (err != nil) != tt.wantErr {
				t.Fatalf("PostParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if atomic.LoadInt32(&calls) != 1 {
				t.Errorf("writes are never retried, got %d calls", calls)
			}

			decoded, err := painter.Decode(gotBody)
			if err != nil {
				t.Fatalf("server received undecodable body %s: %v", gotBody, err)
			}
			if !decoded.Equal(painter.Defaults()) {
				t.Errorf("server received %+v", decoded)
			}
		})
	}
}

func TestPing(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mockParamsResponse))
	})
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	missing := testClient(t, http.NotFound)
	if err := missing.Ping(context.Background()); !IsHTTPError(err) {
		t.Errorf("Ping() error = %v, want HTTP error", err)
	}
}
