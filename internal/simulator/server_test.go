package simulator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/muurk/wave/internal/device"
	"github.com/muurk/wave/internal/form"
	"github.com/muurk/wave/internal/painter"
	"github.com/muurk/wave/internal/paramsync"
)

func testServer(t *testing.T, initial *painter.Params) (*Server, *device.Client) {
	t.Helper()
	srv := New(&Config{Initial: initial})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := device.NewClientWithURL(ts.URL + "/api")
	if err != nil {
		t.Fatalf("NewClientWithURL() error = %v", err)
	}
	client.SetRetry(0, 0)
	return srv, client
}

func TestServesDefaults(t *testing.T) {
	_, client := testServer(t, nil)

	got, err := client.GetParams(context.Background())
	if err != nil {
		t.Fatalf("GetParams() error = %v", err)
	}
	if !got.Equal(painter.Defaults()) {
		t.Errorf("GetParams() = %+v, want defaults", got)
	}
}

func TestPostThenGet(t *testing.T) {
	srv, client := testServer(t, nil)
	ctx := context.Background()

	want := painter.Params{
		Painter:          "rain",
		GlobalBrightness: 0.25,
		Speed:            2,
		Color:            painter.RGB(200, 100, 0),
		SecondaryColors:  []painter.Color{painter.RGB(0, 0, 255)},
		Fade:             0.5,
		Bidirectional:    true,
	}
	if err := client.PostParams(ctx, want); err != nil {
		t.Fatalf("PostParams() error = %v", err)
	}

	got, err := client.GetParams(ctx)
	if err != nil {
		t.Fatalf("GetParams() error = %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("GetParams() = %+v, want undimmed %+v", got, want)
	}

	rendered := srv.Store().Rendered()
	if rendered.Color != painter.RGB(50, 25, 0) {
		t.Errorf("rendered color = %v, want brightness applied", rendered.Color)
	}
	if srv.Store().Applies() != 1 {
		t.Errorf("Applies() = %d, want 1", srv.Store().Applies())
	}
}

func TestMalformedPostRejected(t *testing.T) {
	srv, client := testServer(t, nil)

	for _, body := range []string{
		`{"painter":"hex"}`,
		`not json`,
		`{"painter":"hex","global_brightness":1,"speed":1,"color":{"r":1,"g":2},"secondary_colors":[]}`,
	} {
		req, _ := http.NewRequest(http.MethodPost, client.Endpoint, strings.NewReader(body))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("POST %s: status = %d, want 400", body, resp.StatusCode)
		}
	}

	if srv.Store().Applies() != 0 {
		t.Error("malformed POST was applied")
	}
	got, _ := client.GetParams(context.Background())
	if !got.Equal(painter.Defaults()) {
		t.Errorf("state changed after malformed POST: %+v", got)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, client := testServer(t, nil)

	req, _ := http.NewRequest(http.MethodDelete, client.Endpoint, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != "GET, POST" {
		t.Errorf("Allow = %q", allow)
	}
}

func TestWatchPushesAppliedParams(t *testing.T) {
	srv, client := testServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan painter.Params, 4)
	done := make(chan error, 1)
	go func() {
		done <- client.Watch(ctx, func(p painter.Params) { received <- p })
	}()

	// the first message is the current state
	select {
	case p := <-received:
		if !p.Equal(painter.Defaults()) {
			t.Errorf("initial push = %+v", p)
		}
	case <-ctx.Done():
		t.Fatal("no initial push")
	}

	next := painter.Defaults()
	next.Painter = "disco"
	if err := client.PostParams(ctx, next); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-received:
		if p.Painter != "disco" {
			t.Errorf("pushed painter = %q, want disco", p.Painter)
		}
	case <-ctx.Done():
		t.Fatal("no push after POST")
	}

	if n := srv.GetActiveConnections(); n != 1 {
		t.Errorf("GetActiveConnections() = %d, want 1", n)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v, want nil on cancel", err)
	}
}

func TestStartAndShutdown(t *testing.T) {
	srv := New(&Config{Host: "127.0.0.1", Port: 0})
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	if !strings.HasPrefix(srv.URL(), "http://127.0.0.1:") || !strings.HasSuffix(srv.URL(), "/api") {
		t.Errorf("URL() = %q", srv.URL())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	client, err := device.NewClientWithURL(srv.URL())
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}

	client.SetRetry(0, 0)
	if _, err := client.GetParams(context.Background()); !errors.Is(err, device.ErrNetworkFailure) {
		t.Errorf("GetParams() after shutdown error = %v, want network failure", err)
	}
}

func TestEngineAgainstSimulator(t *testing.T) {
	srv, client := testServer(t, nil)

	engine := paramsync.New(client, paramsync.Config{Mode: paramsync.ModeLive, Endpoint: client.Endpoint})
	if err := engine.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer engine.Close()
	fc, _ := engine.Form()

	// live writes may overlap; wait for each so the device ends on the last edit
	idx := fc.AppendColor()
	waitForAck(t, engine, fc.Seq())
	if err := fc.SetColorText(form.ColorPath(idx), "#102030"); err != nil {
		t.Fatal(err)
	}
	waitForAck(t, engine, fc.Seq())
	if err := fc.SetField("painter", "line"); err != nil {
		t.Fatal(err)
	}
	waitForAck(t, engine, fc.Seq())

	got := srv.Store().Get()
	if got.Painter != "line" {
		t.Errorf("simulator painter = %q, want line", got.Painter)
	}
	if n := len(got.SecondaryColors); n != 3 || got.SecondaryColors[2] != painter.RGB(0x10, 0x20, 0x30) {
		t.Errorf("simulator palette = %v", got.SecondaryColors)
	}
	if last, _ := engine.LastRemote(); !last.Equal(got) {
		t.Errorf("LastRemote() = %+v, simulator holds %+v", last, got)
	}
}

func waitForAck(t *testing.T, e *paramsync.Engine, seq uint64) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-e.Events():
			if ev.Seq != seq {
				continue
			}
			switch ev.Type {
			case paramsync.EventWriteSucceeded:
				return
			case paramsync.EventWriteFailed:
				t.Fatalf("write %d failed: %v", seq, ev.Err)
			}
		case <-timeout:
			t.Fatalf("no acknowledgement for seq %d", seq)
		}
	}
}
