package editor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/wave/internal/discovery"
	"github.com/muurk/wave/internal/paramsync"
)

func fakeScan(devices []*discovery.Device, err error) ScanFunc {
	return func(ctx context.Context, timeout time.Duration) ([]*discovery.Device, error) {
		return devices, err
	}
}

func studio() *discovery.Device {
	return &discovery.Device{Instance: "studio", IP: "10.0.0.7", Port: 8080, Path: "/api"}
}

// scanned runs the picker's Init and feeds the results back
func scanned(t *testing.T, m PickerModel) PickerModel {
	t.Helper()
	for _, msg := range collect(m.Init()) {
		updated, _ := m.Update(msg)
		m = updated.(PickerModel)
	}
	return m
}

func pick(t *testing.T, m PickerModel, msg tea.Msg) PickerModel {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(PickerModel)
}

func TestPickerListsDevices(t *testing.T) {
	m := scanned(t, NewPickerModel(fakeScan([]*discovery.Device{studio()}, nil), time.Second))

	if m.Scanning {
		t.Fatal("scan should be complete")
	}
	if got := len(m.DeviceList.Items()); got != 1 {
		t.Fatalf("items = %d, want 1", got)
	}

	m = pick(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen != "http://10.0.0.7:8080/api" {
		t.Errorf("Chosen = %q", m.Chosen)
	}
}

func TestPickerNoDevices(t *testing.T) {
	m := scanned(t, NewPickerModel(fakeScan(nil, nil), time.Second))

	if !strings.Contains(m.View(), "No painters found") {
		t.Error("view should report an empty scan")
	}
	m = pick(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen != "" {
		t.Errorf("Chosen = %q with nothing listed", m.Chosen)
	}
}

func TestPickerScanError(t *testing.T) {
	m := scanned(t, NewPickerModel(fakeScan(nil, errors.New("no multicast")), time.Second))

	if !strings.Contains(m.View(), "Scan failed") {
		t.Error("view should report the scan error")
	}
}

func TestPickerManualEntry(t *testing.T) {
	m := scanned(t, NewPickerModel(fakeScan(nil, nil), time.Second))

	m = pick(t, m, runes("m"))
	if !m.ManualMode {
		t.Fatal("m should open manual entry")
	}

	m.URLInput.SetValue("ftp://nope")
	m = pick(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.InputErr == nil || m.Chosen != "" {
		t.Fatalf("InputErr=%v Chosen=%q", m.InputErr, m.Chosen)
	}

	m.URLInput.SetValue("10.0.0.9:8080")
	m = pick(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen != "http://10.0.0.9:8080/api" {
		t.Errorf("Chosen = %q", m.Chosen)
	}
	if m.ManualMode {
		t.Error("manual entry should close")
	}
}

func TestAppOpensEditorForPickedDevice(t *testing.T) {
	remote := &fakeRemote{state: hexParams()}
	var opened string
	factory := func(endpoint string) (*paramsync.Engine, error) {
		opened = endpoint
		return paramsync.New(remote, paramsync.Config{Endpoint: endpoint}), nil
	}

	picker := scanned(t, NewPickerModel(fakeScan([]*discovery.Device{studio()}, nil), time.Second))
	app := NewAppModel("", factory, picker)
	if app.CurrentScreen != ScreenPicker {
		t.Fatalf("screen = %s, want picker", app.CurrentScreen)
	}

	updated, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = updated.(AppModel)
	t.Cleanup(func() { _ = app.Engine().Close() })

	if app.CurrentScreen != ScreenEditor {
		t.Fatalf("screen = %s, want editor", app.CurrentScreen)
	}
	if opened != "http://10.0.0.7:8080/api" {
		t.Errorf("factory got %q", opened)
	}

	for _, msg := range collect(cmd) {
		if mm, ok := msg.(mountedMsg); ok {
			updated, _ = app.Update(mm)
			app = updated.(AppModel)
		}
	}
	if app.Editor.Mounting || app.Editor.MountErr != nil {
		t.Errorf("editor Mounting=%v MountErr=%v", app.Editor.Mounting, app.Editor.MountErr)
	}
}

func TestAppFactoryError(t *testing.T) {
	factory := func(endpoint string) (*paramsync.Engine, error) {
		return nil, errors.New("bad endpoint")
	}
	app := NewAppModel("http://x/api", factory, NewPickerModel(fakeScan(nil, nil), time.Second))

	if app.LastError == nil {
		t.Fatal("expected LastError")
	}
	if app.CurrentScreen != ScreenPicker {
		t.Errorf("screen = %s", app.CurrentScreen)
	}
}
