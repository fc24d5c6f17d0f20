package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/wave/internal/painter"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if filepath.Base(configDir) != "wave" {
		t.Errorf("GetConfigDir() = %v, should end in 'wave'", configDir)
	}

	if runtime.GOOS == "darwin" && !strings.Contains(configDir, ".config") {
		t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
	}
}

func TestGetConfigDirXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if configDir != filepath.Join("/tmp/xdg", "wave") {
		t.Errorf("GetConfigDir() = %v", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}

	t.Setenv(ConfigPathEnvVar, "/etc/wave.yaml")
	if configPath, _ := GetConfigPath(); configPath != "/etc/wave.yaml" {
		t.Errorf("GetConfigPath() with %s = %v", ConfigPathEnvVar, configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.Mode != "manual" {
		t.Errorf("NewRegistry().Preferences.Mode = %q, want manual", reg.Preferences.Mode)
	}
	if reg.Preferences.DiscoverTimeout != 5 {
		t.Errorf("NewRegistry().Preferences.DiscoverTimeout = %v, want 5", reg.Preferences.DiscoverTimeout)
	}
}

func TestRegistryEnsureDevice(t *testing.T) {
	reg := NewRegistry()

	device1 := reg.EnsureDevice("studio")
	if device1 == nil {
		t.Fatal("EnsureDevice() returned nil")
	}

	if device2 := reg.EnsureDevice("studio"); device1 != device2 {
		t.Error("EnsureDevice() should return same instance for same name")
	}

	if device3 := reg.EnsureDevice("hall"); device1 == device3 {
		t.Error("EnsureDevice() should create new instance for different name")
	}
}

func TestRegistryRememberDevice(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.RememberDevice("studio", "http://10.0.0.5:8080/api", "abc")
	after := time.Now()

	device := reg.GetDevice("studio")
	if device == nil {
		t.Fatal("Device should exist after RememberDevice()")
	}
	if device.URL != "http://10.0.0.5:8080/api" || device.ID != "abc" {
		t.Errorf("device = %+v", device)
	}
	if device.LastSeen.Before(before) || device.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", device.LastSeen, before, after)
	}

	// an empty id keeps the previous one
	reg.RememberDevice("studio", "http://10.0.0.6:8080/api", "")
	if device.ID != "abc" || device.URL != "http://10.0.0.6:8080/api" {
		t.Errorf("device after update = %+v", device)
	}
}

func TestRegistryForgetDevice(t *testing.T) {
	reg := NewRegistry()
	reg.RememberDevice("b", "http://b/api", "")
	reg.RememberDevice("a", "http://a/api", "")

	if got := reg.DeviceNames(); strings.Join(got, ",") != "a,b" {
		t.Errorf("DeviceNames() = %v", got)
	}
	if !reg.ForgetDevice("a") {
		t.Error("ForgetDevice(a) = false")
	}
	if reg.ForgetDevice("a") {
		t.Error("second ForgetDevice(a) = true")
	}
	if reg.GetDevice("a") != nil {
		t.Error("device still present")
	}
}

func TestRegistryResolveEndpoint(t *testing.T) {
	reg := NewRegistry()
	reg.RememberDevice("studio", "http://10.0.0.5:8080/api", "")

	tests := []struct {
		name    string
		pref    string
		arg     string
		want    string
		wantErr bool
	}{
		{"url passthrough", "", "http://x/api", "http://x/api", false},
		{"host port passthrough", "", "10.0.0.9:80", "10.0.0.9:80", false},
		{"named device", "", "studio", "http://10.0.0.5:8080/api", false},
		{"unknown name", "", "kitchen", "", true},
		{"default endpoint", "studio", "", "http://10.0.0.5:8080/api", false},
		{"nothing configured", "", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg.Preferences.Endpoint = tt.pref
			got, err := reg.ResolveEndpoint(tt.arg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveEndpoint(%q) error = %v, wantErr %v", tt.arg, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveEndpoint(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestRegistryPainterOptions(t *testing.T) {
	reg := NewRegistry()
	if got := reg.PainterOptions(); len(got) != len(painter.KnownPainters) {
		t.Errorf("PainterOptions() = %v, want built-in list", got)
	}

	reg.Preferences.Painters = []painter.Option{{Value: "aurora", Name: "Aurora"}}
	if got := reg.PainterOptions(); len(got) != 1 || got[0].Value != "aurora" {
		t.Errorf("PainterOptions() = %v", got)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	reg.RememberDevice("studio", "http://10.0.0.5:8080/api", "id-1")
	reg.Preferences.Endpoint = "studio"
	reg.Preferences.Mode = "live"
	reg.Preferences.Painters = []painter.Option{{Value: "rain", Name: "Rain"}}

	if err := reg.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	device := loaded.GetDevice("studio")
	if device == nil {
		t.Fatal("Device should exist in loaded registry")
	}
	if device.URL != "http://10.0.0.5:8080/api" || device.ID != "id-1" {
		t.Errorf("loaded device = %+v", device)
	}
	if loaded.Preferences.Mode != "live" || loaded.Preferences.Endpoint != "studio" {
		t.Errorf("loaded preferences = %+v", loaded.Preferences)
	}
	if opts := loaded.PainterOptions(); len(opts) != 1 || opts[0].Name != "Rain" {
		t.Errorf("loaded painters = %v", opts)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file gives defaults", func(t *testing.T) {
		reg, err := LoadFile(filepath.Join(dir, "absent.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if reg.Version != 1 || reg.Preferences == nil {
			t.Errorf("LoadFile() = %+v", reg)
		}
	})

	t.Run("minimal file is completed", func(t *testing.T) {
		path := filepath.Join(dir, "min.yaml")
		if err := os.WriteFile(path, []byte("version: 1\n"), 0600); err != nil {
			t.Fatal(err)
		}
		reg, err := LoadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if reg.Devices == nil || reg.Preferences == nil {
			t.Errorf("LoadFile() left nil fields: %+v", reg)
		}
	})

	t.Run("wrong version", func(t *testing.T) {
		path := filepath.Join(dir, "v2.yaml")
		if err := os.WriteFile(path, []byte("version: 2\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Error("expected version error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("version: [\n"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}

func BenchmarkResolveEndpoint(b *testing.B) {
	reg := NewRegistry()
	reg.RememberDevice("studio", "http://10.0.0.5:8080/api", "")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = reg.ResolveEndpoint("studio")
	}
}
