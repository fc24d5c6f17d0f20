package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/muurk/wave/internal/painter"
)

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by user-chosen name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device is a remembered painter endpoint.
type Device struct {
	URL      string    `yaml:"url"`                 // Full params URL, e.g. http://10.0.0.5:8080/api
	ID       string    `yaml:"id,omitempty"`        // Instance id from the mDNS TXT record
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	Endpoint        string           `yaml:"endpoint,omitempty"`  // Device name or URL used when no flag is given
	Mode            string           `yaml:"mode,omitempty"`      // live or manual
	LogLevel        string           `yaml:"log_level,omitempty"` // Overridden by WAVE_LOG_LEVEL and --log-level
	DiscoverTimeout int              `yaml:"discover_timeout"`    // mDNS discovery timeout in seconds
	Painters        []painter.Option `yaml:"painters,omitempty"`  // Painter enumeration; empty means built-in list
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

func defaultPreferences() *Preferences {
	return &Preferences{
		Mode:            "manual",
		DiscoverTimeout: 5,
	}
}

// GetDevice retrieves a device by name.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(name string) *Device {
	return r.Devices[name]
}

// EnsureDevice returns the named device entry, creating it if needed.
func (r *Registry) EnsureDevice(name string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[name]; exists {
		return device
	}

	device := &Device{}
	r.Devices[name] = device
	return device
}

// RememberDevice records the URL and id of a device and stamps it as seen.
func (r *Registry) RememberDevice(name, url, id string) {
	device := r.EnsureDevice(name)
	device.URL = url
	if id != "" {
		device.ID = id
	}
	device.LastSeen = time.Now()
}

// ForgetDevice removes a device. It reports whether the device existed.
func (r *Registry) ForgetDevice(name string) bool {
	if _, ok := r.Devices[name]; !ok {
		return false
	}
	delete(r.Devices, name)
	return true
}

// DeviceNames returns the device names in sorted order.
func (r *Registry) DeviceNames() []string {
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveEndpoint turns a device name or URL into a URL. An empty
// argument falls back to the preferred endpoint.
func (r *Registry) ResolveEndpoint(nameOrURL string) (string, error) {
	if nameOrURL == "" && r.Preferences != nil {
		nameOrURL = r.Preferences.Endpoint
	}
	if nameOrURL == "" {
		return "", fmt.Errorf("no endpoint given and no default endpoint configured")
	}
	if strings.Contains(nameOrURL, "://") || strings.Contains(nameOrURL, ":") {
		return nameOrURL, nil
	}
	if device := r.GetDevice(nameOrURL); device != nil && device.URL != "" {
		return device.URL, nil
	}
	return "", fmt.Errorf("unknown device %q", nameOrURL)
}

// PainterOptions returns the configured painter enumeration, or the
// built-in list when none is configured.
func (r *Registry) PainterOptions() []painter.Option {
	if r.Preferences == nil || len(r.Preferences.Painters) == 0 {
		return painter.KnownPainters
	}
	return r.Preferences.Painters
}
