package discovery

import "testing"

func TestDevice_String(t *testing.T) {
	device := &Device{
		Instance: "studio",
		Hostname: "studio.local.",
		IP:       "192.168.4.16",
		Port:     8080,
	}

	expected := "studio (studio.local.) at 192.168.4.16:8080"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}
}

func TestDevice_URLs(t *testing.T) {
	tests := []struct {
		name      string
		device    *Device
		wantBase  string
		wantParam string
	}{
		{
			name:      "IPv4 with path",
			device:    &Device{IP: "192.168.4.16", Port: 80, Path: "/api"},
			wantBase:  "http://192.168.4.16:80",
			wantParam: "http://192.168.4.16:80/api",
		},
		{
			name:      "empty path",
			device:    &Device{IP: "10.0.0.5", Port: 8080},
			wantBase:  "http://10.0.0.5:8080",
			wantParam: "http://10.0.0.5:8080/api",
		},
		{
			name:      "IPv6",
			device:    &Device{IP: "fe80::1", Port: 80, Path: "/api"},
			wantBase:  "http://[fe80::1]:80",
			wantParam: "http://[fe80::1]:80/api",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.BaseURL(); got != tt.wantBase {
				t.Errorf("BaseURL() = %v, want %v", got, tt.wantBase)
			}
			if got := tt.device.ParamsURL(); got != tt.wantParam {
				t.Errorf("ParamsURL() = %v, want %v", got, tt.wantParam)
			}
		})
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{Metadata: map[string]string{"id": "abc"}}
	if got := device.GetMetadata("id"); got != "abc" {
		t.Errorf("GetMetadata(id) = %q", got)
	}
	if got := device.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q", got)
	}

	var empty Device
	if got := empty.GetMetadata("id"); got != "" {
		t.Errorf("GetMetadata on nil map = %q", got)
	}
}
