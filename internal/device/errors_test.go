package device

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"

	"github.com/muurk/wave/internal/painter"
)

// timeoutError implements net.Error with Timeout() == true
type timeoutError struct{}

func (e *timeoutError) Error() string   { return "i/o timeout" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantType      ErrorType
		wantSubtype   NetworkErrorSubtype
		wantRetryable bool
	}{
		{
			name: "timeout",
			err: &url.Error{Op: "Get", URL: "http://10.0.0.9/api", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: &timeoutError{},
			}},
			wantType:      ErrTypeTimeout,
			wantSubtype:   NetworkErrorTimeout,
			wantRetryable: true,
		},
		{
			name: "connection refused",
			err: &url.Error{Op: "Get", URL: "http://10.0.0.9/api", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED,
			}},
			wantType:      ErrTypeConnectionRefused,
			wantSubtype:   NetworkErrorConnectionRefused,
			wantRetryable: true,
		},
		{
			name:          "dns",
			err:           &net.DNSError{Err: "no such host", Name: "painter.invalid", IsNotFound: true},
			wantType:      ErrTypeDNS,
			wantSubtype:   NetworkErrorDNS,
			wantRetryable: false,
		},
		{
			name: "host unreachable",
			err: &url.Error{Op: "Post", URL: "http://10.0.0.9/api", Err: &net.OpError{
				Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH,
			}},
			wantType:      ErrTypeNetwork,
			wantSubtype:   NetworkErrorHostUnreachable,
			wantRetryable: true,
		},
		{
			name:          "context canceled",
			err:           &url.Error{Op: "Get", URL: "http://10.0.0.9/api", Err: context.Canceled},
			wantType:      ErrTypeNetwork,
			wantSubtype:   NetworkErrorCanceled,
			wantRetryable: false,
		},
		{
			name:          "deadline exceeded",
			err:           fmt.Errorf("read: %w", context.DeadlineExceeded),
			wantType:      ErrTypeTimeout,
			wantSubtype:   NetworkErrorTimeout,
			wantRetryable: true,
		},
		{
			name:          "generic",
			err:           errors.New("connection reset by peer"),
			wantType:      ErrTypeNetwork,
			wantSubtype:   NetworkErrorGeneral,
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devErr := ClassifyNetworkError(tt.err, "http://10.0.0.9/api")
			if devErr == nil {
				t.Fatal("Expected DeviceError, got nil")
			}
			if devErr.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", devErr.Type, tt.wantType)
			}
			if devErr.NetworkSubtype != tt.wantSubtype {
				t.Errorf("NetworkSubtype = %v, want %v", devErr.NetworkSubtype, tt.wantSubtype)
			}
			if devErr.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", devErr.Retryable, tt.wantRetryable)
			}
			if !errors.Is(devErr, ErrNetworkFailure) {
				t.Error("network errors should match ErrNetworkFailure")
			}
		})
	}

	if ClassifyNetworkError(nil, "") != nil {
		t.Error("ClassifyNetworkError(nil) should be nil")
	}
}

func TestDeviceErrorIs(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantNetwork   bool
		wantMalformed bool
	}{
		{"http 500", NewHTTPError(500, "boom"), true, false},
		{"http 400", NewHTTPError(400, "bad"), true, false},
		{"parse", NewParseError("bad json", errors.New("eof")), false, true},
		{"mismatch", NewMismatchError("painter differs"), false, false},
		{"wrapped parse", fmt.Errorf("mount: %w", NewParseError("bad", nil)), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, ErrNetworkFailure); got != tt.wantNetwork {
				t.Errorf("errors.Is(ErrNetworkFailure) = %v, want %v", got, tt.wantNetwork)
			}
			if got := errors.Is(tt.err, painter.ErrMalformedParams); got != tt.wantMalformed {
				t.Errorf("errors.Is(ErrMalformedParams) = %v, want %v", got, tt.wantMalformed)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"server error", NewHTTPError(503, "unavailable"), true},
		{"client error", NewHTTPError(404, "not found"), false},
		{"parse error", NewParseError("bad", nil), false},
		{"wrapped network", fmt.Errorf("x: %w", &DeviceError{Type: ErrTypeNetwork, Retryable: true}), true},
		{"plain error", errors.New("other"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestTypeHelpers(t *testing.T) {
	if !IsNetworkError(&DeviceError{Type: ErrTypeDNS}) {
		t.Error("DNS errors are network errors")
	}
	if IsNetworkError(NewHTTPError(500, "")) {
		t.Error("HTTP errors are not network errors")
	}
	if !IsHTTPError(NewHTTPError(500, "")) {
		t.Error("IsHTTPError() = false")
	}
	if !IsParseError(NewParseError("", nil)) {
		t.Error("IsParseError() = false")
	}
	if !IsMismatchError(NewMismatchError("")) {
		t.Error("IsMismatchError() = false")
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&DeviceError{Type: ErrTypeTimeout}, "Device not responding (timeout)"},
		{&DeviceError{Type: ErrTypeConnectionRefused}, "Device refused connection"},
		{&DeviceError{Type: ErrTypeNetwork, NetworkSubtype: NetworkErrorCanceled}, "Request canceled"},
		{NewHTTPError(502, ""), "Device error (HTTP 502)"},
		{NewParseError("", nil), "Device sent malformed params"},
		{errors.New("plain"), "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := GetShortErrorMessage(tt.err); got != tt.want {
				t.Errorf("GetShortErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetTroubleshootingHint(t *testing.T) {
	hint := GetTroubleshootingHint(&DeviceError{
		Type:           ErrTypeNetwork,
		NetworkSubtype: NetworkErrorHostUnreachable,
		Endpoint:       "http://10.0.0.9/api",
	})
	if !strings.Contains(hint, "http://10.0.0.9/api") {
		t.Errorf("hint should mention the endpoint:\n%s", hint)
	}

	if !strings.Contains(GetTroubleshootingHint(NewHTTPError(400, "")), "HTTP 400") {
		t.Error("400 hint should mention the status")
	}
	if GetTroubleshootingHint(errors.New("x")) != "An unexpected error occurred. Please try again." {
		t.Error("non device errors should get the generic hint")
	}
}

func TestErrorTypeString(t *testing.T) {
	if ErrTypeParse.String() != "Malformed Params" {
		t.Errorf("ErrTypeParse.String() = %q", ErrTypeParse.String())
	}
	if ErrorType(99).String() != "ErrorType(99)" {
		t.Errorf("ErrorType(99).String() = %q", ErrorType(99).String())
	}
}
