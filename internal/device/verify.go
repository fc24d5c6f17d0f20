package device

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/muurk/wave/internal/painter"
)

// VerificationOptions configures how a write is verified
type VerificationOptions struct {
	// MaxRetries is the maximum number of extra verification reads
	// Default: 2
	MaxRetries int

	// InitialDelay gives the device time to apply the write
	// Default: 200ms
	InitialDelay time.Duration

	// RetryDelay is the delay between verification reads
	// Default: 500ms
	RetryDelay time.Duration
}

// DefaultVerificationOptions returns sensible defaults for verification
func DefaultVerificationOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:   2,
		InitialDelay: 200 * time.Millisecond,
		RetryDelay:   500 * time.Millisecond,
	}
}

// VerificationResult contains the results of a verification
type VerificationResult struct {
	// Success indicates the device reports exactly what was written
	Success bool

	// Attempts is the number of reads made
	Attempts int

	// Actual is the last params read from the device
	Actual painter.Params

	// Mismatches lists every field that differs
	Mismatches []string

	// Error is any error that occurred during verification
	Error error
}

// PostAndVerify writes params and reads them back until they match or
// the attempts run out.
func (c *Client) PostAndVerify(ctx context.Context, params painter.Params, opts *VerificationOptions) *VerificationResult {
	if err := c.PostParams(ctx, params); err != nil {
		return &VerificationResult{Error: fmt.Errorf("write failed: %w", err)}
	}
	return c.Verify(ctx, params, opts)
}

// Verify reads the device params and compares them with expected.
func (c *Client) Verify(ctx context.Context, expected painter.Params, opts *VerificationOptions) *VerificationResult {
	if opts == nil {
		opts = DefaultVerificationOptions()
	}
	result := &VerificationResult{Mismatches: []string{}}

	delay := opts.InitialDelay
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			result.Error = NewNetworkError("verification canceled", c.Endpoint, ctx.Err())
			return result
		case <-time.After(delay):
		}
		delay = opts.RetryDelay
		result.Attempts++

		actual, err := c.getParamsAttempt(ctx)
		if err != nil {
			result.Error = fmt.Errorf("attempt %d: failed to read params: %w", attempt+1, err)
			continue
		}
		result.Actual = actual
		result.Mismatches = CompareParams(expected, actual)
		if len(result.Mismatches) == 0 {
			result.Success = true
			result.Error = nil
			return result
		}
		result.Error = NewMismatchError(formatMismatches(result.Mismatches))
	}
	return result
}

// CompareParams lists the fields that differ between expected and actual.
func CompareParams(expected, actual painter.Params) []string {
	var mismatches []string

	if expected.Painter != actual.Painter {
		mismatches = append(mismatches, fmt.Sprintf("painter: expected %q, got %q", expected.Painter, actual.Painter))
	}
	if expected.GlobalBrightness != actual.GlobalBrightness {
		mismatches = append(mismatches, fmt.Sprintf("global_brightness: expected %g, got %g", expected.GlobalBrightness, actual.GlobalBrightness))
	}
	if expected.Speed != actual.Speed {
		mismatches = append(mismatches, fmt.Sprintf("speed: expected %g, got %g", expected.Speed, actual.Speed))
	}
	if expected.Fade != actual.Fade {
		mismatches = append(mismatches, fmt.Sprintf("fade: expected %g, got %g", expected.Fade, actual.Fade))
	}
	if expected.Bidirectional != actual.Bidirectional {
		mismatches = append(mismatches, fmt.Sprintf("bidirectional: expected %v, got %v", expected.Bidirectional, actual.Bidirectional))
	}
	if expected.Color != actual.Color {
		mismatches = append(mismatches, fmt.Sprintf("color: expected %s, got %s", expected.Color, actual.Color))
	}

	if len(expected.SecondaryColors) != len(actual.SecondaryColors) {
		mismatches = append(mismatches, fmt.Sprintf("secondary_colors: expected %d entries, got %d",
			len(expected.SecondaryColors), len(actual.SecondaryColors)))
		return mismatches
	}
	for i := range expected.SecondaryColors {
		if expected.SecondaryColors[i] != actual.SecondaryColors[i] {
			mismatches = append(mismatches, fmt.Sprintf("secondary_colors[%d]: expected %s, got %s",
				i, expected.SecondaryColors[i], actual.SecondaryColors[i]))
		}
	}
	return mismatches
}

// formatMismatches creates a human-readable summary of mismatches
func formatMismatches(mismatches []string) string {
	switch len(mismatches) {
	case 0:
		return "none"
	case 1:
		return mismatches[0]
	}
	return fmt.Sprintf("%d mismatches: %s", len(mismatches), strings.Join(mismatches, "; "))
}
