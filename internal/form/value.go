package form

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/muurk/wave/internal/colorconv"
	"github.com/muurk/wave/internal/painter"
)

// coerceNumber accepts any Go integer or float kind. Non-finite values
// are rejected because they cannot be encoded as JSON.
func coerceNumber(path Path, value any) (float64, error) {
	var f float64
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f = float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		f = rv.Float()
	default:
		return 0, fmt.Errorf("%w: %s wants a number, got %T", ErrInvalidValue, path, value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s must be finite", ErrInvalidValue, path)
	}
	return f, nil
}

// coerceChannel accepts integral numbers within 0-255. Out-of-range
// values are rejected, not clamped.
func coerceChannel(path Path, value any) (uint8, error) {
	f, err := coerceNumber(path, value)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidValue, path, f)
	}
	if f < 0 || f > 255 {
		return 0, fmt.Errorf("%w: %s must be within 0-255, got %v", ErrInvalidValue, path, f)
	}
	return uint8(f), nil
}

func coerceColor(path Path, value any) (painter.Color, error) {
	switch v := value.(type) {
	case painter.Color:
		return v, nil
	case *painter.Color:
		if v != nil {
			return *v, nil
		}
	}
	return painter.Color{}, fmt.Errorf("%w: %s wants a painter.Color, got %T", ErrInvalidValue, path, value)
}

// parseText converts user typed text into the Go value SetField expects
// for path.
func parseText(path Path, text string) (any, error) {
	text = strings.TrimSpace(text)
	switch path.Kind() {
	case KindString:
		if text == "" {
			return nil, fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, path)
		}
		return text, nil
	case KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s wants true or false, got %q", ErrInvalidValue, path, text)
		}
		return b, nil
	case KindChannel:
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s wants an integer, got %q", ErrInvalidValue, path, text)
		}
		return n, nil
	case KindColor:
		return colorconv.ToColor(text)
	default:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s wants a number, got %q", ErrInvalidValue, path, text)
		}
		return f, nil
	}
}
