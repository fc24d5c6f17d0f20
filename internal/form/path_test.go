package form

import (
	"errors"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		input    string
		want     Path
		wantKind Kind
		wantErr  bool
	}{
		{input: "painter", want: Path{Field: "painter", Index: -1}, wantKind: KindString},
		{input: "global_brightness", want: Path{Field: "global_brightness", Index: -1}, wantKind: KindNumber},
		{input: "bidirectional", want: Path{Field: "bidirectional", Index: -1}, wantKind: KindBool},
		{input: "color", want: Path{Field: "color", Index: -1}, wantKind: KindColor},
		{input: "color.r", want: Path{Field: "color", Index: -1, Channel: "r"}, wantKind: KindChannel},
		{input: "secondary_colors[0]", want: Path{Field: "secondary_colors", Index: 0}, wantKind: KindColor},
		{input: "secondary_colors[12].g", want: Path{Field: "secondary_colors", Index: 12, Channel: "g"}, wantKind: KindChannel},
		{input: "brightness", wantErr: true},
		{input: "color.a", wantErr: true},
		{input: "color[0]", wantErr: true},
		{input: "speed.r", wantErr: true},
		{input: "secondary_colors", wantErr: true},
		{input: "secondary_colors.r", wantErr: true},
		{input: "secondary_colors[x]", wantErr: true},
		{input: "secondary_colors[1", wantErr: true},
		{input: "secondary_colors[-1].r", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPath) {
					t.Errorf("ParsePath(%q) error = %v, want ErrInvalidPath", tt.input, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParsePath(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", got.Kind(), tt.wantKind)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
		})
	}
}
