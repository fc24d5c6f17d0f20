package painter

import "testing"

func TestClampColor(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b int
		want    Color
	}{
		{"in range", 10, 20, 30, RGB(10, 20, 30)},
		{"above range", 300, 256, 255, RGB(255, 255, 255)},
		{"below range", -5, 0, -1, RGB(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampColor(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("ClampColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColorWithChannel(t *testing.T) {
	c := RGB(1, 2, 3)

	got, ok := c.WithChannel("g", 200)
	if !ok || got != RGB(1, 200, 3) {
		t.Errorf("WithChannel(g) = %v, %v", got, ok)
	}
	if c != RGB(1, 2, 3) {
		t.Error("WithChannel modified the receiver")
	}

	if _, ok := c.WithChannel("a", 1); ok {
		t.Error("WithChannel(a) should fail")
	}
}

func TestColorHex(t *testing.T) {
	c := Hex(0x4267B2)
	if c != RGB(0x42, 0x67, 0xB2) {
		t.Errorf("Hex() = %v", c)
	}
	if c.Uint32() != 0x4267B2 {
		t.Errorf("Uint32() = %x, want 4267b2", c.Uint32())
	}
	if c.String() != "#4267b2" {
		t.Errorf("String() = %s, want #4267b2", c.String())
	}
}
