package format

import "testing"

func TestPoints(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1.00"},
		{2.5, "2.50"},
		{10, "10"},
		{999.9, "999"},
		{1000, "1,000"},
		{1500, "1.500K"},
		{2500000, "2.500M"},
		{4000000000, "4.000B"},
		{1e36, "1,000.000Dc"},
	}

	for _, tt := range tests {
		if got := Points(tt.in); got != tt.want {
			t.Errorf("Points(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRate(t *testing.T) {
	if got, want := Rate(1500), "1.500K/s"; got != want {
		t.Errorf("Rate() = %q, want %q", got, want)
	}
}
