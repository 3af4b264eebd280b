package pipeline

import "testing"

func TestAssemble(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain text", "hello there", "hello there", true},
		{"bold pairs removed", "so **very** bold", "so very bold", true},
		{"stray double marker removed", "mid**sentence", "midsentence", true},
		{"whitespace trimmed", "  spaced out \n", "spaced out", true},
		{"empty suppressed", "", "", false},
		{"whitespace only suppressed", "   \n\t", "", false},
		{"lone marker suppressed", " * ", "", false},
		{"bold pair collapsing to marker", " **** * ", "", false},
		{"single emphasis kept", "*italic*", "*italic*", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Assemble(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Assemble(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
