package whitespace

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		in   string
		want string
	}{
		{name: "collapse untouched", mode: Collapse, in: "Property!", want: "Property!"},
		{name: "collapse trims", mode: Collapse, in: "  Text\n", want: "Text"},
		{name: "collapse inner runs", mode: Collapse, in: "a \t\n b  c", want: "a b c"},
		{name: "collapse blank", mode: Collapse, in: " \n\t ", want: ""},
		{name: "preserve", mode: Preserve, in: "  a  b ", want: "  a  b "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.mode, tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTrimAndBlank(t *testing.T) {
	if got := Trim("\r\n  x y \t"); got != "x y" {
		t.Fatalf("Trim() = %q", got)
	}
	if !IsBlank(" \t\r\n") {
		t.Fatalf("IsBlank() = false for whitespace")
	}
	if IsBlank(" x ") {
		t.Fatalf("IsBlank() = true for text")
	}
	if !IsBlank("") {
		t.Fatalf("IsBlank(\"\") = false")
	}
}
