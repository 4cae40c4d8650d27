package whitespace

import "strings"

// Mode selects how character data is normalized.
type Mode uint8

const (
	// Collapse trims leading and trailing whitespace and folds inner runs to one space.
	Collapse Mode = iota
	// Preserve keeps text unchanged, as requested by xml:space="preserve".
	Preserve
)

// Normalize applies the whitespace mode.
// It returns the input unchanged when no normalization is needed.
func Normalize(mode Mode, in string) string {
	if mode == Preserve {
		return in
	}
	return collapse(in)
}

// IsSpace reports whether the byte is XML whitespace.
func IsSpace(b byte) bool {
	if b > ' ' {
		return false
	}
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// IsBlank reports whether s contains only XML whitespace.
func IsBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		if !IsSpace(s[i]) {
			return false
		}
	}
	return true
}

// Trim removes leading and trailing XML whitespace.
func Trim(in string) string {
	start := 0
	end := len(in)
	for start < end && IsSpace(in[start]) {
		start++
	}
	for end > start && IsSpace(in[end-1]) {
		end--
	}
	return in[start:end]
}

func collapse(in string) string {
	if !needsCollapse(in) {
		return in
	}
	var b strings.Builder
	b.Grow(len(in))
	pendingSpace := false
	for i := 0; i < len(in); i++ {
		c := in[i]
		if IsSpace(c) {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteByte(c)
	}
	return b.String()
}

func needsCollapse(in string) bool {
	if in == "" {
		return false
	}
	if IsSpace(in[0]) || IsSpace(in[len(in)-1]) {
		return true
	}
	if strings.ContainsAny(in, "\t\n\r") {
		return true
	}
	return strings.Contains(in, "  ")
}
