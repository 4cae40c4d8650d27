package markuptext

import (
	"strings"
	"unicode/utf8"
)

type entityResolver struct {
	custom map[string]string
}

var standardEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"apos": "'",
	"quot": "\"",
}

func (r *entityResolver) resolve(name string) (string, bool) {
	if value, ok := standardEntities[name]; ok {
		return value, true
	}
	if r == nil || r.custom == nil {
		return "", false
	}
	value, ok := r.custom[name]
	return value, ok
}

// unescape expands entity and character references in data.
// It returns data unchanged when it contains no references.
func unescape(data string, resolver *entityResolver) (string, error) {
	if strings.IndexByte(data, '&') < 0 {
		return data, nil
	}
	var b strings.Builder
	b.Grow(len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '&' {
			b.WriteByte(data[i])
			continue
		}
		consumed, replacement, err := parseEntityRef(data, i, resolver)
		if err != nil {
			return "", err
		}
		b.WriteString(replacement)
		i += consumed - 1
	}
	return b.String(), nil
}

func parseEntityRef(data string, start int, resolver *entityResolver) (int, string, error) {
	if start+1 >= len(data) {
		return 0, "", errInvalidEntity
	}
	semi := strings.IndexByte(data[start+1:], ';')
	if semi <= 0 {
		return 0, "", errInvalidEntity
	}
	semi += start + 1
	ref := data[start+1 : semi]
	if ref[0] == '#' {
		r, err := parseNumericEntity(ref)
		if err != nil {
			return 0, "", err
		}
		return semi - start + 1, string(r), nil
	}
	replacement, ok := resolver.resolve(ref)
	if !ok {
		return 0, "", errInvalidEntity
	}
	return semi - start + 1, replacement, nil
}

func parseNumericEntity(ref string) (rune, error) {
	if len(ref) < 2 {
		return 0, errInvalidCharRef
	}
	base := 10
	start := 1
	if ref[1] == 'x' || ref[1] == 'X' {
		base = 16
		start = 2
	}
	if start >= len(ref) {
		return 0, errInvalidCharRef
	}
	var value uint64
	for i := start; i < len(ref); i++ {
		b := ref[i]
		var digit byte
		switch {
		case b >= '0' && b <= '9':
			digit = b - '0'
		case base == 16 && b >= 'a' && b <= 'f':
			digit = b - 'a' + 10
		case base == 16 && b >= 'A' && b <= 'F':
			digit = b - 'A' + 10
		default:
			return 0, errInvalidCharRef
		}
		value = value*uint64(base) + uint64(digit)
		if value > utf8.MaxRune {
			return 0, errInvalidCharRef
		}
	}
	r := rune(value)
	if r == 0 || (r >= 0xD800 && r <= 0xDFFF) {
		return 0, errInvalidCharRef
	}
	return r, nil
}
