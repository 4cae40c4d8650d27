package reflectcatalog

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var errNotConvertible = errors.New("value is not convertible")

var (
	durationType        = reflect.TypeFor[time.Duration]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// convert returns value as a reflect.Value assignable to to. Text is parsed
// according to the target kind; other values must be assignable or of the
// same kind.
func convert(value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch to.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(to), nil
		default:
			return reflect.Value{}, fmt.Errorf("%w: nil to %s", errNotConvertible, to)
		}
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(to) {
		return v, nil
	}
	if s, ok := value.(string); ok {
		return parseText(s, to)
	}
	if v.Kind() == to.Kind() && v.Type().ConvertibleTo(to) {
		return v.Convert(to), nil
	}
	if to.Kind() == reflect.Pointer && v.Type().AssignableTo(to.Elem()) {
		p := reflect.New(to.Elem())
		p.Elem().Set(v)
		return p, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %T to %s", errNotConvertible, value, to)
}

func implementsTextUnmarshaler(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(textUnmarshalerType)
}

// parseText parses markup text into a value of type to.
func parseText(s string, to reflect.Type) (reflect.Value, error) {
	if to.Kind() != reflect.Pointer && implementsTextUnmarshaler(to) {
		p := reflect.New(to)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return reflect.Value{}, fmt.Errorf("parse %q as %s: %w", s, to, err)
		}
		return p.Elem(), nil
	}
	if to == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %q as %s: %w", s, to, err)
		}
		return reflect.ValueOf(d), nil
	}

	out := reflect.New(to).Elem()
	text := strings.TrimSpace(s)
	switch to.Kind() {
	case reflect.String:
		out.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %q as %s: %w", s, to, err)
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(text, 0, to.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %q as %s: %w", s, to, err)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(text, 0, to.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %q as %s: %w", s, to, err)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, to.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("parse %q as %s: %w", s, to, err)
		}
		out.SetFloat(f)
	case reflect.Pointer:
		elem, err := parseText(s, to.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(to.Elem())
		p.Elem().Set(elem)
		return p, nil
	case reflect.Interface:
		sv := reflect.ValueOf(s)
		if !sv.Type().AssignableTo(to) {
			return reflect.Value{}, fmt.Errorf("%w: text to %s", errNotConvertible, to)
		}
		return sv, nil
	default:
		return reflect.Value{}, fmt.Errorf("%w: text to %s", errNotConvertible, to)
	}
	return out, nil
}
