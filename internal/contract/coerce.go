package contract

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// coerce converts a wire argument to the declared parameter type.
//
// Conversion is deliberately loose: path and form protocols deliver
// every argument as a string, JSON and XML-RPC deliver typed values, and
// both must bind to the same signatures. Anything beyond this coercion
// is out of scope; there is no schema validation.
func coerce(arg any, target reflect.Type) (reflect.Value, error) {
	if target.Kind() == reflect.Interface && target.NumMethod() == 0 {
		if arg == nil {
			return reflect.Zero(target), nil
		}
		return reflect.ValueOf(arg), nil
	}
	if arg == nil {
		return reflect.Zero(target), nil
	}

	value := reflect.ValueOf(arg)
	if value.Type() == target {
		return value, nil
	}
	if value.Type().ConvertibleTo(target) && compatibleKinds(value.Kind(), target.Kind()) {
		return value.Convert(target), nil
	}

	switch target.Kind() {
	case reflect.String:
		return reflect.ValueOf(fmt.Sprint(arg)).Convert(target), nil
	case reflect.Bool:
		b, err := coerceBool(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(target), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := coerceInt(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(target).Elem()
		if out.OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("value %d out of range for %s", n, target)
		}
		out.SetInt(n)
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := coerceInt(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		if n < 0 {
			return reflect.Value{}, fmt.Errorf("negative value %d for unsigned parameter", n)
		}
		out := reflect.New(target).Elem()
		if out.OverflowUint(uint64(n)) {
			return reflect.Value{}, fmt.Errorf("value %d out of range for %s", n, target)
		}
		out.SetUint(uint64(n))
		return out, nil
	case reflect.Float32, reflect.Float64:
		f, err := coerceFloat(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(target).Elem()
		if out.OverflowFloat(f) {
			return reflect.Value{}, fmt.Errorf("value %v out of range for %s", f, target)
		}
		out.SetFloat(f)
		return out, nil
	case reflect.Slice, reflect.Map, reflect.Struct, reflect.Pointer:
		return coerceComposite(arg, target)
	default:
		return reflect.Value{}, fmt.Errorf("cannot bind %T to %s", arg, target)
	}
}

// compatibleKinds reports whether a reflect conversion between the two
// kinds can never lose range. Only those conversions may take the
// Convert fast path; every other numeric pairing goes through the
// checked coerce functions, where out-of-range, negative-to-unsigned
// and fractional values fail instead of wrapping or truncating.
func compatibleKinds(from, to reflect.Kind) bool {
	if from == to {
		return true
	}
	if from == reflect.Float32 && to == reflect.Float64 {
		return true
	}
	if signedKind(from) && signedKind(to) || unsignedKind(from) && unsignedKind(to) {
		fb, tb := fixedBits(from), fixedBits(to)
		return fb != 0 && tb != 0 && fb <= tb
	}
	return false
}

func signedKind(k reflect.Kind) bool   { return k >= reflect.Int && k <= reflect.Int64 }
func unsignedKind(k reflect.Kind) bool { return k >= reflect.Uint && k <= reflect.Uint64 }

// fixedBits returns the width of a sized integer kind. Platform-sized
// int and uint report zero so they widen only on an exact kind match.
func fixedBits(k reflect.Kind) int {
	switch k {
	case reflect.Int8, reflect.Uint8:
		return 8
	case reflect.Int16, reflect.Uint16:
		return 16
	case reflect.Int32, reflect.Uint32:
		return 32
	case reflect.Int64, reflect.Uint64:
		return 64
	default:
		return 0
	}
}

func coerceBool(arg any) (bool, error) {
	switch v := arg.(type) {
	case bool:
		return v, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("cannot parse %q as boolean", v)
		}
		return parsed, nil
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot bind %T to boolean", arg)
	}
}

func coerceInt(arg any) (int64, error) {
	switch v := arg.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("value %v is not an integer", v)
		}
		return int64(v), nil
	case float32:
		return coerceInt(float64(v))
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		parsed, err := strconv.ParseInt(trimmed, 10, 64)
		if err == nil {
			return parsed, nil
		}
		f, ferr := strconv.ParseFloat(trimmed, 64)
		if ferr == nil && f == math.Trunc(f) {
			return int64(f), nil
		}
		return 0, fmt.Errorf("cannot parse %q as integer", v)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		rv := reflect.ValueOf(arg)
		switch {
		case rv.CanInt():
			return rv.Int(), nil
		case rv.CanUint():
			u := rv.Uint()
			if u > math.MaxInt64 {
				return 0, fmt.Errorf("value %d overflows integer", u)
			}
			return int64(u), nil
		}
		return 0, fmt.Errorf("cannot bind %T to integer", arg)
	}
}

func coerceFloat(arg any) (float64, error) {
	switch v := arg.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as float", v)
		}
		return parsed, nil
	default:
		rv := reflect.ValueOf(arg)
		switch {
		case rv.CanInt():
			return float64(rv.Int()), nil
		case rv.CanUint():
			return float64(rv.Uint()), nil
		case rv.CanFloat():
			return rv.Float(), nil
		}
		return 0, fmt.Errorf("cannot bind %T to float", arg)
	}
}

// coerceComposite binds maps, slices and structs through a JSON
// round-trip, which accepts both decoded JSON values and JSON text.
func coerceComposite(arg any, target reflect.Type) (reflect.Value, error) {
	var raw []byte
	if s, ok := arg.(string); ok {
		raw = []byte(s)
	} else {
		encoded, err := json.Marshal(arg)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot bind %T to %s: %v", arg, target, err)
		}
		raw = encoded
	}
	out := reflect.New(target)
	if err := json.Unmarshal(raw, out.Interface()); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot bind %T to %s: %v", arg, target, err)
	}
	return out.Elem(), nil
}
