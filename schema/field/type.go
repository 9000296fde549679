package field

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Type is the semantic value type of a column.
type Type uint8

// List of column types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeTime
	TypeUUID
	TypeBytes
	TypeString
	TypeInt
	TypeInt64
	TypeFloat64
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeTime:    "time.Time",
	TypeUUID:    "uuid.UUID",
	TypeBytes:   "[]byte",
	TypeString:  "string",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeFloat64: "float64",
}

// String returns the string representation of a type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type is a known type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t >= TypeInt && t < endTypes
}

// Integer reports if the given type is an integer type.
func (t Type) Integer() bool {
	return t == TypeInt || t == TypeInt64
}

// Comparable reports whether columns of type t and u may be compared with
// each other. Numeric types are mutually comparable.
func (t Type) Comparable(u Type) bool {
	return t == u || t.Numeric() && u.Numeric()
}

var (
	timeType  = reflect.TypeOf(time.Time{})
	uuidType  = reflect.TypeOf(uuid.UUID{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// Accepts reports whether the Go value v may be bound to a column of type t.
// Named types are accepted by their underlying kind, and non-nil pointers
// by the value they point to. A nil value is never accepted, nor an
// unsigned value that does not fit in an int64 column.
func (t Type) Accepts(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	if t == TypeInt || t == TypeInt64 {
		switch rv.Kind() {
		case reflect.Uint, reflect.Uint64, reflect.Uintptr:
			if rv.Uint() > math.MaxInt64 {
				return false
			}
		}
	}
	return t.AcceptsType(rv.Type())
}

// AcceptsType is like Accepts, for a Go type. Unsigned types are accepted
// for integer columns; their values are range checked by Accepts.
func (t Type) AcceptsType(rt reflect.Type) bool {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	switch k := rt.Kind(); t {
	case TypeBool:
		return k == reflect.Bool
	case TypeString:
		return k == reflect.String
	case TypeInt, TypeInt64:
		return isInt(k)
	case TypeFloat64:
		return k == reflect.Float32 || k == reflect.Float64 || isInt(k)
	case TypeTime:
		return rt.ConvertibleTo(timeType) && k == reflect.Struct
	case TypeUUID:
		return rt.ConvertibleTo(uuidType)
	case TypeBytes:
		return k == reflect.Slice && rt.Elem().Kind() == reflect.Uint8
	}
	return false
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Uint64
}

// time layouts used by drivers that store timestamps as text (SQLite).
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Normalize converts a value scanned from a driver into the canonical Go
// type of t: bool, time.Time, uuid.UUID, []byte, string, int64 (TypeInt and
// TypeInt64) or float64. A nil value stays nil.
func (t Type) Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case TypeString:
		switch v := v.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
	case TypeInt, TypeInt64:
		switch v := v.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case uint32:
			return int64(v), nil
		case uint:
			return uintToInt64(t, uint64(v))
		case uint64:
			return uintToInt64(t, v)
		case float64:
			if v >= math.MinInt64 && v < math.MaxInt64 && v == math.Trunc(v) {
				return int64(v), nil
			}
		case []byte:
			return parse(t, v, func(s string) (any, error) { return strconv.ParseInt(s, 10, 64) })
		case string:
			return parse(t, v, func(s string) (any, error) { return strconv.ParseInt(s, 10, 64) })
		}
	case TypeFloat64:
		switch v := v.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case []byte:
			return parse(t, v, func(s string) (any, error) { return strconv.ParseFloat(s, 64) })
		case string:
			return parse(t, v, func(s string) (any, error) { return strconv.ParseFloat(s, 64) })
		}
	case TypeBool:
		switch v := v.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		case []byte:
			return parse(t, v, func(s string) (any, error) { return strconv.ParseBool(s) })
		case string:
			return parse(t, v, func(s string) (any, error) { return strconv.ParseBool(s) })
		}
	case TypeTime:
		switch v := v.(type) {
		case time.Time:
			return v, nil
		case []byte:
			return parse(t, v, parseTime)
		case string:
			return parse(t, v, parseTime)
		}
	case TypeUUID:
		switch v := v.(type) {
		case uuid.UUID:
			return v, nil
		case []byte:
			if len(v) == 16 {
				return uuid.FromBytes(v)
			}
			return uuid.ParseBytes(v)
		case string:
			return uuid.Parse(v)
		}
	case TypeBytes:
		switch v := v.(type) {
		case []byte:
			return v, nil
		case string:
			return []byte(v), nil
		}
	}
	return nil, fmt.Errorf("field: cannot convert %T to %s", v, t)
}

func uintToInt64(t Type, v uint64) (any, error) {
	if v > math.MaxInt64 {
		return nil, fmt.Errorf("field: %d overflows %s", v, t)
	}
	return int64(v), nil
}

func parse[S string | []byte](t Type, v S, f func(string) (any, error)) (any, error) {
	out, err := f(string(v))
	if err != nil {
		return nil, fmt.Errorf("field: cannot convert %q to %s: %w", string(v), t, err)
	}
	return out, nil
}

func parseTime(s string) (any, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Parse(time.RFC3339Nano, s)
}
