package record

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/syssam/velq"

	"github.com/go-openapi/inflect"
)

// Mode selects how row values are matched to struct fields.
type Mode uint8

// Mapping modes.
const (
	// ByName matches values by field name: the `velq:"name"` tag, or the
	// snake_case form of the Go field name. Extra row fields are ignored.
	ByName Mode = iota
	// ByPosition matches values by position, in field declaration order.
	// The row must have exactly one value per field.
	ByPosition
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ByPosition {
		return "by position"
	}
	return "by name"
}

// Descriptor is the resolved mapping of a struct type: an ordered list of
// (row name or position, struct field) pairs.
type Descriptor struct {
	Type   reflect.Type
	Mode   Mode
	Fields []FieldMapping
}

// FieldMapping maps one row value to one struct field.
type FieldMapping struct {
	Name     string // row field name, for ByName.
	Position int    // row position, for ByPosition.
	Field    string // Go field name.
	Index    []int  // reflect field index.
	Type     reflect.Type
}

type cacheKey struct {
	t reflect.Type
	m Mode
}

var descriptors sync.Map // cacheKey -> *Descriptor

// Describe returns the descriptor of T for the given mode. Descriptors are
// resolved once per type and mode and cached.
func Describe[T any](mode Mode) (*Descriptor, error) {
	return DescribeType(reflect.TypeFor[T](), mode)
}

// DescribeType is like Describe for a reflect.Type.
func DescribeType(t reflect.Type, mode Mode) (*Descriptor, error) {
	key := cacheKey{t: t, m: mode}
	if d, ok := descriptors.Load(key); ok {
		return d.(*Descriptor), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, &velq.MappingError{Type: t.String(), Err: errors.New("target is not a struct")}
	}
	d := &Descriptor{Type: t, Mode: mode}
	seen := make(map[string]string)
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous && f.Type.Kind() == reflect.Struct {
			continue
		}
		name, ok := f.Tag.Lookup("velq")
		switch {
		case name == "-":
			continue
		case !ok || name == "":
			name = inflect.Underscore(f.Name)
		}
		if prev, ok := seen[name]; ok && mode == ByName {
			return nil, &velq.MappingError{Type: t.String(), Field: f.Name, Err: fmt.Errorf("name %q already mapped to %s", name, prev)}
		}
		seen[name] = f.Name
		d.Fields = append(d.Fields, FieldMapping{
			Name:     name,
			Position: len(d.Fields),
			Field:    f.Name,
			Index:    f.Index,
			Type:     f.Type,
		})
	}
	actual, _ := descriptors.LoadOrStore(key, d)
	return actual.(*Descriptor), nil
}

// Map maps row into a new T.
func Map[T any](row Row, mode Mode) (T, error) {
	var v T
	d, err := Describe[T](mode)
	if err != nil {
		return v, err
	}
	err = d.Map(row, reflect.ValueOf(&v).Elem())
	return v, err
}

// MapAll maps every row into a T. The result is empty but not nil for no
// rows.
func MapAll[T any](rows []Row, mode Mode) ([]T, error) {
	d, err := Describe[T](mode)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(rows))
	for i, row := range rows {
		if err := d.Map(row, reflect.ValueOf(&out[i]).Elem()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Into maps row into a new T by name.
func Into[T any](row Row) (T, error) { return Map[T](row, ByName) }

// Positional maps row into a new T by position.
func Positional[T any](row Row) (T, error) { return Map[T](row, ByPosition) }

// Map assigns the values of row to the fields of dst, which must be a
// settable struct value of the descriptor type.
func (d *Descriptor) Map(row Row, dst reflect.Value) error {
	if dst.Type() != d.Type {
		return d.errorf("", "cannot map into %s", dst.Type())
	}
	if d.Mode == ByPosition && row.Len() != len(d.Fields) {
		return d.errorf("", "row has %d values, struct has %d fields", row.Len(), len(d.Fields))
	}
	for _, fm := range d.Fields {
		i := fm.Position
		if d.Mode == ByName {
			if i = row.Index(fm.Name); i < 0 {
				return d.errorf(fm.Field, "no %q in row", fm.Name)
			}
		}
		if err := d.assign(dst.FieldByIndex(fm.Index), row.Values[i]); err != nil {
			return &velq.MappingError{Type: d.Type.String(), Field: fm.Field, Err: err}
		}
	}
	return nil
}

var scannerType = reflect.TypeFor[sql.Scanner]()

func (d *Descriptor) assign(dst reflect.Value, v any) error {
	if dst.CanAddr() && dst.Addr().Type().Implements(scannerType) {
		return dst.Addr().Interface().(sql.Scanner).Scan(v)
	}
	if dst.Kind() == reflect.Pointer {
		if v == nil {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		elem := reflect.New(dst.Type().Elem())
		if err := d.assign(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	if v == nil {
		return fmt.Errorf("NULL cannot be assigned to non-pointer %s", dst.Type())
	}
	if rows, ok := v.([]Row); ok {
		return d.assignRows(dst, rows)
	}
	return assignValue(dst, v)
}

// assignRows maps nested rows into a slice of structs, or into a slice of
// scalars when the nested rows have a single value.
func (d *Descriptor) assignRows(dst reflect.Value, rows []Row) error {
	if dst.Kind() != reflect.Slice {
		return fmt.Errorf("nested rows cannot be assigned to %s", dst.Type())
	}
	out := reflect.MakeSlice(dst.Type(), len(rows), len(rows))
	elem := dst.Type().Elem()
	if elem.Kind() == reflect.Struct && elem != timeType {
		nd, err := DescribeType(elem, d.Mode)
		if err != nil {
			return err
		}
		for i, row := range rows {
			if err := nd.Map(row, out.Index(i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	}
	for i, row := range rows {
		if row.Len() != 1 {
			return fmt.Errorf("nested row has %d values, %s needs 1", row.Len(), elem)
		}
		if err := d.assign(out.Index(i), row.Values[0]); err != nil {
			return err
		}
	}
	dst.Set(out)
	return nil
}

var timeType = reflect.TypeFor[time.Time]()

func assignValue(dst reflect.Value, v any) error {
	rv := reflect.ValueOf(v)
	st, dt := rv.Type(), dst.Type()
	if st.AssignableTo(dt) {
		dst.Set(rv)
		return nil
	}
	sk, dk := st.Kind(), dt.Kind()
	switch {
	case isInt(sk) && isInt(dk):
		n := toInt64(rv)
		if isUint(dk) {
			if n < 0 || dst.OverflowUint(uint64(n)) {
				return fmt.Errorf("value %v overflows %s", v, dt)
			}
			dst.SetUint(uint64(n))
			return nil
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("value %v overflows %s", v, dt)
		}
		dst.SetInt(n)
		return nil
	case isFloat(sk) && isFloat(dk), isInt(sk) && isFloat(dk):
		dst.Set(rv.Convert(dt))
		return nil
	case isFloat(sk) && isInt(dk):
		f := rv.Float()
		if f != float64(int64(f)) {
			return fmt.Errorf("value %v is not an integer", v)
		}
		return assignValue(dst, int64(f))
	case sk == reflect.String && dk == reflect.String,
		sk == reflect.Bool && dk == reflect.Bool,
		sk == reflect.Struct && dk == reflect.Struct && st.ConvertibleTo(dt),
		sk == reflect.Array && dk == reflect.Array && st.ConvertibleTo(dt):
		dst.Set(rv.Convert(dt))
		return nil
	case sk == reflect.Slice && st.Elem().Kind() == reflect.Uint8 && dk == reflect.String:
		dst.SetString(string(rv.Bytes()))
		return nil
	case sk == reflect.String && dk == reflect.Slice && dt.Elem().Kind() == reflect.Uint8:
		dst.SetBytes([]byte(rv.String()))
		return nil
	}
	return fmt.Errorf("%s cannot be assigned to %s", st, dt)
}

func isInt(k reflect.Kind) bool   { return k >= reflect.Int && k <= reflect.Uint64 }
func isUint(k reflect.Kind) bool  { return k >= reflect.Uint && k <= reflect.Uint64 }
func isFloat(k reflect.Kind) bool { return k == reflect.Float32 || k == reflect.Float64 }

func toInt64(rv reflect.Value) int64 {
	if isUint(rv.Kind()) {
		return int64(rv.Uint())
	}
	return rv.Int()
}

func (d *Descriptor) errorf(field, format string, args ...any) error {
	return &velq.MappingError{Type: d.Type.String(), Field: field, Err: fmt.Errorf(format, args...)}
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
