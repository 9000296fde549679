package field

// Descriptor for column configuration.
type Descriptor struct {
	Name     string // column name.
	Type     Type   // column type.
	Nullable bool   // column accepts NULL.
	Default  bool   // database supplies a value when omitted on insert.
	Primary  bool   // column is the primary key.
}

// Required reports whether an insert must supply a value for the column.
func (d *Descriptor) Required() bool {
	return !d.Nullable && !d.Default
}

// Field is the interface implemented by column builders.
type Field interface {
	Descriptor() *Descriptor
}

// String returns a new Field with type string.
func String(name string) *Builder { return newBuilder(name, TypeString) }

// Int returns a new Field with type int.
func Int(name string) *Builder { return newBuilder(name, TypeInt) }

// Int64 returns a new Field with type int64.
func Int64(name string) *Builder { return newBuilder(name, TypeInt64) }

// Float64 returns a new Field with type float64.
func Float64(name string) *Builder { return newBuilder(name, TypeFloat64) }

// Bool returns a new Field with type bool.
func Bool(name string) *Builder { return newBuilder(name, TypeBool) }

// Time returns a new Field with type time.Time.
func Time(name string) *Builder { return newBuilder(name, TypeTime) }

// UUID returns a new Field with type uuid.UUID.
func UUID(name string) *Builder { return newBuilder(name, TypeUUID) }

// Bytes returns a new Field with type []byte.
func Bytes(name string) *Builder { return newBuilder(name, TypeBytes) }

// New returns a new Field of the given type. It is used by schema loaders
// that resolve the type at runtime.
func New(name string, t Type) *Builder { return newBuilder(name, t) }

// Builder is the builder for columns.
type Builder struct {
	desc *Descriptor
}

func newBuilder(name string, t Type) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: t}}
}

// Nullable indicates that the column may hold NULL.
func (b *Builder) Nullable() *Builder {
	b.desc.Nullable = true
	return b
}

// Default indicates that the database supplies a value when the column is
// omitted from an insert (auto-increment keys, DEFAULT clauses).
func (b *Builder) Default() *Builder {
	b.desc.Default = true
	return b
}

// Primary marks the column as the primary key of its table.
func (b *Builder) Primary() *Builder {
	b.desc.Primary = true
	return b
}

// Descriptor implements the Field interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

// ParseType returns the Type for its name as used in schema files.
// Both the Go spelling ("int64", "time.Time") and short aliases
// ("integer", "text", "timestamp") are accepted.
func ParseType(s string) (Type, bool) {
	switch s {
	case "bool", "boolean":
		return TypeBool, true
	case "time", "time.Time", "timestamp", "date":
		return TypeTime, true
	case "uuid", "uuid.UUID":
		return TypeUUID, true
	case "bytes", "[]byte", "blob":
		return TypeBytes, true
	case "string", "text", "varchar":
		return TypeString, true
	case "int", "integer", "smallint":
		return TypeInt, true
	case "int64", "bigint":
		return TypeInt64, true
	case "float64", "float", "double", "numeric", "decimal":
		return TypeFloat64, true
	}
	return TypeInvalid, false
}
