package record

// Row is a result row: values aligned with the projection of a statement.
// Nested multiset values are []Row, empty but never nil when no rows
// correlate.
type Row struct {
	Fields []string
	Values []any
}

// NewRow returns a row with the given field names and values.
func NewRow(fields []string, values []any) Row {
	return Row{Fields: fields, Values: values}
}

// Len returns the number of values in the row.
func (r Row) Len() int { return len(r.Values) }

// Index returns the position of the named field, or -1.
func (r Row) Index(name string) int {
	for i, f := range r.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// Get returns the value of the named field.
func (r Row) Get(name string) (any, bool) {
	i := r.Index(name)
	if i < 0 {
		return nil, false
	}
	return r.Values[i], true
}

// Value returns the value at position i.
func (r Row) Value(i int) any { return r.Values[i] }

// Nested returns the nested rows of the named multiset field.
func (r Row) Nested(name string) []Row {
	v, _ := r.Get(name)
	rows, _ := v.([]Row)
	return rows
}
