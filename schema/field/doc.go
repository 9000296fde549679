// Package field provides fluent builders for declaring table columns.
//
//	field.Int("actor_id").Primary().Default() // database generated key
//	field.String("first_name")                // NOT NULL, must be inserted
//	field.Time("last_update").Default()       // DEFAULT CURRENT_TIMESTAMP
//	field.Int("original_language_id").Nullable()
//
// # Types
//
// Every column has a semantic Type. Type.Accepts reports whether a Go value
// may be bound to the column, and Type.Normalize converts the values handed
// out by database drivers into the column's canonical Go type:
//
//	TypeString  string
//	TypeInt     int64
//	TypeInt64   int64
//	TypeFloat64 float64
//	TypeBool    bool
//	TypeTime    time.Time
//	TypeUUID    uuid.UUID
//	TypeBytes   []byte
//
// Normalization smooths over driver differences: MySQL returns numbers and
// dates as []byte, SQLite stores timestamps as text and booleans as
// integers.
package field
