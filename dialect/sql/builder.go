package sql

import (
	"errors"
	"strconv"
	"strings"

	"github.com/syssam/velq/dialect"
)

// Builder is the low-level SQL text builder. It quotes identifiers and
// binds arguments according to its dialect, and never interpolates values
// into the query text.
type Builder struct {
	sb      strings.Builder
	args    []any
	dialect string
	errs    []error
}

// Dialect creates a new Builder for the given dialect.
func Dialect(name string) *Builder {
	return &Builder{dialect: name}
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string {
	return b.dialect
}

// WriteString appends s to the query text as is.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte appends c to the query text.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Pad appends a single space.
func (b *Builder) Pad() *Builder {
	return b.WriteByte(' ')
}

// Ident appends a quoted identifier.
func (b *Builder) Ident(s string) *Builder {
	q := b.quote()
	b.sb.WriteByte(q)
	for i := 0; i < len(s); i++ {
		if s[i] == q {
			b.sb.WriteByte(q)
		}
		b.sb.WriteByte(s[i])
	}
	b.sb.WriteByte(q)
	return b
}

// Qualified appends a quoted "qualifier"."name" pair.
func (b *Builder) Qualified(qualifier, name string) *Builder {
	return b.Ident(qualifier).WriteByte('.').Ident(name)
}

// Arg appends a bind parameter placeholder and records its value.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.postgres() {
		b.sb.WriteByte('$')
		b.sb.WriteString(strconv.Itoa(len(b.args)))
		return b
	}
	b.sb.WriteByte('?')
	return b
}

// Args appends a comma separated list of placeholders.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Arg(v)
	}
	return b
}

// Nested wraps the text written by f in parentheses.
func (b *Builder) Nested(f func(*Builder)) *Builder {
	b.WriteByte('(')
	f(b)
	return b.WriteByte(')')
}

// Join calls f for each of the n items, writing sep between them.
func (b *Builder) Join(n int, sep string, f func(i int)) *Builder {
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(sep)
		}
		f(i)
	}
	return b
}

// AddError records an error to be reported by Query.
func (b *Builder) AddError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Err returns the recorded errors, if any.
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// Query returns the query text and its arguments.
func (b *Builder) Query() (string, []any) {
	return b.sb.String(), b.args
}

// String returns the query text.
func (b *Builder) String() string {
	return b.sb.String()
}

// Len returns the length of the query text written so far.
func (b *Builder) Len() int {
	return b.sb.Len()
}

func (b *Builder) postgres() bool {
	return b.dialect == dialect.Postgres
}

func (b *Builder) quote() byte {
	if b.dialect == dialect.MySQL {
		return '`'
	}
	return '"'
}
