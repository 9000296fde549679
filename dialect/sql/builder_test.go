package sql

import (
	"errors"
	"testing"

	"github.com/syssam/velq/dialect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	tests := []struct {
		name      string
		dialect   string
		build     func(b *Builder)
		wantQuery string
		wantArgs  []any
	}{
		{
			name:    "postgres",
			dialect: dialect.Postgres,
			build: func(b *Builder) {
				b.WriteString("SELECT ").Qualified("actor", "first_name").
					WriteString(" FROM ").Ident("actor").
					WriteString(" WHERE ").Qualified("actor", "actor_id").WriteString(" = ").Arg(1).
					WriteString(" AND ").Qualified("actor", "last_name").WriteString(" = ").Arg("GUINESS")
			},
			wantQuery: `SELECT "actor"."first_name" FROM "actor" WHERE "actor"."actor_id" = $1 AND "actor"."last_name" = $2`,
			wantArgs:  []any{1, "GUINESS"},
		},
		{
			name:    "mysql",
			dialect: dialect.MySQL,
			build: func(b *Builder) {
				b.WriteString("SELECT ").Qualified("film", "title").
					WriteString(" FROM ").Ident("film").
					WriteString(" WHERE ").Qualified("film", "film_id").WriteString(" = ").Arg(7)
			},
			wantQuery: "SELECT `film`.`title` FROM `film` WHERE `film`.`film_id` = ?",
			wantArgs:  []any{7},
		},
		{
			name:    "sqlite_args",
			dialect: dialect.SQLite,
			build: func(b *Builder) {
				b.Ident("film_id").WriteString(" IN ").Nested(func(b *Builder) {
					b.Args(1, 2, 3)
				})
			},
			wantQuery: `"film_id" IN (?, ?, ?)`,
			wantArgs:  []any{1, 2, 3},
		},
		{
			name:    "postgres_args",
			dialect: dialect.Postgres,
			build: func(b *Builder) {
				b.Ident("film_id").WriteString(" IN ").Nested(func(b *Builder) {
					b.Args(1, 2, 3)
				})
			},
			wantQuery: `"film_id" IN ($1, $2, $3)`,
			wantArgs:  []any{1, 2, 3},
		},
		{
			name:    "escaped_ident",
			dialect: dialect.Postgres,
			build: func(b *Builder) {
				b.Ident(`we"ird`)
			},
			wantQuery: `"we""ird"`,
		},
		{
			name:    "escaped_ident_mysql",
			dialect: dialect.MySQL,
			build: func(b *Builder) {
				b.Ident("we`ird")
			},
			wantQuery: "`we``ird`",
		},
		{
			name:    "join",
			dialect: dialect.SQLite,
			build: func(b *Builder) {
				cols := []string{"actor_id", "first_name", "last_name"}
				b.Join(len(cols), ", ", func(i int) {
					b.Ident(cols[i])
				})
			},
			wantQuery: `"actor_id", "first_name", "last_name"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Dialect(tt.dialect)
			tt.build(b)
			query, args := b.Query()
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, len(query), b.Len())
			assert.Equal(t, query, b.String())
			assert.Equal(t, tt.dialect, b.Dialect())
		})
	}
}

func TestBuilderErrors(t *testing.T) {
	b := Dialect(dialect.Postgres)
	require.NoError(t, b.Err())

	b.AddError(nil)
	require.NoError(t, b.Err())

	first := errors.New("first")
	second := errors.New("second")
	b.AddError(first).AddError(second)
	err := b.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func BenchmarkBuilder_Select(b *testing.B) {
	for _, d := range []string{dialect.SQLite, dialect.MySQL, dialect.Postgres} {
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			cols := []string{"actor_id", "first_name", "last_name"}
			for i := 0; i < b.N; i++ {
				sb := Dialect(d)
				sb.WriteString("SELECT ")
				sb.Join(len(cols), ", ", func(i int) {
					sb.Qualified("actor", cols[i])
				})
				sb.WriteString(" FROM ").Ident("actor").
					WriteString(" WHERE ").Qualified("actor", "actor_id").WriteString(" = ").Arg(i)
				sb.Query()
			}
		})
	}
}

func BenchmarkBuilder_ManyArgs(b *testing.B) {
	args := make([]any, 100)
	for i := range args {
		args[i] = i
	}
	for _, d := range []string{dialect.SQLite, dialect.MySQL, dialect.Postgres} {
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Dialect(d).Ident("film_id").WriteString(" IN ").Nested(func(sb *Builder) {
					sb.Args(args...)
				}).Query()
			}
		})
	}
}
