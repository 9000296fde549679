package sqlerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, None},
		{"plain", errors.New("connection refused"), None},
		{"pq_unique", &pq.Error{Code: "23505"}, Unique},
		{"pq_fk", &pq.Error{Code: "23503"}, ForeignKey},
		{"pq_check", &pq.Error{Code: "23514"}, Check},
		{"pq_not_null", &pq.Error{Code: "23502"}, NotNull},
		{"pq_other", &pq.Error{Code: "42P01"}, None},
		{"pq_wrapped", fmt.Errorf("dialect/sql: exec: %w", &pq.Error{Code: "23505"}), Unique},
		{"mysql_duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, Unique},
		{"mysql_fk_parent", &mysql.MySQLError{Number: 1451}, ForeignKey},
		{"mysql_fk_child", &mysql.MySQLError{Number: 1452}, ForeignKey},
		{"mysql_check", &mysql.MySQLError{Number: 3819}, Check},
		{"mysql_bad_null", &mysql.MySQLError{Number: 1048}, NotNull},
		{"mysql_other", &mysql.MySQLError{Number: 1146}, None},
		{"sqlite_unique_text", errors.New("constraint failed: UNIQUE constraint failed: actor.actor_id (2067)"), Unique},
		{"sqlite_pk_text", errors.New("PRIMARY KEY constraint failed"), PrimaryKey},
		{"sqlite_fk_text", errors.New("FOREIGN KEY constraint failed (787)"), ForeignKey},
		{"sqlite_check_text", errors.New("CHECK constraint failed: rating"), Check},
		{"sqlite_not_null_text", errors.New("NOT NULL constraint failed: actor.first_name"), NotNull},
		{"postgres_text", errors.New(`pq: duplicate key value violates unique constraint "actor_pkey"`), Unique},
		{"mysql_text", errors.New("Error 1452: Cannot add or update a child row"), ForeignKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
			assert.Equal(t, tt.want != None, IsConstraintError(tt.err))
		})
	}
}

func TestIsHelpers(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	fk := &mysql.MySQLError{Number: 1452}
	check := errors.New("CHECK constraint failed: rating")
	notNull := errors.New("NOT NULL constraint failed: film.title")
	pk := errors.New("PRIMARY KEY constraint failed")

	assert.True(t, IsUniqueConstraintError(unique))
	assert.True(t, IsUniqueConstraintError(pk))
	assert.False(t, IsUniqueConstraintError(fk))

	assert.True(t, IsForeignKeyConstraintError(fk))
	assert.False(t, IsForeignKeyConstraintError(unique))

	assert.True(t, IsCheckConstraintError(check))
	assert.False(t, IsCheckConstraintError(notNull))

	assert.True(t, IsNotNullConstraintError(notNull))
	assert.False(t, IsNotNullConstraintError(nil))
}
