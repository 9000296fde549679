package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/syssam/velq"
	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/dialect/sql"
	"github.com/syssam/velq/query"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockDriver(t *testing.T, name string) (*sql.Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sql.OpenDB(name, db), mock
}

func TestFetch(t *testing.T) {
	f := sakila(t)
	drv, mock := mockDriver(t, dialect.SQLite)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT "actor"."actor_id", "actor"."first_name", "actor"."last_name", "actor"."last_update" FROM "actor" WHERE "actor"."last_name" = ?`).
		WithArgs("GUINESS").
		WillReturnRows(sqlmock.NewRows([]string{"actor_id", "first_name", "last_name", "last_update"}).
			AddRow(int64(1), "PENELOPE", "GUINESS", "2006-02-15 04:34:33").
			AddRow(int64(90), "SEAN", "GUINESS", "2006-02-15 04:34:33"))

	rows, err := query.SelectFrom(f.actor).Where(f.actor.C("last_name").EQ("GUINESS")).Attach(drv).Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"actor_id", "first_name", "last_name", "last_update"}, rows[0].Fields)
	assert.Equal(t, int64(1), rows[0].Value(0))
	assert.Equal(t, "SEAN", rows[1].Value(1))
	updated, ok := rows[0].Get("last_update")
	require.True(t, ok)
	assert.Equal(t, time.Date(2006, 2, 15, 4, 34, 33, 0, time.UTC), updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetch_NotAttached(t *testing.T) {
	f := sakila(t)
	_, err := query.SelectFrom(f.actor).Fetch(context.Background())
	assert.ErrorIs(t, err, query.ErrNotAttached)
	_, err = query.DeleteFrom(f.actor).Execute(context.Background())
	assert.ErrorIs(t, err, query.ErrNotAttached)
}

func TestFetchOne(t *testing.T) {
	f := sakila(t)
	ctx := context.Background()
	const q = `SELECT "actor"."first_name" FROM "actor" WHERE "actor"."actor_id" = $1`
	newQuery := func(drv *sql.Driver) *query.SelectBuilder {
		return query.Select(f.actor.C("first_name")).From(f.actor).Where(f.actor.C("actor_id").EQ(1)).Attach(drv)
	}

	t.Run("one", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		mock.ExpectQuery(q).WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"first_name"}).AddRow("PENELOPE"))
		row, err := newQuery(drv).FetchOne(ctx)
		require.NoError(t, err)
		assert.Equal(t, "PENELOPE", row.Value(0))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("none", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		mock.ExpectQuery(q).WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"first_name"}))
		_, err := newQuery(drv).FetchOne(ctx)
		require.Error(t, err)
		assert.True(t, velq.IsNoResult(err))
		assert.ErrorIs(t, err, velq.ErrNoResult)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("too_many", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		mock.ExpectQuery(q).WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"first_name"}).
			AddRow("PENELOPE").AddRow("NICK").AddRow("ED"))
		_, err := newQuery(drv).FetchOne(ctx)
		require.Error(t, err)
		var tm *velq.TooManyResultsError
		require.ErrorAs(t, err, &tm)
		assert.Equal(t, -1, tm.Count())
		assert.Equal(t, "actor", tm.Label())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("optional", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		mock.ExpectQuery(q).WithArgs(1).WillReturnRows(sqlmock.NewRows([]string{"first_name"}))
		_, ok, err := newQuery(drv).FetchOptional(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

type FilmName struct {
	Title string
}

type ActorWithFilms struct {
	FirstName string
	LastName  string
	Films     []FilmName
}

func TestFetch_Multiset(t *testing.T) {
	f := sakila(t)
	a, fa := f.actor, f.filmActor
	drv, mock := mockDriver(t, dialect.SQLite)

	mock.ExpectQuery(`SELECT "actor"."first_name", "actor"."last_name", "actor"."actor_id" FROM "actor" ORDER BY "actor"."actor_id"`).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "last_name", "actor_id"}).
			AddRow("PENELOPE", "GUINESS", int64(1)).
			AddRow("NICK", "WAHLBERG", int64(2)))
	const inner = `SELECT "film_actor_film"."title" FROM "film_actor" ` +
		`JOIN "film" AS "film_actor_film" ON "film_actor"."film_id" = "film_actor_film"."film_id" ` +
		`WHERE "film_actor"."actor_id" = ? ORDER BY "film_actor_film"."title"`
	mock.ExpectQuery(inner).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("ACADEMY DINOSAUR").AddRow("ANACONDA CONFESSIONS"))
	mock.ExpectQuery(inner).WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"title"}))

	films := query.Select(fa.Nav("film").C("title")).
		From(fa).
		Where(fa.C("actor_id").EQ(a.C("actor_id"))).
		OrderBy(fa.Nav("film").C("title"))
	q := query.Select(a.C("first_name"), a.C("last_name"), query.Multiset(films).As("films")).
		From(a).
		OrderBy(a.C("actor_id")).
		Attach(drv)

	actors, err := query.FetchPositional[ActorWithFilms](context.Background(), q)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, []ActorWithFilms{
		{FirstName: "PENELOPE", LastName: "GUINESS", Films: []FilmName{{"ACADEMY DINOSAUR"}, {"ANACONDA CONFESSIONS"}}},
		{FirstName: "NICK", LastName: "WAHLBERG", Films: []FilmName{}},
	}, actors)
}

func TestFetch_MultisetRows(t *testing.T) {
	f := sakila(t)
	a, fa := f.actor, f.filmActor
	drv, mock := mockDriver(t, dialect.Postgres)

	mock.ExpectQuery(`SELECT "actor"."first_name", "actor"."actor_id" FROM "actor"`).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "actor_id"}).AddRow("NICK", int64(2)))
	mock.ExpectQuery(`SELECT "film_actor"."film_id" FROM "film_actor" WHERE "film_actor"."actor_id" = $1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"film_id"}))

	rows, err := query.Select(a.C("first_name"), query.Multiset(
		query.Select(fa.C("film_id")).From(fa).Where(fa.C("actor_id").EQ(a.C("actor_id"))),
	)).From(a).Attach(drv).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"first_name", "multiset"}, rows[0].Fields)
	nested := rows[0].Nested("multiset")
	assert.NotNil(t, nested)
	assert.Empty(t, nested)
	require.NoError(t, mock.ExpectationsWereMet())
}

type ActorName struct {
	ID        int64 `velq:"actor_id"`
	FirstName string
	LastName  string
}

func TestFetchInto(t *testing.T) {
	f := sakila(t)
	drv, mock := mockDriver(t, dialect.Postgres)
	mock.ExpectQuery(`SELECT "actor"."actor_id", "actor"."first_name", "actor"."last_name" FROM "actor" ORDER BY "actor"."last_name" DESC LIMIT $1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"actor_id", "first_name", "last_name"}).
			AddRow(int64(2), "NICK", "WAHLBERG").
			AddRow(int64(1), "PENELOPE", "GUINESS"))

	actors, err := query.FetchInto[ActorName](context.Background(),
		query.Select(f.actor.C("actor_id"), f.actor.C("first_name"), f.actor.C("last_name")).
			From(f.actor).
			OrderBy(f.actor.C("last_name").Desc()).
			Limit(2).
			Attach(drv))
	require.NoError(t, err)
	assert.Equal(t, []ActorName{{2, "NICK", "WAHLBERG"}, {1, "PENELOPE", "GUINESS"}}, actors)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetch_DatabaseError(t *testing.T) {
	f := sakila(t)
	ctx := context.Background()

	t.Run("query", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		boom := errors.New("connection reset")
		mock.ExpectQuery(`SELECT "film"."title" FROM "film"`).WillReturnError(boom)
		_, err := query.Select(f.film.C("title")).From(f.film).Attach(drv).Fetch(ctx)
		require.Error(t, err)
		var de *velq.DatabaseError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "query", de.Op)
		assert.Equal(t, `SELECT "film"."title" FROM "film"`, de.Query)
		assert.Empty(t, de.Constraint)
		assert.ErrorIs(t, err, boom)
		assert.False(t, velq.IsConstraintError(err))
	})

	t.Run("constraint", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		mock.ExpectExec(`DELETE FROM "language" WHERE "language"."language_id" = $1`).
			WithArgs(1).
			WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})
		_, err := query.DeleteFrom(f.language).Where(f.language.C("language_id").EQ(1)).Attach(drv).Execute(ctx)
		require.Error(t, err)
		assert.True(t, velq.IsConstraintError(err))
		var de *velq.DatabaseError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "exec", de.Op)
		assert.Equal(t, "foreign key", de.Constraint)
	})

	t.Run("canceled", func(t *testing.T) {
		drv, mock := mockDriver(t, dialect.Postgres)
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		mock.ExpectQuery(`SELECT "film"."title" FROM "film"`).WillReturnError(context.Canceled)
		_, err := query.Select(f.film.C("title")).From(f.film).Attach(drv).Fetch(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFetch_MappingError(t *testing.T) {
	f := sakila(t)
	drv, mock := mockDriver(t, dialect.SQLite)
	mock.ExpectQuery(`SELECT "actor"."last_update" FROM "actor"`).
		WillReturnRows(sqlmock.NewRows([]string{"last_update"}).AddRow("yesterday"))
	_, err := query.Select(f.actor.C("last_update")).From(f.actor).Attach(drv).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, velq.IsMappingError(err))
}

func TestFetchOneInto(t *testing.T) {
	f := sakila(t)
	drv, mock := mockDriver(t, dialect.SQLite)
	mock.ExpectQuery(`SELECT "actor"."actor_id", "actor"."first_name", "actor"."last_name" FROM "actor" WHERE "actor"."actor_id" = ?`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"actor_id", "first_name", "last_name"}).AddRow(int64(1), "PENELOPE", "GUINESS"))
	actor, err := query.FetchOneInto[ActorName](context.Background(),
		query.Select(f.actor.C("actor_id"), f.actor.C("first_name"), f.actor.C("last_name")).
			From(f.actor).
			Where(f.actor.C("actor_id").EQ(1)).
			Attach(drv))
	require.NoError(t, err)
	assert.Equal(t, ActorName{1, "PENELOPE", "GUINESS"}, actor)
	require.NoError(t, mock.ExpectationsWereMet())
}

