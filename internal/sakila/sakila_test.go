package sakila

import (
	"context"
	"errors"
	"testing"

	"github.com/syssam/velq"
	"github.com/syssam/velq/client"
	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/dialect/sql"
	"github.com/syssam/velq/schema/edge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// open returns queries on a seeded in-memory database. A single
// connection keeps every statement on the same database.
func open(t *testing.T) *Queries {
	t.Helper()
	drv, err := sql.Open(dialect.SQLite, ":memory:")
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	c := client.NewClient(client.Driver(drv))
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()
	require.NoError(t, CreateSchema(ctx, c))
	require.NoError(t, Seed(ctx, c))
	return NewQueries(c)
}

func TestRegistry(t *testing.T) {
	r, err := Registry()
	require.NoError(t, err)
	assert.Len(t, r.Tables(), 6)

	rel, err := r.Resolve("film_actor", "actor")
	require.NoError(t, err)
	assert.Equal(t, "actor", rel.Target.Name)
	assert.Equal(t, "actor_id", rel.SourceColumn.Name)

	rel, err = r.Resolve("actor", "film_actors")
	require.NoError(t, err)
	assert.Equal(t, edge.Many, rel.Cardinality)

	rel, err = r.Resolve("film", "original_language")
	require.NoError(t, err)
	assert.True(t, rel.Optional())

	film := r.MustTable("film")
	col, ok := film.Column("last_update")
	require.True(t, ok)
	assert.True(t, col.Default)
}

func TestStatements(t *testing.T) {
	stmts := statements("PRAGMA foreign_keys = ON;\n\nCREATE TABLE a (\n  id INTEGER\n);\nINSERT INTO a VALUES (1);\n")
	assert.Equal(t, []string{
		"PRAGMA foreign_keys = ON",
		"CREATE TABLE a (\n  id INTEGER\n)",
		"INSERT INTO a VALUES (1)",
	}, stmts)
}

func TestFindAllFilms(t *testing.T) {
	q := open(t)
	films, err := q.FindAllFilms(context.Background())
	require.NoError(t, err)
	require.Len(t, films, 10)

	first := films[0]
	assert.EqualValues(t, 1, first.FilmID)
	assert.Equal(t, "ACADEMY DINOSAUR", first.Title)
	require.NotNil(t, first.Description)
	assert.Contains(t, *first.Description, "Canadian Rockies")
	assert.Nil(t, first.OriginalLanguageID)
	assert.InDelta(t, 0.99, first.RentalRate, 1e-9)
	assert.Equal(t, 2006, first.LastUpdate.Year())

	require.NotNil(t, films[5].OriginalLanguageID)
	assert.EqualValues(t, 3, *films[5].OriginalLanguageID)
}

func TestFindFilm(t *testing.T) {
	q := open(t)
	ctx := context.Background()

	f, err := q.FindFilm(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "ACADEMY DINOSAUR", f.Title)

	f, err = q.FindFilm(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestActorsOfCategory(t *testing.T) {
	q := open(t)
	ctx := context.Background()
	want := []ActorName{
		{FirstName: "BETTE", LastName: "NICHOLSON"},
		{FirstName: "CHRISTIAN", LastName: "GABLE"},
		{FirstName: "JENNIFER", LastName: "DAVIS"},
		{FirstName: "JOHNNY", LastName: "LOLLOBRIGIDA"},
	}

	explicit, err := q.ActorsOfCategory(ctx, "Horror")
	require.NoError(t, err)
	assert.Equal(t, want, explicit)

	implicit, err := q.ActorsOfCategoryImplicit(ctx, "Horror")
	require.NoError(t, err)
	assert.Equal(t, want, implicit)

	horror, err := q.HorrorActors(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, horror)

	none, err := q.ActorsOfCategory(ctx, "Travel")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestActorsWithFilms(t *testing.T) {
	q := open(t)
	actors, err := q.ActorsWithFilms(context.Background())
	require.NoError(t, err)
	require.Len(t, actors, 10)

	assert.Equal(t, ActorWithFilms{
		FirstName: "PENELOPE",
		LastName:  "GUINESS",
		Films:     []FilmName{{Name: "ACADEMY DINOSAUR"}},
	}, actors[0])

	ed := actors[2]
	assert.Equal(t, "ED", ed.FirstName)
	assert.NotNil(t, ed.Films)
	assert.Empty(t, ed.Films)

	assert.Equal(t, []FilmName{
		{Name: "ACADEMY DINOSAUR"},
		{Name: "AFFAIR PREJUDICE"},
		{Name: "ALABAMA DEVIL"},
	}, actors[9].Films)
}

func TestInsertFilm(t *testing.T) {
	q := open(t)
	ctx := context.Background()

	n, err := q.InsertFilm(ctx, "Test", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = q.InsertFilmWithSet(ctx, "Test set", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rec, err := q.InsertFilmRecord(ctx, "Test record", 1)
	require.NoError(t, err)
	assert.True(t, rec.Stored())
	id, ok := rec.Key()
	require.True(t, ok)
	assert.EqualValues(t, 13, id)
	rate, _ := rec.Get("rental_rate")
	assert.InDelta(t, 4.99, rate, 1e-9)

	films, err := q.FindAllFilms(ctx)
	require.NoError(t, err)
	assert.Len(t, films, 13)
	assert.Equal(t, "Test record", films[12].Title)
}

func TestInsertFilm_ForeignKey(t *testing.T) {
	q := open(t)
	_, err := q.InsertFilm(context.Background(), "Orphan", 99)
	require.Error(t, err)
	assert.True(t, velq.IsConstraintError(err))
	var de *velq.DatabaseError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "foreign key", de.Constraint)
}

func TestAddActor(t *testing.T) {
	q := open(t)
	ctx := context.Background()

	a, err := q.AddActor(ctx, "HAADI", "BOLOTBEKOV")
	require.NoError(t, err)
	assert.EqualValues(t, 11, a.ActorID)
	assert.Equal(t, "HAADI", a.FirstName)
	assert.Equal(t, "BOLOTBEKOV", a.LastName)
	assert.False(t, a.LastUpdate.IsZero())

	renamed, err := q.RenameActor(ctx, a.ActorID, "KHAADI")
	require.NoError(t, err)
	assert.True(t, renamed)

	deleted, err := q.DeleteActor(ctx, a.ActorID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = q.DeleteActor(ctx, a.ActorID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestAddActorInTransaction(t *testing.T) {
	q := open(t)
	ctx := context.Background()

	require.NoError(t, q.AddActorInTransaction(ctx, "HAADI", "BOLOTBEKOV", nil))
	n, err := q.CountActors(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)

	boom := errors.New("just testing rollback")
	err = q.AddActorInTransaction(ctx, "HAADI", "BOLOTBEKOV", func(ctx context.Context) error {
		n, err := q.CountActors(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 12, n)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err = q.CountActors(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)
}
