package sakila

import (
	"context"
	"time"

	"github.com/syssam/velq/client"
	"github.com/syssam/velq/expr"
	"github.com/syssam/velq/query"
	"github.com/syssam/velq/record"
)

// Film is a row of the film table.
type Film struct {
	FilmID             int64 `velq:"film_id"`
	Title              string
	Description        *string
	ReleaseYear        *int64
	LanguageID         int64  `velq:"language_id"`
	OriginalLanguageID *int64 `velq:"original_language_id"`
	RentalRate         float64
	Length             *int64
	LastUpdate         time.Time
}

// Actor is a row of the actor table.
type Actor struct {
	ActorID    int64 `velq:"actor_id"`
	FirstName  string
	LastName   string
	LastUpdate time.Time
}

// ActorName holds the name of an actor.
type ActorName struct {
	FirstName string
	LastName  string
}

// ActorWithFilms is an actor with the titles of the films they play in.
// It is mapped by position.
type ActorWithFilms struct {
	FirstName string
	LastName  string
	Films     []FilmName
}

// FilmName holds the title of a film.
type FilmName struct {
	Name string
}

// Queries runs the quickstart queries on a client.
type Queries struct {
	c *client.Client
}

// NewQueries returns the queries bound to c.
func NewQueries(c *client.Client) *Queries {
	return &Queries{c: c}
}

// Client returns the client the queries run on.
func (q *Queries) Client() *client.Client { return q.c }

// FindAllFilms returns all films.
func (q *Queries) FindAllFilms(ctx context.Context) ([]Film, error) {
	f := Films()
	return query.FetchInto[Film](ctx, q.c.SelectFrom(f.Source).OrderBy(f.FilmID))
}

// FindFilm returns the film with the given id, if any.
func (q *Queries) FindFilm(ctx context.Context, id int64) (*Film, error) {
	f := Films()
	row, ok, err := q.c.SelectFrom(f.Source).Where(f.FilmID.EQ(id)).FetchOptional(ctx)
	if err != nil || !ok {
		return nil, err
	}
	v, err := record.Into[Film](row)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ActorsOfCategory returns the distinct actors of the films of a
// category, joining the tables explicitly.
func (q *Queries) ActorsOfCategory(ctx context.Context, name string) ([]ActorName, error) {
	a, fa, f, fc, cat := Actors(), FilmActors(), Films(), FilmCategories(), Categories()
	return query.FetchInto[ActorName](ctx, q.c.
		Select(a.FirstName, a.LastName).
		From(a.Source).
		Join(fa.Source).On(fa.ActorID.EqualTo(a.ActorID)).
		Join(f.Source).On(fa.FilmID.EqualTo(f.FilmID)).
		Join(fc.Source).On(fc.FilmID.EqualTo(f.FilmID)).
		Join(cat.Source).On(fc.CategoryID.EqualTo(cat.CategoryID)).
		Where(cat.Name.EQ(name)).
		GroupBy(a.FirstName, a.LastName).
		OrderBy(a.FirstName, a.LastName))
}

// ActorsOfCategoryImplicit is like ActorsOfCategory, reaching the actor
// and the category through relationships.
func (q *Queries) ActorsOfCategoryImplicit(ctx context.Context, name string) ([]ActorName, error) {
	fa, fc := FilmActors(), FilmCategories()
	a := fa.Actor()
	return query.FetchInto[ActorName](ctx, q.c.
		Select(a.FirstName, a.LastName).
		From(fa.Source).
		Join(fc.Source).On(fa.FilmID.EqualTo(fc.FilmID)).
		Where(fc.Category().Name.EQ(name)).
		GroupBy(a.FirstName, a.LastName).
		OrderBy(a.FirstName, a.LastName))
}

// HorrorActors returns the actors of horror films.
func (q *Queries) HorrorActors(ctx context.Context) ([]ActorName, error) {
	return q.ActorsOfCategoryImplicit(ctx, "Horror")
}

// ActorsWithFilms returns every actor with the titles of their films,
// ordered by actor id and title.
func (q *Queries) ActorsWithFilms(ctx context.Context) ([]ActorWithFilms, error) {
	a, fa := Actors(), FilmActors()
	films := query.
		Select(fa.Film().Title).
		From(fa.Source).
		Where(fa.ActorID.EqualTo(a.ActorID)).
		OrderBy(fa.Film().Title)
	return query.FetchPositional[ActorWithFilms](ctx, q.c.
		Select(a.FirstName, a.LastName, query.Multiset(films).As("films")).
		From(a.Source).
		OrderBy(a.ActorID))
}

// InsertFilm inserts a film listing the columns and their values.
func (q *Queries) InsertFilm(ctx context.Context, title string, languageID int64) (int64, error) {
	f := Films()
	return q.c.InsertInto(f.Source, f.Title, f.LanguageID).Values(title, languageID).Execute(ctx)
}

// InsertFilmWithSet inserts a film setting each column.
func (q *Queries) InsertFilmWithSet(ctx context.Context, title string, languageID int64) (int64, error) {
	f := Films()
	return q.c.InsertInto(f.Source).
		Set(f.Title, title).
		Set(f.LanguageID, languageID).
		Execute(ctx)
}

// InsertFilmRecord inserts a film through a record and returns the stored
// record, which holds the generated id and defaults.
func (q *Queries) InsertFilmRecord(ctx context.Context, title string, languageID int64) (*record.Record, error) {
	rec := record.New(Films().Schema()).
		Set("title", title).
		Set("language_id", languageID)
	if err := q.c.Store(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AddActor inserts an actor and returns the inserted row.
func (q *Queries) AddActor(ctx context.Context, firstName, lastName string) (Actor, error) {
	a := Actors()
	return query.FetchOneInto[Actor](ctx, q.c.
		InsertInto(a.Source, a.FirstName, a.LastName).
		Values(firstName, lastName).
		Returning())
}

// AddActorInTransaction inserts an actor in a transaction, then runs
// then inside the same transaction. The insert is rolled back when then
// fails.
func (q *Queries) AddActorInTransaction(ctx context.Context, firstName, lastName string, then func(ctx context.Context) error) error {
	return q.c.Transaction(ctx, func(ctx context.Context) error {
		a := Actors()
		if _, err := q.c.InsertInto(a.Source).
			Set(a.FirstName, firstName).
			Set(a.LastName, lastName).
			Execute(ctx); err != nil {
			return err
		}
		if then != nil {
			return then(ctx)
		}
		return nil
	})
}

// RenameActor changes the last name of an actor.
func (q *Queries) RenameActor(ctx context.Context, id int64, lastName string) (bool, error) {
	a := Actors()
	n, err := q.c.Update(a.Source).Set(a.LastName, lastName).Where(a.ActorID.EQ(id)).Execute(ctx)
	return n > 0, err
}

// DeleteActor deletes an actor and reports whether it existed.
func (q *Queries) DeleteActor(ctx context.Context, id int64) (bool, error) {
	a := Actors()
	n, err := q.c.DeleteFrom(a.Source).Where(a.ActorID.EQ(id)).Execute(ctx)
	return n > 0, err
}

// CountActors returns the number of actors.
func (q *Queries) CountActors(ctx context.Context) (int64, error) {
	a := Actors()
	row, err := q.c.Select(expr.Count(a.ActorID)).From(a.Source).FetchOne(ctx)
	if err != nil {
		return 0, err
	}
	n, _ := row.Value(0).(int64)
	return n, nil
}
