package query_test

import (
	"testing"

	"github.com/syssam/velq/expr"
	"github.com/syssam/velq/schema"
	"github.com/syssam/velq/schema/edge"
	"github.com/syssam/velq/schema/field"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	actor, film, language, filmActor *expr.Source
}

func sakila(t testing.TB) fixture {
	t.Helper()
	r := schema.NewRegistry()
	err := r.Register(
		schema.Define("actor").
			Fields(
				field.Int("actor_id").Primary().Default(),
				field.String("first_name"),
				field.String("last_name"),
				field.Time("last_update").Default(),
			).
			Edges(edge.From("film_actors", "film_actor").Field("actor_id")),
		schema.Define("language").
			Fields(field.Int("language_id").Primary().Default(), field.String("name")),
		schema.Define("film").
			Fields(
				field.Int("film_id").Primary().Default(),
				field.String("title"),
				field.String("description").Nullable(),
				field.Int("language_id"),
				field.Int("original_language_id").Nullable(),
				field.Float64("rental_rate").Default(),
			).
			Edges(
				edge.To("language", "language").Field("language_id"),
				edge.To("original_language", "language").Field("original_language_id"),
				edge.From("film_actors", "film_actor").Field("film_id"),
			),
		schema.Define("film_actor").
			Fields(field.Int("actor_id"), field.Int("film_id")).
			Edges(
				edge.To("actor", "actor").Field("actor_id"),
				edge.To("film", "film").Field("film_id"),
			),
	)
	require.NoError(t, err)
	return fixture{
		actor:     expr.T(r.MustTable("actor")),
		film:      expr.T(r.MustTable("film")),
		language:  expr.T(r.MustTable("language")),
		filmActor: expr.T(r.MustTable("film_actor")),
	}
}
