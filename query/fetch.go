package query

import (
	"context"

	"github.com/syssam/velq/record"
)

// Fetcher is implemented by builders that return rows.
type Fetcher interface {
	Fetch(context.Context) ([]record.Row, error)
}

// OneFetcher is implemented by builders that return a single row.
type OneFetcher interface {
	FetchOne(context.Context) (record.Row, error)
}

// FetchInto runs f and maps every row into a T by field name.
//
//	films, err := query.FetchInto[Film](ctx, c.SelectFrom(sakila.Film))
func FetchInto[T any](ctx context.Context, f Fetcher) ([]T, error) {
	return fetchAll[T](ctx, f, record.ByName)
}

// FetchPositional runs f and maps every row into a T by position: the
// i-th value goes to the i-th exported field.
func FetchPositional[T any](ctx context.Context, f Fetcher) ([]T, error) {
	return fetchAll[T](ctx, f, record.ByPosition)
}

// FetchOneInto runs f and maps its only row into a T by field name.
func FetchOneInto[T any](ctx context.Context, f OneFetcher) (T, error) {
	row, err := f.FetchOne(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return record.Into[T](row)
}

func fetchAll[T any](ctx context.Context, f Fetcher, mode record.Mode) ([]T, error) {
	rows, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return record.MapAll[T](rows, mode)
}

var (
	_ Fetcher    = (*SelectBuilder)(nil)
	_ OneFetcher = (*SelectBuilder)(nil)
	_ Fetcher    = (*InsertBuilder)(nil)
	_ OneFetcher = (*UpdateBuilder)(nil)
	_ Fetcher    = (*DeleteBuilder)(nil)
	_ Statement  = (*SelectStatement)(nil)
	_ mutation   = (*InsertStatement)(nil)
	_ mutation   = (*UpdateStatement)(nil)
	_ mutation   = (*DeleteStatement)(nil)
)
