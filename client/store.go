package client

import (
	"context"

	"github.com/syssam/velq"
	"github.com/syssam/velq/expr"
	"github.com/syssam/velq/record"
)

// Store writes a record. A record that was not stored yet is inserted and
// takes the values of the inserted row, generated keys and defaults
// included. A stored record is updated by primary key with the columns
// changed since it was loaded or stored.
func (c *Client) Store(ctx context.Context, rec *record.Record) error {
	if err := rec.Err(); err != nil {
		return err
	}
	src := expr.T(rec.Table())
	if !rec.Stored() {
		row, err := c.InsertInto(src).SetRecord(rec).Returning().FetchOne(ctx)
		if err != nil {
			return err
		}
		rec.MarkStored(row)
		return nil
	}
	changed := rec.Changed()
	if len(changed) == 0 {
		return nil
	}
	key, ok := rec.Key()
	if !ok {
		return velq.NewBuildError("update", "record of %s has no primary key value", src.Schema().Name)
	}
	u := c.Update(src)
	for _, col := range changed {
		v, _ := rec.Get(col)
		u.Set(src.C(col), v)
	}
	n, err := u.Where(src.C(rec.Table().PrimaryKey.Name).EQ(key)).Execute(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return velq.NewNoResultError(src.Schema().Name)
	}
	rec.MarkStored(record.NewRow(changed, rec.Values(changed)))
	return nil
}

// Delete deletes a stored record by primary key. It reports whether a row
// was deleted.
func (c *Client) Delete(ctx context.Context, rec *record.Record) (bool, error) {
	key, ok := rec.Key()
	if !ok {
		return false, velq.NewBuildError("delete", "record of %s has no primary key value", rec.Table().Name)
	}
	src := expr.T(rec.Table())
	n, err := c.DeleteFrom(src).Where(src.C(rec.Table().PrimaryKey.Name).EQ(key)).Execute(ctx)
	return n > 0, err
}

