// Package client is the entry point of velq: it binds the statement
// builders to a database driver and coordinates transactions.
//
//	c, err := client.Open("sqlite", "file:sakila.db", client.Log(logger))
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//	films, err := c.SelectFrom(expr.T(sakila.Film)).Fetch(ctx)
package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/dialect/sql"
	"github.com/syssam/velq/expr"
	"github.com/syssam/velq/query"
)

// Client runs statements on a driver. Statements created through a
// Client run inside the transaction carried by their context, if any.
type Client struct {
	config
}

type config struct {
	driver dialect.Driver
	debug  bool
	log    *slog.Logger
	stats  []sql.StatsOption
	wrap   bool // wrap the driver with a StatsDriver.
}

// Option configures a Client.
type Option func(*config)

// Driver sets the driver of the client.
func Driver(drv dialect.Driver) Option {
	return func(c *config) {
		c.driver = drv
	}
}

// Debug logs every statement at debug level.
func Debug() Option {
	return func(c *config) {
		c.debug = true
	}
}

// Log sets the logger used by the client. It defaults to slog.Default().
func Log(l *slog.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// Stats collects statement statistics; see Client.Stats.
func Stats(opts ...sql.StatsOption) Option {
	return func(c *config) {
		c.wrap = true
		c.stats = append(c.stats, opts...)
	}
}

// NewClient creates a new client configured with the given options.
func NewClient(opts ...Option) *Client {
	c := config{log: slog.Default()}
	for _, opt := range opts {
		opt(&c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if c.wrap {
		c.driver = sql.NewStatsDriver(c.driver, c.stats...)
	}
	if c.debug {
		c.driver = sql.NewDebugDriver(c.driver, c.log)
	}
	return &Client{config: c}
}

// Open opens a database/sql connection and returns a client for it. The
// database/sql driver must be registered by the program.
func Open(driverName, dataSourceName string, opts ...Option) (*Client, error) {
	drv, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	switch drv.Dialect() {
	case dialect.MySQL, dialect.Postgres, dialect.SQLite:
	default:
		drv.Close()
		return nil, fmt.Errorf("velq: unsupported driver %q", driverName)
	}
	return NewClient(append(opts, Driver(drv))...), nil
}

// Close closes the underlying driver.
func (c *Client) Close() error {
	return c.driver.Close()
}

// Dialect returns the dialect of the driver.
func (c *Client) Dialect() string {
	return c.driver.Dialect()
}

// Stats returns the statement statistics collected since the client was
// created, if the client was created with the Stats option.
func (c *Client) Stats() (sql.StatsSnapshot, bool) {
	drv := c.driver
	if d, ok := drv.(*sql.DebugDriver); ok {
		drv = d.Driver
	}
	s, ok := drv.(*sql.StatsDriver)
	if !ok {
		return sql.StatsSnapshot{}, false
	}
	return s.QueryStats().Stats(), true
}

// Exec executes a statement on the transaction of ctx, or on the driver.
func (c *Client) Exec(ctx context.Context, query string, args, v any) error {
	return c.runner(ctx).Exec(ctx, query, args, v)
}

// Query executes a query on the transaction of ctx, or on the driver.
func (c *Client) Query(ctx context.Context, query string, args, v any) error {
	return c.runner(ctx).Query(ctx, query, args, v)
}

func (c *Client) runner(ctx context.Context) dialect.ExecQuerier {
	if tx := c.txFromContext(ctx); tx != nil {
		return tx.tx
	}
	return c.driver
}

// Select starts a select statement bound to the client.
func (c *Client) Select(items ...expr.Expr) *query.SelectBuilder {
	return query.Select(items...).Attach(c)
}

// SelectFrom starts a select of all columns of src bound to the client.
func (c *Client) SelectFrom(src *expr.Source) *query.SelectBuilder {
	return query.SelectFrom(src).Attach(c)
}

// InsertInto starts an insert bound to the client.
func (c *Client) InsertInto(src *expr.Source, cols ...query.Column) *query.InsertBuilder {
	return query.InsertInto(src, cols...).Attach(c)
}

// Update starts an update bound to the client.
func (c *Client) Update(src *expr.Source) *query.UpdateBuilder {
	return query.Update(src).Attach(c)
}

// DeleteFrom starts a delete bound to the client.
func (c *Client) DeleteFrom(src *expr.Source) *query.DeleteBuilder {
	return query.DeleteFrom(src).Attach(c)
}

var _ query.Runner = (*Client)(nil)
