package client

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/syssam/velq"
	"github.com/syssam/velq/dialect"
	"github.com/syssam/velq/dialect/sql"
	"github.com/syssam/velq/dialect/sql/sqlerr"
)

// Tx is a transaction started by a Client.
type Tx struct {
	client     *Client
	tx         dialect.Tx
	ctx        context.Context
	mu         sync.Mutex
	onCommit   []func(context.Context)
	onRollback []func(context.Context)
}

// txKey identifies the transaction of one client in a context.
type txKey struct{ c *Client }

func (c *Client) txFromContext(ctx context.Context) *Tx {
	tx, _ := ctx.Value(txKey{c}).(*Tx)
	return tx
}

// TxFromContext returns the transaction of the client carried by ctx.
func (c *Client) TxFromContext(ctx context.Context) (*Tx, bool) {
	tx := c.txFromContext(ctx)
	return tx, tx != nil
}

// BeginTx starts a transaction. The returned context carries it, so
// statements of the client run inside it until it is committed or rolled
// back.
func (c *Client) BeginTx(ctx context.Context, opts *sql.TxOptions) (context.Context, *Tx, error) {
	if c.txFromContext(ctx) != nil {
		return nil, nil, errors.New("velq: cannot start a transaction within a transaction")
	}
	tx, err := sql.BeginTx(ctx, c.driver, opts)
	if err != nil {
		return nil, nil, &velq.DatabaseError{Op: "begin", Constraint: string(sqlerr.Classify(err)), Err: err}
	}
	t := &Tx{client: c, tx: tx}
	t.ctx = context.WithValue(ctx, txKey{c}, t)
	return t.ctx, t, nil
}

// Commit commits the transaction and runs the commit hooks.
func (tx *Tx) Commit() error {
	if err := tx.tx.Commit(); err != nil {
		return &velq.DatabaseError{Op: "commit", Constraint: string(sqlerr.Classify(err)), Err: err}
	}
	tx.mu.Lock()
	hooks := slices.Clone(tx.onCommit)
	tx.mu.Unlock()
	for _, h := range hooks {
		h(tx.ctx)
	}
	return nil
}

// Rollback rolls back the transaction and runs the rollback hooks.
func (tx *Tx) Rollback() error {
	if err := tx.tx.Rollback(); err != nil {
		return &velq.RollbackError{Err: err}
	}
	tx.mu.Lock()
	hooks := slices.Clone(tx.onRollback)
	tx.mu.Unlock()
	for _, h := range hooks {
		h(tx.ctx)
	}
	return nil
}

// OnCommit adds a function called after the transaction commits.
func (tx *Tx) OnCommit(f func(context.Context)) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.onCommit = append(tx.onCommit, f)
}

// OnRollback adds a function called after the transaction rolls back.
func (tx *Tx) OnRollback(f func(context.Context)) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.onRollback = append(tx.onRollback, f)
}

// Context returns the context that carries the transaction.
func (tx *Tx) Context() context.Context { return tx.ctx }

// Transaction runs fn in a transaction. The transaction commits when fn
// returns nil and rolls back when it returns an error or panics; a panic
// is re-raised after the rollback. When ctx already carries a transaction
// of the client, fn runs inside it and its outcome is decided by the
// outermost call.
func (c *Client) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.txFromContext(ctx) != nil {
		return fn(ctx)
	}
	txCtx, tx, err := c.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if v := recover(); v != nil {
			if err := tx.Rollback(); err != nil {
				c.log.ErrorContext(ctx, "rollback after panic failed", "error", err)
			}
			panic(v)
		}
	}()
	if err := fn(txCtx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return tx.Commit()
}

// TransactionValue is like Client.Transaction for functions that return a
// value. The zero value is returned when the transaction does not commit.
func TransactionValue[T any](ctx context.Context, c *Client, fn func(ctx context.Context) (T, error)) (T, error) {
	var v T
	err := c.Transaction(ctx, func(ctx context.Context) error {
		var err error
		v, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
