// Copyright (c) 2025 Pgbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pgclient is a PostgreSQL binding that converts heterogeneous call
// arguments into typed wire parameters, drives a prepare/refine/bind/execute
// pipeline, and decodes result rows back into host values.
//
// A Client owns one live connection and a private background loop that
// performs all driver traffic. Calls are exposed through a blocking
// convention (Query, Exec) and a non-blocking one (QueryAsync, ExecAsync)
// returning a Future. Calls submitted concurrently on one Client are safe:
// the loop serializes them, so sequentially issued calls observe
// per-connection ordering. No ordering holds across distinct Clients.
//
// Parameter types are only known after a prepare round trip, so arguments
// are extracted speculatively at their widest width and narrowed once the
// statement's declared types are available. Statements are prepared fresh
// per call and deallocated afterwards; caching, if any, belongs to the
// driver.
package pgclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pgbridge/pgerr"
)

// Client is a live connection to a PostgreSQL server.
type Client struct {
	host     string
	port     uint16
	database string
	user     string

	// conn is shared by all pending calls but only ever touched on the
	// background loop goroutine.
	conn *pgx.Conn

	// queue is unbounded so the async methods return without waiting no
	// matter how many calls are already in flight.
	mu    sync.Mutex
	wake  *sync.Cond
	queue []func(context.Context)

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  atomic.Bool
	stmtSeq atomic.Uint64
}

// Connect validates opts, derives the connection string and establishes the
// connection on the client's background loop.
//
// Configuration errors (missing or contradictory parameters, malformed DSN)
// are returned before any network attempt. Handshake and transport failures
// return a connection error and no Client.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	target, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	c := &Client{
		host:     target.host,
		port:     target.port,
		database: target.database,
		user:     target.user,
	}
	c.wake = sync.NewCond(&c.mu)
	// The loop's lifetime is the Client's lifetime, not the caller's.
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.wg.Add(1)
	go c.run()

	f := newFuture[*pgx.Conn]()
	if err := c.submit(func(jobCtx context.Context) {
		conn, err := pgx.Connect(jobCtx, target.connString)
		if err != nil {
			var parseErr *pgconn.ParseConfigError
			if errors.As(err, &parseErr) {
				f.complete(nil, pgerr.Wrap(pgerr.InvalidDsn, "failed to parse connection string", err))
				return
			}
			f.complete(nil, pgerr.Wrap(pgerr.ConnectionFailed, "failed to connect to PostgreSQL", err))
			return
		}
		f.complete(conn, nil)
	}); err != nil {
		c.teardown()
		return nil, err
	}

	conn, err := f.Wait(ctx)
	if err != nil {
		c.teardown()
		// The dial may still have won the race with the caller's context;
		// reap the connection if it did.
		go func() {
			if late, lateErr := f.Wait(context.Background()); lateErr == nil && late != nil {
				_ = late.Close(context.Background())
			}
		}()
		return nil, err
	}
	c.conn = conn
	return c, nil
}

// run is the background execution context: all driver traffic happens here,
// keeping caller goroutines off the network. After shutdown it drains the
// queue under the cancelled context so no submitted future is left pending.
func (c *Client) run() {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		for len(c.queue) == 0 && c.ctx.Err() == nil {
			c.wake.Wait()
		}
		if len(c.queue) == 0 {
			c.mu.Unlock()
			return
		}
		job := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		job(c.ctx)
	}
}

// submit schedules a job on the background loop. Never blocks: the queue
// grows as needed, so callers get their Future back immediately.
func (c *Client) submit(job func(context.Context)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return pgerr.New(pgerr.RuntimeFailed, "client is closed")
	}
	c.queue = append(c.queue, job)
	c.wake.Signal()
	return nil
}

// Query runs sql with the given arguments and returns the decoded rows.
// The calling goroutine blocks until the result is available; the network
// round trips run on the background loop.
func (c *Client) Query(ctx context.Context, sql string, args ...any) (*Result, error) {
	return c.QueryAsync(sql, args...).Wait(ctx)
}

// Exec runs sql with the given arguments and returns the affected-row count.
func (c *Client) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return c.ExecAsync(sql, args...).Wait(ctx)
}

// QueryAsync schedules a query on the background loop and returns
// immediately. The pipeline is prepare, refine parameters, bind, execute,
// decode. Prepare-time and execute-time server failures both surface as an
// execution error carrying the server's diagnostic; the two are not
// distinguishable from the error kind alone.
func (c *Client) QueryAsync(sql string, args ...any) *Future[*Result] {
	params, err := extractParams(args)
	if err != nil {
		return failed[*Result](err)
	}

	f := newFuture[*Result]()
	if err := c.submit(func(ctx context.Context) {
		res, err := c.runQuery(ctx, sql, params)
		f.complete(res, err)
	}); err != nil {
		return failed[*Result](err)
	}
	return f
}

// ExecAsync schedules a write statement on the background loop and returns
// immediately.
func (c *Client) ExecAsync(sql string, args ...any) *Future[int64] {
	params, err := extractParams(args)
	if err != nil {
		return failed[int64](err)
	}

	f := newFuture[int64]()
	if err := c.submit(func(ctx context.Context) {
		count, err := c.runExec(ctx, sql, params)
		f.complete(count, err)
	}); err != nil {
		return failed[int64](err)
	}
	return f
}

// runQuery executes the full pipeline for one query. Runs on the loop.
func (c *Client) runQuery(ctx context.Context, sql string, params []param) (*Result, error) {
	// Jobs drained during shutdown resolve here without touching the wire.
	if ctx.Err() != nil {
		return nil, pgerr.New(pgerr.RuntimeFailed, "client is closed")
	}

	name, sd, err := c.prepare(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer c.deallocate(name)

	if err := refineParams(params, sd.ParamOIDs); err != nil {
		return nil, err
	}

	rows, err := c.conn.Query(ctx, name, bindValues(params)...)
	if err != nil {
		return nil, pgerr.Wrap(pgerr.ExecutionError, "query execution failed", err)
	}
	return decodeRows(rows, c.conn.TypeMap())
}

// runExec executes the full pipeline for one write statement. Runs on the loop.
func (c *Client) runExec(ctx context.Context, sql string, params []param) (int64, error) {
	if ctx.Err() != nil {
		return 0, pgerr.New(pgerr.RuntimeFailed, "client is closed")
	}

	name, sd, err := c.prepare(ctx, sql)
	if err != nil {
		return 0, err
	}
	defer c.deallocate(name)

	if err := refineParams(params, sd.ParamOIDs); err != nil {
		return 0, err
	}

	tag, err := c.conn.Exec(ctx, name, bindValues(params)...)
	if err != nil {
		return 0, pgerr.Wrap(pgerr.ExecutionError, "statement execution failed", err)
	}
	return tag.RowsAffected(), nil
}

// prepare compiles sql under a fresh statement name, revealing the declared
// parameter and column types.
func (c *Client) prepare(ctx context.Context, sql string) (string, *pgconn.StatementDescription, error) {
	name := fmt.Sprintf("pgbridge_stmt_%d", c.stmtSeq.Add(1))
	sd, err := c.conn.Prepare(ctx, name, sql)
	if err != nil {
		return "", nil, pgerr.Wrap(pgerr.ExecutionError, "prepare failed", err)
	}
	return name, sd, nil
}

// deallocate drops a per-call statement. Best effort: the statement dies
// with the connection anyway.
func (c *Client) deallocate(name string) {
	_ = c.conn.Deallocate(c.ctx, name)
}

// String describes the connection target without credentials.
func (c *Client) String() string {
	return fmt.Sprintf("Client(host='%s', port=%d, db='%s', user='%s')",
		c.host, c.port, c.database, c.user)
}

// Host returns the connected host.
func (c *Client) Host() string { return c.host }

// Port returns the connected port.
func (c *Client) Port() uint16 { return c.port }

// Database returns the connected database name.
func (c *Client) Database() string { return c.database }

// User returns the connection user.
func (c *Client) User() string { return c.user }

// Close severs the connection and tears down the background loop. Queued
// calls resolve with an error; in-flight server work is not cancelled
// server-side. Close is idempotent.
func (c *Client) Close() {
	c.teardown()
	if c.conn != nil {
		_ = c.conn.Close(context.Background())
	}
}

// teardown stops the loop and waits for it to drain.
func (c *Client) teardown() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.cancel()
	c.mu.Lock()
	c.wake.Signal()
	c.mu.Unlock()
	c.wg.Wait()
}
