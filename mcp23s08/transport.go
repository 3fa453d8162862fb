// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s08

import (
	"context"

	"periph.io/x/conn/v3"
)

// ContextConn is a connection whose transactions the caller can stop waiting
// on.
//
// TxContext runs one transaction like Tx. It may return ctx.Err() before the
// transaction completed, but a transaction that started must still complete
// on the bus before the next one starts. r must not be written after
// TxContext returned.
type ContextConn interface {
	conn.Conn
	TxContext(ctx context.Context, w, r []byte) error
}

// AsyncConn runs the transactions of a conn.Conn on their own goroutine so
// the caller can give up waiting. Transactions are serialized.
type AsyncConn struct {
	c conn.Conn
	// busy holds a token while a transaction runs, including one the caller
	// gave up on.
	busy chan struct{}
}

// NewAsyncConn returns a ContextConn running its transactions on c.
func NewAsyncConn(c conn.Conn) *AsyncConn {
	return &AsyncConn{c: c, busy: make(chan struct{}, 1)}
}

func (a *AsyncConn) String() string {
	return a.c.String()
}

func (a *AsyncConn) Duplex() conn.Duplex {
	return a.c.Duplex()
}

// Tx runs one transaction and waits for it.
func (a *AsyncConn) Tx(w, r []byte) error {
	return a.TxContext(context.Background(), w, r)
}

// TxContext runs one transaction. If ctx is done first, it returns ctx.Err()
// and the transaction completes in the background; r is left untouched.
func (a *AsyncConn) TxContext(ctx context.Context, w, r []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case a.busy <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	// Private buffers so an abandoned transaction never touches the caller's.
	wb := append([]byte(nil), w...)
	var rb []byte
	if r != nil {
		rb = make([]byte, len(r))
	}
	done := make(chan error, 1)
	go func() {
		err := a.c.Tx(wb, rb)
		<-a.busy
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil {
			copy(r, rb)
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ ContextConn = &AsyncConn{}
