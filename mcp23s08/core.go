// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s08

import (
	"context"

	"periph.io/x/conn/v3"
)

// transactor runs one framed transaction under a single chip select.
type transactor interface {
	transact(ctx context.Context, w, r []byte) error
	conn() conn.Conn
}

type blocking struct {
	c conn.Conn
}

func (b blocking) transact(_ context.Context, w, r []byte) error {
	return b.c.Tx(w, r)
}

func (b blocking) conn() conn.Conn {
	return b.c
}

type suspending struct {
	c ContextConn
}

func (s suspending) transact(ctx context.Context, w, r []byte) error {
	return s.c.TxContext(ctx, w, r)
}

func (s suspending) conn() conn.Conn {
	return s.c
}

// core holds the register operations shared by Dev and AsyncDev.
type core struct {
	t    transactor
	addr uint8
	// Local copies of IODIR and OLAT. They are only assigned after the write
	// transaction returned without error.
	iodir uint8
	olat  uint8
}

func newCore(ctx context.Context, t transactor, addr uint8) (*core, error) {
	if addr > maxHardAddr {
		return nil, ErrInvalidAddress
	}
	c := &core{t: t, addr: addr}
	// Clear any configuration left by a previous user, including HAEN and
	// SEQOP.
	if err := c.write(ctx, IOCON, 0x00); err != nil {
		return nil, err
	}
	iodir, err := c.read(ctx, IODIR)
	if err != nil {
		return nil, err
	}
	olat, err := c.read(ctx, OLAT)
	if err != nil {
		return nil, err
	}
	c.iodir = iodir
	c.olat = olat
	return c, nil
}

func (c *core) write(ctx context.Context, reg Register, value uint8) error {
	if c.t == nil {
		return ErrReleased
	}
	f := writeFrame(c.addr, reg, value)
	if err := c.t.transact(ctx, f[:], nil); err != nil {
		return &TransportError{Op: "write", Reg: reg, Err: err}
	}
	return nil
}

func (c *core) read(ctx context.Context, reg Register) (uint8, error) {
	if c.t == nil {
		return 0, ErrReleased
	}
	cmd := readCommand(c.addr, reg)
	var v uint8
	var err error
	if c.t.conn().Duplex() == conn.Half {
		var r [1]byte
		err = c.t.transact(ctx, cmd[:], r[:])
		v = r[0]
	} else {
		// The value is clocked in while the third byte is sent.
		w := [3]byte{cmd[0], cmd[1], 0x00}
		var r [3]byte
		err = c.t.transact(ctx, w[:], r[:])
		v = r[2]
	}
	if err != nil {
		return 0, &TransportError{Op: "read", Reg: reg, Err: err}
	}
	return v, nil
}

// modify reads reg, sets or clears mask and writes it back. The read and the
// write are separate transactions.
func (c *core) modify(ctx context.Context, reg Register, mask uint8, set bool) error {
	v, err := c.read(ctx, reg)
	if err != nil {
		return err
	}
	return c.write(ctx, reg, setBits(v, mask, set))
}

func (c *core) modifyPin(ctx context.Context, reg Register, p Pin, set bool) error {
	if !p.valid() {
		return errInvalidPin
	}
	return c.modify(ctx, reg, p.Mask(), set)
}

func (c *core) setPortDirection(ctx context.Context, mask uint8) error {
	if err := c.write(ctx, IODIR, mask); err != nil {
		return err
	}
	c.iodir = mask
	return nil
}

func (c *core) setPinDirection(ctx context.Context, p Pin, input bool) error {
	if !p.valid() {
		return errInvalidPin
	}
	return c.setPortDirection(ctx, setBits(c.iodir, p.Mask(), input))
}

func (c *core) setPinPolarity(ctx context.Context, p Pin, pol Polarity) error {
	return c.modifyPin(ctx, IPOL, p, pol == Inverted)
}

func (c *core) readPin(ctx context.Context, p Pin) (bool, error) {
	if !p.valid() {
		return false, errInvalidPin
	}
	v, err := c.read(ctx, GPIO)
	if err != nil {
		return false, err
	}
	return v&p.Mask() != 0, nil
}

// writePort writes the port through the GPIO register, which the device
// forwards to OLAT.
func (c *core) writePort(ctx context.Context, value uint8) error {
	if err := c.write(ctx, GPIO, value); err != nil {
		return err
	}
	c.olat = value
	return nil
}

func (c *core) writePin(ctx context.Context, p Pin, high bool) error {
	if !p.valid() {
		return errInvalidPin
	}
	return c.writePort(ctx, setBits(c.olat, p.Mask(), high))
}

func (c *core) writeLatch(ctx context.Context, value uint8) error {
	if err := c.write(ctx, OLAT, value); err != nil {
		return err
	}
	c.olat = value
	return nil
}

func (c *core) setPinInterruptMode(ctx context.Context, p Pin, mode InterruptMode) error {
	return c.modifyPin(ctx, INTCON, p, mode == CompareToDefault)
}

// toggle drives the complement of the level read on the pin, which can differ
// from the latch when the pin is an input or is driven externally.
func (c *core) toggle(ctx context.Context, p Pin) error {
	high, err := c.readPin(ctx, p)
	if err != nil {
		return err
	}
	return c.writePin(ctx, p, !high)
}

// release detaches the transport. No transaction is issued.
func (c *core) release() conn.Conn {
	if c.t == nil {
		return nil
	}
	cn := c.t.conn()
	c.t = nil
	return cn
}
