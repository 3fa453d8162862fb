// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s08

import (
	"context"

	"periph.io/x/conn/v3/spi"
)

// AsyncDev is a handle to an MCP23S08 whose operations take a context. ctx
// is checked between transactions and while waiting on one; an operation
// that returns an error leaves Direction and Latch unchanged.
type AsyncDev struct {
	c *core
}

// NewAsync opens the device at hardware address addr on c. See New.
func NewAsync(ctx context.Context, c ContextConn, addr uint8) (*AsyncDev, error) {
	cr, err := newCore(ctx, suspending{c: c}, addr)
	if err != nil {
		return nil, err
	}
	return &AsyncDev{c: cr}, nil
}

// NewAsyncSPI connects to p and opens the device. If opts is nil,
// DefaultOpts is used.
func NewAsyncSPI(ctx context.Context, p spi.Port, opts *Opts) (*AsyncDev, error) {
	c, err := connect(p, opts)
	if err != nil {
		return nil, err
	}
	return NewAsync(ctx, NewAsyncConn(c), addressOf(opts))
}

func (d *AsyncDev) String() string {
	return devName(d.c.addr)
}

// Halt implements conn.Resource. It doesn't touch the device.
func (d *AsyncDev) Halt() error {
	return nil
}

// Release detaches the connection from the device and returns it. No
// transaction is issued. Every later operation returns ErrReleased.
func (d *AsyncDev) Release() ContextConn {
	c, _ := d.c.release().(ContextConn)
	return c
}

// Direction returns the last IODIR value written or read at open.
func (d *AsyncDev) Direction() uint8 {
	return d.c.iodir
}

// Latch returns the last output latch value written or read at open.
func (d *AsyncDev) Latch() uint8 {
	return d.c.olat
}

func (d *AsyncDev) SetPinDirection(ctx context.Context, p Pin, input bool) error {
	return d.c.setPinDirection(ctx, p, input)
}

func (d *AsyncDev) SetPortDirection(ctx context.Context, mask uint8) error {
	return d.c.setPortDirection(ctx, mask)
}

func (d *AsyncDev) SetPinPullUp(ctx context.Context, p Pin, enable bool) error {
	return d.c.modifyPin(ctx, GPPU, p, enable)
}

func (d *AsyncDev) SetPortPullUps(ctx context.Context, mask uint8) error {
	return d.c.write(ctx, GPPU, mask)
}

func (d *AsyncDev) SetPinPolarity(ctx context.Context, p Pin, pol Polarity) error {
	return d.c.setPinPolarity(ctx, p, pol)
}

func (d *AsyncDev) SetPortPolarity(ctx context.Context, mask uint8) error {
	return d.c.write(ctx, IPOL, mask)
}

func (d *AsyncDev) ReadPort(ctx context.Context) (uint8, error) {
	return d.c.read(ctx, GPIO)
}

func (d *AsyncDev) ReadPin(ctx context.Context, p Pin) (bool, error) {
	return d.c.readPin(ctx, p)
}

func (d *AsyncDev) WritePort(ctx context.Context, value uint8) error {
	return d.c.writePort(ctx, value)
}

func (d *AsyncDev) WritePin(ctx context.Context, p Pin, high bool) error {
	return d.c.writePin(ctx, p, high)
}

func (d *AsyncDev) WriteLatch(ctx context.Context, value uint8) error {
	return d.c.writeLatch(ctx, value)
}

func (d *AsyncDev) SetPinInterruptEnable(ctx context.Context, p Pin, enable bool) error {
	return d.c.modifyPin(ctx, GPINTEN, p, enable)
}

func (d *AsyncDev) SetPortInterruptEnable(ctx context.Context, mask uint8) error {
	return d.c.write(ctx, GPINTEN, mask)
}

func (d *AsyncDev) SetPinInterruptMode(ctx context.Context, p Pin, mode InterruptMode) error {
	return d.c.setPinInterruptMode(ctx, p, mode)
}

func (d *AsyncDev) SetPortInterruptMode(ctx context.Context, mask uint8) error {
	return d.c.write(ctx, INTCON, mask)
}

func (d *AsyncDev) SetDefaultCompare(ctx context.Context, value uint8) error {
	return d.c.write(ctx, DEFVAL, value)
}

func (d *AsyncDev) InterruptFlags(ctx context.Context) (uint8, error) {
	return d.c.read(ctx, INTF)
}

func (d *AsyncDev) InterruptCapture(ctx context.Context) (uint8, error) {
	return d.c.read(ctx, INTCAP)
}

// ClearInterrupts reads the port, which clears the pending interrupt.
func (d *AsyncDev) ClearInterrupts(ctx context.Context) (uint8, error) {
	return d.c.read(ctx, GPIO)
}

func (d *AsyncDev) SetInterruptOpenDrain(ctx context.Context, enable bool) error {
	return d.c.modify(ctx, IOCON, ioconODR, enable)
}

func (d *AsyncDev) SetInterruptPolarity(ctx context.Context, activeHigh bool) error {
	return d.c.modify(ctx, IOCON, ioconINTPOL, activeHigh)
}

// Pin returns a view of pin p. The view shares the device state.
func (d *AsyncDev) Pin(p Pin) *AsyncPin {
	return &AsyncPin{dev: d, pin: p}
}
