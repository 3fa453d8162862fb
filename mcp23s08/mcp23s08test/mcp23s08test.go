// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mcp23s08test is meant to be used to test drivers and tools over a
// simulated MCP23S08.
//
// Chip decodes the SPI frames it receives against an emulated register file,
// so tests can check what the pins end up doing instead of the exact byte
// sequence. Use spitest.Playback when the byte sequence matters.
package mcp23s08test

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/conntest"
)

// Register indexes, see the datasheet.
const (
	IODIR = iota
	IPOL
	GPINTEN
	DEFVAL
	INTCON
	IOCON
	GPPU
	INTF
	INTCAP
	GPIO
	OLAT

	numRegisters
)

const (
	ioconSEQOP  = 1 << 5
	ioconHAEN   = 1 << 3
	ioconODR    = 1 << 2
	ioconINTPOL = 1 << 1

	// opcodeMask keeps the fixed bits of the opcode, 0100_0xxx.
	opcodeMask = 0xF8
)

// Chip is a simulated MCP23S08 that implements conn.Conn.
//
// It is full duplex: a read is the 3 byte exchange opcode, register, dummy
// with the value returned in the third byte.
type Chip struct {
	sync.Mutex
	// Addr is the address wired on A1 and A0. It is only compared when
	// IOCON.HAEN is set, like the real device.
	Addr uint8
	// Regs is the register file.
	Regs [numRegisters]uint8
	// Inputs is the level driven externally on the pins. It is what GPIO
	// reads for pins configured as input.
	Inputs uint8
	// Ops records every transaction.
	Ops []conntest.IO

	failAt  int
	failErr error
}

// New returns a Chip in its power-on state.
func New(addr uint8) *Chip {
	c := &Chip{Addr: addr, failAt: -1}
	c.Regs[IODIR] = 0xFF
	return c
}

func (c *Chip) String() string {
	return fmt.Sprintf("mcp23s08test(%d)", c.Addr)
}

// Duplex implements conn.Conn.
func (c *Chip) Duplex() conn.Duplex {
	return conn.Full
}

// FailAt makes the n-th transaction from now fail with err, counting from 0.
// The failing transaction doesn't modify the chip.
func (c *Chip) FailAt(n int, err error) {
	c.Lock()
	defer c.Unlock()
	c.failAt = len(c.Ops) + n
	c.failErr = err
}

// Count returns the number of transactions received.
func (c *Chip) Count() int {
	c.Lock()
	defer c.Unlock()
	return len(c.Ops)
}

// Tx implements conn.Conn.
func (c *Chip) Tx(w, r []byte) error {
	c.Lock()
	defer c.Unlock()
	io := conntest.IO{W: append([]byte(nil), w...)}
	if len(c.Ops) == c.failAt {
		c.Ops = append(c.Ops, io)
		return c.failErr
	}
	if len(w) < 2 {
		return conntest.Errorf("mcp23s08test: short transaction %#v", w)
	}
	if r != nil && len(r) != len(w) {
		return conntest.Errorf("mcp23s08test: full duplex requires len(r) == len(w)")
	}
	c.Ops = append(c.Ops, io)
	op := w[0]
	if op&opcodeMask != 0x40 {
		return nil
	}
	if c.Regs[IOCON]&ioconHAEN != 0 && (op>>1)&0x03 != c.Addr&0x03 {
		return nil
	}
	// The address pointer increments after each byte unless SEQOP is set.
	reg := int(w[1])
	step := 1
	if c.Regs[IOCON]&ioconSEQOP != 0 {
		step = 0
	}
	if op&0x01 == 0 {
		for _, v := range w[2:] {
			c.write(reg, v)
			reg = (reg + step) % numRegisters
		}
		return nil
	}
	if r != nil {
		for i := 2; i < len(r); i++ {
			r[i] = c.read(reg)
			reg = (reg + step) % numRegisters
		}
		c.Ops[len(c.Ops)-1].R = append([]byte(nil), r...)
	}
	return nil
}

// SetInputs changes the level driven on the pins and evaluates
// interrupt-on-change like the device does.
func (c *Chip) SetInputs(v uint8) {
	c.Lock()
	defer c.Unlock()
	before := c.port()
	c.Inputs = v
	after := c.port()
	enabled := c.Regs[GPINTEN] & c.Regs[IODIR]
	var fired uint8
	for bit := uint8(0); bit < 8; bit++ {
		m := uint8(1) << bit
		if enabled&m == 0 {
			continue
		}
		if c.Regs[INTCON]&m != 0 {
			if (after^c.Regs[DEFVAL])&m != 0 {
				fired |= m
			}
		} else if (after^before)&m != 0 {
			fired |= m
		}
	}
	if fired != 0 && c.Regs[INTF] == 0 {
		c.Regs[INTCAP] = after
	}
	c.Regs[INTF] |= fired
}

// INT returns the level of the INT output.
func (c *Chip) INT() bool {
	c.Lock()
	defer c.Unlock()
	pending := c.Regs[INTF] != 0
	if c.Regs[IOCON]&ioconODR != 0 {
		// Open drain: active low, released otherwise.
		return !pending
	}
	activeHigh := c.Regs[IOCON]&ioconINTPOL != 0
	return pending == activeHigh
}

// port returns what GPIO reads.
func (c *Chip) port() uint8 {
	in := (c.Inputs ^ c.Regs[IPOL]) & c.Regs[IODIR]
	return in | c.Regs[OLAT]&^c.Regs[IODIR]
}

func (c *Chip) write(reg int, v uint8) {
	switch reg {
	case INTF, INTCAP:
		// Read only.
	case GPIO:
		c.Regs[OLAT] = v
	default:
		if reg < numRegisters {
			c.Regs[reg] = v
		}
	}
}

func (c *Chip) read(reg int) uint8 {
	switch reg {
	case GPIO:
		c.Regs[INTF] = 0
		return c.port()
	case INTCAP:
		v := c.Regs[INTCAP]
		c.Regs[INTF] = 0
		return v
	}
	if reg < numRegisters {
		return c.Regs[reg]
	}
	return 0
}

var _ conn.Conn = &Chip{}
