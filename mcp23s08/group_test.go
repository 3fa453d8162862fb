// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s08

import (
	"errors"
	"testing"

	"github.com/GermanBionicSystems/gpioexp/mcp23s08/mcp23s08test"
	"periph.io/x/conn/v3/gpio"
)

// loopback wires pin 0 to pin 4, pin 1 to pin 5, etc. An output drives the
// input it is wired to after each transaction.
type loopback struct {
	*mcp23s08test.Chip
}

func (l *loopback) Tx(w, r []byte) error {
	if err := l.Chip.Tx(w, r); err != nil {
		return err
	}
	l.Lock()
	iodir := l.Regs[mcp23s08test.IODIR]
	olat := l.Regs[mcp23s08test.OLAT]
	l.Unlock()
	driven := olat &^ iodir
	l.SetInputs(driven<<4 | driven>>4)
	return nil
}

func newLoopback(t *testing.T) (*loopback, *Dev) {
	l := &loopback{Chip: mcp23s08test.New(0)}
	dev, err := New(l, 0)
	if err != nil {
		t.Fatal(err)
	}
	return l, dev
}

func TestGroup(t *testing.T) {
	_, dev := newLoopback(t)
	g := dev.Group(P0, P1, P2, P3)
	if g == nil {
		t.Fatal("Group() returned nil")
	}
	if s := g.String(); s != "MCP23S08_0 - [ 0 1 2 3 ]" {
		t.Errorf("String() = %q", s)
	}
	pins := g.Pins()
	if len(pins) != 4 {
		t.Fatalf("Pins() returned %d pins", len(pins))
	}
	for ix, p := range pins {
		if p.Number() != ix {
			t.Errorf("pin %d has number %d", ix, p.Number())
		}
	}
	if p := g.ByOffset(2); p == nil || p.Number() != 2 {
		t.Errorf("ByOffset(2) = %v", p)
	}
	for _, off := range []int{-1, 4} {
		if p := g.ByOffset(off); p != nil {
			t.Errorf("ByOffset(%d) = %v", off, p)
		}
	}
	if p := g.ByName("MCP23S08_0_GP3"); p == nil || p.Number() != 3 {
		t.Errorf("ByName() = %v", p)
	}
	if p := g.ByName("GP9"); p != nil {
		t.Errorf("ByName() = %v", p)
	}
	if p := g.ByNumber(1); p == nil || p.Name() != "MCP23S08_0_GP1" {
		t.Errorf("ByNumber(1) = %v", p)
	}
	if p := g.ByNumber(7); p != nil {
		t.Errorf("ByNumber(7) = %v", p)
	}
	if _, _, err := g.WaitForEdge(0); !errors.Is(err, gpio.ErrGroupFeatureNotImplemented) {
		t.Errorf("WaitForEdge() returned %v", err)
	}
	if err := g.Halt(); err != nil {
		t.Error(err)
	}
}

// TestReadWrite exercises the group Out()/Read() functions over the loopback
// wiring, in both directions.
func TestReadWrite(t *testing.T) {
	_, dev := newLoopback(t)
	defMask := gpio.GPIOValue(0xf)
	gOut := dev.Group(P0, P1, P2, P3)
	gRead := dev.Group(P4, P5, P6, P7)

	for i := range 2 {
		if i == 1 {
			gRead, gOut = gOut, gRead
		}
		for v := range gpio.GPIOValue(16) {
			if err := gOut.Out(v, 0); err != nil {
				t.Fatal(err)
			}
			r, err := gRead.Read(defMask)
			if err != nil {
				t.Fatal(err)
			}
			if r != v {
				t.Errorf("Error reading/writing GPIO Group(). Wrote 0x%x Read 0x%x", v, r)
			}
		}
	}

	// Write the pins individually and confirm the group reads them.
	gRead = gOut
	pinset := dev.Pins()[:4]
	for _, p := range pinset {
		if err := p.SetFunc(gpio.OUT); err != nil {
			t.Fatal(err)
		}
	}
	for v := range gpio.GPIOValue(16) {
		for bit := range 4 {
			if err := pinset[bit].Out(gpio.Level(v&(1<<bit) != 0)); err != nil {
				t.Fatal(err)
			}
		}
		r, err := gRead.Read(0)
		if err != nil {
			t.Fatal(err)
		}
		if r != v {
			t.Errorf("Error writing GPIO pins and reading back result. Read 0x%x Expected 0x%x", r, v)
		}
	}
}

func TestGroup_mask(t *testing.T) {
	chip, dev := newChip(t, 0)
	// Group order differs from the port order.
	g := dev.Group(P3, P0)
	if err := g.Out(0x3, 0x1); err != nil {
		t.Fatal(err)
	}
	if d := dev.Direction(); d != 0xF7 {
		t.Errorf("Direction() = 0x%02x; only GP3 must be an output", d)
	}
	if olat := chip.Regs[mcp23s08test.OLAT]; olat != 0x08 {
		t.Errorf("OLAT = 0x%02x", olat)
	}
	if err := g.Out(0x0, 0); err != nil {
		t.Fatal(err)
	}
	if d := dev.Direction(); d != 0xF6 {
		t.Errorf("Direction() = 0x%02x", d)
	}
	if latch := dev.Latch(); latch != 0x00 {
		t.Errorf("Latch() = 0x%02x", latch)
	}
	chip.Inputs = 0x01
	r, err := g.Read(0x2)
	if err != nil {
		t.Fatal(err)
	}
	if r != 0x2 {
		t.Errorf("Read() = 0x%x", r)
	}
	if d := dev.Direction(); d != 0xF7 {
		t.Errorf("Direction() = 0x%02x; GP0 must be an input again", d)
	}
}
