// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s08

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/GermanBionicSystems/gpioexp/mcp23s08/mcp23s08test"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

// gatedConn holds transactions until the gate is closed.
type gatedConn struct {
	conn.Conn
	entered chan struct{}

	mu   sync.Mutex
	gate chan struct{}
}

func (g *gatedConn) hold(gate chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gate = gate
}

func (g *gatedConn) Tx(w, r []byte) error {
	g.mu.Lock()
	gate := g.gate
	g.mu.Unlock()
	if gate != nil {
		g.entered <- struct{}{}
		<-gate
	}
	return g.Conn.Tx(w, r)
}

func newAsyncChip(t *testing.T) (*mcp23s08test.Chip, *AsyncDev) {
	chip := mcp23s08test.New(0)
	dev, err := NewAsync(context.Background(), NewAsyncConn(chip), 0)
	if err != nil {
		t.Fatal(err)
	}
	return chip, dev
}

func TestAsyncDev(t *testing.T) {
	ctx := context.Background()
	chip, dev := newAsyncChip(t)
	if s := dev.String(); s != "MCP23S08_0" {
		t.Errorf("String() = %q", s)
	}
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetPinDirection(ctx, P0, false); err != nil {
		t.Fatal(err)
	}
	if dev.Direction() != 0xFE {
		t.Errorf("Direction() = 0x%02x", dev.Direction())
	}
	p := dev.Pin(P0)
	if s := p.String(); s != "MCP23S08_0_GP0" {
		t.Errorf("String() = %q", s)
	}
	if err := p.SetHigh(ctx); err != nil {
		t.Fatal(err)
	}
	if !p.IsSetHigh() || p.IsSetLow() {
		t.Error("P0 must be set high")
	}
	if high, err := p.IsHigh(ctx); err != nil || !high {
		t.Errorf("IsHigh() = %t, %v", high, err)
	}
	if err := p.Toggle(ctx); err != nil {
		t.Fatal(err)
	}
	if low, err := p.IsLow(ctx); err != nil || !low {
		t.Errorf("IsLow() = %t, %v", low, err)
	}
	if err := p.SetLow(ctx); err != nil {
		t.Fatal(err)
	}
	if dev.Latch() != 0x00 {
		t.Errorf("Latch() = 0x%02x", dev.Latch())
	}

	chip.Inputs = 0x80
	if high, err := dev.ReadPin(ctx, P7); err != nil || !high {
		t.Errorf("ReadPin() = %t, %v", high, err)
	}
	if err := dev.SetPinPolarity(ctx, P7, Inverted); err != nil {
		t.Fatal(err)
	}
	if v, err := dev.ReadPort(ctx); err != nil || v != 0x00 {
		t.Errorf("ReadPort() = 0x%02x, %v", v, err)
	}
	if err := dev.SetPinPullUp(ctx, P5, true); err != nil {
		t.Fatal(err)
	}
	if chip.Regs[mcp23s08test.GPPU] != 0x20 {
		t.Errorf("GPPU = 0x%02x", chip.Regs[mcp23s08test.GPPU])
	}
}

func TestAsyncDev_portOperations(t *testing.T) {
	ctx := context.Background()
	chip, dev := newAsyncChip(t)
	steps := []struct {
		f   func() error
		reg int
		v   uint8
	}{
		{func() error { return dev.SetPortDirection(ctx, 0x0F) }, mcp23s08test.IODIR, 0x0F},
		{func() error { return dev.SetPortPolarity(ctx, 0x11) }, mcp23s08test.IPOL, 0x11},
		{func() error { return dev.SetPortInterruptEnable(ctx, 0x22) }, mcp23s08test.GPINTEN, 0x22},
		{func() error { return dev.SetDefaultCompare(ctx, 0x33) }, mcp23s08test.DEFVAL, 0x33},
		{func() error { return dev.SetPortInterruptMode(ctx, 0x44) }, mcp23s08test.INTCON, 0x44},
		{func() error { return dev.SetPortPullUps(ctx, 0xAA) }, mcp23s08test.GPPU, 0xAA},
		{func() error { return dev.WritePort(ctx, 0x3C) }, mcp23s08test.OLAT, 0x3C},
		{func() error { return dev.WriteLatch(ctx, 0xC3) }, mcp23s08test.OLAT, 0xC3},
		{func() error { return dev.WritePin(ctx, P0, false) }, mcp23s08test.OLAT, 0xC2},
		{func() error { return dev.SetPinInterruptEnable(ctx, P0, true) }, mcp23s08test.GPINTEN, 0x23},
		{func() error { return dev.SetPinInterruptMode(ctx, P0, CompareToDefault) }, mcp23s08test.INTCON, 0x45},
		{func() error { return dev.SetInterruptOpenDrain(ctx, true) }, mcp23s08test.IOCON, 0x04},
		{func() error { return dev.SetInterruptPolarity(ctx, true) }, mcp23s08test.IOCON, 0x06},
	}
	for i, s := range steps {
		if err := s.f(); err != nil {
			t.Fatalf("#%d: %v", i, err)
		}
		if v := chip.Regs[s.reg]; v != s.v {
			t.Errorf("#%d: register %d = 0x%02x; expected 0x%02x", i, s.reg, v, s.v)
		}
	}
	if dev.Direction() != 0x0F || dev.Latch() != 0xC2 {
		t.Errorf("shadows 0x%02x 0x%02x", dev.Direction(), dev.Latch())
	}
}

func TestAsyncDev_interrupts(t *testing.T) {
	ctx := context.Background()
	chip, dev := newAsyncChip(t)
	if err := dev.SetPinInterruptEnable(ctx, P1, true); err != nil {
		t.Fatal(err)
	}
	chip.SetInputs(0x02)
	if f, err := dev.InterruptFlags(ctx); err != nil || f != 0x02 {
		t.Errorf("InterruptFlags() = 0x%02x, %v", f, err)
	}
	if c, err := dev.InterruptCapture(ctx); err != nil || c != 0x02 {
		t.Errorf("InterruptCapture() = 0x%02x, %v", c, err)
	}
	chip.SetInputs(0x00)
	if v, err := dev.ClearInterrupts(ctx); err != nil || v != 0x00 {
		t.Errorf("ClearInterrupts() = 0x%02x, %v", v, err)
	}
	if f, err := dev.InterruptFlags(ctx); err != nil || f != 0x00 {
		t.Errorf("InterruptFlags() = 0x%02x, %v", f, err)
	}
}

func TestNewAsync_invalidAddress(t *testing.T) {
	chip := mcp23s08test.New(0)
	if _, err := NewAsync(context.Background(), NewAsyncConn(chip), 4); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if chip.Count() != 0 {
		t.Error("unexpected transaction")
	}
}

func TestNewAsync_cancelled(t *testing.T) {
	chip := mcp23s08test.New(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dev, err := NewAsync(ctx, NewAsyncConn(chip), 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if dev != nil {
		t.Error("partial device returned")
	}
	if chip.Count() != 0 {
		t.Error("unexpected transaction")
	}
}

func TestNewAsyncSPI(t *testing.T) {
	pb := &spitest.Playback{Playback: conntest.Playback{Ops: openOps(3, 0xFF, 0x00)}}
	dev, err := NewAsyncSPI(context.Background(), pb, &Opts{Address: 3, Frequency: physic.MegaHertz, Mode: spi.Mode3})
	if err != nil {
		t.Fatal(err)
	}
	if dev.String() != "MCP23S08_3" {
		t.Errorf("String() = %q", dev.String())
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := NewAsyncSPI(context.Background(), &spitest.Playback{}, &Opts{Address: 9}); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestAsyncDev_preCancelled(t *testing.T) {
	chip, dev := newAsyncChip(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	count := chip.Count()
	if err := dev.WritePin(ctx, P0, true); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := dev.SetPinPullUp(ctx, P0, true); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := dev.ReadPort(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if chip.Count() != count {
		t.Error("unexpected transaction")
	}
	if dev.Latch() != 0x00 {
		t.Errorf("Latch() = 0x%02x", dev.Latch())
	}
}

func TestAsyncDev_cancelInFlight(t *testing.T) {
	chip := mcp23s08test.New(0)
	g := &gatedConn{Conn: chip, entered: make(chan struct{}, 1)}
	dev, err := NewAsync(context.Background(), NewAsyncConn(g), 0)
	if err != nil {
		t.Fatal(err)
	}

	gate := make(chan struct{})
	g.hold(gate)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- dev.WritePin(ctx, P0, true)
	}()
	<-g.entered
	g.hold(nil)
	cancel()
	err = <-errc
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var te *TransportError
	if !errors.As(err, &te) || te.Op != "write" || te.Reg != GPIO {
		t.Errorf("unexpected error %v", err)
	}
	if dev.Latch() != 0x00 {
		t.Errorf("Latch() = 0x%02x; a cancelled write must not update it", dev.Latch())
	}

	// The next transaction waits for the abandoned one.
	readc := make(chan error, 1)
	go func() {
		_, err := dev.ReadPort(context.Background())
		readc <- err
	}()
	select {
	case err := <-readc:
		t.Fatalf("ReadPort() returned %v while the bus was busy", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(gate)
	if err := <-readc; err != nil {
		t.Fatal(err)
	}
	chip.Lock()
	olat := chip.Regs[mcp23s08test.OLAT]
	chip.Unlock()
	if olat != 0x01 {
		t.Errorf("OLAT = 0x%02x; the abandoned write must complete", olat)
	}
}

func TestAsyncConn(t *testing.T) {
	pb := &conntest.Playback{
		D: conn.Full,
		Ops: []conntest.IO{
			{W: []byte{0x41, 0x09, 0x00}, R: []byte{0x00, 0x00, 0x5A}},
		},
	}
	a := NewAsyncConn(pb)
	if a.String() != "playback" {
		t.Errorf("String() = %q", a.String())
	}
	if a.Duplex() != conn.Full {
		t.Errorf("Duplex() = %s", a.Duplex())
	}
	w := []byte{0x41, 0x09, 0x00}
	r := make([]byte, 3)
	if err := a.Tx(w, r); err != nil {
		t.Fatal(err)
	}
	if r[2] != 0x5A {
		t.Errorf("read %#v", r)
	}
	if err := pb.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestAsyncDev_Release(t *testing.T) {
	chip := mcp23s08test.New(0)
	ac := NewAsyncConn(chip)
	dev, err := NewAsync(context.Background(), ac, 0)
	if err != nil {
		t.Fatal(err)
	}
	if c := dev.Release(); c != ContextConn(ac) {
		t.Fatalf("Release() = %v", c)
	}
	if err := dev.WritePin(context.Background(), P0, true); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased, got %v", err)
	}
	if c := dev.Release(); c != nil {
		t.Errorf("second Release() = %v", c)
	}
}
