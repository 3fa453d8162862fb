// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s08

import (
	"periph.io/x/conn/v3"
	"tinygo.org/x/drivers"
)

// TinyGoConn adapts a TinyGo SPI bus and the chip select line of the device
// to conn.Conn, so the driver can run on a microcontroller.
//
// cs sets the chip select line; pass machine.Pin.Set of a pin configured as
// an output. It is driven low for the duration of each transaction.
type TinyGoConn struct {
	bus drivers.SPI
	cs  func(high bool)
}

// NewTinyGoConn returns a conn.Conn transmitting on bus. cs is deasserted
// before returning.
func NewTinyGoConn(bus drivers.SPI, cs func(high bool)) *TinyGoConn {
	cs(true)
	return &TinyGoConn{bus: bus, cs: cs}
}

func (t *TinyGoConn) String() string {
	return "tinygo-spi"
}

// Tx runs one transaction with chip select asserted.
func (t *TinyGoConn) Tx(w, r []byte) error {
	t.cs(false)
	defer t.cs(true)
	return t.bus.Tx(w, r)
}

func (t *TinyGoConn) Duplex() conn.Duplex {
	return conn.Full
}

var _ conn.Conn = &TinyGoConn{}
