// Copyright 2020 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mcp23s08 provides a driver for the Microchip MCP23S08, an 8-bit
// GPIO expander with an SPI interface and two hardware address pins.
//
// Every register access is one SPI transaction: a write is the three bytes
// opcode, register, value; a read sends opcode and register and clocks the
// value back while chip select stays asserted.
//
// The driver keeps a local copy of the direction (IODIR) and output latch
// (OLAT) registers. They are read once when the device is opened and
// afterwards only updated when a write to the chip succeeded.
//
// Two faces are provided. Dev blocks on every transaction. AsyncDev takes a
// context.Context on every operation and lets the caller stop waiting on a
// transaction; a transaction that already started always runs to completion
// on the bus, and a cancelled operation never updates the local copies.
//
// Neither face is safe for concurrent use. A PinIO or AsyncPin is a view on
// its device and shares its state.
//
// # Datasheet
//
// https://ww1.microchip.com/downloads/en/DeviceDoc/MCP23008-MCP23S08-Data-Sheet-20001919F.pdf
package mcp23s08
