// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s08

import "strconv"

// Register is the index of one of the 11 control registers of the device.
type Register uint8

const (
	IODIR   Register = 0x00 // I/O direction, 1 = input
	IPOL    Register = 0x01 // input polarity, 1 = inverted
	GPINTEN Register = 0x02 // interrupt-on-change enable
	DEFVAL  Register = 0x03 // default compare value for interrupt-on-change
	INTCON  Register = 0x04 // interrupt control, 1 = compare against DEFVAL
	IOCON   Register = 0x05 // configuration
	GPPU    Register = 0x06 // 100kΩ pull-up enable
	INTF    Register = 0x07 // interrupt flags, read only
	INTCAP  Register = 0x08 // port value captured at interrupt, read only
	GPIO    Register = 0x09 // port
	OLAT    Register = 0x0A // output latch
)

var registerNames = [...]string{"IODIR", "IPOL", "GPINTEN", "DEFVAL", "INTCON", "IOCON", "GPPU", "INTF", "INTCAP", "GPIO", "OLAT"}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return "Register(0x" + strconv.FormatUint(uint64(r), 16) + ")"
}

// IOCON bits.
const (
	ioconODR    uint8 = 1 << 2 // INT is an open-drain output
	ioconINTPOL uint8 = 1 << 1 // INT is active-high
)

const (
	opcodeBase  byte = 0x40
	opcodeRead  byte = 0x01
	maxHardAddr      = 3
)

// opcode returns the first byte of a transaction. addr must already be
// validated.
func opcode(addr uint8, read bool) byte {
	op := opcodeBase | (addr&0x03)<<1
	if read {
		op |= opcodeRead
	}
	return op
}

// writeFrame returns the bytes of a register write.
func writeFrame(addr uint8, reg Register, value uint8) [3]byte {
	return [3]byte{opcode(addr, false), byte(reg), value}
}

// readCommand returns the bytes sent before the register value is clocked
// back.
func readCommand(addr uint8, reg Register) [2]byte {
	return [2]byte{opcode(addr, true), byte(reg)}
}

// setBits returns v with mask set or cleared.
func setBits(v, mask uint8, set bool) uint8 {
	if set {
		return v | mask
	}
	return v &^ mask
}
