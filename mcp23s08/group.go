// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s08

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
)

// The internal structure for a group of pins.
type pinGroup struct {
	dev         *Dev
	pins        []*PinIO
	defaultMask gpio.GPIOValue
}

// Group returns a gpio.Group that is made up of the specified pins. Bit 0 of
// the group values is the first pin. It returns nil if a pin is invalid.
func (d *Dev) Group(pins ...Pin) gpio.Group {
	grouppins := make([]*PinIO, len(pins))
	for ix, p := range pins {
		if !p.valid() {
			return nil
		}
		grouppins[ix] = d.Pin(p)
	}
	defMask := gpio.GPIOValue((1 << len(pins)) - 1)
	return &pinGroup{dev: d, pins: grouppins, defaultMask: defMask}
}

// Pins returns the set of pin.Pin that make up that group.
func (pg *pinGroup) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(pg.pins))
	for ix, p := range pg.pins {
		pins[ix] = p
	}
	return pins
}

// Given the offset within the group, return the corresponding GPIO pin.
func (pg *pinGroup) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(pg.pins) {
		return nil
	}
	return pg.pins[offset]
}

// Given the specific name of a pin, return it. If it can't be found, nil is
// returned.
func (pg *pinGroup) ByName(name string) pin.Pin {
	for _, p := range pg.pins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// Given the GPIO pin number, return that pin from the set.
func (pg *pinGroup) ByNumber(number int) pin.Pin {
	for _, p := range pg.pins {
		if p.Number() == number {
			return p
		}
	}
	return nil
}

// portMask converts a group mask into a port mask.
func (pg *pinGroup) portMask(mask gpio.GPIOValue) uint8 {
	var m uint8
	for bit, p := range pg.pins {
		if mask&(1<<bit) != 0 {
			m |= p.pin.Mask()
		}
	}
	return m
}

func (pg *pinGroup) mask(mask gpio.GPIOValue) gpio.GPIOValue {
	if mask == 0 {
		return pg.defaultMask
	}
	return mask & pg.defaultMask
}

// Out writes value to the specified pins of the group. If mask is 0, the
// default mask of all pins in the group is used. Pins that are inputs are
// switched to outputs first.
func (pg *pinGroup) Out(value, mask gpio.GPIOValue) error {
	mask = pg.mask(mask)
	wrMask := pg.portMask(mask)
	wr := pg.portMask(value & mask)
	c := pg.dev.c
	ctx := context.Background()
	if c.iodir&wrMask != 0 {
		if err := c.setPortDirection(ctx, c.iodir&^wrMask); err != nil {
			return err
		}
	}
	return c.writePort(ctx, (c.olat&^wrMask)|wr)
}

// Read returns the state of the pins of the group selected by mask. Pins
// that are outputs are switched to inputs first.
func (pg *pinGroup) Read(mask gpio.GPIOValue) (result gpio.GPIOValue, err error) {
	mask = pg.mask(mask)
	rmask := pg.portMask(mask)
	c := pg.dev.c
	ctx := context.Background()
	if c.iodir&rmask != rmask {
		if err = c.setPortDirection(ctx, c.iodir|rmask); err != nil {
			return
		}
	}
	v, err := c.read(ctx, GPIO)
	if err != nil {
		return
	}
	for ix, p := range pg.pins {
		if mask&(1<<ix) != 0 && v&p.pin.Mask() != 0 {
			result |= 1 << ix
		}
	}
	return
}

// WaitForEdge is not implemented. The device signals changes on its INT pin,
// which must be wired to a host GPIO and watched by the caller.
func (pg *pinGroup) WaitForEdge(timeout time.Duration) (number int, edge gpio.Edge, err error) {
	return -1, gpio.NoEdge, gpio.ErrGroupFeatureNotImplemented
}

// Halt is a no-op; there is no pending WaitForEdge to interrupt.
func (pg *pinGroup) Halt() error {
	return nil
}

// String returns the device name and configured pins for the group.
func (pg *pinGroup) String() string {
	s := fmt.Sprintf("%s - [ ", pg.dev)
	for _, p := range pg.pins {
		s += fmt.Sprintf("%d ", p.Number())
	}
	s += "]"
	return s
}

var _ gpio.Group = &pinGroup{}
