// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s08

import (
	"context"
	"fmt"
	"strconv"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Polarity is the input polarity of a pin.
type Polarity bool

const (
	Normal   Polarity = false
	Inverted Polarity = true
)

// InterruptMode selects what an enabled pin is compared against to raise an
// interrupt.
type InterruptMode bool

const (
	// OnChange compares the pin against its previous value.
	OnChange InterruptMode = false
	// CompareToDefault compares the pin against the DEFVAL register.
	CompareToDefault InterruptMode = true
)

// Opts holds the settings used by NewSPI and NewAsyncSPI.
type Opts struct {
	// Address is the hardware address wired on the A1 and A0 pins, 0 to 3.
	Address uint8
	// Frequency is the SPI clock. The device supports up to 10MHz.
	Frequency physic.Frequency
	// Mode is the SPI mode. The device supports Mode0 and Mode3.
	Mode spi.Mode
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Address:   0,
	Frequency: 10 * physic.MegaHertz,
	Mode:      spi.Mode0,
}

// Dev is a handle to an MCP23S08 whose operations block until the bus
// transaction completed.
type Dev struct {
	c *core
}

// New opens the device at hardware address addr on c. c must be the
// connection of the device's chip select.
//
// It resets IOCON to its power-on value and reads IODIR and OLAT.
func New(c conn.Conn, addr uint8) (*Dev, error) {
	cr, err := newCore(context.Background(), blocking{c: c}, addr)
	if err != nil {
		return nil, err
	}
	return &Dev{c: cr}, nil
}

// NewSPI connects to p and opens the device. If opts is nil, DefaultOpts is
// used.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	c, err := connect(p, opts)
	if err != nil {
		return nil, err
	}
	return New(c, addressOf(opts))
}

func addressOf(opts *Opts) uint8 {
	if opts == nil {
		return DefaultOpts.Address
	}
	return opts.Address
}

// connect validates opts before any I/O and connects to the port.
func connect(p spi.Port, opts *Opts) (spi.Conn, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Address > maxHardAddr {
		return nil, ErrInvalidAddress
	}
	f := opts.Frequency
	if f == 0 {
		f = DefaultOpts.Frequency
	}
	c, err := p.Connect(f, opts.Mode, 8)
	if err != nil {
		return nil, fmt.Errorf("mcp23s08: %w", err)
	}
	return c, nil
}

// String returns the device name and its hardware address.
func (d *Dev) String() string {
	return devName(d.c.addr)
}

func devName(addr uint8) string {
	return "MCP23S08_" + strconv.Itoa(int(addr))
}

// Halt implements conn.Resource. It doesn't touch the device; pins keep
// their configuration.
func (d *Dev) Halt() error {
	return nil
}

// Release detaches the connection from the device and returns it. No
// transaction is issued and the device is left as is. Every later operation
// returns ErrReleased.
func (d *Dev) Release() conn.Conn {
	return d.c.release()
}

// Direction returns the last IODIR value written or read at open. A bit set
// to 1 is an input. No transaction is issued.
func (d *Dev) Direction() uint8 {
	return d.c.iodir
}

// Latch returns the last output latch value written or read at open. No
// transaction is issued.
func (d *Dev) Latch() uint8 {
	return d.c.olat
}

// SetPinDirection configures p as an input or an output.
func (d *Dev) SetPinDirection(p Pin, input bool) error {
	return d.c.setPinDirection(context.Background(), p, input)
}

// SetPortDirection writes IODIR. A bit set to 1 is an input.
func (d *Dev) SetPortDirection(mask uint8) error {
	return d.c.setPortDirection(context.Background(), mask)
}

// SetPinPullUp enables or disables the 100kΩ pull-up of p.
func (d *Dev) SetPinPullUp(p Pin, enable bool) error {
	return d.c.modifyPin(context.Background(), GPPU, p, enable)
}

// SetPortPullUps writes GPPU.
func (d *Dev) SetPortPullUps(mask uint8) error {
	return d.c.write(context.Background(), GPPU, mask)
}

// SetPinPolarity sets the input polarity of p.
func (d *Dev) SetPinPolarity(p Pin, pol Polarity) error {
	return d.c.setPinPolarity(context.Background(), p, pol)
}

// SetPortPolarity writes IPOL. A bit set to 1 inverts the input.
func (d *Dev) SetPortPolarity(mask uint8) error {
	return d.c.write(context.Background(), IPOL, mask)
}

// ReadPort returns the level of the 8 pins.
func (d *Dev) ReadPort() (uint8, error) {
	return d.c.read(context.Background(), GPIO)
}

// ReadPin returns true if p reads high.
func (d *Dev) ReadPin(p Pin) (bool, error) {
	return d.c.readPin(context.Background(), p)
}

// WritePort writes value to the port.
func (d *Dev) WritePort(value uint8) error {
	return d.c.writePort(context.Background(), value)
}

// WritePin sets the output of p and leaves the other pins as last written.
func (d *Dev) WritePin(p Pin, high bool) error {
	return d.c.writePin(context.Background(), p, high)
}

// WriteLatch writes OLAT directly.
func (d *Dev) WriteLatch(value uint8) error {
	return d.c.writeLatch(context.Background(), value)
}

// SetPinInterruptEnable enables or disables interrupt-on-change for p.
func (d *Dev) SetPinInterruptEnable(p Pin, enable bool) error {
	return d.c.modifyPin(context.Background(), GPINTEN, p, enable)
}

// SetPortInterruptEnable writes GPINTEN.
func (d *Dev) SetPortInterruptEnable(mask uint8) error {
	return d.c.write(context.Background(), GPINTEN, mask)
}

// SetPinInterruptMode selects the interrupt comparison of p.
func (d *Dev) SetPinInterruptMode(p Pin, mode InterruptMode) error {
	return d.c.setPinInterruptMode(context.Background(), p, mode)
}

// SetPortInterruptMode writes INTCON. A bit set to 1 compares against DEFVAL.
func (d *Dev) SetPortInterruptMode(mask uint8) error {
	return d.c.write(context.Background(), INTCON, mask)
}

// SetDefaultCompare writes DEFVAL.
func (d *Dev) SetDefaultCompare(value uint8) error {
	return d.c.write(context.Background(), DEFVAL, value)
}

// InterruptFlags returns INTF, the pins that caused the pending interrupt.
func (d *Dev) InterruptFlags() (uint8, error) {
	return d.c.read(context.Background(), INTF)
}

// InterruptCapture returns INTCAP, the port captured when the interrupt
// occurred.
func (d *Dev) InterruptCapture() (uint8, error) {
	return d.c.read(context.Background(), INTCAP)
}

// ClearInterrupts reads the port, which clears the pending interrupt, and
// returns the value read.
func (d *Dev) ClearInterrupts() (uint8, error) {
	return d.c.read(context.Background(), GPIO)
}

// SetInterruptOpenDrain configures the INT output as open-drain. When
// disabled, INT is push-pull with the polarity set by SetInterruptPolarity.
func (d *Dev) SetInterruptOpenDrain(enable bool) error {
	return d.c.modify(context.Background(), IOCON, ioconODR, enable)
}

// SetInterruptPolarity configures the INT output as active-high or
// active-low.
func (d *Dev) SetInterruptPolarity(activeHigh bool) error {
	return d.c.modify(context.Background(), IOCON, ioconINTPOL, activeHigh)
}

// Pin returns a view of pin p. The view shares the device state and must not
// be used concurrently with the device.
func (d *Dev) Pin(p Pin) *PinIO {
	return &PinIO{dev: d, pin: p}
}

// Pins returns a view of each of the 8 pins.
func (d *Dev) Pins() []*PinIO {
	pins := make([]*PinIO, NumPins)
	for i := range pins {
		pins[i] = d.Pin(Pin(i))
	}
	return pins
}

var _ conn.Resource = &Dev{}
var _ gpio.PinIO = &PinIO{}
