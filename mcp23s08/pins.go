// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s08

import (
	"context"
	"log"
	"strconv"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// Pin identifies one of the GP0 to GP7 pins of the device.
type Pin uint8

const (
	P0 Pin = iota
	P1
	P2
	P3
	P4
	P5
	P6
	P7

	// NumPins is the number of pins of the device.
	NumPins = 8
)

// Mask returns the bit of p in a port value.
func (p Pin) Mask() uint8 {
	return 1 << p
}

func (p Pin) String() string {
	return "GP" + strconv.Itoa(int(p))
}

func (p Pin) valid() bool {
	return p < NumPins
}

// PinIO is a single pin of a Dev. It implements gpio.PinIO.
//
// Out and the Set methods only drive the output latch; configure the pin as
// an output first with SetFunc(gpio.OUT) or Dev.SetPinDirection.
type PinIO struct {
	dev *Dev
	pin Pin
}

// SetHigh drives the pin high.
func (p *PinIO) SetHigh() error {
	return p.dev.WritePin(p.pin, true)
}

// SetLow drives the pin low.
func (p *PinIO) SetLow() error {
	return p.dev.WritePin(p.pin, false)
}

// IsHigh reads the pin.
func (p *PinIO) IsHigh() (bool, error) {
	return p.dev.ReadPin(p.pin)
}

// IsLow reads the pin.
func (p *PinIO) IsLow() (bool, error) {
	high, err := p.dev.ReadPin(p.pin)
	if err != nil {
		return false, err
	}
	return !high, nil
}

// IsSetHigh returns true if the pin was last driven high. It reflects the
// last successful write, not the level on the pin, and issues no
// transaction.
func (p *PinIO) IsSetHigh() bool {
	return p.dev.c.olat&p.pin.Mask() != 0
}

// IsSetLow returns true if the pin was last driven low. No transaction is
// issued.
func (p *PinIO) IsSetLow() bool {
	return !p.IsSetHigh()
}

// Toggle reads the pin and drives the opposite level.
func (p *PinIO) Toggle() error {
	return p.dev.c.toggle(context.Background(), p.pin)
}

// SetPolarityInverted inverts the value read on the pin.
func (p *PinIO) SetPolarityInverted(inverted bool) error {
	return p.dev.SetPinPolarity(p.pin, Polarity(inverted))
}

// IsPolarityInverted returns true if the value read on the pin is inverted.
func (p *PinIO) IsPolarityInverted() (bool, error) {
	v, err := p.dev.c.read(context.Background(), IPOL)
	return v&p.pin.Mask() != 0, err
}

func (p *PinIO) String() string {
	return p.Name()
}

// Halt sets the pin to a floating input.
func (p *PinIO) Halt() error {
	return p.In(gpio.Float, gpio.NoEdge)
}

func (p *PinIO) Name() string {
	return p.dev.String() + "_" + p.pin.String()
}

func (p *PinIO) Number() int {
	return int(p.pin)
}

// Deprecated: Use Func.
func (p *PinIO) Function() string {
	return string(p.Func())
}

func (p *PinIO) Func() pin.Func {
	if p.dev.c.iodir&p.pin.Mask() != 0 {
		return gpio.IN
	}
	return gpio.OUT
}

func (p *PinIO) SupportedFuncs() []pin.Func {
	return supportedFuncs[:]
}

func (p *PinIO) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.dev.SetPinDirection(p.pin, true)
	case gpio.OUT:
		return p.dev.SetPinDirection(p.pin, false)
	default:
		return errInvalidFunc
	}
}

// In configures the pin as an input. gpio.PullUp enables the internal
// pull-up and gpio.Float disables it. Edge detection requires the INT line
// and isn't supported here.
func (p *PinIO) In(pull gpio.Pull, edge gpio.Edge) error {
	if pull == gpio.PullDown {
		return errPullDown
	}
	if edge != gpio.NoEdge {
		return errEdge
	}
	if err := p.dev.SetPinDirection(p.pin, true); err != nil {
		return err
	}
	switch pull {
	case gpio.PullUp:
		return p.dev.SetPinPullUp(p.pin, true)
	case gpio.Float:
		return p.dev.SetPinPullUp(p.pin, false)
	}
	return nil
}

// Read returns the level of the pin. A bus error is logged and reads as Low.
func (p *PinIO) Read() gpio.Level {
	high, err := p.dev.ReadPin(p.pin)
	if err != nil {
		log.Println(err)
		return gpio.Low
	}
	return gpio.Level(high)
}

func (p *PinIO) WaitForEdge(timeout time.Duration) bool {
	return false
}

// Pull reads GPPU. A bus error is logged and returns gpio.PullNoChange.
func (p *PinIO) Pull() gpio.Pull {
	v, err := p.dev.c.read(context.Background(), GPPU)
	if err != nil {
		log.Println(err)
		return gpio.PullNoChange
	}
	if v&p.pin.Mask() != 0 {
		return gpio.PullUp
	}
	return gpio.Float
}

func (p *PinIO) DefaultPull() gpio.Pull {
	return gpio.Float
}

func (p *PinIO) Out(l gpio.Level) error {
	return p.dev.WritePin(p.pin, bool(l))
}

func (p *PinIO) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errPWM
}

var supportedFuncs = [...]pin.Func{gpio.IN, gpio.OUT}

// AsyncPin is a single pin of an AsyncDev.
type AsyncPin struct {
	dev *AsyncDev
	pin Pin
}

// SetHigh drives the pin high.
func (p *AsyncPin) SetHigh(ctx context.Context) error {
	return p.dev.WritePin(ctx, p.pin, true)
}

// SetLow drives the pin low.
func (p *AsyncPin) SetLow(ctx context.Context) error {
	return p.dev.WritePin(ctx, p.pin, false)
}

// IsHigh reads the pin.
func (p *AsyncPin) IsHigh(ctx context.Context) (bool, error) {
	return p.dev.ReadPin(ctx, p.pin)
}

// IsLow reads the pin.
func (p *AsyncPin) IsLow(ctx context.Context) (bool, error) {
	high, err := p.dev.ReadPin(ctx, p.pin)
	if err != nil {
		return false, err
	}
	return !high, nil
}

// IsSetHigh returns true if the pin was last driven high. No transaction is
// issued.
func (p *AsyncPin) IsSetHigh() bool {
	return p.dev.c.olat&p.pin.Mask() != 0
}

// IsSetLow returns true if the pin was last driven low. No transaction is
// issued.
func (p *AsyncPin) IsSetLow() bool {
	return !p.IsSetHigh()
}

// Toggle reads the pin and drives the opposite level.
func (p *AsyncPin) Toggle(ctx context.Context) error {
	return p.dev.c.toggle(ctx, p.pin)
}

func (p *AsyncPin) String() string {
	return devName(p.dev.c.addr) + "_" + p.pin.String()
}
