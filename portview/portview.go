// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package portview renders the pins of a GPIO expander port on a terminal
// (stdout) using ANSI color codes.
//
// Useful on the bench to watch what the expander is doing without a logic
// analyzer.
package portview

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Source is an 8 pin port. *mcp23s08.Dev implements it.
type Source interface {
	fmt.Stringer
	// Direction returns the configured direction, 1 is an input. It must not
	// do I/O.
	Direction() uint8
	// Latch returns the last value written to the outputs. It must not do I/O.
	Latch() uint8
	// ReadPort reads the pins.
	ReadPort() (uint8, error)
}

// Opts represents the options available for the view.
type Opts struct {
	Palette *ansi256.Palette
	// Colors used for each pin state. The zero value selects the default.
	OutHigh color.NRGBA
	OutLow  color.NRGBA
	InHigh  color.NRGBA
	InLow   color.NRGBA

	_ struct{}
}

// DefaultOpts renders outputs in red and inputs in green.
var DefaultOpts = Opts{
	OutHigh: color.NRGBA{R: 0xff, A: 0xff},
	OutLow:  color.NRGBA{R: 0x40, A: 0xff},
	InHigh:  color.NRGBA{G: 0xff, A: 0xff},
	InLow:   color.NRGBA{G: 0x40, A: 0xff},
}

// Dev renders a Source on a terminal. Pin 0 is the leftmost block.
type Dev struct {
	src     Source
	w       io.Writer
	palette ansi256.Palette
	colors  [4]color.NRGBA

	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(src Source, opts *Opts) *Dev {
	return NewWriter(colorable.NewColorableStdout(), src, opts)
}

// NewWriter returns a Dev that writes to w.
func NewWriter(w io.Writer, src Source, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Dev{src: src, w: w, palette: *p}
	for i, c := range [...]color.NRGBA{opts.OutLow, opts.OutHigh, opts.InLow, opts.InHigh} {
		if c == (color.NRGBA{}) {
			c = [...]color.NRGBA{DefaultOpts.OutLow, DefaultOpts.OutHigh, DefaultOpts.InLow, DefaultOpts.InHigh}[i]
		}
		d.colors[i] = c
	}
	return d
}

func (d *Dev) String() string {
	return "PortView(" + d.src.String() + ")"
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes and moves to the next line.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Refresh redraws the port on the current line. Outputs are drawn from the
// latch; inputs cost one port read, skipped when no pin is an input.
func (d *Dev) Refresh() error {
	dir := d.src.Direction()
	levels := d.src.Latch() &^ dir
	if dir != 0 {
		in, err := d.src.ReadPort()
		if err != nil {
			return err
		}
		levels |= in & dir
	}
	return d.render(dir, levels)
}

func (d *Dev) render(dir, levels uint8) error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < 8; i++ {
		m := uint8(1) << i
		ix := 0
		if dir&m != 0 {
			ix += 2
		}
		if levels&m != 0 {
			ix++
		}
		_, _ = io.WriteString(&d.buf, d.palette.Block(d.colors[ix]))
	}
	_, _ = fmt.Fprintf(&d.buf, "\033[0m dir=0x%02x pins=0x%02x ", dir, levels)
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ fmt.Stringer = &Dev{}
