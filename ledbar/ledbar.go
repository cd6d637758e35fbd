// Copyright 2024 The ShiftRegister Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ledbar renders the parallel outputs of a shift register chain as
// a row of colored cells on an ANSI terminal (stdout).
//
// Useful to watch relay or LED states on the bench while the real hardware
// is still in the mail: feed it the same word you feed the chain.
package ledbar

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
)

// Opts represents the options available for this display.
type Opts struct {
	// Bits is the number of cells, rendered most significant bit first so
	// the row reads like the binary value.
	Bits int
	// Palette used to map cell colors to terminal codes. nil picks the
	// default.
	Palette *ansi256.Palette
	// On and Off are the cell colors for set and cleared bits. Zero values
	// pick green and a dim gray.
	On, Off color.NRGBA
	// W receives the escape sequences. nil picks stdout.
	W io.Writer

	_ struct{}
}

// Dev is a shift register output emulator that draws to the console.
type Dev struct {
	w       io.Writer
	bits    int
	palette ansi256.Palette
	on, off color.NRGBA
	buf     bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	on := opts.On
	if on == (color.NRGBA{}) {
		on = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
	}
	off := opts.Off
	if off == (color.NRGBA{}) {
		off = color.NRGBA{R: 48, G: 48, B: 48, A: 255}
	}
	return &Dev{w: w, bits: opts.Bits, palette: *p, on: on, off: off}
}

func (d *Dev) String() string {
	return "LEDBar"
}

// Halt implements conn.Resource.
//
// It resets the terminal state so the shell prompt is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Show redraws the row from the low Bits bits of value, MSB first.
func (d *Dev) Show(value uint64) error {
	// This code is designed to minimize the amount of memory allocated per
	// call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := d.bits - 1; i >= 0; i-- {
		c := d.off
		if value&(uint64(1)<<uint(i)) != 0 {
			c = d.on
		}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ fmt.Stringer = &Dev{}
