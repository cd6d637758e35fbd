// Copyright 2024 The ShiftRegister Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package shiftreg drives chains of cascaded 8 bit shift registers over a
// handful of bit-banged GPIO lines.
//
// Three wirings are supported: Serial-In/Parallel-Out chains (74HC595 and
// friends) for output, Parallel-In/Serial-Out chains (74HC165) for input,
// and hybrid setups where one SIPO and one PISO chain share the clock and
// latch lines and are operated as a single device.
//
// Every transfer is synchronous and bit-banged on the calling goroutine:
// one clock pulse per bit, a latch strobe to commit, with configurable
// microsecond delays on each edge. The driver never touches hardware except
// through the gpio.PinOut/gpio.PinIn pins handed to New, so it runs against
// simulated pins (gpiotest) just as well as against a real GPIO chip.
//
// # Datasheets
//
// https://www.nexperia.com/product/74HC595D
//
// https://www.nexperia.com/product/74HC165D
package shiftreg

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// MaxUnits is the longest supported chain of cascaded 8 bit registers.
const MaxUnits = 8

// DefaultDelay is applied to the clock and latch lines when Opts does not
// say otherwise. It is conservative; see Dev.SetClockDelay for guidance on
// picking a faster or slower value.
const DefaultDelay = 5 * time.Microsecond

// ErrInvalidConfiguration is returned by New when the requested chain
// length or the mode/pin pairing cannot be satisfied. No pin has been
// touched when it is returned.
var ErrInvalidConfiguration = errors.New("shiftreg: invalid configuration")

// sleep is a hook for tests.
var sleep = time.Sleep

// Mode selects which direction Update transfers bits.
type Mode int

const (
	// Input samples a PISO chain into the input buffer.
	Input Mode = iota
	// Output shifts the output buffer out to a SIPO chain.
	Output
	// Hybrid writes the SIPO chain and samples the PISO chain sharing its
	// clock and latch lines, in one Update.
	Hybrid
)

func (m Mode) String() string {
	switch m {
	case Input:
		return "Input"
	case Output:
		return "Output"
	case Hybrid:
		return "Hybrid"
	default:
		return "Unknown"
	}
}

// Opts holds the construction time configuration of a chain.
type Opts struct {
	// Mode selects the transfer direction of Update.
	Mode Mode
	// Units is the number of cascaded 8 bit registers, 1..MaxUnits.
	Units int
	// InitialValue seeds the output buffer. New transfers it immediately,
	// so the parallel outputs are in a known state as soon as New returns.
	// Bits beyond the chain width are dropped. Ignored by Input devices.
	InitialValue uint64
	// ClockDelay is the hold time after each clock edge. 0 picks
	// DefaultDelay.
	ClockDelay time.Duration
	// LatchDelay is the hold time of the latch strobe. 0 picks
	// DefaultDelay.
	LatchDelay time.Duration
	// InvertOutput drives the complement of every output bit, for
	// active-low loads such as the HW-316 relay board.
	InvertOutput bool

	_ struct{}
}

// Dev is a handle to one physical chain of shift registers.
//
// Dev performs no internal locking and a transfer in progress always runs
// to completion. Callers polling one chain from multiple goroutines must
// serialize access themselves. Two Dev instances must never share a clock
// or latch line; a hybrid topology is one Dev in Hybrid mode, not two.
type Dev struct {
	clk     gpio.PinOut
	latch   gpio.PinOut
	dataOut gpio.PinOut
	dataIn  gpio.PinIn

	mode       Mode
	units      int
	clockDelay time.Duration
	latchDelay time.Duration
	invert     bool

	out uint64
	in  uint64
}

// New returns a driver for the chain behind the given pins.
//
// dataOut may be nil for an Input device and dataIn may be nil for an
// Output device; a Hybrid device needs both. The configuration is validated
// before any pin is touched. clk and latch are configured as outputs driven
// low, dataOut as an output driven low, dataIn as an input. New finishes
// with one Update, so an Output chain presents Opts.InitialValue and an
// Input chain has its first sample ready when New returns.
func New(clk, latch, dataOut gpio.PinOut, dataIn gpio.PinIn, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{Mode: Output, Units: 1}
	}
	if opts.Units < 1 || opts.Units > MaxUnits {
		return nil, fmt.Errorf("%w: %d units, want 1..%d", ErrInvalidConfiguration, opts.Units, MaxUnits)
	}
	if clk == nil || latch == nil {
		return nil, fmt.Errorf("%w: clock and latch lines are required", ErrInvalidConfiguration)
	}
	switch opts.Mode {
	case Output:
		if dataOut == nil {
			return nil, fmt.Errorf("%w: %s mode needs a data-out line", ErrInvalidConfiguration, opts.Mode)
		}
	case Input:
		if dataIn == nil {
			return nil, fmt.Errorf("%w: %s mode needs a data-in line", ErrInvalidConfiguration, opts.Mode)
		}
	case Hybrid:
		if dataOut == nil || dataIn == nil {
			return nil, fmt.Errorf("%w: %s mode needs both data lines", ErrInvalidConfiguration, opts.Mode)
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidConfiguration, int(opts.Mode))
	}

	d := &Dev{
		clk:        clk,
		latch:      latch,
		dataOut:    dataOut,
		dataIn:     dataIn,
		mode:       opts.Mode,
		units:      opts.Units,
		clockDelay: opts.ClockDelay,
		latchDelay: opts.LatchDelay,
		invert:     opts.InvertOutput,
	}
	if d.clockDelay == 0 {
		d.clockDelay = DefaultDelay
	}
	if d.latchDelay == 0 {
		d.latchDelay = DefaultDelay
	}
	d.SetOutput(opts.InitialValue)

	eh := errorHandler{d: d}
	eh.out(d.clk, gpio.Low)
	eh.out(d.latch, gpio.Low)
	if d.dataOut != nil {
		eh.out(d.dataOut, gpio.Low)
	}
	if d.dataIn != nil {
		eh.in(d.dataIn)
	}
	if eh.err != nil {
		return nil, eh.err
	}
	if err := d.Update(); err != nil {
		return nil, err
	}
	return d, nil
}

// Update performs one full transfer according to the device mode: it shifts
// the output buffer out, samples the chain into the input buffer, or both.
func (d *Dev) Update() error {
	switch d.mode {
	case Input:
		return d.read()
	case Output:
		return d.write()
	default:
		return d.readWrite()
	}
}

// Write replaces the output buffer and transfers it in one call.
func (d *Dev) Write(v uint64) error {
	d.SetOutput(v)
	return d.Update()
}

// Read performs one transfer and returns the freshly sampled input word.
// On an Output device it behaves like Update and returns 0.
func (d *Dev) Read() (uint64, error) {
	if err := d.Update(); err != nil {
		return 0, err
	}
	return d.in, nil
}

// Fill clocks the same level out for every bit of the chain and latches it.
// It is a quick way to zero or saturate the parallel outputs; the output
// buffer is left untouched, so the next Update restores it. The level is
// driven as-is, InvertOutput does not apply.
func (d *Dev) Fill(level gpio.Level) error {
	if d.dataOut == nil {
		return fmt.Errorf("%w: no data-out line to fill through", ErrInvalidConfiguration)
	}
	eh := errorHandler{d: d}
	for i := 0; i < d.Bits(); i++ {
		eh.out(d.dataOut, level)
		eh.pulseClock()
	}
	eh.pulseLatch()
	return eh.err
}

// SetOutput replaces the output buffer without transferring it; the next
// Update sends it. Bits beyond the chain width are dropped.
func (d *Dev) SetOutput(v uint64) {
	d.out = v & d.mask()
}

// Output returns the word the next Update will transfer.
func (d *Dev) Output() uint64 {
	return d.out
}

// Input returns the word sampled by the most recent Update, MSB first in
// sampling order.
func (d *Dev) Input() uint64 {
	return d.in
}

// SetClockDelay adjusts the hold time after each clock edge. 1µs suits fast
// registers such as the PISO chain inside 8 bit game controllers; devices
// with slow latches, HD44780 class display controllers for instance, need
// around 50µs.
func (d *Dev) SetClockDelay(t time.Duration) {
	d.clockDelay = t
}

// ClockDelay returns the hold time applied after each clock edge.
func (d *Dev) ClockDelay() time.Duration {
	return d.clockDelay
}

// SetLatchDelay adjusts the hold time of the latch strobe.
func (d *Dev) SetLatchDelay(t time.Duration) {
	d.latchDelay = t
}

// LatchDelay returns the hold time of the latch strobe.
func (d *Dev) LatchDelay() time.Duration {
	return d.latchDelay
}

// SetInvertOutput selects whether output bits are driven complemented.
func (d *Dev) SetInvertOutput(invert bool) {
	d.invert = invert
}

// InvertOutput reports whether output bits are driven complemented.
func (d *Dev) InvertOutput() bool {
	return d.invert
}

// Mode returns the transfer direction the device was built for.
func (d *Dev) Mode() Mode {
	return d.mode
}

// Units returns the number of cascaded 8 bit registers.
func (d *Dev) Units() int {
	return d.units
}

// Bits returns the chain width in bits.
func (d *Dev) Bits() int {
	return d.units * 8
}

// Halt de-asserts every parallel output, honoring InvertOutput. Input
// chains are left as-is. Implements conn.Resource.
func (d *Dev) Halt() error {
	if d.dataOut == nil {
		return nil
	}
	return d.Fill(gpio.Level(d.invert))
}

func (d *Dev) String() string {
	return fmt.Sprintf("shiftreg.Dev{%s, %d bits}", d.mode, d.Bits())
}

func (d *Dev) mask() uint64 {
	return ^uint64(0) >> (64 - uint(d.Bits()))
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
