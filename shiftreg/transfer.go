// Copyright 2024 The ShiftRegister Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package shiftreg

import (
	"periph.io/x/conn/v3/gpio"
)

// errorHandler is a wrapper for error management: after the first failing
// pin operation every further call is a no-op and the error is kept.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) out(p gpio.PinOut, l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = p.Out(l)
}

func (eh *errorHandler) in(p gpio.PinIn) {
	if eh.err != nil {
		return
	}
	eh.err = p.In(gpio.PullNoChange, gpio.NoEdge)
}

func (eh *errorHandler) read(p gpio.PinIn) gpio.Level {
	if eh.err != nil {
		return gpio.Low
	}
	return p.Read()
}

// pulseClock advances the chain by one bit. Every bit transferred in either
// direction maps to exactly one pulse.
func (eh *errorHandler) pulseClock() {
	if eh.err != nil {
		return
	}
	eh.out(eh.d.clk, gpio.High)
	sleep(eh.d.clockDelay)
	eh.out(eh.d.clk, gpio.Low)
	sleep(eh.d.clockDelay)
}

// pulseLatch strobes the latch to present a completed serial transfer on
// the parallel output pins.
func (eh *errorHandler) pulseLatch() {
	if eh.err != nil {
		return
	}
	eh.out(eh.d.latch, gpio.High)
	sleep(eh.d.latchDelay)
	eh.out(eh.d.latch, gpio.Low)
}

// shiftOut clocks v out MSB first, one data level and one clock pulse per
// bit. The latch is not touched.
func (eh *errorHandler) shiftOut(v uint64) {
	d := eh.d
	for mask := uint64(1) << (uint(d.Bits()) - 1); mask != 0; mask >>= 1 {
		level := gpio.Level(v&mask != 0)
		if d.invert {
			level = !level
		}
		eh.out(d.dataOut, level)
		eh.pulseClock()
	}
}

// shiftIn samples the chain MSB first into a fresh word, one sample and one
// clock pulse per bit. The caller controls the latch.
func (eh *errorHandler) shiftIn() uint64 {
	d := eh.d
	var v uint64
	for i := 0; i < d.Bits(); i++ {
		v <<= 1
		if eh.read(d.dataIn) {
			v |= 1
		}
		eh.pulseClock()
	}
	return v
}

func (d *Dev) write() error {
	eh := errorHandler{d: d}
	eh.shiftOut(d.out)
	eh.pulseLatch()
	return eh.err
}

func (d *Dev) read() error {
	eh := errorHandler{d: d}
	// Latch high loads the parallel inputs into the shift stage and holds
	// them there while the bits are clocked out.
	eh.out(d.latch, gpio.High)
	v := eh.shiftIn()
	eh.out(d.latch, gpio.Low)
	if eh.err != nil {
		return eh.err
	}
	d.in = v
	return nil
}

func (d *Dev) readWrite() error {
	eh := errorHandler{d: d}
	eh.shiftOut(d.out)
	// On a shared latch line one rising edge does double duty: it commits
	// the just-shifted word to the SIPO register's parallel pins and loads
	// the PISO register's parallel pins into its shift stage. That is a
	// property of the 74HC595+74HC165 pairing, not of this driver; check
	// the latch timing when targeting other chips.
	eh.out(d.latch, gpio.High)
	v := eh.shiftIn()
	eh.out(d.latch, gpio.Low)
	if eh.err != nil {
		return eh.err
	}
	d.in = v
	return nil
}
