// Copyright 2024 The ShiftRegister Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package relayboard exposes the parallel outputs of a SIPO shift register
// chain as numbered relay channels.
//
// Boards whose relays energize on a low input, the common HW-316 modules
// for instance, are handled by driving every level inverted: set
// Opts.ActiveLow and the package takes care of it.
//
// Channel 1 maps to output Q0 of the register closest to the host, channel
// 8 to its Q7, channel 9 to Q0 of the next register in the chain, and so
// on.
package relayboard

import (
	"errors"
	"fmt"

	"github.com/mjklaren/shiftregister/shiftreg"
)

var (
	errNoOutput       = errors.New("relayboard: shift register cannot drive outputs")
	errInvalidChannel = errors.New("relayboard: invalid channel")
)

// Opts holds the board configuration.
type Opts struct {
	// ActiveLow inverts every driven level, for boards whose relays
	// energize on a low input.
	ActiveLow bool
}

// Dev is a handle to one relay board.
type Dev struct {
	reg *shiftreg.Dev
}

// New wraps an Output or Hybrid mode chain as a relay board and switches
// every channel off.
//
// With ActiveLow the chain's construction transfer happens before the
// inversion takes effect; build the chain with shiftreg.Opts.InvertOutput
// set to keep the relays released from the very first transfer.
func New(reg *shiftreg.Dev, opts *Opts) (*Dev, error) {
	if reg.Mode() == shiftreg.Input {
		return nil, errNoOutput
	}
	if opts != nil && opts.ActiveLow {
		reg.SetInvertOutput(true)
	}
	d := &Dev{reg: reg}
	if err := d.Reset(); err != nil {
		return nil, err
	}
	return d, nil
}

// Channels returns the number of relay channels on the chain.
func (d *Dev) Channels() int {
	return d.reg.Bits()
}

// On energizes a channel. Channels are numbered 1..Channels().
func (d *Dev) On(channel int) error {
	return d.set(channel, true)
}

// Off de-energizes a channel.
func (d *Dev) Off(channel int) error {
	return d.set(channel, false)
}

// State reports whether a channel is currently energized.
func (d *Dev) State(channel int) (bool, error) {
	if channel < 1 || channel > d.Channels() {
		return false, errInvalidChannel
	}
	return d.reg.Output()&d.bit(channel) != 0, nil
}

// Reset de-energizes every channel.
func (d *Dev) Reset() error {
	return d.reg.Write(0)
}

// Halt de-energizes every channel. Implements conn.Resource.
func (d *Dev) Halt() error {
	return d.Reset()
}

func (d *Dev) String() string {
	return fmt.Sprintf("relayboard.Dev{%d channels}", d.Channels())
}

func (d *Dev) set(channel int, on bool) error {
	if channel < 1 || channel > d.Channels() {
		return errInvalidChannel
	}
	v := d.reg.Output()
	if on {
		v |= d.bit(channel)
	} else {
		v &^= d.bit(channel)
	}
	return d.reg.Write(v)
}

func (d *Dev) bit(channel int) uint64 {
	return uint64(1) << uint(channel-1)
}
