// Copyright 2024 The ShiftRegister Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gamepad8 polls generic 8 bit game controllers with a DE9 serial
// connector. These controllers are a single PISO shift register behind
// three lines, so the package wraps a one-unit Input mode shiftreg.Dev with
// a fast clock preset.
//
// # Wiring
//
//	host               DE9 connector
//	====               =============
//	data  ------------ (2)
//	latch ------------ (3)
//	clock ------------ (4)
//	                   (6) --- +5V
//	                   (8) --- Ground
//
// The controller reports one key at a time; with several keys held only the
// first one registers. While a key stays down the controller returns
// KeyHeld, and on release it returns a key specific release value (UpReleased
// and so on; the value for a Right release is unknown and most likely
// collides with KeyHeld). A or B presses both read as AB; only the release
// value tells the two apart. For low speed use, polling every 100ms or so is
// plenty.
package gamepad8

import (
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/mjklaren/shiftregister/shiftreg"
)

// Key is a raw value polled from the controller. The meaning of each value
// is fixed by the controller hardware, not by this package.
type Key byte

const (
	NoKey          Key = 255
	KeyHeld        Key = 0
	Up             Key = 240
	UpReleased     Key = 7
	Down           Key = 248
	DownReleased   Key = 3
	Left           Key = 252
	LeftReleased   Key = 1
	Right          Key = 254
	Select         Key = 192
	SelectReleased Key = 31
	Start          Key = 224
	StartReleased  Key = 15
	AB             Key = 128
	AReleased      Key = 63
	BReleased      Key = 127
)

func (k Key) String() string {
	switch k {
	case NoKey:
		return "none"
	case KeyHeld:
		return "held"
	case Up:
		return "up"
	case UpReleased:
		return "up released"
	case Down:
		return "down"
	case DownReleased:
		return "down released"
	case Left:
		return "left"
	case LeftReleased:
		return "left released"
	case Right:
		return "right"
	case Select:
		return "select"
	case SelectReleased:
		return "select released"
	case Start:
		return "start"
	case StartReleased:
		return "start released"
	case AB:
		return "a or b"
	case AReleased:
		return "a released"
	case BReleased:
		return "b released"
	default:
		return "unknown"
	}
}

// The register inside these controllers is fast; 1µs holds are enough.
const delay = time.Microsecond

// Dev is a handle to one controller.
type Dev struct {
	reg  *shiftreg.Dev
	last Key
	prev Key
}

// New returns a poller for the controller behind the given lines.
func New(clk, latch gpio.PinOut, data gpio.PinIn) (*Dev, error) {
	reg, err := shiftreg.New(clk, latch, nil, data, &shiftreg.Opts{
		Mode:       shiftreg.Input,
		Units:      1,
		ClockDelay: delay,
		LatchDelay: delay,
	})
	if err != nil {
		return nil, err
	}
	d := &Dev{reg: reg}
	// New already sampled the controller once.
	d.last = Key(reg.Input())
	d.prev = d.last
	return d, nil
}

// Poll samples the controller once and returns the raw value.
func (d *Dev) Poll() (Key, error) {
	v, err := d.reg.Read()
	if err != nil {
		return 0, err
	}
	d.prev = d.last
	d.last = Key(v)
	return d.last, nil
}

// Last returns the most recent poll without touching the hardware.
func (d *Dev) Last() Key {
	return d.last
}

// Changed reports whether the last poll differed from the one before it.
func (d *Dev) Changed() bool {
	return d.last != d.prev
}

// Halt implements conn.Resource.
func (d *Dev) Halt() error {
	return d.reg.Halt()
}

func (d *Dev) String() string {
	return "gamepad8.Dev{" + d.reg.String() + "}"
}
