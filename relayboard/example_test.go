// Copyright 2024 The ShiftRegister Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package relayboard_test

import (
	"log"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/mjklaren/shiftregister/relayboard"
	"github.com/mjklaren/shiftregister/shiftreg"
)

// Cycle the channels of an HW-316 style active-low relay board behind a
// single 74HC595.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	reg, err := shiftreg.New(
		gpioreg.ByName("GPIO2"),
		gpioreg.ByName("GPIO4"),
		gpioreg.ByName("GPIO3"),
		nil,
		&shiftreg.Opts{Mode: shiftreg.Output, Units: 1},
	)
	if err != nil {
		log.Fatal(err)
	}

	board, err := relayboard.New(reg, &relayboard.Opts{ActiveLow: true})
	if err != nil {
		log.Fatal(err)
	}
	defer board.Halt()

	for channel := 1; channel <= board.Channels(); channel++ {
		if err := board.On(channel); err != nil {
			log.Fatal(err)
		}
		time.Sleep(500 * time.Millisecond)
		if err := board.Off(channel); err != nil {
			log.Fatal(err)
		}
	}
}
