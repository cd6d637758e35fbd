// Copyright 2024 The ShiftRegister Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ledbar

import (
	"bytes"
	"strings"
	"testing"
)

func TestShow(t *testing.T) {
	var buf bytes.Buffer
	d := New(&Opts{Bits: 8, W: &buf})

	if err := d.Show(0xA5); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\r\033[0m") {
		t.Errorf("output does not rewind and reset the line: %q", out)
	}
	if !strings.HasSuffix(out, "\033[0m ") {
		t.Errorf("output does not reset the terminal state: %q", out)
	}

	buf.Reset()
	if err := d.Show(0x00); err != nil {
		t.Fatal(err)
	}
	allOff := buf.String()
	buf.Reset()
	if err := d.Show(0xFF); err != nil {
		t.Fatal(err)
	}
	allOn := buf.String()
	if allOff == allOn {
		t.Error("all-off and all-on rows render identically")
	}
}

func TestShow_msbFirst(t *testing.T) {
	var buf bytes.Buffer
	d := New(&Opts{Bits: 8, W: &buf})

	if err := d.Show(0x80); err != nil {
		t.Fatal(err)
	}
	high := buf.String()
	buf.Reset()
	if err := d.Show(0x01); err != nil {
		t.Fatal(err)
	}
	low := buf.String()
	if high == low {
		t.Error("MSB-only and LSB-only rows render identically")
	}
	// The MSB cell is drawn first: 0x80 agrees with 0xFF on a longer
	// prefix than with 0x00.
	buf.Reset()
	if err := d.Show(0xFF); err != nil {
		t.Fatal(err)
	}
	allOn := buf.String()
	buf.Reset()
	if err := d.Show(0x00); err != nil {
		t.Fatal(err)
	}
	allOff := buf.String()
	if commonPrefix(high, allOn) <= commonPrefix(high, allOff) {
		t.Error("first cell of 0x80 is not lit")
	}
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func TestHalt(t *testing.T) {
	var buf bytes.Buffer
	d := New(&Opts{Bits: 4, W: &buf})
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "\n\033[0m" {
		t.Fatalf("%q", got)
	}
}

func TestString(t *testing.T) {
	d := New(&Opts{Bits: 8})
	if s := d.String(); s != "LEDBar" {
		t.Fatal(s)
	}
}
