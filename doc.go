// Copyright 2024 The ShiftRegister Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package shiftregister is a container for bit-banged shift register drivers
// and the device helpers built on top of them.
//
// The core driver lives in package shiftreg. The other packages wrap it for
// specific hardware: gamepad8 polls DE9 game controllers, relayboard exposes
// relay channels on a SIPO chain, and ledbar emulates the chain's parallel
// outputs on an ANSI terminal.
package shiftregister
