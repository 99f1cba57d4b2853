// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// Dev is a device on an I²C bus. It is the write-only counterpart of
// periph's i2c.Dev, built on drivers.I2C so that both a periph.io i2c.Bus
// and a TinyGo machine.I2C can carry it.
type Dev struct {
	Bus  drivers.I2C
	Addr uint16
}

// Write sends w in a single transaction. A failure is returned as a
// *CommError.
func (d *Dev) Write(w ...byte) error {
	if err := d.Bus.Tx(d.Addr, w, nil); err != nil {
		return &CommError{Addr: d.Addr, Err: err}
	}
	return nil
}

// WriteReg writes value into register reg.
func (d *Dev) WriteReg(reg, value byte) error {
	return d.Write(reg, value)
}

// Probe issues a zero length write and reports whether the address was
// acknowledged.
func (d *Dev) Probe() bool {
	return d.Bus.Tx(d.Addr, nil, nil) == nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s@%#02x", busName(d.Bus), d.Addr)
}

func busName(bus drivers.I2C) string {
	if s, ok := bus.(fmt.Stringer); ok {
		return s.String()
	}
	return "i2c"
}
