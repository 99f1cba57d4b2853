// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices is a container for the drivers of a Grove based
// thermostat: the Grove LCD RGB Backlight and its chips, the SHT3x air
// sensor, the thermostat control loop and a terminal emulator of the
// display.
//
// The display drivers are written against tinygo.org/x/drivers.I2C, which a
// periph.io i2c.Bus satisfies, so they run on a Linux host and on a
// microcontroller alike.
package devices
