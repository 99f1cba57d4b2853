// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package grovelcd drives the Seeed Grove LCD RGB Backlight module.
//
// The module carries two I²C devices: an AiP31068 (JHD1313) character
// controller at 0x3e and an RGB backlight controller. Up to V4 the backlight
// is a PCA9633 at 0x62; V5 boards use a different controller at 0x30. New
// probes 0x30 and picks the variant from the answer, so one driver serves
// every revision.
//
// Both chips are write-only. The text side is the [aip31068] driver; its
// methods are promoted through Dev.
//
// # Product Page
//
// https://wiki.seeedstudio.com/Grove-LCD_RGB_Backlight/
package grovelcd

import (
	"fmt"

	"github.com/grovestat/devices/aip31068"
	"github.com/grovestat/devices/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"tinygo.org/x/drivers"
)

const packageName = "grovelcd"

// Opts is the display geometry. The zero DotSize is 5x8.
type Opts struct {
	aip31068.Opts
}

// DefaultOpts is the 16x2 module Seeed sells.
var DefaultOpts = Opts{Opts: aip31068.DefaultOpts}

// Dev is a Grove LCD RGB Backlight module.
//
// Dev is not safe for concurrent use. Callers sharing the bus with other
// devices must serialize access themselves.
type Dev struct {
	*aip31068.Dev
	bl      backlight
	variant Variant
}

func wrap(err error) error {
	return common.Wrap(packageName, err)
}

// New initializes the display, detects the backlight revision and sets the
// backlight to white.
//
// The Dev owns bus and delay until Release. A nil delay sleeps the calling
// goroutine; a nil opts selects DefaultOpts. A bus error at any step aborts
// New and is returned; a missing answer from the V5 backlight is not an
// error and selects V4.
func New(bus drivers.I2C, delay common.Delayer, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	lcd, err := aip31068.New(bus, delay, nil, &opts.Opts)
	if err != nil {
		return nil, wrap(err)
	}
	if delay == nil {
		delay = common.SystemDelay
	}
	dev := &Dev{Dev: lcd}
	if dev.bl, err = initBacklight(bus, delay); err != nil {
		return nil, wrap(err)
	}
	dev.variant = dev.bl.variant()
	dev.AttachBacklight(dev)
	if err := dev.BacklightWhite(); err != nil {
		return nil, err
	}
	return dev, nil
}

// Variant returns the backlight revision detected by New.
func (dev *Dev) Variant() Variant {
	return dev.variant
}

// SetRGB sets the backlight colour. Red, green and blue are written in that
// order, one transaction each.
func (dev *Dev) SetRGB(red, green, blue byte) error {
	if dev.bl == nil {
		return wrap(aip31068.ErrReleased)
	}
	return wrap(dev.bl.setRGB(red, green, blue))
}

// BacklightOff turns every backlight channel off.
func (dev *Dev) BacklightOff() error {
	return dev.SetRGB(0, 0, 0)
}

// BacklightWhite drives every backlight channel at full duty.
func (dev *Dev) BacklightWhite() error {
	return dev.SetRGB(0xff, 0xff, 0xff)
}

// RGBBacklight implements display.DisplayRGBBacklight. Values are clamped to
// 0-255.
func (dev *Dev) RGBBacklight(red, green, blue display.Intensity) error {
	return dev.SetRGB(clamp(red), clamp(green), clamp(blue))
}

// Backlight implements display.DisplayBacklight with a grey level.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	return dev.RGBBacklight(intensity, intensity, intensity)
}

func clamp(i display.Intensity) byte {
	if i < 0 {
		return 0
	}
	if i > 0xff {
		return 0xff
	}
	return byte(i)
}

// Release hands the bus and the delay back to the caller without touching
// the hardware. Every later call on dev fails with aip31068.ErrReleased.
func (dev *Dev) Release() (drivers.I2C, common.Delayer) {
	dev.bl = nil
	return dev.Dev.Release()
}

// Halt clears the display, turns it off and turns the backlight off.
// Implements conn.Resource.
func (dev *Dev) Halt() error {
	return wrap(dev.Dev.Halt())
}

func (dev *Dev) String() string {
	if dev.bl == nil {
		return fmt.Sprintf("%s released", packageName)
	}
	return fmt.Sprintf("%s %s %s", packageName, dev.variant, dev.Dev)
}

var _ conn.Resource = &Dev{}
var _ display.TextDisplay = &Dev{}
var _ display.DisplayRGBBacklight = &Dev{}
