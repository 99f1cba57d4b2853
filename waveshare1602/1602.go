// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The Waveshare 1602 LCD is a 2 line by 16 column LCD display. It's available
// in multiple variants:
//
//   - LCD1602 I²C Module, White color w/ Blue Background, 16x2 characters, 3.3V/5V
//   - LCD1602 I²C Module, Options for 3 Colors 3.3v/5v Backlight Adjustable
//
// These displays use the [aip31068] I²C LCD Driver chip. The tri-color version
// has purchase options to select a backlight color and uses an SN3193 to dim
// the backlight.
//
//   - LCD1602 RGB Module, 16x2 Characters LCD, RGB Backlight, 3.3V/5V, I²C Bus
//
// This display uses the AiP31068 I²C LCD Driver w/ a PCA9633 RGB LED PWM
// controller, like the Grove LCD RGB Backlight up to V4, but at a different
// address and with the colour channels wired in reverse.
package waveshare1602

import (
	"github.com/grovestat/devices/aip31068"
	"github.com/grovestat/devices/common"
	"github.com/grovestat/devices/pca9633"
	"periph.io/x/conn/v3/display"
	"tinygo.org/x/drivers"
)

type Variant string

const (
	// SKU 19537 - RGB Backlight
	LCD1602RGBBacklight Variant = "LCD1602RGBBacklight"
	// SKU 23991 - I²C w/ Monochrome Backlight
	LCD1602MonoBacklight Variant = "LCD1602MonoBacklight"
	// Not Implemented. SKU 30494, 30495, and 30496. Uses an SN3193 for
	// controlling the backlight.
	LCD1602DimmableMonoBacklight Variant = "LCD1602DimmableMonoBacklight"

	// RGBAddress is the PCA9633 of the RGB variant.
	RGBAddress uint16 = 0x60
)

// RGBBLController drives the backlight of the RGB variant.
type RGBBLController struct {
	controller *pca9633.Dev
	variant    Variant
}

// New initializes the display. For the RGB variant the backlight controller
// is configured first, with every channel off. A nil opts selects a 16x2
// display.
func New(bus drivers.I2C, delay common.Delayer, variant Variant, opts *aip31068.Opts) (*aip31068.Dev, error) {
	var bl any
	switch variant {
	case LCD1602RGBBacklight:
		controller := pca9633.New(bus, RGBAddress)
		if err := controller.Configure(pca9633.DefaultConfig); err != nil {
			return nil, err
		}
		bl = &RGBBLController{variant: variant, controller: controller}
	case LCD1602DimmableMonoBacklight:
		return nil, display.ErrNotImplemented
	}
	return aip31068.New(bus, delay, bl, opts)
}

func (bl *RGBBLController) String() string {
	return string(bl.variant)
}

// For units that have an RGB Backlight, set the backlight color/intensity.
// This unit does not persist settings in EEPROM, so you can call it as often
// as desired. The range of the values is 0-255.
func (bl *RGBBLController) RGBBacklight(red, green, blue display.Intensity) error {
	// The device is really connected to the LEDs in this channel order...
	return bl.controller.Out(blue, green, red)
}

var _ display.DisplayRGBBacklight = &RGBBLController{}
