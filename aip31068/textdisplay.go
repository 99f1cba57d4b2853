// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aip31068

import (
	"fmt"
	"io"

	"github.com/grovestat/devices/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// Return the number of columns the display supports
func (dev *Dev) Cols() int {
	return dev.cols
}

// Return the number of rows the display supports.
func (dev *Dev) Rows() int {
	return dev.rows
}

// Return the min column position.
func (dev *Dev) MinCol() int {
	return 1
}

// Return the min row position.
func (dev *Dev) MinRow() int {
	return 1
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s Rows: %d Cols: %d", packageName, dev.rows, dev.cols)
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
//
// CursorBlock and CursorBlink both select the blinking block, the only
// block cursor the controller has.
func (dev *Dev) Cursor(modes ...display.CursorMode) error {
	control := dev.control
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			control &^= ctlCursorOn | ctlBlinkOn
		case display.CursorUnderline:
			control |= ctlCursorOn
		case display.CursorBlock, display.CursorBlink:
			control |= ctlBlinkOn
		default:
			return wrap(fmt.Errorf("unexpected cursor mode %d: %w", mode, common.ErrInvalidParameter))
		}
	}
	dev.control = control
	return wrap(dev.command(cmdControl | dev.control))
}

// Move the cursor forward or backward.
func (dev *Dev) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Backward:
		return wrap(dev.command(cmdShift))
	case display.Forward:
		return wrap(dev.command(cmdShift | shiftRight))
	default:
		return ErrNotImplemented
	}
}

// Move the cursor to arbitrary position. row and col are one based.
func (dev *Dev) MoveTo(row, col int) error {
	if row < dev.MinRow() || row > dev.rows || col < dev.MinCol() || col > dev.cols {
		return wrap(fmt.Errorf("MoveTo(%d,%d) value out of range: %w", row, col, common.ErrInvalidParameter))
	}
	return dev.SetCursor(byte(col-1), byte(row-1))
}

// Halt clears the display, turns the display off, and turns the backlight
// off if one is attached.
func (dev *Dev) Halt() error {
	err := dev.Clear()
	if err == nil {
		err = dev.Display(false)
	}
	if dev.blMono != nil || dev.blRGB != nil {
		if blErr := dev.Backlight(0); err == nil {
			err = blErr
		}
	}
	return err
}

// Set the backlight intensity.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	if dev.blMono != nil {
		return dev.blMono.Backlight(intensity)
	} else if dev.blRGB != nil {
		return dev.blRGB.RGBBacklight(intensity, intensity, intensity)
	}
	return ErrNotImplemented
}

// For units that have an RGB Backlight, set the backlight color/intensity.
// The range of the values is 0-255.
func (dev *Dev) RGBBacklight(red, green, blue display.Intensity) error {
	if dev.blRGB != nil {
		return dev.blRGB.RGBBacklight(red, green, blue)
	} else if dev.blMono != nil {
		return dev.blMono.Backlight(red | green | blue)
	}
	return ErrNotImplemented
}

var _ conn.Resource = &Dev{}
var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ display.DisplayRGBBacklight = &Dev{}
var _ io.ByteWriter = &Dev{}
