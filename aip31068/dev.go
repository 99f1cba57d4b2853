// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The aip31068 is an HD44780 compatible I²C driver chip. It provides an I²C
// interface to an LCD. This is not a _backpack_ chip in the sense that it
// provides GPIO pins via an I²C interface. The I²C write commands go directly
// to the LCD display driver. The JHD1313 found on Seeed Grove LCD modules
// speaks the same protocol.
//
// The controller is driven write-only: every transaction is a control byte
// (0x80 for an instruction, 0x40 for a character) followed by one payload
// byte. Because the configuration registers cannot be read back, the driver
// keeps a shadow of the function set, display control and entry mode
// registers and always rewrites a register in full from its shadow.
//
// The busy flag is never polled. Instructions that need time to execute are
// followed by the fixed delay the datasheet gives for them.
//
// Implements periph.io/x/conn/display/TextDisplay
//
// # Datasheet
//
// https://support.newhavendisplay.com/hc/en-us/article_attachments/4414498095511
package aip31068

import (
	"errors"
	"fmt"

	"github.com/grovestat/devices/common"
	"golang.org/x/text/transform"
	"periph.io/x/conn/v3/display"
	"tinygo.org/x/drivers"
)

const (
	// DefaultAddress is the fixed I²C address of the controller.
	DefaultAddress uint16 = 0x3e
	// MaxCols is the widest line the controller can address.
	MaxCols = 40

	packageName = "aip31068"
)

var (
	ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)
	// ErrReleased is returned by every operation on a Dev after Release.
	ErrReleased = errors.New("device released")
)

// DotSize selects the character cell height.
type DotSize byte

const (
	Dots5x8 DotSize = iota
	// Dots5x10 is only honoured on single row displays. It is ignored when
	// Rows is 2.
	Dots5x10
)

// Direction is the text entry direction.
type Direction byte

const (
	LeftToRight Direction = iota
	RightToLeft
)

// Opts is the display geometry.
type Opts struct {
	// Cols is only used for range checks; it does not change any register.
	Cols    int
	Rows    int
	DotSize DotSize
}

// DefaultOpts is a 16x2 display with 5x8 characters.
var DefaultOpts = Opts{Cols: 16, Rows: 2, DotSize: Dots5x8}

func (o *Opts) validate() error {
	if o.Cols < 1 || o.Cols > MaxCols {
		return fmt.Errorf("cols %d out of range [1,%d]: %w", o.Cols, MaxCols, common.ErrInvalidParameter)
	}
	if o.Rows != 1 && o.Rows != 2 {
		return fmt.Errorf("rows %d must be 1 or 2: %w", o.Rows, common.ErrInvalidParameter)
	}
	return nil
}

// Dev is an aip31068 based character LCD.
type Dev struct {
	d     common.Dev
	delay common.Delayer
	cols  int
	rows  int
	// row is the last row addressed by SetCursor.
	row int

	// Shadows of the write-only registers, without the instruction bits.
	function byte
	control  byte
	entry    byte

	blMono   display.DisplayBacklight
	blRGB    display.DisplayRGBBacklight
	released bool
}

func wrap(err error) error {
	return common.Wrap(packageName, err)
}

// New initializes an aip31068 based LCD and returns it ready for use.
//
// The Dev takes ownership of bus and delay until Release is called. A nil
// opts selects DefaultOpts, a nil delay sleeps the calling goroutine.
//
// backlight is a controller that manipulates the display backlight. If the
// display backlight is hard-wired on, then this can be nil. Otherwise, it
// should implement either display.DisplayBacklight or
// display.DisplayRGBBacklight.
func New(bus drivers.I2C, delay common.Delayer, backlight any, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.validate(); err != nil {
		return nil, wrap(err)
	}
	if delay == nil {
		delay = common.SystemDelay
	}
	dev := &Dev{
		d:     common.Dev{Bus: bus, Addr: DefaultAddress},
		delay: delay,
		cols:  opts.Cols,
		rows:  opts.Rows,
	}
	dev.AttachBacklight(backlight)
	if err := dev.init(opts.DotSize); err != nil {
		return nil, wrap(err)
	}
	return dev, nil
}

// init runs the power-up handshake. The order and the delays are the ones
// from the datasheet: the controller may still be in its reset state and the
// repeated function set is the documented way out of it.
func (dev *Dev) init(dots DotSize) error {
	dev.function = fn8Bit
	if dev.rows > 1 {
		dev.function |= fn2Line
	} else if dots == Dots5x10 {
		dev.function |= fn5x10
	}
	dev.row = 0

	dev.delay.Sleep(delayPowerOn)
	for _, wait := range functionSetWaits {
		if err := dev.command(cmdFunctionSet | dev.function); err != nil {
			return err
		}
		if wait > 0 {
			dev.delay.Sleep(wait)
		}
	}

	dev.control = ctlDisplayOn
	if err := dev.command(cmdControl | dev.control); err != nil {
		return err
	}
	if err := dev.clear(); err != nil {
		return err
	}
	dev.entry = entryLeft
	return dev.command(cmdEntryMode | dev.entry)
}

// AttachBacklight sets the controller used by Backlight and RGBBacklight. It
// performs no bus traffic.
func (dev *Dev) AttachBacklight(backlight any) {
	dev.blMono, dev.blRGB = nil, nil
	switch bl := backlight.(type) {
	case display.DisplayRGBBacklight:
		dev.blRGB = bl
	case display.DisplayBacklight:
		dev.blMono = bl
	}
}

// Release hands the bus and the delay back to the caller. No hardware action
// is taken; every later call on dev returns ErrReleased.
func (dev *Dev) Release() (drivers.I2C, common.Delayer) {
	bus, delay := dev.d.Bus, dev.delay
	dev.d.Bus, dev.delay = nil, nil
	dev.released = true
	return bus, delay
}

func (dev *Dev) send(control, b byte) error {
	if dev.released {
		return ErrReleased
	}
	return dev.d.Write(control, b)
}

func (dev *Dev) command(b byte) error {
	return dev.send(ctrlCommand, b)
}

func (dev *Dev) data(b byte) error {
	return dev.send(ctrlData, b)
}

func (dev *Dev) clear() error {
	if err := dev.command(cmdClear); err != nil {
		return err
	}
	dev.delay.Sleep(delayExecution)
	return nil
}

// Clear the display and move the cursor home.
func (dev *Dev) Clear() error {
	return wrap(dev.clear())
}

// Home moves the cursor to the first cell and undoes any display shift.
func (dev *Dev) Home() error {
	if err := dev.command(cmdHome); err != nil {
		return wrap(err)
	}
	dev.delay.Sleep(delayExecution)
	return nil
}

// SetCursor moves the cursor to the zero based col and row. row is clamped
// to the last configured row; col is not checked.
func (dev *Dev) SetCursor(col, row byte) error {
	if last := byte(dev.rows - 1); row > last {
		row = last
	}
	addr := col | cmdSetDDRAM
	if row > 0 {
		addr = col | cmdSetDDRAM | row1Offset
	}
	if err := dev.command(addr); err != nil {
		return wrap(err)
	}
	dev.row = int(row)
	return nil
}

// Display turns the display on or off. DDRAM content is kept.
func (dev *Dev) Display(on bool) error {
	return wrap(dev.updateControl(ctlDisplayOn, on))
}

// ShowCursor shows or hides the underline cursor.
func (dev *Dev) ShowCursor(on bool) error {
	return wrap(dev.updateControl(ctlCursorOn, on))
}

// Blink turns blinking of the cursor cell on or off.
func (dev *Dev) Blink(on bool) error {
	return wrap(dev.updateControl(ctlBlinkOn, on))
}

// AutoScroll shifts the whole display on each character written when
// enabled, instead of moving the cursor.
func (dev *Dev) AutoScroll(enabled bool) error {
	return wrap(dev.updateEntry(entryShift, enabled))
}

// SetDirection sets the direction the cursor moves after each character.
func (dev *Dev) SetDirection(dir Direction) error {
	return wrap(dev.updateEntry(entryLeft, dir == LeftToRight))
}

// ScrollLeft shifts the display content one cell to the left. It is a one
// shot action and changes no register.
func (dev *Dev) ScrollLeft() error {
	return wrap(dev.command(cmdShift | shiftDisplay))
}

// ScrollRight shifts the display content one cell to the right.
func (dev *Dev) ScrollRight() error {
	return wrap(dev.command(cmdShift | shiftDisplay | shiftRight))
}

// CreateChar uploads an 8 row glyph bitmap to one of the eight CGRAM slots.
// slot is masked to 3 bits. Print the glyph with WriteByte(slot).
//
// The address counter is left in CGRAM; call SetCursor or Home before
// printing.
func (dev *Dev) CreateChar(slot byte, bitmap [8]byte) error {
	slot &= 0x07
	if err := dev.command(cmdSetCGRAM | slot<<3); err != nil {
		return wrap(err)
	}
	for _, row := range bitmap {
		if err := dev.data(row); err != nil {
			return wrap(err)
		}
	}
	return nil
}

// WriteByte sends one character code as is.
func (dev *Dev) WriteByte(c byte) error {
	return wrap(dev.data(c))
}

// Print writes text at the cursor, one character per transaction, after
// mapping it onto the character ROM with NewEncoder.
//
// There is no line wrapping: the controller keeps writing into DDRAM past
// the visible columns. Use SetCursor to start a new line.
func (dev *Dev) Print(text string) error {
	_, err := dev.WriteString(text)
	return err
}

// Write sends p as raw character codes, one transaction per byte.
func (dev *Dev) Write(p []byte) (n int, err error) {
	for _, c := range p {
		if err = dev.data(c); err != nil {
			return n, wrap(err)
		}
		n++
	}
	return n, nil
}

// WriteString writes text after mapping it onto the character ROM. n counts
// bytes of text consumed.
func (dev *Dev) WriteString(text string) (n int, err error) {
	encoded, _, err := transform.String(NewEncoder(), text)
	if err != nil {
		return 0, wrap(err)
	}
	if _, err = dev.Write([]byte(encoded)); err != nil {
		return 0, err
	}
	return len(text), nil
}

// Row returns the row last addressed with SetCursor or MoveTo.
func (dev *Dev) Row() int {
	return dev.row
}
