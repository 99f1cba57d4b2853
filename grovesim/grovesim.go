// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package grovesim implements an i2c.Bus that behaves like a Grove LCD RGB
// Backlight module and draws it on a terminal using ANSI color codes.
//
// Useful to run display code on a machine with no module attached, and to
// check in tests what the module would show.
package grovesim

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/grovestat/devices/aip31068"
	"github.com/grovestat/devices/grovelcd"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ErrNak is returned for a transaction to an address nothing answers at.
var ErrNak = errors.New("grovesim: address not acknowledged")

const (
	lineLen    = 40
	row1Offset = 0x40
	cgramSize  = 64
)

// Opts represents the options available for the emulator.
type Opts struct {
	// Variant selects the backlight controller that answers.
	Variant grovelcd.Variant
	// Cols is the number of visible columns. Defaults to 16.
	Cols int
	// W receives the rendering. Defaults to a colorable stdout.
	W       io.Writer
	Palette *ansi256.Palette

	_ struct{}
}

// Dev is a Grove LCD RGB Backlight module emulator.
type Dev struct {
	mu      sync.Mutex
	variant grovelcd.Variant
	cols    int
	w       io.Writer
	palette ansi256.Palette

	// Character controller state.
	ddram    [2][lineLen]byte
	cgram    [cgramSize]byte
	ac       byte
	cgAddr   byte
	cgMode   bool
	shift    int
	entry    byte
	control  byte
	function byte

	// Backlight registers, indexed by register address.
	regs [16]byte

	buf bytes.Buffer
}

// New returns an emulator in the power-on state: blank DDRAM, display off,
// backlight off.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Dev{
		variant: opts.Variant,
		cols:    opts.Cols,
		w:       opts.W,
		palette: *p,
		entry:   0x02,
	}
	if d.cols <= 0 || d.cols > lineLen {
		d.cols = 16
	}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
	}
	d.clear()
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("grovesim(%s)", d.variant)
}

// SetSpeed implements i2c.Bus.
func (d *Dev) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx implements i2c.Bus. The module is write-only; reads fail. An empty
// write is an address probe.
func (d *Dev) Tx(addr uint16, w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if addr != aip31068.DefaultAddress && addr != d.backlightAddr() {
		return ErrNak
	}
	if len(r) != 0 {
		return errors.New("grovesim: read unsupported")
	}
	if len(w) == 0 {
		return nil
	}
	if addr == aip31068.DefaultAddress {
		d.lcdWrite(w)
	} else {
		d.backlightWrite(w)
	}
	return d.render()
}

// Halt implements conn.Resource. It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

func (d *Dev) backlightAddr() uint16 {
	if d.variant == grovelcd.V5 {
		return grovelcd.AddressV5
	}
	return grovelcd.AddressV4
}

// lcdWrite decodes control byte framing. A control byte with Co set is
// followed by one payload byte and another control byte; with Co clear every
// remaining byte is payload.
func (d *Dev) lcdWrite(w []byte) {
	for len(w) >= 2 {
		ctrl := w[0]
		data := ctrl&0x40 != 0
		if ctrl&0x80 == 0 {
			for _, b := range w[1:] {
				d.lcdByte(data, b)
			}
			return
		}
		d.lcdByte(data, w[1])
		w = w[2:]
	}
}

func (d *Dev) lcdByte(data bool, b byte) {
	if data {
		d.writeData(b)
		return
	}
	switch {
	case b&0x80 != 0:
		d.cgMode = false
		d.ac = b & 0x7f
	case b&0x40 != 0:
		d.cgMode = true
		d.cgAddr = b & 0x3f
	case b&0x20 != 0:
		d.function = b & 0x1f
	case b&0x10 != 0:
		right := b&0x04 != 0
		if b&0x08 != 0 {
			if right {
				d.shift--
			} else {
				d.shift++
			}
		} else {
			d.moveAC(right)
		}
	case b&0x08 != 0:
		d.control = b & 0x07
	case b&0x04 != 0:
		d.entry = b & 0x03
	case b&0x02 != 0:
		d.ac, d.shift = 0, 0
	case b&0x01 != 0:
		d.clear()
	}
}

func (d *Dev) clear() {
	for row := range d.ddram {
		for col := range d.ddram[row] {
			d.ddram[row][col] = ' '
		}
	}
	d.ac, d.shift, d.cgMode = 0, 0, false
	d.entry |= 0x02
}

func (d *Dev) writeData(b byte) {
	if d.cgMode {
		d.cgram[d.cgAddr] = b
		d.cgAddr = (d.cgAddr + 1) % cgramSize
		return
	}
	row, col := d.ac/row1Offset, d.ac%row1Offset
	if row < 2 && col < lineLen {
		d.ddram[row][col] = b
	}
	increment := d.entry&0x02 != 0
	d.moveAC(increment)
	if d.entry&0x01 != 0 {
		if increment {
			d.shift++
		} else {
			d.shift--
		}
	}
}

// moveAC steps the DDRAM address counter, wrapping from the end of one line
// to the start of the other.
func (d *Dev) moveAC(forward bool) {
	row, col := int(d.ac/row1Offset)&1, int(d.ac%row1Offset)
	if forward {
		if col++; col >= lineLen {
			col, row = 0, row^1
		}
	} else {
		if col--; col < 0 {
			col, row = lineLen-1, row^1
		}
	}
	d.ac = byte(row*row1Offset + col)
}

func (d *Dev) backlightWrite(w []byte) {
	reg := int(w[0])
	for i, v := range w[1:] {
		if reg+i < len(d.regs) {
			d.regs[reg+i] = v
		}
	}
}

// color returns the backlight colour from the register file.
func (d *Dev) color() color.NRGBA {
	if d.variant == grovelcd.V5 {
		return color.NRGBA{R: d.regs[0x06], G: d.regs[0x07], B: d.regs[0x08], A: 255}
	}
	// PCA9633: PWM0 blue, PWM1 green, PWM2 red; LEDOUT selects per channel.
	channel := func(ch int) byte {
		switch (d.regs[0x08] >> (2 * ch)) & 0x03 {
		case 0:
			return 0
		case 1:
			return 0xff
		default:
			return d.regs[0x02+ch]
		}
	}
	return color.NRGBA{R: channel(2), G: channel(1), B: channel(0), A: 255}
}

// text returns the visible part of row, after display shift.
func (d *Dev) text(row int) string {
	var sb strings.Builder
	for col := range d.cols {
		i := ((col+d.shift)%lineLen + lineLen) % lineLen
		c := d.ddram[row][i]
		if c < 0x08 {
			// CGRAM glyphs have no terminal equivalent.
			sb.WriteRune('▒')
			continue
		}
		sb.WriteRune(aip31068.Glyph(c))
	}
	return sb.String()
}

func (d *Dev) rows() int {
	if d.function&0x08 != 0 {
		return 2
	}
	return 1
}

func (d *Dev) render() error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	block := d.palette.Block(d.color())
	for row := range d.rows() {
		_, _ = d.buf.WriteString("\033[0m")
		_, _ = d.buf.WriteString(block)
		if d.control&0x04 != 0 {
			_, _ = d.buf.WriteString(d.text(row))
		} else {
			_, _ = d.buf.WriteString(strings.Repeat(" ", d.cols))
		}
		_, _ = d.buf.WriteString(block)
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

// Text returns what row shows, ignoring the display on/off state.
func (d *Dev) Text(row int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text(row)
}

// Color returns the current backlight colour.
func (d *Dev) Color() color.NRGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.color()
}

// Control returns the display control register: display on 0x04, cursor
// 0x02, blink 0x01.
func (d *Dev) Control() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.control
}

// Glyph returns the bitmap stored in CGRAM slot.
func (d *Dev) Glyph(slot byte) [8]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	var g [8]byte
	copy(g[:], d.cgram[(slot&7)*8:])
	return g
}

var _ i2c.Bus = &Dev{}
