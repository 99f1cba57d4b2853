// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package aip31068

import "time"

// Control bytes. Every transaction is a control byte followed by one payload
// byte.
const (
	ctrlCommand byte = 0x80
	ctrlData    byte = 0x40
)

// Instructions.
const (
	cmdClear       byte = 0x01
	cmdHome        byte = 0x02
	cmdEntryMode   byte = 0x04
	cmdControl     byte = 0x08
	cmdShift       byte = 0x10
	cmdFunctionSet byte = 0x20
	cmdSetCGRAM    byte = 0x40
	cmdSetDDRAM    byte = 0x80
)

// Entry mode flags.
const (
	entryLeft  byte = 0x02
	entryShift byte = 0x01
)

// Display control flags.
const (
	ctlDisplayOn byte = 0x04
	ctlCursorOn  byte = 0x02
	ctlBlinkOn   byte = 0x01
)

// Cursor/display shift flags.
const (
	shiftDisplay byte = 0x08
	shiftRight   byte = 0x04
)

// Function set flags.
const (
	fn8Bit  byte = 0x10
	fn2Line byte = 0x08
	fn5x10  byte = 0x04
)

// DDRAM address of the first cell of the second row. Fixed by the
// controller, independent of the column count.
const row1Offset byte = 0x40

const (
	delayPowerOn   = 50 * time.Millisecond
	delayExecution = 2 * time.Millisecond
)

// The function set is sent four times; the waits follow each send.
var functionSetWaits = [...]time.Duration{4500 * time.Microsecond, 150 * time.Microsecond, 0, 0}

func setFlag(reg, flag byte, on bool) byte {
	if on {
		return reg | flag
	}
	return reg &^ flag
}

// Every writer of a shadow register updates the shadow first and then sends
// it whole, so a sibling flag is never reverted.

func (dev *Dev) updateControl(flag byte, on bool) error {
	dev.control = setFlag(dev.control, flag, on)
	return dev.command(cmdControl | dev.control)
}

func (dev *Dev) updateEntry(flag byte, on bool) error {
	dev.entry = setFlag(dev.entry, flag, on)
	return dev.command(cmdEntryMode | dev.entry)
}
