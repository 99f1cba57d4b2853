// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The PCA9633 is a four-channel LED PWM controller. Additionally, it provides
// features for dimming and blink. It is the backlight controller of the Grove
// LCD RGB Backlight up to V4 and of the Waveshare LCD1602 RGB module.
//
// The driver never reads the chip back. The mode registers and the LED output
// modes are kept in shadows and written whole.
//
// # Datasheet
//
// https://www.nxp.com/docs/en/data-sheet/PCA9633.pdf
package pca9633

import (
	"fmt"
	"time"

	"github.com/grovestat/devices/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"tinygo.org/x/drivers"
)

// Channels is the number of LED outputs.
const Channels = 4

// LEDMode is the output state of one channel, as stored in LEDOUT.
type LEDMode byte

const (
	ModeFullOff LEDMode = iota
	ModeFullOn
	// The brightness of the LED is controlled by the PWM setting.
	ModePWM
	// The brightness of the LED is controlled by the PWM setting AND the group
	// PWM/blinking options.
	ModePWMPlusGroup
)

const (
	// Register offsets from the datasheet
	regMode1 byte = iota
	regMode2
	regPWM0
	regPWM1
	regPWM2
	regPWM3
	regGrpPWM
	regGrpFreq
	regLEDOut
)

// MODE1 bits.
const (
	Mode1AllCall byte = 0x01
	Mode1Sleep   byte = 0x10
)

// MODE2 bits.
const (
	mode2OutNE byte = 0x01
	// Group control blinks instead of dimming.
	Mode2Blink  byte = 0x20
	Mode2Invert byte = 0x10
	// Outputs change on ACK instead of STOP.
	Mode2ChangeOnAck byte = 0x08
	Mode2TotemPole   byte = 0x04
)

// Group blink period granularity: period = (GRPFREQ+1)/24 s.
const blinkStep = time.Second / 24

// Config is the register setup written by Configure.
type Config struct {
	Mode1 byte
	Mode2 byte
	Modes [Channels]LEDMode
}

// DefaultConfig runs the oscillator with every output off, totem pole
// drivers.
var DefaultConfig = Config{Mode1: Mode1AllCall, Mode2: Mode2TotemPole | mode2OutNE}

// GroveConfig is the setup of the Grove LCD RGB Backlight: oscillator on,
// every output under individual and group control, group control blinking.
var GroveConfig = Config{
	Mode1: 0x00,
	Mode2: Mode2Blink,
	Modes: [Channels]LEDMode{ModePWMPlusGroup, ModePWMPlusGroup, ModePWMPlusGroup, ModePWMPlusGroup},
}

// Dev represents a PCA9633 LED PWM Controller.
type Dev struct {
	d     common.Dev
	mode1 byte
	mode2 byte
	modes [Channels]LEDMode
}

// New returns a PCA9633 at address. No bus traffic happens until Configure
// or another write.
func New(bus drivers.I2C, address uint16) *Dev {
	return &Dev{d: common.Dev{Bus: bus, Addr: address}}
}

func wrap(err error) error {
	return common.Wrap("pca9633", err)
}

// Configure writes MODE1, LEDOUT and MODE2, in that order.
func (dev *Dev) Configure(cfg Config) error {
	dev.mode1 = cfg.Mode1
	if err := dev.d.WriteReg(regMode1, dev.mode1); err != nil {
		return wrap(err)
	}
	dev.modes = cfg.Modes
	if err := dev.d.WriteReg(regLEDOut, ledOut(dev.modes)); err != nil {
		return wrap(err)
	}
	dev.mode2 = cfg.Mode2
	return wrap(dev.d.WriteReg(regMode2, dev.mode2))
}

func ledOut(modes [Channels]LEDMode) byte {
	var out byte
	for i, m := range modes {
		out |= byte(m&0x03) << (i * 2)
	}
	return out
}

// SetPWM writes the duty cycle of one channel. The mode of the channel is
// left alone.
func (dev *Dev) SetPWM(channel int, duty byte) error {
	if channel < 0 || channel >= Channels {
		return wrap(fmt.Errorf("channel %d: %w", channel, common.ErrInvalidParameter))
	}
	return wrap(dev.d.WriteReg(regPWM0+byte(channel), duty))
}

// SetModes sets the output mode of the first len(modes) channels. LEDOUT is
// only written when it changes.
func (dev *Dev) SetModes(modes ...LEDMode) error {
	if len(modes) > Channels {
		return wrap(fmt.Errorf("%d modes for %d channels: %w", len(modes), Channels, common.ErrInvalidParameter))
	}
	next := dev.modes
	copy(next[:], modes)
	if next == dev.modes {
		return nil
	}
	dev.modes = next
	return wrap(dev.d.WriteReg(regLEDOut, ledOut(dev.modes)))
}

// Out sets the output intensity of the first len(intensities) channels. If
// intensity is 0, the LED is set to full off. If intensity==255, the LED is
// set to full on, otherwise the LED is PWMd to the desired intensity.
func (dev *Dev) Out(intensities ...display.Intensity) error {
	if len(intensities) > Channels {
		return wrap(fmt.Errorf("%d intensities for %d channels: %w", len(intensities), Channels, common.ErrInvalidParameter))
	}
	modes := dev.modes
	for ch, intensity := range intensities {
		switch v := clamp(intensity); v {
		case 0:
			modes[ch] = ModeFullOff
		case 0xff:
			modes[ch] = ModeFullOn
		default:
			if modes[ch] != ModePWMPlusGroup {
				modes[ch] = ModePWM
			}
			if err := dev.SetPWM(ch, v); err != nil {
				return err
			}
		}
	}
	return dev.SetModes(modes[:]...)
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

// SetGroupPWMBlink sets the group level PWM value, and optionally, a blink
// period. The period ranges from 41.6 ms to 10.67 s. If 0, group control
// dims instead of blinking.
//
// Group control only applies to channels in ModePWMPlusGroup.
func (dev *Dev) SetGroupPWMBlink(intensity display.Intensity, blink time.Duration) error {
	mode2 := dev.mode2 &^ Mode2Blink
	if blink > 0 {
		steps := (blink + blinkStep/2) / blinkStep
		if steps < 1 {
			steps = 1
		} else if steps > 256 {
			steps = 256
		}
		if err := dev.d.WriteReg(regGrpFreq, byte(steps-1)); err != nil {
			return wrap(err)
		}
		mode2 |= Mode2Blink
	}
	if mode2 != dev.mode2 {
		dev.mode2 = mode2
		if err := dev.d.WriteReg(regMode2, dev.mode2); err != nil {
			return wrap(err)
		}
	}
	return wrap(dev.d.WriteReg(regGrpPWM, clamp(intensity)))
}

// SetInvert allows you to easily invert the meaning of the PWM values. This
// is useful if you're driving LEDs with a transistor or other device that
// inverts the output.
func (dev *Dev) SetInvert(invert bool) error {
	if invert {
		dev.mode2 |= Mode2Invert
	} else {
		dev.mode2 &^= Mode2Invert
	}
	return wrap(dev.d.WriteReg(regMode2, dev.mode2))
}

// Halt stops all LED display by setting them all to ModeFullOff. Implements
// conn.Resource
func (dev *Dev) Halt() error {
	return dev.SetModes(ModeFullOff, ModeFullOff, ModeFullOff, ModeFullOff)
}

func (dev *Dev) String() string {
	return fmt.Sprintf("PCA9633::%s", &dev.d)
}

var _ conn.Resource = &Dev{}
