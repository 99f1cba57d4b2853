// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package grovelcd

import (
	"time"

	"github.com/grovestat/devices/common"
	"github.com/grovestat/devices/pca9633"
	"tinygo.org/x/drivers"
)

// Variant is the backlight controller revision.
type Variant byte

const (
	// V4 and earlier boards use a PCA9633.
	V4 Variant = iota
	// V5 boards use a controller at AddressV5.
	V5
)

func (v Variant) String() string {
	switch v {
	case V4:
		return "V4"
	case V5:
		return "V5"
	default:
		return "unknown"
	}
}

const (
	// AddressV4 is the PCA9633 on V4 and earlier boards.
	AddressV4 uint16 = 0x62
	// AddressV5 is the backlight controller on V5 boards.
	AddressV5 uint16 = 0x30
)

// PCA9633 channels as wired on the module.
const (
	channelBlue  = 0
	channelGreen = 1
	channelRed   = 2
)

// V5 controller registers.
const (
	regV5Reset     byte = 0x00
	regV5PWMEnable byte = 0x04
	regV5Red       byte = 0x06
	regV5Green     byte = 0x07
	regV5Blue      byte = 0x08

	v5ResetValue     byte = 0x07
	v5PWMEnableValue byte = 0x15

	delayV5Reset = 200 * time.Microsecond
)

type backlight interface {
	variant() Variant
	setRGB(red, green, blue byte) error
}

// initBacklight probes AddressV5 with an empty write and brings up the
// controller that answers. The probe result is final for the life of the
// Dev.
func initBacklight(bus drivers.I2C, delay common.Delayer) (backlight, error) {
	v5 := &backlightV5{d: common.Dev{Bus: bus, Addr: AddressV5}}
	if v5.d.Probe() {
		if err := v5.d.WriteReg(regV5Reset, v5ResetValue); err != nil {
			return nil, err
		}
		delay.Sleep(delayV5Reset)
		if err := v5.d.WriteReg(regV5PWMEnable, v5PWMEnableValue); err != nil {
			return nil, err
		}
		return v5, nil
	}
	v4 := &backlightV4{pwm: pca9633.New(bus, AddressV4)}
	if err := v4.pwm.Configure(pca9633.GroveConfig); err != nil {
		return nil, err
	}
	return v4, nil
}

type backlightV4 struct {
	pwm *pca9633.Dev
}

func (*backlightV4) variant() Variant {
	return V4
}

func (bl *backlightV4) setRGB(red, green, blue byte) error {
	if err := bl.pwm.SetPWM(channelRed, red); err != nil {
		return err
	}
	if err := bl.pwm.SetPWM(channelGreen, green); err != nil {
		return err
	}
	return bl.pwm.SetPWM(channelBlue, blue)
}

type backlightV5 struct {
	d common.Dev
}

func (*backlightV5) variant() Variant {
	return V5
}

func (bl *backlightV5) setRGB(red, green, blue byte) error {
	if err := bl.d.WriteReg(regV5Red, red); err != nil {
		return err
	}
	if err := bl.d.WriteReg(regV5Green, green); err != nil {
		return err
	}
	return bl.d.WriteReg(regV5Blue, blue)
}
