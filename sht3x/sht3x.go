// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sht3x is a package for interfacing with the Sensirion SHT-30, SHT-31 and
// SHT-35 temperature and humidity sensors, as found on the Grove
// Temperature & Humidity Sensor (SHT31).
//
// Measurements use single shot mode, high repeatability, without clock
// stretching. Every word the sensor returns is followed by a CRC-8 which is
// checked.
//
// # Datasheet
//
// https://sensirion.com/media/documents/213E6A3B/63A5A569/Datasheet_SHT3x_DIS.pdf
//
// # Accuracy
//
// SHT-30: ±0.2 °C, ±2 % RH
//
// SHT-31: ±0.2 °C, ±2 % RH
//
// SHT-35: ±0.1 °C, ±1.5 % RH
//
// All devices have a resolution of 0.01 °C and specified range –40…+125 °C.
package sht3x

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/grovestat/devices/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultAddress is selected when ADDR is tied low.
	DefaultAddress i2c.Addr = 0x44
	// AlternateAddress is selected when ADDR is tied high.
	AlternateAddress i2c.Addr = 0x45
)

// Status register bits.
const (
	StatusAlertPending  uint16 = 1 << 15
	StatusHeaterOn      uint16 = 1 << 13
	StatusRHAlert       uint16 = 1 << 11
	StatusTAlert        uint16 = 1 << 10
	StatusReset         uint16 = 1 << 4
	StatusCommandFailed uint16 = 1 << 1
	StatusChecksumError uint16 = 1 << 0
)

var (
	cmdMeasure      = []byte{0x24, 0x00}
	cmdSoftReset    = []byte{0x30, 0xa2}
	cmdHeaterOn     = []byte{0x30, 0x6d}
	cmdHeaterOff    = []byte{0x30, 0x66}
	cmdReadStatus   = []byte{0xf3, 0x2d}
	cmdClearStatus  = []byte{0x30, 0x41}
	cmdReadSerialNo = []byte{0x37, 0x80}
)

const (
	countDivisor = float64(65535)

	minTemperature = -40*physic.Kelvin + physic.ZeroCelsius
	maxTemperature = 125*physic.Kelvin + physic.ZeroCelsius

	minRH = 0 * physic.PercentRH
	maxRH = 100 * physic.PercentRH

	// Maximum measurement duration, high repeatability.
	measureDuration = 15 * time.Millisecond
	resetDuration   = 2 * time.Millisecond
	commandDuration = time.Millisecond

	minSampleDuration = 20 * time.Millisecond
)

// ErrContinuousRunning is returned by SenseContinuous when a previous call
// has not been halted.
var ErrContinuousRunning = errors.New("sht3x: SenseContinuous already running")

// Dev represents a SHT-3X series temperature/humidity sensor.
type Dev struct {
	d        *i2c.Dev
	delay    common.Delayer
	shutdown chan struct{}
	mu       sync.Mutex
}

// New returns a sensor at addr. No bus traffic happens until the first
// command.
func New(bus i2c.Bus, addr i2c.Addr) (*Dev, error) {
	return &Dev{d: &i2c.Dev{Bus: bus, Addr: uint16(addr)}, delay: common.SystemDelay}, nil
}

func wrap(err error) error {
	return common.Wrap("sht3x", err)
}

// command writes cmd, waits for wait and, if r is not empty, reads the reply
// and checks its CRCs.
func (dev *Dev) command(cmd []byte, wait time.Duration, r []byte) ([]uint16, error) {
	if err := dev.d.Tx(cmd, nil); err != nil {
		return nil, fmt.Errorf("error transmitting %#04x: %w", cmd, &common.CommError{Addr: dev.d.Addr, Err: err})
	}
	dev.delay.Sleep(wait)
	if len(r) == 0 {
		return nil, nil
	}
	if err := dev.d.Tx(nil, r); err != nil {
		return nil, fmt.Errorf("error reading: %w", &common.CommError{Addr: dev.d.Addr, Err: err})
	}
	return common.CheckCRC(r)
}

// convert the count to a temperature value.
func countToTemp(count uint16) physic.Temperature {
	// T=-45+175*(count/countDivisor)
	val := physic.Temperature(float64(physic.Kelvin)*(-45.0+175.0*(float64(count)/countDivisor))) + physic.ZeroCelsius
	if val < minTemperature {
		val = minTemperature
	} else if val > maxTemperature {
		val = maxTemperature
	}
	return val
}

func countToHumidity(count uint16) physic.RelativeHumidity {
	// RH=100*(count/countDivisor)
	val := physic.RelativeHumidity(100.0 * (float64(count) / countDivisor) * float64(physic.PercentRH))
	if val < minRH {
		val = minRH
	} else if val > maxRH {
		val = maxRH
	}
	return val
}

// Precision returns the smallest change in readings the device can produce.
// Implements physic.SenseEnv.
func (dev *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Kelvin / 100
	e.Humidity = physic.PercentRH / 100
	e.Pressure = 0
}

// Halt terminates a SenseContinuous command if running. Implements
// conn.Resource.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.shutdown != nil {
		close(dev.shutdown)
		dev.shutdown = nil
	}
	return nil
}

// Reset issues a soft-reset to the device.
func (dev *Dev) Reset() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	_, err := dev.command(cmdSoftReset, resetDuration, nil)
	return wrap(err)
}

// Sense reads temperature and humidity from the device. On error the
// temperature and humidity are set to the bottom of the range.
func (dev *Dev) Sense(e *physic.Env) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	e.Pressure = 0
	words, err := dev.command(cmdMeasure, measureDuration, make([]byte, 6))
	if err != nil {
		e.Temperature = minTemperature
		e.Humidity = minRH
		return wrap(fmt.Errorf("error reading device: %w", err))
	}
	e.Temperature = countToTemp(words[0])
	e.Humidity = countToHumidity(words[1])
	return nil
}

// SenseContinuous continuously reads from the device and sends the output
// to the returned channel. Failed reads are skipped. To terminate the read,
// call Dev.Halt().
func (dev *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if interval < minSampleDuration {
		return nil, fmt.Errorf("sht3x: sample interval %s is < %s: %w", interval, minSampleDuration, common.ErrInvalidParameter)
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.shutdown != nil {
		return nil, ErrContinuousRunning
	}
	shutdown := make(chan struct{})
	dev.shutdown = shutdown
	ch := make(chan physic.Env, 16)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(ch)
		for {
			select {
			case <-shutdown:
				return
			case <-ticker.C:
				env := physic.Env{}
				if err := dev.Sense(&env); err != nil {
					continue
				}
				select {
				case ch <- env:
				case <-shutdown:
					return
				}
			}
		}
	}()
	return ch, nil
}

// SetHeater turns the internal heater on or off. The heater can be used to
// check the sensor or to dry it in condensing environments.
func (dev *Dev) SetHeater(on bool) error {
	cmd := cmdHeaterOff
	if on {
		cmd = cmdHeaterOn
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	_, err := dev.command(cmd, commandDuration, nil)
	return wrap(err)
}

// Status returns the status register. Use the Status constants to decode it.
func (dev *Dev) Status() (uint16, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	words, err := dev.command(cmdReadStatus, commandDuration, make([]byte, 3))
	if err != nil {
		return 0, wrap(err)
	}
	return words[0], nil
}

// ClearStatus clears the alert bits of the status register.
func (dev *Dev) ClearStatus() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	_, err := dev.command(cmdClearStatus, commandDuration, nil)
	return wrap(err)
}

// SerialNumber returns the device serial number set at the factory.
func (dev *Dev) SerialNumber() (uint32, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	words, err := dev.command(cmdReadSerialNo, commandDuration, make([]byte, 6))
	if err != nil {
		return 0, wrap(err)
	}
	return uint32(words[0])<<16 | uint32(words[1]), nil
}

// String returns a string representation of the device.
func (dev *Dev) String() string {
	return fmt.Sprintf("sht3x@%#02x", dev.d.Addr)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
