// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermostat

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
)

// MaxAttempts is the number of sensor reads ReadAndUpdate tries.
const MaxAttempts = 3

// ErrSensor is returned when every sensor attempt failed. The last sensor
// error is wrapped as well.
var ErrSensor = errors.New("thermostat: sensor read failed")

// Sensor is the part of physic.SenseEnv the thermostat needs.
type Sensor interface {
	Sense(e *physic.Env) error
}

// Printer is the part of the LCD the thermostat writes to.
type Printer interface {
	SetCursor(col, row byte) error
	Print(text string) error
}

// Fahrenheit converts t to °F.
func Fahrenheit(t physic.Temperature) float64 {
	return t.Celsius()*9/5 + 32
}

// ReadAndUpdate reads the sensor, up to MaxAttempts times, stores the
// reading and prints the temperature at the start of the second display row.
// A display error is returned at once and is not retried.
func (t *Thermostat) ReadAndUpdate(sensor Sensor, lcd Printer) error {
	var env physic.Env
	var err error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err = sensor.Sense(&env); err == nil {
			break
		}
		t.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"max":     MaxAttempts,
		}).WithError(err).Warn("error reading sensor")
	}
	if err != nil {
		t.log.WithField("attempts", MaxAttempts).WithError(err).Error("giving up on sensor")
		return fmt.Errorf("%w after %d attempts: %w", ErrSensor, MaxAttempts, err)
	}

	t.Temperature = Fahrenheit(env.Temperature)
	t.Humidity = float64(env.Humidity) / float64(physic.PercentRH)
	t.log.WithFields(logrus.Fields{
		"temperature": env.Temperature,
		"humidity":    env.Humidity,
	}).Debug("sensor reading")

	if err := lcd.SetCursor(0, 1); err != nil {
		return fmt.Errorf("thermostat: %w", err)
	}
	if err := lcd.Print(fmt.Sprintf("T:%.1fF", t.Temperature)); err != nil {
		return fmt.Errorf("thermostat: %w", err)
	}
	return nil
}
