// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermostat

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
)

// fakeSensor fails the first failures calls, then returns env.
type fakeSensor struct {
	env      physic.Env
	failures int
	calls    int
}

var errI2C = errors.New("i2c nack")

func (f *fakeSensor) Sense(e *physic.Env) error {
	f.calls++
	if f.calls <= f.failures {
		return errI2C
	}
	*e = f.env
	return nil
}

type fakeLCD struct {
	ops []string
	err error
}

func (f *fakeLCD) SetCursor(col, row byte) error {
	f.ops = append(f.ops, "cursor "+string('0'+rune(col))+","+string('0'+rune(row)))
	return f.err
}

func (f *fakeLCD) Print(text string) error {
	f.ops = append(f.ops, text)
	return nil
}

// 22.5 °C is 72.5 °F.
var reading = physic.Env{
	Temperature: physic.ZeroCelsius + 22500*physic.MilliKelvin,
	Humidity:    45 * physic.PercentRH,
}

func TestReadAndUpdate(t *testing.T) {
	for failures := range MaxAttempts {
		th, hook := newThermostat(Heat)
		sensor := &fakeSensor{env: reading, failures: failures}
		lcd := &fakeLCD{}
		if err := th.ReadAndUpdate(sensor, lcd); err != nil {
			t.Fatalf("%d failures: %v", failures, err)
		}
		if math.Abs(th.Temperature-72.5) > 1e-6 || math.Abs(th.Humidity-45) > 1e-6 {
			t.Errorf("stored %f °F %f %%", th.Temperature, th.Humidity)
		}
		if diff := cmp.Diff([]string{"cursor 0,1", "T:72.5F"}, lcd.ops); diff != "" {
			t.Errorf("lcd mismatch (-want +got):\n%s", diff)
		}
		warnings := 0
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.WarnLevel {
				warnings++
				if e.Data["max"] != MaxAttempts {
					t.Errorf("warning fields %v", e.Data)
				}
			}
		}
		if warnings != failures {
			t.Errorf("%d warnings for %d failures", warnings, failures)
		}
	}
}

func TestReadAndUpdateExhausted(t *testing.T) {
	th, hook := newThermostat(Heat)
	th.Temperature = 60
	sensor := &fakeSensor{failures: MaxAttempts}
	lcd := &fakeLCD{}
	err := th.ReadAndUpdate(sensor, lcd)
	if !errors.Is(err, ErrSensor) || !errors.Is(err, errI2C) {
		t.Fatalf("ReadAndUpdate() returned %v", err)
	}
	if sensor.calls != MaxAttempts {
		t.Errorf("%d sensor calls, want %d", sensor.calls, MaxAttempts)
	}
	if len(lcd.ops) != 0 {
		t.Errorf("display written after failure: %v", lcd.ops)
	}
	if th.Temperature != 60 {
		t.Errorf("temperature changed to %f", th.Temperature)
	}
	if hook.LastEntry().Level != logrus.ErrorLevel {
		t.Errorf("last entry %v", hook.LastEntry())
	}
}

func TestReadAndUpdateDisplayError(t *testing.T) {
	th, _ := newThermostat(Heat)
	sensor := &fakeSensor{env: reading}
	boom := errors.New("lcd gone")
	lcd := &fakeLCD{err: boom}
	if err := th.ReadAndUpdate(sensor, lcd); !errors.Is(err, boom) {
		t.Fatalf("ReadAndUpdate() returned %v", err)
	}
	if sensor.calls != 1 {
		t.Errorf("display error retried the sensor %d times", sensor.calls)
	}
	if diff := cmp.Diff([]string{"cursor 0,1"}, lcd.ops); diff != "" {
		t.Errorf("lcd mismatch (-want +got):\n%s", diff)
	}
}
