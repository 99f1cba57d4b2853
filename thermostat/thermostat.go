// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermostat is the control logic of a three relay HVAC thermostat
// (furnace, air conditioner, fan) that reads an air sensor and reports on a
// character LCD.
//
// The controller is a bang-bang loop with a hysteresis band around the set
// point. Temperatures are in degrees Fahrenheit. Relay hardware and the
// display are supplied by the caller.
package thermostat

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Mode is the HVAC operating mode.
type Mode int

const (
	Off Mode = iota
	// Heat runs the furnace below the band and never cools.
	Heat
	// Cool runs the air conditioner above the band and never heats.
	Cool
	// Hold heats or cools as needed and idles inside the band.
	Hold
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "Off"
	case Heat:
		return "Heat"
	case Cool:
		return "Cool"
	case Hold:
		return "Hold"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// FanMode selects when the fan runs.
type FanMode int

const (
	// FanAuto runs the fan only while heating or cooling.
	FanAuto FanMode = iota
	FanOn
)

func (f FanMode) String() string {
	if f == FanOn {
		return "On"
	}
	return "Auto"
}

// Config is the user facing thermostat setup.
type Config struct {
	Mode    Mode
	FanMode FanMode
	// SetPoint is the target temperature in °F.
	SetPoint int
	// Hysteresis is the half width of the dead band around SetPoint, in °F.
	Hysteresis float64
	// BacklightTimeout is the idle time after which the display backlight
	// should go off. Zero keeps it on.
	BacklightTimeout time.Duration
}

// DefaultConfig is off, fan auto, 70 °F ± 1 °F, 30 s of backlight.
var DefaultConfig = Config{
	Mode:             Off,
	FanMode:          FanAuto,
	SetPoint:         70,
	Hysteresis:       1,
	BacklightTimeout: 30 * time.Second,
}

// Relays switches the HVAC equipment. true closes the relay.
type Relays interface {
	SetHeat(on bool) error
	SetCool(on bool) error
	SetFan(on bool) error
}

// Thermostat holds the requested relay states and the last reading.
//
// Thermostat is not safe for concurrent use.
type Thermostat struct {
	Config

	// Requested relay states, applied by Apply.
	Heat bool
	Cool bool
	Fan  bool

	// Last successful reading.
	Temperature float64
	Humidity    float64

	lastWake time.Time
	log      logrus.FieldLogger
}

// New returns a Thermostat with every relay off. A nil log uses the logrus
// standard logger.
func New(cfg Config, log logrus.FieldLogger) *Thermostat {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Thermostat{Config: cfg, log: log}
}

// Decide sets Heat and Cool from Mode, the last Temperature and the band
// around SetPoint. Inside the band Heat and Cool modes keep the current
// state.
func (t *Thermostat) Decide() {
	target := float64(t.SetPoint)
	below := t.Temperature < target-t.Hysteresis
	above := t.Temperature > target+t.Hysteresis
	switch t.Mode {
	case Off:
		t.Heat, t.Cool = false, false
	case Heat:
		if below {
			t.Heat, t.Cool = true, false
		} else if above {
			t.Heat, t.Cool = false, false
		}
	case Cool:
		if above {
			t.Heat, t.Cool = false, true
		} else if below {
			t.Heat, t.Cool = false, false
		}
	case Hold:
		switch {
		case below:
			t.Heat, t.Cool = true, false
		case above:
			t.Heat, t.Cool = false, true
		default:
			t.Heat, t.Cool = false, false
		}
	}
}

// ControlFan sets Fan from FanMode and the heat and cool requests.
func (t *Thermostat) ControlFan() {
	switch t.FanMode {
	case FanOn:
		t.Fan = true
	default:
		t.Fan = t.Heat || t.Cool
	}
}

// Apply enforces the safety rules on the requested states and then sets
// every relay. Furnace and air conditioner never run together, and neither
// runs without the fan. All three relays are set even if one fails; the
// errors are joined.
func (t *Thermostat) Apply(r Relays) error {
	if t.Heat && t.Cool {
		t.Heat, t.Cool = false, false
		t.log.WithField("mode", t.Mode).Error("furnace and air conditioner requested together, both turned off")
	}
	if (t.Heat || t.Cool) && !t.Fan {
		t.Fan = true
		t.log.WithFields(logrus.Fields{"heat": t.Heat, "cool": t.Cool}).Warn("fan off while HVAC active, forcing fan on")
	}
	return errors.Join(r.SetHeat(t.Heat), r.SetCool(t.Cool), r.SetFan(t.Fan))
}

// Update runs Decide, ControlFan and Apply.
func (t *Thermostat) Update(r Relays) error {
	t.Decide()
	t.ControlFan()
	return t.Apply(r)
}

// Wake records user activity at now. The backlight idle timer restarts.
func (t *Thermostat) Wake(now time.Time) {
	t.lastWake = now
}

// BacklightExpired reports whether BacklightTimeout has elapsed since the
// last Wake.
func (t *Thermostat) BacklightExpired(now time.Time) bool {
	if t.BacklightTimeout <= 0 {
		return false
	}
	return now.Sub(t.lastWake) >= t.BacklightTimeout
}
