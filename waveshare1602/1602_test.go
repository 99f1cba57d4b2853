// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package waveshare1602

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/grovestat/devices/aip31068"
	"github.com/grovestat/devices/common/commontest"
	"periph.io/x/conn/v3/display"
)

func TestRGBBacklight(t *testing.T) {
	tr := &commontest.Trace{}
	dev, err := New(tr, tr, LCD1602RGBBacklight, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := tr.Writes()
	want := []commontest.Event{
		commontest.W(RGBAddress, 0x00, 0x01),
		commontest.W(RGBAddress, 0x08, 0x00),
		commontest.W(RGBAddress, 0x01, 0x05),
	}
	if diff := cmp.Diff(want, w[:3]); diff != "" {
		t.Errorf("backlight setup mismatch (-want +got):\n%s", diff)
	}
	for _, e := range w[3:] {
		if e.Addr != aip31068.DefaultAddress {
			t.Errorf("unexpected write %s during display setup", e)
		}
	}

	tr.Reset()
	if err := dev.RGBBacklight(0x10, 0, 0xff); err != nil {
		t.Fatal(err)
	}
	// Blue is PWM0, red is PWM2.
	want = []commontest.Event{
		commontest.W(RGBAddress, 0x04, 0x10),
		commontest.W(RGBAddress, 0x08, 0x21),
	}
	if diff := cmp.Diff(want, tr.Writes()); diff != "" {
		t.Errorf("RGBBacklight mismatch (-want +got):\n%s", diff)
	}
}

func TestMonoBacklight(t *testing.T) {
	tr := &commontest.Trace{}
	dev, err := New(tr, tr, LCD1602MonoBacklight, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range tr.Writes() {
		if e.Addr != aip31068.DefaultAddress {
			t.Errorf("unexpected write %s", e)
		}
	}
	if err := dev.Backlight(0xff); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("Backlight() returned %v", err)
	}
}

func TestDimmableNotImplemented(t *testing.T) {
	tr := &commontest.Trace{}
	if _, err := New(tr, tr, LCD1602DimmableMonoBacklight, nil); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("New() returned %v", err)
	}
	if len(tr.Events) != 0 {
		t.Errorf("unexpected traffic %v", tr.Events)
	}
}
