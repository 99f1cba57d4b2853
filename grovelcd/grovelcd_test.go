// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package grovelcd

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/grovestat/devices/aip31068"
	"github.com/grovestat/devices/common"
	"github.com/grovestat/devices/common/commontest"
)

const lcd = aip31068.DefaultAddress

func cmd(b byte) commontest.Event {
	return commontest.W(lcd, 0x80, b)
}

// lcdInit is the trace of the text side of New for a 16x2 display.
var lcdInit = []commontest.Event{
	commontest.S(50 * time.Millisecond),
	cmd(0x38),
	commontest.S(4500 * time.Microsecond),
	cmd(0x38),
	commontest.S(150 * time.Microsecond),
	cmd(0x38),
	cmd(0x38),
	cmd(0x0c),
	cmd(0x01),
	commontest.S(2 * time.Millisecond),
	cmd(0x06),
}

func concat(parts ...[]commontest.Event) []commontest.Event {
	var out []commontest.Event
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func checkEvents(t *testing.T, want []commontest.Event, tr *commontest.Trace) {
	t.Helper()
	if diff := cmp.Diff(want, tr.Events); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

// newV4 returns a Dev on a bus where nothing answers at AddressV5.
func newV4(t *testing.T) (*Dev, *commontest.Trace) {
	t.Helper()
	tr := &commontest.Trace{Fail: commontest.NakAt(AddressV5)}
	dev, err := New(tr, tr, nil)
	if err != nil {
		t.Fatal(err)
	}
	tr.Fail = nil
	tr.Reset()
	return dev, tr
}

func newV5(t *testing.T) (*Dev, *commontest.Trace) {
	t.Helper()
	tr := &commontest.Trace{}
	dev, err := New(tr, tr, nil)
	if err != nil {
		t.Fatal(err)
	}
	tr.Reset()
	return dev, tr
}

func TestNewV4(t *testing.T) {
	tr := &commontest.Trace{Fail: commontest.NakAt(AddressV5)}
	dev, err := New(tr, tr, nil)
	if err != nil {
		t.Fatal(err)
	}
	if dev.Variant() != V4 {
		t.Errorf("Variant() = %s, want V4", dev.Variant())
	}
	checkEvents(t, concat(lcdInit, []commontest.Event{
		commontest.W(AddressV4, 0x00, 0x00),
		commontest.W(AddressV4, 0x08, 0xff),
		commontest.W(AddressV4, 0x01, 0x20),
		commontest.W(AddressV4, 0x04, 0xff),
		commontest.W(AddressV4, 0x03, 0xff),
		commontest.W(AddressV4, 0x02, 0xff),
	}), tr)
}

func TestNewV5(t *testing.T) {
	tr := &commontest.Trace{}
	dev, err := New(tr, tr, nil)
	if err != nil {
		t.Fatal(err)
	}
	if dev.Variant() != V5 {
		t.Errorf("Variant() = %s, want V5", dev.Variant())
	}
	checkEvents(t, concat(lcdInit, []commontest.Event{
		commontest.W(AddressV5),
		commontest.W(AddressV5, 0x00, 0x07),
		commontest.S(200 * time.Microsecond),
		commontest.W(AddressV5, 0x04, 0x15),
		commontest.W(AddressV5, 0x06, 0xff),
		commontest.W(AddressV5, 0x07, 0xff),
		commontest.W(AddressV5, 0x08, 0xff),
	}), tr)
}

func TestNewSingleRow(t *testing.T) {
	tr := &commontest.Trace{Fail: commontest.NakAt(AddressV5)}
	opts := Opts{Opts: aip31068.Opts{Cols: 8, Rows: 1, DotSize: aip31068.Dots5x10}}
	if _, err := New(tr, tr, &opts); err != nil {
		t.Fatal(err)
	}
	if got := tr.Writes()[0]; !cmp.Equal(got, cmd(0x34)) {
		t.Errorf("first function set = %s, want %s", got, cmd(0x34))
	}
}

func TestNewInvalidOpts(t *testing.T) {
	tr := &commontest.Trace{}
	opts := Opts{Opts: aip31068.Opts{Cols: 16, Rows: 3}}
	if _, err := New(tr, tr, &opts); !errors.Is(err, common.ErrInvalidParameter) {
		t.Errorf("New() returned %v, want ErrInvalidParameter", err)
	}
	if len(tr.Events) != 0 {
		t.Errorf("invalid opts caused traffic: %v", tr.Events)
	}
}

func TestNewErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		fail func(addr uint16, w []byte) error
	}{
		{"lcd", commontest.NakAt(lcd)},
		{"v4 backlight", commontest.NakAt(AddressV5, AddressV4)},
		{"v5 reset", func(addr uint16, w []byte) error {
			if addr == AddressV5 && len(w) != 0 {
				return commontest.ErrNak
			}
			return nil
		}},
	} {
		t.Run(test.name, func(t *testing.T) {
			tr := &commontest.Trace{Fail: test.fail}
			dev, err := New(tr, tr, nil)
			if dev != nil {
				t.Error("New() returned a Dev on failure")
			}
			var commErr *common.CommError
			if !errors.As(err, &commErr) {
				t.Fatalf("New() returned %v, want a CommError", err)
			}
			if !errors.Is(err, commontest.ErrNak) {
				t.Errorf("New() returned %v, want it to wrap ErrNak", err)
			}
		})
	}
}

func TestSetRGBV4(t *testing.T) {
	dev, tr := newV4(t)
	if err := dev.SetRGB(255, 0, 128); err != nil {
		t.Fatal(err)
	}
	checkEvents(t, []commontest.Event{
		commontest.W(AddressV4, 0x04, 255),
		commontest.W(AddressV4, 0x03, 0),
		commontest.W(AddressV4, 0x02, 128),
	}, tr)
}

func TestSetRGBV5(t *testing.T) {
	dev, tr := newV5(t)
	if err := dev.SetRGB(255, 0, 128); err != nil {
		t.Fatal(err)
	}
	checkEvents(t, []commontest.Event{
		commontest.W(AddressV5, 0x06, 255),
		commontest.W(AddressV5, 0x07, 0),
		commontest.W(AddressV5, 0x08, 128),
	}, tr)
}

func TestSetRGBStopsOnError(t *testing.T) {
	dev, tr := newV4(t)
	tr.Fail = commontest.FailAfter(1)
	err := dev.SetRGB(1, 2, 3)
	if !errors.Is(err, commontest.ErrNak) {
		t.Fatalf("SetRGB() returned %v", err)
	}
	if len(tr.Events) != 1 {
		t.Errorf("got %d writes, want 1", len(tr.Events))
	}
}

func TestBacklightWhiteTwice(t *testing.T) {
	for _, newDev := range []func(*testing.T) (*Dev, *commontest.Trace){newV4, newV5} {
		dev, tr := newDev(t)
		for range 2 {
			if err := dev.BacklightWhite(); err != nil {
				t.Fatal(err)
			}
		}
		w := tr.Writes()
		if len(w) != 6 {
			t.Fatalf("%s: got %d writes, want 6", dev.Variant(), len(w))
		}
		if diff := cmp.Diff(w[:3], w[3:]); diff != "" {
			t.Errorf("%s: second triple differs (-first +second):\n%s", dev.Variant(), diff)
		}
	}
}

func TestBacklightOff(t *testing.T) {
	dev, tr := newV5(t)
	if err := dev.BacklightOff(); err != nil {
		t.Fatal(err)
	}
	checkEvents(t, []commontest.Event{
		commontest.W(AddressV5, 0x06, 0),
		commontest.W(AddressV5, 0x07, 0),
		commontest.W(AddressV5, 0x08, 0),
	}, tr)
}

func TestRGBBacklightClamps(t *testing.T) {
	dev, tr := newV4(t)
	if err := dev.RGBBacklight(0, 300, 7); err != nil {
		t.Fatal(err)
	}
	checkEvents(t, []commontest.Event{
		commontest.W(AddressV4, 0x04, 0),
		commontest.W(AddressV4, 0x03, 0xff),
		commontest.W(AddressV4, 0x02, 7),
	}, tr)
}

func TestPromotedDisplayOps(t *testing.T) {
	dev, tr := newV4(t)
	if err := dev.ShowCursor(true); err != nil {
		t.Fatal(err)
	}
	if err := dev.Blink(true); err != nil {
		t.Fatal(err)
	}
	if err := dev.Display(false); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetCursor(5, 9); err != nil {
		t.Fatal(err)
	}
	if err := dev.CreateChar(10, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatal(err)
	}
	want := []commontest.Event{cmd(0x0e), cmd(0x0f), cmd(0x0b), cmd(0xc5), cmd(0x50)}
	for i := byte(1); i <= 8; i++ {
		want = append(want, commontest.W(lcd, 0x40, i))
	}
	checkEvents(t, want, tr)
	if dev.Row() != 1 {
		t.Errorf("Row() = %d, want 1", dev.Row())
	}
}

func TestHalt(t *testing.T) {
	dev, tr := newV5(t)
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	checkEvents(t, []commontest.Event{
		cmd(0x01),
		commontest.S(2 * time.Millisecond),
		cmd(0x08),
		commontest.W(AddressV5, 0x06, 0),
		commontest.W(AddressV5, 0x07, 0),
		commontest.W(AddressV5, 0x08, 0),
	}, tr)
}

func TestRelease(t *testing.T) {
	dev, tr := newV4(t)
	bus, delay := dev.Release()
	if bus != tr {
		t.Error("Release() did not return the bus")
	}
	if delay != tr {
		t.Error("Release() did not return the delay")
	}
	if len(tr.Events) != 0 {
		t.Errorf("Release() caused traffic: %v", tr.Events)
	}
	if err := dev.SetRGB(1, 2, 3); !errors.Is(err, aip31068.ErrReleased) {
		t.Errorf("SetRGB() after Release returned %v", err)
	}
	if err := dev.Print("x"); !errors.Is(err, aip31068.ErrReleased) {
		t.Errorf("Print() after Release returned %v", err)
	}
	if err := dev.Clear(); !errors.Is(err, aip31068.ErrReleased) {
		t.Errorf("Clear() after Release returned %v", err)
	}
	if len(tr.Events) != 0 {
		t.Errorf("released Dev touched the bus: %v", tr.Events)
	}
	if dev.Variant() != V4 {
		t.Errorf("Variant() = %s after Release", dev.Variant())
	}
}

func TestString(t *testing.T) {
	dev, _ := newV5(t)
	if got, want := dev.String(), "grovelcd V5 aip31068 Rows: 2 Cols: 16"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if V4.String() != "V4" || Variant(9).String() != "unknown" {
		t.Error("Variant.String() mismatch")
	}
}
