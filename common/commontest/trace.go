// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package commontest is meant to be used to test drivers built on the common
// package. Trace records bus transactions and delays in a single ordered log
// so that tests can assert on the interleaving a datasheet mandates.
package commontest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ErrNak is returned by the failure helpers.
var ErrNak = errors.New("commontest: not acknowledged")

// Event is one recorded action. A bus write has a zero Sleep; a delay has a
// zero Addr and a nil W.
type Event struct {
	Addr  uint16
	W     []byte
	Sleep time.Duration
}

func (e Event) String() string {
	if e.Sleep != 0 {
		return fmt.Sprintf("sleep %s", e.Sleep)
	}
	return fmt.Sprintf("tx %#02x % x", e.Addr, e.W)
}

// W returns the Event for a write of b to addr.
func W(addr uint16, b ...byte) Event {
	if len(b) == 0 {
		return Event{Addr: addr}
	}
	return Event{Addr: addr, W: b}
}

// S returns the Event for a delay of d.
func S(d time.Duration) Event {
	return Event{Sleep: d}
}

// Trace implements i2c.Bus and common.Delayer.
//
// Reads are not supported; the devices it is meant for are write-only.
type Trace struct {
	sync.Mutex
	Events []Event
	// Fail is consulted before each transaction when set. A non-nil error is
	// returned to the caller and the transaction is not recorded.
	Fail func(addr uint16, w []byte) error
}

func (t *Trace) String() string {
	return "trace"
}

// Tx implements i2c.Bus.
func (t *Trace) Tx(addr uint16, w, r []byte) error {
	if len(r) != 0 {
		return errors.New("commontest: read unsupported")
	}
	t.Lock()
	defer t.Unlock()
	if t.Fail != nil {
		if err := t.Fail(addr, w); err != nil {
			return err
		}
	}
	e := Event{Addr: addr}
	if len(w) != 0 {
		e.W = append([]byte(nil), w...)
	}
	t.Events = append(t.Events, e)
	return nil
}

// SetSpeed implements i2c.Bus.
func (t *Trace) SetSpeed(f physic.Frequency) error {
	return nil
}

// Sleep implements common.Delayer. It returns immediately.
func (t *Trace) Sleep(d time.Duration) {
	t.Lock()
	defer t.Unlock()
	t.Events = append(t.Events, Event{Sleep: d})
}

// Writes returns the recorded bus transactions, without delays.
func (t *Trace) Writes() []Event {
	t.Lock()
	defer t.Unlock()
	var out []Event
	for _, e := range t.Events {
		if e.Sleep == 0 {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards the recorded events.
func (t *Trace) Reset() {
	t.Lock()
	defer t.Unlock()
	t.Events = nil
}

// NakAt returns a Fail function refusing every transaction to addrs.
func NakAt(addrs ...uint16) func(addr uint16, w []byte) error {
	return func(addr uint16, w []byte) error {
		for _, a := range addrs {
			if a == addr {
				return ErrNak
			}
		}
		return nil
	}
}

// FailAfter returns a Fail function that lets n transactions through and
// refuses every one after.
func FailAfter(n int) func(addr uint16, w []byte) error {
	count := 0
	return func(addr uint16, w []byte) error {
		if count >= n {
			return ErrNak
		}
		count++
		return nil
	}
}

var _ i2c.Bus = &Trace{}
