// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import "time"

// Delayer blocks the caller for at least d. Drivers use it for the settle
// times their datasheets mandate instead of calling time.Sleep directly.
type Delayer interface {
	Sleep(d time.Duration)
}

// SleepFunc adapts a function to a Delayer.
type SleepFunc func(time.Duration)

// Sleep implements Delayer.
func (f SleepFunc) Sleep(d time.Duration) {
	f(d)
}

// SystemDelay sleeps the calling goroutine.
var SystemDelay Delayer = SleepFunc(time.Sleep)
