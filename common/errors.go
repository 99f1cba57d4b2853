// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParameter is returned when an argument is outside the range the
// device accepts.
var ErrInvalidParameter = errors.New("invalid parameter")

// CommError is returned when a bus transaction fails. Err is the error the
// transport returned.
type CommError struct {
	Addr uint16
	Err  error
}

func (e *CommError) Error() string {
	return fmt.Sprintf("communication error at %#02x: %v", e.Addr, e.Err)
}

func (e *CommError) Unwrap() error {
	return e.Err
}

// Wrap prefixes err with the package name unless it already carries it.
func Wrap(pkg string, err error) error {
	if err == nil || strings.HasPrefix(err.Error(), pkg+":") {
		return err
	}
	return fmt.Errorf("%s: %w", pkg, err)
}
