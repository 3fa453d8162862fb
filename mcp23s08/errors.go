// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23s08

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAddress is returned when the hardware address is not in 0-3.
	// No transaction is issued in that case.
	ErrInvalidAddress = errors.New("mcp23s08: hardware address must be 0-3")
	// ErrReleased is returned by every operation after Release.
	ErrReleased = errors.New("mcp23s08: device released")

	errPullDown    = errors.New("mcp23s08: PullDown is not supported")
	errEdge        = errors.New("mcp23s08: edge detection not supported")
	errPWM         = errors.New("mcp23s08: PWM is not supported")
	errInvalidPin  = errors.New("mcp23s08: invalid pin")
	errInvalidFunc = errors.New("mcp23s08: function not supported")
)

// TransportError is returned when a transaction on the bus failed. The
// register touched by the failed transaction is in an unknown state; the
// local copies of IODIR and OLAT are untouched.
type TransportError struct {
	Op  string // "read" or "write"
	Reg Register
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mcp23s08: %s %s: %v", e.Op, e.Reg, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
