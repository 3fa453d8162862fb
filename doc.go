// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpioexp is a container for GPIO expander drivers and their
// debugging tools.
//
// The mcp23s08 package drives the Microchip MCP23S08 SPI port expander, and
// portview renders an expander port on a terminal.
package gpioexp
