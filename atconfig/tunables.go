/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package atconfig centralizes the tunable constants a host application may
// want to override per deployment (command length bound, FIFO size, tick
// rate, concurrent command bound), validated before they reach any engine
// component.
package atconfig

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Tunables holds the engine's sizing constants, exposed as overridable
// settings so a caller embedding this engine can size it for their own
// device without recompiling.
type Tunables struct {
	// CmdMax bounds the rendered length, in bytes, of a command line
	// submitted through ExecCmd: a line of CmdMax bytes or more is refused.
	CmdMax int `mapstructure:"cmd_max" validate:"min=8"`
	// FifoSize is the capacity, in bytes, of each instance's receive FIFO.
	FifoSize int `mapstructure:"fifo_size" validate:"min=64"`
	// TickInterval is how often the drain task and the Timeout Supervisor
	// run.
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"min=1000000"`
	// MaxConcurrentCmd bounds how many ExecCmd coroutines may be in flight
	// at once across the whole registry.
	MaxConcurrentCmd int64 `mapstructure:"max_concurrent_cmd" validate:"min=1"`
}

// Default returns the stock sizing: CmdMax 128, FifoSize 2048, TickInterval
// 10ms.
func Default() Tunables {
	return Tunables{
		CmdMax:           128,
		FifoSize:         2048,
		TickInterval:     10 * time.Millisecond,
		MaxConcurrentCmd: 32,
	}
}

var validate = validator.New()

// Validate checks the Tunables against their struct tags, surfacing a bad
// setting as a Go error instead of a silent clamp.
func (t Tunables) Validate() error {
	return validate.Struct(t)
}
