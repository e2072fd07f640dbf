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

// Package aterr defines the completion-result taxonomy shared by response
// sessions and data sessions, plus the sentinel errors returned by the
// registration-style calls (RegisterURC, SetWaitDataCallback, Create).
package aterr

import "errors"

// Result classifies how a response or data session ended. It reports
// completion, not command success: a modem's own "ERROR" reply still
// completes a session with Result Ok, since the caller inspects the
// returned lines to judge success. Do not conflate Result with a Go error.
type Result uint8

const (
	// Ok means the session completed normally. Both a modem "OK" and a
	// modem "ERROR" line map here.
	Ok Result = iota
	// Timeout means the Timeout Supervisor tripped the session before it
	// completed on its own.
	Timeout
	// LackOfMemory means the response buffer overflowed before completion.
	LackOfMemory
	// ParamError is reserved for caller-side validation failures.
	ParamError
	// Busy means ExecCmd was attempted while the instance already had an
	// active response or data session.
	Busy
	// Other means the session has not completed yet; returned by the
	// resp_get_* accessors when Done() is still false.
	Other
)

// String renders the Result the way log lines and test failures expect.
func (r Result) String() string {
	switch r {
	case Ok:
		return "OK"
	case Timeout:
		return "TIMEOUT"
	case LackOfMemory:
		return "LACK_OF_MEMORY"
	case ParamError:
		return "PARAM_ERROR"
	case Busy:
		return "BUSY"
	default:
		return "OTHER"
	}
}

var (
	// ErrNilSend is returned by Create when the send callback is nil; a
	// coroutine with nowhere to send a rendered command cannot run.
	ErrNilSend = errors.New("atengine: send callback must not be nil")

	// ErrUnknownHandle is returned when an operation names an instance
	// handle the registry does not hold (one that was never created).
	ErrUnknownHandle = errors.New("atengine: unknown handle")

	// ErrInvalidURC is returned by RegisterURC when prefix, suffix, or the
	// callback is missing, or the payload capacity is zero.
	ErrInvalidURC = errors.New("atengine: urc prefix, suffix and callback must be non-empty, and buffer size non-zero")

	// ErrCmdTooLong is returned when a rendered command line is
	// atconfig.Tunables.CmdMax bytes or longer.
	ErrCmdTooLong = errors.New("atengine: rendered command exceeds CmdMax")

	// ErrHandleInUse is returned by SetWaitDataCallback when the instance
	// already has an active response or data session.
	ErrHandleInUse = errors.New("atengine: instance already has an active session")

	// ErrInvalidParam is the Go-error face of the ParamError result: a
	// registration call received an argument it cannot act on, such as a
	// non-positive data-session length.
	ErrInvalidParam = errors.New("atengine: invalid parameter")
)
