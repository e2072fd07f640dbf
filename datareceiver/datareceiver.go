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

// Package datareceiver implements the Fixed-Length Receiver: a Data Session
// that captures exactly N bytes into an engine-owned buffer and reports the
// result through a callback, whether it completes on its own or is tripped
// by the Timeout Supervisor.
package datareceiver

import (
	"sync"
	"time"

	"github.com/nabbar/atengine/aterr"
)

// Callback reports a completed or timed-out Data Session: (OK, bytes) on
// success, (TIMEOUT, nil) on expiry. It is invoked at most once.
type Callback func(result aterr.Result, data []byte)

// Session is one pending fixed-length capture. It is allocated by
// SetWaitDataCallback and released once Feed or TripTimeout fires its
// callback.
type Session struct {
	mu sync.Mutex

	buf     []byte
	l       int
	timeout time.Duration
	start   time.Time
	done    bool
	cb      Callback
}

// New creates a Data Session targeting exactly n bytes, with the given
// timeout starting at start, invoking cb on completion.
func New(n int, timeout time.Duration, start time.Time, cb Callback) *Session {
	if n < 0 {
		n = 0
	}
	return &Session{
		buf:     make([]byte, 0, n),
		timeout: timeout,
		start:   start,
		cb:      cb,
	}
}

// Target returns N, the exact byte count this session waits for.
func (s *Session) Target() int {
	return cap(s.buf)
}

// Timeout returns the session's completion timeout.
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

// StartedAt returns when the session began waiting.
func (s *Session) StartedAt() time.Time {
	return s.start
}

// Done reports whether the session has already fired its callback.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Feed appends one byte. Once the buffer reaches its target length, it
// invokes the callback with (OK, buffer) and marks the session done. It
// reports whether this byte completed the session.
func (s *Session) Feed(b byte) (completed bool) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return false
	}
	s.buf = append(s.buf, b)
	full := len(s.buf) == cap(s.buf)
	var out []byte
	if full {
		s.done = true
		out = s.buf
	}
	cb := s.cb
	s.mu.Unlock()

	if full {
		cb(aterr.Ok, out)
		return true
	}
	return false
}

// TripTimeout is invoked by the Timeout Supervisor when the session's
// deadline has passed without completing. It invokes the callback with
// (TIMEOUT, nil) and marks the session done. It is a no-op if the session
// already completed.
func (s *Session) TripTimeout() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	cb := s.cb
	s.mu.Unlock()

	cb(aterr.Timeout, nil)
}
