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

// Package respbuf holds the Response Handle: a caller-owned buffer that
// accumulates a command's captured lines as NUL-separated records, reused
// across many commands and reclaimed by the garbage collector once the
// caller drops it.
package respbuf

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nabbar/atengine/aterr"
)

// Handle is a caller-owned response buffer. The zero value is not usable;
// construct one with New. A Handle is reused across many commands: Begin
// resets it for the next session rather than allocating a new object per
// command.
type Handle struct {
	mu sync.Mutex

	id uuid.UUID

	buf []byte
	l   int
	cap int

	lineTarget int
	timeout    time.Duration

	lineCount int
	start     time.Time
	done      bool
	result    aterr.Result
	doneCh    chan struct{}
}

// New creates a Response Handle with buffer capacity bufSize, target line
// count lineTarget (0 means "end on OK/ERROR/end-sign"), and completion
// timeout. A bufSize below 2 is clamped to 2 rather than rejected.
func New(bufSize, lineTarget int, timeout time.Duration) *Handle {
	if bufSize < 2 {
		bufSize = 2
	}
	if lineTarget < 0 {
		lineTarget = 0
	}
	h := &Handle{
		id:         uuid.New(),
		buf:        make([]byte, bufSize),
		cap:        bufSize,
		lineTarget: lineTarget,
		timeout:    timeout,
		done:       true,
		result:     aterr.Ok,
		doneCh:     closedChan(),
	}
	return h
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// ID returns the handle's stable identity, used by the registry and by log
// lines; it does not change across Begin calls.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Cap returns the buffer capacity B.
func (h *Handle) Cap() int {
	return h.cap
}

// LineTarget returns L, the target line count (0 meaning marker-based).
func (h *Handle) LineTarget() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lineTarget
}

// Timeout returns the handle's completion timeout.
func (h *Handle) Timeout() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.timeout
}

// Begin resets the handle for a new command submission: the buffer is
// zero-filled, length and line count reset, done cleared, and start stamped
// at now. It mirrors ExecCmd's "copy the handle into the session, zero the
// session buffer, set start = now" step.
func (h *Handle) Begin(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.buf {
		h.buf[i] = 0
	}
	h.l = 0
	h.lineCount = 0
	h.done = false
	h.start = now
	h.result = aterr.Other
	h.doneCh = make(chan struct{})
}

// Done reports whether the session has completed.
func (h *Handle) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

// DoneChan returns a channel closed when the session completes. ExecCmd's
// single suspension point is a receive on this channel.
func (h *Handle) DoneChan() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.doneCh
}

// StartedAt returns the timestamp Begin last stamped.
func (h *Handle) StartedAt() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.start
}

// Len returns the number of bytes currently written to the buffer.
func (h *Handle) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.l
}

// LastByte returns the most recently appended byte, or (0, false) if the
// buffer is empty. Used by the parser's per-byte classification, which
// compares the incoming byte to bytes already appended.
func (h *Handle) LastByte() (byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.l == 0 {
		return 0, false
	}
	return h.buf[h.l-1], true
}

// LastBytes returns the last n appended bytes, oldest first. If fewer than n
// bytes have been appended, it returns (nil, false).
func (h *Handle) LastBytes(n int) (out []byte, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.l < n {
		return nil, false
	}
	out = make([]byte, n)
	copy(out, h.buf[h.l-n:h.l])
	return out, true
}

// WouldOverflow reports whether appending one more verbatim byte would push
// length to Cap()-1 or beyond, one byte staying reserved for the final
// record terminator.
func (h *Handle) WouldOverflow() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.l+1 >= h.cap-1
}

// AppendByte writes b as the next buffer byte. It reports false, without
// writing, if the buffer has no room left at all (Len == Cap); callers
// should check WouldOverflow before appending a verbatim byte per the
// parser's overflow policy.
func (h *Handle) AppendByte(b byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.l >= h.cap {
		return false
	}
	h.buf[h.l] = b
	h.l++
	return true
}

// Terminate appends a NUL record terminator and increments the line count.
// It reports false, without writing, if the buffer is full.
func (h *Handle) Terminate() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.l >= h.cap {
		return false
	}
	h.buf[h.l] = 0
	h.l++
	h.lineCount++
	return true
}

// TerminateLine closes the record ended by a CR LF pair: the CR already
// stored is overwritten with the NUL terminator, so neither byte of the pair
// survives in the record. If no trailing CR is present (a bare terminator on
// an empty buffer), it falls back to appending the NUL like Terminate.
func (h *Handle) TerminateLine() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.l > 0 && h.buf[h.l-1] == '\r' {
		h.buf[h.l-1] = 0
		h.lineCount++
		return true
	}
	if h.l >= h.cap {
		return false
	}
	h.buf[h.l] = 0
	h.l++
	h.lineCount++
	return true
}

// LineCount returns the number of NUL terminators written so far, valid
// whether or not the session has completed (the parser consults it mid-
// session to apply the count-based completion policy).
func (h *Handle) LineCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lineCount
}

// SetResult overwrites the stored result without touching the completion
// state. ExecCmd uses it to stamp BUSY on a handle that was never armed, so
// the caller can read the refusal without a session ever having run.
func (h *Handle) SetResult(result aterr.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.result = result
}

// Complete marks the session finished with the given result. It is a no-op
// if the session was already done, so a supervisor timeout racing a parser
// completion can neither close doneCh twice nor rewrite the first result.
func (h *Handle) Complete(result aterr.Result) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.done {
		return
	}
	h.done = true
	h.result = result
	close(h.doneCh)
}

// GetResult returns the completion result, or OTHER if the session has not
// completed yet.
func (h *Handle) GetResult() aterr.Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.done {
		return aterr.Other
	}
	return h.result
}

// GetLineTotal returns the number of complete lines, or 0 if the session has
// not completed yet.
func (h *Handle) GetLineTotal() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.done {
		return 0
	}
	return h.lineCount
}

// GetLine returns the i-th NUL-terminated record (0-indexed), or ("", false)
// if the session is unfinished or i is out of range. Empty records (two
// adjacent terminators) are legal and returned as "".
func (h *Handle) GetLine(i int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.done || i < 0 || i >= h.lineCount {
		return "", false
	}

	start := 0
	rec := 0
	for pos := 0; pos < h.l; pos++ {
		if h.buf[pos] == 0 {
			if rec == i {
				return string(h.buf[start:pos]), true
			}
			rec++
			start = pos + 1
		}
	}
	return "", false
}

// GetLineByKeyword scans records in order and returns the first whose
// content contains kw as a substring. Empty records are skipped.
func (h *Handle) GetLineByKeyword(kw string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.done {
		return "", false
	}

	start := 0
	for pos := 0; pos < h.l; pos++ {
		if h.buf[pos] == 0 {
			if pos > start {
				line := string(h.buf[start:pos])
				if strings.Contains(line, kw) {
					return line, true
				}
			}
			start = pos + 1
		}
	}
	return "", false
}
