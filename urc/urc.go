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

// Package urc implements the per-instance Unsolicited Result Code table: an
// ordered list of prefix/suffix patterns, each tracked by an independent
// state machine, evaluated against every byte while the instance is not
// busy with a response or data session.
package urc

import (
	"sync"

	"github.com/nabbar/atengine/aterr"
)

// Callback receives a matched URC's body, with the trailing suffix already
// stripped.
type Callback func(body []byte)

// Entry is one registered URC pattern. Prefix matching never backtracks on
// mismatch, so a self-overlapping prefix like "AAB" will not match "AAAB";
// this matching behavior is kept for compatibility with deployed peers
// rather than upgraded to a KMP table.
type Entry struct {
	mu sync.Mutex

	prefix []byte
	suffix []byte

	body []byte

	prefixPos int
	suffixPos int
	capturing bool

	cb Callback
}

// Table holds one instance's URC entries in registration order.
type Table struct {
	mu      sync.RWMutex
	entries []*Entry
	onMatch func()
}

// New returns an empty URC table.
func New() *Table {
	return &Table{}
}

// Register appends a new entry, evaluated after every entry already
// registered. It returns ErrInvalidURC if prefix, suffix, the callback, or
// bufSize are missing.
func (t *Table) Register(prefix, suffix string, bufSize int, cb Callback) (*Entry, error) {
	if prefix == "" || suffix == "" || cb == nil || bufSize <= 0 {
		return nil, aterr.ErrInvalidURC
	}
	e := &Entry{
		prefix: []byte(prefix),
		suffix: []byte(suffix),
		body:   make([]byte, 0, bufSize),
		cb:     cb,
	}
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()
	return e, nil
}

// Feed evaluates every entry against byte b, in registration order. Matched
// entries invoke their callback synchronously, after the entry's internal
// lock is released. A callback must not itself feed bytes or issue commands
// on the same instance.
func (t *Table) Feed(b byte) {
	t.mu.RLock()
	entries := make([]*Entry, len(t.entries))
	copy(entries, t.entries)
	onMatch := t.onMatch
	t.mu.RUnlock()

	for _, e := range entries {
		if e.feed(b) && onMatch != nil {
			onMatch()
		}
	}
}

// Len reports how many entries are registered.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// SetOnMatch installs a hook invoked once per entry whose callback fires.
// Intended for observability (atmetrics counters); nil disables it.
func (t *Table) SetOnMatch(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMatch = fn
}

func (e *Entry) reset() {
	e.body = e.body[:0]
	e.prefixPos = 0
	e.suffixPos = 0
	e.capturing = false
}

// feed advances this entry's independent state machine by one byte. It
// reports whether this byte completed a match (i.e. fired the callback).
func (e *Entry) feed(b byte) bool {
	e.mu.Lock()

	if !e.capturing {
		if b == e.prefix[e.prefixPos] {
			e.prefixPos++
			if e.prefixPos == len(e.prefix) {
				e.body = e.body[:0]
				e.suffixPos = 0
				e.capturing = true
			}
		} else {
			e.prefixPos = 0
		}
		e.mu.Unlock()
		return false
	}

	e.body = append(e.body, b)

	fired := false
	var payload []byte
	var cb Callback

	if b == e.suffix[e.suffixPos] {
		e.suffixPos++
		if e.suffixPos == len(e.suffix) {
			payload = make([]byte, len(e.body)-len(e.suffix))
			copy(payload, e.body[:len(e.body)-len(e.suffix)])
			cb = e.cb
			fired = true
			e.reset()
		}
	} else {
		e.suffixPos = 0
	}

	if !fired && len(e.body) == cap(e.body) {
		e.reset()
	}

	e.mu.Unlock()

	if fired {
		cb(payload)
	}
	return fired
}
