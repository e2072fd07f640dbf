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

// Package session implements the per-instance Session State Machine: it
// multiplexes one byte stream across the Response Parser, the Fixed-Length
// Receiver, or the URC Matcher, based on which session (if any) is active,
// and enforces that at most one of {response, data} is active at a time.
package session

import (
	"sync"
	"time"

	"github.com/nabbar/atengine/aterr"
	"github.com/nabbar/atengine/datareceiver"
	"github.com/nabbar/atengine/parser"
	"github.com/nabbar/atengine/respbuf"
	"github.com/nabbar/atengine/typedsync"
	"github.com/nabbar/atengine/urc"
)

// Hooks lets a caller observe Machine events without this package depending
// on how they're recorded (atmetrics counters, a log line, a test spy). Any
// field left nil is simply not called.
type Hooks struct {
	OnLineTerminated func()
	OnURCMatch       func()
	OnOverflow       func()
	OnTimeout        func()

	// OnSessionStart/OnSessionEnd bracket a session's lifetime: start fires
	// when a response or data session is armed, end when it is cleared, so
	// a gauge wired to the pair tracks how many instances are busy.
	OnSessionStart func()
	OnSessionEnd   func()
}

// Machine holds one instance's mutually-exclusive session state and URC
// table, and dispatches drained bytes to the right component.
type Machine struct {
	mu sync.Mutex

	resp *respbuf.Handle
	data *datareceiver.Session

	urcTable *urc.Table
	endSign  *typedsync.Value[byte]
	hooks    Hooks
}

// New returns a Machine with an empty URC table and no active session.
func New(urcTable *urc.Table) *Machine {
	return NewWithHooks(urcTable, Hooks{})
}

// NewWithHooks is New with explicit observability hooks.
func NewWithHooks(urcTable *urc.Table, hooks Hooks) *Machine {
	if urcTable == nil {
		urcTable = urc.New()
	}
	if hooks.OnURCMatch != nil {
		urcTable.SetOnMatch(hooks.OnURCMatch)
	}
	return &Machine{
		urcTable: urcTable,
		endSign:  typedsync.NewValue[byte](),
		hooks:    hooks,
	}
}

// URCTable returns the instance's URC table, so callers can Register entries
// on it directly.
func (m *Machine) URCTable() *urc.Table {
	return m.urcTable
}

// SetEndSign sets the instance's extra completion marker byte; 0 disables
// it. This is instance state, independent of any particular response
// handle, and read on every byte the drain task feeds, so it lives in an
// atomic value rather than under the session mutex.
func (m *Machine) SetEndSign(b byte) {
	m.endSign.Store(b)
}

// EndSign returns the instance's currently configured end-sign byte.
func (m *Machine) EndSign() byte {
	return m.endSign.Load()
}

// IsBusy reports whether a response or data session is active.
func (m *Machine) IsBusy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resp != nil || m.data != nil
}

// ArmResponse installs h as the active response session. It reports false,
// without installing, if the machine is already busy.
func (m *Machine) ArmResponse(h *respbuf.Handle) bool {
	m.mu.Lock()
	if m.resp != nil || m.data != nil {
		m.mu.Unlock()
		return false
	}
	m.resp = h
	m.mu.Unlock()
	if m.hooks.OnSessionStart != nil {
		m.hooks.OnSessionStart()
	}
	return true
}

// ArmData installs d as the active data session. It reports false, without
// installing, if the machine is already busy.
func (m *Machine) ArmData(d *datareceiver.Session) bool {
	m.mu.Lock()
	if m.resp != nil || m.data != nil {
		m.mu.Unlock()
		return false
	}
	m.data = d
	m.mu.Unlock()
	if m.hooks.OnSessionStart != nil {
		m.hooks.OnSessionStart()
	}
	return true
}

// ActiveResponse returns the currently active response handle, or nil.
func (m *Machine) ActiveResponse() *respbuf.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resp
}

// ActiveData returns the currently active data session, or nil.
func (m *Machine) ActiveData() *datareceiver.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// Feed dispatches one drained byte: to the response session if active, else
// to the data session if active, else to the URC table. URC matching is
// suspended whenever either session is active.
func (m *Machine) Feed(b byte) {
	m.mu.Lock()
	resp := m.resp
	data := m.data
	m.mu.Unlock()
	endSign := m.endSign.Load()

	if resp != nil {
		before := resp.LineCount()
		completed, result := parser.Feed(resp, b, endSign)
		if resp.LineCount() > before && m.hooks.OnLineTerminated != nil {
			m.hooks.OnLineTerminated()
		}
		if completed {
			if result == aterr.LackOfMemory && m.hooks.OnOverflow != nil {
				m.hooks.OnOverflow()
			}
			m.clearResponse(resp)
		}
		return
	}

	if data != nil {
		if data.Feed(b) {
			m.clearData(data)
		}
		return
	}

	m.urcTable.Feed(b)
}

// clearResponse detaches h if it is still the active session; a session the
// Timeout Supervisor already cleared concurrently is left alone.
func (m *Machine) clearResponse(h *respbuf.Handle) {
	m.mu.Lock()
	cleared := m.resp == h
	if cleared {
		m.resp = nil
	}
	m.mu.Unlock()
	if cleared && m.hooks.OnSessionEnd != nil {
		m.hooks.OnSessionEnd()
	}
}

func (m *Machine) clearData(d *datareceiver.Session) {
	m.mu.Lock()
	cleared := m.data == d
	if cleared {
		m.data = nil
	}
	m.mu.Unlock()
	if cleared && m.hooks.OnSessionEnd != nil {
		m.hooks.OnSessionEnd()
	}
}

// CheckTimeouts is called once per supervisor tick: if the active response
// session's deadline has passed, it completes with Timeout; if the active
// data session's deadline has passed, it trips its callback with
// (Timeout, nil). URC entries have no timeout and are untouched.
func (m *Machine) CheckTimeouts(now time.Time) {
	m.mu.Lock()
	h := m.resp
	d := m.data
	m.mu.Unlock()

	if h != nil && !h.Done() && now.Sub(h.StartedAt()) > h.Timeout() {
		h.Complete(aterr.Timeout)
		m.clearResponse(h)
		if m.hooks.OnTimeout != nil {
			m.hooks.OnTimeout()
		}
	}

	if d != nil && !d.Done() && now.Sub(d.StartedAt()) > d.Timeout() {
		d.TripTimeout()
		m.clearData(d)
		if m.hooks.OnTimeout != nil {
			m.hooks.OnTimeout()
		}
	}
}
