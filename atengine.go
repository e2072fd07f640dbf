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

// Package atengine is the public facade: a driver-side engine for
// conversing with a modem-style peripheral that speaks an AT-command line
// protocol. A host feeds it raw transport bytes and asks it to issue
// commands, collect structured responses, capture unsolicited events, and
// capture fixed-length binary payloads that follow a trigger.
package atengine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nabbar/atengine/atconfig"
	"github.com/nabbar/atengine/atlog"
	"github.com/nabbar/atengine/atmetrics"
	"github.com/nabbar/atengine/aterr"
	"github.com/nabbar/atengine/command"
	"github.com/nabbar/atengine/datareceiver"
	"github.com/nabbar/atengine/registry"
	"github.com/nabbar/atengine/respbuf"
)

// Handle identifies one created instance, returned by Create.
type Handle = uuid.UUID

// RespHandle identifies one caller-owned Response Handle, returned by
// CreateResp.
type RespHandle = *respbuf.Handle

// SendFunc pushes bytes to the transport for one instance.
type SendFunc = command.SendFunc

// IsAllowSendFunc is the host's advisory send-gating predicate; the engine
// stores it per instance but never consults it itself.
type IsAllowSendFunc = registry.IsAllowSendFunc

// DataCallback reports a completed or timed-out fixed-length capture.
type DataCallback = datareceiver.Callback

// URCCallback reports a matched URC body, suffix already stripped.
type URCCallback func(body []byte)

// Engine is the root object: one Engine manages many instances (one per
// transport), each with its own FIFO, session state machine, and command
// coroutine, all sharing one drain task and one Timeout Supervisor.
type Engine struct {
	reg *registry.Registry
	log atlog.Logger
}

// Option configures New.
type Option func(*engineOptions)

type engineOptions struct {
	tunables atconfig.Tunables
	log      atlog.Logger
	registry prometheus.Registerer
}

// WithTunables overrides the default CmdMax/FifoSize/TickInterval constants.
func WithTunables(t atconfig.Tunables) Option {
	return func(o *engineOptions) { o.tunables = t }
}

// WithLogger overrides the engine's default logger.
func WithLogger(l atlog.Logger) Option {
	return func(o *engineOptions) { o.log = l }
}

// WithMetrics registers the engine's Prometheus instrumentation on reg. A
// nil reg (the default) disables metrics entirely.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *engineOptions) { o.registry = reg }
}

// New constructs an Engine. No instance and no background task exists yet:
// both are created lazily by the first call to Create.
func New(opts ...Option) *Engine {
	o := &engineOptions{tunables: atconfig.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = atlog.Default()
	}

	var m *atmetrics.Metrics
	if o.registry != nil {
		m = atmetrics.New(o.registry)
	}

	return &Engine{
		reg: registry.New(o.tunables, o.log, m),
		log: o.log,
	}
}

// SetAllocHint overrides the per-instance FIFO capacity. It must be called
// before the first Create to have any effect, and is a silent no-op
// afterward.
func (e *Engine) SetAllocHint(hint int) {
	e.reg.SetAllocHint(hint)
}

// Create registers a new instance bound to send, returning its handle. It
// returns ErrNilSend if send is nil.
func (e *Engine) Create(send SendFunc, isAllowed IsAllowSendFunc) (Handle, error) {
	inst, err := e.reg.Create(send, isAllowed)
	if err != nil {
		return uuid.Nil, err
	}
	return inst.ID, nil
}

// Receive appends bytes to instance h's FIFO; the drain task consumes them
// on the next tick.
func (e *Engine) Receive(h Handle, data []byte) error {
	return e.reg.Receive(h, data)
}

// IsBusy reports whether instance h currently has an active response or
// data session.
func (e *Engine) IsBusy(h Handle) (bool, error) {
	inst, ok := e.reg.Get(h)
	if !ok {
		return false, aterr.ErrUnknownHandle
	}
	return inst.Machine.IsBusy(), nil
}

// CreateResp allocates a Response Handle with buffer capacity bufSize,
// target line count lineTarget (0 means "end on OK/ERROR/end-sign"), and
// completion timeout.
func (e *Engine) CreateResp(bufSize, lineTarget int, timeout time.Duration) RespHandle {
	return respbuf.New(bufSize, lineTarget, timeout)
}

// DeleteResp releases a Response Handle. Go's garbage collector reclaims
// the handle once the caller drops its last reference, so there is nothing
// to free explicitly; the operation exists so CreateResp has a symmetric
// call site and a future pooling strategy has a seam to hook into.
func (e *Engine) DeleteResp(rh RespHandle) {
	_ = rh
}

// ExecCmd renders format/args into a command line, submits it through
// instance h's send callback, and, if rh is non-nil, arms it as the active
// response session and blocks until it completes or ctx is cancelled. A nil
// rh means "no wait": the command is sent and ExecCmd returns immediately.
func (e *Engine) ExecCmd(ctx context.Context, h Handle, rh RespHandle, format string, args ...any) error {
	inst, ok := e.reg.Get(h)
	if !ok {
		return aterr.ErrUnknownHandle
	}
	return inst.Coroutine.ExecCmd(ctx, rh, format, args...)
}

// SendData bypasses ExecCmd and the session state machine entirely,
// submitting data directly to instance h's send callback.
func (e *Engine) SendData(h Handle, data []byte) error {
	inst, ok := e.reg.Get(h)
	if !ok {
		return aterr.ErrUnknownHandle
	}
	inst.Coroutine.SendData(data)
	return nil
}

// RespGetResult returns rh's completion result, or Other if it has not
// completed yet.
func RespGetResult(rh RespHandle) aterr.Result {
	if !rh.Done() {
		return aterr.Other
	}
	return rh.GetResult()
}

// RespGetLineTotal returns rh's received line count, or 0 if it has not
// completed yet.
func RespGetLineTotal(rh RespHandle) int {
	if !rh.Done() {
		return 0
	}
	return rh.GetLineTotal()
}

// RespGetLine returns rh's i-th captured line.
func RespGetLine(rh RespHandle, i int) (string, bool) {
	return rh.GetLine(i)
}

// RespGetLineByKeyword returns the first captured line in rh containing kw
// as a substring.
func RespGetLineByKeyword(rh RespHandle, kw string) (string, bool) {
	return rh.GetLineByKeyword(kw)
}

// RegisterURC registers a new URC pattern on instance h: prefix/suffix
// bracket the payload cb receives, with the suffix already stripped.
func (e *Engine) RegisterURC(h Handle, prefix, suffix string, bufSize int, cb URCCallback) error {
	inst, ok := e.reg.Get(h)
	if !ok {
		return aterr.ErrUnknownHandle
	}
	var err error
	if cb == nil {
		err = aterr.ErrInvalidURC
	} else {
		_, err = inst.Machine.URCTable().Register(prefix, suffix, bufSize, func(body []byte) { cb(body) })
	}
	if err != nil {
		e.log.Error("URC registration rejected", "prefix", prefix, "suffix", suffix, "buf_size", bufSize, "error", err)
	}
	return err
}

// SetWaitDataCallback arms a fixed-length Data Session on instance h: the
// next n bytes drained from the FIFO are captured verbatim and delivered to
// cb, or cb fires with (TIMEOUT, nil) if the Timeout Supervisor trips it
// first. It returns ErrHandleInUse without arming anything if the instance
// is already busy.
func (e *Engine) SetWaitDataCallback(h Handle, n int, timeout time.Duration, cb DataCallback) error {
	inst, ok := e.reg.Get(h)
	if !ok {
		return aterr.ErrUnknownHandle
	}
	if n <= 0 || cb == nil {
		return aterr.ErrInvalidParam
	}
	sess := datareceiver.New(n, timeout, time.Now(), cb)
	if !inst.Machine.ArmData(sess) {
		return aterr.ErrHandleInUse
	}
	return nil
}

// SetEndSign sets instance h's extra completion marker byte; 0 disables it.
func (e *Engine) SetEndSign(h Handle, b byte) error {
	inst, ok := e.reg.Get(h)
	if !ok {
		return aterr.ErrUnknownHandle
	}
	inst.Machine.SetEndSign(b)
	return nil
}

// Shutdown stops the shared drain and supervisor tasks. Safe to call even
// if no instance was ever created.
func (e *Engine) Shutdown(ctx context.Context) {
	e.reg.Shutdown(ctx)
}
