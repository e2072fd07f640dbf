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

// Package command implements the Command Coroutine: it renders a formatted
// command line, submits it through the instance's send callback, and
// optionally arms a response session and suspends until it completes.
//
// The coroutine suspends on a channel receive (respbuf.Handle.DoneChan)
// rather than a hand-rolled protothread: a channel receive under a context
// is the ecosystem's idiom for "wait for completion or cancellation."
package command

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nabbar/atengine/aterr"
	"github.com/nabbar/atengine/atlog"
	"github.com/nabbar/atengine/respbuf"
	"github.com/nabbar/atengine/session"
)

// SendFunc pushes rendered command bytes to the transport. It is assumed
// synchronous and non-blocking.
type SendFunc func(data []byte)

// Coroutine is one instance's Command Coroutine. Multiple instances run
// their coroutines concurrently; within a single instance, the caller must
// not issue a second ExecCmd while busy.
type Coroutine struct {
	machine *session.Machine
	send    SendFunc
	sem     *semaphore.Weighted
	cmdMax  int
	log     atlog.Logger
}

// New returns a Coroutine bound to machine, submitting rendered commands
// through send. sem, if non-nil, bounds how many ExecCmd calls across the
// whole registry may be in flight (blocked on a transport write or awaiting
// a response) at once. A rendered command of cmdMax bytes or more is refused.
func New(machine *session.Machine, send SendFunc, sem *semaphore.Weighted, cmdMax int, log atlog.Logger) *Coroutine {
	if log == nil {
		log = atlog.Default()
	}
	return &Coroutine{machine: machine, send: send, sem: sem, cmdMax: cmdMax, log: log}
}

// IsBusy reports whether the bound instance currently has an active
// response or data session.
func (c *Coroutine) IsBusy() bool {
	return c.machine.IsBusy()
}

// ExecCmd renders format/args into a command line, sends it, and, if resp
// is non-nil, arms it as the active response session and blocks until it
// completes or ctx is cancelled. A nil resp means "no wait": the command is
// sent and ExecCmd returns immediately.
func (c *Coroutine) ExecCmd(ctx context.Context, resp *respbuf.Handle, format string, args ...any) error {
	if c.machine.IsBusy() {
		if resp != nil {
			resp.SetResult(aterr.Busy)
		}
		return nil
	}

	rendered := fmt.Sprintf(format, args...)
	if len(rendered) >= c.cmdMax {
		c.log.Error("rendered command exceeds CmdMax, not sending", "len", len(rendered), "cmd_max", c.cmdMax)
		return aterr.ErrCmdTooLong
	}

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		defer c.sem.Release(1)
	}

	c.send([]byte(rendered))

	if resp == nil {
		return nil
	}

	resp.Begin(time.Now())
	if !c.machine.ArmResponse(resp) {
		resp.Complete(aterr.Busy)
		return nil
	}

	select {
	case <-resp.DoneChan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendData bypasses the session state machine entirely: no busy check, no
// arming, just a raw pass-through to the transport.
func (c *Coroutine) SendData(data []byte) {
	c.send(data)
}
