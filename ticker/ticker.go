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

// Package ticker runs a function on a fixed period until stopped or until
// its parent context is cancelled. Both the FIFO-drain loop and the Timeout
// Supervisor are one Ticker each, sharing the same lifecycle contract so the
// Instance Registry can start and stop them uniformly.
package ticker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrAlreadyRunning is returned by Start when the ticker is already active.
var ErrAlreadyRunning = errors.New("ticker: already running")

// ErrNotRunning is returned by Stop when the ticker is not active.
var ErrNotRunning = errors.New("ticker: not running")

// Func is invoked on every tick. Returning an error stops the ticker; the
// error is discarded (logged by the caller's wrapping, if any) since no tick
// loop in this engine treats a single failed pass as fatal.
type Func func(ctx context.Context, tck *time.Ticker) error

// Ticker runs Func periodically on its own goroutine.
type Ticker struct {
	mu sync.Mutex

	period time.Duration
	fn     Func

	running bool
	start   time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

// New returns a Ticker that will invoke fn every period once started.
func New(period time.Duration, fn Func) *Ticker {
	return &Ticker{period: period, fn: fn}
}

// IsRunning reports whether the ticker is currently active.
func (t *Ticker) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Uptime reports how long the ticker has been running, or 0 if stopped.
func (t *Ticker) Uptime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return 0
	}
	return time.Since(t.start)
}

// Start begins the tick loop on a new goroutine, derived from ctx: the
// ticker stops automatically if ctx is cancelled. It returns ErrAlreadyRunning
// if already started.
func (t *Ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	t.running = true
	t.start = time.Now()
	t.cancel = cancel
	t.done = done

	go t.run(runCtx, done)

	return nil
}

func (t *Ticker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	tck := time.NewTicker(t.period)
	defer tck.Stop()

	for {
		select {
		case <-ctx.Done():
			t.markStopped()
			return
		case <-tck.C:
			if t.fn != nil {
				if err := t.fn(ctx, tck); err != nil {
					t.markStopped()
					return
				}
			}
		}
	}
}

func (t *Ticker) markStopped() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
}

// Stop halts the tick loop and waits for its goroutine to exit. It returns
// ErrNotRunning if the ticker was not started.
func (t *Ticker) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return ErrNotRunning
	}
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()

	cancel()

	select {
	case <-done:
	case <-ctx.Done():
	}

	t.mu.Lock()
	t.running = false
	t.mu.Unlock()

	return nil
}

// Restart stops the ticker (if running) and starts it again. The two steps
// are not atomic: a Start from another caller in between makes Restart
// return ErrAlreadyRunning.
func (t *Ticker) Restart(ctx context.Context) error {
	if t.IsRunning() {
		if err := t.Stop(ctx); err != nil {
			return err
		}
	}
	return t.Start(ctx)
}
