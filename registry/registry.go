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

// Package registry implements the Instance Registry: it holds every engine
// instance, lazily starts the shared drain and supervisor background tasks
// on the first instance created, and lets both tasks iterate the live
// instance set without locking out Create/Receive calls.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/nabbar/atengine/atconfig"
	"github.com/nabbar/atengine/atlog"
	"github.com/nabbar/atengine/atmetrics"
	"github.com/nabbar/atengine/aterr"
	"github.com/nabbar/atengine/command"
	"github.com/nabbar/atengine/fifo"
	"github.com/nabbar/atengine/session"
	"github.com/nabbar/atengine/supervisor"
	"github.com/nabbar/atengine/ticker"
	"github.com/nabbar/atengine/typedsync"
	"github.com/nabbar/atengine/urc"
)

// IsAllowSendFunc is the host's advisory send-gating predicate. The engine
// stores it per instance but does not itself gate sends on it.
type IsAllowSendFunc func() bool

// Instance is one engine instance: a transport-bound FIFO, session state
// machine, and command coroutine.
type Instance struct {
	ID          uuid.UUID
	Fifo        *fifo.Fifo
	Machine     *session.Machine
	Coroutine   *command.Coroutine
	IsAllowSend IsAllowSendFunc
}

// Registry holds every instance created through Create, and the two
// background tasks (drain, supervise) shared across all of them.
type Registry struct {
	mu sync.Mutex

	tunables atconfig.Tunables
	log      atlog.Logger
	metrics  *atmetrics.Metrics

	instances typedsync.Map[uuid.UUID, *Instance]
	sem       *semaphore.Weighted

	allocHint    int
	allocHintSet bool

	started  bool
	drainTk  *ticker.Ticker
	superTk  *ticker.Ticker
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

// New returns an empty Registry. Background tasks are not started until the
// first call to Create.
func New(tunables atconfig.Tunables, log atlog.Logger, metrics *atmetrics.Metrics) *Registry {
	if log == nil {
		log = atlog.Default()
	}
	return &Registry{
		tunables: tunables,
		log:      log,
		metrics:  metrics,
		sem:      semaphore.NewWeighted(tunables.MaxConcurrentCmd),
	}
}

// SetAllocHint records a memory-sizing hint, overriding the configured FIFO
// capacity for every instance created afterwards. It is a no-op once an
// instance has already been created.
func (r *Registry) SetAllocHint(hint int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.allocHint = hint
	r.allocHintSet = true
}

// Create registers a new instance, starting the shared drain and supervisor
// tasks on the very first call. send must not be nil.
func (r *Registry) Create(send command.SendFunc, isAllowSend IsAllowSendFunc) (*Instance, error) {
	if send == nil {
		return nil, aterr.ErrNilSend
	}

	r.mu.Lock()
	first := !r.started
	if first {
		r.started = true
		r.bgCtx, r.bgCancel = context.WithCancel(context.Background())
	}
	fifoSize := r.tunables.FifoSize
	if r.allocHintSet && r.allocHint > 0 {
		fifoSize = r.allocHint
	}
	r.mu.Unlock()

	inst := &Instance{
		ID:          uuid.New(),
		Fifo:        fifo.New(fifoSize),
		IsAllowSend: isAllowSend,
	}

	var hooks session.Hooks
	if r.metrics != nil {
		hooks = session.Hooks{
			OnLineTerminated: r.metrics.LinesParsed.Inc,
			OnURCMatch:       r.metrics.URCMatches.Inc,
			OnOverflow:       r.metrics.Overflows.Inc,
			OnTimeout:        r.metrics.TimeoutsTotal.Inc,
			OnSessionStart:   r.metrics.ActiveSessions.Inc,
			OnSessionEnd:     r.metrics.ActiveSessions.Dec,
		}
	}
	inst.Machine = session.NewWithHooks(urc.New(), hooks)
	inst.Coroutine = command.New(inst.Machine, command.SendFunc(send), r.sem, r.tunables.CmdMax, r.log)

	r.instances.Store(inst.ID, inst)

	if first {
		r.drainTk = ticker.New(r.tunables.TickInterval, r.drainTick)
		r.superTk = supervisor.New(r.tunables.TickInterval, r.listMachines)
		_ = r.drainTk.Start(r.bgCtx)
		_ = r.superTk.Start(r.bgCtx)
	}

	return inst, nil
}

// Get returns the instance registered under id.
func (r *Registry) Get(id uuid.UUID) (*Instance, bool) {
	return r.instances.Load(id)
}

// Receive appends data to instance id's FIFO; the drain task consumes it on
// the next tick. It returns ErrUnknownHandle if id names no instance.
func (r *Registry) Receive(id uuid.UUID, data []byte) error {
	inst, ok := r.instances.Load(id)
	if !ok {
		return aterr.ErrUnknownHandle
	}
	inst.Fifo.Receive(data)
	return nil
}

func (r *Registry) listMachines() []*session.Machine {
	var out []*session.Machine
	r.instances.Range(func(_ uuid.UUID, inst *Instance) bool {
		out = append(out, inst.Machine)
		return true
	})
	return out
}

// drainTick is the drain task's per-tick body: it drains every instance's
// FIFO down to empty, feeding each byte to that instance's session machine,
// then yields until the next tick.
func (r *Registry) drainTick(_ context.Context, _ *time.Ticker) error {
	r.instances.Range(func(_ uuid.UUID, inst *Instance) bool {
		for {
			b, ok := inst.Fifo.DrainByte()
			if !ok {
				break
			}
			inst.Machine.Feed(b)
		}
		return true
	})
	return nil
}

// Shutdown stops the drain and supervisor tasks. It is safe to call even if
// Create was never invoked.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	started := r.started
	drainTk := r.drainTk
	superTk := r.superTk
	cancel := r.bgCancel
	r.mu.Unlock()

	if !started {
		return
	}
	if drainTk != nil {
		_ = drainTk.Stop(ctx)
	}
	if superTk != nil {
		_ = superTk.Stop(ctx)
	}
	if cancel != nil {
		cancel()
	}
}
