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

// Package fifo is the byte sink standing between a transport producer (a
// UART ISR or poller, possibly on another goroutine) and the single-consumer
// drain task that feeds the session state machine. It decouples the two the
// same way ioutils/aggregator decouples its writers from its flush loop: a
// bounded, mutex-guarded ring with an atomic dropped-byte counter, never a
// channel-per-byte.
package fifo

import (
	"sync"
	"sync/atomic"
)

// Fifo is a fixed-capacity ring buffer of bytes. Receive is safe to call
// concurrently with DrainByte and with itself; DrainByte is meant to be called
// by a single consumer goroutine at a time.
type Fifo struct {
	mu   sync.Mutex
	buf  []byte
	head int
	size int

	dropped atomic.Uint64
}

// New returns a Fifo with the given byte capacity.
func New(capacity int) *Fifo {
	if capacity <= 0 {
		capacity = 1
	}
	return &Fifo{buf: make([]byte, capacity)}
}

// Cap returns the FIFO's byte capacity.
func (f *Fifo) Cap() int {
	return len(f.buf)
}

// Len returns the number of bytes currently queued.
func (f *Fifo) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size
}

// Receive appends bytes to the FIFO. It is the one operation the producer
// side may call from another goroutine. Bytes that would overflow the ring
// are dropped from the tail of this batch and counted in Dropped; a full
// FIFO backing a wedged drain task must not block or panic the producer.
func (f *Fifo) Receive(data []byte) (accepted int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	free := len(f.buf) - f.size
	n := len(data)
	if n > free {
		f.dropped.Add(uint64(n - free))
		n = free
	}
	tail := (f.head + f.size) % len(f.buf)
	for i := 0; i < n; i++ {
		f.buf[(tail+i)%len(f.buf)] = data[i]
	}
	f.size += n
	return n
}

// Dropped reports the total number of bytes ever discarded due to overflow.
func (f *Fifo) Dropped() uint64 {
	return f.dropped.Load()
}

// DrainByte pulls the oldest byte off the FIFO. ok is false when the FIFO is
// empty, which is the drain task's signal to suspend until the next tick.
func (f *Fifo) DrainByte() (b byte, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.size == 0 {
		return 0, false
	}
	b = f.buf[f.head]
	f.head = (f.head + 1) % len(f.buf)
	f.size--
	return b, true
}
