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

// Package typedsync provides generic, type-safe wrappers around sync/atomic.Value
// and sync.Map. The Instance Registry's instance table and the session
// machine's end-sign byte, both shared across the drain task, the supervisor
// tick, and caller goroutines, are stored through these wrappers instead of a
// raw interface{} container.
package typedsync

import (
	"reflect"
	"sync/atomic"
)

// cast safely type-asserts src to M, treating a reflect-equal zero value the
// same as an absent one so a freshly constructed atomic.Value (which holds
// nil) and an explicitly stored zero value of M are both reported as "not
// present".
func cast[M any](src any) (model M, ok bool) {
	if src == nil {
		return model, false
	}
	if reflect.DeepEqual(src, model) {
		return model, false
	}
	v, ok := src.(M)
	if !ok {
		return model, false
	}
	return v, true
}

// Value is a type-safe, lock-free container for a single value of type T.
type Value[T any] struct {
	av atomic.Value
	dv T
}

// NewValue returns a Value whose Load returns the zero value of T until the
// first Store.
func NewValue[T any]() *Value[T] {
	return &Value[T]{}
}

// NewValueDefault returns a Value whose Load returns def until the first
// Store of a non-zero value.
func NewValueDefault[T any](def T) *Value[T] {
	return &Value[T]{dv: def}
}

// Load returns the current value, or the configured default if Store has
// never been called or last stored the zero value of T.
func (v *Value[T]) Load() T {
	val, ok := cast[T](v.av.Load())
	if !ok {
		return v.dv
	}
	return val
}

// Store sets the current value.
func (v *Value[T]) Store(val T) {
	v.av.Store(val)
}

// Swap atomically stores new and returns the previous value.
func (v *Value[T]) Swap(new T) (old T) {
	prev, ok := cast[T](v.av.Swap(new))
	if !ok {
		return v.dv
	}
	return prev
}

// CompareAndSwap atomically compares the current value to old and, if equal,
// stores new. It reports whether the swap happened.
func (v *Value[T]) CompareAndSwap(old, new T) bool {
	raw := v.av.Load()
	cur, ok := cast[T](raw)
	if !ok {
		if !reflect.DeepEqual(old, v.dv) {
			return false
		}
		return v.av.CompareAndSwap(raw, new)
	}
	if !reflect.DeepEqual(cur, old) {
		return false
	}
	return v.av.CompareAndSwap(cur, new)
}
