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

package typedsync

import "sync"

// Map is a type-safe wrapper around sync.Map for a fixed key and value type.
// The Instance Registry (C9) uses Map so that a bad cast
// (which should never happen, since only this type's methods ever write to
// the underlying sync.Map) is treated as a missing entry rather than a panic.
type Map[K comparable, V any] struct {
	m sync.Map
}

// NewMap returns an empty Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{}
}

// castOK types an underlying sync.Map result, passing chk through untouched
// when the cast succeeds: for Load chk means "present", for LoadOrStore it
// means "loaded rather than stored", and either way the value survives.
func (m *Map[K, V]) castOK(in any, chk bool) (V, bool) {
	if v, ok := in.(V); ok {
		return v, chk
	}
	var zero V
	return zero, false
}

// Load returns the value stored for key, if any.
func (m *Map[K, V]) Load(key K) (V, bool) {
	return m.castOK(m.m.Load(key))
}

// Store sets the value for key.
func (m *Map[K, V]) Store(key K, value V) {
	m.m.Store(key, value)
}

// LoadOrStore returns the existing value for key if present, otherwise it
// stores and returns value.
func (m *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	return m.castOK(m.m.LoadOrStore(key, value))
}

// LoadAndDelete removes the value for key, returning it if it was present.
func (m *Map[K, V]) LoadAndDelete(key K) (value V, loaded bool) {
	return m.castOK(m.m.LoadAndDelete(key))
}

// Delete removes the value for key, if any.
func (m *Map[K, V]) Delete(key K) {
	m.m.Delete(key)
}

// Range calls f for every key in the map, in unspecified order, until f
// returns false. An entry whose value does not type-assert to V (which
// should not happen given this type's write path) is dropped rather than
// passed to f.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	m.m.Range(func(k, val any) bool {
		key, ok := k.(K)
		if !ok {
			return true
		}
		v, ok := val.(V)
		if !ok {
			m.m.Delete(k)
			return true
		}
		return f(key, v)
	})
}

// Len reports the number of entries currently stored. It walks the map and
// is O(n); callers on a hot path should track counts separately.
func (m *Map[K, V]) Len() int {
	n := 0
	m.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
