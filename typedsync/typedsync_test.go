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

package typedsync_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/atengine/typedsync"
)

var _ = Describe("Value", func() {
	It("returns the zero value before the first Store", func() {
		v := typedsync.NewValue[byte]()
		Expect(v.Load()).To(Equal(byte(0)))
	})

	It("returns the configured default before the first Store", func() {
		v := typedsync.NewValueDefault(42)
		Expect(v.Load()).To(Equal(42))
		v.Store(7)
		Expect(v.Load()).To(Equal(7))
	})

	It("swaps and reports the previous value", func() {
		v := typedsync.NewValueDefault("old")
		Expect(v.Swap("new")).To(Equal("old"))
		Expect(v.Load()).To(Equal("new"))
	})
})

var _ = Describe("Map", func() {
	It("loads only what was stored, typed", func() {
		m := typedsync.NewMap[string, int]()
		_, ok := m.Load("missing")
		Expect(ok).To(BeFalse())

		m.Store("a", 1)
		got, ok := m.Load("a")
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(1))
		Expect(m.Len()).To(Equal(1))
	})

	It("keeps the first value on LoadOrStore", func() {
		m := typedsync.NewMap[string, int]()
		actual, loaded := m.LoadOrStore("k", 1)
		Expect(loaded).To(BeFalse())
		Expect(actual).To(Equal(1))

		actual, loaded = m.LoadOrStore("k", 2)
		Expect(loaded).To(BeTrue())
		Expect(actual).To(Equal(1))
	})

	It("removes entries with Delete and LoadAndDelete", func() {
		m := typedsync.NewMap[string, int]()
		m.Store("a", 1)
		m.Store("b", 2)

		v, loaded := m.LoadAndDelete("a")
		Expect(loaded).To(BeTrue())
		Expect(v).To(Equal(1))

		m.Delete("b")
		Expect(m.Len()).To(BeZero())
	})

	It("ranges over every entry until the callback declines", func() {
		m := typedsync.NewMap[int, string]()
		m.Store(1, "one")
		m.Store(2, "two")

		seen := 0
		m.Range(func(int, string) bool {
			seen++
			return false
		})
		Expect(seen).To(Equal(1))

		seen = 0
		m.Range(func(int, string) bool {
			seen++
			return true
		})
		Expect(seen).To(Equal(2))
	})
})
