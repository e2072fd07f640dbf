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

package fifo_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/atengine/fifo"
)

var _ = Describe("Fifo", func() {
	It("drains bytes in FIFO order", func() {
		f := fifo.New(8)
		f.Receive([]byte("abc"))

		var out []byte
		for {
			b, ok := f.DrainByte()
			if !ok {
				break
			}
			out = append(out, b)
		}
		Expect(string(out)).To(Equal("abc"))
	})

	It("reports empty via DrainByte's ok=false", func() {
		f := fifo.New(4)
		_, ok := f.DrainByte()
		Expect(ok).To(BeFalse())
	})

	It("drops overflow bytes and counts them rather than blocking the producer", func() {
		f := fifo.New(4)
		accepted := f.Receive([]byte("abcdef"))

		Expect(accepted).To(Equal(4))
		Expect(f.Dropped()).To(Equal(uint64(2)))
		Expect(f.Len()).To(Equal(4))
	})

	It("wraps around the ring correctly across multiple receive/drain cycles", func() {
		f := fifo.New(4)
		f.Receive([]byte("ab"))
		f.DrainByte()
		f.DrainByte()
		f.Receive([]byte("cdef"))

		var out []byte
		for {
			b, ok := f.DrainByte()
			if !ok {
				break
			}
			out = append(out, b)
		}
		Expect(string(out)).To(Equal("cdef"))
	})

	It("is safe for concurrent Receive calls from multiple producers", func() {
		f := fifo.New(10000)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				f.Receive([]byte{'x'})
			}()
		}
		wg.Wait()

		Expect(f.Len() + int(f.Dropped())).To(Equal(50))
	})
})
