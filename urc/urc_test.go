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

package urc_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/atengine/urc"
)

func feedAll(t *urc.Table, s string) {
	for i := 0; i < len(s); i++ {
		t.Feed(s[i])
	}
}

var _ = Describe("Table", func() {
	It("fires the callback with the suffix stripped once prefix and suffix both match", func() {
		table := urc.New()
		var got []byte
		_, err := table.Register("+IPD,", ":", 100, func(body []byte) {
			got = append([]byte(nil), body...)
		})
		Expect(err).NotTo(HaveOccurred())

		feedAll(table, `junk` + "\r\n" + `+IPD,5,"1.2.3.4",80:`)

		Expect(string(got)).To(Equal(`5,"1.2.3.4",80`))
	})

	It("rejects registration with a missing prefix, suffix, callback or bufSize", func() {
		table := urc.New()
		_, err := table.Register("", "x", 1, func([]byte) {})
		Expect(err).To(HaveOccurred())
		_, err = table.Register("x", "", 1, func([]byte) {})
		Expect(err).To(HaveOccurred())
		_, err = table.Register("x", "y", 0, func([]byte) {})
		Expect(err).To(HaveOccurred())
		_, err = table.Register("x", "y", 1, nil)
		Expect(err).To(HaveOccurred())
	})

	It("evaluates every entry independently and in registration order", func() {
		table := urc.New()
		var firstFired, secondFired bool
		_, _ = table.Register("A", ";", 10, func([]byte) { firstFired = true })
		_, _ = table.Register("B", ";", 10, func([]byte) { secondFired = true })

		feedAll(table, "Bbody;")

		Expect(firstFired).To(BeFalse())
		Expect(secondFired).To(BeTrue())
	})

	It("discards a body that fills to capacity without completing the suffix", func() {
		table := urc.New()
		fired := false
		_, _ = table.Register("P", ";", 3, func([]byte) { fired = true })

		// "P" + 3 body bytes with no ';' fills the body buffer and resets.
		feedAll(table, "Pabc")
		Expect(fired).To(BeFalse())

		// A fresh prefix+suffix after the reset should still match.
		feedAll(table, "Pxy;")
		Expect(fired).To(BeTrue())
	})

	It("does not backtrack on a self-overlapping prefix mismatch (documented weakness, preserved)", func() {
		table := urc.New()
		fired := false
		_, _ = table.Register("AAB", ";", 10, func([]byte) { fired = true })

		// "AAAB" contains "AAB" starting at offset 1, but the matcher's
		// non-backtracking reset misses it: after "AA" the third byte 'A'
		// mismatches prefix[2]=='B' and resets prefixPos to 0, losing the
		// overlap with the next 'A'.
		feedAll(table, "AAAB;")

		Expect(fired).To(BeFalse())
	})

	It("keeps capturing-body state independent per entry on the same byte stream", func() {
		table := urc.New()
		var a, b []byte
		_, _ = table.Register("X", "!", 20, func(body []byte) { a = body })
		_, _ = table.Register("X", "?", 20, func(body []byte) { b = body })

		feedAll(table, "Xone!")
		Expect(string(a)).To(Equal("one"))
		Expect(b).To(BeNil())

		// The second entry began capturing at the same "X" and keeps
		// accumulating across the first entry's match.
		feedAll(table, "two?")
		Expect(string(b)).To(Equal("one!two"))
	})

	It("invokes SetOnMatch once per fired entry", func() {
		table := urc.New()
		matches := 0
		table.SetOnMatch(func() { matches++ })
		_, _ = table.Register("Q", ";", 10, func([]byte) {})

		feedAll(table, "Qa;Qb;")

		Expect(matches).To(Equal(2))
	})
})
