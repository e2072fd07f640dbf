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

package atconfig_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/atengine/atconfig"
)

var _ = Describe("Tunables", func() {
	It("defaults to the documented constants", func() {
		t := atconfig.Default()
		Expect(t.CmdMax).To(Equal(128))
		Expect(t.FifoSize).To(Equal(2048))
		Expect(t.TickInterval).To(Equal(10 * time.Millisecond))
		Expect(t.Validate()).To(Succeed())
	})

	It("rejects out-of-range values", func() {
		t := atconfig.Default()
		t.CmdMax = 1
		Expect(t.Validate()).To(HaveOccurred())

		t = atconfig.Default()
		t.TickInterval = 0
		Expect(t.Validate()).To(HaveOccurred())
	})
})

var _ = Describe("Load", func() {
	It("returns validated defaults when no path is given", func() {
		t, err := atconfig.Load("")
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(Equal(atconfig.Default()))
	})

	It("layers a config file over the defaults", func() {
		path := filepath.Join(GinkgoT().TempDir(), "engine.yaml")
		Expect(os.WriteFile(path, []byte("cmd_max: 256\nfifo_size: 4096\n"), 0o600)).To(Succeed())

		t, err := atconfig.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(t.CmdMax).To(Equal(256))
		Expect(t.FifoSize).To(Equal(4096))
		Expect(t.TickInterval).To(Equal(atconfig.Default().TickInterval))
	})

	It("fails on a config file that breaks validation", func() {
		path := filepath.Join(GinkgoT().TempDir(), "engine.yaml")
		Expect(os.WriteFile(path, []byte("cmd_max: 1\n"), 0o600)).To(Succeed())

		_, err := atconfig.Load(path)
		Expect(err).To(HaveOccurred())
	})

	It("fails on an unreadable path", func() {
		_, err := atconfig.Load(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(HaveOccurred())
	})
})
