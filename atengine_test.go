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

package atengine_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/atengine"
	"github.com/nabbar/atengine/aterr"
)

// modemSide records what the engine pushed to the transport.
type modemSide struct {
	mu   sync.Mutex
	sent []byte
}

func (m *modemSide) send(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, data...)
}

func (m *modemSide) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.sent)
}

var _ = Describe("Engine", func() {
	var (
		eng   *atengine.Engine
		modem *modemSide
		h     atengine.Handle
	)

	BeforeEach(func() {
		eng = atengine.New()
		DeferCleanup(func() { eng.Shutdown(context.Background()) })

		modem = &modemSide{}
		var err error
		h, err = eng.Create(modem.send, func() bool { return true })
		Expect(err).NotTo(HaveOccurred())
	})

	// execAsync issues ExecCmd on its own goroutine and waits until the
	// instance reports busy, so the reply bytes fed afterwards land in the
	// armed response session rather than the URC path.
	execAsync := func(rh atengine.RespHandle, format string) chan error {
		done := make(chan error, 1)
		go func() {
			done <- eng.ExecCmd(context.Background(), h, rh, format)
		}()
		Eventually(func() bool {
			busy, err := eng.IsBusy(h)
			return err == nil && busy
		}).Should(BeTrue())
		return done
	}

	It("rejects operations on a handle that was never created", func() {
		ghost := uuid.New()
		Expect(eng.Receive(ghost, []byte("x"))).To(MatchError(aterr.ErrUnknownHandle))
		_, err := eng.IsBusy(ghost)
		Expect(err).To(MatchError(aterr.ErrUnknownHandle))
		Expect(eng.SetEndSign(ghost, '>')).To(MatchError(aterr.ErrUnknownHandle))
	})

	It("collects a count-based response line by line", func() {
		rh := eng.CreateResp(100, 3, 5*time.Second)
		done := execAsync(rh, "AT+FOO\r\n")

		Expect(eng.Receive(h, []byte("line1\r\nline2\r\nline3\r\n"))).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))

		Expect(modem.String()).To(Equal("AT+FOO\r\n"))
		Expect(atengine.RespGetResult(rh)).To(Equal(aterr.Ok))
		Expect(atengine.RespGetLineTotal(rh)).To(Equal(3))
		for i, want := range []string{"line1", "line2", "line3"} {
			line, ok := atengine.RespGetLine(rh, i)
			Expect(ok).To(BeTrue())
			Expect(line).To(Equal(want))
		}
		eng.DeleteResp(rh)
	})

	It("completes a marker-based response on OK, keeping the marker in the buffer", func() {
		rh := eng.CreateResp(100, 0, 5*time.Second)
		done := execAsync(rh, "AT\r\n")

		Expect(eng.Receive(h, []byte("hello\r\nOK\r\n"))).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))

		Expect(atengine.RespGetResult(rh)).To(Equal(aterr.Ok))
		Expect(atengine.RespGetLineTotal(rh)).To(BeNumerically(">=", 1))
		line, ok := atengine.RespGetLineByKeyword(rh, "OK")
		Expect(ok).To(BeTrue())
		Expect(line).To(HaveSuffix("OK"))
	})

	It("completes a marker-based response on the configured end-sign", func() {
		Expect(eng.SetEndSign(h, '>')).To(Succeed())
		rh := eng.CreateResp(100, 0, 5*time.Second)
		done := execAsync(rh, "AT+SEND\r\n")

		Expect(eng.Receive(h, []byte("prompt >"))).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))
		Expect(atengine.RespGetResult(rh)).To(Equal(aterr.Ok))
	})

	It("trips a silent command to TIMEOUT via the supervisor", func() {
		rh := eng.CreateResp(100, 1, 50*time.Millisecond)
		done := execAsync(rh, "AT+NOREPLY\r\n")

		Eventually(done, time.Second).Should(Receive(BeNil()))
		Expect(atengine.RespGetResult(rh)).To(Equal(aterr.Timeout))
	})

	It("stamps BUSY on a second ExecCmd while a session is pending", func() {
		rh := eng.CreateResp(100, 1, time.Second)
		done := execAsync(rh, "AT+SLOW\r\n")

		rh2 := eng.CreateResp(100, 1, time.Second)
		Expect(eng.ExecCmd(context.Background(), h, rh2, "AT\r\n")).To(Succeed())
		Expect(atengine.RespGetResult(rh2)).To(Equal(aterr.Busy))

		Expect(eng.Receive(h, []byte("reply\r\n"))).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))
	})

	It("matches a registered URC with the suffix stripped, then captures fixed-length data", func() {
		var mu sync.Mutex
		var urcBody string
		Expect(eng.RegisterURC(h, "+IPD,", ":", 100, func(body []byte) {
			mu.Lock()
			urcBody = string(body)
			mu.Unlock()
		})).To(Succeed())

		Expect(eng.Receive(h, []byte("junk\r\n+IPD,5,\"1.2.3.4\",80:"))).To(Succeed())
		Eventually(func() string {
			mu.Lock()
			defer mu.Unlock()
			return urcBody
		}).Should(Equal(`5,"1.2.3.4",80`))

		var dataRes aterr.Result
		var data string
		Expect(eng.SetWaitDataCallback(h, 5, time.Second, func(r aterr.Result, b []byte) {
			mu.Lock()
			dataRes = r
			data = string(b)
			mu.Unlock()
		})).To(Succeed())

		Expect(eng.Receive(h, []byte("ABCDE"))).To(Succeed())
		Eventually(func() string {
			mu.Lock()
			defer mu.Unlock()
			return data
		}).Should(Equal("ABCDE"))
		mu.Lock()
		defer mu.Unlock()
		Expect(dataRes).To(Equal(aterr.Ok))
	})

	It("suspends URC matching while a response session is active", func() {
		var mu sync.Mutex
		fired := false
		Expect(eng.RegisterURC(h, "+EVT", ";", 32, func([]byte) {
			mu.Lock()
			fired = true
			mu.Unlock()
		})).To(Succeed())

		rh := eng.CreateResp(100, 1, time.Second)
		done := execAsync(rh, "AT\r\n")
		Expect(eng.Receive(h, []byte("+EVTx;\r\n"))).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))

		Consistently(func() bool {
			mu.Lock()
			defer mu.Unlock()
			return fired
		}, 50*time.Millisecond).Should(BeFalse())
	})

	It("times out a data session through its callback", func() {
		var mu sync.Mutex
		var res aterr.Result
		var got []byte
		Expect(eng.SetWaitDataCallback(h, 5, 50*time.Millisecond, func(r aterr.Result, b []byte) {
			mu.Lock()
			res = r
			got = b
			mu.Unlock()
		})).To(Succeed())

		Eventually(func() aterr.Result {
			mu.Lock()
			defer mu.Unlock()
			return res
		}, time.Second).Should(Equal(aterr.Timeout))
		mu.Lock()
		defer mu.Unlock()
		Expect(got).To(BeNil())
	})

	It("refuses to arm a data session while busy, and validates its length", func() {
		rh := eng.CreateResp(100, 1, time.Second)
		done := execAsync(rh, "AT\r\n")

		err := eng.SetWaitDataCallback(h, 5, time.Second, func(aterr.Result, []byte) {})
		Expect(err).To(MatchError(aterr.ErrHandleInUse))

		Expect(eng.Receive(h, []byte("reply\r\n"))).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))

		Expect(eng.SetWaitDataCallback(h, 0, time.Second, func(aterr.Result, []byte) {})).
			To(MatchError(aterr.ErrInvalidParam))
	})

	It("sends raw bytes through SendData without touching session state", func() {
		Expect(eng.SendData(h, []byte{0xDE, 0xAD})).To(Succeed())
		Expect(modem.String()).To(Equal("\xde\xad"))
		busy, err := eng.IsBusy(h)
		Expect(err).NotTo(HaveOccurred())
		Expect(busy).To(BeFalse())
	})
})
