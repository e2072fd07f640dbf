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

// Package supervisor implements the Timeout Supervisor: a fixed-tick task
// that iterates every instance's session machine and trips pending response
// or data sessions whose deadline has passed.
package supervisor

import (
	"context"
	"time"

	"github.com/nabbar/atengine/session"
	"github.com/nabbar/atengine/ticker"
)

// Lister returns the current set of instances to check on every tick. The
// Instance Registry supplies this so the supervisor never holds its own copy
// of the instance list.
type Lister func() []*session.Machine

// New returns a ticker.Ticker that, once started, calls CheckTimeouts on
// every instance returned by list at each interval.
func New(interval time.Duration, list Lister) *ticker.Ticker {
	return ticker.New(interval, func(_ context.Context, _ *time.Ticker) error {
		now := time.Now()
		for _, m := range list() {
			m.CheckTimeouts(now)
		}
		return nil
	})
}
