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

// Package parser implements the Response Parser: it feeds one byte at a time
// into a respbuf.Handle's active session and decides, byte by byte, whether
// the session has completed. It carries no state of its own beyond what the
// Handle already tracks, so the same Feed function serves every instance.
package parser

import (
	"github.com/nabbar/atengine/aterr"
	"github.com/nabbar/atengine/respbuf"
)

// Feed consumes one byte into h's active session and reports whether that
// byte completed the session. The classification flags (LF, OK, ERROR,
// end-sign) are computed against bytes already appended to h before b is
// written. endSign is the owning instance's configured terminator byte (0 if
// none); it is instance state, not handle state, so it is passed in rather
// than stored on the Handle.
func Feed(h *respbuf.Handle, b byte, endSign byte) (completed bool, result aterr.Result) {
	last, hasLast := h.LastByte()

	isLF := b == '\n' && hasLast && last == '\r'
	isOK := b == 'K' && hasLast && last == 'O'
	isERROR := false
	if b == 'R' {
		if four, ok := h.LastBytes(4); ok {
			isERROR = string(four) == "ERRO"
		}
	}
	isEndSign := endSign != 0 && b == endSign

	if h.LineTarget() > 0 {
		return feedCountBased(h, b, isLF)
	}
	return feedMarkerBased(h, b, isOK, isERROR, isEndSign)
}

// feedCountBased implements the L > 0 completion policy: a line-feed
// terminates a record (the stored CR is overwritten by the NUL, so
// neither byte of the CR LF pair lands in the record); completion happens
// once line_count reaches L, or earlier on overflow.
func feedCountBased(h *respbuf.Handle, b byte, isLF bool) (bool, aterr.Result) {
	if isLF {
		if !h.TerminateLine() {
			h.Complete(aterr.LackOfMemory)
			return true, aterr.LackOfMemory
		}
		if h.LineCount() >= h.LineTarget() {
			h.Complete(aterr.Ok)
			return true, aterr.Ok
		}
		if h.WouldOverflow() {
			h.Complete(aterr.LackOfMemory)
			return true, aterr.LackOfMemory
		}
		return false, aterr.Other
	}
	return appendVerbatim(h, b)
}

// feedMarkerBased implements the L == 0 completion policy: OK, ERROR, or the
// configured end-sign each terminate the session with result Ok. ERROR
// reports completion, not command failure; callers judge success from the
// captured lines.
func feedMarkerBased(h *respbuf.Handle, b byte, isOK, isERROR, isEndSign bool) (bool, aterr.Result) {
	if isOK || isERROR || isEndSign {
		if !h.AppendByte(b) || !h.Terminate() {
			h.Complete(aterr.LackOfMemory)
			return true, aterr.LackOfMemory
		}
		h.Complete(aterr.Ok)
		return true, aterr.Ok
	}
	return appendVerbatim(h, b)
}

// appendVerbatim stores b as-is, completing with LACK_OF_MEMORY instead of
// writing when doing so would leave no room for a final terminator.
func appendVerbatim(h *respbuf.Handle, b byte) (bool, aterr.Result) {
	if h.WouldOverflow() {
		h.Complete(aterr.LackOfMemory)
		return true, aterr.LackOfMemory
	}
	h.AppendByte(b)
	return false, aterr.Other
}
