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

// Package atmetrics exposes the engine's Prometheus instrumentation: how
// many lines the Response Parser has terminated, how many URC matches fired,
// how many sessions overflowed their buffer, and how many timeouts the
// Timeout Supervisor tripped.
package atmetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is a per-registry set of counters. Construct one with New and
// register it on whichever prometheus.Registerer the host application uses;
// a registry with nil Metrics simply skips instrumentation.
type Metrics struct {
	LinesParsed    prometheus.Counter
	URCMatches     prometheus.Counter
	Overflows      prometheus.Counter
	TimeoutsTotal  prometheus.Counter
	ActiveSessions prometheus.Gauge
}

// New creates the counters/gauge with the "atengine" namespace and registers
// them on reg. Passing prometheus.NewRegistry() (rather than the global
// DefaultRegisterer) keeps multiple engines in the same process from
// colliding on metric names.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LinesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atengine",
			Name:      "lines_parsed_total",
			Help:      "Number of response lines terminated by the Response Parser.",
		}),
		URCMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atengine",
			Name:      "urc_matches_total",
			Help:      "Number of URC entries whose callback fired.",
		}),
		Overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atengine",
			Name:      "buffer_overflows_total",
			Help:      "Number of sessions completed with LACK_OF_MEMORY.",
		}),
		TimeoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "atengine",
			Name:      "timeouts_total",
			Help:      "Number of response or data sessions tripped by the Timeout Supervisor.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "atengine",
			Name:      "active_sessions",
			Help:      "Number of instances currently busy with a response or data session.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.LinesParsed, m.URCMatches, m.Overflows, m.TimeoutsTotal, m.ActiveSessions)
	}

	return m
}
