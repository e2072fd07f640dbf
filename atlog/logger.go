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

package atlog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface every engine component takes. WithField
// attaches the contextual key/values a caller wants on every line an
// instance emits (handle id, device name, ...).
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level

	WithField(key string, value any) Logger

	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

type lgr struct {
	mu  sync.RWMutex
	lvl Level
	ent *logrus.Entry
}

// New wraps an existing logrus.Entry. A nil entry falls back to
// logrus.StandardLogger().
func New(entry *logrus.Entry) Logger {
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	return &lgr{lvl: InfoLevel, ent: entry}
}

var (
	defOnce sync.Once
	defLog  Logger
)

// Default returns the package-wide fallback logger used by components that
// are not handed an explicit Logger, built once on first use.
func Default() Logger {
	defOnce.Do(func() {
		defLog = New(nil)
	})
	return defLog
}

func (l *lgr) SetLevel(lvl Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lvl = lvl
}

func (l *lgr) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lvl
}

func (l *lgr) WithField(key string, value any) Logger {
	l.mu.RLock()
	lvl := l.lvl
	ent := l.ent
	l.mu.RUnlock()
	return &lgr{lvl: lvl, ent: ent.WithField(key, value)}
}

func (l *lgr) allowed(lvl Level) bool {
	return l.GetLevel() != NilLevel && lvl >= l.GetLevel()
}

func fieldArgs(fields []any) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			f[key] = fields[i+1]
		}
	}
	return f
}

func (l *lgr) Debug(msg string, fields ...any) {
	if l.allowed(DebugLevel) {
		l.ent.WithFields(fieldArgs(fields)).Debug(msg)
	}
}

func (l *lgr) Info(msg string, fields ...any) {
	if l.allowed(InfoLevel) {
		l.ent.WithFields(fieldArgs(fields)).Info(msg)
	}
}

func (l *lgr) Warn(msg string, fields ...any) {
	if l.allowed(WarnLevel) {
		l.ent.WithFields(fieldArgs(fields)).Warn(msg)
	}
}

func (l *lgr) Error(msg string, fields ...any) {
	if l.allowed(ErrorLevel) {
		l.ent.WithFields(fieldArgs(fields)).Error(msg)
	}
}
