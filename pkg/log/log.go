// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/walteh/fnr/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent  = 2  // spaces to indent file entries
	nameWidth   = 40 // base width for the path
	statusWidth = 20 // width for the status text
)

// 🎯 Logger writes per-file outcomes and user messages to the console and
// mirrors every line to zerolog
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	formatter status.FileFormatter
	mu        sync.Mutex

	success *pterm.PrefixPrinter
	warning *pterm.PrefixPrinter
	failure *pterm.PrefixPrinter

	symbols map[status.FileStatus]*color.Color
	faint   *color.Color
}

// 🏭 New creates a new logger writing to console. Colour is applied only when
// colored is set.
func New(console io.Writer, zlog zerolog.Logger, colored bool) *Logger {
	l := &Logger{
		zlog:      zlog,
		console:   console,
		formatter: status.NewDefaultFileFormatter(),
		success:   printer(pterm.Success, "✅", console, colored),
		warning:   printer(pterm.Warning, "⚠️", console, colored),
		failure:   printer(pterm.Error, "❌", console, colored),
		symbols: map[status.FileStatus]*color.Color{
			status.StatusModified:          color.New(color.FgGreen),
			status.StatusWouldModify:       color.New(color.FgBlue),
			status.StatusSkippedBinary:     color.New(color.FgYellow),
			status.StatusSkippedUnreadable: color.New(color.FgYellow),
			status.StatusFailed:            color.New(color.FgRed),
			status.StatusUnchanged:         color.New(color.FgCyan),
		},
		faint: color.New(color.Faint),
	}

	for _, c := range l.symbols {
		setColor(c, colored)
	}
	setColor(l.faint, colored)

	return l
}

func printer(base pterm.PrefixPrinter, symbol string, w io.Writer, colored bool) *pterm.PrefixPrinter {
	if !colored {
		base.MessageStyle = pterm.NewStyle()
		return base.WithPrefix(pterm.Prefix{Text: symbol, Style: pterm.NewStyle()}).WithWriter(w)
	}
	return base.WithPrefix(pterm.Prefix{Text: symbol, Style: base.Prefix.Style}).WithWriter(w)
}

func setColor(c *color.Color, on bool) {
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context, or nil when there is none
func FromContext(ctx context.Context) *Logger {
	logger, _ := ctx.Value(contextKey{}).(*Logger)
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

func symbol(s status.FileStatus) rune {
	switch s {
	case status.StatusModified:
		return '✓'
	case status.StatusWouldModify:
		return '⟳'
	case status.StatusSkippedBinary, status.StatusSkippedUnreadable:
		return '-'
	case status.StatusFailed:
		return '✗'
	default:
		return '•'
	}
}

// 📝 formatResult formats a file outcome for display
func (l *Logger) formatResult(r status.Result) string {
	counts := ""
	if r.Matches > 0 {
		counts = l.faint.Sprintf("%d/%d", r.Accepted, r.Matches)
	}
	return fmt.Sprintf("%*s%s %-*s %-*s %s",
		fileIndent, "",
		l.symbols[r.Status].Sprint(string(symbol(r.Status))),
		nameWidth, r.Path,
		statusWidth, r.Status.String(),
		counts)
}

// 📝 LogResult prints a file outcome
func (l *Logger) LogResult(r status.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatResult(r))

	var event *zerolog.Event
	switch {
	case r.Status == status.StatusFailed:
		event = l.zlog.Error().Err(r.Err)
	case r.Status.Skipped():
		event = l.zlog.Debug().AnErr("reason", r.Err)
	default:
		event = l.zlog.Info()
	}
	event.
		Str("file", r.Path).
		Str("status", r.Status.String()).
		Int("matches", r.Matches).
		Int("accepted", r.Accepted).
		Msg(l.formatter.FormatResult(r))
}

// 📝 Failure prints a failed write
func (l *Logger) Failure(r status.Result) {
	l.Error(l.formatter.FormatResult(r))
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.success.Println(msg)
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warning.Println(msg)
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failure.Println(msg)
	l.zlog.Error().Msg(msg)
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...any) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...any) {
	l.Success(fmt.Sprintf(format, args...))
}
