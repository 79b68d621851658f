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

package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/edit"
	"github.com/walteh/fnr/pkg/review"
)

// 🖨️ Format selects how matches are printed
type Format int

const (
	FormatFull    Format = iota // header, -/+ line pairs, hunks split by --
	FormatCompact               // path:line:-text and path:line:+text
	FormatQuiet                 // summary only
)

func (f Format) String() string {
	switch f {
	case FormatCompact:
		return "compact"
	case FormatQuiet:
		return "quiet"
	default:
		return "full"
	}
}

// ParseFormat parses "full", "compact" or "quiet".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return FormatFull, nil
	case "compact":
		return FormatCompact, nil
	case "quiet", "silent":
		return FormatQuiet, nil
	default:
		return FormatFull, errors.Errorf("unknown output format %q", s)
	}
}

// Options configures a Reporter.
type Options struct {
	Format Format
	Before int // context lines before each hunk
	After  int // context lines after each hunk
	Color  bool
}

// 📋 Reporter renders matches as -/+ line pairs. It is used from a single
// goroutine.
type Reporter struct {
	opts  Options
	hunks int // hunks printed since the last header

	header  *color.Color
	minus   *color.Color
	plus    *color.Color
	minusHL *color.Color
	plusHL  *color.Color
	context *color.Color
}

var _ review.HunkRenderer = (*Reporter)(nil)

// 🏭 New creates a new reporter
func New(opts Options) *Reporter {
	r := &Reporter{
		opts:    opts,
		header:  color.New(color.Bold, color.Underline),
		minus:   color.New(color.FgRed),
		plus:    color.New(color.FgGreen),
		minusHL: color.New(color.FgRed, color.Bold, color.ReverseVideo),
		plusHL:  color.New(color.FgGreen, color.Bold, color.ReverseVideo),
		context: color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.header, r.minus, r.plus, r.minusHL, r.plusHL, r.context} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Options returns the reporter configuration.
func (r *Reporter) Options() Options { return r.opts }

// RenderHeader prints `<path>: <N> matching lines`.
func (r *Reporter) RenderHeader(w io.Writer, cs *edit.FileChangeSet) error {
	r.hunks = 0
	if r.opts.Format != FormatFull {
		return nil
	}
	_, err := fmt.Fprintf(w, "%s: %d matching lines\n", r.header.Sprint(cs.Path), cs.MatchingLines())
	return err
}

// RenderHunk prints edit index of cs with its current replacement.
func (r *Reporter) RenderHunk(w io.Writer, cs *edit.FileChangeSet, index int) error {
	e := cs.Edits[index]
	b := block{from: e.Match.StartLine, to: e.Match.EndLine, edits: []edit.Edit{e}}
	return r.renderHunk(w, cs, newLineIndex(cs.Original), hunk{blocks: []block{b}})
}

// Report prints every edit of cs that was not rejected, grouped into hunks.
func (r *Reporter) Report(w io.Writer, cs *edit.FileChangeSet) error {
	var edits []edit.Edit
	for _, e := range cs.Edits {
		if e.Decision != edit.Rejected {
			edits = append(edits, e)
		}
	}
	if len(edits) == 0 || r.opts.Format == FormatQuiet {
		return nil
	}

	if err := r.RenderHeader(w, cs); err != nil {
		return err
	}

	lines := newLineIndex(cs.Original)
	for _, h := range groupHunks(groupBlocks(edits), r.opts.Before, r.opts.After) {
		if err := r.renderHunk(w, cs, lines, h); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) renderHunk(w io.Writer, cs *edit.FileChangeSet, lines lineIndex, h hunk) error {
	if r.opts.Format == FormatQuiet {
		return nil
	}

	var buf bytes.Buffer
	if r.hunks > 0 && r.opts.Format == FormatFull {
		buf.WriteString("--\n")
	}
	r.hunks++

	at := max(1, h.from()-r.opts.Before)
	for _, b := range h.blocks {
		for ; at < b.from; at++ {
			r.contextLine(&buf, cs.Path, at, lines.line(at))
		}

		orig, repl := lines.apply(b)
		oldLines, newLines := r.highlight(string(orig), string(repl))
		for i, l := range oldLines {
			r.changeLine(&buf, cs.Path, '-', b.from+i, l, r.minus)
		}
		for i, l := range newLines {
			r.changeLine(&buf, cs.Path, '+', b.from+i, l, r.plus)
		}
		at = b.to + 1
	}

	last := min(h.to()+r.opts.After, lines.count())
	for ; at <= last; at++ {
		r.contextLine(&buf, cs.Path, at, lines.line(at))
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func (r *Reporter) changeLine(buf *bytes.Buffer, path string, sign byte, n int, text string, c *color.Color) {
	if r.opts.Format == FormatCompact {
		buf.WriteString(c.Sprintf("%s:%d:%c", path, n, sign))
	} else {
		buf.WriteString(c.Sprintf("%c%d: ", sign, n))
	}
	buf.WriteString(text)
	buf.WriteByte('\n')
}

func (r *Reporter) contextLine(buf *bytes.Buffer, path string, n int, text []byte) {
	if r.opts.Format == FormatCompact {
		buf.WriteString(r.context.Sprintf("%s:%d: ", path, n))
	} else {
		buf.WriteString(r.context.Sprintf(" %d: ", n))
	}
	buf.Write(text)
	buf.WriteByte('\n')
}

// highlight splits both sides into lines. With colour on, the changed segments
// are painted using a character diff.
func (r *Reporter) highlight(orig, repl string) ([]string, []string) {
	if !r.opts.Color {
		return strings.Split(orig, "\n"), strings.Split(repl, "\n")
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(orig, repl, false))

	var oldB, newB strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			paint(&oldB, d.Text, r.minus)
			paint(&newB, d.Text, r.plus)
		case diffmatchpatch.DiffDelete:
			paint(&oldB, d.Text, r.minusHL)
		case diffmatchpatch.DiffInsert:
			paint(&newB, d.Text, r.plusHL)
		}
	}
	return strings.Split(oldB.String(), "\n"), strings.Split(newB.String(), "\n")
}

// paint colours s piece by piece so that every line stays self-contained.
func paint(b *strings.Builder, s string, c *color.Color) {
	for i, piece := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		if piece != "" {
			b.WriteString(c.Sprint(piece))
		}
	}
}
