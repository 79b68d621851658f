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

	"github.com/walteh/fnr/pkg/edit"
)

// lineIndex maps 1-based line numbers to byte offsets.
type lineIndex struct {
	text   []byte
	starts []int
}

func newLineIndex(text []byte) lineIndex {
	starts := []int{0}
	for i, b := range text {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{text: text, starts: starts}
}

// count is the number of lines that hold text. The empty line after a trailing
// newline is not counted, though a match may still land on it.
func (l lineIndex) count() int {
	n := len(l.starts)
	if n > 1 && l.starts[n-1] == len(l.text) {
		n--
	}
	return n
}

// span returns the byte range of lines from..to, without the final newline.
func (l lineIndex) span(from, to int) (int, int) {
	from = min(max(from, 1), len(l.starts))
	to = min(max(to, from), len(l.starts))
	start := l.starts[from-1]
	end := len(l.text)
	if to < len(l.starts) {
		end = l.starts[to] - 1
	}
	return start, end
}

func (l lineIndex) line(n int) []byte {
	start, end := l.span(n, n)
	return l.text[start:end]
}

// block is a run of adjacent matched lines.
type block struct {
	from, to int
	edits    []edit.Edit
}

// hunk is a set of blocks shown together with their context.
type hunk struct {
	blocks []block
}

func (h hunk) from() int { return h.blocks[0].from }
func (h hunk) to() int   { return h.blocks[len(h.blocks)-1].to }

// groupBlocks joins edits on the same or adjacent lines.
func groupBlocks(edits []edit.Edit) []block {
	var out []block
	for _, e := range edits {
		if n := len(out); n > 0 && e.Match.StartLine <= out[n-1].to+1 {
			out[n-1].to = max(out[n-1].to, e.Match.EndLine)
			out[n-1].edits = append(out[n-1].edits, e)
			continue
		}
		out = append(out, block{from: e.Match.StartLine, to: e.Match.EndLine, edits: []edit.Edit{e}})
	}
	return out
}

// groupHunks joins blocks whose context windows touch.
func groupHunks(blocks []block, before, after int) []hunk {
	var out []hunk
	for _, b := range blocks {
		if n := len(out); n > 0 && b.from-before <= out[n-1].to()+after+1 {
			out[n-1].blocks = append(out[n-1].blocks, b)
			continue
		}
		out = append(out, hunk{blocks: []block{b}})
	}
	return out
}

// apply returns the original and replaced text of a block, split into lines.
func (l lineIndex) apply(b block) ([]byte, []byte) {
	start, end := l.span(b.from, b.to)
	for _, e := range b.edits {
		end = max(end, e.Match.End)
	}

	var repl bytes.Buffer
	at := start
	for _, e := range b.edits {
		repl.Write(l.text[at:e.Match.Start])
		repl.Write(e.Replacement)
		at = e.Match.End
	}
	repl.Write(l.text[at:end])

	orig, out := l.text[start:end], repl.Bytes()
	if bytes.HasSuffix(orig, []byte{'\n'}) {
		orig = orig[:len(orig)-1]
		out = bytes.TrimSuffix(out, []byte{'\n'})
	}
	return orig, out
}
