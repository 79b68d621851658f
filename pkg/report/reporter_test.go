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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/fnr/pkg/edit"
	"github.com/walteh/fnr/pkg/status"
	"github.com/walteh/fnr/pkg/text"
)

func changeSet(t *testing.T, content, pattern, repl string, opts text.Options) *edit.FileChangeSet {
	t.Helper()
	p, err := text.Compile(pattern, opts)
	require.NoError(t, err)
	tmpl, err := text.CompileTemplate(repl, p)
	require.NoError(t, err)
	cs, err := edit.Build("f", []byte(content), edit.Fingerprint{}, p, tmpl)
	require.NoError(t, err)
	cs.AcceptAll()
	return cs
}

func lines(s ...string) string {
	return strings.Join(s, "\n") + "\n"
}

func TestReport(t *testing.T) {
	literal := text.Options{Literal: true, Case: text.CaseSensitive}

	tests := []struct {
		name    string
		content string
		pattern string
		repl    string
		opts    text.Options
		report  Options
		setup   func(cs *edit.FileChangeSet)
		want    string
	}{
		{
			name:    "single_matching_line",
			content: "int i;\ni += 1; // counter\nreturn i;\n",
			pattern: "i += 1",
			repl:    "i++",
			opts:    literal,
			want: lines(
				"f: 1 matching lines",
				"-2: i += 1; // counter",
				"+2: i++; // counter",
			),
		},
		{
			name:    "hunks_are_separated",
			content: "foo\na\nb\nc\nfoo\n",
			pattern: "foo",
			repl:    "bar",
			opts:    literal,
			want: lines(
				"f: 2 matching lines",
				"-1: foo",
				"+1: bar",
				"--",
				"-5: foo",
				"+5: bar",
			),
		},
		{
			name:    "context_lines",
			content: "foo\na\nb\nc\nfoo\n",
			pattern: "foo",
			repl:    "bar",
			opts:    literal,
			report:  Options{Before: 1, After: 1},
			want: lines(
				"f: 2 matching lines",
				"-1: foo",
				"+1: bar",
				" 2: a",
				"--",
				" 4: c",
				"-5: foo",
				"+5: bar",
			),
		},
		{
			name:    "touching_context_merges_hunks",
			content: "foo\na\nfoo\nb\n",
			pattern: "foo",
			repl:    "bar",
			opts:    literal,
			report:  Options{After: 1},
			want: lines(
				"f: 2 matching lines",
				"-1: foo",
				"+1: bar",
				" 2: a",
				"-3: foo",
				"+3: bar",
				" 4: b",
			),
		},
		{
			name:    "adjacent_lines_form_one_block",
			content: "foo\nfoo\nx",
			pattern: "foo",
			repl:    "bar",
			opts:    literal,
			want: lines(
				"f: 2 matching lines",
				"-1: foo",
				"-2: foo",
				"+1: bar",
				"+2: bar",
			),
		},
		{
			name:    "multi_line_deletion",
			content: "keep\ndrop\nme\nkeep",
			pattern: `drop\nme\n`,
			repl:    "",
			opts:    text.Options{Case: text.CaseSensitive},
			want: lines(
				"f: 2 matching lines",
				"-2: drop",
				"-3: me",
				"+2: ",
			),
		},
		{
			name:    "capture_groups",
			content: "const x = 7;\n",
			pattern: `const (\w+) = \d+;`,
			repl:    "const $1 = 42;",
			want: lines(
				"f: 1 matching lines",
				"-1: const x = 7;",
				"+1: const x = 42;",
			),
		},
		{
			name:    "rejected_edits_are_hidden",
			content: "foo\nfoo\n",
			pattern: "foo",
			repl:    "bar",
			opts:    literal,
			setup: func(cs *edit.FileChangeSet) {
				cs.Edits[0].Decision = edit.Rejected
			},
			want: lines(
				"f: 2 matching lines",
				"-2: foo",
				"+2: bar",
			),
		},
		{
			name:    "compact",
			content: "a foo\nb\n",
			pattern: "foo",
			repl:    "bar",
			opts:    literal,
			report:  Options{Format: FormatCompact, After: 1},
			want: lines(
				"f:1:-a foo",
				"f:1:+a bar",
				"f:2: b",
			),
		},
		{
			name:    "quiet",
			content: "foo\n",
			pattern: "foo",
			repl:    "bar",
			opts:    literal,
			report:  Options{Format: FormatQuiet},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := changeSet(t, tt.content, tt.pattern, tt.repl, tt.opts)
			if tt.setup != nil {
				tt.setup(cs)
			}

			var buf bytes.Buffer
			require.NoError(t, New(tt.report).Report(&buf, cs), "report should succeed")
			assert.Equal(t, tt.want, buf.String(), "report output should match")
		})
	}
}

func TestRenderHunkSeparators(t *testing.T) {
	cs := changeSet(t, "foo foo\nfoo\n", "foo", "bar", text.Options{Literal: true})
	r := New(Options{})

	var buf bytes.Buffer
	require.NoError(t, r.RenderHeader(&buf, cs))
	for i := range cs.Edits {
		require.NoError(t, r.RenderHunk(&buf, cs, i))
	}

	assert.Equal(t, lines(
		"f: 2 matching lines",
		"-1: foo foo",
		"+1: bar foo",
		"--",
		"-1: foo foo",
		"+1: foo bar",
		"--",
		"-2: foo",
		"+2: bar",
	), buf.String(), "each hunk shows only its own edit")

	buf.Reset()
	require.NoError(t, r.RenderHeader(&buf, cs))
	require.NoError(t, r.RenderHunk(&buf, cs, 2))
	assert.NotContains(t, buf.String(), "--", "a new header resets the separator")
}

func TestReportColor(t *testing.T) {
	cs := changeSet(t, "say foo now\n", "foo", "bar", text.Options{Literal: true})

	var buf bytes.Buffer
	require.NoError(t, New(Options{Color: true}).Report(&buf, cs))

	out := buf.String()
	assert.Contains(t, out, "\x1b[", "output should be coloured")
	assert.Contains(t, out, "bar")
	assert.Equal(t, 3, strings.Count(out, "\n"), "colour must not add lines")
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatFull, "full": FormatFull, "Compact": FormatCompact, "quiet": FormatQuiet} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "format for %q", in)
	}
	_, err := ParseFormat("fancy")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	s := NewStats()
	s.Record(status.Result{Status: status.StatusModified, Matches: 3, Accepted: 2})
	s.Record(status.Result{Status: status.StatusUnchanged, Matches: 1})
	s.Record(status.Result{Status: status.StatusUnchanged})
	s.Record(status.Result{Status: status.StatusFailed, Matches: 2, Accepted: 2})
	s.Record(status.Result{Status: status.StatusSkippedBinary})

	assert.Equal(t, int64(4), s.FilesScanned.Load())
	assert.Equal(t, int64(1), s.FilesSkipped.Load())
	assert.Equal(t, int64(3), s.FilesWithMatches.Load())
	assert.Equal(t, int64(1), s.FilesChanged.Load())
	assert.Equal(t, int64(1), s.FilesFailed.Load())
	assert.Equal(t, int64(6), s.MatchesFound.Load())
	assert.Equal(t, int64(2), s.MatchesAccepted.Load())

	var buf bytes.Buffer
	require.NoError(t, s.Summary(&buf, true))
	assert.Equal(t, lines(
		"All done. Replaced 2 of 6 matches",
		"1 files could not be written",
		"Use -w, --write to modify files in place.",
	), buf.String())

	buf.Reset()
	require.NoError(t, s.Table(&buf))
	assert.Contains(t, buf.String(), "matches accepted")
}
