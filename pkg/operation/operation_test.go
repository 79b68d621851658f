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

package operation

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/journal"
	"github.com/walteh/fnr/pkg/log"
	"github.com/walteh/fnr/pkg/report"
	"github.com/walteh/fnr/pkg/review"
	"github.com/walteh/fnr/pkg/status"
	"github.com/walteh/fnr/pkg/text"
	"github.com/walteh/fnr/pkg/walk"
)

// 🔧 MockRecorder is a mock implementation of the Recorder interface
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, e journal.Entry) error {
	return m.Called(ctx, e).Error(0)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

// files writes name/content pairs below a new directory.
func files(t *testing.T, kv ...string) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, kv[i]), []byte(kv[i+1]), 0o644))
	}
	return dir
}

func read(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(b)
}

type fixture struct {
	find    string
	replace string
	text    text.Options
	opts    Options
	console *log.Logger // optional, carried in the context
}

// run executes one replace over dir and returns the report output.
func run(t *testing.T, dir string, f fixture) (string, *Replace, error) {
	t.Helper()

	p, err := text.Compile(f.find, f.text)
	require.NoError(t, err)
	tmpl, err := text.CompileTemplate(f.replace, p)
	require.NoError(t, err)
	w, err := walk.New(walk.Options{})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	opts := f.opts
	opts.Pattern = p
	opts.Template = tmpl
	opts.Walker = w
	opts.Roots = []string{dir}
	opts.Output = out
	opts.Workers = 2
	if opts.Reporter == nil {
		opts.Reporter = report.New(report.Options{})
	}

	op, err := NewReplace(opts)
	require.NoError(t, err)

	ctx := testContext(t)
	if f.console != nil {
		ctx = log.NewContext(ctx, f.console)
	}
	err = op.Execute(ctx)
	return out.String(), op, err
}

func TestReplaceDryRunLeavesFilesAlone(t *testing.T) {
	dir := files(t, "a.go", "const x = 7;\nconst y = 8;\n", "b.go", "var z = 9;\n")
	infoBefore, err := os.Stat(filepath.Join(dir, "a.go"))
	require.NoError(t, err)

	out, op, err := run(t, dir, fixture{find: `const (\w+) = \d+;`, replace: "const $1 = 42;"})
	require.NoError(t, err)

	assert.Equal(t, "const x = 7;\nconst y = 8;\n", read(t, dir, "a.go"), "dry run should not write")
	infoAfter, err := os.Stat(filepath.Join(dir, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, infoBefore.ModTime(), infoAfter.ModTime(), "dry run should not touch metadata")

	assert.Contains(t, out, filepath.Join(dir, "a.go")+": 2 matching lines")
	assert.Contains(t, out, "-1: const x = 7;\n-2: const y = 8;\n+1: const x = 42;\n+2: const y = 42;\n")
	assert.Contains(t, out, "All done. Replaced 2 of 2 matches\n")
	assert.Contains(t, out, "Use -w, --write to modify files in place.\n")
	assert.NotContains(t, out, "b.go", "files without matches are not reported")

	assert.True(t, op.DryRun())
	assert.Equal(t, int64(2), op.Stats().FilesScanned.Load())
	assert.Equal(t, int64(1), op.Stats().FilesChanged.Load())
}

func TestReplaceWriteIsIdempotent(t *testing.T) {
	dir := files(t, "a.go", "const x = 7;\nconst y = 8;\n")
	f := fixture{find: `const (\w+) = \d+;`, replace: "const $1 = 42;", opts: Options{Write: true}}

	out, _, err := run(t, dir, f)
	require.NoError(t, err)
	assert.Equal(t, "const x = 42;\nconst y = 42;\n", read(t, dir, "a.go"))
	assert.NotContains(t, out, "--write", "no hint when writing")

	info, err := os.Stat(filepath.Join(dir, "a.go"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), "mode should be preserved")

	_, op, err := run(t, dir, f)
	require.NoError(t, err)
	assert.Equal(t, "const x = 42;\nconst y = 42;\n", read(t, dir, "a.go"), "second run should change nothing")
	assert.Equal(t, int64(0), op.Stats().FilesChanged.Load())
}

func TestReplaceRoundTrip(t *testing.T) {
	dir := files(t, "a.c", "int i;\ni += 1; // counter\nreturn i;\n")
	literal := text.Options{Literal: true}

	out, _, err := run(t, dir, fixture{find: "i += 1", replace: "i++", text: literal, opts: Options{Write: true}})
	require.NoError(t, err)
	assert.Contains(t, out, ": 1 matching lines\n-2: i += 1; // counter\n+2: i++; // counter\n")
	assert.Equal(t, "int i;\ni++; // counter\nreturn i;\n", read(t, dir, "a.c"))

	_, op, err := run(t, dir, fixture{find: "i++", replace: "i++", text: literal})
	require.NoError(t, err)
	assert.Equal(t, int64(1), op.Stats().MatchesFound.Load(), "the replacement should be found again")

	_, op, err = run(t, dir, fixture{find: "i += 1", replace: "i++", text: literal})
	require.NoError(t, err)
	assert.Equal(t, int64(0), op.Stats().MatchesFound.Load(), "the original should be gone")
}

func TestReplacePrompt(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantA       string
		wantB       string
		wantPrompts int
		wantSummary string
	}{
		{
			name:        "yes_then_no",
			input:       "y\nn\ny\nn\n",
			wantA:       "bar\nfoo\n",
			wantB:       "bar\nfoo\n",
			wantPrompts: 4,
			wantSummary: "Replaced 2 of 4 matches",
		},
		{
			name:        "all_is_scoped_to_one_file",
			input:       "a\nn\nn\n",
			wantA:       "bar\nbar\n",
			wantB:       "foo\nfoo\n",
			wantPrompts: 3,
			wantSummary: "Replaced 2 of 4 matches",
		},
		{
			name:        "done_is_scoped_to_one_file",
			input:       "d\ny\ny\n",
			wantA:       "foo\nfoo\n",
			wantB:       "bar\nbar\n",
			wantPrompts: 3,
			wantSummary: "Replaced 2 of 4 matches",
		},
		{
			name:        "quit_stops_prompting",
			input:       "y\nq\ny\ny\n",
			wantA:       "bar\nfoo\n",
			wantB:       "foo\nfoo\n",
			wantPrompts: 2,
			wantSummary: "Replaced 1 of 2 matches",
		},
		{
			name:        "end_of_input_quits",
			input:       "y\n",
			wantA:       "bar\nfoo\n",
			wantB:       "foo\nfoo\n",
			wantPrompts: 2,
			wantSummary: "Replaced 1 of 2 matches",
		},
		{
			name:        "everything_accepts_the_rest",
			input:       "n\n!\n",
			wantA:       "foo\nbar\n",
			wantB:       "bar\nbar\n",
			wantPrompts: 2,
			wantSummary: "Replaced 3 of 4 matches",
		},
		{
			name:        "edit_uses_typed_text",
			input:       "e\nbaz\nn\nn\nn\n",
			wantA:       "baz\nfoo\n",
			wantB:       "foo\nfoo\n",
			wantPrompts: 4,
			wantSummary: "Replaced 1 of 4 matches",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := files(t, "a.txt", "foo\nfoo\n", "b.txt", "foo\nfoo\n")

			out, _, err := run(t, dir, fixture{
				find:    "foo",
				replace: "bar",
				opts:    Options{Prompt: true, Input: strings.NewReader(tt.input)},
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantA, read(t, dir, "a.txt"), "a.txt content")
			assert.Equal(t, tt.wantB, read(t, dir, "b.txt"), "b.txt content")
			assert.Equal(t, tt.wantPrompts, strings.Count(out, review.Prompt), "prompt count")
			assert.Contains(t, out, tt.wantSummary)
			assert.NotContains(t, out, "--write", "prompting implies writing")
		})
	}
}

// deletingReader removes a file on its first read.
type deletingReader struct {
	r       io.Reader
	path    string
	deleted bool
}

func (d *deletingReader) Read(p []byte) (int, error) {
	if !d.deleted {
		d.deleted = true
		if err := os.Remove(d.path); err != nil {
			return 0, err
		}
	}
	return d.r.Read(p)
}

func TestReplaceVanishedFileFailsButRunContinues(t *testing.T) {
	dir := files(t, "a.txt", "foo\n", "b.txt", "foo\n")

	console := &bytes.Buffer{}
	logger := log.New(console, zerolog.New(zerolog.NewTestWriter(t)), false)

	out, op, err := run(t, dir, fixture{
		find:    "foo",
		replace: "bar",
		opts: Options{
			Prompt: true,
			Input:  &deletingReader{r: strings.NewReader("y\ny\n"), path: filepath.Join(dir, "a.txt")},
		},
		console: logger,
	})
	require.Error(t, err, "a failed write should fail the run")
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.Contains(t, err.Error(), "1 files")

	_, statErr := os.Stat(filepath.Join(dir, "a.txt"))
	assert.True(t, os.IsNotExist(statErr), "the vanished file should not be recreated")
	assert.Equal(t, "bar\n", read(t, dir, "b.txt"), "later files should still be written")

	assert.Contains(t, out, "1 files could not be written")
	assert.Contains(t, console.String(), "Failed "+filepath.Join(dir, "a.txt"))
	assert.Equal(t, int64(1), op.Stats().FilesFailed.Load())
}

func TestReplaceSkipsBinaryFiles(t *testing.T) {
	dir := files(t, "a.bin", "foo\x00", "b.txt", "foo\n")

	console := &bytes.Buffer{}
	logger := log.New(console, zerolog.New(zerolog.NewTestWriter(t)), false)

	_, op, err := run(t, dir, fixture{find: "foo", replace: "bar", opts: Options{Write: true, Verbose: true}, console: logger})
	require.NoError(t, err)

	assert.Equal(t, "foo\x00", read(t, dir, "a.bin"))
	assert.Equal(t, "bar\n", read(t, dir, "b.txt"))
	assert.Equal(t, int64(1), op.Stats().FilesSkipped.Load())

	lines := strings.Split(strings.TrimSpace(console.String()), "\n")
	require.Len(t, lines, 3, "two outcomes and the success line")
	assert.Contains(t, lines[0], status.StatusSkippedBinary.String())
	assert.Contains(t, lines[1], status.StatusModified.String())
	assert.Contains(t, lines[2], "1 files written")
}

func TestReplaceConsoleMessages(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		recordErr error
		want      []string
		wantNot   []string
	}{
		{
			name: "write_prints_success",
			opts: Options{Write: true},
			want: []string{"1 files written"},
		},
		{
			name:    "dry_run_prints_no_success",
			opts:    Options{},
			wantNot: []string{"files written"},
		},
		{
			name:      "journal_failure_is_a_warning",
			opts:      Options{Write: true},
			recordErr: errors.New("database is locked"),
			want:      []string{"journal write failed for", "database is locked", "1 files written"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := files(t, "a.txt", "foo\n")

			console := &bytes.Buffer{}
			logger := log.New(console, zerolog.New(zerolog.NewTestWriter(t)), false)

			opts := tt.opts
			if tt.recordErr != nil {
				rec := &MockRecorder{}
				rec.On("Record", mock.Anything, mock.Anything).Return(tt.recordErr).Once()
				opts.Journal = rec
				defer rec.AssertExpectations(t)
			}

			_, _, err := run(t, dir, fixture{find: "foo", replace: "bar", opts: opts, console: logger})
			require.NoError(t, err, "console messages should never fail the run")

			for _, w := range tt.want {
				assert.Contains(t, console.String(), w)
			}
			for _, w := range tt.wantNot {
				assert.NotContains(t, console.String(), w)
			}
		})
	}
}

func TestReplaceJournal(t *testing.T) {
	dir := files(t, "a.txt", "foo foo\n", "b.txt", "nothing\n")

	rec := &MockRecorder{}
	rec.On("Record", mock.Anything, mock.MatchedBy(func(e journal.Entry) bool {
		return e.Path == filepath.Join(dir, "a.txt") &&
			e.Pattern == "foo" &&
			e.Replacement == "bar" &&
			e.Matches == 2 &&
			e.Accepted == 2 &&
			e.Before != e.After
	})).Return(nil).Once()

	_, _, err := run(t, dir, fixture{find: "foo", replace: "bar", opts: Options{Write: true, Journal: rec}})
	require.NoError(t, err)
	rec.AssertExpectations(t)

	dry := &MockRecorder{}
	_, _, err = run(t, dir, fixture{find: "bar", replace: "foo", opts: Options{Journal: dry}})
	require.NoError(t, err)
	dry.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestReplaceFormats(t *testing.T) {
	tests := []struct {
		name    string
		format  report.Format
		stats   bool
		want    []string
		notWant []string
	}{
		{
			name:    "compact_has_no_summary",
			format:  report.FormatCompact,
			want:    []string{"a.txt:1:-foo", "a.txt:1:+bar"},
			notWant: []string{"All done", "matching lines"},
		},
		{
			name:    "quiet_has_only_the_summary",
			format:  report.FormatQuiet,
			want:    []string{"All done. Replaced 1 of 1 matches"},
			notWant: []string{"-1: foo", "matching lines"},
		},
		{
			name:   "stats_table",
			format: report.FormatFull,
			stats:  true,
			want:   []string{"files scanned", "matches accepted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := files(t, "a.txt", "foo\n")
			out, _, err := run(t, dir, fixture{
				find:    "foo",
				replace: "bar",
				opts:    Options{Reporter: report.New(report.Options{Format: tt.format}), Stats: tt.stats},
			})
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}
}

func TestNewReplaceValidation(t *testing.T) {
	p := text.MustCompile("foo", text.Options{})
	tmpl, err := text.CompileTemplate("bar", p)
	require.NoError(t, err)
	w, err := walk.New(walk.Options{})
	require.NoError(t, err)
	r := report.New(report.Options{})

	tests := []struct {
		name        string
		opts        Options
		errContains string
	}{
		{name: "no_pattern", opts: Options{Template: tmpl, Walker: w, Reporter: r, Output: io.Discard}, errContains: "pattern is required"},
		{name: "no_template", opts: Options{Pattern: p, Walker: w, Reporter: r, Output: io.Discard}, errContains: "template is required"},
		{name: "no_walker", opts: Options{Pattern: p, Template: tmpl, Reporter: r, Output: io.Discard}, errContains: "walker is required"},
		{name: "no_reporter", opts: Options{Pattern: p, Template: tmpl, Walker: w, Output: io.Discard}, errContains: "reporter is required"},
		{name: "no_output", opts: Options{Pattern: p, Template: tmpl, Walker: w, Reporter: r}, errContains: "output is required"},
		{name: "prompt_without_input", opts: Options{Pattern: p, Template: tmpl, Walker: w, Reporter: r, Output: io.Discard, Prompt: true}, errContains: "input stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReplace(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
