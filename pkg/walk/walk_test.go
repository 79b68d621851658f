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

package walk

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tree creates files below dir and returns dir.
func tree(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(f), 0o644))
	}
	return dir
}

// rel strips dir from every path and converts it to slash form.
func rel(t *testing.T, dir string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := filepath.Rel(dir, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func TestWalkerPaths(t *testing.T) {
	files := []string{
		"a.go",
		"b.txt",
		"sub/c.go",
		"sub/deep/d.go",
		".hidden/e.go",
		".f.go",
		".git/config",
		"vendor/v.go",
	}

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "defaults_skip_hidden_and_git",
			want: []string{"a.go", "b.txt", "sub/c.go", "sub/deep/d.go", "vendor/v.go"},
		},
		{
			name: "hidden_keeps_dot_entries_but_not_git",
			opts: Options{Hidden: true},
			want: []string{".f.go", ".hidden/e.go", "a.go", "b.txt", "sub/c.go", "sub/deep/d.go", "vendor/v.go"},
		},
		{
			name: "all_files",
			opts: Options{AllFiles: true},
			want: []string{".f.go", ".git/config", ".hidden/e.go", "a.go", "b.txt", "sub/c.go", "sub/deep/d.go", "vendor/v.go"},
		},
		{
			name: "include_by_base_name",
			opts: Options{Include: []string{"*.go"}},
			want: []string{"a.go", "sub/c.go", "sub/deep/d.go", "vendor/v.go"},
		},
		{
			name: "exclude_by_path",
			opts: Options{Exclude: []string{"**/vendor/**", "*.txt"}},
			want: []string{"a.go", "sub/c.go", "sub/deep/d.go"},
		},
		{
			name: "include_wins_over_exclude",
			opts: Options{Include: []string{"**/sub/**"}, Exclude: []string{"*.go"}},
			want: []string{"sub/c.go", "sub/deep/d.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tree(t, files...)
			w, err := New(tt.opts)
			require.NoError(t, err)

			got := slices.Collect(w.Paths(testContext(t), []string{dir}))
			assert.Equal(t, tt.want, rel(t, dir, got), "paths should match")
		})
	}
}

func TestWalkerRootsAreOrderedAndDeduplicated(t *testing.T) {
	dir := tree(t, "a.txt", "sub/b.txt")
	w, err := New(Options{})
	require.NoError(t, err)

	roots := []string{
		filepath.Join(dir, "sub"),
		filepath.Join(dir, "a.txt"),
		dir,
		filepath.Join(dir, "missing.txt"),
		filepath.Join(dir, "a.txt") + string(filepath.Separator),
	}

	got := slices.Collect(w.Paths(testContext(t), roots))
	assert.Equal(t, []string{"sub/b.txt", "a.txt", "missing.txt"}, rel(t, dir, got), "each file once, in root order")
}

func TestWalkerExplicitHiddenRoot(t *testing.T) {
	dir := tree(t, ".env")
	w, err := New(Options{})
	require.NoError(t, err)

	got := slices.Collect(w.Paths(testContext(t), []string{filepath.Join(dir, ".env")}))
	assert.Len(t, got, 1, "an explicit file is never hidden")
}

func TestWalkerEarlyBreak(t *testing.T) {
	dir := tree(t, "a", "b", "c", "d")
	w, err := New(Options{})
	require.NoError(t, err)

	n := 0
	for range w.Paths(testContext(t), []string{dir}) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestNewRejectsBadGlob(t *testing.T) {
	_, err := New(Options{Exclude: []string{"[a-"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid glob")
}

func TestReadPaths(t *testing.T) {
	got, err := ReadPaths(strings.NewReader("a.go\n\n  b.go  \r\nc/d.go"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "b.go", "c/d.go"}, got)
}
