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
	"bufio"
	"context"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Options selects candidate files.
type Options struct {
	Hidden   bool     // descend into entries starting with a dot
	AllFiles bool     // Hidden, plus version control directories
	Include  []string // doublestar globs; when set, only matching files are kept
	Exclude  []string // doublestar globs; ignored when Include is set
}

// 🚶 Walker turns roots into an ordered, deduplicated sequence of files
type Walker struct {
	opts Options
}

var errStop = errors.Base("stop walking")

// vcsDirs are skipped unless AllFiles is set.
var vcsDirs = map[string]bool{".git": true, ".hg": true, ".svn": true}

// 🏭 New creates a new walker, validating every glob
func New(opts Options) (*Walker, error) {
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid glob %q", p)
		}
	}
	return &Walker{opts: opts}, nil
}

// Paths yields every candidate file below roots in walk order. Directories are
// walked recursively in lexical order; a root that cannot be read is yielded as
// is so that the scan reports it. Each file is yielded once.
func (w *Walker) Paths(ctx context.Context, roots []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		logger := zerolog.Ctx(ctx)
		seen := make(map[string]bool)

		emit := func(path, rel string) bool {
			key := filepath.Clean(path)
			if seen[key] || !w.Selected(path, rel) {
				return true
			}
			seen[key] = true
			return yield(path)
		}

		for _, root := range roots {
			if ctx.Err() != nil {
				return
			}

			info, err := os.Stat(root)
			if err != nil || !info.IsDir() {
				if !emit(root, root) {
					return
				}
				continue
			}

			err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					logger.Warn().Str("path", path).Err(err).Msg("skipping unreadable entry")
					if d != nil && d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				if ctx.Err() != nil {
					return errStop
				}

				if path != root && w.skipEntry(d) {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				if d.IsDir() || !regular(path, d) {
					return nil
				}

				rel, err := filepath.Rel(root, path)
				if err != nil {
					rel = path
				}
				if !emit(path, rel) {
					return errStop
				}
				return nil
			})
			if errors.Is(err, errStop) {
				return
			}
		}
	}
}

// regular reports whether the entry is a file or a symlink to one.
func regular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// skipEntry applies the hidden and version control rules to a walked entry.
func (w *Walker) skipEntry(d fs.DirEntry) bool {
	if w.opts.AllFiles {
		return false
	}
	name := d.Name()
	if d.IsDir() && vcsDirs[name] {
		return true
	}
	return !w.opts.Hidden && strings.HasPrefix(name, ".")
}

// Selected applies the include and exclude globs to a file. Globs are matched
// against the slash form of the path, of the path relative to its walk root, and
// against the base name. Include wins: when include globs are set, exclude globs
// are not consulted.
func (w *Walker) Selected(path, rel string) bool {
	candidates := []string{
		filepath.ToSlash(filepath.Clean(rel)),
		filepath.ToSlash(filepath.Clean(path)),
		filepath.Base(path),
	}

	if len(w.opts.Include) > 0 {
		return matchesAny(w.opts.Include, candidates)
	}
	return !matchesAny(w.opts.Exclude, candidates)
}

func matchesAny(patterns []string, paths []string) bool {
	for _, pattern := range patterns {
		for _, p := range paths {
			if ok, err := doublestar.Match(pattern, p); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// ReadPaths reads one path per line, skipping blank lines.
func ReadPaths(r io.Reader) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			paths = append(paths, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Errorf("reading paths: %w", err)
	}
	return paths, nil
}
