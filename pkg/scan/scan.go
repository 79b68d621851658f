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

package scan

import (
	"context"
	"iter"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/fnr/pkg/edit"
	"github.com/walteh/fnr/pkg/status"
	"github.com/walteh/fnr/pkg/text"
)

// MaxWorkers caps the default pool size.
const MaxWorkers = 12

// DefaultWorkers is min(NumCPU, MaxWorkers).
func DefaultWorkers() int {
	return min(runtime.NumCPU(), MaxWorkers)
}

// Options configures a Scanner.
type Options struct {
	Workers  int // concurrent scans, DefaultWorkers when zero
	Prefetch int // results kept ahead of the consumer, 2*Workers when zero
}

// 📄 Result is the scan of one candidate file
type Result struct {
	Path      string
	ChangeSet *edit.FileChangeSet // nil when Err is set
	Err       error               // usually a *status.FileReadError
	Elapsed   time.Duration
}

// 🔎 Scanner reads candidate files in parallel and yields them in input order
type Scanner struct {
	pattern  *text.Pattern
	template *text.Template
	workers  int
	prefetch int
}

// 🏭 New creates a new scanner
func New(p *text.Pattern, t *text.Template, opts Options) *Scanner {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	prefetch := opts.Prefetch
	if prefetch <= 0 {
		prefetch = 2 * workers
	}
	return &Scanner{pattern: p, template: t, workers: workers, prefetch: prefetch}
}

// Scan yields one Result per path, in the order paths produces them. At most
// Prefetch results wait ahead of the consumer. Breaking out of the loop stops
// scheduling; scans already running finish and are discarded.
func (s *Scanner) Scan(ctx context.Context, paths iter.Seq[string]) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)

		slots := make(chan chan Result, s.prefetch)
		go func() {
			defer close(slots)
			for path := range paths {
				if gctx.Err() != nil {
					return
				}
				slot := make(chan Result, 1)
				select {
				case slots <- slot:
				case <-gctx.Done():
					return
				}
				g.Go(func() error {
					slot <- s.File(gctx, path)
					return nil
				})
			}
		}()

		for slot := range slots {
			if !yield(<-slot) {
				break
			}
		}

		cancel()
		for range slots {
		}
		_ = g.Wait()
	}
}

// File scans a single path.
func (s *Scanner) File(ctx context.Context, path string) (res Result) {
	start := time.Now()
	res.Path = path
	defer func() { res.Elapsed = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	content, fp, err := status.Capture(path)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Str("path", path).Err(err).Msg("skipping file")
		res.Err = err
		return res
	}

	cs, err := edit.Build(path, content, fp, s.pattern, s.template)
	if err != nil {
		res.Err = err
		return res
	}

	res.ChangeSet = cs
	return res
}
