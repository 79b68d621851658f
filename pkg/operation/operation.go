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
	"context"
	"io"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/edit"
	"github.com/walteh/fnr/pkg/journal"
	"github.com/walteh/fnr/pkg/log"
	"github.com/walteh/fnr/pkg/report"
	"github.com/walteh/fnr/pkg/review"
	"github.com/walteh/fnr/pkg/scan"
	"github.com/walteh/fnr/pkg/status"
	"github.com/walteh/fnr/pkg/text"
	"github.com/walteh/fnr/pkg/walk"
)

// ErrWriteFailed is returned when at least one file could not be written.
var ErrWriteFailed = errors.Base("write failed")

// 🎯 Operation is a unit of work run by a Runner
type Operation interface {
	Execute(ctx context.Context) error
}

// 📓 Recorder stores every rewritten file
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Options configures a Replace operation.
type Options struct {
	Pattern  *text.Pattern
	Template *text.Template
	Walker   *walk.Walker
	Roots    []string

	// Write rewrites files in place. Prompt implies Write.
	Write  bool
	Prompt bool

	// Input carries review commands, Output receives the report.
	Input  io.Reader
	Output io.Writer

	Reporter *report.Reporter
	Verbose  bool // log every file outcome, not only failures
	Stats    bool // print the statistics table after the summary
	Workers  int
	Journal  Recorder // optional
}

// 🔁 Replace runs one find-and-replace over every candidate file
type Replace struct {
	opts   Options
	writer *status.Writer
	stats  *report.Stats
}

var _ Operation = (*Replace)(nil)

// 🏭 NewReplace creates a new replace operation
func NewReplace(opts Options) (*Replace, error) {
	if opts.Pattern == nil {
		return nil, errors.Errorf("pattern is required")
	}
	if opts.Template == nil {
		return nil, errors.Errorf("template is required")
	}
	if opts.Walker == nil {
		return nil, errors.Errorf("walker is required")
	}
	if opts.Reporter == nil {
		return nil, errors.Errorf("reporter is required")
	}
	if opts.Output == nil {
		return nil, errors.Errorf("output is required")
	}
	if opts.Prompt && opts.Input == nil {
		return nil, errors.Errorf("prompting needs an input stream")
	}
	if len(opts.Roots) == 0 {
		opts.Roots = []string{"."}
	}

	return &Replace{
		opts:   opts,
		writer: status.NewWriter(),
		stats:  report.NewStats(),
	}, nil
}

// Stats returns the counters of the run.
func (op *Replace) Stats() *report.Stats { return op.stats }

// DryRun reports whether files are left untouched.
func (op *Replace) DryRun() bool { return !op.opts.Write && !op.opts.Prompt }

// Execute scans, reviews, plans, commits and reports every candidate file in
// walk order. It returns ErrWriteFailed when any write failed. Per-file outcomes
// go to the console logger carried by ctx (see log.NewContext), when there is one.
func (op *Replace) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("pattern", op.opts.Pattern.String()).
		Str("replacement", op.opts.Template.String()).
		Bool("write", op.opts.Write).
		Bool("prompt", op.opts.Prompt).
		Msg("starting replace")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var session *review.Session
	if op.opts.Prompt {
		session = review.NewSession(op.opts.Input, op.opts.Output, op.opts.Reporter)
	}

	scanner := scan.New(op.opts.Pattern, op.opts.Template, scan.Options{Workers: op.opts.Workers})
	paths := op.opts.Walker.Paths(ctx, op.opts.Roots)

	for res := range scanner.Scan(ctx, paths) {
		op.stats.AddScanTime(res.Elapsed)

		if res.Err != nil {
			if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
				return errors.Errorf("scanning %s: %w", res.Path, res.Err)
			}
			op.record(ctx, status.Skip(res.Path, res.Err))
			continue
		}

		if err := op.file(ctx, session, res.ChangeSet); err != nil {
			return err
		}

		if session != nil && session.Done() {
			logger.Debug().Msg("review quit, no more files are scanned")
			break
		}
	}

	if op.opts.Reporter.Options().Format != report.FormatCompact {
		if err := op.stats.Summary(op.opts.Output, op.DryRun()); err != nil {
			return errors.Errorf("writing summary: %w", err)
		}
	}
	if op.opts.Stats {
		if err := op.stats.Table(op.opts.Output); err != nil {
			return err
		}
	}

	if failed := op.stats.FilesFailed.Load(); failed > 0 {
		return errors.Errorf("%d files: %w", failed, ErrWriteFailed)
	}

	if console := log.FromContext(ctx); console != nil && !op.DryRun() {
		if written := op.stats.FilesChanged.Load(); written > 0 {
			console.Successf("%d files written", written)
		}
	}
	return nil
}

// file takes one scanned file from review to commit.
func (op *Replace) file(ctx context.Context, session *review.Session, cs *edit.FileChangeSet) error {
	if len(cs.Edits) == 0 {
		op.record(ctx, status.Result{Path: cs.Path, Status: status.StatusUnchanged, Before: cs.Fingerprint, After: cs.Fingerprint})
		return nil
	}

	shown := false
	if session != nil {
		var err error
		shown, err = session.Review(ctx, cs)
		if err != nil {
			return errors.Errorf("reviewing %s: %w", cs.Path, err)
		}
	} else {
		cs.AcceptAll()
	}

	if !shown {
		if err := op.opts.Reporter.Report(op.opts.Output, cs); err != nil {
			return errors.Errorf("reporting %s: %w", cs.Path, err)
		}
	}

	content, err := edit.Plan(cs)
	if err != nil {
		return errors.Errorf("planning %s: %w", cs.Path, err)
	}

	result := op.writer.Commit(ctx, cs, content, op.DryRun())
	op.record(ctx, result)

	if result.Status == status.StatusModified && op.opts.Journal != nil {
		entry := journal.Entry{
			Path:        result.Path,
			Pattern:     op.opts.Pattern.String(),
			Replacement: op.opts.Template.String(),
			Matches:     result.Matches,
			Accepted:    result.Accepted,
			Before:      result.Before.Checksum(),
			After:       result.After.Checksum(),
		}
		if err := op.opts.Journal.Record(ctx, entry); err != nil {
			if console := log.FromContext(ctx); console != nil {
				console.Warningf("journal write failed for %s: %v", result.Path, err)
			} else {
				zerolog.Ctx(ctx).Warn().Err(err).Str("path", result.Path).Msg("journal write failed")
			}
		}
	}

	return nil
}

// record counts a result and logs it.
func (op *Replace) record(ctx context.Context, r status.Result) {
	op.stats.Record(r)

	l := log.FromContext(ctx)
	switch {
	case l == nil:
		zerolog.Ctx(ctx).Debug().Str("path", r.Path).Str("status", r.Status.String()).Msg("file done")
	case r.Status == status.StatusFailed:
		l.Failure(r)
	case op.opts.Verbose:
		l.LogResult(r)
	}
}
