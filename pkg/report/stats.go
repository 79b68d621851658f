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
	"fmt"
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/status"
)

// 📈 Stats counts what a run did. Safe for concurrent use.
type Stats struct {
	start time.Time

	FilesScanned     atomic.Int64
	FilesSkipped     atomic.Int64
	FilesWithMatches atomic.Int64
	FilesChanged     atomic.Int64
	FilesFailed      atomic.Int64
	MatchesFound     atomic.Int64
	MatchesAccepted  atomic.Int64

	scanNanos atomic.Int64
}

// NewStats starts the wall clock.
func NewStats() *Stats {
	return &Stats{start: time.Now()}
}

// AddScanTime adds time spent reading and matching one file.
func (s *Stats) AddScanTime(d time.Duration) {
	s.scanNanos.Add(int64(d))
}

// ScanTime is the summed scan time over every worker.
func (s *Stats) ScanTime() time.Duration {
	return time.Duration(s.scanNanos.Load())
}

// Elapsed is the wall time since NewStats.
func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.start)
}

// Record counts the result of one file.
func (s *Stats) Record(r status.Result) {
	if r.Status.Skipped() {
		s.FilesSkipped.Add(1)
		return
	}

	s.FilesScanned.Add(1)
	s.MatchesFound.Add(int64(r.Matches))
	if r.Matches > 0 {
		s.FilesWithMatches.Add(1)
	}

	switch r.Status {
	case status.StatusModified, status.StatusWouldModify:
		s.FilesChanged.Add(1)
		s.MatchesAccepted.Add(int64(r.Accepted))
	case status.StatusFailed:
		s.FilesFailed.Add(1)
	}
}

// Summary prints the closing lines of a run.
func (s *Stats) Summary(w io.Writer, dryRun bool) error {
	if _, err := fmt.Fprintf(w, "All done. Replaced %d of %d matches\n", s.MatchesAccepted.Load(), s.MatchesFound.Load()); err != nil {
		return err
	}
	if failed := s.FilesFailed.Load(); failed > 0 {
		if _, err := fmt.Fprintf(w, "%d files could not be written\n", failed); err != nil {
			return err
		}
	}
	if dryRun {
		if _, err := fmt.Fprintln(w, "Use -w, --write to modify files in place."); err != nil {
			return err
		}
	}
	return nil
}

// Table prints every counter as a table.
func (s *Stats) Table(w io.Writer) error {
	itoa := func(v *atomic.Int64) string { return strconv.FormatInt(v.Load(), 10) }

	data := pterm.TableData{
		{"stat", "value"},
		{"files scanned", itoa(&s.FilesScanned)},
		{"files skipped", itoa(&s.FilesSkipped)},
		{"files with matches", itoa(&s.FilesWithMatches)},
		{"files changed", itoa(&s.FilesChanged)},
		{"files failed", itoa(&s.FilesFailed)},
		{"matches found", itoa(&s.MatchesFound)},
		{"matches accepted", itoa(&s.MatchesAccepted)},
		{"scan time", s.ScanTime().Round(time.Microsecond).String()},
		{"elapsed", s.Elapsed().Round(time.Microsecond).String()},
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Errorf("rendering stats table: %w", err)
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
