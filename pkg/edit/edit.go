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

package edit

import (
	"encoding/hex"
	"io/fs"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/text"
)

// ✅ Decision is the review outcome of one Edit
type Decision int

const (
	Pending Decision = iota
	Accepted
	Rejected
)

func (d Decision) String() string {
	switch d {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "pending"
	}
}

// ✏️ Edit pairs a Match with its replacement and decision.
type Edit struct {
	Match       text.Match
	Replacement []byte
	Decision    Decision
	Custom      bool // replacement was typed during review
}

// Delta is the length change the edit causes when accepted.
func (e *Edit) Delta() int {
	return len(e.Replacement) - e.Match.Len()
}

// Fingerprint identifies the state of a file at scan time.
type Fingerprint struct {
	Size    int64
	Mode    fs.FileMode
	ModTime time.Time
	Sum     [32]byte
}

// Equal compares every field of the fingerprint.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return f.Size == o.Size && f.Mode == o.Mode && f.ModTime.Equal(o.ModTime) && f.Sum == o.Sum
}

// Checksum returns the hex encoded content sum.
func (f Fingerprint) Checksum() string {
	return hex.EncodeToString(f.Sum[:])
}

// 📦 FileChangeSet holds every Edit planned for one file. It is owned by a single
// goroutine at a time and never shared.
type FileChangeSet struct {
	Path        string
	Original    []byte
	Fingerprint Fingerprint
	Edits       []Edit
}

// Build finds every match of p in content and renders its replacement with t. All
// edits start Pending.
func Build(path string, content []byte, fp Fingerprint, p *text.Pattern, t *text.Template) (*FileChangeSet, error) {
	cs := &FileChangeSet{
		Path:        path,
		Original:    content,
		Fingerprint: fp,
	}

	for m := range p.All(content) {
		repl, err := t.Render(content, m)
		if err != nil {
			return nil, errors.Errorf("rendering replacement in %s at line %d: %w", path, m.StartLine, err)
		}
		cs.Edits = append(cs.Edits, Edit{Match: m, Replacement: repl})
	}

	return cs, nil
}

// AcceptAll marks every edit Accepted. Used when nothing is reviewed.
func (cs *FileChangeSet) AcceptAll() {
	for i := range cs.Edits {
		cs.Edits[i].Decision = Accepted
	}
}

// RejectPending marks every undecided edit Rejected.
func (cs *FileChangeSet) RejectPending() {
	for i := range cs.Edits {
		if cs.Edits[i].Decision == Pending {
			cs.Edits[i].Decision = Rejected
		}
	}
}

// Accepted returns the accepted edits in order.
func (cs *FileChangeSet) Accepted() []Edit {
	var out []Edit
	for _, e := range cs.Edits {
		if e.Decision == Accepted {
			out = append(out, e)
		}
	}
	return out
}

// Counts tallies the edits by decision.
func (cs *FileChangeSet) Counts() (accepted, rejected, pending int) {
	for _, e := range cs.Edits {
		switch e.Decision {
		case Accepted:
			accepted++
		case Rejected:
			rejected++
		default:
			pending++
		}
	}
	return accepted, rejected, pending
}

// Delta is the sum of the accepted edits' length changes.
func (cs *FileChangeSet) Delta() int {
	d := 0
	for i := range cs.Edits {
		if cs.Edits[i].Decision == Accepted {
			d += cs.Edits[i].Delta()
		}
	}
	return d
}

// MatchingLines counts the distinct lines that hold part of a match.
func (cs *FileChangeSet) MatchingLines() int {
	n, last := 0, 0
	for _, e := range cs.Edits {
		from := max(e.Match.StartLine, last+1)
		if e.Match.EndLine >= from {
			n += e.Match.EndLine - from + 1
			last = e.Match.EndLine
		}
	}
	return n
}
