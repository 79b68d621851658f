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

import "fmt"

// ConflictError reports edits that cannot be applied to the original content.
type ConflictError struct {
	Path   string
	Index  int
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("planning %s: edit %d %s", e.Path, e.Index, e.Reason)
}

// Validate checks that the edits are ordered, non-overlapping and in bounds.
func (cs *FileChangeSet) Validate() error {
	prevStart, prevEnd := -1, 0
	for i, e := range cs.Edits {
		m := e.Match
		switch {
		case m.Start < 0 || m.End < m.Start:
			return &ConflictError{Path: cs.Path, Index: i, Reason: fmt.Sprintf("has an invalid span [%d,%d)", m.Start, m.End)}
		case m.End > len(cs.Original):
			return &ConflictError{Path: cs.Path, Index: i, Reason: fmt.Sprintf("ends at %d past the content length %d", m.End, len(cs.Original))}
		case m.Start <= prevStart || m.Start < prevEnd:
			return &ConflictError{Path: cs.Path, Index: i, Reason: fmt.Sprintf("at %d overlaps or precedes the previous edit", m.Start)}
		}
		prevStart, prevEnd = m.Start, m.End
	}
	return nil
}

// 🧩 Plan produces the new content of a file. It makes one forward pass over the
// original, copying the bytes between edits; accepted edits emit their replacement
// and every other edit keeps the original bytes. Offsets always refer to the
// original content.
func Plan(cs *FileChangeSet) ([]byte, error) {
	if err := cs.Validate(); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(cs.Original)+cs.Delta())
	at := 0
	for i := range cs.Edits {
		e := &cs.Edits[i]
		if e.Decision != Accepted {
			continue
		}
		out = append(out, cs.Original[at:e.Match.Start]...)
		out = append(out, e.Replacement...)
		at = e.Match.End
	}
	out = append(out, cs.Original[at:]...)

	return out, nil
}
