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

package text

import (
	"bytes"
	"regexp"
)

// 🔌 Matcher is the search capability a Pattern is built on.
//
// FindAll returns the match locations in text, left to right. Each location has
// 2*(NumGroups()+1) entries: the start/end pair of the whole match followed by one
// pair per capture group, with -1 for a group that did not participate.
type Matcher interface {
	FindAll(text []byte) [][]int
	NumGroups() int
	// GroupNames has NumGroups()+1 entries; unnamed groups are "".
	GroupNames() []string
}

// literalMatcher finds exact, case-sensitive occurrences of a byte string.
type literalMatcher struct {
	needle []byte
}

var _ Matcher = (*literalMatcher)(nil)

func (m *literalMatcher) FindAll(text []byte) [][]int {
	if len(m.needle) == 0 {
		return nil
	}

	var locs [][]int
	for at := 0; at < len(text); {
		i := bytes.Index(text[at:], m.needle)
		if i < 0 {
			break
		}
		start := at + i
		end := start + len(m.needle)
		locs = append(locs, []int{start, end})
		at = end
	}
	return locs
}

func (m *literalMatcher) NumGroups() int { return 0 }

func (m *literalMatcher) GroupNames() []string { return []string{""} }

// regexMatcher adapts a compiled regexp.
type regexMatcher struct {
	re *regexp.Regexp
}

var _ Matcher = (*regexMatcher)(nil)

func (m *regexMatcher) FindAll(text []byte) [][]int {
	return m.re.FindAllSubmatchIndex(text, -1)
}

func (m *regexMatcher) NumGroups() int { return m.re.NumSubexp() }

func (m *regexMatcher) GroupNames() []string { return m.re.SubexpNames() }
