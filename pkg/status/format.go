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

package status

import (
	"fmt"
)

// FileFormatter turns results into one-line messages
type FileFormatter interface {
	// FormatResult formats the outcome of one file
	FormatResult(r Result) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

var _ FileFormatter = (*DefaultFileFormatter)(nil)

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatResult formats a file outcome with emojis
func (f *DefaultFileFormatter) FormatResult(r Result) string {
	switch r.Status {
	case StatusModified:
		return fmt.Sprintf("📝 Modified %s (%d of %d replaced)", r.Path, r.Accepted, r.Matches)
	case StatusWouldModify:
		return fmt.Sprintf("👀 Would modify %s (%d of %d replaced)", r.Path, r.Accepted, r.Matches)
	case StatusSkippedBinary:
		return fmt.Sprintf("⏭️  Skipped %s: binary", r.Path)
	case StatusSkippedUnreadable:
		return fmt.Sprintf("⏭️  Skipped %s: unreadable", r.Path)
	case StatusFailed:
		if r.Err != nil {
			return fmt.Sprintf("❌ Failed %s: %v", r.Path, r.Err)
		}
		return fmt.Sprintf("❌ Failed %s", r.Path)
	default:
		return fmt.Sprintf("👍 Unchanged %s", r.Path)
	}
}
