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

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/edit"
)

var (
	// ErrBinary marks a file holding a NUL byte.
	ErrBinary = errors.Base("binary file")
	// ErrVanished marks a file removed between scan and commit.
	ErrVanished = errors.Base("file vanished since it was scanned")
	// ErrChangedOnDisk marks a file modified by someone else since it was scanned.
	ErrChangedOnDisk = errors.Base("file changed on disk since it was scanned")
)

// 📊 FileStatus is the outcome of processing one file
type FileStatus int

const (
	StatusUnchanged         FileStatus = iota // nothing accepted, or content identical
	StatusModified                            // content written
	StatusWouldModify                         // dry run with accepted edits
	StatusSkippedBinary                       // NUL byte found
	StatusSkippedUnreadable                   // could not be read
	StatusFailed                              // write failed, original untouched
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusWouldModify:
		return "would modify"
	case StatusSkippedBinary:
		return "skipped: binary"
	case StatusSkippedUnreadable:
		return "skipped: unreadable"
	case StatusFailed:
		return "failed"
	default:
		return "unchanged"
	}
}

// Skipped reports whether the file was never scanned for matches.
func (s FileStatus) Skipped() bool {
	return s == StatusSkippedBinary || s == StatusSkippedUnreadable
}

// 📄 Result describes what happened to one file
type Result struct {
	Path     string
	Status   FileStatus
	Matches  int
	Accepted int
	Before   edit.Fingerprint
	After    edit.Fingerprint
	Err      error
}

// FileReadError reports a file skipped at scan time.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// FileWriteError reports a file that could not be committed. The original is untouched.
type FileWriteError struct {
	Path string
	Err  error
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *FileWriteError) Unwrap() error { return e.Err }

// Skip builds the Result of a file that failed to scan.
func Skip(path string, err error) Result {
	st := StatusSkippedUnreadable
	if errors.Is(err, ErrBinary) {
		st = StatusSkippedBinary
	}
	return Result{Path: path, Status: st, Err: err}
}
