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
	"bytes"
	"io/fs"
	"os"

	"golang.org/x/crypto/blake2b"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/edit"
)

// 🔍 Capture reads a file and records its fingerprint. A file holding a NUL byte is
// returned with a FileReadError wrapping ErrBinary.
func Capture(path string) ([]byte, edit.Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, edit.Fingerprint{}, &FileReadError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, edit.Fingerprint{}, &FileReadError{Path: path, Err: errors.Errorf("not a regular file (%s)", info.Mode().Type())}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, edit.Fingerprint{}, &FileReadError{Path: path, Err: err}
	}

	fp := fingerprint(content, info)
	if bytes.IndexByte(content, 0) >= 0 {
		return content, fp, &FileReadError{Path: path, Err: ErrBinary}
	}

	return content, fp, nil
}

// fingerprint combines the file metadata with a blake2b-256 sum of content.
func fingerprint(content []byte, info fs.FileInfo) edit.Fingerprint {
	return edit.Fingerprint{
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		Sum:     blake2b.Sum256(content),
	}
}
