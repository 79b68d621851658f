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
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/pkg/edit"
)

// 💾 Writer commits planned content back to disk
type Writer struct {
	// beforeRename runs after the temp file is complete; tests use it to inject failures.
	beforeRename func(tmpPath, target string) error
}

// 🏭 NewWriter creates a new writer
func NewWriter() *Writer {
	return &Writer{}
}

// Commit writes content over the file of cs when at least one edit was accepted.
// With dryRun the filesystem is never touched. The file is re-fingerprinted first
// and is never overwritten if it vanished or changed since it was scanned.
func (w *Writer) Commit(ctx context.Context, cs *edit.FileChangeSet, content []byte, dryRun bool) Result {
	logger := zerolog.Ctx(ctx).With().Str("path", cs.Path).Logger()

	accepted, _, _ := cs.Counts()
	res := Result{
		Path:     cs.Path,
		Matches:  len(cs.Edits),
		Accepted: accepted,
		Before:   cs.Fingerprint,
		After:    cs.Fingerprint,
	}

	if accepted == 0 || bytes.Equal(content, cs.Original) {
		res.Status = StatusUnchanged
		return res
	}

	if dryRun {
		res.Status = StatusWouldModify
		return res
	}

	target, err := w.verify(cs)
	if err != nil {
		logger.Warn().Err(err).Msg("refusing to write")
		return w.fail(res, err)
	}

	after, err := w.WriteFileAtomic(target, content, fileMode(cs.Fingerprint.Mode))
	if err != nil {
		logger.Error().Err(err).Msg("write failed")
		return w.fail(res, err)
	}

	logger.Debug().Int("accepted", accepted).Str("checksum", after.Checksum()).Msg("file written")

	res.Status = StatusModified
	res.After = after
	return res
}

func (w *Writer) fail(res Result, err error) Result {
	res.Status = StatusFailed
	res.Err = &FileWriteError{Path: res.Path, Err: err}
	return res
}

// verify re-captures the file and compares it with the scan-time fingerprint. It
// returns the path to write to, following a symlink to its target.
func (w *Writer) verify(cs *edit.FileChangeSet) (string, error) {
	if _, err := os.Lstat(cs.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errors.WithStack(ErrVanished)
		}
		return "", errors.Errorf("checking file: %w", err)
	}

	target, err := filepath.EvalSymlinks(cs.Path)
	if err != nil {
		return "", errors.Errorf("resolving symlinks: %w", err)
	}

	_, fp, err := Capture(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errors.WithStack(ErrVanished)
		}
		if !errors.Is(err, ErrBinary) {
			return "", errors.Errorf("re-reading file: %w", err)
		}
	}
	if !fp.Equal(cs.Fingerprint) {
		return "", errors.WithStack(ErrChangedOnDisk)
	}

	return target, nil
}

// 🔒 WriteFileAtomic replaces path with content through a temp file in the same
// directory: write, fsync, chmod, close, rename. The temp file is removed on any
// failure so the original stays as it was.
func (w *Writer) WriteFileAtomic(path string, content []byte, perm fs.FileMode) (edit.Fingerprint, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".fnr-*")
	if err != nil {
		return edit.Fingerprint{}, errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := f.Name()

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(content); err != nil {
		cleanup()
		return edit.Fingerprint{}, errors.Errorf("writing temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return edit.Fingerprint{}, errors.Errorf("syncing temp file: %w", err)
	}
	if err := f.Chmod(perm); err != nil {
		cleanup()
		return edit.Fingerprint{}, errors.Errorf("setting permissions: %w", err)
	}
	// rename keeps size, mode and mtime, so the temp file's stat is the result's
	info, err := f.Stat()
	if err != nil {
		cleanup()
		return edit.Fingerprint{}, errors.Errorf("checking temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return edit.Fingerprint{}, errors.Errorf("closing temp file: %w", err)
	}

	if w.beforeRename != nil {
		if err := w.beforeRename(tmpPath, path); err != nil {
			_ = os.Remove(tmpPath)
			return edit.Fingerprint{}, err
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return edit.Fingerprint{}, errors.Errorf("renaming temp file: %w", err)
	}

	return fingerprint(content, info), nil
}

// fileMode keeps the permission bits and setuid, setgid and sticky of mode.
func fileMode(mode fs.FileMode) fs.FileMode {
	return mode.Perm() | mode&(fs.ModeSetuid|fs.ModeSetgid|fs.ModeSticky)
}
