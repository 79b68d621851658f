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

/*
Package status owns every filesystem read and write of a run.

	+-----------+     +-----------+     +----------+
	|  Capture  | --> |  review   | --> |  Commit  |
	| (scan)    |     |  + plan   |     | (writer) |
	+-----------+     +-----------+     +----------+

🎯 Purpose:
- Reads candidate files and fingerprints them (size, mode, mtime, blake2b-256)
- Detects binary content (any NUL byte)
- Commits planned content atomically, or does nothing on a dry run
- Reports a Result per file

🔄 Commit flow:
 1. Nothing accepted, or content identical: Unchanged, no write
 2. Dry run: WouldModify, no filesystem access at all
 3. Re-capture the file; vanished or changed on disk: Failed, never overwritten
 4. Temp file in the same directory: write, fsync, chmod, close, rename
 5. Any failure removes the temp file and leaves the original untouched

⚡ Errors:
- FileReadError wraps ErrBinary or the underlying read error (file skipped)
- FileWriteError wraps ErrVanished, ErrChangedOnDisk or the I/O error
*/
package status
