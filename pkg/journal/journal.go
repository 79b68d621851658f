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

// Package journal records every file fnr rewrites in a SQLite database so a run
// can be audited afterwards.
package journal

import (
	"context"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// 📓 Entry is one rewritten file
type Entry struct {
	ID          int64
	RunID       string
	Time        time.Time
	Path        string
	Pattern     string
	Replacement string
	Matches     int
	Accepted    int
	Before      string // checksum before the write
	After       string // checksum after the write
}

// 📚 Journal appends entries for one run
type Journal struct {
	db    *sql.DB
	runID string
}

// 🏭 Open opens or creates the journal at path. Every Journal value is its own run.
func Open(ctx context.Context, path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Errorf("opening journal %s: %w", path, err)
	}
	// serialise writes
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.Errorf("migrating journal %s: %w", path, err)
	}

	now := time.Now()
	j := &Journal{db: db, runID: runID(path, now)}
	zerolog.Ctx(ctx).Debug().Str("journal", path).Str("run", j.runID).Msg("journal opened")
	return j, nil
}

// runID derives a short identifier for a run.
func runID(path string, t time.Time) string {
	h, err := blake2b.New(8, nil)
	if err != nil {
		panic("blake2b.New failed: " + err.Error())
	}
	h.Write([]byte(path))
	h.Write([]byte(strconv.FormatInt(t.UnixNano(), 10)))
	h.Write([]byte(strconv.Itoa(os.Getpid())))
	return hex.EncodeToString(h.Sum(nil))
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS changes (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run         TEXT NOT NULL,
			time        INTEGER NOT NULL,
			path        TEXT NOT NULL,
			pattern     TEXT NOT NULL,
			replacement TEXT NOT NULL,
			matches     INTEGER NOT NULL,
			accepted    INTEGER NOT NULL,
			before_sum  TEXT NOT NULL,
			after_sum   TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_changes_time ON changes(time);
		CREATE INDEX IF NOT EXISTS idx_changes_path ON changes(path);
	`)
	return err
}

// RunID identifies the entries written through j.
func (j *Journal) RunID() string { return j.runID }

// Record appends e. RunID and Time are filled in when empty.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.RunID == "" {
		e.RunID = j.runID
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO changes (run, time, path, pattern, replacement, matches, accepted, before_sum, after_sum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Time.UnixNano(), e.Path, e.Pattern, e.Replacement,
		e.Matches, e.Accepted, e.Before, e.After,
	)
	if err != nil {
		return errors.Errorf("recording %s: %w", e.Path, err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, run, time, path, pattern, replacement, matches, accepted, before_sum, after_sum
		FROM changes ORDER BY time DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, errors.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var nanos int64
		if err := rows.Scan(&e.ID, &e.RunID, &nanos, &e.Path, &e.Pattern, &e.Replacement,
			&e.Matches, &e.Accepted, &e.Before, &e.After); err != nil {
			return nil, errors.Errorf("reading journal row: %w", err)
		}
		e.Time = time.Unix(0, nanos)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Errorf("reading journal: %w", err)
	}
	return entries, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
