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
Package operation wires the fnr pipeline together.

	+--------+    +---------+    +--------+    +------+    +--------+
	|  walk  | -> |  scan   | -> | review | -> | plan | -> | commit |
	| (paths)|    |(workers)|    | (y/n/q)|    |      |    |        |
	+--------+    +---------+    +--------+    +------+    +---+----+
	                                                           |
	                                            report + stats + journal

🎯 Purpose:
- Turns candidate paths into reviewed, planned and committed edits
- Keeps every file in walk order while scanning in parallel
- Counts every outcome and returns ErrWriteFailed when a write failed

🔄 Flow:
1. The walker yields candidate files
2. The scanner reads and matches them on a bounded worker pool
3. The review session (prompt mode only) decides each edit, otherwise all are accepted
4. The planner builds the new content and the writer commits it
5. The reporter prints hunks, the stats print the summary

🔍 Example:

	op, err := operation.NewReplace(operation.Options{
		Pattern:  p,
		Template: tmpl,
		Walker:   w,
		Roots:    []string{"."},
		Output:   os.Stdout,
		Reporter: report.New(report.Options{}),
	})
	err = operation.NewRunner(&logger, false).Run(ctx, op)
*/
package operation
