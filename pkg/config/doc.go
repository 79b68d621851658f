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
Package config loads optional run defaults for fnr.

	+--------------+     +---------+     +----------+
	| .fnr.{yaml,  | --> | Parser  | --> | Validate |
	|  yml,hcl,    |     | registry|     |          |
	|  json}       |     +---------+     +----------+

🎯 Purpose:
- Finds a defaults file in the working directory (or takes --config)
- Parses it with the parser registered for its extension
- Rejects unknown keys and invalid values before anything is scanned

🔑 Keys: case, literal, word, hidden, all_files, include, exclude, context,
workers, color, format, journal.

Flags given on the command line always win over the file.
*/
package config
