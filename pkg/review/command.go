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

package review

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ⌨️ Command is one reviewer answer
type Command rune

const (
	CmdInvalid    Command = 0
	CmdYes        Command = 'y'
	CmdNo         Command = 'n'
	CmdQuit       Command = 'q'
	CmdAll        Command = 'a'
	CmdEdit       Command = 'e'
	CmdDone       Command = 'd'
	CmdHelp       Command = '?'
	CmdEverything Command = '!'
)

const (
	// Prompt is printed before every decision.
	Prompt = "Stage this replacement [y,n,q,a,e,d,?] ? "
	// EditPrompt asks for a custom replacement.
	EditPrompt = "Replace with [^D to skip] "
	// Skipped is printed when the custom replacement is empty.
	Skipped = "... skipped ..."
)

// Legend explains every command.
const Legend = `y - stage this replacement
n - do not stage this replacement
q - quit; do not stage this replacement or any of the remaining ones
a - stage this replacement and all later replacements in this file
d - do not stage this replacement or any of the later replacements in this file
e - manually edit this replacement
! - stage this replacement and every remaining replacement in every file
? - print help
`

// ParseCommand reads one input line. Commands are single, case-insensitive
// characters surrounded by optional whitespace.
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)
	r, size := utf8.DecodeRuneInString(line)
	if size == 0 || size != len(line) {
		return CmdInvalid
	}

	switch c := Command(unicode.ToLower(r)); c {
	case CmdYes, CmdNo, CmdQuit, CmdAll, CmdEdit, CmdDone, CmdHelp, CmdEverything:
		return c
	default:
		return CmdInvalid
	}
}
