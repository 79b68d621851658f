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

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fnr/cmd/fnr/opts"
	"github.com/walteh/fnr/pkg/log"
	"github.com/walteh/fnr/pkg/operation"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1 // bad arguments, pattern or template, or an I/O failure
	exitWriteFailed = 2 // at least one file could not be written
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], opts.OSStreams())
	stop()
	os.Exit(code)
}

// execute runs the command line and returns the exit code.
func execute(ctx context.Context, args []string, streams opts.Streams) int {
	o := &opts.RootOpts{Streams: streams}

	cmd := newRootCmd(o)
	cmd.SetArgs(args)
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	log.New(streams.Err, zerolog.Nop(), false).Error(err.Error())
	if errors.Is(err, operation.ErrWriteFailed) {
		return exitWriteFailed
	}
	return exitError
}
