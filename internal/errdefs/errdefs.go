// Copyright 2025 Emiliano Spinella (eminwux)
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
//
// SPDX-License-Identifier: Apache-2.0

package errdefs

import "errors"

var (
	ErrFuncNotSet       = errors.New("function not set")
	ErrContextDone      = errors.New("context has been cancelled")
	ErrConfig           = errors.New("config error")
	ErrLoggerNotFound   = errors.New("logger not found in context")
	ErrInvalidArgument  = errors.New("invalid positional argument")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrSpecCmdMissing   = errors.New("spec is missing Cmd")
	ErrNoSpecDefined    = errors.New("no spec provided")
	ErrStartCmd         = errors.New("could not start cmd")
	ErrCmdNotFound      = errors.New("command not found")
	ErrCmdNotExecutable = errors.New("command not executable")
	ErrChildNotStarted  = errors.New("child process not started")
	ErrNotATerminal     = errors.New("file descriptor is not a terminal")
	ErrSignalReceived   = errors.New("termination signal received")
	ErrOutputFormat     = errors.New("unknown output format")
)
