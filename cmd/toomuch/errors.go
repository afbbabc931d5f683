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

package main

import (
	"errors"

	"github.com/eminwux/toomuch/internal/errdefs"
)

const (
	ExitCodeUsage         = 125
	ExitCodeNotExecutable = 126
	ExitCodeNotFound      = 127
)

// ExitError carries the process exit code up to main. Err may be nil when the
// code is all there is to report, e.g. a child that exited non-zero.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func exitCodeFor(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, errdefs.ErrCmdNotFound):
		return ExitCodeNotFound
	case errors.Is(err, errdefs.ErrCmdNotExecutable):
		return ExitCodeNotExecutable
	default:
		// usage, duration, config and any other failure of toomuch itself
		return ExitCodeUsage
	}
}
