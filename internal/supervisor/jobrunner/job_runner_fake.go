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

package jobrunner

import (
	"syscall"

	"github.com/eminwux/toomuch/internal/errdefs"
)

// Test is a test double for JobRunner. Behavior is overridden with function
// fields; signals sent are recorded for assertions.
type Test struct {
	PidValue int

	// Signals records every signal sent through Stop, Continue, Kill and Signal, in order.
	Signals []syscall.Signal

	StartFunc  func() error
	SignalFunc func(sig syscall.Signal) error
}

func (t *Test) Start() error {
	if t.StartFunc != nil {
		return t.StartFunc()
	}
	return errdefs.ErrFuncNotSet
}

func (t *Test) Pid() int  { return t.PidValue }
func (t *Test) Pgid() int { return t.PidValue }

func (t *Test) Stop() error     { return t.Signal(syscall.SIGSTOP) }
func (t *Test) Continue() error { return t.Signal(syscall.SIGCONT) }
func (t *Test) Kill() error     { return t.Signal(syscall.SIGKILL) }

func (t *Test) Signal(sig syscall.Signal) error {
	t.Signals = append(t.Signals, sig)
	if t.SignalFunc != nil {
		return t.SignalFunc(sig)
	}
	return nil
}
