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

package api

import (
	"os"
	"time"
)

// ExitCodeTimeout is returned when the user closes the command at the prompt.
const ExitCodeTimeout = 124

type SupervisorController interface {
	Run(spec *SupervisorSpec) (Outcome, error)
}

// SupervisorSpec describes one supervised run.
type SupervisorSpec struct {
	Command     string        `json:"command"`
	CommandArgs []string      `json:"commandArgs"`
	Env         []string      `json:"-"`
	Deadline    time.Duration `json:"deadline"`

	// PollInterval bounds how quickly a child exit or an expired deadline
	// is noticed.
	PollInterval time.Duration `json:"pollInterval"`

	// TerminalFd is the controlling terminal, normally stdin.
	TerminalFd int      `json:"terminalFd"`
	Stdin      *os.File `json:"-"`
	Stdout     *os.File `json:"-"`
	Stderr     *os.File `json:"-"`
}

type OutcomeKind int

const (
	// OutcomeExited: the command finished on its own.
	OutcomeExited OutcomeKind = iota
	// OutcomeClosed: the user chose to close the command at the prompt.
	OutcomeClosed
	// OutcomeInterrupted: the supervisor received a termination signal.
	OutcomeInterrupted
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeExited:
		return "Exited"
	case OutcomeClosed:
		return "Closed"
	case OutcomeInterrupted:
		return "Interrupted"
	default:
		return "Unknown"
	}
}

type Outcome struct {
	Kind     OutcomeKind
	ExitCode int
	Prompted bool
	Signal   os.Signal
}

// State is the suspend/resume state of a supervised run.
type State int

const (
	StateRunning State = iota
	StateAwaitingInput
	StateTerminating
	StateResuming
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateAwaitingInput:
		return "AwaitingInput"
	case StateTerminating:
		return "Terminating"
	case StateResuming:
		return "Resuming"
	default:
		return "Unknown"
	}
}
