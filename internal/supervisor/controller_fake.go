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

package supervisor

import (
	"sync"

	"github.com/eminwux/toomuch/internal/errdefs"
	"github.com/eminwux/toomuch/internal/termmode"
	"github.com/eminwux/toomuch/pkg/api"
)

// ControllerTest is a test double for SupervisorController.
type ControllerTest struct {
	LastSpec *api.SupervisorSpec

	RunFunc func(spec *api.SupervisorSpec) (api.Outcome, error)
}

func NewSupervisorControllerTest() *ControllerTest {
	return &ControllerTest{
		RunFunc: func(_ *api.SupervisorSpec) (api.Outcome, error) {
			return api.Outcome{Kind: api.OutcomeExited}, nil
		},
	}
}

func (t *ControllerTest) Run(spec *api.SupervisorSpec) (api.Outcome, error) {
	t.LastSpec = spec
	if t.RunFunc != nil {
		return t.RunFunc(spec)
	}
	return api.Outcome{}, errdefs.ErrFuncNotSet
}

// CallLog records calls made on the terminal fakes, in order.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *CallLog) add(name string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

func (l *CallLog) Count(name string) int {
	n := 0
	for _, c := range l.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

// TerminalModeTest is a test double for TerminalMode.
type TerminalModeTest struct {
	Log *CallLog

	CaptureFunc   func() termmode.Snapshot
	SetCookedFunc func() error
	RestoreFunc   func(s termmode.Snapshot) error
	ResetFunc     func() error
}

func (t *TerminalModeTest) Capture() termmode.Snapshot {
	t.Log.add("capture")
	if t.CaptureFunc != nil {
		return t.CaptureFunc()
	}
	return termmode.Snapshot{}
}

func (t *TerminalModeTest) SetCooked() error {
	t.Log.add("cooked")
	if t.SetCookedFunc != nil {
		return t.SetCookedFunc()
	}
	return nil
}

func (t *TerminalModeTest) Restore(s termmode.Snapshot) error {
	t.Log.add("restore")
	if t.RestoreFunc != nil {
		return t.RestoreFunc(s)
	}
	return nil
}

func (t *TerminalModeTest) Reset() error {
	t.Log.add("reset")
	if t.ResetFunc != nil {
		return t.ResetFunc()
	}
	return nil
}

// TerminalOwnerTest is a test double for TerminalOwner. It tracks which
// group currently owns the terminal.
type TerminalOwnerTest struct {
	Log     *CallLog
	SelfPid int

	mu         sync.Mutex
	foreground int
}

func (t *TerminalOwnerTest) Give(pgid int) {
	t.Log.add("give")
	t.mu.Lock()
	defer t.mu.Unlock()
	t.foreground = pgid
}

func (t *TerminalOwnerTest) Reclaim() {
	t.Log.add("reclaim")
	t.mu.Lock()
	defer t.mu.Unlock()
	t.foreground = t.SelfPid
}

func (t *TerminalOwnerTest) Foreground() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.foreground
}

// PrompterTest is a test double for Prompter.
type PrompterTest struct {
	Log *CallLog

	DrawPromptFunc func() error
}

func (t *PrompterTest) DrawPrompt() error {
	t.Log.add("prompt")
	if t.DrawPromptFunc != nil {
		return t.DrawPromptFunc()
	}
	return nil
}

func (t *PrompterTest) DrawResume() error {
	t.Log.add("resume")
	return nil
}

func (t *PrompterTest) DrawKilled() error {
	t.Log.add("killed")
	return nil
}

// ResizeNotifierTest is a test double for ResizeNotifier.
type ResizeNotifierTest struct {
	ConsumeFunc func() bool

	mu      sync.Mutex
	started bool
	stopped bool
}

func (t *ResizeNotifierTest) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = true
}

func (t *ResizeNotifierTest) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *ResizeNotifierTest) Consume() bool {
	if t.ConsumeFunc != nil {
		return t.ConsumeFunc()
	}
	return false
}

func (t *ResizeNotifierTest) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

func (t *ResizeNotifierTest) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
