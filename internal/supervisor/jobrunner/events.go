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
	"fmt"
	"log/slog"
	"time"
)

type Event struct {
	Pid      int
	Type     EventType
	ExitCode int
	Err      error
	When     time.Time
}

type EventType int

const (
	EvError EventType = iota // abnormal error
	EvCmdExited
)

func (t EventType) String() string {
	switch t {
	case EvError:
		return "EvError"
	case EvCmdExited:
		return "EvCmdExited"
	default:
		return "Unknown"
	}
}

// helper: non-blocking event send; the channel is buffered and the runner
// sends a single exit event per child.
func trySendEvent(logger *slog.Logger, ch chan<- Event, ev Event) {
	logger.Debug(
		fmt.Sprintf(
			"[jobrunner] send event: pid=%d type=%v code=%d err=%v when=%s",
			ev.Pid,
			ev.Type,
			ev.ExitCode,
			ev.Err,
			ev.When.Format(time.RFC3339Nano),
		),
	)

	select {
	case ch <- ev:
	default:
		logger.Warn("[jobrunner] event channel full, dropping event", "type", ev.Type, "pid", ev.Pid)
	}
}
