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
	"context"
	"log/slog"
	"os/exec"

	"github.com/eminwux/toomuch/pkg/api"
)

type Exec struct {
	ctx    context.Context
	logger *slog.Logger
	spec   *api.SupervisorSpec
	events chan<- Event

	cmd *exec.Cmd
	pid int
}

func NewJobRunnerExec(
	ctx context.Context,
	logger *slog.Logger,
	spec *api.SupervisorSpec,
	evCh chan<- Event,
) JobRunner {
	return &Exec{
		ctx:    ctx,
		logger: logger,
		spec:   spec,
		events: evCh,
	}
}

func (e *Exec) Pid() int { return e.pid }

// Pgid is the child's process group. The child is spawned as a group leader,
// so it equals its pid.
func (e *Exec) Pgid() int { return e.pid }
