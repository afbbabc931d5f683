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
)

// JobRunner owns the supervised child process. Every signal it sends targets
// the child's whole process group.
type JobRunner interface {
	Start() error
	Pid() int
	Pgid() int
	Stop() error
	Continue() error
	Kill() error
	Signal(sig syscall.Signal) error
}
