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

// Config is the effective configuration, as printed by "toomuch config".
type Config struct {
	ConfigFile   string `json:"configFile"   yaml:"configFile"`
	LogFile      string `json:"logFile"      yaml:"logFile"`
	LogLevel     string `json:"logLevel"     yaml:"logLevel"`
	PollInterval string `json:"pollInterval" yaml:"pollInterval"`
}
