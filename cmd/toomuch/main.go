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
	"context"
	"fmt"
	"os"

	"github.com/eminwux/toomuch/internal/logging"
	"github.com/spf13/cobra"
)

func execRoot(root *cobra.Command) int {
	err := root.Execute()
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(os.Stderr, "toomuch: %s\n", msg)
	}
	return exitCodeFor(err)
}

func runWithFactory(ctx context.Context, factory func() *cobra.Command) int {
	root := factory()
	root.SetContext(ctx)
	return execRoot(root)
}

func main() {
	// stdout and stderr belong to the supervised command; logs go to --log-file only.
	logger := logging.NewNoopLogger()
	ctx := context.WithValue(context.Background(), logging.CtxLogger, logger)

	os.Exit(runWithFactory(ctx, NewToomuchRootCmd))
}
