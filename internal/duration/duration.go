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

// Package duration parses the deadline argument: a run of decimal digits
// followed by an optional unit ("" or "s", "m", "h", "ms").
package duration

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/eminwux/toomuch/internal/errdefs"
)

//nolint:gochecknoglobals // unit table
var units = map[string]time.Duration{
	"":   time.Second,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"ms": time.Millisecond,
}

func Parse(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", errdefs.ErrInvalidDuration)
	}

	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("%w: %q does not start with a number", errdefs.ErrInvalidDuration, s)
	}

	unit, ok := units[s[i:]]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q in %q", errdefs.ErrInvalidDuration, s[i:], s)
	}

	n, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errdefs.ErrInvalidDuration, err)
	}
	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("%w: %q overflows", errdefs.ErrInvalidDuration, s)
	}

	return time.Duration(n) * unit, nil
}
