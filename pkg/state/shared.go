/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package state

import (
	"sync"

	"github.com/stk5800/cliharness/pkg/runner"
)

var (
	sharedOnce sync.Once
	sharedDD   *DataDoctor
	sharedCLI  *CLI
)

// Shared returns the process-wide caches. The first call decides the
// runner, host and options; later arguments are ignored.
func Shared(r runner.Runner, host string, opts ...Option) (*DataDoctor, *CLI) {
	sharedOnce.Do(func() {
		sharedDD = NewDataDoctor(r, host, opts...)
		sharedCLI = NewCLI(r, host, opts...)
	})
	return sharedDD, sharedCLI
}
