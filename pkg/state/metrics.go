/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultIssued  = "issued"
	resultSkipped = "skipped"
	resultFailed  = "failed"
)

var stateWrites = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cliharness_state_writes_total",
		Help: "Configuration writes requested through the state cache",
	},
	[]string{"kind", "result"},
)
