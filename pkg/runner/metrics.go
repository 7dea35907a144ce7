/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cliharness_command_duration_seconds",
			Help:    "Time taken by a CLI command including transport",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"command"},
	)

	commandTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cliharness_command_total",
			Help: "Total number of CLI commands issued",
		},
		[]string{"status"}, // ok, exit_nonzero, transport_error
	)

	commandRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cliharness_command_retries_total",
			Help: "Total number of command retries after transport failures",
		},
	)
)
