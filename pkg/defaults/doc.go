/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package defaults provides centralized configuration constants for cliharness.
//
// This package defines timeout values, retry parameters, and other defaults
// used across the codebase. pkg/config and pkg/server start from these
// values; the config file and environment override them.
//
// # Timeout Categories
//
//   - Appliance access: ssh connect, per-command timeout, throttling, retries
//   - Waiting on the hive: audit entries, reboots, status polling
//   - Server: HTTP server timeouts, rate limiting, on-demand snapshots
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.SnapshotTimeout)
//	defer cancel()
package defaults
