/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package defaults

import "time"

// Appliance access.
const (
	// SSHConnectTimeout bounds establishing an ssh session.
	SSHConnectTimeout = 10 * time.Second

	// CommandTimeout bounds a single appliance command, including
	// commands that block while the hive reconfigures.
	CommandTimeout = 2 * time.Minute

	// CommandRate and CommandBurst throttle commands sent to the appliance.
	CommandRate  = 5.0
	CommandBurst = 5

	// Retries and RetryBackoff apply to transport failures only.
	Retries      = 3
	RetryBackoff = 2 * time.Second

	// StateWriteTimeout bounds a shared state write, which issues the
	// change and reads it back.
	StateWriteTimeout = 2 * CommandTimeout
)

// Waiting on the hive.
const (
	// AuditTimeout is how long an expected audit entry may take to appear.
	AuditTimeout = 30 * time.Second

	// RebootTimeout bounds a cell coming back after reboot or wipe.
	RebootTimeout = 30 * time.Minute

	// PollInterval is the delay between status polls.
	PollInterval = 10 * time.Second
)

// Server.
const (
	ServerPort            = 8080
	ServerRateLimit       = 20.0
	ServerRateBurst       = 40
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 2 * time.Minute
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second

	// SnapshotTimeout bounds an on-demand snapshot collection.
	SnapshotTimeout = 90 * time.Second
)

// HistoryLimit is the number of results returned when no limit is given.
const HistoryLimit = 20
