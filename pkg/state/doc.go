/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package state caches what the harness believes the appliance is
// configured with, so cases can skip writes that would not change
// anything. Every write goes through here: it is serialised, collapsed
// with identical concurrent requests, and read back from the appliance
// before the believed state is updated.
//
// The cache is only a belief. Anything that may change the appliance
// behind the harness's back (a reboot, a wipe, a case that calls the CLI
// directly) must call Invalidate so the next read resyncs.
package state
