/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the command-line interface of cliharness.
//
// # Overview
//
// cliharness drives the administrative CLI of a storage appliance over SSH,
// checks that each command does what it documents, and records the outcome.
// It is meant for appliance QA and for operators who want a repeatable
// health check of a hive.
//
// # Commands
//
// run - Execute acceptance cases:
//
//	cliharness run [--case NAME]... [--allow-destructive] [--history DB]
//	cliharness run --format table --fail-on-error
//	cliharness run --simulate --allow-destructive
//
// Cases run one at a time. A failing case does not stop the run. Destructive
// cases (reboot, wipe) are skipped unless explicitly allowed.
//
// list - Show registered cases:
//
//	cliharness list
//
// snapshot - Capture configuration and health:
//
//	cliharness snapshot --output snapshot.yaml
//	cliharness snapshot -o cm://storage/hive-snapshot
//
// validate - Check a snapshot against expectations:
//
//	cliharness validate --expectations hive.yaml --snapshot snapshot.yaml
//	cliharness validate -e hive.yaml --fail-on-error
//
// state - Inspect or change the data doctor cycles:
//
//	cliharness state show
//	cliharness state set scan_frags 7200
//	cliharness state default
//	cliharness state off
//
// history - Show recorded results and flaky cases:
//
//	cliharness history --db cliharness.db --case ntp
//
// serve - Expose reports and state over HTTP:
//
//	cliharness serve --port 8080 --history cliharness.db --interval 1h
//
// # Global Flags
//
//	--config, -c   Harness config file (YAML), also CLIHARNESS_CONFIG
//	--debug        Enable debug logging
//	--log-json     Output logs in JSON format
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Environment Variables
//
//	LOG_LEVEL               Set logging verbosity (debug, info, warn, error)
//	CLIHARNESS_ADMIN_HOST   Admin host of the hive
//	CLIHARNESS_USER         SSH user
//	CLIHARNESS_SSH_KEY      SSH identity file
//	CLIHARNESS_SSH_PORT     SSH port
//	CLIHARNESS_LOG_HOST     Host carrying the audit log
//	CLIHARNESS_KUBECONFIG   Kubeconfig used for cm:// output
//	PORT                    Port for serve
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, execution failure, --fail-on-error)
//	2  Context canceled or timeout
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/stk5800/cliharness/pkg/cli.version=1.0.0'"
package cli
