/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cliharness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "admin", cfg.User)
	assert.Equal(t, 22, cfg.SSHPort)
	assert.Equal(t, "/var/adm/messages", cfg.AuditLogPath)
	require.Len(t, cfg.Cells, 1)
	assert.Equal(t, 16, cfg.Cells[0].Nodes)
	assert.Equal(t, 64, cfg.Cells[0].ExpectedDisks())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
adminHost: 10.7.224.41
user: root
sshPort: 2222
logHost: 10.7.224.40
commandTimeout: 90s
rebootTimeout: 45m
allowDestructive: true
cells:
  - id: 0
    nodes: 8
  - id: 5
    adminIP: 10.7.225.41
    dataIP: 10.7.225.42
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.7.224.41", cfg.AdminHost)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, 2222, cfg.SSHPort)
	assert.Equal(t, 90*time.Second, cfg.CommandTimeout.Std())
	assert.Equal(t, 45*time.Minute, cfg.RebootTimeout.Std())
	assert.True(t, cfg.AllowDestructive)
	assert.Equal(t, "10.7.224.40", cfg.AuditHost())

	require.Len(t, cfg.Cells, 2)
	assert.Equal(t, 32, cfg.Cells[0].ExpectedDisks())
	cell, ok := cfg.Cell(5)
	require.True(t, ok)
	assert.Equal(t, "10.7.225.41", cell.AdminIP)
	assert.Equal(t, 16, cell.Nodes)

	_, ok = cfg.Cell(9)
	assert.False(t, ok)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv(EnvAdminHost, "hc-admin")
	t.Setenv(EnvSSHPort, "2200")

	path := writeConfig(t, "adminHost: from-file\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hc-admin", cfg.AdminHost)
	assert.Equal(t, 2200, cfg.SSHPort)
	assert.Equal(t, "hc-admin", cfg.AuditHost())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad duration", "commandTimeout: soon\n"},
		{"duplicate cells", "cells:\n  - id: 1\n  - id: 1\n"},
		{"negative cell", "cells:\n  - id: -1\n"},
		{"no cells", "cells: []\n"},
		{"bad port", "sshPort: 70000\n"},
		{"not yaml", "cells: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.User)
}
