/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the harness configuration: how to reach the
// appliance, what the cluster is expected to look like and how patient to
// be with it.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stk5800/cliharness/pkg/defaults"
)

// Environment variables that override file values.
const (
	EnvAdminHost = "CLIHARNESS_ADMIN_HOST"
	EnvUser      = "CLIHARNESS_USER"
	EnvSSHKey    = "CLIHARNESS_SSH_KEY"
	EnvSSHPort   = "CLIHARNESS_SSH_PORT"
	EnvLogHost   = "CLIHARNESS_LOG_HOST"
	EnvLogLevel  = "LOG_LEVEL"
)

const (
	defaultNodes        = 16
	defaultDisksPerNode = 4
)

// Duration is a time.Duration that reads Go duration strings ("90s") from YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// CellConfig describes one cell of the hive as the tests expect it.
type CellConfig struct {
	ID           int    `yaml:"id"`
	AdminIP      string `yaml:"adminIP,omitempty"`
	DataIP       string `yaml:"dataIP,omitempty"`
	SPIP         string `yaml:"spIP,omitempty"`
	Nodes        int    `yaml:"nodes,omitempty"`
	DisksPerNode int    `yaml:"disksPerNode,omitempty"`
}

// ExpectedDisks is the number of disks that should be online in a healthy cell.
func (c CellConfig) ExpectedDisks() int {
	return c.Nodes * c.DisksPerNode
}

// Config holds harness configuration.
type Config struct {
	// Appliance access
	AdminHost string `yaml:"adminHost"`
	User      string `yaml:"user"`
	SSHKey    string `yaml:"sshKey,omitempty"`
	SSHPort   int    `yaml:"sshPort"`

	// Host carrying the audit log and its path
	LogHost      string `yaml:"logHost,omitempty"`
	AuditLogPath string `yaml:"auditLogPath"`

	Cells []CellConfig `yaml:"cells"`

	// Timeouts
	ConnectTimeout Duration `yaml:"connectTimeout"`
	CommandTimeout Duration `yaml:"commandTimeout"`
	AuditTimeout   Duration `yaml:"auditTimeout"`
	RebootTimeout  Duration `yaml:"rebootTimeout"`
	PollInterval   Duration `yaml:"pollInterval"`

	// Transport retries and throttling
	Retries      int      `yaml:"retries"`
	RetryBackoff Duration `yaml:"retryBackoff"`
	RateLimit    float64  `yaml:"rateLimit"` // commands per second
	RateBurst    int      `yaml:"rateBurst"`

	// Cases
	AllowDestructive bool   `yaml:"allowDestructive"`
	TestEmail        string `yaml:"testEmail"`

	LogLevel string `yaml:"logLevel"`
}

// DefaultConfig returns sensible defaults with environment overrides applied.
func DefaultConfig() *Config {
	cfg := &Config{
		User:           "admin",
		SSHPort:        22,
		AuditLogPath:   "/var/adm/messages",
		Cells:          []CellConfig{{ID: 0}},
		ConnectTimeout: Duration(defaults.SSHConnectTimeout),
		CommandTimeout: Duration(defaults.CommandTimeout),
		AuditTimeout:   Duration(defaults.AuditTimeout),
		RebootTimeout:  Duration(defaults.RebootTimeout),
		PollInterval:   Duration(defaults.PollInterval),
		Retries:        defaults.Retries,
		RetryBackoff:   Duration(defaults.RetryBackoff),
		RateLimit:      defaults.CommandRate,
		RateBurst:      defaults.CommandBurst,
		TestEmail:      "cliharness@example.com",
		LogLevel:       slog.LevelInfo.String(),
	}
	cfg.applyEnv()
	cfg.applyCellDefaults()
	return cfg
}

// Load reads a YAML config file on top of DefaultConfig. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	// Environment wins over the file
	cfg.applyEnv()
	cfg.applyCellDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}

	slog.Debug("loaded config",
		"path", path,
		"adminHost", cfg.AdminHost,
		"cells", len(cfg.Cells),
		"allowDestructive", cfg.AllowDestructive)

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAdminHost); v != "" {
		c.AdminHost = v
	}
	if v := os.Getenv(EnvUser); v != "" {
		c.User = v
	}
	if v := os.Getenv(EnvSSHKey); v != "" {
		c.SSHKey = v
	}
	if v := os.Getenv(EnvSSHPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SSHPort = port
		}
	}
	if v := os.Getenv(EnvLogHost); v != "" {
		c.LogHost = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) applyCellDefaults() {
	for i := range c.Cells {
		if c.Cells[i].Nodes == 0 {
			c.Cells[i].Nodes = defaultNodes
		}
		if c.Cells[i].DisksPerNode == 0 {
			c.Cells[i].DisksPerNode = defaultDisksPerNode
		}
	}
}

// Validate checks that the config is usable. AdminHost is only required
// once a command is actually sent, so it is not checked here.
func (c *Config) Validate() error {
	if c.User == "" {
		return fmt.Errorf("user is required")
	}
	if c.SSHPort <= 0 || c.SSHPort > 65535 {
		return fmt.Errorf("sshPort %d out of range", c.SSHPort)
	}
	if len(c.Cells) == 0 {
		return fmt.Errorf("at least one cell is required")
	}

	seen := make(map[int]bool, len(c.Cells))
	for _, cell := range c.Cells {
		if cell.ID < 0 {
			return fmt.Errorf("cell id %d must not be negative", cell.ID)
		}
		if seen[cell.ID] {
			return fmt.Errorf("duplicate cell id %d", cell.ID)
		}
		seen[cell.ID] = true
		if cell.Nodes < 0 || cell.DisksPerNode < 0 {
			return fmt.Errorf("cell %d: node and disk counts must not be negative", cell.ID)
		}
	}

	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rateLimit must not be negative")
	}
	if c.CommandTimeout.Std() <= 0 {
		return fmt.Errorf("commandTimeout must be positive")
	}
	if c.PollInterval.Std() <= 0 {
		return fmt.Errorf("pollInterval must be positive")
	}
	return nil
}

// Cell returns the configuration of the given cell.
func (c *Config) Cell(id int) (CellConfig, bool) {
	for _, cell := range c.Cells {
		if cell.ID == id {
			return cell, true
		}
	}
	return CellConfig{}, false
}

// AuditHost is the host whose audit log is checked: LogHost when set,
// otherwise the admin host.
func (c *Config) AuditHost() string {
	if c.LogHost != "" {
		return c.LogHost
	}
	return c.AdminHost
}
