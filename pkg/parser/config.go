/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package parser

import (
	"strconv"
	"strings"
)

// KeyValue is one "key = value" line.
type KeyValue struct {
	Key   string
	Value string
}

// KeyValues keeps the output order of a key/value listing.
type KeyValues []KeyValue

// Get returns the value for key.
func (kv KeyValues) Get(key string) (string, bool) {
	for _, e := range kv {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Map returns the listing as a map. Later duplicates win.
func (kv KeyValues) Map() map[string]string {
	m := make(map[string]string, len(kv))
	for _, e := range kv {
		m[e.Key] = e.Value
	}
	return m
}

// ParseKeyValues parses lines of the form "key <sep> value". Lines
// without sep are rejected.
func ParseKeyValues(command, out, sep string) (KeyValues, error) {
	var kv KeyValues
	for _, line := range SplitLines(out) {
		key, val, ok := strings.Cut(line, sep)
		if !ok {
			return nil, unexpected(command, "expected key %s value, got %q", sep, line)
		}
		kv = append(kv, KeyValue{Key: strings.TrimSpace(key), Value: strings.TrimSpace(val)})
	}
	return kv, nil
}

// Keys printed by cellcfg.
const (
	CellCfgAdminIP = "Admin IP Address"
	CellCfgDataIP  = "Data IP Address"
	CellCfgSPIP    = "Service Node IP Address"
	CellCfgSubnet  = "Subnet"
	CellCfgGateway = "Gateway"
)

// CellCfg is the parsed cellcfg output.
type CellCfg struct {
	AdminIP string `json:"adminIp" yaml:"adminIp"`
	DataIP  string `json:"dataIp" yaml:"dataIp"`
	SPIP    string `json:"spIp" yaml:"spIp"`
	Subnet  string `json:"subnet" yaml:"subnet"`
	Gateway string `json:"gateway" yaml:"gateway"`
}

// ParseCellCfg parses cellcfg and checks every address is valid IPv4.
func ParseCellCfg(out string) (*CellCfg, error) {
	kv, err := ParseKeyValues("cellcfg", out, "=")
	if err != nil {
		return nil, err
	}

	c := &CellCfg{}
	fields := []struct {
		key string
		dst *string
	}{
		{CellCfgAdminIP, &c.AdminIP},
		{CellCfgDataIP, &c.DataIP},
		{CellCfgSPIP, &c.SPIP},
		{CellCfgSubnet, &c.Subnet},
		{CellCfgGateway, &c.Gateway},
	}
	for _, f := range fields {
		v, ok := kv.Get(f.key)
		if !ok {
			return nil, unexpected("cellcfg", "missing %q", f.key)
		}
		if !IsValidIPv4(v) {
			return nil, unexpected("cellcfg", "%s is not an IPv4 address: %q", f.key, v)
		}
		*f.dst = v
	}
	return c, nil
}

// Keys printed by hivecfg.
const (
	HiveCfgNTP               = "NTP Server"
	HiveCfgSMTPServer        = "SMTP Server"
	HiveCfgSMTPPort          = "SMTP Port"
	HiveCfgAuthorizedClients = "Authorized Clients"
	HiveCfgExternalLogger    = "External Logger"
	HiveCfgDNS               = "DNS"
	HiveCfgDomainName        = "Domain Name"
	HiveCfgDNSSearch         = "DNS Search"
	HiveCfgPrimaryDNS        = "Primary DNS Server"
	HiveCfgSecondaryDNS      = "Secondary DNS Server"
)

// HiveCfg is the parsed hivecfg output.
type HiveCfg struct {
	NTPServers        []string `json:"ntpServers" yaml:"ntpServers"`
	SMTPServer        string   `json:"smtpServer" yaml:"smtpServer"`
	SMTPPort          int      `json:"smtpPort" yaml:"smtpPort"`
	AuthorizedClients string   `json:"authorizedClients" yaml:"authorizedClients"`
	ExternalLogger    string   `json:"externalLogger,omitempty" yaml:"externalLogger,omitempty"`
	DNS               bool     `json:"dns" yaml:"dns"`
	DomainName        string   `json:"domainName,omitempty" yaml:"domainName,omitempty"`
	DNSSearch         string   `json:"dnsSearch,omitempty" yaml:"dnsSearch,omitempty"`
	PrimaryDNS        string   `json:"primaryDns,omitempty" yaml:"primaryDns,omitempty"`
	SecondaryDNS      string   `json:"secondaryDns,omitempty" yaml:"secondaryDns,omitempty"`
}

// ParseHiveCfg parses hivecfg. NTP servers may be a comma separated list.
func ParseHiveCfg(out string) (*HiveCfg, error) {
	kv, err := ParseKeyValues("hivecfg", out, "=")
	if err != nil {
		return nil, err
	}
	m := kv.Map()

	ntp, ok := m[HiveCfgNTP]
	if !ok {
		return nil, unexpected("hivecfg", "missing %q", HiveCfgNTP)
	}
	smtp, ok := m[HiveCfgSMTPServer]
	if !ok {
		return nil, unexpected("hivecfg", "missing %q", HiveCfgSMTPServer)
	}

	h := &HiveCfg{
		NTPServers:        splitList(ntp),
		SMTPServer:        smtp,
		AuthorizedClients: m[HiveCfgAuthorizedClients],
		ExternalLogger:    m[HiveCfgExternalLogger],
		DomainName:        m[HiveCfgDomainName],
		DNSSearch:         m[HiveCfgDNSSearch],
		PrimaryDNS:        m[HiveCfgPrimaryDNS],
		SecondaryDNS:      m[HiveCfgSecondaryDNS],
	}

	if p, ok := m[HiveCfgSMTPPort]; ok {
		h.SMTPPort, err = strconv.Atoi(p)
		if err != nil || h.SMTPPort <= 0 || h.SMTPPort > 65535 {
			return nil, unexpected("hivecfg", "invalid SMTP port %q", p)
		}
	}

	switch strings.ToLower(m[HiveCfgDNS]) {
	case "y", "yes", "true":
		h.DNS = true
	case "", "n", "no", "false":
		h.DNS = false
	default:
		return nil, unexpected("hivecfg", "invalid DNS flag %q", m[HiveCfgDNS])
	}

	return h, nil
}

// ParseDDCfg parses the data-doctor cycle listing printed by ddcfg -F.
// Values are seconds; "off" is 0.
func ParseDDCfg(out string) (map[string]int64, error) {
	kv, err := ParseKeyValues("ddcfg", out, "=")
	if err != nil {
		return nil, err
	}
	if len(kv) == 0 {
		return nil, unexpected("ddcfg", "no cycles listed")
	}

	cycles := make(map[string]int64, len(kv))
	for _, e := range kv {
		if strings.ContainsAny(e.Key, " \t") {
			return nil, unexpected("ddcfg", "invalid cycle name %q", e.Key)
		}
		if strings.EqualFold(e.Value, "off") {
			cycles[e.Key] = 0
			continue
		}
		v, err := strconv.ParseInt(e.Value, 10, 64)
		if err != nil || v < 0 {
			return nil, unexpected("ddcfg", "invalid value %q for %s", e.Value, e.Key)
		}
		cycles[e.Key] = v
	}
	return cycles, nil
}

// AlertCfg lists alert e-mail recipients.
type AlertCfg struct {
	To []string `json:"to" yaml:"to"`
	Cc []string `json:"cc" yaml:"cc"`
}

// Has reports whether addr is a recipient in the given field ("to" or "cc").
func (a *AlertCfg) Has(field, addr string) bool {
	list := a.To
	if strings.EqualFold(field, "cc") {
		list = a.Cc
	}
	for _, r := range list {
		if strings.EqualFold(r, addr) {
			return true
		}
	}
	return false
}

// ParseAlertCfg parses "To: a, b" and "Cc: c" lines.
func ParseAlertCfg(out string) (*AlertCfg, error) {
	kv, err := ParseKeyValues("alertcfg", out, ":")
	if err != nil {
		return nil, err
	}

	a := &AlertCfg{}
	var sawTo bool
	for _, e := range kv {
		switch strings.ToLower(e.Key) {
		case "to":
			a.To = splitList(e.Value)
			sawTo = true
		case "cc":
			a.Cc = splitList(e.Value)
		default:
			return nil, unexpected("alertcfg", "unknown field %q", e.Key)
		}
	}
	if !sawTo {
		return nil, unexpected("alertcfg", "missing To line")
	}
	return a, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
