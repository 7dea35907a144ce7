/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package simulator

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/stk5800/cliharness/pkg/command"
	"github.com/stk5800/cliharness/pkg/parser"
	"github.com/stk5800/cliharness/pkg/state"
)

var hostnameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.-]*$`)

func (h *Hive) sortedCells() []*cell {
	out := make([]*cell, 0, len(h.cells))
	for _, c := range h.cells {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *cell) int { return a.id - b.id })
	return out
}

func (h *Hive) hiveadm(args []string) reply {
	if len(args) != 1 || args[0] != "-s" {
		return fail("hiveadm: option not supported from the admin shell")
	}
	cells := h.sortedCells()
	var b strings.Builder
	if len(cells) == 1 {
		b.WriteString("There is 1 cell in the hive:\n")
	} else {
		fmt.Fprintf(&b, "There are %d cells in the hive:\n", len(cells))
	}
	for _, c := range cells {
		fmt.Fprintf(&b, "- Cell %d: adminVIP = %s, dataVIP = %s\n", c.id, c.adminIP, c.dataIP)
	}
	return ok("%s", b.String())
}

func (h *Hive) cellcfg(c *cell, args []string) reply {
	if len(args) == 0 {
		return ok("%s = %s\n%s = %s\n%s = %s\n%s = %s\n%s = %s\n",
			parser.CellCfgAdminIP, c.adminIP,
			parser.CellCfgDataIP, c.dataIP,
			parser.CellCfgSPIP, c.spIP,
			parser.CellCfgSubnet, c.subnet,
			parser.CellCfgGateway, c.gateway)
	}
	if args[0] != command.ForceFlag || len(args) != 3 {
		return fail("usage: cellcfg [-F --admin_ip IP | -F --data_ip IP] [-c CELL]")
	}

	ip := args[2]
	if !parser.IsValidIPv4(ip) {
		return fail("Invalid IP address: %s", ip)
	}
	switch args[1] {
	case "--admin_ip":
		c.adminIP = ip
		h.audit(parser.AuditInfo, "CellCfg", fmt.Sprintf("cell %d admin IP set to %s", c.id, ip))
	case "--data_ip":
		c.dataIP = ip
		h.audit(parser.AuditInfo, "CellCfg", fmt.Sprintf("cell %d data IP set to %s", c.id, ip))
	default:
		return fail("cellcfg: unknown option %s", args[1])
	}
	return ok("Configuration updated.\n")
}

func (h *Hive) hivecfg(args []string) reply {
	if len(args) == 0 {
		return ok("%s = %s\n%s = %s\n%s = %d\n%s = all\n%s = n\n",
			parser.HiveCfgNTP, strings.Join(h.ntp, ", "),
			parser.HiveCfgSMTPServer, h.smtp,
			parser.HiveCfgSMTPPort, h.smtpPort,
			parser.HiveCfgAuthorizedClients,
			parser.HiveCfgDNS)
	}
	if args[0] != command.ForceFlag || len(args) != 3 {
		return fail("usage: hivecfg [-F --ntp_server LIST | -F --smtp_port PORT]")
	}

	switch args[1] {
	case "--ntp_server":
		var servers []string
		for _, s := range strings.Split(args[2], ",") {
			s = strings.TrimSpace(s)
			if !hostnameRe.MatchString(s) {
				return fail("Invalid NTP server: %q", s)
			}
			servers = append(servers, s)
		}
		h.ntp = servers
		h.audit(parser.AuditInfo, "HiveCfg", "NTP servers set to "+strings.Join(servers, ","))
	case "--smtp_port":
		p, err := strconv.Atoi(args[2])
		if err != nil || p <= 0 || p > 65535 {
			return fail("Invalid SMTP port: %s", args[2])
		}
		h.smtpPort = p
		h.audit(parser.AuditInfo, "HiveCfg", fmt.Sprintf("SMTP port set to %d", p))
	default:
		return fail("hivecfg: unknown option %s", args[1])
	}
	return ok("Configuration updated.\n")
}

func (h *Hive) ddcfg(args []string) reply {
	if len(args) == 0 || args[0] != command.ForceFlag {
		return fail("ddcfg: interactive mode is not supported, use -F")
	}
	args = args[1:]

	switch {
	case len(args) == 0:
		var b strings.Builder
		for _, c := range state.Cycles() {
			if v := h.cycles[c]; v == 0 {
				fmt.Fprintf(&b, "%s = off\n", c)
			} else {
				fmt.Fprintf(&b, "%s = %d\n", c, v)
			}
		}
		return ok("%s", b.String())
	case len(args) == 1 && args[0] == "default":
		h.cycles = state.Defaults()
		h.audit(parser.AuditInfo, "DataDoctor", "all cycles restored to defaults")
		return ok("All cycles restored to defaults.\n")
	case len(args) == 1 && args[0] == "off":
		for _, c := range state.Cycles() {
			h.cycles[c] = 0
		}
		h.audit(parser.AuditWarning, "DataDoctor", "all cycles turned off")
		return ok("All cycles turned off.\n")
	case len(args) == 2:
		c := state.Cycle(args[0])
		if !c.IsValid() {
			return fail("Unknown cycle: %s", args[0])
		}
		v, err := strconv.ParseInt(args[1], 10, 64)
		if strings.EqualFold(args[1], "off") {
			v, err = 0, nil
		}
		if err != nil || v < 0 {
			return fail("Invalid value for %s: %s", c, args[1])
		}
		h.cycles[c] = v
		h.audit(parser.AuditInfo, "DataDoctor", fmt.Sprintf("%s set to %d", c, v))
		return ok("%s set to %d.\n", c, v)
	default:
		return fail("usage: ddcfg -F [CYCLE VALUE | default | off]")
	}
}

func (h *Hive) alertcfg(args []string) reply {
	if len(args) == 0 {
		return ok("To: %s\nCc: %s\n", strings.Join(h.alertTo, ", "), strings.Join(h.alertCc, ", "))
	}
	if len(args) != 3 || (args[1] != "to" && args[1] != "cc") {
		return fail("usage: alertcfg [add|del] [to|cc] ADDRESS")
	}
	op, field, addr := args[0], args[1], args[2]
	list := &h.alertTo
	if field == "cc" {
		list = &h.alertCc
	}

	switch op {
	case "add":
		if !strings.Contains(addr, "@") || strings.ContainsAny(addr, " ,") {
			return fail("Invalid email address: %s", addr)
		}
		if slices.Contains(*list, addr) {
			return fail("%s is already a recipient", addr)
		}
		*list = append(*list, addr)
		h.audit(parser.AuditInfo, "AlertCfg", fmt.Sprintf("alert recipient %s added to %s list", addr, field))
	case "del":
		i := slices.Index(*list, addr)
		if i < 0 {
			return fail("%s is not a recipient", addr)
		}
		*list = slices.Delete(*list, i, i+1)
		h.audit(parser.AuditInfo, "AlertCfg", fmt.Sprintf("alert recipient %s removed from %s list", addr, field))
	default:
		return fail("alertcfg: unknown operation %s", op)
	}
	return ok("Alert recipients updated.\n")
}

func (h *Hive) findDisk(c *cell, name string) *disk {
	for _, d := range c.disks {
		if d.name == name {
			return d
		}
	}
	return nil
}

func (h *Hive) hwstat(c *cell, args []string) reply {
	if len(args) == 2 && args[0] == "-f" {
		return h.fruDetail(c, args[1])
	}
	if len(args) != 0 {
		return fail("usage: hwstat [-f FRU] [-c CELL]")
	}

	var b strings.Builder
	row := func(name, typ, id, status string) {
		fmt.Fprintf(&b, "%-12s  %-7s  %-44s  %s\n", name, typ, id, status)
	}
	row("Component", "Type", "FRU ID", "Status")
	row(strings.Repeat("-", 12), strings.Repeat("-", 7), strings.Repeat("-", 44), strings.Repeat("-", 8))
	row("SN", string(parser.FruSP), fmt.Sprintf("0518AMR%02dA", c.id), parser.StatusOnline)
	row("SWITCH-1", string(parser.FruSwitch), "0511-SW1-0123", parser.StatusActive)
	row("SWITCH-2", string(parser.FruSwitch), "0511-SW2-0456", parser.StatusStandby)
	for _, n := range c.nodes {
		row(parser.NodeName(n), string(parser.FruNode), fmt.Sprintf("1068FMA%04d", n), parser.StatusOnline)
		for _, d := range c.disks {
			if d.node == n {
				row(d.name, string(parser.FruDisk), d.fruID, diskStatus(d))
			}
		}
	}
	return ok("%s", b.String())
}

func diskStatus(d *disk) string {
	if d.enabled {
		return parser.StatusEnabled
	}
	return parser.StatusDisabled
}

func (h *Hive) fruDetail(c *cell, name string) reply {
	if d := h.findDisk(c, name); d != nil {
		return ok("Component: %s\nType: %s\nFRU ID: %s\nStatus: %s\nNode: %s\nSize: 465.76 GB\n",
			d.name, parser.FruDisk, d.fruID, diskStatus(d), parser.NodeName(d.node))
	}
	for _, n := range c.nodes {
		if parser.NodeName(n) == name {
			return ok("Component: %s\nType: %s\nFRU ID: %s\nStatus: %s\nDisks: %d\n",
				name, parser.FruNode, fmt.Sprintf("1068FMA%04d", n), parser.StatusOnline, len(c.disks)/len(c.nodes))
		}
	}
	return fail("No such component: %s", name)
}

func (h *Hive) hwcfg(c *cell, args []string) reply {
	if len(args) != 3 || args[0] != command.ForceFlag || (args[1] != "-D" && args[1] != "-E") {
		return fail("usage: hwcfg -F [-D|-E] FRU [-c CELL]")
	}
	d := h.findDisk(c, args[2])
	if d == nil {
		return fail("No such disk: %s", args[2])
	}

	enable := args[1] == "-E"
	if d.enabled == enable {
		return ok("%s is already %s.\n", d.name, strings.ToLower(diskStatus(d)))
	}
	d.enabled = enable
	if enable {
		h.audit(parser.AuditInfo, "HwCfg", fmt.Sprintf("disk %s enabled", d.name))
	} else {
		h.audit(parser.AuditWarning, "HwCfg", fmt.Sprintf("disk %s disabled", d.name))
	}
	return ok("%s is now %s.\n", d.name, strings.ToLower(diskStatus(d)))
}

func dfLine(total, used int64) string {
	usage := 0.0
	if total > 0 {
		usage = float64(used) / float64(total) * 100
	}
	return fmt.Sprintf("Total: %d; Avail: %d; Used: %d; Usage: %.1f%%", total, total-used, used, usage)
}

func (h *Hive) df(c *cell, args []string) reply {
	physical := len(args) == 1 && args[0] == "-p"
	if len(args) != 0 && !physical {
		return fail("usage: df [-p] [-c CELL]")
	}

	var b strings.Builder
	b.WriteString("All sizes expressed in 1K blocks\n")
	var total, used int64
	for _, d := range c.disks {
		if physical {
			fmt.Fprintf(&b, "%s: %s\n", d.name, dfLine(DiskKB, d.usedKB))
		}
		if d.enabled {
			total += DiskKB
			used += d.usedKB
		}
	}
	b.WriteString(dfLine(total, used) + "\n")
	return ok("%s", b.String())
}

func (h *Hive) sysstat(c *cell) reply {
	if c.offlinePolls > 0 {
		c.offlinePolls--
		return ok("Cell %d: Offline.\n", c.id)
	}

	var total, used int64
	disks := 0
	for _, d := range c.disks {
		if d.enabled {
			disks++
			total += DiskKB
			used += d.usedKB
		}
	}
	freeTB := float64(total-used) / 1e9
	return ok(`Cell %d: Online. Estimated Free Space: %.2f TB
%d nodes online, %d disks online.
Data VIP %s, Admin VIP %s
Data services Online, Query Engine Status: HAFaultTolerant
Data Integrity check last completed at %s
Data Reliability check last completed at %s
`, c.id, freeTB, len(c.nodes), disks, c.dataIP, c.adminIP,
		h.clock.Now().UTC().Format("Mon Jan _2 15:04:05 MST 2006"),
		h.clock.Now().UTC().Format("Mon Jan _2 15:04:05 MST 2006"))
}

func (h *Hive) perfstats(c *cell, args []string) reply {
	if len(args) != 0 && (len(args) != 2 || args[0] != "-t") {
		return fail("usage: perfstats [-t MINUTES] [-c CELL]")
	}
	minutes := 1
	if len(args) == 2 {
		m, err := strconv.Atoi(args[1])
		if err != nil || m <= 0 {
			return fail("Invalid interval: %s", args[1])
		}
		minutes = m
	}

	var total, used int64
	for _, d := range c.disks {
		if d.enabled {
			total += DiskKB
			used += d.usedKB
		}
	}
	usage := 0.0
	if total > 0 {
		usage = float64(used) / float64(total) * 100
	}
	return ok(`Cell %d Performance Statistics (interval %d min):
Add MD Ops/sec: 0.00
Store Ops/sec: 12.00   Store KB/sec: 1200.50
Retrieve Ops/sec: 3.00   Retrieve KB/sec: 300.00
Query Ops/sec: 1.00
Delete Ops/sec: 0.00
Load 1m: 0.50   Load 5m: 0.40   Load 15m: 0.30
Disk Used: %.2f%%
`, c.id, minutes, usage)
}

func (h *Hive) reboot(c *cell, args []string) reply {
	if len(args) != 1 || args[0] != command.ForceFlag {
		return fail("reboot: confirmation required, use -F")
	}
	c.offlinePolls = h.rebootPolls
	h.audit(parser.AuditWarning, "Reboot", fmt.Sprintf("cell %d reboot requested", c.id))
	return ok("Rebooting cell %d.\n", c.id)
}

func (h *Hive) wipe(c *cell, args []string) reply {
	if len(args) != 1 || args[0] != command.ForceFlag {
		return fail("wipe: confirmation required, use -F")
	}
	for _, d := range c.disks {
		d.usedKB = 0
	}
	h.cycles = state.Defaults()
	c.offlinePolls = h.rebootPolls
	h.audit(parser.AuditSevere, "Wipe", fmt.Sprintf("cell %d wiped", c.id))
	return ok("Wiping cell %d.\n", c.id)
}

func (h *Hive) wc(args []string) reply {
	if len(args) != 2 || args[0] != "-l" || args[1] != h.logPath {
		return reply{stderr: "wc: cannot open file\n", code: 1}
	}
	return ok("%d %s\n", len(h.auditLog), h.logPath)
}

func (h *Hive) tail(args []string) reply {
	if len(args) != 3 || args[0] != "-n" || !strings.HasPrefix(args[1], "+") || args[2] != h.logPath {
		return reply{stderr: "tail: unsupported arguments\n", code: 1}
	}
	from, err := strconv.Atoi(strings.TrimPrefix(args[1], "+"))
	if err != nil || from < 1 {
		return reply{stderr: "tail: invalid line number\n", code: 1}
	}
	if from > len(h.auditLog) {
		return ok("")
	}
	return ok("%s\n", strings.Join(h.auditLog[from-1:], "\n"))
}
