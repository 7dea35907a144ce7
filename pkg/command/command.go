/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package command builds appliance CLI command lines. All command
// vocabulary lives here so a CLI syntax change is a one-package edit.
package command

import (
	"strconv"
	"strings"
)

// CLI command names.
const (
	AlertCfg  = "alertcfg"
	CellCfg   = "cellcfg"
	DDCfg     = "ddcfg"
	DF        = "df"
	HiveAdm   = "hiveadm"
	HiveCfg   = "hivecfg"
	HwCfg     = "hwcfg"
	HwStat    = "hwstat"
	PerfStats = "perfstats"
	Reboot    = "reboot"
	SysStat   = "sysstat"
	Version   = "version"
	Wipe      = "wipe"
)

// ForceFlag suppresses the interactive confirmation prompt.
const ForceFlag = "-F"

// Build joins name and args, quoting args that need it.
func Build(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		parts = append(parts, Quote(a))
	}
	return strings.Join(parts, " ")
}

// Quote single-quotes s when it contains characters the remote shell would
// interpret.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>()*?[]{}!#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Cell appends "-c <cell>" when the hive has more than one cell.
func Cell(cmd string, cell int, multiCell bool) string {
	if !multiCell {
		return cmd
	}
	return cmd + " -c " + strconv.Itoa(cell)
}

// DDCfgList lists all data-doctor cycles.
func DDCfgList() string {
	return Build(DDCfg, ForceFlag)
}

// DDCfgSet sets one cycle to seconds.
func DDCfgSet(cycle string, seconds int64) string {
	return Build(DDCfg, ForceFlag, cycle, strconv.FormatInt(seconds, 10))
}

// DDCfgDefault restores every cycle to its default.
func DDCfgDefault() string {
	return Build(DDCfg, ForceFlag, "default")
}

// DDCfgOff turns every cycle off.
func DDCfgOff() string {
	return Build(DDCfg, ForceFlag, "off")
}

// CellCfgShow prints cell network configuration.
func CellCfgShow(cell int, multiCell bool) string {
	return Cell(CellCfg, cell, multiCell)
}

// CellCfgSetAdminIP changes the admin VIP.
func CellCfgSetAdminIP(cell int, multiCell bool, ip string) string {
	return Cell(Build(CellCfg, ForceFlag, "--admin_ip", ip), cell, multiCell)
}

// CellCfgSetDataIP changes the data VIP.
func CellCfgSetDataIP(cell int, multiCell bool, ip string) string {
	return Cell(Build(CellCfg, ForceFlag, "--data_ip", ip), cell, multiCell)
}

// HiveCfgShow prints hive-wide configuration.
func HiveCfgShow() string {
	return HiveCfg
}

// HiveCfgSetNTP sets the NTP server list.
func HiveCfgSetNTP(servers []string) string {
	return Build(HiveCfg, ForceFlag, "--ntp_server", strings.Join(servers, ","))
}

// HiveCfgSetSMTPPort sets the SMTP port.
func HiveCfgSetSMTPPort(port int) string {
	return Build(HiveCfg, ForceFlag, "--smtp_port", strconv.Itoa(port))
}

// AlertCfgShow lists alert recipients.
func AlertCfgShow() string {
	return AlertCfg
}

// AlertCfgAdd adds addr to field ("to" or "cc").
func AlertCfgAdd(field, addr string) string {
	return Build(AlertCfg, "add", field, addr)
}

// AlertCfgDel removes addr from field.
func AlertCfgDel(field, addr string) string {
	return Build(AlertCfg, "del", field, addr)
}

// HiveAdmStatus lists the cells of the hive.
func HiveAdmStatus() string {
	return Build(HiveAdm, "-s")
}

// HwStatShow prints the component table.
func HwStatShow(cell int, multiCell bool) string {
	return Cell(HwStat, cell, multiCell)
}

// HwStatFru prints detail for one FRU.
func HwStatFru(cell int, multiCell bool, fru string) string {
	return Cell(Build(HwStat, "-f", fru), cell, multiCell)
}

// HwCfgDisable disables a disk or node.
func HwCfgDisable(cell int, multiCell bool, fru string) string {
	return Cell(Build(HwCfg, ForceFlag, "-D", fru), cell, multiCell)
}

// HwCfgEnable enables a disk or node.
func HwCfgEnable(cell int, multiCell bool, fru string) string {
	return Cell(Build(HwCfg, ForceFlag, "-E", fru), cell, multiCell)
}

// DFShow prints cell capacity.
func DFShow(cell int, multiCell bool) string {
	return Cell(DF, cell, multiCell)
}

// DFPhysical prints per-disk capacity.
func DFPhysical(cell int, multiCell bool) string {
	return Cell(Build(DF, "-p"), cell, multiCell)
}

// SysStatShow prints cell status.
func SysStatShow(cell int, multiCell bool) string {
	return Cell(SysStat, cell, multiCell)
}

// PerfStatsSample prints one sample over the given number of minutes.
func PerfStatsSample(cell int, multiCell bool, minutes int) string {
	return Cell(Build(PerfStats, "-t", strconv.Itoa(minutes)), cell, multiCell)
}

// RebootCell reboots a cell without prompting.
func RebootCell(cell int, multiCell bool) string {
	return Cell(Build(Reboot, ForceFlag), cell, multiCell)
}

// WipeCell erases all data on a cell without prompting.
func WipeCell(cell int, multiCell bool) string {
	return Cell(Build(Wipe, ForceFlag), cell, multiCell)
}

// VersionShow prints the release.
func VersionShow() string {
	return Version
}

// AuditLineCount counts lines in the audit log.
func AuditLineCount(path string) string {
	return Build("wc", "-l", path)
}

// AuditSince prints audit log lines after line n (1-based, exclusive).
func AuditSince(path string, n int) string {
	return Build("tail", "-n", "+"+strconv.Itoa(n+1), path)
}
