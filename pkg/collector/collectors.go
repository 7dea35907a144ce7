/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"context"
	"strings"

	"github.com/stk5800/cliharness/pkg/command"
	"github.com/stk5800/cliharness/pkg/measurement"
	"github.com/stk5800/cliharness/pkg/parser"
)

// SysStatCollector reports cell health from sysstat.
type SysStatCollector struct {
	Target
}

func (c *SysStatCollector) Collect(ctx context.Context) (*measurement.Measurement, error) {
	return c.perCell(ctx, measurement.TypeSysStat, command.SysStatShow, func(out string) (map[string]measurement.Reading, error) {
		s, err := parser.ParseSysStat(out)
		if err != nil {
			return nil, err
		}
		return map[string]measurement.Reading{
			"online":             measurement.Bool(s.Online),
			"nodesOnline":        measurement.Int(s.NodesOnline),
			"disksOnline":        measurement.Int(s.DisksOnline),
			"dataVip":            measurement.Str(s.DataVIP),
			"adminVip":           measurement.Str(s.AdminVIP),
			"dataServicesOnline": measurement.Bool(s.DataServicesOnline),
			"queryEngineStatus":  measurement.Str(s.QueryEngineStatus),
			"freeSpace":          measurement.Str(s.FreeSpace),
		}, nil
	})
}

// HwStatCollector reports FRU counts and the status of every FRU.
type HwStatCollector struct {
	Target
}

func (c *HwStatCollector) Collect(ctx context.Context) (*measurement.Measurement, error) {
	return c.perCell(ctx, measurement.TypeHwStat, command.HwStatShow, func(out string) (map[string]measurement.Reading, error) {
		hw, err := parser.ParseHwStat(out)
		if err != nil {
			return nil, err
		}
		data := map[string]measurement.Reading{
			"nodes":       measurement.Int(len(hw.Nodes)),
			"nodesOnline": measurement.Int(hw.NodesOnline()),
			"disks":       measurement.Int(len(hw.Disks)),
			"disksOnline": measurement.Int(hw.DisksOnline()),
			"switches":    measurement.Int(len(hw.Switches)),
		}
		for _, sw := range hw.Switches {
			if sw.Active() {
				data["activeSwitch"] = measurement.Str(sw.Name)
			}
		}
		for _, f := range hw.FRUs {
			data[f.Name] = measurement.Str(f.Status)
		}
		return data, nil
	})
}

// DFCollector reports cell capacity.
type DFCollector struct {
	Target
}

// dfTolerance is the percentage slack allowed when checking df totals.
const dfTolerance = 0.1

func (c *DFCollector) Collect(ctx context.Context) (*measurement.Measurement, error) {
	return c.perCell(ctx, measurement.TypeDF, command.DFShow, func(out string) (map[string]measurement.Reading, error) {
		df, err := parser.ParseDF(out)
		if err != nil {
			return nil, err
		}
		return map[string]measurement.Reading{
			"total":        measurement.Int64(df.Total),
			"avail":        measurement.Int64(df.Avail),
			"used":         measurement.Int64(df.Used),
			"usagePercent": measurement.Float(df.UsagePercent),
			"consistent":   measurement.Bool(df.Consistent(dfTolerance)),
		}, nil
	})
}

// CellCfgCollector reports cell network settings.
type CellCfgCollector struct {
	Target
}

func (c *CellCfgCollector) Collect(ctx context.Context) (*measurement.Measurement, error) {
	return c.perCell(ctx, measurement.TypeCellCfg, command.CellCfgShow, func(out string) (map[string]measurement.Reading, error) {
		cfg, err := parser.ParseCellCfg(out)
		if err != nil {
			return nil, err
		}
		return map[string]measurement.Reading{
			"adminIp": measurement.Str(cfg.AdminIP),
			"dataIp":  measurement.Str(cfg.DataIP),
			"spIp":    measurement.Str(cfg.SPIP),
			"subnet":  measurement.Str(cfg.Subnet),
			"gateway": measurement.Str(cfg.Gateway),
		}, nil
	})
}

// HiveSubtype names the subtype of hive wide measurements.
const HiveSubtype = "hive"

// HiveCfgCollector reports hive wide settings and alert recipients.
type HiveCfgCollector struct {
	Target
}

func (c *HiveCfgCollector) Collect(ctx context.Context) (*measurement.Measurement, error) {
	out, err := c.run(ctx, command.HiveCfgShow())
	if err != nil {
		return nil, err
	}
	cfg, err := parser.ParseHiveCfg(out)
	if err != nil {
		return nil, err
	}

	data := map[string]measurement.Reading{
		"ntpServers":        measurement.Str(strings.Join(cfg.NTPServers, ",")),
		"smtpServer":        measurement.Str(cfg.SMTPServer),
		"smtpPort":          measurement.Int(cfg.SMTPPort),
		"authorizedClients": measurement.Str(cfg.AuthorizedClients),
		"externalLogger":    measurement.Str(cfg.ExternalLogger),
		"dns":               measurement.Bool(cfg.DNS),
		"domainName":        measurement.Str(cfg.DomainName),
		"primaryDns":        measurement.Str(cfg.PrimaryDNS),
		"secondaryDns":      measurement.Str(cfg.SecondaryDNS),
	}

	if out, err = c.run(ctx, command.AlertCfgShow()); err != nil {
		return nil, err
	}
	alerts, err := parser.ParseAlertCfg(out)
	if err != nil {
		return nil, err
	}
	data["alertTo"] = measurement.Str(strings.Join(alerts.To, ","))
	data["alertCc"] = measurement.Str(strings.Join(alerts.Cc, ","))

	m := measurement.NewMeasurement(measurement.TypeHiveCfg, measurement.Subtype{Name: HiveSubtype, Data: data})
	m.Filter(c.Exclude)
	return m, nil
}

// CyclesSubtype names the subtype holding data-doctor cycle values.
const CyclesSubtype = "cycles"

// DataDoctorCollector reports data-doctor cycle periods in seconds.
type DataDoctorCollector struct {
	Target
}

func (c *DataDoctorCollector) Collect(ctx context.Context) (*measurement.Measurement, error) {
	out, err := c.run(ctx, command.DDCfgList())
	if err != nil {
		return nil, err
	}
	cycles, err := parser.ParseDDCfg(out)
	if err != nil {
		return nil, err
	}

	data := make(map[string]measurement.Reading, len(cycles))
	for name, v := range cycles {
		data[name] = measurement.Int64(v)
	}
	m := measurement.NewMeasurement(measurement.TypeDataDoctor, measurement.Subtype{Name: CyclesSubtype, Data: data})
	m.Filter(c.Exclude)
	return m, nil
}
