/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"fmt"

	cerrors "github.com/stk5800/cliharness/pkg/errors"
	"github.com/stk5800/cliharness/pkg/measurement"
)

// Factory creates collectors with their dependencies.
// This interface enables dependency injection for testing.
type Factory interface {
	CreateSysStatCollector() Collector
	CreateHwStatCollector() Collector
	CreateDFCollector() Collector
	CreateCellCfgCollector() Collector
	CreateHiveCfgCollector() Collector
	CreateDataDoctorCollector() Collector
}

// DefaultFactory creates collectors that run appliance commands.
type DefaultFactory struct {
	Target Target
}

// NewDefaultFactory creates a factory for the given hive.
func NewDefaultFactory(t Target) *DefaultFactory {
	return &DefaultFactory{Target: t}
}

// CreateSysStatCollector creates a sysstat collector.
func (f *DefaultFactory) CreateSysStatCollector() Collector {
	return &SysStatCollector{Target: f.Target}
}

// CreateHwStatCollector creates a hwstat collector.
func (f *DefaultFactory) CreateHwStatCollector() Collector {
	return &HwStatCollector{Target: f.Target}
}

// CreateDFCollector creates a df collector.
func (f *DefaultFactory) CreateDFCollector() Collector {
	return &DFCollector{Target: f.Target}
}

// CreateCellCfgCollector creates a cellcfg collector.
func (f *DefaultFactory) CreateCellCfgCollector() Collector {
	return &CellCfgCollector{Target: f.Target}
}

// CreateHiveCfgCollector creates a hivecfg collector.
func (f *DefaultFactory) CreateHiveCfgCollector() Collector {
	return &HiveCfgCollector{Target: f.Target}
}

// CreateDataDoctorCollector creates a ddcfg collector.
func (f *DefaultFactory) CreateDataDoctorCollector() Collector {
	return &DataDoctorCollector{Target: f.Target}
}

// ForType returns the collector for a measurement type.
func ForType(f Factory, t measurement.Type) (Collector, error) {
	switch t {
	case measurement.TypeSysStat:
		return f.CreateSysStatCollector(), nil
	case measurement.TypeHwStat:
		return f.CreateHwStatCollector(), nil
	case measurement.TypeDF:
		return f.CreateDFCollector(), nil
	case measurement.TypeCellCfg:
		return f.CreateCellCfgCollector(), nil
	case measurement.TypeHiveCfg:
		return f.CreateHiveCfgCollector(), nil
	case measurement.TypeDataDoctor:
		return f.CreateDataDoctorCollector(), nil
	default:
		return nil, cerrors.New(cerrors.ErrCodeInvalidRequest, fmt.Sprintf("unknown measurement type %q", t))
	}
}
