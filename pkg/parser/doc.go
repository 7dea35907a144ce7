/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

// Package parser turns appliance CLI output into typed values.
//
// Every parser takes raw stdout and either returns a fully populated value
// or an error wrapping ErrUnexpectedOutput. Parsers never guess: a line
// that looks like data but does not fit the expected shape is an error, so
// a CLI output change fails loudly instead of silently producing zeros.
//
// Supported commands:
//
//	hwstat          ParseHwStat, ParseFruDetail (hwstat -f FRU)
//	sysstat         ParseSysStat, ParseSysStatAll
//	df              ParseDF, ParseDFPhysical (df -p)
//	cellcfg         ParseCellCfg
//	hivecfg         ParseHiveCfg
//	ddcfg           ParseDDCfg
//	alertcfg        ParseAlertCfg
//	hiveadm -s      ParseHiveAdm
//	perfstats       ParsePerfStats
//	version         ParseVersion
//	audit log       ParseAuditLine, ParseAuditLog
package parser
