// Package mib holds the symbolic-name to numeric-OID table used by the SNMP
// drivers. The table is plain data: defaults cover IF-MIB, IEEE8023-LAG-MIB
// and the Foundry LAG group table, and config may override any entry.
package mib

import (
	"fmt"
	"strings"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const (
	IfAdminStatus = "ifAdminStatus"
	IfName        = "ifName"
	IfAlias       = "ifAlias"

	Dot3adAggActorSystemPriority   = "dot3adAggActorSystemPriority"
	Dot3adAggActorSystemID         = "dot3adAggActorSystemID"
	Dot3adAggActorAdminKey         = "dot3adAggActorAdminKey"
	Dot3adAggActorOperKey          = "dot3adAggActorOperKey"
	Dot3adAggPartnerSystemID       = "dot3adAggPartnerSystemID"
	Dot3adAggPartnerSystemPriority = "dot3adAggPartnerSystemPriority"
	Dot3adAggPartnerOperKey        = "dot3adAggPartnerOperKey"

	FdryLagIfList    = "fdryLinkAggregationGroupIfList"
	FdryLagRowStatus = "fdryLinkAggregationGroupRowStatus"
	FdryLagID        = "fdryLinkAggregationGroupId"
	FdryLagIfIndex   = "fdryLinkAggregationGroupIfIndex"
)

// RowStatusDestroy is the SNMPv2-TC RowStatus value that deletes a row.
const RowStatusDestroy = 6

const fdryLagEntryOID = "1.3.6.1.4.1.1991.1.1.3.33.1.1.1"

var defaults = map[string]string{
	IfAdminStatus: "1.3.6.1.2.1.2.2.1.7",
	IfName:        "1.3.6.1.2.1.31.1.1.1.1",
	IfAlias:       "1.3.6.1.2.1.31.1.1.1.18",

	Dot3adAggActorSystemPriority:   "1.2.840.10006.300.43.1.1.1.1.3",
	Dot3adAggActorSystemID:         "1.2.840.10006.300.43.1.1.1.1.4",
	Dot3adAggActorAdminKey:         "1.2.840.10006.300.43.1.1.1.1.6",
	Dot3adAggActorOperKey:          "1.2.840.10006.300.43.1.1.1.1.7",
	Dot3adAggPartnerSystemID:       "1.2.840.10006.300.43.1.1.1.1.8",
	Dot3adAggPartnerSystemPriority: "1.2.840.10006.300.43.1.1.1.1.9",
	Dot3adAggPartnerOperKey:        "1.2.840.10006.300.43.1.1.1.1.10",

	FdryLagIfList:    fdryLagEntryOID + ".3",
	FdryLagRowStatus: fdryLagEntryOID + ".11",
	FdryLagID:        fdryLagEntryOID + ".12",
	FdryLagIfIndex:   fdryLagEntryOID + ".13",
}

// Table maps symbolic MIB object names to numeric OIDs.
type Table struct {
	oids map[string]string
}

// Default returns the built-in table.
func Default() Table {
	t, _ := New(nil)
	return t
}

// New returns the built-in table with overrides applied.
func New(overrides map[string]string) (Table, error) {
	oids := make(map[string]string, len(defaults)+len(overrides))
	for k, v := range defaults {
		oids[k] = v
	}
	for k, v := range overrides {
		if _, known := defaults[k]; !known {
			return Table{}, fmt.Errorf("mib override %s is not a known object: %w", k, entities.ErrInvalidParameter)
		}
		normalized := strings.Trim(strings.TrimSpace(v), ".")
		if normalized == "" || strings.Trim(normalized, "0123456789.") != "" {
			return Table{}, fmt.Errorf("mib override %s=%q is not a numeric OID: %w", k, v, entities.ErrInvalidParameter)
		}
		oids[k] = normalized
	}
	return Table{oids: oids}, nil
}

// OID returns the numeric OID for name.
func (t Table) OID(name string) (string, error) {
	oid, ok := t.oids[name]
	if !ok {
		return "", fmt.Errorf("mib object %s: %w", name, entities.ErrNotFound)
	}
	return oid, nil
}

// Cell joins a column OID and a row suffix, e.g. ifName + ".12".
func (t Table) Cell(name string, row string) (string, error) {
	oid, err := t.OID(name)
	if err != nil {
		return "", err
	}
	return oid + "." + strings.TrimPrefix(row, "."), nil
}
