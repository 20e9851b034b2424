package mib

import (
	"errors"
	"strings"
	"testing"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

func TestDefaultTable(t *testing.T) {
	tbl := Default()
	for _, name := range []string{IfName, IfAlias, IfAdminStatus, FdryLagIfList, FdryLagIfIndex, FdryLagID, FdryLagRowStatus, Dot3adAggActorSystemID} {
		if _, err := tbl.OID(name); err != nil {
			t.Errorf("OID(%s) unexpected error: %v", name, err)
		}
	}
	if got, _ := tbl.OID(FdryLagID); got != fdryLagEntryOID+".12" {
		t.Errorf("FdryLagID = %s, want column 12 of the LAG entry", got)
	}
}

func TestUnknownObject(t *testing.T) {
	if _, err := Default().OID("sysFoo"); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("OID(sysFoo) error = %v, want ErrNotFound", err)
	}
}

func TestOverrides(t *testing.T) {
	tbl, err := New(map[string]string{IfAlias: ".1.3.6.1.2.1.31.1.1.1.99."})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if got, _ := tbl.OID(IfAlias); got != "1.3.6.1.2.1.31.1.1.1.99" {
		t.Errorf("overridden ifAlias = %s", got)
	}
	if got, _ := Default().OID(IfAlias); got != "1.3.6.1.2.1.31.1.1.1.18" {
		t.Errorf("override leaked into the default table: %s", got)
	}
}

func TestOverridesRejected(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		wantInErr string
	}{
		{name: "non numeric", overrides: map[string]string{IfAlias: "ifAlias.1"}, wantInErr: IfAlias},
		{name: "empty oid", overrides: map[string]string{IfName: " . "}, wantInErr: IfName},
		{
			name:      "misspelled column",
			overrides: map[string]string{"fdryLinkAggregationGroupIfLst": "1.3.6.1.4.1.9999.3"},
			wantInErr: "fdryLinkAggregationGroupIfLst",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.overrides)
			if !errors.Is(err, entities.ErrInvalidParameter) {
				t.Fatalf("New() error = %v, want ErrInvalidParameter", err)
			}
			if !strings.Contains(err.Error(), tt.wantInErr) {
				t.Errorf("New() error = %v, want it to name %s", err, tt.wantInErr)
			}
		})
	}
}

func TestCell(t *testing.T) {
	got, err := Default().Cell(IfName, ".65")
	if err != nil || got != "1.3.6.1.2.1.31.1.1.1.1.65" {
		t.Errorf("Cell(ifName, .65) = %s, %v", got, err)
	}
}
