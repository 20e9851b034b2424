package mlx

import (
	"context"
	"fmt"
	"strconv"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/oidindex"
	"github.com/carlosrabelo/switchkit/core/platform/invoke"
	"github.com/carlosrabelo/switchkit/core/platform/mib"
)

// SNMPInterfaceIndex resolves interfaces through the ifName column. Every
// call queries the device; nothing is cached between calls.
type SNMPInterfaceIndex struct {
	cb   ports.Callback
	oids mib.Table
}

// NewSNMPInterfaceIndex creates a lookup bound to one device callback.
func NewSNMPInterfaceIndex(cb ports.Callback, oids mib.Table) *SNMPInterfaceIndex {
	return &SNMPInterfaceIndex{cb: cb, oids: oids}
}

// InterfaceName returns the key of the interface with the given ifIndex.
func (s *SNMPInterfaceIndex) InterfaceName(ctx context.Context, ifIndex uint32) (entities.InterfaceKey, error) {
	oid, err := s.oids.Cell(mib.IfName, strconv.FormatUint(uint64(ifIndex), 10))
	if err != nil {
		return entities.InterfaceKey{}, err
	}
	name, err := invoke.GetString(ctx, s.cb, oid)
	if err != nil {
		return entities.InterfaceKey{}, fmt.Errorf("ifindex %d: %w", ifIndex, err)
	}
	return entities.ParseInterfaceKey(name)
}

// InterfaceIndex walks ifName for the row naming key.
func (s *SNMPInterfaceIndex) InterfaceIndex(ctx context.Context, key entities.InterfaceKey) (uint32, error) {
	base, err := s.oids.OID(mib.IfName)
	if err != nil {
		return 0, err
	}
	pdus, err := invoke.Walk(ctx, s.cb, base)
	if err != nil {
		return 0, err
	}
	for _, pdu := range pdus {
		raw, err := invoke.BytesValue(pdu)
		if err != nil {
			continue
		}
		got, err := entities.ParseInterfaceKey(string(raw))
		if err != nil || got != key {
			continue
		}
		suffix, ok := oidindex.RowSuffix(pdu.Name, base)
		if !ok {
			continue
		}
		idx, err := oidindex.ParseIndex(suffix)
		if err != nil || len(idx) != 1 {
			continue
		}
		return idx[0], nil
	}
	return 0, fmt.Errorf("interface %s: %w", key, entities.ErrNotFound)
}
