package ports

import (
	"context"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

// InterfaceIndex maps between SNMP ifIndex values and interface keys.
// Both directions return entities.ErrNotFound when there is no match.
type InterfaceIndex interface {
	InterfaceName(ctx context.Context, ifIndex uint32) (entities.InterfaceKey, error)
	InterfaceIndex(ctx context.Context, key entities.InterfaceKey) (uint32, error)
}
