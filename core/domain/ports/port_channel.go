package ports

import (
	"context"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

// PortChannelSource is the platform side of port-channel discovery. Index
// arguments are OID suffixes built from the LAG name.
type PortChannelSource interface {
	PortChannelSummaries(ctx context.Context, cb Callback) ([]entities.LagSummary, error)
	PortChannelIfIndex(ctx context.Context, cb Callback, index []uint32) (uint32, error)
	PortChannelID(ctx context.Context, cb Callback, index []uint32) (int, error)
	PortChannelMemberList(ctx context.Context, cb Callback, index []uint32) ([]byte, error)
	AggregateLACP(ctx context.Context, cb Callback, ifIndex uint32) (entities.LacpAggregate, error)
	LACPMembers(ctx context.Context, cb Callback, lagName string) (map[string]entities.LacpMemberStatus, error)
}

// PortChannelService lists the port-channels of one switch.
type PortChannelService interface {
	ListPortChannels(ctx context.Context) ([]entities.LagRecord, error)
}

// Publisher ships an inventory report to an external system.
type Publisher interface {
	Publish(ctx context.Context, report entities.InventoryReport) error
	Close() error
}
