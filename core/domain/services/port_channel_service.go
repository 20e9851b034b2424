package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/oidindex"
)

// AggregatorStandard is the aggregator type reported for every LAG.
const AggregatorStandard = "standard"

// PortChannelServiceImpl composes the platform port-channel queries into
// LagRecords.
type PortChannelServiceImpl struct {
	cb     ports.Callback
	source ports.PortChannelSource
	index  ports.InterfaceIndex
	log    *zap.Logger
}

// NewPortChannelService creates a new instance of the port-channel service.
func NewPortChannelService(cb ports.Callback, source ports.PortChannelSource, index ports.InterfaceIndex, log *zap.Logger) *PortChannelServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &PortChannelServiceImpl{cb: cb, source: source, index: index, log: log}
}

// ListPortChannels returns one record per LAG in the device summary order.
func (s *PortChannelServiceImpl) ListPortChannels(ctx context.Context) ([]entities.LagRecord, error) {
	summaries, err := s.source.PortChannelSummaries(ctx, s.cb)
	if err != nil {
		return nil, fmt.Errorf("list port-channels: %w", err)
	}

	records := make([]entities.LagRecord, 0, len(summaries))
	for _, summary := range summaries {
		rec, err := s.buildRecord(ctx, summary)
		if err != nil {
			return nil, fmt.Errorf("port-channel %s: %w", summary.Name, err)
		}
		records = append(records, rec)
	}
	s.log.Debug("listed port-channels", zap.Int("count", len(records)))
	return records, nil
}

func (s *PortChannelServiceImpl) buildRecord(ctx context.Context, summary entities.LagSummary) (entities.LagRecord, error) {
	idx, err := oidindex.Encode(summary.Name)
	if err != nil {
		return entities.LagRecord{}, err
	}

	ifIndex, err := s.source.PortChannelIfIndex(ctx, s.cb, idx)
	if err != nil {
		return entities.LagRecord{}, err
	}
	id, err := s.source.PortChannelID(ctx, s.cb, idx)
	if err != nil {
		return entities.LagRecord{}, err
	}
	raw, err := s.source.PortChannelMemberList(ctx, s.cb, idx)
	if err != nil {
		return entities.LagRecord{}, err
	}
	memberIndexes, err := oidindex.DecodeMemberList(raw)
	if err != nil {
		return entities.LagRecord{}, err
	}

	members := make([]entities.LagMember, 0, len(memberIndexes))
	for _, n := range memberIndexes {
		key, err := s.index.InterfaceName(ctx, n)
		if err != nil {
			return entities.LagRecord{}, fmt.Errorf("member ifindex %d: %w", n, err)
		}
		members = append(members, entities.LagMember{Interface: key, ActorPort: n})
	}

	rec := entities.LagRecord{
		Name:           summary.Name,
		Mode:           summary.Mode,
		Deployed:       summary.Deployed,
		PrimaryPort:    summary.PrimaryPort,
		AggregateID:    id,
		IfIndex:        ifIndex,
		AggregatorType: AggregatorStandard,
		Members:        members,
	}

	if summary.Mode != entities.ModeDynamic || !summary.Deployed {
		s.log.Debug("skipping lacp state", zap.String("lag", summary.Name),
			zap.String("mode", string(summary.Mode)), zap.Bool("deployed", summary.Deployed))
		return rec, nil
	}

	if rec.LACP, err = s.source.AggregateLACP(ctx, s.cb, ifIndex); err != nil {
		return entities.LagRecord{}, err
	}
	status, err := s.source.LACPMembers(ctx, s.cb, summary.Name)
	if err != nil {
		return entities.LagRecord{}, err
	}
	for i := range rec.Members {
		st, ok := status[rec.Members[i].Interface.Name]
		if !ok {
			s.log.Debug("member missing from lacp table", zap.String("lag", summary.Name),
				zap.Stringer("member", rec.Members[i].Interface))
			continue
		}
		rec.Members[i].Sync = st.InSync()
		if st.Aggregating() {
			rec.ReadyAgg = 1
		}
		if st.RxCount > 0 {
			rec.RxLinkCount++
		}
		if st.TxCount > 0 {
			rec.TxLinkCount++
		}
	}
	return rec, nil
}
