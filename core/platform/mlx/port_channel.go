package mlx

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/oidindex"
	"github.com/carlosrabelo/switchkit/core/platform/invoke"
	"github.com/carlosrabelo/switchkit/core/platform/mib"
)

// CreatePortChannel creates, deploys and enables a LAG.
func (d *Driver) CreatePortChannel(ctx context.Context, cb ports.Callback, p entities.PortChannelParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	memberType := p.MemberType
	if memberType == "" {
		memberType = entities.InterfaceEthernet
	}
	members := make([]string, len(p.Ports))
	for i, port := range p.Ports {
		members[i] = entities.InterfaceKey{Type: memberType, Name: port}.String()
	}
	list := strings.Join(members, " ")
	cmds := []string{
		fmt.Sprintf("lag %s %s id %d", p.Name, p.Mode, p.Number),
		"ports " + list,
		"primary-port " + p.Ports[0],
		"deploy",
		"enable " + list,
	}
	d.log.Debug("creating port-channel", zap.String("lag", p.Name), zap.Int("id", p.Number), zap.Strings("ports", p.Ports))
	if err := invoke.CLISet(ctx, cb, cmds...); err != nil {
		return fmt.Errorf("create port-channel %s: %w", p.Name, err)
	}
	return nil
}

// RemovePortChannel destroys the LAG row with the given id.
func (d *Driver) RemovePortChannel(ctx context.Context, cb ports.Callback, number int) error {
	if number < entities.MinPortChannel || number > entities.MaxPortChannel {
		return entities.InvalidParameter("port-channel id %d must be between %d and %d",
			number, entities.MinPortChannel, entities.MaxPortChannel)
	}
	name, err := d.LagNameByID(ctx, cb, number)
	if err != nil {
		return fmt.Errorf("remove port-channel %d: %w", number, err)
	}
	idx, err := oidindex.Encode(name)
	if err != nil {
		return err
	}
	base, err := d.oid(mib.FdryLagRowStatus)
	if err != nil {
		return err
	}
	d.log.Debug("removing port-channel", zap.String("lag", name), zap.Int("id", number))
	return invoke.Set(ctx, cb, invoke.Integer(idx.Append(base), mib.RowStatusDestroy))
}

// LagNameByID walks the LAG id column and returns the name of the row
// holding id.
func (d *Driver) LagNameByID(ctx context.Context, cb ports.Callback, id int) (string, error) {
	base, err := d.oid(mib.FdryLagID)
	if err != nil {
		return "", err
	}
	pdus, err := invoke.Walk(ctx, cb, base)
	if err != nil {
		return "", err
	}
	for _, pdu := range pdus {
		v, err := invoke.IntValue(pdu)
		if err != nil || v != int64(id) {
			continue
		}
		suffix, ok := oidindex.RowSuffix(pdu.Name, base)
		if !ok {
			continue
		}
		idx, err := oidindex.ParseIndex(suffix)
		if err != nil {
			return "", err
		}
		return oidindex.DecodeName(idx)
	}
	return "", fmt.Errorf("port-channel id %d: %w", id, entities.ErrNotFound)
}

// PortChannelSummaries scrapes "show lag brief".
func (d *Driver) PortChannelSummaries(ctx context.Context, cb ports.Callback) ([]entities.LagSummary, error) {
	lines, err := invoke.CLIGet(ctx, cb, "show lag brief")
	if err != nil {
		return nil, err
	}
	return parseLagBrief(lines)
}

func (d *Driver) lagCell(column string, index []uint32) (string, error) {
	base, err := d.oid(column)
	if err != nil {
		return "", err
	}
	return oidindex.Index(index).Append(base), nil
}

// PortChannelIfIndex reads the ifIndex of the LAG row.
func (d *Driver) PortChannelIfIndex(ctx context.Context, cb ports.Callback, index []uint32) (uint32, error) {
	oid, err := d.lagCell(mib.FdryLagIfIndex, index)
	if err != nil {
		return 0, err
	}
	v, err := invoke.GetInt(ctx, cb, oid)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// PortChannelID reads the id of the LAG row.
func (d *Driver) PortChannelID(ctx context.Context, cb ports.Callback, index []uint32) (int, error) {
	oid, err := d.lagCell(mib.FdryLagID, index)
	if err != nil {
		return 0, err
	}
	v, err := invoke.GetInt(ctx, cb, oid)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// PortChannelMemberList reads the packed member ifIndex list of the LAG row.
func (d *Driver) PortChannelMemberList(ctx context.Context, cb ports.Callback, index []uint32) ([]byte, error) {
	oid, err := d.lagCell(mib.FdryLagIfList, index)
	if err != nil {
		return nil, err
	}
	return invoke.GetBytes(ctx, cb, oid)
}

// AggregateLACP reads the dot3adAggTable row of the aggregator.
func (d *Driver) AggregateLACP(ctx context.Context, cb ports.Callback, ifIndex uint32) (entities.LacpAggregate, error) {
	row := strconv.FormatUint(uint64(ifIndex), 10)
	getInt := func(column string) (string, error) {
		oid, err := d.oids.Cell(column, row)
		if err != nil {
			return "", err
		}
		v, err := invoke.GetInt(ctx, cb, oid)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(v, 10), nil
	}
	getMAC := func(column string) (string, error) {
		oid, err := d.oids.Cell(column, row)
		if err != nil {
			return "", err
		}
		b, err := invoke.GetBytes(ctx, cb, oid)
		if err != nil {
			return "", err
		}
		return net.HardwareAddr(b).String(), nil
	}

	var agg entities.LacpAggregate
	fields := []struct {
		dst    *string
		column string
		get    func(string) (string, error)
	}{
		{&agg.SystemPriority, mib.Dot3adAggActorSystemPriority, getInt},
		{&agg.ActorSystemID, mib.Dot3adAggActorSystemID, getMAC},
		{&agg.PartnerOperPriority, mib.Dot3adAggPartnerSystemPriority, getInt},
		{&agg.PartnerSystemID, mib.Dot3adAggPartnerSystemID, getMAC},
		{&agg.AdminKey, mib.Dot3adAggActorAdminKey, getInt},
		{&agg.OperKey, mib.Dot3adAggActorOperKey, getInt},
		{&agg.PartnerOperKey, mib.Dot3adAggPartnerOperKey, getInt},
	}
	for _, f := range fields {
		v, err := f.get(f.column)
		if err != nil {
			return entities.LacpAggregate{}, fmt.Errorf("aggregator %d %s: %w", ifIndex, f.column, err)
		}
		*f.dst = v
	}
	return agg, nil
}

// LACPMembers scrapes the per-port LACP state of one LAG.
func (d *Driver) LACPMembers(ctx context.Context, cb ports.Callback, lagName string) (map[string]entities.LacpMemberStatus, error) {
	lines, err := invoke.CLIGet(ctx, cb, "show lacp lag_name "+lagName)
	if err != nil {
		return nil, err
	}
	members, err := parseLacpMembers(lines)
	if err != nil {
		return nil, fmt.Errorf("lag %s: %w", lagName, err)
	}
	return members, nil
}
