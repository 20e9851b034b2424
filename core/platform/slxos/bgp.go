package slxos

import (
	"context"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
)

// BGPLocalASN creates the BGP process if needed and sets its local AS.
func (d *Driver) BGPLocalASN(ctx context.Context, cb ports.Callback, p entities.BGPLocalASNParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	d.log.Debug("setting bgp local as", zap.Uint32("asn", p.ASN))
	return d.edit(ctx, cb, "bgp_local_asn", p)
}

func (d *Driver) GetBGPLocalASN(ctx context.Context, cb ports.Callback) (uint32, error) {
	raw, err := d.get(ctx, cb, "bgp_get", nil)
	if err != nil {
		return 0, err
	}
	return parseBGPLocalASN(raw)
}

// RemoveBGP deletes the whole BGP process.
func (d *Driver) RemoveBGP(ctx context.Context, cb ports.Callback) error {
	return d.edit(ctx, cb, "bgp_remove", nil)
}

// BGPNeighbor adds a default VRF neighbor and activates it in its address
// family, or removes it.
func (d *Driver) BGPNeighbor(ctx context.Context, cb ports.Callback, p entities.BGPNeighborParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	d.log.Debug("configuring bgp neighbor",
		zap.Stringer("address", p.Address),
		zap.Uint32("remote_as", p.RemoteAS),
		zap.Bool("delete", p.Delete))
	return d.edit(ctx, cb, "bgp_neighbor", struct {
		AFI      string
		Address  string
		RemoteAS uint32
		Delete   bool
	}{p.AFI(), p.Address.Unmap().String(), p.RemoteAS, p.Delete})
}

func (d *Driver) GetBGPNeighbors(ctx context.Context, cb ports.Callback) ([]entities.BGPNeighbor, error) {
	raw, err := d.get(ctx, cb, "bgp_get", nil)
	if err != nil {
		return nil, err
	}
	return parseBGPNeighbors(raw)
}

// BGPMaxPaths sets or removes ECMP maximum-paths in the default VRF.
func (d *Driver) BGPMaxPaths(ctx context.Context, cb ports.Callback, p entities.BGPMaxPathsParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.AFI == "" {
		p.AFI = entities.AFIIPv4
	}
	if p.Paths == 0 {
		p.Paths = entities.DefaultBGPMaxPaths
	}
	return d.edit(ctx, cb, "bgp_max_paths", p)
}

func (d *Driver) GetBGPMaxPaths(ctx context.Context, cb ports.Callback, afi string) (int, error) {
	if err := entities.ValidateAFI(afi); err != nil {
		return 0, err
	}
	if afi == "" {
		afi = entities.AFIIPv4
	}
	raw, err := d.get(ctx, cb, "bgp_get", nil)
	if err != nil {
		return 0, err
	}
	return parseBGPMaxPaths(raw, afi)
}
