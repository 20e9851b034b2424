package slxos

import (
	"context"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
)

// OverlayGateway creates and activates a VXLAN overlay gateway.
func (d *Driver) OverlayGateway(ctx context.Context, cb ports.Callback, p entities.OverlayGatewayParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Type == "" {
		p.Type = entities.GatewayLayer2Extension
	}
	d.log.Debug("configuring overlay gateway", zap.String("name", p.Name), zap.String("type", p.Type))
	return d.edit(ctx, cb, "overlay_gateway_create", p)
}

func (d *Driver) GetOverlayGateway(ctx context.Context, cb ports.Callback) (entities.OverlayGateway, error) {
	raw, err := d.get(ctx, cb, "overlay_gateway_get", nil)
	if err != nil {
		return entities.OverlayGateway{}, err
	}
	return parseOverlayGateway(raw)
}

// EVPNInstance configures the EVPN instance and duplicate MAC detection.
func (d *Driver) EVPNInstance(ctx context.Context, cb ports.Callback, p entities.EVPNInstanceParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return d.edit(ctx, cb, "evpn_instance_create", p)
}

func (d *Driver) GetEVPNInstance(ctx context.Context, cb ports.Callback) (entities.EVPNInstance, error) {
	raw, err := d.get(ctx, cb, "evpn_instance_get", nil)
	if err != nil {
		return entities.EVPNInstance{}, err
	}
	return parseEVPNInstance(raw)
}
