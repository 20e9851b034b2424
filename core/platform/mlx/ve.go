package mlx

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/platform/invoke"
)

const veUnassigned = "unassigned"

func (d *Driver) runningVes(ctx context.Context, cb ports.Callback) ([]string, error) {
	lines, err := invoke.CLIGet(ctx, cb, "show running-config interface | inc ve")
	if err != nil {
		return nil, err
	}
	return parseRunningVes(lines), nil
}

// CreateVe creates a ve interface, or deletes it when p.Delete is set.
// Creating an existing ve or deleting a missing one is a no-op.
func (d *Driver) CreateVe(ctx context.Context, cb ports.Callback, p entities.VeParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	ves, err := d.runningVes(ctx, cb)
	if err != nil {
		return err
	}
	name := strconv.Itoa(p.Ve)
	exists := false
	for _, ve := range ves {
		if ve == name {
			exists = true
			break
		}
	}
	switch {
	case p.Delete && exists:
		return invoke.CLISet(ctx, cb, "no interface ve "+name)
	case !p.Delete && !exists:
		return invoke.CLISet(ctx, cb, "interface ve "+name)
	}
	d.log.Debug("ve already in requested state", zap.Int("ve", p.Ve), zap.Bool("delete", p.Delete))
	return nil
}

// VeInterfaces lists the configured ve interfaces with state and address.
func (d *Driver) VeInterfaces(ctx context.Context, cb ports.Callback) ([]entities.VeInterface, error) {
	ves, err := d.runningVes(ctx, cb)
	if err != nil {
		return nil, err
	}
	lines, err := invoke.CLIGet(ctx, cb, "show ip interface | inc ve")
	if err != nil {
		return nil, err
	}
	states := parseIPInterfaceVes(lines)

	out := make([]entities.VeInterface, 0, len(ves))
	for _, ve := range ves {
		info := entities.VeInterface{
			Name:       ve,
			IfName:     "Ve " + ve,
			State:      "down",
			ProtoState: "down",
			IPAddress:  veUnassigned,
		}
		if st, ok := states[ve]; ok {
			info.State, info.ProtoState = st[0], st[1]
			detail, err := invoke.CLIGet(ctx, cb, "show ip interface ve "+ve)
			if err != nil {
				return nil, err
			}
			if addr := parseIPv4Address(detail); addr != "" {
				info.IPAddress = addr
			}
		}
		out = append(out, info)
	}
	return out, nil
}

// VlanRouterVe attaches a ve router interface to a VLAN, or detaches it.
func (d *Driver) VlanRouterVe(ctx context.Context, cb ports.Callback, p entities.VlanRouterVeParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	cmd := "router-interface ve " + strconv.Itoa(p.Ve)
	if p.Delete {
		cmd = "no " + cmd
	}
	return invoke.CLISet(ctx, cb, "vlan "+strconv.Itoa(p.VLAN), cmd)
}

// GetVlanRouterVe returns the ve attached to a VLAN; ok is false when none is.
func (d *Driver) GetVlanRouterVe(ctx context.Context, cb ports.Callback, vlan int) (ve int, ok bool, err error) {
	if err := entities.ValidateVLAN(vlan); err != nil {
		return 0, false, err
	}
	lines, err := invoke.CLIGet(ctx, cb, "show vlan "+strconv.Itoa(vlan)+" | inc Ve")
	if err != nil {
		return 0, false, err
	}
	ve, ok = parseRouterVe(lines)
	return ve, ok, nil
}

// VRFAddressFamilies reports the address families enabled on a VRF.
func (d *Driver) VRFAddressFamilies(ctx context.Context, cb ports.Callback, vrf string) (entities.AddressFamilies, error) {
	if vrf == "" {
		return entities.AddressFamilies{}, entities.InvalidParameter("vrf name is required")
	}
	lines, err := invoke.CLIGet(ctx, cb, "show vrf "+vrf)
	if err != nil {
		return entities.AddressFamilies{}, err
	}
	return parseAddressFamilies(lines), nil
}
