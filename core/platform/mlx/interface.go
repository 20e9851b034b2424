package mlx

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/platform/invoke"
	"github.com/carlosrabelo/switchkit/core/platform/mib"
)

const (
	adminUp   = 1
	adminDown = 2
)

func (d *Driver) cell(ctx context.Context, cb ports.Callback, column string, key entities.InterfaceKey) (string, error) {
	base, err := d.oid(column)
	if err != nil {
		return "", err
	}
	idx, err := d.ifIndex(ctx, cb, key)
	if err != nil {
		return "", err
	}
	return base + "." + strconv.FormatUint(uint64(idx), 10), nil
}

// AdminState sets ifAdminStatus of the interface.
func (d *Driver) AdminState(ctx context.Context, cb ports.Callback, p entities.AdminStateParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	oid, err := d.cell(ctx, cb, mib.IfAdminStatus, p.Interface)
	if err != nil {
		return err
	}
	state := adminDown
	if p.Enabled {
		state = adminUp
	}
	d.log.Debug("setting admin state", zap.Stringer("interface", p.Interface), zap.Bool("enabled", p.Enabled))
	return invoke.Set(ctx, cb, invoke.Integer(oid, state))
}

// GetAdminState reports whether the interface is administratively up.
func (d *Driver) GetAdminState(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (bool, error) {
	oid, err := d.cell(ctx, cb, mib.IfAdminStatus, key)
	if err != nil {
		return false, err
	}
	v, err := invoke.GetInt(ctx, cb, oid)
	if err != nil {
		return false, err
	}
	return v == adminUp, nil
}

// Description sets ifAlias of the interface.
func (d *Driver) Description(ctx context.Context, cb ports.Callback, p entities.DescriptionParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	oid, err := d.cell(ctx, cb, mib.IfAlias, p.Interface)
	if err != nil {
		return err
	}
	return invoke.Set(ctx, cb, invoke.OctetString(oid, p.Description))
}

// GetDescription reads ifAlias of the interface.
func (d *Driver) GetDescription(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (string, error) {
	oid, err := d.cell(ctx, cb, mib.IfAlias, key)
	if err != nil {
		return "", err
	}
	return invoke.GetString(ctx, cb, oid)
}

// AddVLANInterfaces creates VLANs, naming each when a description is given.
func (d *Driver) AddVLANInterfaces(ctx context.Context, cb ports.Callback, p entities.VLANInterfacesParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	cmds := make([]string, 0, len(p.VLANs))
	for _, vlan := range p.VLANs {
		cmd := "vlan " + strconv.Itoa(vlan)
		if p.Description != "" {
			cmd += " name " + p.Description
		}
		cmds = append(cmds, cmd)
	}
	return invoke.CLISet(ctx, cb, cmds...)
}

// AccessVLAN adds or removes the interface as an untagged VLAN member.
func (d *Driver) AccessVLAN(ctx context.Context, cb ports.Callback, p entities.AccessVLANParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	member := "untagged " + p.Interface.String()
	if p.Delete {
		member = "no " + member
	}
	return invoke.CLISet(ctx, cb, "vlan "+strconv.Itoa(p.VLAN), member)
}

// IPAddress adds or removes an IPv4 or IPv6 address.
func (d *Driver) IPAddress(ctx context.Context, cb ports.Callback, p entities.IPAddressParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	cmd := "ip address " + p.Address.String()
	if p.Address.Addr().Is6() {
		cmd = "ipv6 address " + p.Address.String()
	}
	if p.Delete {
		cmd = "no " + cmd
	}
	return invoke.CLISet(ctx, cb, "interface "+p.Interface.String(), cmd)
}

// GetIPAddresses reads the primary IPv4 and global IPv6 addresses.
func (d *Driver) GetIPAddresses(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (entities.IPAddresses, error) {
	if err := key.Validate(); err != nil {
		return entities.IPAddresses{}, err
	}
	v4, err := invoke.CLIGet(ctx, cb, "show ip interface "+key.String()+" | include address")
	if err != nil {
		return entities.IPAddresses{}, err
	}
	v6, err := invoke.CLIGet(ctx, cb, "show ipv6 interface "+key.String())
	if err != nil {
		return entities.IPAddresses{}, err
	}
	ipv6, err := parseIPv6Address(v6)
	if err != nil {
		return entities.IPAddresses{}, fmt.Errorf("interface %s: %w", key, err)
	}
	return entities.IPAddresses{IPv4: parseIPv4Address(v4), IPv6: ipv6}, nil
}

// InterfaceVRF binds the interface to a VRF or removes the binding.
func (d *Driver) InterfaceVRF(ctx context.Context, cb ports.Callback, p entities.InterfaceVRFParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	cmd := "vrf forwarding " + p.VRF
	if p.Delete {
		cmd = "no " + cmd
	}
	return invoke.CLISet(ctx, cb, "interface "+p.Interface.String(), cmd)
}

// GetInterfaceVRF returns the VRF of the interface, empty for the default VRF.
func (d *Driver) GetInterfaceVRF(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	lines, err := invoke.CLIGet(ctx, cb, "show ip interface "+key.String())
	if err != nil {
		return "", err
	}
	return parseInterfaceVRF(lines), nil
}

// MTU returns the interface MTU. MLX has no per-port L2 MTU configuration.
func (d *Driver) MTU(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (int, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	lines, err := invoke.CLIGet(ctx, cb, "show interfaces "+key.String()+" | inc MTU")
	if err != nil {
		return 0, err
	}
	mtu, err := parseMTU(lines)
	if err != nil {
		return 0, fmt.Errorf("interface %s: %w", key, err)
	}
	return mtu, nil
}

// SetMTU is not supported on MLX.
func (d *Driver) SetMTU(context.Context, ports.Callback, entities.InterfaceKey, int) error {
	return fmt.Errorf("per port mtu: %w", entities.ErrUnsupported)
}

// IPv6LinkLocal enables or disables IPv6 on the interface.
func (d *Driver) IPv6LinkLocal(ctx context.Context, cb ports.Callback, p entities.LinkLocalParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	cmd := "ipv6 enable"
	if !p.Enabled {
		cmd = "no " + cmd
	}
	return invoke.CLISet(ctx, cb, "interface "+p.Interface.String(), cmd)
}

// GetIPv6LinkLocal reports whether IPv6 is enabled on the interface.
func (d *Driver) GetIPv6LinkLocal(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (bool, error) {
	if err := key.Validate(); err != nil {
		return false, err
	}
	lines, err := invoke.CLIGet(ctx, cb, "show ipv6 interface "+key.String())
	if err != nil {
		return false, err
	}
	_, ok := ipv6EnabledPattern.Find(lines)
	return ok, nil
}
