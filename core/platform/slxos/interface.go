package slxos

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
)

const (
	lacpActive = "active"
	lacpOn     = "on"
)

func (d *Driver) getInterface(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (*node, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	raw, err := d.get(ctx, cb, "interface_get", struct{ Iface ifaceRef }{refFor(key)})
	if err != nil {
		return nil, err
	}
	return interfaceNode(raw, key)
}

// AdminState shuts or enables the interface.
func (d *Driver) AdminState(ctx context.Context, cb ports.Callback, p entities.AdminStateParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	d.log.Debug("setting admin state", zap.Stringer("interface", p.Interface), zap.Bool("enabled", p.Enabled))
	return d.edit(ctx, cb, "admin_state", struct {
		Iface   ifaceRef
		Enabled bool
	}{refFor(p.Interface), p.Enabled})
}

// GetAdminState reports whether the interface is not shut down.
func (d *Driver) GetAdminState(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (bool, error) {
	iface, err := d.getInterface(ctx, cb, key)
	if err != nil {
		return false, err
	}
	return !iface.has("shutdown"), nil
}

func (d *Driver) Description(ctx context.Context, cb ports.Callback, p entities.DescriptionParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return d.edit(ctx, cb, "description", struct {
		Iface       ifaceRef
		Description string
	}{refFor(p.Interface), p.Description})
}

func (d *Driver) GetDescription(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (string, error) {
	iface, err := d.getInterface(ctx, cb, key)
	if err != nil {
		return "", err
	}
	return iface.text("description"), nil
}

// AddVLANInterfaces creates the VLANs in a single edit.
func (d *Driver) AddVLANInterfaces(ctx context.Context, cb ports.Callback, p entities.VLANInterfacesParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return d.edit(ctx, cb, "vlan_create", p)
}

func (d *Driver) AccessVLAN(ctx context.Context, cb ports.Callback, p entities.AccessVLANParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return d.edit(ctx, cb, "access_vlan", struct {
		Iface  ifaceRef
		VLAN   int
		Delete bool
	}{refFor(p.Interface), p.VLAN, p.Delete})
}

// CreatePortChannel creates the port-channel and joins the member ports.
func (d *Driver) CreatePortChannel(ctx context.Context, cb ports.Callback, p entities.PortChannelParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.MemberType != "" && p.MemberType != entities.InterfaceEthernet {
		return entities.InvalidParameter("%s members are not supported, use ethernet", p.MemberType)
	}
	mode := lacpOn
	if p.Mode == entities.ModeDynamic {
		mode = lacpActive
	}
	d.log.Debug("creating port-channel", zap.Int("id", p.Number), zap.Strings("ports", p.Ports))
	err := d.edit(ctx, cb, "port_channel_create", struct {
		Number   int
		LACPMode string
		Ports    []string
	}{p.Number, mode, p.Ports})
	if err != nil {
		return fmt.Errorf("create port-channel %d: %w", p.Number, err)
	}
	return nil
}

func (d *Driver) RemovePortChannel(ctx context.Context, cb ports.Callback, number int) error {
	if number < entities.MinPortChannel || number > entities.MaxPortChannel {
		return entities.InvalidParameter("port-channel id %d must be between %d and %d",
			number, entities.MinPortChannel, entities.MaxPortChannel)
	}
	return d.edit(ctx, cb, "port_channel_delete", struct{ Number int }{number})
}

// IPAddress adds or removes an IPv4 or IPv6 address.
func (d *Driver) IPAddress(ctx context.Context, cb ports.Callback, p entities.IPAddressParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	tmpl := "ipv4_address"
	if p.Address.Addr().Is6() {
		tmpl = "ipv6_address"
	}
	return d.edit(ctx, cb, tmpl, struct {
		Iface   ifaceRef
		Address string
		Delete  bool
	}{refFor(p.Interface), p.Address.String(), p.Delete})
}

func (d *Driver) GetIPAddresses(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (entities.IPAddresses, error) {
	iface, err := d.getInterface(ctx, cb, key)
	if err != nil {
		return entities.IPAddresses{}, err
	}
	return entities.IPAddresses{
		IPv4: iface.text("ip-config", "address", "address"),
		IPv6: iface.text("ipv6-config", "ipv6-address", "address"),
	}, nil
}

func (d *Driver) InterfaceVRF(ctx context.Context, cb ports.Callback, p entities.InterfaceVRFParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return d.edit(ctx, cb, "interface_vrf", struct {
		Iface  ifaceRef
		VRF    string
		Delete bool
	}{refFor(p.Interface), p.VRF, p.Delete})
}

// GetInterfaceVRF returns the VRF of the interface, empty for the default VRF.
func (d *Driver) GetInterfaceVRF(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (string, error) {
	iface, err := d.getInterface(ctx, cb, key)
	if err != nil {
		return "", err
	}
	return iface.text("vrf", "forwarding"), nil
}
