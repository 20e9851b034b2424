package platform

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/platform/mib"
	"github.com/carlosrabelo/switchkit/core/platform/mlx"
	"github.com/carlosrabelo/switchkit/core/platform/slxos"
)

// Auto selects the driver by probing the device.
const Auto = "auto"

// SwitchDriver defines the behaviour required to support a switching platform.
type SwitchDriver interface {
	Name() string
	Detect(ctx context.Context, cb ports.Callback) (bool, error)

	// LoginSequence returns the interactive login for CLI sessions.
	LoginSequence(username, password, enablePassword string) []entities.LoginStep
	PagingCommand() string
	ValidInterfaceTypes() []entities.InterfaceType

	AdminState(ctx context.Context, cb ports.Callback, p entities.AdminStateParams) error
	GetAdminState(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (bool, error)
	Description(ctx context.Context, cb ports.Callback, p entities.DescriptionParams) error
	GetDescription(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (string, error)
	AddVLANInterfaces(ctx context.Context, cb ports.Callback, p entities.VLANInterfacesParams) error
	AccessVLAN(ctx context.Context, cb ports.Callback, p entities.AccessVLANParams) error
	CreatePortChannel(ctx context.Context, cb ports.Callback, p entities.PortChannelParams) error
	RemovePortChannel(ctx context.Context, cb ports.Callback, number int) error
	IPAddress(ctx context.Context, cb ports.Callback, p entities.IPAddressParams) error
	GetIPAddresses(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (entities.IPAddresses, error)
	InterfaceVRF(ctx context.Context, cb ports.Callback, p entities.InterfaceVRFParams) error
	GetInterfaceVRF(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (string, error)

	// Port-channel introspection, unsupported platforms return ErrUnsupported.
	ports.PortChannelSource
	InterfaceIndex(cb ports.Callback) (ports.InterfaceIndex, error)
}

// BGPDriver is implemented by platforms that configure BGP.
type BGPDriver interface {
	BGPLocalASN(ctx context.Context, cb ports.Callback, p entities.BGPLocalASNParams) error
	GetBGPLocalASN(ctx context.Context, cb ports.Callback) (uint32, error)
	RemoveBGP(ctx context.Context, cb ports.Callback) error
	BGPNeighbor(ctx context.Context, cb ports.Callback, p entities.BGPNeighborParams) error
	GetBGPNeighbors(ctx context.Context, cb ports.Callback) ([]entities.BGPNeighbor, error)
	BGPMaxPaths(ctx context.Context, cb ports.Callback, p entities.BGPMaxPathsParams) error
	GetBGPMaxPaths(ctx context.Context, cb ports.Callback, afi string) (int, error)
}

var (
	_ SwitchDriver = (*mlx.Driver)(nil)
	_ SwitchDriver = (*slxos.Driver)(nil)
	_ BGPDriver    = (*slxos.Driver)(nil)
)

// AsBGP returns d as a BGPDriver or ErrUnsupported.
func AsBGP(d SwitchDriver) (BGPDriver, error) {
	if b, ok := d.(BGPDriver); ok {
		return b, nil
	}
	return nil, fmt.Errorf("%s bgp: %w", d.Name(), entities.ErrUnsupported)
}

// Registry holds one instance of every supported driver.
type Registry struct {
	drivers []SwitchDriver
}

// NewRegistry builds the drivers with a shared logger and MIB table.
func NewRegistry(log *zap.Logger, oids mib.Table) *Registry {
	return &Registry{drivers: []SwitchDriver{
		mlx.New(log, oids),
		slxos.New(log),
	}}
}

// Get returns a driver by normalized platform name.
func (r *Registry) Get(name string) (SwitchDriver, error) {
	normalized := normalizeName(name)
	for _, driver := range r.drivers {
		if driver.Name() == normalized {
			return driver, nil
		}
	}
	return nil, fmt.Errorf("unknown switch platform %q: %w", name, entities.ErrNotFound)
}

// Available returns all registered drivers.
func (r *Registry) Available() []SwitchDriver {
	out := make([]SwitchDriver, len(r.drivers))
	copy(out, r.drivers)
	return out
}

// Names lists the registered platform names.
func (r *Registry) Names() []string {
	out := make([]string, len(r.drivers))
	for i, d := range r.drivers {
		out[i] = d.Name()
	}
	return out
}

// Resolve returns the named driver, probing the device when name is auto.
func (r *Registry) Resolve(ctx context.Context, name string, cb ports.Callback) (SwitchDriver, error) {
	if normalizeName(name) == Auto || strings.TrimSpace(name) == "" {
		return r.Detect(ctx, cb)
	}
	return r.Get(name)
}

// Detect tries all registered drivers until one matches.
func (r *Registry) Detect(ctx context.Context, cb ports.Callback) (SwitchDriver, error) {
	var lastErr error
	for _, driver := range r.drivers {
		matched, err := driver.Detect(ctx, cb)
		if err != nil {
			lastErr = err
			continue
		}
		if matched {
			return driver, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("detect switch platform: %w", lastErr)
	}
	return nil, fmt.Errorf("unable to detect switch platform: %w", entities.ErrNotFound)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
