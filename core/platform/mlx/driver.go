package mlx

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/platform/invoke"
	"github.com/carlosrabelo/switchkit/core/platform/mib"
)

const driverName = "mlx"

const (
	promptLogin      = "Name:"
	promptPassword   = "Password:"
	promptUser       = ">"
	promptPrivileged = "#"
	pagingCommand    = "skip-page-display"
)

// Driver implements the SwitchDriver behaviour for NetIron MLX routers,
// which are read over SNMP and configured through the CLI.
type Driver struct {
	log  *zap.Logger
	oids mib.Table
}

// New creates a new MLX driver instance.
func New(log *zap.Logger, oids mib.Table) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{log: log.With(zap.String("platform", driverName)), oids: oids}
}

// Name returns the canonical platform identifier.
func (d *Driver) Name() string {
	return driverName
}

// Detect inspects the device to determine whether it is running NetIron.
func (d *Driver) Detect(ctx context.Context, cb ports.Callback) (bool, error) {
	lines, err := invoke.CLIGet(ctx, cb, "show version")
	if err != nil {
		return false, err
	}
	return isMLXVersion(lines), nil
}

// LoginSequence returns the interactive login for telnet sessions.
func (d *Driver) LoginSequence(username, password, enablePassword string) []entities.LoginStep {
	return []entities.LoginStep{
		{Expect: promptLogin, Send: username + "\n"},
		{Expect: promptPassword, Send: password + "\n"},
		{Expect: promptUser, Send: "enable\n"},
		{Expect: promptPassword, Send: enablePassword + "\n"},
		{Expect: promptPrivileged, Send: pagingCommand + "\n"},
		{Expect: promptPrivileged},
	}
}

// PagingCommand disables output paging.
func (d *Driver) PagingCommand() string {
	return pagingCommand
}

// ValidInterfaceTypes lists the interface families MLX accepts.
func (d *Driver) ValidInterfaceTypes() []entities.InterfaceType {
	return []entities.InterfaceType{
		entities.InterfaceEthernet,
		entities.InterfacePortChannel,
		entities.InterfaceLoopback,
		entities.InterfaceVe,
	}
}

// InterfaceIndex returns the SNMP ifName based index lookup.
func (d *Driver) InterfaceIndex(cb ports.Callback) (ports.InterfaceIndex, error) {
	return NewSNMPInterfaceIndex(cb, d.oids), nil
}

func (d *Driver) oid(name string) (string, error) {
	oid, err := d.oids.OID(name)
	if err != nil {
		return "", fmt.Errorf("%s driver: %w", driverName, err)
	}
	return oid, nil
}

func (d *Driver) ifIndex(ctx context.Context, cb ports.Callback, key entities.InterfaceKey) (uint32, error) {
	return NewSNMPInterfaceIndex(cb, d.oids).InterfaceIndex(ctx, key)
}
