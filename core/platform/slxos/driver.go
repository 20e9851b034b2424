// Package slxos drives SLX-OS switches through NETCONF configuration
// payloads. The CLI is used only for platform detection.
package slxos

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/platform/invoke"
)

const driverName = "slxos"

const (
	promptLogin      = "login:"
	promptPassword   = "Password:"
	promptPrivileged = "#"
	pagingCommand    = "terminal length 0"
)

// Driver implements the SwitchDriver behaviour for SLX-OS.
type Driver struct {
	log *zap.Logger
}

// New creates a new SLX-OS driver instance.
func New(log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{log: log.With(zap.String("platform", driverName))}
}

// Name returns the canonical platform identifier.
func (d *Driver) Name() string {
	return driverName
}

// Detect inspects "show version" for the SLX banner.
func (d *Driver) Detect(ctx context.Context, cb ports.Callback) (bool, error) {
	lines, err := invoke.CLIGet(ctx, cb, "show version")
	if err != nil {
		return false, err
	}
	return isSLXVersion(lines), nil
}

// LoginSequence returns the interactive login for telnet sessions. SLX-OS
// users land directly in privileged mode.
func (d *Driver) LoginSequence(username, password, _ string) []entities.LoginStep {
	return []entities.LoginStep{
		{Expect: promptLogin, Send: username + "\n"},
		{Expect: promptPassword, Send: password + "\n"},
		{Expect: promptPrivileged, Send: pagingCommand + "\n"},
		{Expect: promptPrivileged},
	}
}

func (d *Driver) PagingCommand() string {
	return pagingCommand
}

func (d *Driver) ValidInterfaceTypes() []entities.InterfaceType {
	return []entities.InterfaceType{
		entities.InterfaceEthernet,
		entities.InterfacePortChannel,
		entities.InterfaceLoopback,
		entities.InterfaceVe,
	}
}

func unsupported(op string) error {
	return fmt.Errorf("%s %s: %w", driverName, op, entities.ErrUnsupported)
}

// InterfaceIndex is not available: SLX-OS is not managed over SNMP here.
func (d *Driver) InterfaceIndex(ports.Callback) (ports.InterfaceIndex, error) {
	return nil, unsupported("interface index")
}

func (d *Driver) PortChannelSummaries(context.Context, ports.Callback) ([]entities.LagSummary, error) {
	return nil, unsupported("port-channel summaries")
}

func (d *Driver) PortChannelIfIndex(context.Context, ports.Callback, []uint32) (uint32, error) {
	return 0, unsupported("port-channel ifindex")
}

func (d *Driver) PortChannelID(context.Context, ports.Callback, []uint32) (int, error) {
	return 0, unsupported("port-channel id")
}

func (d *Driver) PortChannelMemberList(context.Context, ports.Callback, []uint32) ([]byte, error) {
	return nil, unsupported("port-channel member list")
}

func (d *Driver) AggregateLACP(context.Context, ports.Callback, uint32) (entities.LacpAggregate, error) {
	return entities.LacpAggregate{}, unsupported("lacp aggregate")
}

func (d *Driver) LACPMembers(context.Context, ports.Callback, string) (map[string]entities.LacpMemberStatus, error) {
	return nil, unsupported("lacp members")
}

func (d *Driver) edit(ctx context.Context, cb ports.Callback, tmpl string, data any) error {
	payload, err := render(tmpl, data)
	if err != nil {
		return err
	}
	d.log.Debug("edit-config", zap.String("template", tmpl))
	return invoke.EditConfig(ctx, cb, payload)
}

func (d *Driver) get(ctx context.Context, cb ports.Callback, tmpl string, data any) (string, error) {
	filter, err := render(tmpl, data)
	if err != nil {
		return "", err
	}
	return invoke.GetConfig(ctx, cb, filter)
}
