package ports

import (
	"context"

	"github.com/gosnmp/gosnmp"
)

// Handler names the transport operation a request is routed to.
type Handler string

const (
	HandlerCLIGet     Handler = "cli-get"
	HandlerCLISet     Handler = "cli-set"
	HandlerSNMPGet    Handler = "snmp-get"
	HandlerSNMPSet    Handler = "snmp-set"
	HandlerSNMPWalk   Handler = "snmp-walk"
	HandlerGetConfig  Handler = "get_config"
	HandlerEditConfig Handler = "edit_config"
)

// Mutating reports whether the handler changes device state.
func (h Handler) Mutating() bool {
	switch h {
	case HandlerCLISet, HandlerSNMPSet, HandlerEditConfig:
		return true
	}
	return false
}

// Payload is the handler-specific request body. Only the fields relevant to
// the handler are read: Commands for CLI, OIDs for snmp-get and snmp-walk
// (walk uses the first OID as root), VarBinds for snmp-set and Config for
// the NETCONF handlers (a subtree filter for get_config, a <config> body for
// edit_config).
type Payload struct {
	Commands []string
	OIDs     []string
	VarBinds []gosnmp.SnmpPDU
	Config   string
}

// Result carries the device response: text for CLI and NETCONF handlers,
// variable bindings for SNMP handlers.
type Result struct {
	Output string
	PDUs   []gosnmp.SnmpPDU
}

// Callback executes one request against a device.
type Callback interface {
	Invoke(ctx context.Context, handler Handler, payload Payload) (Result, error)
}

// CallbackFunc adapts a function to the Callback interface.
type CallbackFunc func(ctx context.Context, handler Handler, payload Payload) (Result, error)

func (f CallbackFunc) Invoke(ctx context.Context, handler Handler, payload Payload) (Result, error) {
	return f(ctx, handler, payload)
}
