// Package invoke wraps the transport callback with the typed request helpers
// the platform drivers share.
package invoke

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"

	"github.com/carlosrabelo/switchkit/core/cliscrape"
	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
)

// CLIGet runs show commands and returns the output lines. Output containing
// a device error line fails with *entities.DeviceError.
func CLIGet(ctx context.Context, cb ports.Callback, cmds ...string) ([]string, error) {
	return cli(ctx, cb, ports.HandlerCLIGet, cmds)
}

// CLISet runs configuration commands.
func CLISet(ctx context.Context, cb ports.Callback, cmds ...string) error {
	_, err := cli(ctx, cb, ports.HandlerCLISet, cmds)
	return err
}

func cli(ctx context.Context, cb ports.Callback, handler ports.Handler, cmds []string) ([]string, error) {
	res, err := cb.Invoke(ctx, handler, ports.Payload{Commands: cmds})
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", handler, strings.Join(cmds, "; "), err)
	}
	lines := cliscrape.SplitLines(res.Output)
	if err := cliscrape.CheckDeviceError(lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// Get fetches a single SNMP variable. Missing instances map to ErrNotFound.
func Get(ctx context.Context, cb ports.Callback, oid string) (gosnmp.SnmpPDU, error) {
	res, err := cb.Invoke(ctx, ports.HandlerSNMPGet, ports.Payload{OIDs: []string{oid}})
	if err != nil {
		return gosnmp.SnmpPDU{}, fmt.Errorf("snmp-get %s: %w", oid, err)
	}
	if len(res.PDUs) == 0 {
		return gosnmp.SnmpPDU{}, fmt.Errorf("snmp-get %s returned no variables: %w", oid, entities.ErrNotFound)
	}
	pdu := res.PDUs[0]
	switch pdu.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return gosnmp.SnmpPDU{}, fmt.Errorf("snmp-get %s: %w", oid, entities.ErrNotFound)
	}
	return pdu, nil
}

// GetInt fetches an integer-valued variable.
func GetInt(ctx context.Context, cb ports.Callback, oid string) (int64, error) {
	pdu, err := Get(ctx, cb, oid)
	if err != nil {
		return 0, err
	}
	return IntValue(pdu)
}

// GetBytes fetches an OCTET STRING variable.
func GetBytes(ctx context.Context, cb ports.Callback, oid string) ([]byte, error) {
	pdu, err := Get(ctx, cb, oid)
	if err != nil {
		return nil, err
	}
	return BytesValue(pdu)
}

// GetString fetches an OCTET STRING variable as text.
func GetString(ctx context.Context, cb ports.Callback, oid string) (string, error) {
	b, err := GetBytes(ctx, cb, oid)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IntValue converts a numeric PDU value.
func IntValue(pdu gosnmp.SnmpPDU) (int64, error) {
	switch pdu.Type {
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Counter64, gosnmp.Gauge32, gosnmp.TimeTicks, gosnmp.Uinteger32:
		return gosnmp.ToBigInt(pdu.Value).Int64(), nil
	}
	return 0, fmt.Errorf("%s is %s, not numeric: %w", pdu.Name, pdu.Type, entities.ErrMalformedPayload)
}

// BytesValue converts an OCTET STRING PDU value.
func BytesValue(pdu gosnmp.SnmpPDU) ([]byte, error) {
	if pdu.Type != gosnmp.OctetString {
		return nil, fmt.Errorf("%s is %s, not an octet string: %w", pdu.Name, pdu.Type, entities.ErrMalformedPayload)
	}
	switch v := pdu.Value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, fmt.Errorf("%s has value of type %T: %w", pdu.Name, pdu.Value, entities.ErrMalformedPayload)
}

// Set writes SNMP variables.
func Set(ctx context.Context, cb ports.Callback, pdus ...gosnmp.SnmpPDU) error {
	if _, err := cb.Invoke(ctx, ports.HandlerSNMPSet, ports.Payload{VarBinds: pdus}); err != nil {
		names := make([]string, len(pdus))
		for i, p := range pdus {
			names[i] = p.Name
		}
		return fmt.Errorf("snmp-set %s: %w", strings.Join(names, ","), err)
	}
	return nil
}

// Integer builds an INTEGER var-bind.
func Integer(oid string, v int) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.Integer, Value: v}
}

// OctetString builds an OCTET STRING var-bind.
func OctetString(oid string, v string) gosnmp.SnmpPDU {
	return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.OctetString, Value: []byte(v)}
}

// Walk returns every variable under root.
func Walk(ctx context.Context, cb ports.Callback, root string) ([]gosnmp.SnmpPDU, error) {
	res, err := cb.Invoke(ctx, ports.HandlerSNMPWalk, ports.Payload{OIDs: []string{root}})
	if err != nil {
		return nil, fmt.Errorf("snmp-walk %s: %w", root, err)
	}
	return res.PDUs, nil
}

// GetConfig reads the running configuration selected by a subtree filter.
func GetConfig(ctx context.Context, cb ports.Callback, filter string) (string, error) {
	res, err := cb.Invoke(ctx, ports.HandlerGetConfig, ports.Payload{Config: filter})
	if err != nil {
		return "", fmt.Errorf("get_config: %w", err)
	}
	return res.Output, nil
}

// EditConfig merges a <config> body into the running configuration.
func EditConfig(ctx context.Context, cb ports.Callback, config string) error {
	if _, err := cb.Invoke(ctx, ports.HandlerEditConfig, ports.Payload{Config: config}); err != nil {
		return fmt.Errorf("edit_config: %w", err)
	}
	return nil
}
