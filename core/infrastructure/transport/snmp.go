package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const snmpMaxRepetitions = 25

// SNMPRequester performs SNMP operations against one agent.
type SNMPRequester interface {
	Get(ctx context.Context, oids []string) ([]gosnmp.SnmpPDU, error)
	Set(ctx context.Context, pdus []gosnmp.SnmpPDU) ([]gosnmp.SnmpPDU, error)
	Walk(ctx context.Context, root string) ([]gosnmp.SnmpPDU, error)
	Close() error
}

// SNMPClient is a gosnmp connection to the agent of one switch.
type SNMPClient struct {
	conn *gosnmp.GoSNMP
	log  *zap.Logger
}

// NewSNMPClient opens the UDP socket for cfg's agent.
func NewSNMPClient(cfg entities.SwitchConfig, log *zap.Logger) (*SNMPClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn := snmpConn(cfg)
	if err := conn.Connect(); err != nil {
		return nil, fmt.Errorf("failed to open snmp session to %s: %w", cfg.Target, err)
	}
	return &SNMPClient{conn: conn, log: log.With(zap.String("target", cfg.Target), zap.String("transport", "snmp"))}, nil
}

// snmpConn builds the gosnmp session parameters of cfg's agent.
func snmpConn(cfg entities.SwitchConfig) *gosnmp.GoSNMP {
	version := gosnmp.Version2c
	if cfg.SNMP.Version == "1" {
		version = gosnmp.Version1
	}
	conn := &gosnmp.GoSNMP{
		Target:             host(cfg.Target),
		Port:               cfg.SNMP.Port,
		Community:          cfg.SNMP.Community,
		Version:            version,
		Timeout:            cfg.SNMP.Timeout,
		MaxRepetitions:     snmpMaxRepetitions,
		ExponentialTimeout: true,
		Context:            context.Background(),
	}
	if cfg.SNMP.Retries != nil {
		conn.Retries = *cfg.SNMP.Retries
	}
	if conn.Port == 0 {
		conn.Port = 161
	}
	return conn
}

func (c *SNMPClient) Get(ctx context.Context, oids []string) ([]gosnmp.SnmpPDU, error) {
	c.conn.Context = ctx
	c.log.Debug("snmp get", zap.Strings("oids", oids))
	packet, err := c.conn.Get(oids)
	if err != nil {
		return nil, err
	}
	if err := packetError(packet); err != nil {
		return nil, err
	}
	return packet.Variables, nil
}

func (c *SNMPClient) Set(ctx context.Context, pdus []gosnmp.SnmpPDU) ([]gosnmp.SnmpPDU, error) {
	c.conn.Context = ctx
	c.log.Debug("snmp set", zap.Int("varbinds", len(pdus)))
	packet, err := c.conn.Set(pdus)
	if err != nil {
		return nil, err
	}
	if err := packetError(packet); err != nil {
		return nil, err
	}
	return packet.Variables, nil
}

// Walk uses GETBULK except on SNMPv1 agents.
func (c *SNMPClient) Walk(ctx context.Context, root string) ([]gosnmp.SnmpPDU, error) {
	c.conn.Context = ctx
	c.log.Debug("snmp walk", zap.String("root", root))
	if c.conn.Version == gosnmp.Version1 {
		return c.conn.WalkAll(root)
	}
	return c.conn.BulkWalkAll(root)
}

func (c *SNMPClient) Close() error {
	if c.conn.Conn == nil {
		return nil
	}
	return c.conn.Conn.Close()
}

// packetError turns a non-zero error-status into a DeviceError.
func packetError(packet *gosnmp.SnmpPacket) error {
	if packet == nil || packet.Error == gosnmp.NoError {
		return nil
	}
	return &entities.DeviceError{Line: fmt.Sprintf("snmp error-status %v at index %d", packet.Error, packet.ErrorIndex)}
}

func host(target string) string {
	if h, _, err := net.SplitHostPort(target); err == nil {
		return h
	}
	return target
}
