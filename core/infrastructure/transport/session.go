package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
)

// Session implements ports.Callback for one switch. The CLI, SNMP and
// NETCONF connections are opened on first use and reused until Close.
// Requests are serialized.
type Session struct {
	cfg entities.SwitchConfig
	log *zap.Logger

	mu      sync.Mutex
	cli     ports.SwitchRepository
	snmp    SNMPRequester
	netconf NetconfRequester

	dialSNMP    func() (SNMPRequester, error)
	dialNetconf func(ctx context.Context) (NetconfRequester, error)
}

var _ ports.Callback = (*Session)(nil)

// NewSession creates a session for cfg. Nothing is dialled until the first
// request.
func NewSession(cfg entities.SwitchConfig, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	var cli ports.SwitchRepository
	if cfg.Transport == "ssh" {
		cli = NewSSHClient(cfg, log)
	} else {
		cli = NewTelnetClient(cfg, log)
	}
	return newSession(cfg, log, cli,
		func() (SNMPRequester, error) { return NewSNMPClient(cfg, log) },
		func(ctx context.Context) (NetconfRequester, error) { return DialNetconf(ctx, cfg, log) },
	)
}

func newSession(cfg entities.SwitchConfig, log *zap.Logger, cli ports.SwitchRepository,
	dialSNMP func() (SNMPRequester, error), dialNetconf func(ctx context.Context) (NetconfRequester, error)) *Session {
	return &Session{
		cfg:         cfg,
		log:         log.With(zap.String("target", cfg.Target)),
		cli:         cli,
		dialSNMP:    dialSNMP,
		dialNetconf: dialNetconf,
	}
}

// Target returns the switch address.
func (s *Session) Target() string {
	return s.cfg.Target
}

// SetLoginSequence forwards a platform login to the CLI client when it
// supports one. It only affects connections opened afterwards.
func (s *Session) SetLoginSequence(steps []entities.LoginStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lc, ok := s.cli.(ports.LoginConfigurable); ok {
		lc.SetLoginSequence(steps)
	}
}

// Invoke routes one request to the transport that serves handler.
func (s *Session) Invoke(ctx context.Context, handler ports.Handler, payload ports.Payload) (ports.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return ports.Result{}, err
	}

	switch handler {
	case ports.HandlerCLIGet, ports.HandlerCLISet:
		return s.runCLI(ctx, handler, payload.Commands)
	case ports.HandlerSNMPGet:
		return s.runSNMP(func(c SNMPRequester) (ports.Result, error) {
			pdus, err := c.Get(ctx, payload.OIDs)
			return ports.Result{PDUs: pdus}, err
		})
	case ports.HandlerSNMPSet:
		return s.runSNMP(func(c SNMPRequester) (ports.Result, error) {
			pdus, err := c.Set(ctx, payload.VarBinds)
			return ports.Result{PDUs: pdus}, err
		})
	case ports.HandlerSNMPWalk:
		if len(payload.OIDs) == 0 {
			return ports.Result{}, entities.InvalidParameter("snmp-walk requires a root oid")
		}
		return s.runSNMP(func(c SNMPRequester) (ports.Result, error) {
			pdus, err := c.Walk(ctx, payload.OIDs[0])
			return ports.Result{PDUs: pdus}, err
		})
	case ports.HandlerGetConfig:
		return s.runNetconf(ctx, func(c NetconfRequester) (string, error) {
			return c.GetConfig(ctx, payload.Config)
		})
	case ports.HandlerEditConfig:
		return s.runNetconf(ctx, func(c NetconfRequester) (string, error) {
			return c.EditConfig(ctx, payload.Config)
		})
	}
	return ports.Result{}, fmt.Errorf("handler %q: %w", handler, entities.ErrUnsupported)
}

func (s *Session) runCLI(ctx context.Context, handler ports.Handler, cmds []string) (ports.Result, error) {
	if !s.cli.IsConnected() {
		if err := s.cli.Connect(ctx); err != nil {
			return ports.Result{}, err
		}
	}
	if handler == ports.HandlerCLISet {
		cmds = append(append([]string{"configure terminal"}, cmds...), "end")
	}
	outputs := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		out, err := s.cli.ExecuteCommand(ctx, cmd)
		if err != nil {
			s.cli.Disconnect()
			return ports.Result{}, err
		}
		outputs = append(outputs, out)
	}
	return ports.Result{Output: strings.Join(outputs, "\n")}, nil
}

func (s *Session) runSNMP(fn func(SNMPRequester) (ports.Result, error)) (ports.Result, error) {
	if s.snmp == nil {
		c, err := s.dialSNMP()
		if err != nil {
			return ports.Result{}, err
		}
		s.snmp = c
	}
	return fn(s.snmp)
}

func (s *Session) runNetconf(ctx context.Context, fn func(NetconfRequester) (string, error)) (ports.Result, error) {
	if s.netconf == nil {
		c, err := s.dialNetconf(ctx)
		if err != nil {
			return ports.Result{}, err
		}
		s.netconf = c
	}
	out, err := fn(s.netconf)
	if err != nil && ctx.Err() != nil {
		// the stream was closed to honour cancellation
		s.netconf = nil
	}
	return ports.Result{Output: out}, err
}

// Close releases every open connection.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cli.IsConnected() {
		s.cli.Disconnect()
	}
	if s.snmp != nil {
		if err := s.snmp.Close(); err != nil {
			s.log.Debug("closing snmp session", zap.Error(err))
		}
		s.snmp = nil
	}
	if s.netconf != nil {
		if err := s.netconf.Close(); err != nil {
			s.log.Debug("closing netconf session", zap.Error(err))
		}
		s.netconf = nil
	}
}
