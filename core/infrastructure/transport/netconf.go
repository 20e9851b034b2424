package transport

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/Juniper/go-netconf/netconf"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const defaultNetconfPort = "830"

// NetconfRequester runs NETCONF operations against the running datastore.
type NetconfRequester interface {
	GetConfig(ctx context.Context, filter string) (string, error)
	EditConfig(ctx context.Context, config string) (string, error)
	Close() error
}

// NetconfClient wraps a go-netconf session on the netconf SSH subsystem.
type NetconfClient struct {
	session *netconf.Session
	log     *zap.Logger
}

// DialNetconf opens the netconf SSH subsystem of cfg's target.
func DialNetconf(ctx context.Context, cfg entities.SwitchConfig, log *zap.Logger) (*NetconfClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	port := strconv.Itoa(cfg.NetconfPort)
	if cfg.NetconfPort == 0 {
		port = defaultNetconfPort
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address(host(cfg.Target), port))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s via NETCONF: %w", cfg.Target, err)
	}
	return NewNetconfClient(ctx, conn, sshClientConfig(cfg), log.With(zap.String("target", cfg.Target)))
}

// NewNetconfClient runs the SSH handshake and hello exchange over conn.
// conn is closed on any failure.
func NewNetconfClient(ctx context.Context, conn net.Conn, sshCfg *ssh.ClientConfig, log *zap.Logger) (*NetconfClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	type result struct {
		session *netconf.Session
		err     error
	}
	done := make(chan result, 1)
	go func() {
		s, err := netconf.NewSSHSession(conn, sshCfg)
		done <- result{session: s, err: err}
	}()

	var session *netconf.Session
	select {
	case r := <-done:
		if r.err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to start netconf session: %w", r.err)
		}
		session = r.session
	case <-ctx.Done():
		conn.Close()
		go func() {
			if r := <-done; r.session != nil {
				r.session.Close()
			}
		}()
		return nil, ctx.Err()
	}

	// go-netconf ignores a malformed server hello and leaves the
	// capabilities empty.
	if len(session.ServerCapabilities) == 0 {
		session.Close()
		return nil, fmt.Errorf("server hello carried no capabilities: %w", entities.ErrMalformedPayload)
	}
	c := &NetconfClient{session: session, log: log.With(zap.String("transport", "netconf"))}
	c.log.Debug("netconf session established",
		zap.Int("session_id", session.SessionID),
		zap.Int("capabilities", len(session.ServerCapabilities)))
	return c, nil
}

func (c *NetconfClient) GetConfig(ctx context.Context, filter string) (string, error) {
	body := `<get-config><source><running/></source>`
	if filter != "" {
		body += `<filter type="subtree">` + filter + `</filter>`
	}
	body += `</get-config>`
	return c.exec(ctx, body)
}

func (c *NetconfClient) EditConfig(ctx context.Context, config string) (string, error) {
	return c.exec(ctx, `<edit-config><target><running/></target>`+config+`</edit-config>`)
}

func (c *NetconfClient) Close() error {
	return c.session.Close()
}

// exec sends one rpc. A cancelled context closes the transport to unblock
// the pending read.
func (c *NetconfClient) exec(ctx context.Context, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	type result struct {
		reply *netconf.RPCReply
		err   error
	}
	done := make(chan result, 1)
	go func() {
		reply, err := c.session.Exec(netconf.RawMethod(body))
		done <- result{reply: reply, err: err}
	}()
	select {
	case r := <-done:
		return decodeReply(r.reply, r.err)
	case <-ctx.Done():
		c.session.Transport.Close()
		return "", ctx.Err()
	}
}

// decodeReply returns the reply re-wrapped in an rpc-reply element.
func decodeReply(reply *netconf.RPCReply, err error) (string, error) {
	if reply == nil {
		if err == nil {
			return "", fmt.Errorf("empty rpc-reply: %w", entities.ErrMalformedPayload)
		}
		var syntaxErr *xml.SyntaxError
		var unmarshalErr xml.UnmarshalError
		if errors.As(err, &syntaxErr) || errors.As(err, &unmarshalErr) {
			return "", fmt.Errorf("decode rpc-reply: %v: %w", err, entities.ErrMalformedPayload)
		}
		return "", err
	}
	if devErr := replyError(reply.Errors); devErr != nil {
		return "", devErr
	}
	return "<rpc-reply>" + reply.Data + "</rpc-reply>", nil
}

// replyError maps the first rpc-error above warning severity to a DeviceError.
func replyError(errs []netconf.RPCError) error {
	for _, e := range errs {
		if strings.TrimSpace(e.Severity) == "warning" {
			continue
		}
		msg := strings.TrimSpace(e.Message)
		if msg == "" {
			msg = strings.TrimSpace(e.Tag)
		}
		return &entities.DeviceError{Line: msg}
	}
	return nil
}
