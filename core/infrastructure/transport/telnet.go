package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/ziutek/telnet"
	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const telnetPort = "23"

// TelnetClient manages a Telnet connection to a switch
type TelnetClient struct {
	conn    *telnet.Conn
	console *console
	config  entities.SwitchConfig
	log     *zap.Logger
	steps   []entities.LoginStep
}

// NewTelnetClient creates a new Telnet client with the given configuration
func NewTelnetClient(cfg entities.SwitchConfig, log *zap.Logger) *TelnetClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &TelnetClient{config: cfg, log: log.With(zap.String("target", cfg.Target), zap.String("transport", "telnet"))}
}

// SetLoginSequence replaces the generic login with a platform sequence.
func (tc *TelnetClient) SetLoginSequence(steps []entities.LoginStep) {
	tc.steps = steps
}

// Connect establishes a Telnet connection to the switch
func (tc *TelnetClient) Connect(ctx context.Context) error {
	if tc.conn != nil {
		return nil
	}
	conn, err := telnet.Dial("tcp", address(tc.config.Target, telnetPort))
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", tc.config.Target, err)
	}
	tc.conn = conn
	tc.console = newConsole(conn, tc.log, tc.config.IsRawOutputEnabled(), DefaultTimeout)
	tc.log.Debug("connected")

	if len(tc.steps) > 0 {
		err = tc.console.login(ctx, tc.steps)
	} else {
		err = tc.console.genericLogin(ctx, tc.config.Username, tc.config.Password, tc.config.EnablePassword)
	}
	if err != nil {
		tc.Disconnect()
		return fmt.Errorf("login to %s: %w", tc.config.Target, err)
	}
	return nil
}

// Disconnect closes the Telnet connection
func (tc *TelnetClient) Disconnect() {
	if tc.conn == nil {
		return
	}
	tc.console.close()
	tc.conn.Close()
	tc.conn = nil
	tc.console = nil
	tc.log.Debug("disconnected")
}

func (tc *TelnetClient) IsConnected() bool {
	return tc.conn != nil
}

// ExecuteCommand sends a command to the switch and returns its output
func (tc *TelnetClient) ExecuteCommand(ctx context.Context, cmd string) (string, error) {
	if tc.console == nil {
		return "", fmt.Errorf("telnet session to %s is not connected", tc.config.Target)
	}
	tc.log.Debug("executing", zap.String("command", cmd))
	return tc.console.execute(ctx, cmd)
}

// address appends port unless target already carries one.
func address(target, port string) string {
	if _, _, err := net.SplitHostPort(target); err == nil {
		return target
	}
	return net.JoinHostPort(target, port)
}
