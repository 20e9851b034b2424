package transport

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const sshPort = "22"

// SSHClient manages an interactive SSH shell with a switch
type SSHClient struct {
	config  entities.SwitchConfig
	log     *zap.Logger
	client  *ssh.Client
	session *ssh.Session
	console *console
}

// NewSSHClient creates a new SSH client with the given configuration
func NewSSHClient(cfg entities.SwitchConfig, log *zap.Logger) *SSHClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &SSHClient{config: cfg, log: log.With(zap.String("target", cfg.Target), zap.String("transport", "ssh"))}
}

func sshClientConfig(cfg entities.SwitchConfig) *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         DefaultTimeout,
	}
}

func (sc *SSHClient) Connect(ctx context.Context) error {
	if sc.IsConnected() {
		return nil
	}
	client, err := ssh.Dial("tcp", address(sc.config.Target, sshPort), sshClientConfig(sc.config))
	if err != nil {
		return fmt.Errorf("failed to connect to %s via SSH: %w", sc.config.Target, err)
	}

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return fmt.Errorf("failed to create SSH session for %s: %w", sc.config.Target, err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 9600,
		ssh.TTY_OP_OSPEED: 9600,
	}
	if err := session.RequestPty("vt100", 80, 40, modes); err != nil {
		session.Close()
		client.Close()
		return fmt.Errorf("failed to request PTY for %s: %w", sc.config.Target, err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		client.Close()
		return fmt.Errorf("failed to get stdin pipe for %s: %w", sc.config.Target, err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		client.Close()
		return fmt.Errorf("failed to get stdout pipe for %s: %w", sc.config.Target, err)
	}
	if err := session.Shell(); err != nil {
		session.Close()
		client.Close()
		return fmt.Errorf("failed to start shell for %s: %w", sc.config.Target, err)
	}

	sc.client = client
	sc.session = session
	sc.console = newConsole(struct {
		io.Reader
		io.Writer
	}{stdout, stdin}, sc.log, sc.config.IsRawOutputEnabled(), DefaultTimeout)
	sc.log.Debug("connected")

	if err := sc.console.elevate(ctx, sc.config.EnablePassword); err != nil {
		sc.Disconnect()
		return fmt.Errorf("login to %s: %w", sc.config.Target, err)
	}
	return nil
}

func (sc *SSHClient) Disconnect() {
	if sc.console != nil {
		sc.console.close()
		sc.console = nil
	}
	if sc.session != nil {
		sc.session.Close()
		sc.session = nil
	}
	if sc.client != nil {
		sc.client.Close()
		sc.client = nil
	}
	sc.log.Debug("disconnected")
}

func (sc *SSHClient) IsConnected() bool {
	return sc.session != nil && sc.client != nil
}

func (sc *SSHClient) ExecuteCommand(ctx context.Context, cmd string) (string, error) {
	if sc.console == nil {
		return "", fmt.Errorf("ssh session to %s is not connected", sc.config.Target)
	}
	sc.log.Debug("executing", zap.String("command", cmd))
	return sc.console.execute(ctx, cmd)
}
