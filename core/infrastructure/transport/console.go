package transport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const (
	DefaultTimeout   = 120 * time.Second
	BufferSize       = 4096
	PromptUser       = ">"
	PromptPrivileged = "#"
	PromptPassword   = "assword:"
	PagerMarker      = "--More--"
)

// loginPrompts are the username prompts of the supported platforms.
var loginPrompts = []string{"Name:", "login:", "Username:"}

// console drives a prompt-oriented byte stream. A pump goroutine feeds
// reads into a channel so every wait can honour a timeout and a context.
type console struct {
	w       io.Writer
	chunks  chan []byte
	stop    chan struct{}
	once    sync.Once
	readErr error
	log     *zap.Logger
	raw     bool
	timeout time.Duration
}

func newConsole(rw io.ReadWriter, log *zap.Logger, raw bool, timeout time.Duration) *console {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &console{
		w:       rw,
		chunks:  make(chan []byte, 16),
		stop:    make(chan struct{}),
		log:     log,
		raw:     raw,
		timeout: timeout,
	}
	go c.pump(rw)
	return c
}

func (c *console) pump(r io.Reader) {
	defer close(c.chunks)
	buf := make([]byte, BufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case c.chunks <- chunk:
			case <-c.stop:
				return
			}
		}
		if err != nil {
			c.readErr = err
			return
		}
	}
}

// close stops the pump. The caller closes the underlying stream.
func (c *console) close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *console) send(data string) error {
	_, err := io.WriteString(c.w, data)
	return err
}

func (c *console) readUntil(ctx context.Context, pattern string) (string, error) {
	return c.readUntilAny(ctx, []string{pattern})
}

// readUntilAny accumulates output until one of patterns appears. A pager
// marker is answered with a space and stripped from the output.
func (c *console) readUntilAny(ctx context.Context, patterns []string) (string, error) {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	var output strings.Builder
	output.Grow(BufferSize)
	for {
		select {
		case chunk, ok := <-c.chunks:
			if !ok {
				err := c.readErr
				if err == nil {
					err = io.EOF
				}
				return output.String(), fmt.Errorf("read error: %w", err)
			}
			if c.raw {
				c.log.Debug("switch output", zap.ByteString("read", chunk))
			}
			output.Write(chunk)
			text := output.String()
			if strings.Contains(text, PagerMarker) {
				text = strings.ReplaceAll(text, PagerMarker, "")
				output.Reset()
				output.WriteString(text)
				if err := c.send(" "); err != nil {
					return text, fmt.Errorf("failed to page output: %w", err)
				}
				continue
			}
			for _, pattern := range patterns {
				if strings.Contains(text, pattern) {
					return text, nil
				}
			}
		case <-timer.C:
			return output.String(), fmt.Errorf("timeout waiting for prompts %s", strings.Join(patterns, ", "))
		case <-ctx.Done():
			return output.String(), ctx.Err()
		}
	}
}

// login replays an expect/send sequence.
func (c *console) login(ctx context.Context, steps []entities.LoginStep) error {
	for _, step := range steps {
		output, err := c.readUntil(ctx, step.Expect)
		if err != nil {
			return fmt.Errorf("failed to wait for %s: %w, output: %s", step.Expect, err, output)
		}
		if step.Send == "" {
			continue
		}
		if err := c.send(step.Send); err != nil {
			return fmt.Errorf("failed to answer %s: %w", step.Expect, err)
		}
		c.log.Debug("sent login step", zap.String("prompt", step.Expect))
	}
	return nil
}

// genericLogin handles any of the known username prompts and elevates to
// privileged mode when the device lands in user mode.
func (c *console) genericLogin(ctx context.Context, username, password, enablePassword string) error {
	if _, err := c.readUntilAny(ctx, loginPrompts); err != nil {
		return fmt.Errorf("failed to wait for login prompt: %w", err)
	}
	if err := c.send(username + "\n"); err != nil {
		return err
	}
	if _, err := c.readUntil(ctx, PromptPassword); err != nil {
		return fmt.Errorf("failed to wait for password prompt: %w", err)
	}
	if err := c.send(password + "\n"); err != nil {
		return err
	}
	return c.elevate(ctx, enablePassword)
}

// elevate waits for a shell prompt and enters privileged mode if needed.
func (c *console) elevate(ctx context.Context, enablePassword string) error {
	initial, err := c.readUntilAny(ctx, []string{PromptPrivileged, PromptUser})
	if err != nil {
		return err
	}
	if strings.Contains(initial, PromptPrivileged) {
		c.log.Debug("already in privileged mode")
		return nil
	}
	c.log.Debug("elevating to privileged mode")
	if err := c.send("enable\n"); err != nil {
		return fmt.Errorf("failed to send enable command: %w", err)
	}
	if _, err := c.readUntil(ctx, PromptPassword); err != nil {
		return err
	}
	if err := c.send(enablePassword + "\n"); err != nil {
		return fmt.Errorf("failed to send enable password: %w", err)
	}
	_, err = c.readUntil(ctx, PromptPrivileged)
	return err
}

// execute sends cmd and returns the output between the echoed command and
// the next prompt.
func (c *console) execute(ctx context.Context, cmd string) (string, error) {
	if err := c.send(cmd + "\n"); err != nil {
		return "", fmt.Errorf("failed to send command %s: %w", cmd, err)
	}
	output, err := c.readUntil(ctx, PromptPrivileged)
	if err != nil {
		return "", fmt.Errorf("error executing %s: %w", cmd, err)
	}
	return trimEcho(output), nil
}

// trimEcho drops the echoed command line and the trailing prompt line.
func trimEcho(output string) string {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
	if len(lines) <= 2 {
		return ""
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
