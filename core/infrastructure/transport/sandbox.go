package transport

import (
	"context"

	"go.uber.org/zap"

	"github.com/carlosrabelo/switchkit/core/domain/ports"
)

// SandboxCallback logs mutating requests instead of sending them. Reads
// pass through to the wrapped callback.
type SandboxCallback struct {
	next ports.Callback
	log  *zap.Logger
}

// NewSandboxCallback wraps next.
func NewSandboxCallback(next ports.Callback, log *zap.Logger) *SandboxCallback {
	if log == nil {
		log = zap.NewNop()
	}
	return &SandboxCallback{next: next, log: log}
}

func (s *SandboxCallback) Invoke(ctx context.Context, handler ports.Handler, payload ports.Payload) (ports.Result, error) {
	if !handler.Mutating() {
		return s.next.Invoke(ctx, handler, payload)
	}
	s.log.Info("sandbox mode, request not sent",
		zap.String("handler", string(handler)),
		zap.Strings("commands", payload.Commands),
		zap.Int("varbinds", len(payload.VarBinds)),
		zap.String("config", payload.Config))
	return ports.Result{}, nil
}
