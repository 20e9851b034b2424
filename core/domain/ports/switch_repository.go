package ports

import (
	"context"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

// SwitchRepository is an interactive CLI session with a switch.
type SwitchRepository interface {
	Connect(ctx context.Context) error
	Disconnect()
	ExecuteCommand(ctx context.Context, cmd string) (string, error)
	IsConnected() bool
}

// LoginConfigurable accepts a platform-specific login sequence before Connect.
type LoginConfigurable interface {
	SetLoginSequence(steps []entities.LoginStep)
}
