package engine

import (
	"context"
	"errors"
)

// Engine is the external transcoding capability the workflow drives. Files are
// addressed by plain names inside the engine's private workspace.
type Engine interface {
	Initialize(ctx context.Context) error
	WriteInput(ctx context.Context, name string, data []byte) error
	Execute(ctx context.Context, args []string) error
	ReadOutput(ctx context.Context, name string) ([]byte, error)
}

var (
	ErrNotInitialized = errors.New("engine not initialized")
	ErrInvalidName    = errors.New("invalid workspace file name")
)
