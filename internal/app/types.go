package app

import (
	"context"
)

// Stage represents a single stage in the rigstrap provisioning sequence.
// Each stage implements this interface to provide an identifier and its
// execution logic.
type Stage interface {
	ID() ExecutionStage
	Title() string
	Execute(ctx context.Context) error
}
