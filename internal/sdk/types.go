package sdk

import (
	"context"

	"rigstrap/pkg/blueprint"
)

// Installer defines the contract for fetching and building the accelerator
// SDK. Implementations clone the SDK repository and delegate the build to the
// repository's own install script, which is treated as an opaque black box.
type Installer interface {
	Install(ctx context.Context, spec *blueprint.Spec, isDryRun bool) error
}
