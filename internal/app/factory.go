package app

import (
	"fmt"

	"rigstrap/internal/rehearsal"
	"rigstrap/internal/runtime"
	"rigstrap/internal/sdk"
	"rigstrap/internal/shell"
)

// ProviderFactory creates execution backends for the provisioning stages.
// It decouples the orchestrator from the concrete runner and installer
// implementations.
type ProviderFactory struct{}

// NewProviderFactory creates a new instance of ProviderFactory.
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// GetRunner returns the step runner for the named backend. Only the host
// backend exists today; rehearsal bypasses the runner and replays steps in a
// container instead.
func (f *ProviderFactory) GetRunner(backend string) (shell.Runner, error) {
	switch backend {
	case "host":
		return shell.NewHostRunner(), nil
	default:
		return nil, fmt.Errorf("unsupported execution backend: %s", backend)
	}
}

// GetSDKInstaller returns the SDK installer bound to the given runner.
func (f *ProviderFactory) GetSDKInstaller(runner shell.Runner) sdk.Installer {
	return sdk.NewGitInstaller(runner)
}

// GetRehearser returns a container-backed rehearser, creating a Docker
// runtime on demand.
func (f *ProviderFactory) GetRehearser(image string) (*rehearsal.Rehearser, error) {
	dockerRuntime, err := runtime.NewDockerRuntime()
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker runtime: %w", err)
	}

	rehearser := rehearsal.NewRehearser(dockerRuntime)
	if image != "" {
		rehearser = rehearser.WithImage(image)
	}
	return rehearser, nil
}
