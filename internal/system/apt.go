// Package system installs OS-level dependencies through apt.
package system

import (
	"context"
	"fmt"
	"log/slog"

	"rigstrap/internal/shell"
	"rigstrap/pkg/blueprint"
)

// Steps returns the ordered apt step list for the spec. The meta-package is
// installed before the regular package lists so the accelerator driver stack
// is in place when the SDK installer later runs.
func Steps(spec *blueprint.Spec) []shell.Step {
	steps := []shell.Step{
		{Name: "apt-update", Cmd: "sudo", Args: []string{"apt", "update"}},
	}

	if spec.System.FullUpgrade {
		steps = append(steps, shell.Step{
			Name: "apt-full-upgrade",
			Cmd:  "sudo",
			Args: []string{"apt", "full-upgrade", "-y"},
		})
	}

	steps = append(steps, shell.Step{
		Name: "apt-install-" + spec.System.MetaPackage,
		Cmd:  "sudo",
		Args: []string{"apt", "install", "-y", spec.System.MetaPackage},
	})

	steps = append(steps, shell.Step{
		Name: "apt-install-packages",
		Cmd:  "sudo",
		Args: append([]string{"apt", "install", "-y"}, spec.System.Packages...),
	})

	if spec.Profile == blueprint.ProfileCamera && len(spec.System.CameraPackages) > 0 {
		steps = append(steps, shell.Step{
			Name: "apt-install-camera-packages",
			Cmd:  "sudo",
			Args: append([]string{"apt", "install", "-y"}, spec.System.CameraPackages...),
		})
	}

	return steps
}

// Provision runs the apt step list in order, aborting on the first failure.
func Provision(ctx context.Context, runner shell.Runner, spec *blueprint.Spec, isDryRun bool) error {
	if spec == nil {
		return fmt.Errorf("spec cannot be nil")
	}

	steps := Steps(spec)

	if isDryRun {
		for _, step := range steps {
			fmt.Printf("DRY RUN: Would execute: %s\n", step.Command())
		}
		return nil
	}

	for _, step := range steps {
		slog.Info("Executing system step", "step", step.Name, "command", step.Command())
		if err := runner.Run(ctx, step); err != nil {
			return fmt.Errorf("system step %s failed: %w", step.Name, err)
		}
	}

	slog.Info("System packages installed", "packages", len(spec.System.Packages), "metaPackage", spec.System.MetaPackage)
	return nil
}
