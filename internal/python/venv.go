// Package python creates the isolated Python environment for the camera
// workload and installs its dependencies.
package python

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"rigstrap/internal/shell"
	"rigstrap/pkg/blueprint"
)

// Steps returns the ordered venv/pip step list for the spec. The virtual
// environment is created first; every pip step after that goes through the
// venv's own pip binary, which is equivalent to running pip with the
// environment activated.
func Steps(spec *blueprint.Spec) []shell.Step {
	venv := venvDir(spec)
	pip := filepath.Join(venv, "bin", "pip")

	venvArgs := []string{"-m", "venv"}
	if spec.Python.SystemSitePackages {
		venvArgs = append(venvArgs, "--system-site-packages")
	}
	venvArgs = append(venvArgs, venv)

	steps := []shell.Step{
		{Name: "venv-create", Cmd: "python3", Args: venvArgs},
		{Name: "pip-upgrade", Cmd: pip, Args: []string{"install", "--upgrade", "pip"}},
	}

	if len(spec.Python.BuildTools) > 0 {
		steps = append(steps, shell.Step{
			Name: "pip-install-build-tools",
			Cmd:  pip,
			Args: append([]string{"install"}, spec.Python.BuildTools...),
		})
	}

	steps = append(steps, shell.Step{
		Name: "pip-install-requirements",
		Cmd:  pip,
		Args: []string{"install", "-r", requirementsFile(spec)},
	})

	return steps
}

// Provision runs the venv/pip step list in order, aborting on the first
// failure. The requirements manifest must already exist in the working
// directory.
func Provision(ctx context.Context, runner shell.Runner, spec *blueprint.Spec, isDryRun bool) error {
	if spec == nil {
		return fmt.Errorf("spec cannot be nil")
	}

	requirements := requirementsFile(spec)
	if _, err := os.Stat(requirements); os.IsNotExist(err) {
		return fmt.Errorf("requirements manifest not found: %s", requirements)
	}

	steps := Steps(spec)

	if isDryRun {
		for _, step := range steps {
			fmt.Printf("DRY RUN: Would execute: %s\n", step.Command())
		}
		return nil
	}

	for _, step := range steps {
		slog.Info("Executing python step", "step", step.Name, "command", step.Command())
		if err := runner.Run(ctx, step); err != nil {
			return fmt.Errorf("python step %s failed: %w", step.Name, err)
		}
	}

	slog.Info("Python environment ready", "venv", venvDir(spec), "requirements", requirements)
	return nil
}

func venvDir(spec *blueprint.Spec) string {
	if spec.Python.Venv != "" {
		return spec.Python.Venv
	}
	return blueprint.DefaultVenv
}

func requirementsFile(spec *blueprint.Spec) string {
	if spec.Python.Requirements != "" {
		return spec.Python.Requirements
	}
	return blueprint.DefaultRequirements
}
