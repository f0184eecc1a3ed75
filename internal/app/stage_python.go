package app

import (
	"context"
	"fmt"
	"log/slog"

	"rigstrap/internal/python"
	"rigstrap/internal/shell"
	"rigstrap/pkg/blueprint"
)

// PythonStage implements the Stage interface for the virtual environment
// stage. It only runs for camera-profile blueprints.
type PythonStage struct {
	blueprint *blueprint.Blueprint
	runner    shell.Runner
	isDryRun  bool
}

// NewPythonStage creates a new python stage instance.
func NewPythonStage(blueprint *blueprint.Blueprint, runner shell.Runner, isDryRun bool) *PythonStage {
	return &PythonStage{
		blueprint: blueprint,
		runner:    runner,
		isDryRun:  isDryRun,
	}
}

func (s *PythonStage) ID() ExecutionStage {
	return StagePython
}

func (s *PythonStage) Title() string {
	return "Setting up Python environment"
}

// Execute creates the venv and installs the Python dependencies into it.
func (s *PythonStage) Execute(ctx context.Context) error {
	if err := python.Provision(ctx, s.runner, &s.blueprint.Spec, s.isDryRun); err != nil {
		return fmt.Errorf("python stage failed: %w", err)
	}

	if s.isDryRun {
		fmt.Printf("%s✅ Python environment simulation completed successfully%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s✅ Python environment ready: %s%s\n", ColorGreen, s.blueprint.Spec.Python.Venv, ColorReset)
	}
	slog.Info("Python stage completed successfully", "venv", s.blueprint.Spec.Python.Venv, "dryRun", s.isDryRun)
	return nil
}
