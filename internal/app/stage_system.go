package app

import (
	"context"
	"fmt"
	"log/slog"

	"rigstrap/internal/shell"
	"rigstrap/internal/system"
	"rigstrap/pkg/blueprint"
)

// SystemStage implements the Stage interface for the OS package stage.
type SystemStage struct {
	blueprint *blueprint.Blueprint
	runner    shell.Runner
	isDryRun  bool
}

// NewSystemStage creates a new system stage instance.
func NewSystemStage(blueprint *blueprint.Blueprint, runner shell.Runner, isDryRun bool) *SystemStage {
	return &SystemStage{
		blueprint: blueprint,
		runner:    runner,
		isDryRun:  isDryRun,
	}
}

func (s *SystemStage) ID() ExecutionStage {
	return StageSystem
}

func (s *SystemStage) Title() string {
	return "Installing OS packages"
}

// Execute runs the apt sequence for the blueprint's profile.
func (s *SystemStage) Execute(ctx context.Context) error {
	if err := system.Provision(ctx, s.runner, &s.blueprint.Spec, s.isDryRun); err != nil {
		return fmt.Errorf("system stage failed: %w", err)
	}

	if s.isDryRun {
		fmt.Printf("%s✅ System package simulation completed successfully%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s✅ OS packages installed (%d packages + %s)%s\n", ColorGreen, len(s.blueprint.Spec.System.Packages), s.blueprint.Spec.System.MetaPackage, ColorReset)
	}
	slog.Info("System stage completed successfully", "metaPackage", s.blueprint.Spec.System.MetaPackage, "dryRun", s.isDryRun)
	return nil
}
