package app

import (
	"context"
	"fmt"
	"log/slog"

	"rigstrap/internal/sdk"
	"rigstrap/pkg/blueprint"
)

// SDKStage implements the Stage interface for the accelerator SDK stage.
type SDKStage struct {
	blueprint *blueprint.Blueprint
	installer sdk.Installer
	isDryRun  bool
}

// NewSDKStage creates a new SDK stage instance.
func NewSDKStage(blueprint *blueprint.Blueprint, installer sdk.Installer, isDryRun bool) *SDKStage {
	return &SDKStage{
		blueprint: blueprint,
		installer: installer,
		isDryRun:  isDryRun,
	}
}

func (s *SDKStage) ID() ExecutionStage {
	return StageSDK
}

func (s *SDKStage) Title() string {
	return "Installing accelerator SDK"
}

// Execute clones the SDK repository and runs its installer.
func (s *SDKStage) Execute(ctx context.Context) error {
	if err := s.installer.Install(ctx, &s.blueprint.Spec, s.isDryRun); err != nil {
		return fmt.Errorf("SDK stage failed: %w", err)
	}

	if s.isDryRun {
		fmt.Printf("%s✅ SDK simulation completed successfully%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s✅ SDK installed: %s%s\n", ColorGreen, s.blueprint.Spec.SDK.Destination, ColorReset)
	}
	slog.Info("SDK stage completed successfully", "destination", s.blueprint.Spec.SDK.Destination, "dryRun", s.isDryRun)
	return nil
}
