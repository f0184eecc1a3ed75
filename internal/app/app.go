package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/google/uuid"

	"rigstrap/internal/parser"
	"rigstrap/internal/shell"
	"rigstrap/pkg/blueprint"
)

const (
	// Color codes for console output
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
)

// Options controls an Apply run.
type Options struct {
	DryRun      bool
	RetainState bool
	Rehearse    bool
	Image       string
	Profile     blueprint.Profile
}

// Apply orchestrates the complete provisioning sequence using a stateful
// execution engine with stage-granular resume. blueprintPath may be empty, in
// which case the built-in default blueprint for opts.Profile runs.
func Apply(ctx context.Context, blueprintPath string, opts Options) error {
	bp, err := resolveBlueprint(blueprintPath, opts.Profile)
	if err != nil {
		return err
	}
	slog.Info("Starting rigstrap apply", "blueprint", bp.Metadata.Name, "profile", bp.Spec.Profile, "dryRun", opts.DryRun, "rehearse", opts.Rehearse)

	factory := NewProviderFactory()

	// Rehearsal replays the whole sequence in a container and never touches
	// host state, including the state file.
	if opts.Rehearse {
		return rehearse(ctx, factory, bp, opts.Image)
	}

	if !opts.DryRun {
		if err := ValidatePrerequisites(&bp.Spec); err != nil {
			return err
		}
	}

	runner, err := factory.GetRunner("host")
	if err != nil {
		return err
	}

	stages := buildStages(bp, factory, runner, opts.DryRun)
	order := stageOrder(stages)

	// Load existing state or create new state
	state, err := loadState()
	if err != nil {
		return fmt.Errorf("failed to load execution state: %w", err)
	}

	if state == nil {
		runID := uuid.New().String()
		state = newState(blueprintPath, string(bp.Spec.Profile), runID)
		slog.Info("Starting new rigstrap run", "runId", runID, "blueprintPath", blueprintPath)
	} else {
		nextStage := state.getNextStage(order)
		fmt.Printf("%s📋 State file found. Resuming from stage: %s%s\n", ColorYellow, nextStage, ColorReset)
		slog.Info("Resuming rigstrap run", "runId", state.RunID, "nextStage", nextStage, "lastStage", state.LastSuccessfulStage)
		fmt.Println()
	}

	if opts.DryRun {
		fmt.Printf("%s🔍 DRY RUN MODE - No actual changes will be made%s\n", ColorYellow, ColorReset)
		fmt.Println()
	}

	for i, stage := range stages {
		if state.shouldSkipStage(order, stage.ID()) {
			fmt.Printf("%s⏭️  Stage %d: %s (skipped - already completed)%s\n", ColorGreen, i+1, stage.ID(), ColorReset)
			fmt.Println()
			continue
		}

		fmt.Printf("%s🚧 Stage %d: %s%s\n", stageColor(stage.ID()), i+1, stage.Title(), ColorReset)
		if err := stage.Execute(ctx); err != nil {
			return err
		}

		// Update state after successful completion
		state.LastSuccessfulStage = stage.ID()
		if !opts.DryRun {
			if err := saveState(state); err != nil {
				return fmt.Errorf("failed to save state after %s stage: %w", stage.ID(), err)
			}
		}
		fmt.Println()
	}

	// Mark the run as completed and clean up the state file
	state.LastSuccessfulStage = StageCompleted
	if !opts.DryRun {
		if opts.RetainState {
			// Keep final state for auditing purposes
			if err := saveState(state); err != nil {
				slog.Warn("Failed to save final state", "error", err)
			} else {
				slog.Info("State file retained for auditing", "file", StateFileName)
			}
		} else {
			if err := removeStateFile(); err != nil {
				slog.Warn("Failed to clean up state file", "error", err)
			}
		}
	}

	if opts.DryRun {
		fmt.Printf("%s🎉 DRY RUN COMPLETED - All stages simulated successfully!%s\n", ColorGreen, ColorReset)
		fmt.Printf("%sNo packages were installed and no files were written.%s\n", ColorYellow, ColorReset)
	} else {
		fmt.Printf("%s🎉 RIGSTRAP APPLY COMPLETED SUCCESSFULLY!%s\n", ColorGreen, ColorReset)
		fmt.Printf("%s✨ Host '%s' is provisioned for the camera workload!%s\n", ColorWhite, bp.Metadata.Name, ColorReset)
	}

	slog.Info("rigstrap apply completed successfully", "blueprintName", bp.Metadata.Name, "dryRun", opts.DryRun)
	return nil
}

// resolveBlueprint parses the blueprint file, or falls back to the built-in
// default sequence when no file is given.
func resolveBlueprint(blueprintPath string, profile blueprint.Profile) (*blueprint.Blueprint, error) {
	if blueprintPath == "" {
		if profile == "" {
			profile = blueprint.ProfileCamera
		}
		slog.Info("No blueprint file given, using built-in defaults", "profile", profile)
		return blueprint.Default(profile), nil
	}

	bp, err := parser.Parse(blueprintPath)
	if err != nil {
		return nil, fmt.Errorf("blueprint parsing failed: %w", err)
	}
	slog.Info("Blueprint parsed successfully", "name", bp.Metadata.Name, "kind", bp.Kind)
	return bp, nil
}

// buildStages assembles the ordered stage list for the blueprint's profile.
// The python stage only exists for camera-profile blueprints; the SDK stage
// always runs last so the meta-package is present before its installer.
func buildStages(bp *blueprint.Blueprint, factory *ProviderFactory, runner shell.Runner, isDryRun bool) []Stage {
	stages := []Stage{NewSystemStage(bp, runner, isDryRun)}
	if bp.Spec.HasPython() {
		stages = append(stages, NewPythonStage(bp, runner, isDryRun))
	}
	stages = append(stages, NewSDKStage(bp, factory.GetSDKInstaller(runner), isDryRun))
	return stages
}

func stageColor(stage ExecutionStage) string {
	switch stage {
	case StageSystem:
		return ColorCyan
	case StagePython:
		return ColorPurple
	case StageSDK:
		return ColorRed
	default:
		return ColorBlue
	}
}

func stageOrder(stages []Stage) []ExecutionStage {
	order := make([]ExecutionStage, 0, len(stages))
	for _, s := range stages {
		order = append(order, s.ID())
	}
	return order
}

// rehearse replays the blueprint in a container.
func rehearse(ctx context.Context, factory *ProviderFactory, bp *blueprint.Blueprint, image string) error {
	fmt.Printf("%s🧪 REHEARSAL MODE - Replaying sequence in a container%s\n", ColorYellow, ColorReset)

	rehearser, err := factory.GetRehearser(image)
	if err != nil {
		return fmt.Errorf("rehearsal initialization failed: %w", err)
	}

	if err := rehearser.Rehearse(ctx, &bp.Spec); err != nil {
		return fmt.Errorf("rehearsal failed: %w", err)
	}

	fmt.Printf("%s🎉 REHEARSAL COMPLETED - Sequence ran cleanly in the container%s\n", ColorGreen, ColorReset)
	return nil
}

// ValidatePrerequisites checks that the external tools the sequence invokes
// are present before any step runs.
func ValidatePrerequisites(spec *blueprint.Spec) error {
	slog.Info("Validating rigstrap prerequisites")

	required := []string{"sudo", "apt"}
	if spec.HasPython() {
		required = append(required, "python3")
	}

	for _, tool := range required {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("prerequisite check failed: %s not found in PATH: %w", tool, err)
		}
	}

	slog.Info("All prerequisites validated successfully")
	return nil
}
