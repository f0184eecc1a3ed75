package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rigstrap/internal/app"
	"rigstrap/internal/errors"
	"rigstrap/internal/parser"
	"rigstrap/internal/python"
	"rigstrap/internal/shell"
	"rigstrap/internal/system"
	"rigstrap/pkg/blueprint"
)

// version is set at build time via ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "rigstrap",
	Short:   "rigstrap - Raspberry Pi camera/AI host provisioning tool",
	Version: version,
	Long: `rigstrap provisions a Raspberry Pi-class Debian host for a Hailo-accelerated
camera workload: OS packages, the Python virtual environment, and the tappas
SDK, executed as an ordered fail-fast sequence.`,
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Run the complete provisioning sequence",
	Long: `Apply executes the full provisioning sequence for the selected profile:
OS packages (including the hailo-all meta-package), the Python virtual
environment for camera rigs, and the tappas SDK clone and build.

Without --file the built-in default blueprint runs. The sequence stops at the
first failing step and the process exits with that step's exit status.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		retainState, _ := cmd.Flags().GetBool("retain-state")
		rehearse, _ := cmd.Flags().GetBool("rehearse")
		image, _ := cmd.Flags().GetString("image")
		profile, _ := cmd.Flags().GetString("profile")

		opts := app.Options{
			DryRun:      dryRun,
			RetainState: retainState,
			Rehearse:    rehearse,
			Image:       image,
			Profile:     blueprint.Profile(profile),
		}

		if err := app.Apply(cmd.Context(), file, opts); err != nil {
			errors.HandleError(err)
			os.Exit(shell.ExitCode(err))
		}
	},
}

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Install OS packages only",
	Long: `System runs just the apt stage: package index update, optional full
upgrade, the accelerator meta-package and the blueprint's package lists.`,
	Run: func(cmd *cobra.Command, args []string) {
		spec, ok := loadSpec(cmd)
		if !ok {
			return
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		fmt.Printf("Installing OS packages for profile: %s\n", spec.Profile)
		if err := system.Provision(cmd.Context(), shell.NewHostRunner(), spec, dryRun); err != nil {
			errors.HandleError(err)
			os.Exit(shell.ExitCode(err))
		}
		fmt.Println("OS packages installed successfully.")
	},
}

var pythonCmd = &cobra.Command{
	Use:   "python",
	Short: "Set up the Python virtual environment only",
	Long: `Python runs just the virtual environment stage: venv creation, pip
upgrade, build tools, and the requirements manifest. The manifest must exist
in the working directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		spec, ok := loadSpec(cmd)
		if !ok {
			return
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		fmt.Printf("Setting up Python environment: %s\n", spec.Python.Venv)
		if err := python.Provision(cmd.Context(), shell.NewHostRunner(), spec, dryRun); err != nil {
			errors.HandleError(err)
			os.Exit(shell.ExitCode(err))
		}
		fmt.Println("Python environment ready.")
	},
}

var sdkCmd = &cobra.Command{
	Use:   "sdk",
	Short: "Clone and build the accelerator SDK only",
	Long: `SDK runs just the accelerator stage: clones the tappas repository into
the configured destination and runs its install script with the configured
flags. The hailo-all meta-package must already be installed.`,
	Run: func(cmd *cobra.Command, args []string) {
		spec, ok := loadSpec(cmd)
		if !ok {
			return
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		fmt.Printf("Installing SDK from: %s\n", spec.SDK.Repo)
		installer := app.NewProviderFactory().GetSDKInstaller(shell.NewHostRunner())
		if err := installer.Install(cmd.Context(), spec, dryRun); err != nil {
			errors.HandleError(err)
			os.Exit(shell.ExitCode(err))
		}
		fmt.Printf("SDK installed to: %s\n", spec.SDK.Destination)
	},
}

// loadSpec resolves the spec for single-stage commands: the blueprint file if
// given, the built-in default otherwise.
func loadSpec(cmd *cobra.Command) (*blueprint.Spec, bool) {
	file, _ := cmd.Flags().GetString("file")
	profile, _ := cmd.Flags().GetString("profile")

	if file == "" {
		p := blueprint.Profile(profile)
		if p == "" {
			p = blueprint.ProfileCamera
		}
		return &blueprint.Default(p).Spec, true
	}

	bp, err := parser.Parse(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return &bp.Spec, true
}

func init() {
	for _, cmd := range []*cobra.Command{applyCmd, systemCmd, pythonCmd, sdkCmd} {
		cmd.Flags().StringP("file", "f", "", "Path to the blueprint YAML file (built-in defaults when omitted)")
		cmd.Flags().Bool("dry-run", false, "Print the steps without executing any of them")
		cmd.Flags().String("profile", "", "Provisioning profile when no blueprint file is given (base|camera)")
		rootCmd.AddCommand(cmd)
	}

	applyCmd.Flags().Bool("retain-state", false, "Keep the state file after successful completion for auditing purposes")
	applyCmd.Flags().Bool("rehearse", false, "Replay the sequence inside a throwaway container instead of the host")
	applyCmd.Flags().String("image", "", "Container image for --rehearse (default "+`"`+"debian:bookworm"+`"`+")")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
