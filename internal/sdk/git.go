// Package sdk clones and builds the Hailo tappas SDK.
package sdk

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"rigstrap/internal/shell"
	"rigstrap/pkg/blueprint"
)

// GitInstaller implements the Installer interface using go-git for the clone
// and a shell runner for the SDK's install script.
type GitInstaller struct {
	runner shell.Runner
}

// NewGitInstaller creates a GitInstaller that runs the install script through
// the given runner.
func NewGitInstaller(runner shell.Runner) *GitInstaller {
	return &GitInstaller{runner: runner}
}

// Install clones the SDK repository into the configured destination and runs
// its installer with the configured flags. Cloning into an existing
// destination fails the run; re-running rigstrap after a partial failure past
// the clone requires removing the clone directory first.
func (g *GitInstaller) Install(ctx context.Context, spec *blueprint.Spec, isDryRun bool) error {
	if spec == nil {
		return fmt.Errorf("spec cannot be nil")
	}

	dest := spec.SDK.Destination

	if isDryRun {
		fmt.Printf("DRY RUN: Would clone %s into %s\n", spec.SDK.Repo, dest)
		fmt.Printf("DRY RUN: Would execute: %s\n", InstallerStep(spec).Command())
		return nil
	}

	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("SDK destination already exists: %s (remove it to re-clone)", dest)
	}

	slog.Info("Cloning SDK repository", "repo", spec.SDK.Repo, "destination", dest, "branch", spec.SDK.Branch)

	cloneOpts := &git.CloneOptions{
		URL:      spec.SDK.Repo,
		Progress: os.Stdout,
	}
	if spec.SDK.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(spec.SDK.Branch)
		cloneOpts.SingleBranch = true
	}

	if _, err := git.PlainCloneContext(ctx, dest, false, cloneOpts); err != nil {
		return fmt.Errorf("failed to clone SDK repository: %w", err)
	}

	slog.Info("SDK repository cloned", "destination", dest)

	step := InstallerStep(spec)
	slog.Info("Running SDK installer", "step", step.Name, "command", step.Command(), "dir", step.Dir)
	if err := g.runner.Run(ctx, step); err != nil {
		return fmt.Errorf("SDK installer failed: %w", err)
	}

	slog.Info("SDK installed successfully", "destination", dest)
	return nil
}

// InstallerStep returns the install-script step executed inside the clone.
func InstallerStep(spec *blueprint.Spec) shell.Step {
	return shell.Step{
		Name: "sdk-install",
		Dir:  spec.SDK.Destination,
		Cmd:  spec.SDK.Installer,
		Args: spec.SDK.InstallerArgs,
	}
}

// CloneStep returns the shell equivalent of the clone, used when the sequence
// is replayed in a container instead of through go-git.
func CloneStep(spec *blueprint.Spec) shell.Step {
	args := []string{"clone"}
	if spec.SDK.Branch != "" {
		args = append(args, "--branch", spec.SDK.Branch, "--single-branch")
	}
	args = append(args, spec.SDK.Repo, spec.SDK.Destination)
	return shell.Step{Name: "sdk-clone", Cmd: "git", Args: args}
}

var _ Installer = (*GitInstaller)(nil)
