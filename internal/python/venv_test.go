package python

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rigstrap/internal/shell"
	"rigstrap/pkg/blueprint"
)

type recordingRunner struct {
	executed []shell.Step
}

func (r *recordingRunner) Run(ctx context.Context, step shell.Step) error {
	r.executed = append(r.executed, step)
	return nil
}

func cameraSpec(venv, requirements string) *blueprint.Spec {
	return &blueprint.Spec{
		Profile: blueprint.ProfileCamera,
		Python: blueprint.Python{
			Venv:               venv,
			Requirements:       requirements,
			BuildTools:         []string{"setuptools", "wheel"},
			SystemSitePackages: true,
		},
	}
}

func TestSteps_VenvCreatedBeforePipRuns(t *testing.T) {
	steps := Steps(cameraSpec("venv", "requirements.txt"))

	if len(steps) != 4 {
		t.Fatalf("Expected 4 steps, got %d", len(steps))
	}
	if steps[0].Name != "venv-create" {
		t.Fatalf("First step must create the venv, got %q", steps[0].Name)
	}

	// Every later step must use the venv's own pip binary
	pip := filepath.Join("venv", "bin", "pip")
	for _, step := range steps[1:] {
		if step.Cmd != pip {
			t.Errorf("Step %s: expected %q, got %q", step.Name, pip, step.Cmd)
		}
	}
}

func TestSteps_SystemSitePackages(t *testing.T) {
	steps := Steps(cameraSpec("venv", "requirements.txt"))

	cmd := steps[0].Command()
	if !strings.Contains(cmd, "--system-site-packages") {
		t.Errorf("Expected --system-site-packages in venv creation: %q", cmd)
	}

	spec := cameraSpec("venv", "requirements.txt")
	spec.Python.SystemSitePackages = false
	cmd = Steps(spec)[0].Command()
	if strings.Contains(cmd, "--system-site-packages") {
		t.Errorf("Did not expect --system-site-packages: %q", cmd)
	}
}

func TestSteps_NoBuildTools(t *testing.T) {
	spec := cameraSpec("venv", "requirements.txt")
	spec.Python.BuildTools = nil

	steps := Steps(spec)
	for _, step := range steps {
		if step.Name == "pip-install-build-tools" {
			t.Error("Did not expect build tools step for empty BuildTools")
		}
	}
}

func TestSteps_RequirementsLast(t *testing.T) {
	steps := Steps(cameraSpec("venv", "requirements.txt"))

	last := steps[len(steps)-1]
	if last.Name != "pip-install-requirements" {
		t.Errorf("Expected requirements install last, got %q", last.Name)
	}
	if got := strings.Join(last.Args, " "); got != "install -r requirements.txt" {
		t.Errorf("Unexpected requirements args: %q", got)
	}
}

func TestProvision_MissingRequirements(t *testing.T) {
	runner := &recordingRunner{}
	spec := cameraSpec("venv", filepath.Join(t.TempDir(), "requirements.txt"))

	err := Provision(context.Background(), runner, spec, false)
	if err == nil {
		t.Fatal("Expected error for missing requirements manifest")
	}
	if !strings.Contains(err.Error(), "requirements manifest not found") {
		t.Errorf("Unexpected error: %v", err)
	}
	if len(runner.executed) != 0 {
		t.Errorf("No step may run without the requirements manifest, got %d", len(runner.executed))
	}
}

func TestProvision_ExecutesInOrder(t *testing.T) {
	tmpDir := t.TempDir()
	requirements := filepath.Join(tmpDir, "requirements.txt")
	if err := os.WriteFile(requirements, []byte("opencv-python\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := &recordingRunner{}
	spec := cameraSpec(filepath.Join(tmpDir, "venv"), requirements)

	if err := Provision(context.Background(), runner, spec, false); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	wantNames := []string{"venv-create", "pip-upgrade", "pip-install-build-tools", "pip-install-requirements"}
	if len(runner.executed) != len(wantNames) {
		t.Fatalf("Expected %d steps, got %d", len(wantNames), len(runner.executed))
	}
	for i, want := range wantNames {
		if runner.executed[i].Name != want {
			t.Errorf("Step %d: expected %q, got %q", i, want, runner.executed[i].Name)
		}
	}
}

func TestProvision_DryRunExecutesNothing(t *testing.T) {
	tmpDir := t.TempDir()
	requirements := filepath.Join(tmpDir, "requirements.txt")
	if err := os.WriteFile(requirements, []byte("numpy\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := &recordingRunner{}
	if err := Provision(context.Background(), runner, cameraSpec("venv", requirements), true); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if len(runner.executed) != 0 {
		t.Errorf("Dry run must not execute steps, got %d", len(runner.executed))
	}
}

func TestDefaults(t *testing.T) {
	spec := &blueprint.Spec{Profile: blueprint.ProfileCamera}

	if got := venvDir(spec); got != blueprint.DefaultVenv {
		t.Errorf("venvDir() = %q, want %q", got, blueprint.DefaultVenv)
	}
	if got := requirementsFile(spec); got != blueprint.DefaultRequirements {
		t.Errorf("requirementsFile() = %q, want %q", got, blueprint.DefaultRequirements)
	}
}
