package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildCLI compiles the rigstrap binary into dir and returns its path.
func buildCLI(t *testing.T, dir string) string {
	t.Helper()

	binaryPath := filepath.Join(dir, "rigstrap")
	buildCmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/rigstrap")
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI binary: %v\n%s", err, output)
	}
	return binaryPath
}

// runCLI runs the binary in workDir with an isolated log directory and returns
// the combined output and exit code.
func runCLI(t *testing.T, binaryPath, workDir string, args ...string) (string, int) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "RIGSTRAP_LOG_DIR="+workDir, "NO_COLOR=1")
	output, err := cmd.CombinedOutput()

	exitCode := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			t.Fatalf("Failed to run CLI: %v\n%s", err, output)
		}
		exitCode = exitErr.ExitCode()
	}
	return string(output), exitCode
}

func TestCLI_Apply_BlueprintNotFound(t *testing.T) {
	tempDir := t.TempDir()
	binaryPath := buildCLI(t, tempDir)

	output, exitCode := runCLI(t, binaryPath, tempDir, "apply", "-f", "missing.yaml")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for missing blueprint")
	}

	expectedParts := []string{
		"Error:",
		"blueprint parsing failed",
		"blueprint file not found: missing.yaml",
	}
	for _, part := range expectedParts {
		if !strings.Contains(output, part) {
			t.Errorf("Expected output to contain %q, but got: %s", part, output)
		}
	}

	// Verify log file was created in the isolated log directory
	logFile := filepath.Join(tempDir, "rigstrap.log")
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Error("Expected rigstrap.log to be created")
	}
}

func TestCLI_Apply_InvalidBlueprint(t *testing.T) {
	tempDir := t.TempDir()
	binaryPath := buildCLI(t, tempDir)

	blueprintContent := `apiVersion: v1
kind: WrongKind
metadata:
  name: broken-rig
spec:
  profile: camera
  system:
    metaPackage: hailo-all
    packages:
      - ffmpeg
  sdk:
    repo: https://github.com/hailo-ai/tappas_gcc12.git
    destination: ../tappas_gcc12
    installer: ./install.sh
    installerArgs:
      - --skip-hailort
      - --target-platform
      - rpi
`
	blueprintPath := filepath.Join(tempDir, "rigstrap.yaml")
	if err := os.WriteFile(blueprintPath, []byte(blueprintContent), 0644); err != nil {
		t.Fatal(err)
	}

	output, exitCode := runCLI(t, binaryPath, tempDir, "apply", "-f", blueprintPath)

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for invalid blueprint")
	}
	if !strings.Contains(output, "must be 'Blueprint'") {
		t.Errorf("Expected kind validation message, got: %s", output)
	}
}

func TestCLI_Python_MissingRequirements(t *testing.T) {
	tempDir := t.TempDir()
	binaryPath := buildCLI(t, tempDir)

	// Default camera spec with no requirements.txt in the working directory
	output, exitCode := runCLI(t, binaryPath, tempDir, "python")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for missing requirements manifest")
	}
	if !strings.Contains(output, "requirements manifest not found") {
		t.Errorf("Expected requirements error, got: %s", output)
	}

	// The venv must not have been created
	if _, err := os.Stat(filepath.Join(tempDir, "venv")); !os.IsNotExist(err) {
		t.Error("Expected no venv directory after failed precondition")
	}
}

func TestCLI_SDK_DestinationExists(t *testing.T) {
	tempDir := t.TempDir()
	binaryPath := buildCLI(t, tempDir)

	workDir := filepath.Join(tempDir, "work")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		t.Fatal(err)
	}
	// Pre-existing clone destination
	if err := os.MkdirAll(filepath.Join(tempDir, "tappas_gcc12"), 0755); err != nil {
		t.Fatal(err)
	}

	output, exitCode := runCLI(t, binaryPath, workDir, "sdk")

	if exitCode == 0 {
		t.Error("Expected non-zero exit code for existing SDK destination")
	}
	if !strings.Contains(output, "already exists") {
		t.Errorf("Expected destination-exists error, got: %s", output)
	}
}

func TestCLI_Apply_DryRun(t *testing.T) {
	tempDir := t.TempDir()
	binaryPath := buildCLI(t, tempDir)

	// The camera profile's python stage requires the manifest even in dry run
	if err := os.WriteFile(filepath.Join(tempDir, "requirements.txt"), []byte("numpy\n"), 0644); err != nil {
		t.Fatal(err)
	}

	output, exitCode := runCLI(t, binaryPath, tempDir, "apply", "--dry-run")

	if exitCode != 0 {
		t.Fatalf("Expected dry run to succeed, exit %d: %s", exitCode, output)
	}

	expectedParts := []string{
		"DRY RUN MODE",
		"apt update",
		"hailo-all",
		"--skip-hailort",
		"DRY RUN COMPLETED",
	}
	for _, part := range expectedParts {
		if !strings.Contains(output, part) {
			t.Errorf("Expected output to contain %q, but got: %s", part, output)
		}
	}

	// Dry run must not leave a state file behind
	if _, err := os.Stat(filepath.Join(tempDir, ".rigstrap.state.json")); !os.IsNotExist(err) {
		t.Error("Expected no state file after dry run")
	}
}

func TestCLI_Apply_BaseProfileDryRun(t *testing.T) {
	tempDir := t.TempDir()
	binaryPath := buildCLI(t, tempDir)

	output, exitCode := runCLI(t, binaryPath, tempDir, "apply", "--dry-run", "--profile", "base")

	if exitCode != 0 {
		t.Fatalf("Expected dry run to succeed, exit %d: %s", exitCode, output)
	}
	if strings.Contains(output, "venv") {
		t.Errorf("Base profile must not include the python stage, got: %s", output)
	}
	if !strings.Contains(output, "hailo-all") {
		t.Errorf("Expected meta-package install, got: %s", output)
	}
}
