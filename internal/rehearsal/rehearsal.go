// Package rehearsal replays a blueprint's provisioning sequence inside a
// throwaway container, so an operator can validate the step list without
// mutating the host.
package rehearsal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"rigstrap/internal/python"
	"rigstrap/internal/sdk"
	"rigstrap/internal/shell"
	"rigstrap/internal/system"
	"rigstrap/pkg/blueprint"
	"rigstrap/pkg/runtime"
)

const (
	// DefaultImage is the rehearsal base image. A Raspberry Pi OS or custom
	// image with the Hailo apt repository configured gives a higher-fidelity
	// rehearsal; plain Debian still validates the sequence shape.
	DefaultImage = "debian:bookworm"

	// blueprintMount is where the host working directory (requirements
	// manifest included) is mounted inside the container.
	blueprintMount = "/blueprint"

	// workDir is the scratch directory the sequence runs in. The mounted host
	// directory is copied here first so the rehearsal never writes back to
	// the host.
	workDir = "/rig"
)

// Rehearser runs the full provisioning sequence in a container.
type Rehearser struct {
	containerRuntime runtime.ContainerRuntime
	image            string
}

// NewRehearser creates a Rehearser backed by the given container runtime.
func NewRehearser(containerRuntime runtime.ContainerRuntime) *Rehearser {
	return &Rehearser{
		containerRuntime: containerRuntime,
		image:            DefaultImage,
	}
}

// WithImage overrides the rehearsal base image.
func (r *Rehearser) WithImage(image string) *Rehearser {
	r.image = image
	return r
}

// Rehearse pulls the base image and executes the blueprint's step sequence in
// a single fail-fast shell session inside a container. A non-zero exit of any
// step aborts the session and is reported as a *shell.ExitError, so rehearsal
// failures propagate exactly like host failures.
func (r *Rehearser) Rehearse(ctx context.Context, spec *blueprint.Spec) error {
	if spec == nil {
		return fmt.Errorf("spec cannot be nil")
	}

	if err := r.containerRuntime.PullImage(ctx, r.image); err != nil {
		return fmt.Errorf("failed to pull rehearsal image: %w", err)
	}

	hostDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	absHostDir, err := filepath.Abs(hostDir)
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	script := Script(spec)
	slog.Info("Starting rehearsal", "image", r.image, "steps", len(Steps(spec)))

	opts := runtime.RunOptions{
		Image:   r.image,
		Command: []string{"/bin/sh", "-ec", script},
		VolumeMounts: map[string]string{
			absHostDir: blueprintMount,
		},
		EnvVars: map[string]string{
			"DEBIAN_FRONTEND": "noninteractive",
		},
		WorkingDirectory: workDir,
	}

	reader, err := r.containerRuntime.RunContainer(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to run rehearsal container: %w", err)
	}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if line := cleanLogLine(scanner.Text()); line != "" {
			slog.Info("Rehearsal output", "line", line)
		}
	}
	if err := scanner.Err(); err != nil {
		reader.Close() // Best effort cleanup
		return fmt.Errorf("error reading rehearsal output: %w", err)
	}

	if err := reader.Close(); err != nil {
		var statusErr *runtime.ExitStatusError
		if errors.As(err, &statusErr) {
			return &shell.ExitError{Step: "rehearsal", Code: int(statusErr.Code), Err: err}
		}
		return fmt.Errorf("rehearsal failed: %w", err)
	}

	slog.Info("Rehearsal completed successfully")
	return nil
}

// Steps returns the complete ordered step list the rehearsal replays: the apt
// sequence, the venv sequence for camera profiles, then the SDK clone and
// installer.
func Steps(spec *blueprint.Spec) []shell.Step {
	steps := system.Steps(spec)
	if spec.HasPython() {
		steps = append(steps, python.Steps(spec)...)
	}
	steps = append(steps, sdk.CloneStep(spec), sdk.InstallerStep(spec))
	return steps
}

// Script renders the step list as a fail-fast shell script. The container
// runs as root, so a leading sudo is dropped; steps with a working directory
// run in a subshell so the cd does not leak into later steps.
func Script(spec *blueprint.Spec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "cp -a %s/. %s/\n", blueprintMount, workDir)

	for _, step := range Steps(spec) {
		cmd := step.Cmd
		args := step.Args
		if cmd == "sudo" && len(args) > 0 {
			cmd = args[0]
			args = args[1:]
		}

		line := quote(cmd)
		for _, arg := range args {
			line += " " + quote(arg)
		}

		fmt.Fprintf(&b, "echo '>>> %s'\n", step.Name)
		if step.Dir != "" {
			fmt.Fprintf(&b, "(cd %s && %s)\n", quote(step.Dir), line)
		} else {
			fmt.Fprintf(&b, "%s\n", line)
		}
	}

	return b.String()
}

var plainArg = regexp.MustCompile(`^[a-zA-Z0-9._/=:@%^,+-]+$`)

func quote(s string) string {
	if plainArg.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ansiRegex matches ANSI escape sequences in container output.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// cleanLogLine removes Docker multiplexing headers, ANSI escape sequences and
// control characters from a container log line.
func cleanLogLine(line string) string {
	if len(line) == 0 {
		return ""
	}

	// Docker log lines carry an 8-byte stream header: [TYPE][0][0][0][SIZE]
	if line[0] == 1 || line[0] == 2 {
		if len(line) <= 8 {
			return ""
		}
		line = line[8:]
	}

	line = ansiRegex.ReplaceAllString(line, "")
	line = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, line)

	return strings.TrimSpace(line)
}
