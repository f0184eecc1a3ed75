package rehearsal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"rigstrap/internal/shell"
	"rigstrap/pkg/blueprint"
	"rigstrap/pkg/runtime"
)

// MockContainerRuntime is a mock implementation of the ContainerRuntime interface
type MockContainerRuntime struct {
	*mock.Mock
}

func NewMockContainerRuntime() *MockContainerRuntime {
	return &MockContainerRuntime{Mock: &mock.Mock{}}
}

func (m *MockContainerRuntime) PullImage(ctx context.Context, image string) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockContainerRuntime) RunContainer(ctx context.Context, opts runtime.RunOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockReadCloser streams canned output and returns a configured close error.
type MockReadCloser struct {
	data     []byte
	pos      int
	closeErr error
}

func (m *MockReadCloser) Read(p []byte) (int, error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func (m *MockReadCloser) Close() error {
	return m.closeErr
}

func cameraSpec() *blueprint.Spec {
	bp := blueprint.Default(blueprint.ProfileCamera)
	return &bp.Spec
}

func TestRehearse_Success(t *testing.T) {
	mockRuntime := NewMockContainerRuntime()
	mockRuntime.On("PullImage", mock.Anything, DefaultImage).Return(nil)
	mockRuntime.On("RunContainer", mock.Anything, mock.MatchedBy(func(opts runtime.RunOptions) bool {
		return opts.Image == DefaultImage && opts.WorkingDirectory == workDir
	})).Return(&MockReadCloser{data: []byte(">>> apt-update\n")}, nil)

	rehearser := NewRehearser(mockRuntime)
	if err := rehearser.Rehearse(context.Background(), cameraSpec()); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	mockRuntime.AssertExpectations(t)
}

func TestRehearse_PullFailure(t *testing.T) {
	mockRuntime := NewMockContainerRuntime()
	mockRuntime.On("PullImage", mock.Anything, DefaultImage).Return(fmt.Errorf("registry unreachable"))

	rehearser := NewRehearser(mockRuntime)
	err := rehearser.Rehearse(context.Background(), cameraSpec())
	if err == nil {
		t.Fatal("Expected error when the image pull fails")
	}
	if !strings.Contains(err.Error(), "failed to pull rehearsal image") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRehearse_NonZeroExit(t *testing.T) {
	mockRuntime := NewMockContainerRuntime()
	mockRuntime.On("PullImage", mock.Anything, DefaultImage).Return(nil)
	mockRuntime.On("RunContainer", mock.Anything, mock.Anything).
		Return(&MockReadCloser{closeErr: &runtime.ExitStatusError{Code: 100}}, nil)

	rehearser := NewRehearser(mockRuntime)
	err := rehearser.Rehearse(context.Background(), cameraSpec())
	if err == nil {
		t.Fatal("Expected error for non-zero container exit")
	}

	var exitErr *shell.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected *shell.ExitError, got %T: %v", err, err)
	}
	if exitErr.Code != 100 {
		t.Errorf("Expected exit code 100, got %d", exitErr.Code)
	}
}

func TestRehearse_CustomImage(t *testing.T) {
	mockRuntime := NewMockContainerRuntime()
	mockRuntime.On("PullImage", mock.Anything, "raspios:bookworm").Return(nil)
	mockRuntime.On("RunContainer", mock.Anything, mock.MatchedBy(func(opts runtime.RunOptions) bool {
		return opts.Image == "raspios:bookworm"
	})).Return(&MockReadCloser{}, nil)

	rehearser := NewRehearser(mockRuntime).WithImage("raspios:bookworm")
	if err := rehearser.Rehearse(context.Background(), cameraSpec()); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
}

func TestRehearse_NilSpec(t *testing.T) {
	rehearser := NewRehearser(NewMockContainerRuntime())
	if err := rehearser.Rehearse(context.Background(), nil); err == nil {
		t.Error("Expected error for nil spec")
	}
}

func TestSteps_FullSequence(t *testing.T) {
	steps := Steps(cameraSpec())

	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	joined := strings.Join(names, " ")

	// apt before venv, venv before clone, clone before installer
	for _, pair := range [][2]string{
		{"apt-update", "venv-create"},
		{"venv-create", "sdk-clone"},
		{"sdk-clone", "sdk-install"},
	} {
		if strings.Index(joined, pair[0]) >= strings.Index(joined, pair[1]) {
			t.Errorf("Step %s must come before %s: %v", pair[0], pair[1], names)
		}
	}

	if names[len(names)-1] != "sdk-install" {
		t.Errorf("Installer must be the final step, got %q", names[len(names)-1])
	}
}

func TestScript_DropsSudoAndScopesWorkdir(t *testing.T) {
	script := Script(cameraSpec())

	if strings.Contains(script, "sudo ") {
		t.Error("Rehearsal runs as root; sudo must be stripped from the script")
	}
	if !strings.Contains(script, "apt update") {
		t.Error("Script must contain the apt update step")
	}
	if !strings.Contains(script, fmt.Sprintf("cp -a %s/. %s/", blueprintMount, workDir)) {
		t.Error("Script must copy the mounted blueprint directory into the scratch dir")
	}

	// The installer runs in a subshell scoped to the clone directory
	if !strings.Contains(script, "(cd ../tappas_gcc12 && ./install.sh --skip-hailort --target-platform rpi)") {
		t.Errorf("Script missing scoped installer invocation:\n%s", script)
	}
}

func TestCleanLogLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Reading package lists...", "Reading package lists..."},
		{"docker header", string([]byte{1, 0, 0, 0, 0, 0, 0, 20}) + "Get:1 http://deb", "Get:1 http://deb"},
		{"ansi colors", "\x1b[32mdone\x1b[0m", "done"},
		{"header only", string([]byte{2, 0, 0, 0, 0, 0, 0, 0}), ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanLogLine(tt.in); got != tt.want {
				t.Errorf("cleanLogLine(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuote(t *testing.T) {
	if got := quote("--skip-hailort"); got != "--skip-hailort" {
		t.Errorf("Plain arg must not be quoted: %q", got)
	}
	if got := quote("a b"); got != "'a b'" {
		t.Errorf("quote(\"a b\") = %q, want %q", got, "'a b'")
	}
}
