package runtime

import (
	"context"
	"fmt"
	"io"
)

// RunOptions defines the parameters for running a rehearsal container.
type RunOptions struct {
	Image            string
	Command          []string
	VolumeMounts     map[string]string
	EnvVars          map[string]string
	WorkingDirectory string
}

// ContainerRuntime defines the contract for container operations. The reader
// returned by RunContainer streams combined output; closing it waits for the
// container and reports a non-zero exit as *ExitStatusError.
type ContainerRuntime interface {
	PullImage(ctx context.Context, image string) error
	RunContainer(ctx context.Context, opts RunOptions) (io.ReadCloser, error)
}

// ExitStatusError reports a container that finished with a non-zero exit
// status.
type ExitStatusError struct {
	Code int64
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("container exited with status %d", e.Code)
}
