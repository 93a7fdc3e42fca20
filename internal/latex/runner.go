package latex

import (
	"context"
	"os/exec"
	"time"
)

// Runner runs an external program inside dir and returns its combined output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs real processes. The process is killed when ctx is done.
type ExecRunner struct {
	// WaitDelay bounds how long output pipes are drained after a kill.
	WaitDelay time.Duration
}

func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = 5 * time.Second
	}
	return cmd.CombinedOutput()
}

// BinaryAvailable reports whether binary resolves on PATH.
func BinaryAvailable(binary string) error {
	_, err := exec.LookPath(binary)
	return err
}
