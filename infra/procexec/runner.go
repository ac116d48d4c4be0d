package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/dineshvn/metroplan/core/solver"
	"github.com/dineshvn/metroplan/infra/logger"
)

// Runner spawns external processes with exec.CommandContext. Output streams
// are drained incrementally so a chatty process never blocks on a full pipe.
type Runner struct {
	log logger.Logger
}

// New creates a Runner.
func New(log logger.Logger) *Runner {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Runner{log: log}
}

// Run executes the command in workDir and waits for it to exit. A process
// still running after timeout is killed and reported as an error; partial
// output captured up to that point is returned either way.
func (r *Runner) Run(ctx context.Context, command string, args []string, workDir string, timeout time.Duration) (solver.CapturedOutput, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}

	var out solver.CapturedOutput
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return out, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return out, fmt.Errorf("stderr pipe: %w", err)
	}

	r.log.Debugf("spawning %s %v in %s", command, args, workDir)
	if err := cmd.Start(); err != nil {
		return out, fmt.Errorf("start %s: %w", command, err)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(&stdoutBuf, stdout)
	}()
	go func() {
		defer wg.Done()
		_, _ = io.Copy(&stderrBuf, stderr)
	}()
	wg.Wait()

	waitErr := cmd.Wait()
	out.Stdout = stdoutBuf.String()
	out.Stderr = stderrBuf.String()

	if waitErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return out, fmt.Errorf("%s timed out after %s", command, timeout)
		}
		return out, fmt.Errorf("%s: %w", command, waitErr)
	}
	return out, nil
}
