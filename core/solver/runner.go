package solver

import (
	"context"
	"time"
)

// CapturedOutput holds the streams collected from one finished process.
type CapturedOutput struct {
	Stdout string
	Stderr string
}

// ProcessRunner abstracts spawning one external process. Implementations
// must capture both streams incrementally, enforce the timeout by killing
// the process, and honor context cancellation. Tests substitute an
// in-process stub.
type ProcessRunner interface {
	Run(ctx context.Context, command string, args []string, workDir string, timeout time.Duration) (CapturedOutput, error)
}
