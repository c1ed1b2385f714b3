// Package procexec runs external command-line tools with captured output and a deadline.
package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"docarchive/internal/shared/metrics"
)

// Command describes a single external process invocation.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// Result holds the captured streams and exit code of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

const waitDelay = 2 * time.Second

// ErrTimeout is returned when the process is killed because its deadline passed.
var ErrTimeout = errors.New("process timed out")

// Run starts the command and waits for it to exit. Both output streams are
// drained into memory by the exec package while the process runs, so a chatty
// tool cannot block on a full pipe. A non-zero exit is reported through
// Result.ExitCode with a nil error; err is reserved for start failures,
// cancellation and timeouts. ErrTimeout is reported only when c.Timeout
// expired; a deadline on ctx surfaces as context.DeadlineExceeded.
func Run(ctx context.Context, c Command) (Result, error) {
	if c.Name == "" {
		return Result{}, errors.New("procexec: command name is required")
	}
	parent := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// A killed tool can leave children holding the pipes open.
	cmd.WaitDelay = waitDelay

	start := time.Now()
	runErr := cmd.Run()
	res := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}
	tool := filepath.Base(c.Name)

	if ctxErr := ctx.Err(); ctxErr != nil {
		// Only the per-command deadline counts as a tool timeout; the
		// caller's own deadline or cancellation is passed through as is.
		if parentErr := parent.Err(); parentErr != nil {
			metrics.ObserveTool(tool, "canceled", res.Duration)
			return res, fmt.Errorf("%s: %w", tool, parentErr)
		}
		metrics.ObserveTool(tool, "timeout", res.Duration)
		return res, fmt.Errorf("%s after %s: %w", tool, c.Timeout, ErrTimeout)
	}

	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		metrics.ObserveTool(tool, "start_failed", res.Duration)
		return res, fmt.Errorf("start %s: %w", tool, runErr)
	}

	outcome := "ok"
	if res.ExitCode != 0 {
		outcome = "failed"
	}
	metrics.ObserveTool(tool, outcome, res.Duration)
	return res, nil
}
