package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/haukened/leaksift/internal/leaks/common/clock"
	"github.com/haukened/leaksift/internal/leaks/common/log"
)

// Error message constants for consistent error handling
const (
	errNoCommand    = "no command provided"
	errLaunchFailed = "running %s: %w"
)

// ExecFunc runs argv to completion and returns its combined stdout+stderr,
// its exit code, and any launch or I/O error. A non-zero exit code is not an
// error: the leak detector exits non-zero whenever it finds leaks.
type ExecFunc func(ctx context.Context, argv []string) (output []byte, exitCode int, err error)

// Runner executes the wrapped command as a single child process and buffers
// its combined output in full before returning. No streaming, no timeout;
// the child runs to completion or until the parent is interrupted.
type Runner struct {
	clock  clock.Clock
	logger log.Logger
	exec   ExecFunc
}

// Capture is the buffered result of one child process run.
type Capture struct {
	Output   string        // combined stdout+stderr, verbatim
	ExitCode int           // the child's own exit code, recorded but never propagated
	Duration time.Duration // child wall-clock time
}

// Options defines configuration parameters for the runner.
// All fields are optional; Exec exists to inject a fake in tests.
type Options struct {
	Clock  clock.Clock
	Logger log.Logger
	Exec   ExecFunc
}

// New creates a Runner with the specified options.
func New(opts Options) *Runner {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	if opts.Exec == nil {
		opts.Exec = systemExec
	}
	return &Runner{
		clock:  opts.Clock,
		logger: opts.Logger,
		exec:   opts.Exec,
	}
}

// Run executes argv and returns the captured output. The first element of
// argv is the program; the rest are forwarded verbatim, in order.
func (r *Runner) Run(ctx context.Context, argv []string) (Capture, error) {
	if len(argv) == 0 {
		return Capture{}, errors.New(errNoCommand)
	}

	r.logger.Debug(map[string]any{"command": argv[0], "args": argv[1:]}, "child_start")

	start := r.clock.Now()
	out, code, err := r.exec(ctx, argv)
	elapsed := r.clock.Now().Sub(start)
	if err != nil {
		return Capture{}, fmt.Errorf(errLaunchFailed, argv[0], err)
	}

	r.logger.Debug(map[string]any{
		"command":   argv[0],
		"exit_code": code,
		"bytes":     len(out),
		"duration":  elapsed,
	}, "child_done")

	return Capture{
		Output:   string(out),
		ExitCode: code,
		Duration: elapsed,
	}, nil
}

// systemExec is the default ExecFunc, backed by os/exec with stderr merged
// into stdout.
func systemExec(ctx context.Context, argv []string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The child ran and exited non-zero. Its output is still valid
		// input for filtering.
		return out, exitErr.ExitCode(), nil
	}
	if err != nil {
		return nil, 0, err
	}
	return out, 0, nil
}
