package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/huangsam/repometrics/schema"
)

// ExecCodeCounter implements the CodeCounter interface by executing a
// line counter binary installed on the machine.
type ExecCodeCounter struct {
	Command string
	Args    []string
}

var _ CodeCounter = &ExecCodeCounter{} // Compile-time check

// NewExecCodeCounter creates a counter for the given binary and leading flags.
// An empty command falls back to cloc with JSON output.
func NewExecCodeCounter(command string, args []string) *ExecCodeCounter {
	if command == "" {
		command = schema.DefaultCounterCommand
		if args == nil {
			args = schema.DefaultCounterArgs
		}
	}
	return &ExecCodeCounter{Command: command, Args: args}
}

// Run executes the counter with location as the last positional argument and returns stdout.
func (c *ExecCodeCounter) Run(ctx context.Context, location string) ([]byte, error) {
	fullArgs := append(append([]string{}, c.Args...), location)
	cmd := exec.CommandContext(ctx, c.Command, fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, NewToolError(c.Command, fmt.Sprintf("exit status %d for %q: %s", exitErr.ExitCode(), location, stderr), nil)
	} else if err != nil {
		return nil, NewToolError(c.Command, "cannot run line counter. Ensure it is installed and available on your PATH", err)
	}
	return out, nil
}

// Count implements the CodeCounter interface.
func (c *ExecCodeCounter) Count(ctx context.Context, location string) (schema.CodeMetrics, error) {
	out, err := c.Run(ctx, location)
	if err != nil {
		return schema.CodeMetrics{}, err
	}
	metrics, err := schema.ParseCodeMetrics(out)
	if err != nil {
		return schema.CodeMetrics{}, NewToolError(c.Command, "malformed report", err)
	}
	return metrics, nil
}
