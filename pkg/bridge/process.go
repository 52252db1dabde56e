package bridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
)

// Process is a helper started as a child process. It embeds the Client that
// talks to it over stdin/stdout.
type Process struct {
	*Client

	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderrDone chan struct{}
}

// Start runs the helper command and connects a Client to it. The helper's
// stderr is forwarded to the debug log.
func Start(ctx context.Context, command string, args []string, opts ...ClientOption) (*Process, error) {
	if command == "" {
		return nil, errors.New("no helper command configured")
	}

	cmd := exec.CommandContext(ctx, command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open helper stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open helper stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open helper stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start helper %q: %w", command, err)
	}
	slog.Debug("Started helper", "command", command, "args", args, "pid", cmd.Process.Pid)

	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			slog.Debug("Helper stderr", "line", scanner.Text())
		}
	}()

	return &Process{
		Client:     NewClient(stdout, stdin, opts...),
		cmd:        cmd,
		stdin:      stdin,
		stderrDone: stderrDone,
	}, nil
}

// Close closes the helper's stdin and waits for it to exit.
func (p *Process) Close() error {
	if err := p.stdin.Close(); err != nil {
		slog.Debug("Failed to close helper stdin", "error", err)
	}
	<-p.Done()
	<-p.stderrDone
	if err := p.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("helper exited with code %d", exitErr.ExitCode())
		}
		return err
	}
	return nil
}
