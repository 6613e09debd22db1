// launcher.go wraps child process startup behind an interface so the
// orchestrator can run against a test double.
package execute

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Process is a handle on a running child command. Kill must be callable at
// any time, including concurrently with reads.
type Process interface {
	Stdout() io.Reader
	Stderr() io.Reader
	Wait() error
	Kill() error
}

// Launcher starts child processes in a working directory.
type Launcher interface {
	Launch(ctx context.Context, dir string, args []string) (Process, error)
}

// CLILauncher launches the claude binary via os/exec.
type CLILauncher struct {
	Bin string // binary name or path, e.g. "claude"
}

type cliProcess struct {
	cmd    *exec.Cmd
	stdout io.Reader
	stderr io.Reader
}

func (p *cliProcess) Stdout() io.Reader { return p.stdout }
func (p *cliProcess) Stderr() io.Reader { return p.stderr }
func (p *cliProcess) Wait() error       { return p.cmd.Wait() }

func (p *cliProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// Launch starts the binary with the given args, working directory set to
// dir, and stdout/stderr captured as separate pipes. The context also kills
// the process when cancelled.
func (l *CLILauncher) Launch(ctx context.Context, dir string, args []string) (Process, error) {
	cmd := exec.CommandContext(ctx, l.Bin, args...)
	cmd.Dir = dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", l.Bin, err)
	}

	return &cliProcess{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}
