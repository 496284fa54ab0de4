package pipeline

import (
	"os"
	"os/exec"
)

// process is the slice of a running child the supervisor needs. Tests
// substitute in-memory fakes; production code wraps exec.Cmd.
type process interface {
	Kill() error
	Pid() int
}

// startFunc spawns a capture tool. The returned process is exclusively
// owned by the supervisor; no other component may hold a handle to it.
type startFunc func(name string, args ...string) (process, error)

type childProcess struct {
	cmd *exec.Cmd
}

func (p *childProcess) Pid() int {
	return p.cmd.Process.Pid
}

// Kill delivers SIGKILL and reaps the child in the background. The swap
// deliberately does not wait for the old child to exit before starting its
// replacement, so transient device contention is possible.
func (p *childProcess) Kill() error {
	err := p.cmd.Process.Kill()
	go func() { _ = p.cmd.Wait() }()
	return err
}

// newStartFunc builds the production spawner. With verbose on, child stdio
// is routed to the controller's own streams for diagnostics; otherwise it
// is discarded.
func newStartFunc(verbose bool) startFunc {
	return func(name string, args ...string) (process, error) {
		cmd := exec.Command(name, args...)
		if verbose {
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
		}
		if err := cmd.Start(); err != nil {
			return nil, err
		}
		return &childProcess{cmd: cmd}, nil
	}
}
