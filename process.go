package pptfill

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessTerminator force-closes running host-application instances so a
// locked output file can be released.
type ProcessTerminator interface {
	// TerminateByName sends a terminate signal to every process whose
	// name matches one of names (case-insensitive) and waits up to wait
	// per process for it to exit. Processes that are already gone or
	// inaccessible are ignored. It returns the number of processes that
	// were terminated and exited in time.
	TerminateByName(names []string, wait time.Duration) (int, error)
}

// psTerminator implements ProcessTerminator with gopsutil.
type psTerminator struct {
	logger hclog.Logger
}

// NewProcessTerminator creates the gopsutil-backed terminator.
func NewProcessTerminator(logger hclog.Logger) ProcessTerminator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &psTerminator{logger: logger}
}

func (t *psTerminator) TerminateByName(names []string, wait time.Duration) (int, error) {
	procs, err := process.Processes()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	match := make(map[string]bool, len(names))
	for _, n := range names {
		match[strings.ToLower(n)] = true
	}

	count := 0
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			// Process exited or is inaccessible; nothing to close.
			continue
		}
		if !match[strings.ToLower(name)] {
			continue
		}
		t.logger.Debug("terminating host process", "pid", p.Pid, "name", name)
		if err := p.Terminate(); err != nil {
			t.logger.Warn("terminate signal failed", "pid", p.Pid, "error", err)
			continue
		}
		if err := waitForExit(p, wait); err != nil {
			t.logger.Warn("process did not exit in time", "pid", p.Pid, "name", name)
			continue
		}
		count++
	}
	return count, nil
}

var errStillRunning = errors.New("process still running")

// waitForExit polls until the process is gone or wait elapses.
func waitForExit(p *process.Process, wait time.Duration) error {
	const poll = 100 * time.Millisecond
	retries := uint64(wait / poll)
	if retries == 0 {
		retries = 1
	}
	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(poll), retries)
	return backoff.Retry(func() error {
		running, err := p.IsRunning()
		if err != nil || !running {
			return nil
		}
		return errStillRunning
	}, bo)
}
