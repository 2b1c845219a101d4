package pptfill

import (
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Options holds configuration for the Filler.
type Options struct {
	outputPath      string
	pages           []int
	logger          hclog.Logger
	listeners       []ProcessListener
	maxSaveAttempts int
	retryUnit       time.Duration
	processNames    []string
	terminateWait   time.Duration
	terminator      ProcessTerminator
	lockProbe       func(path string) bool
	fileExists      func(path string) bool
	mkdirAll        func(path string) error
	sleep           func(d time.Duration)
}

func defaultOptions() *Options {
	return &Options{
		logger:          hclog.NewNullLogger(),
		maxSaveAttempts: 3,
		retryUnit:       2 * time.Second,
		processNames:    []string{"powerpnt.exe", "powerpoint.exe"},
		terminateWait:   5 * time.Second,
		lockProbe:       fileInUse,
		fileExists:      fileExists,
		mkdirAll:        func(path string) error { return os.MkdirAll(path, 0o755) },
		sleep:           time.Sleep,
	}
}

// Option configures the Filler.
type Option func(*Options)

// WithOutputPath sets the path the populated deck is saved under
// (default: overwrite the input deck in place).
func WithOutputPath(path string) Option {
	return func(o *Options) { o.outputPath = path }
}

// WithPages restricts processing to the given 1-indexed slide numbers.
// Out-of-range numbers are skipped, not errors.
func WithPages(pages ...int) Option {
	return func(o *Options) { o.pages = pages }
}

// WithLogger sets the structured logger (default: a null logger).
func WithLogger(logger hclog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithListener adds a listener that receives per-shape and per-marker
// substitution events.
func WithListener(listener ProcessListener) Option {
	return func(o *Options) { o.listeners = append(o.listeners, listener) }
}

// WithMaxSaveAttempts sets the save retry cap (default: 3).
func WithMaxSaveAttempts(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.maxSaveAttempts = n
		}
	}
}

// WithSaveRetryUnit sets the unit of the linear backoff applied between
// failed save attempts (default: 2s; attempt n waits n × unit).
func WithSaveRetryUnit(unit time.Duration) Option {
	return func(o *Options) { o.retryUnit = unit }
}

// WithHostProcessNames sets the process names force-closed when the
// output file is locked (default: the PowerPoint executables).
func WithHostProcessNames(names ...string) Option {
	return func(o *Options) { o.processNames = names }
}

// WithTerminateWait sets the per-process wait after a terminate signal
// (default: 5s).
func WithTerminateWait(wait time.Duration) Option {
	return func(o *Options) { o.terminateWait = wait }
}

// WithProcessTerminator replaces the gopsutil-backed process terminator,
// e.g. with a fake in tests.
func WithProcessTerminator(t ProcessTerminator) Option {
	return func(o *Options) { o.terminator = t }
}

// WithLockProbe replaces the exclusive-open probe used to detect that the
// output file is held by another process.
func WithLockProbe(probe func(path string) bool) Option {
	return func(o *Options) { o.lockProbe = probe }
}

// withFileExists replaces the filesystem existence check (test seam).
func withFileExists(exists func(path string) bool) Option {
	return func(o *Options) { o.fileExists = exists }
}

// withMkdirAll replaces directory creation (test seam).
func withMkdirAll(mkdir func(path string) error) Option {
	return func(o *Options) { o.mkdirAll = mkdir }
}

// withSleep replaces the retry sleep (test seam).
func withSleep(sleep func(d time.Duration)) Option {
	return func(o *Options) { o.sleep = sleep }
}

// fileExists reports whether path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// fileInUse probes whether path is held open by another process by
// attempting a read-write open. A missing file is not in use.
func fileInUse(path string) bool {
	if !fileExists(path) {
		return false
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return true
	}
	f.Close()
	return false
}
