package pptfill

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// linearBackOff waits attempt × unit between retries. It satisfies
// backoff.BackOff so it plugs into the same retry plumbing as the
// process-exit wait.
type linearBackOff struct {
	unit    time.Duration
	attempt int
}

var _ backoff.BackOff = (*linearBackOff)(nil)

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.unit
}

func (b *linearBackOff) Reset() { b.attempt = 0 }

// safeSave persists the deck under path with a bounded retry policy:
//
//   - The first time the target is found locked (exclusive-open probe or
//     a lock error from the host), the host application's processes are
//     force-closed and the same path is retried once.
//   - Later lock hits stop fighting over the original name and fall back
//     to a generated alternate ("name_1.ext", "name_2.ext", …; the first
//     free name wins).
//   - Non-lock errors retry after a linearly increasing backoff.
//
// It returns the path actually written and the attempts consumed.
// Exhausting the attempt cap returns an error; the caller reports it as
// a failed save rather than crashing.
func safeSave(deck Deck, path string, o *Options) (string, int, error) {
	logger := o.logger
	target := path
	bo := &linearBackOff{unit: o.retryUnit}
	terminated := false
	retrySame := false
	var lastErr error

	for attempt := 1; attempt <= o.maxSaveAttempts; attempt++ {
		logger.Debug("saving deck", "path", target, "attempt", attempt, "max", o.maxSaveAttempts)

		if !retrySame && o.lockProbe(target) {
			lastErr = fmt.Errorf("file %q is locked", target)
			logger.Warn("target file is locked", "path", target, "attempt", attempt)
			if !terminated {
				terminated = true
				closeHostProcesses(o)
				retrySame = true
				continue
			}
			target = uniquePath(path, o.fileExists)
			logger.Info("falling back to alternate filename", "path", target)
		}
		retrySame = false

		err := deck.SaveAs(target)
		if err == nil {
			logger.Info("deck saved", "path", target, "attempt", attempt)
			return target, attempt, nil
		}
		lastErr = err
		logger.Warn("save attempt failed", "path", target, "attempt", attempt, "error", err)

		if isLockError(err) {
			if !terminated {
				terminated = true
				closeHostProcesses(o)
				retrySame = true
				continue
			}
			target = uniquePath(path, o.fileExists)
			continue
		}
		o.sleep(bo.NextBackOff())
	}

	return "", o.maxSaveAttempts, fmt.Errorf("save %q: exhausted %d attempts: %w", path, o.maxSaveAttempts, lastErr)
}

// closeHostProcesses force-closes running host-application instances so
// the lock on the output file is released.
func closeHostProcesses(o *Options) {
	count, err := o.terminator.TerminateByName(o.processNames, o.terminateWait)
	if err != nil {
		o.logger.Warn("terminate host processes", "error", err)
		return
	}
	o.logger.Info("terminated host processes", "count", count)
}

// isLockError reports whether a host save error indicates the target
// file is held by another process.
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "being used") ||
		strings.Contains(msg, "in use") ||
		strings.Contains(msg, "locked")
}

// uniquePath returns path itself when free, otherwise the first free
// variant with a numeric suffix before the extension.
func uniquePath(path string, exists func(string) bool) string {
	if !exists(path) {
		return path
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}
