package pptfill

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTerminator struct {
	calls int
	names []string
	wait  time.Duration
}

func (t *fakeTerminator) TerminateByName(names []string, wait time.Duration) (int, error) {
	t.calls++
	t.names = names
	t.wait = wait
	return 1, nil
}

func saveOptions(t *testing.T, opts ...Option) *Options {
	t.Helper()
	o := defaultOptions()
	o.terminator = &fakeTerminator{}
	o.lockProbe = func(string) bool { return false }
	o.fileExists = func(string) bool { return false }
	o.sleep = func(time.Duration) {}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func TestSafeSave_FirstAttemptSucceeds(t *testing.T) {
	deck := newFakeDeck()
	o := saveOptions(t)

	path, attempts, err := safeSave(deck, "out.pptx", o)
	require.NoError(t, err)
	assert.Equal(t, "out.pptx", path)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, []string{"out.pptx"}, deck.saved)
}

// The locked-file sequence: the first lock hit force-closes the host and
// retries the same path; the second lock hit falls back to an alternate
// filename, which then succeeds.
func TestSafeSave_LockedFileSequence(t *testing.T) {
	deck := newFakeDeck()
	deck.saveErrs = []error{
		errors.New("The file 'out.pptx' is being used by another process"),
		nil,
	}
	term := &fakeTerminator{}
	var probed []string
	o := saveOptions(t,
		WithProcessTerminator(term),
		WithLockProbe(func(path string) bool {
			probed = append(probed, path)
			return path == "out.pptx"
		}),
		withFileExists(func(path string) bool { return path == "out.pptx" }))

	path, attempts, err := safeSave(deck, "out.pptx", o)
	require.NoError(t, err)

	assert.Equal(t, "out_1.pptx", path)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, term.calls, "host processes are closed exactly once per run")
	assert.Equal(t, []string{"out_1.pptx"}, deck.saved)
	assert.Equal(t, []string{"out.pptx", "out_1.pptx"}, probed,
		"the retry after terminating skips the probe")
}

func TestSafeSave_ProbeLockTerminatesThenSucceeds(t *testing.T) {
	deck := newFakeDeck()
	term := &fakeTerminator{}
	locked := true
	o := saveOptions(t,
		WithProcessTerminator(term),
		WithHostProcessNames("powerpnt.exe"),
		WithLockProbe(func(string) bool { return locked }))

	// Terminating the host releases the lock.
	path, attempts, err := safeSave(deck, "out.pptx", o)
	require.NoError(t, err)

	assert.Equal(t, "out.pptx", path, "the original path is retried after terminating")
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, term.calls)
	assert.Equal(t, []string{"powerpnt.exe"}, term.names)
}

func TestSafeSave_NonLockErrorsBackOffLinearly(t *testing.T) {
	deck := newFakeDeck()
	deck.saveErrs = []error{
		errors.New("disk full"),
		errors.New("disk full"),
		nil,
	}
	var slept []time.Duration
	o := saveOptions(t,
		WithSaveRetryUnit(time.Second),
		withSleep(func(d time.Duration) { slept = append(slept, d) }))

	path, attempts, err := safeSave(deck, "out.pptx", o)
	require.NoError(t, err)

	assert.Equal(t, "out.pptx", path)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, slept)
}

func TestSafeSave_ExhaustedAttempts(t *testing.T) {
	deck := newFakeDeck()
	deck.saveErrs = []error{
		errors.New("disk full"),
		errors.New("disk full"),
		errors.New("disk full"),
	}
	o := saveOptions(t)

	path, attempts, err := safeSave(deck, "out.pptx", o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted 3 attempts")
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, path)
	assert.Equal(t, 3, attempts)
}

func TestSafeSave_AttemptCapConfigurable(t *testing.T) {
	deck := newFakeDeck()
	deck.saveErrs = []error{errors.New("disk full")}
	o := saveOptions(t, WithMaxSaveAttempts(1))

	_, attempts, err := safeSave(deck, "out.pptx", o)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, deck.saveCalls)
}

func TestIsLockError(t *testing.T) {
	assert.False(t, isLockError(nil))
	assert.False(t, isLockError(errors.New("disk full")))
	assert.True(t, isLockError(errors.New("the process cannot access the file because it is being used by another process")))
	assert.True(t, isLockError(errors.New("File In Use")))
	assert.True(t, isLockError(errors.New("output is locked")))
}

func TestUniquePath(t *testing.T) {
	assert.Equal(t, "report.pptx",
		uniquePath("report.pptx", func(string) bool { return false }))

	taken := map[string]bool{"report.pptx": true, "report_1.pptx": true}
	assert.Equal(t, "report_2.pptx",
		uniquePath("report.pptx", func(p string) bool { return taken[p] }))
}

func TestLinearBackOff(t *testing.T) {
	bo := &linearBackOff{unit: time.Second}
	assert.Equal(t, 1*time.Second, bo.NextBackOff())
	assert.Equal(t, 2*time.Second, bo.NextBackOff())
	assert.Equal(t, 3*time.Second, bo.NextBackOff())
	bo.Reset()
	assert.Equal(t, 1*time.Second, bo.NextBackOff())
}
