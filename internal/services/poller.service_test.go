package services

import (
	"testing"
	"time"

	"linecheck/internal/models"
	"linecheck/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredentialChecker struct {
	valid bool
}

func (f *fakeCredentialChecker) HasValidCredential() bool {
	return f.valid
}

func newPollerFixture(t *testing.T, valid bool) (*PollingService, *fakeTaskSource, chan time.Time) {
	t.Helper()

	clock := fixedDate(t, "2024-03-10")
	tasks := &fakeTaskSource{clock: clock}
	ticks := make(chan time.Time, 16)

	poller := NewPollingService(
		&fakeCredentialChecker{valid: valid},
		tasks,
		utils.NewDayBoundary(clock),
		time.Minute,
	)
	poller.ticker = func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() {}
	}

	return poller, tasks, ticks
}

func invalidationCount(tasks *fakeTaskSource) int {
	tasks.mu.Lock()
	defer tasks.mu.Unlock()
	return len(tasks.invalidated)
}

func TestPollingInvalidatesEveryTick(t *testing.T) {
	poller, tasks, ticks := newPollerFixture(t, true)

	handle := poller.Start(models.ShiftOpening)
	defer handle.Stop()

	for range 3 {
		ticks <- time.Now()
	}

	require.Eventually(t, func() bool {
		return invalidationCount(tasks) == 3
	}, time.Second, 5*time.Millisecond)

	tasks.mu.Lock()
	assert.Equal(t, "opening:2024-03-10", tasks.invalidated[0])
	tasks.mu.Unlock()
}

func TestPollingStopsCleanly(t *testing.T) {
	poller, tasks, ticks := newPollerFixture(t, true)

	handle := poller.Start(models.ShiftClosing)

	ticks <- time.Now()
	require.Eventually(t, func() bool {
		return invalidationCount(tasks) == 1
	}, time.Second, 5*time.Millisecond)

	handle.Stop()
	// Stop is idempotent.
	handle.Stop()

	// Ticks after Stop never reach the invalidator.
	select {
	case ticks <- time.Now():
	default:
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, invalidationCount(tasks))
}

func TestPollingSkipsWithoutCredential(t *testing.T) {
	poller, tasks, ticks := newPollerFixture(t, false)

	handle := poller.Start(models.ShiftOpening)
	defer handle.Stop()

	for range 3 {
		ticks <- time.Now()
	}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, invalidationCount(tasks))
}
