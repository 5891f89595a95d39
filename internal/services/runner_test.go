package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(t *testing.T) (*JobRunner, *StatusTracker) {
	t.Helper()
	svc, tracker := newService(&fakeDB{}, newFakeObjectStore())
	runner, err := NewJobRunner(svc, tracker, 2)
	require.NoError(t, err)
	t.Cleanup(runner.Close)
	return runner, tracker
}

func TestSubmitRunsToCompletion(t *testing.T) {
	runner, tracker := newRunner(t)

	jobID, err := runner.Submit(&OnboardRequest{MerchantID: "m1", UserID: "u1"})
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		run := tracker.Get("m1")
		return run != nil && run.JobID == jobID && !run.Running
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSubmitRejectsInvalidRequest(t *testing.T) {
	runner, tracker := newRunner(t)

	_, err := runner.Submit(&OnboardRequest{UserID: "u1"})
	require.Error(t, err)
	assert.Nil(t, tracker.Get(""))
}

func TestSubmitDoesNotResetStatusOfExecutingRun(t *testing.T) {
	runner, tracker := newRunner(t)

	// hold the merchant lock as an in-flight run would
	lock := runner.merchantLock("m1")
	lock.Lock()

	jobID, err := runner.Submit(&OnboardRequest{MerchantID: "m1", UserID: "u1"})
	require.NoError(t, err)

	// the queued run must not touch the status document while blocked
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, tracker.Get("m1"))

	lock.Unlock()
	require.Eventually(t, func() bool {
		run := tracker.Get("m1")
		return run != nil && run.JobID == jobID && !run.Running
	}, 5*time.Second, 10*time.Millisecond)
}
