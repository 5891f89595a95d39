package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

const runTimeout = 30 * time.Minute

// JobRunner executes onboarding runs on a bounded worker pool. Runs for
// different merchants proceed in parallel; runs for the same merchant are
// serialized through a per-merchant mutex so two concurrent full refreshes
// can never interleave their delete and insert phases.
type JobRunner struct {
	svc     *OnboardService
	tracker *StatusTracker
	pool    *ants.Pool

	mu        sync.Mutex
	merchants map[string]*sync.Mutex
}

func NewJobRunner(svc *OnboardService, tracker *StatusTracker, workers int) (*JobRunner, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &JobRunner{
		svc:       svc,
		tracker:   tracker,
		pool:      pool,
		merchants: map[string]*sync.Mutex{},
	}, nil
}

// Submit queues an onboarding run and returns its job ID immediately.
func (r *JobRunner) Submit(req *OnboardRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	jobID := uuid.NewString()
	if err := r.pool.Submit(func() {
		r.run(jobID, req)
	}); err != nil {
		return "", fmt.Errorf("submit onboarding job: %w", err)
	}
	return jobID, nil
}

func (r *JobRunner) run(jobID string, req *OnboardRequest) {
	lock := r.merchantLock(req.MerchantID)
	lock.Lock()
	defer lock.Unlock()

	// Begin only after the lock is held so a queued run never resets the
	// status document of a run still executing for the same merchant.
	r.tracker.Begin(req.MerchantID, jobID)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	defer r.tracker.Finish(req.MerchantID)

	if err := r.svc.Run(ctx, req); err != nil {
		log.Printf("onboarding failed for %s: %v", req.MerchantID, err)
		return
	}
	log.Printf("onboarding completed for %s", req.MerchantID)
}

func (r *JobRunner) merchantLock(merchantID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.merchants[merchantID]
	if !ok {
		lock = &sync.Mutex{}
		r.merchants[merchantID] = lock
	}
	return lock
}

// Close releases the worker pool. Queued jobs that have not started are
// dropped.
func (r *JobRunner) Close() {
	r.pool.Release()
}
